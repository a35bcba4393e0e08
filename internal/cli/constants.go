package cli

// Default values for CLI flags and formatted output.
const (
	// MaxDescriptionLength is the maximum length of a repository description to display.
	MaxDescriptionLength = 100
	// MaxTopicsShown caps the topics printed under a repository.
	MaxTopicsShown = 5
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2
	// LanguageStatsShown is the number of languages listed by the stats view.
	LanguageStatsShown = 5
)
