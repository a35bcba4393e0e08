package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"

	"github.com/glorpus-work/repodash/pkg/cache"
	"github.com/glorpus-work/repodash/pkg/category"
	"github.com/glorpus-work/repodash/pkg/dashboard"
	"github.com/glorpus-work/repodash/pkg/model"
	"github.com/glorpus-work/repodash/pkg/prefs"
)

var (
	colorTitle = lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#58A6FF"}
	colorText  = lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#C9D1D9"}
	colorDim   = lipgloss.AdaptiveColor{Light: "#656D76", Dark: "#8B949E"}
	colorStar  = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#E3B341"}
	colorFire  = lipgloss.AdaptiveColor{Light: "#BC4C00", Dark: "#F0883E"}
	colorError = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#F85149"}
)

// printer renders records either as styled text or as JSON.
type printer struct {
	out      io.Writer
	registry *category.Registry
	json     bool

	renderer *lipgloss.Renderer
	title    lipgloss.Style
	text     lipgloss.Style
	dim      lipgloss.Style
	star     lipgloss.Style
	fire     lipgloss.Style
	errStyle lipgloss.Style
}

func newPrinter(out io.Writer, registry *category.Registry, format string) *printer {
	p := &printer{
		out:      out,
		registry: registry,
		json:     format == "json",
		renderer: lipgloss.NewRenderer(out),
	}
	if !colorEnabled() {
		p.renderer.SetColorProfile(termenv.Ascii)
	}
	p.restyle()
	return p
}

// setTheme switches the adaptive colors between the dark and light palette.
func (p *printer) setTheme(theme string) {
	p.renderer.SetHasDarkBackground(theme != prefs.ThemeLight)
	p.restyle()
}

func (p *printer) restyle() {
	r := p.renderer
	p.title = r.NewStyle().Bold(true).Foreground(colorTitle)
	p.text = r.NewStyle().Foreground(colorText)
	p.dim = r.NewStyle().Foreground(colorDim)
	p.star = r.NewStyle().Foreground(colorStar)
	p.fire = r.NewStyle().Foreground(colorFire)
	p.errStyle = r.NewStyle().Bold(true).Foreground(colorError)
}

// capture renders fn into a string instead of the printer's writer.
func (p *printer) capture(fn func() error) (string, error) {
	out := p.out
	var b strings.Builder
	p.out = &b
	defer func() { p.out = out }()

	err := fn()
	return b.String(), err
}

func (p *printer) printJSON(v interface{}) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printRepos renders records numbered from offset+1.
func (p *printer) printRepos(records []model.Repository, offset int) error {
	if p.json {
		return p.printJSON(records)
	}
	for i, r := range records {
		p.printRepo(offset+i+1, r)
	}
	return nil
}

func (p *printer) printRepo(n int, r model.Repository) {
	badge := p.renderer.NewStyle().
		Foreground(lipgloss.Color(p.registry.ColorFor(r.Category))).
		Render("[" + r.Category + "]")

	_, _ = fmt.Fprintf(p.out, "%3d. %s %s\n", n, p.title.Render(r.FullName), badge)
	_, _ = fmt.Fprintf(p.out, "     %s\n", p.text.Render(truncate(r.Description, MaxDescriptionLength)))

	parts := []string{
		p.star.Render("★ " + FormatCount(r.Stars)),
		"⑂ " + FormatCount(r.Forks),
		"! " + FormatCount(r.OpenIssues),
	}
	if r.TrendingScore > 0 {
		parts = append(parts, p.fire.Render(fmt.Sprintf("🔥 %.1f/day", r.TrendingScore)))
	}
	if lang := r.LanguageName(); lang != "" {
		dot := p.renderer.NewStyle().Foreground(lipgloss.Color(category.LanguageColor(lang))).Render("●")
		parts = append(parts, dot+" "+lang)
	}
	if !r.UpdatedAt.IsZero() {
		parts = append(parts, p.dim.Render("updated "+humanize.Time(r.UpdatedAt)))
	}
	_, _ = fmt.Fprintf(p.out, "     %s\n", strings.Join(parts, "  "))

	if len(r.Topics) > 0 {
		topics := r.Topics
		if len(topics) > MaxTopicsShown {
			topics = topics[:MaxTopicsShown]
		}
		_, _ = fmt.Fprintf(p.out, "     %s\n", p.dim.Render("#"+strings.Join(topics, " #")))
	}
	_, _ = fmt.Fprintf(p.out, "     %s\n", p.dim.Render(r.HTMLURL))
}

func (p *printer) printStats(s dashboard.Stats) error {
	if p.json {
		return p.printJSON(s)
	}
	_, _ = fmt.Fprintf(p.out, "%s %d  %s %s  %s %s  %s %d\n",
		p.dim.Render("repos"), s.Repos,
		p.dim.Render("stars"), FormatCount(s.Stars),
		p.dim.Render("forks"), FormatCount(s.Forks),
		p.dim.Render("categories"), s.Categories)

	langs := s.Languages
	if len(langs) > LanguageStatsShown {
		langs = langs[:LanguageStatsShown]
	}
	for _, l := range langs {
		dot := p.renderer.NewStyle().Foreground(lipgloss.Color(category.LanguageColor(l.Language))).Render("●")
		_, _ = fmt.Fprintf(p.out, "  %s %-12s %d\n", dot, l.Language, l.Count)
	}
	return nil
}

type categoryView struct {
	Name   string   `json:"name"`
	Topics []string `json:"topics"`
	Color  string   `json:"color"`
}

func (p *printer) printCategories() error {
	views := make([]categoryView, 0, len(p.registry.Names()))
	for _, name := range p.registry.Names() {
		views = append(views, categoryView{
			Name:   name,
			Topics: p.registry.TopicsFor(name),
			Color:  p.registry.ColorFor(name),
		})
	}
	if p.json {
		return p.printJSON(views)
	}
	for _, v := range views {
		swatch := p.renderer.NewStyle().Foreground(lipgloss.Color(v.Color)).Render("■")
		_, _ = fmt.Fprintf(p.out, "%s %-14s %s\n", swatch, v.Name, p.dim.Render(strings.Join(v.Topics, ", ")))
	}
	return nil
}

func (p *printer) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// FormatCount abbreviates large counts the way the dashboard cards do: 1.2k, 3.4M.
func FormatCount(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return humanize.Comma(int64(n))
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func formatAge(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return fmt.Sprintf("%s (%s)", t.UTC().Format(time.RFC3339), humanize.Time(t))
}

type cacheView struct {
	Enabled     bool      `json:"enabled"`
	TTL         string    `json:"ttl"`
	Entries     int       `json:"entries"`
	Expired     int       `json:"expired"`
	Hits        int       `json:"hits"`
	Misses      int       `json:"misses"`
	LastCleaned time.Time `json:"last_cleaned,omitempty"`
}

type cleanView struct {
	Entries int `json:"entries"`
	Expired int `json:"expired"`
}

func (p *printer) printCleanResult(result cache.CleanResult) error {
	if p.json {
		return p.printJSON(cleanView{Entries: result.EntriesFreed, Expired: result.ExpiredFreed})
	}
	p.printf("Cleared %d cached responses (%d expired)\n", result.EntriesFreed, result.ExpiredFreed)
	return nil
}

func (p *printer) printCacheInfo(info cache.Info) error {
	if p.json {
		return p.printJSON(cacheView{
			Enabled:     info.Enabled,
			TTL:         info.TTL.String(),
			Entries:     info.Entries,
			Expired:     info.Expired,
			Hits:        info.Hits,
			Misses:      info.Misses,
			LastCleaned: info.LastCleaned,
		})
	}
	p.printf("Enabled: %t\n", info.Enabled)
	p.printf("TTL: %s\n", info.TTL)
	p.printf("Entries: %d (%d expired)\n", info.Entries, info.Expired)
	p.printf("Hits: %d  Misses: %d\n", info.Hits, info.Misses)
	p.printf("Last Cleaned: %s\n", formatAge(info.LastCleaned))
	return nil
}
