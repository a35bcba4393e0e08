// Package category holds the curated mapping from dashboard categories to
// GitHub search topics and display colors.
package category

import (
	"regexp"
	"strings"

	"github.com/glorpus-work/repodash/pkg/errors"
)

// NeutralColor is used for anything missing from a palette.
const NeutralColor = "#6e7681"

var topicPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Category is a named group of search topics.
type Category struct {
	Name   string   `yaml:"name" validate:"required"`
	Topics []string `yaml:"topics" validate:"required,min=1,dive,required"`
	Color  string   `yaml:"color,omitempty" validate:"omitempty,hexcolor"`
}

// Registry is a read-only lookup table built once at startup.
type Registry struct {
	order      []string
	categories map[string]Category
}

var defaultCategories = []Category{
	{Name: "AI", Topics: []string{"machine-learning", "artificial-intelligence", "deep-learning", "neural-networks", "ai"}, Color: "#10b981"},
	{Name: "Anime", Topics: []string{"anime", "manga", "otaku", "anime-games", "anime-app"}, Color: "#ef4444"},
	{Name: "FinTech", Topics: []string{"fintech", "blockchain", "cryptocurrency", "banking", "finance"}, Color: "#3b82f6"},
	{Name: "Web Dev", Topics: []string{"web", "javascript", "react", "vue", "angular", "nodejs"}, Color: "#8b5cf6"},
	{Name: "Mobile", Topics: []string{"mobile", "android", "ios", "flutter", "react-native"}, Color: "#f59e0b"},
	{Name: "DevOps", Topics: []string{"devops", "kubernetes", "docker", "ci-cd", "infrastructure"}, Color: "#06b6d4"},
	{Name: "Gaming", Topics: []string{"game", "gaming", "unity", "unreal-engine", "game-development"}, Color: "#ec4899"},
	{Name: "Data Science", Topics: []string{"data-science", "analytics", "big-data", "data-visualization"}, Color: "#6366f1"},
	{Name: "Cybersecurity", Topics: []string{"security", "cybersecurity", "hacking", "privacy"}, Color: "#84cc16"},
	{Name: "IoT", Topics: []string{"iot", "arduino", "raspberry-pi", "embedded"}, Color: "#f97316"},
}

var languageColors = map[string]string{
	"JavaScript": "#f1e05a",
	"Python":     "#3572A5",
	"Java":       "#b07219",
	"TypeScript": "#2b7489",
	"C++":        "#f34b7d",
	"Go":         "#00ADD8",
	"Rust":       "#dea584",
	"Ruby":       "#701516",
	"PHP":        "#4F5D95",
	"Swift":      "#ffac45",
}

// Default returns the built-in registry.
func Default() *Registry {
	r, _ := New(nil)
	return r
}

// New builds a registry from the defaults plus extra categories. An extra
// category with the name of a default one replaces it in place.
func New(extra []Category) (*Registry, error) {
	r := &Registry{categories: make(map[string]Category, len(defaultCategories)+len(extra))}
	for _, c := range defaultCategories {
		r.add(c)
	}
	for _, c := range extra {
		if c.Name == "" {
			return nil, errors.ErrEmptyCategory
		}
		if err := validateTopics(c); err != nil {
			return nil, err
		}
		r.add(c)
	}
	return r, nil
}

func (r *Registry) add(c Category) {
	if _, exists := r.categories[c.Name]; !exists {
		r.order = append(r.order, c.Name)
	}
	c.Topics = append([]string(nil), c.Topics...)
	r.categories[c.Name] = c
}

// TopicsFor returns the search topics for a category. Unknown categories map
// to their own lowercased name so every category yields a usable query.
func (r *Registry) TopicsFor(name string) []string {
	if c, ok := r.categories[name]; ok {
		return append([]string(nil), c.Topics...)
	}
	return []string{strings.ToLower(name)}
}

// ColorFor returns the display color of a category.
func (r *Registry) ColorFor(name string) string {
	if c, ok := r.categories[name]; ok && c.Color != "" {
		return c.Color
	}
	return NeutralColor
}

// Get returns a category by name.
func (r *Registry) Get(name string) (Category, bool) {
	c, ok := r.categories[name]
	if ok {
		c.Topics = append([]string(nil), c.Topics...)
	}
	return c, ok
}

// Names lists the categories in declaration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Validate checks every topic of every category.
func (r *Registry) Validate() error {
	for _, name := range r.order {
		if err := validateTopics(r.categories[name]); err != nil {
			return err
		}
	}
	return nil
}

func validateTopics(c Category) error {
	if len(c.Topics) == 0 {
		return errors.ErrInvalidTopicWithDetails(c.Name, "")
	}
	for _, t := range c.Topics {
		if !topicPattern.MatchString(t) {
			return errors.ErrInvalidTopicWithDetails(c.Name, t)
		}
	}
	return nil
}

// LanguageColor returns the GitHub color of a programming language.
func LanguageColor(language string) string {
	if c, ok := languageColors[language]; ok {
		return c
	}
	return NeutralColor
}
