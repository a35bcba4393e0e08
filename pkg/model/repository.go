// Package model provides the repository record shapes used by the dashboard:
// the raw shape found in snapshots and API responses, and the canonical shape
// every renderer consumes.
package model

import "time"

// DefaultDescription replaces a missing repository description.
const DefaultDescription = "No description provided."

// RawRepository is a repository as it appears in a snapshot leaf or a search
// response item. Every field may be absent.
type RawRepository struct {
	ID              *int64     `json:"id,omitempty"`
	Name            *string    `json:"name,omitempty"`
	FullName        string     `json:"full_name"`
	HTMLURL         string     `json:"html_url"`
	Description     *string    `json:"description"`
	Language        *string    `json:"language"`
	StargazersCount *int       `json:"stargazers_count,omitempty"`
	ForksCount      *int       `json:"forks_count,omitempty"`
	OpenIssuesCount *int       `json:"open_issues_count,omitempty"`
	WatchersCount   *int       `json:"watchers_count,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	Topics          []string   `json:"topics,omitempty"`
	Category        *string    `json:"category,omitempty"`
	TrendingScore   *float64   `json:"trending_score,omitempty"`
}

// Repository is the canonical record. Counts are never negative and Category
// is always the category the record was requested for.
type Repository struct {
	FullName      string    `json:"full_name"`
	HTMLURL       string    `json:"html_url"`
	Description   string    `json:"description"`
	Language      *string   `json:"language"`
	Stars         int       `json:"stars"`
	Forks         int       `json:"forks"`
	OpenIssues    int       `json:"open_issues"`
	Watchers      int       `json:"watchers"`
	UpdatedAt     time.Time `json:"updated_at"`
	CreatedAt     time.Time `json:"created_at"`
	Topics        []string  `json:"topics,omitempty"`
	Category      string    `json:"category"`
	TrendingScore float64   `json:"trending_score"`
}

// LanguageName returns the language or an empty string.
func (r Repository) LanguageName() string {
	if r.Language == nil {
		return ""
	}
	return *r.Language
}

// Normalize maps a raw record to the canonical shape. It is the only place
// defaults are applied, and it is idempotent through Raw.
func Normalize(raw RawRepository, category string) Repository {
	repo := Repository{
		FullName:    raw.FullName,
		HTMLURL:     raw.HTMLURL,
		Description: DefaultDescription,
		Stars:       count(raw.StargazersCount),
		Forks:       count(raw.ForksCount),
		OpenIssues:  count(raw.OpenIssuesCount),
		Watchers:    count(raw.WatchersCount),
		Category:    category,
	}
	if raw.Description != nil && *raw.Description != "" {
		repo.Description = *raw.Description
	}
	if raw.Language != nil && *raw.Language != "" {
		lang := *raw.Language
		repo.Language = &lang
	}
	if raw.UpdatedAt != nil {
		repo.UpdatedAt = *raw.UpdatedAt
	}
	if raw.CreatedAt != nil {
		repo.CreatedAt = *raw.CreatedAt
	}
	if len(raw.Topics) > 0 {
		repo.Topics = append([]string(nil), raw.Topics...)
	}
	if raw.TrendingScore != nil && *raw.TrendingScore > 0 {
		repo.TrendingScore = *raw.TrendingScore
	}
	return repo
}

// NormalizeAll normalizes a batch, preserving order.
func NormalizeAll(raws []RawRepository, category string) []Repository {
	out := make([]Repository, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Normalize(raw, category))
	}
	return out
}

// Raw converts a canonical record back to the raw shape.
func (r Repository) Raw() RawRepository {
	desc := r.Description
	stars, forks, issues, watchers := r.Stars, r.Forks, r.OpenIssues, r.Watchers
	category := r.Category
	score := r.TrendingScore
	raw := RawRepository{
		FullName:        r.FullName,
		HTMLURL:         r.HTMLURL,
		Description:     &desc,
		StargazersCount: &stars,
		ForksCount:      &forks,
		OpenIssuesCount: &issues,
		WatchersCount:   &watchers,
		Category:        &category,
		TrendingScore:   &score,
	}
	if r.Language != nil {
		lang := *r.Language
		raw.Language = &lang
	}
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		raw.UpdatedAt = &t
	}
	if !r.CreatedAt.IsZero() {
		t := r.CreatedAt
		raw.CreatedAt = &t
	}
	if len(r.Topics) > 0 {
		raw.Topics = append([]string(nil), r.Topics...)
	}
	return raw
}

func count(v *int) int {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}
