package github

import (
	"fmt"
	"strings"
)

// ErrStatsComputing is returned while GitHub is still computing repository statistics.
var ErrStatsComputing = fmt.Errorf("statistics are being computed")

// SearchQuery describes one page of GET /search/repositories.
type SearchQuery struct {
	Topics  []string
	Sort    string // empty means best match
	Order   string
	PerPage int
	Page    int
}

// Q renders the topics as required qualifiers, e.g. "topic:ai topic:ml".
func (q SearchQuery) Q() string {
	parts := make([]string, 0, len(q.Topics))
	for _, t := range q.Topics {
		parts = append(parts, "topic:"+t)
	}
	return strings.Join(parts, " ")
}

// WeeklyCommits is one entry of /stats/commit_activity.
type WeeklyCommits struct {
	Total int   `json:"total"`
	Week  int64 `json:"week"`
	Days  []int `json:"days"`
}

type searchResponse[T any] struct {
	TotalCount        int  `json:"total_count"`
	IncompleteResults bool `json:"incomplete_results"`
	Items             []T  `json:"items"`
}

type apiError struct {
	Message string `json:"message"`
}
