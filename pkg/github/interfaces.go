//go:generate mockgen -destination=mocks/github.go . Client
package github

import (
	"context"

	"github.com/glorpus-work/repodash/pkg/model"
)

// Client defines the GitHub REST operations the dashboard needs.
type Client interface {
	// SearchRepositories runs one page of a repository search and returns the raw items.
	SearchRepositories(ctx context.Context, query SearchQuery) ([]model.RawRepository, error)

	// CommitActivity returns the weekly commit totals for the last year, oldest first.
	// It returns ErrStatsComputing when GitHub answers 202 Accepted.
	CommitActivity(ctx context.Context, fullName string) ([]WeeklyCommits, error)
}
