//go:generate mockgen -destination=mocks/retrieval.go . Fetcher,SnapshotSource
package retrieval

import (
	"context"

	"github.com/glorpus-work/repodash/pkg/cache"
	"github.com/glorpus-work/repodash/pkg/model"
	"github.com/glorpus-work/repodash/pkg/snapshot"
)

// Fetcher is the remote search path.
type Fetcher interface {
	Fetch(ctx context.Context, category string, sort model.SortKey, page int) ([]model.Repository, error)
	ClearCache() cache.CleanResult
	CacheInfo() cache.Info
}

// SnapshotSource is the bundled snapshot path.
type SnapshotSource interface {
	Load(ctx context.Context) (*snapshot.Snapshot, bool)
	IsFresh() bool
	Lookup(category, sort string) []model.RawRepository
	Reset()
}
