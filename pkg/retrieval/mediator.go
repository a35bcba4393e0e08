// Package retrieval decides, per request, whether a page of repositories comes
// from the bundled snapshot or from the remote search client.
package retrieval

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/glorpus-work/repodash/internal/logger"
	"github.com/glorpus-work/repodash/pkg/cache"
	"github.com/glorpus-work/repodash/pkg/errors"
	"github.com/glorpus-work/repodash/pkg/model"
)

// Source names the branch that served a request.
type Source string

// Sources.
const (
	SourceSnapshot Source = "snapshot"
	SourceRemote   Source = "remote"
)

// DefaultPerPage is the snapshot page size when none is configured.
const DefaultPerPage = 30

// Options configures a Mediator.
type Options struct {
	SnapshotFirst bool
	PerPage       int
}

// SearchResult is one answered request.
type SearchResult struct {
	RequestID string
	Seq       uint64
	Source    Source
	Category  string
	Sort      model.SortKey
	Page      int
	Records   []model.Repository
}

// Mediator is the single entry point for retrieving repository pages.
type Mediator struct {
	remote    Fetcher
	snapshots SnapshotSource
	opts      Options
	seq       atomic.Uint64
}

// New creates a mediator. snapshots may be nil when snapshot-first is off.
func New(remote Fetcher, snapshots SnapshotSource, opts Options) *Mediator {
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultPerPage
	}
	return &Mediator{remote: remote, snapshots: snapshots, opts: opts}
}

// PerPage returns the page size.
func (m *Mediator) PerPage() int {
	return m.opts.PerPage
}

// LastSeq returns the sequence number of the most recently issued request.
func (m *Mediator) LastSeq() uint64 {
	return m.seq.Load()
}

// Search returns one page for (category, sort). Remote failures are returned
// as-is; snapshot failures are never surfaced.
func (m *Mediator) Search(ctx context.Context, category string, sort model.SortKey, page int) (*SearchResult, error) {
	if strings.TrimSpace(category) == "" {
		return nil, errors.ErrEmptyCategory
	}
	if page < 1 {
		return nil, errors.ErrInvalidPage
	}

	result := &SearchResult{
		RequestID: uuid.NewString(),
		Seq:       m.seq.Add(1),
		Category:  category,
		Sort:      sort,
		Page:      page,
	}

	fields := logger.Fields{
		"request_id": result.RequestID,
		"category":   category,
		"sort":       string(sort),
		"page":       page,
	}

	result.Source = m.decide(ctx)
	fields["source"] = string(result.Source)

	switch result.Source {
	case SourceSnapshot:
		raws := m.snapshots.Lookup(category, string(sort))
		records := model.SortBy(model.NormalizeAll(raws, category), sort)
		result.Records = model.Paginate(records, page, m.opts.PerPage)
	default:
		records, err := m.remote.Fetch(ctx, category, sort, page)
		if err != nil {
			fields["error"] = err.Error()
			logger.Debug("Search failed", fields)
			return nil, err
		}
		result.Records = records
	}

	fields["records"] = len(result.Records)
	logger.Debug("Search served", fields)
	return result, nil
}

// decide evaluates the retrieval table once:
//
//	snapshot-first and snapshot loaded and fresh -> snapshot
//	otherwise                                    -> remote
func (m *Mediator) decide(ctx context.Context) Source {
	if !m.opts.SnapshotFirst || m.snapshots == nil {
		return SourceRemote
	}
	if _, ok := m.snapshots.Load(ctx); !ok {
		return SourceRemote
	}
	if !m.snapshots.IsFresh() {
		return SourceRemote
	}
	return SourceSnapshot
}

// ClearCache drops cached remote pages and the loaded snapshot.
func (m *Mediator) ClearCache() cache.CleanResult {
	result := m.remote.ClearCache()
	if m.snapshots != nil {
		m.snapshots.Reset()
	}
	logger.Debug("Cleared retrieval caches", logger.Fields{"entries": result.EntriesFreed})
	return result
}

// CacheInfo reports remote cache statistics.
func (m *Mediator) CacheInfo() cache.Info {
	return m.remote.CacheInfo()
}
