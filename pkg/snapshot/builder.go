package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mholt/archives"

	"github.com/glorpus-work/repodash/internal/logger"
	"github.com/glorpus-work/repodash/pkg/category"
	"github.com/glorpus-work/repodash/pkg/fsutil"
	"github.com/glorpus-work/repodash/pkg/github"
	"github.com/glorpus-work/repodash/pkg/model"
)

// Builder defaults.
const (
	DefaultBuildPerPage = 100
	DefaultBuildDelay   = 2 * time.Second
)

// BuildSorts are the leaves captured for every category.
var BuildSorts = []model.SortKey{model.SortStars, model.SortForks, model.SortUpdated}

// BuildOptions configures a Builder.
type BuildOptions struct {
	PerPage   int
	Delay     time.Duration
	Generator string
	Now       func() time.Time
	// Progress is called after each leaf; it may be nil.
	Progress func(category string, sort model.SortKey, count int, err error)
}

// Builder captures a snapshot from the search API.
type Builder struct {
	api      github.Client
	registry *category.Registry
	opts     BuildOptions
}

// NewBuilder creates a snapshot builder.
func NewBuilder(api github.Client, registry *category.Registry, opts BuildOptions) *Builder {
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultBuildPerPage
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if opts.Generator == "" {
		opts.Generator = fsutil.AppName
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if registry == nil {
		registry = category.Default()
	}
	return &Builder{api: api, registry: registry, opts: opts}
}

// Build queries every category for every sort in BuildSorts. A failed leaf is
// logged and left empty; only cancellation aborts the build.
func (b *Builder) Build(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{Categories: make(map[string]map[string][]model.RawRepository)}

	first := true
	for _, name := range b.registry.Names() {
		sorts := make(map[string][]model.RawRepository, len(BuildSorts))
		snap.Categories[name] = sorts

		for _, sort := range BuildSorts {
			if !first {
				if err := sleep(ctx, b.opts.Delay); err != nil {
					return nil, err
				}
			}
			first = false

			items, err := b.api.SearchRepositories(ctx, github.SearchQuery{
				Topics:  b.registry.TopicsFor(name),
				Sort:    string(sort),
				Order:   "desc",
				PerPage: b.opts.PerPage,
			})
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if err != nil {
				logger.Warn("Error fetching leaf", logger.Fields{
					"category": name,
					"sort":     string(sort),
					"error":    err.Error(),
				})
				items = nil
			}

			leaf := make([]model.RawRepository, 0, len(items))
			for _, item := range items {
				leaf = append(leaf, simplify(item))
			}
			sorts[string(sort)] = leaf

			if b.opts.Progress != nil {
				b.opts.Progress(name, sort, len(leaf), err)
			}
		}
	}

	now := b.opts.Now().UTC().Truncate(time.Second)
	snap.stamped = true
	snap.LastUpdated = now
	snap.Metadata = &Metadata{
		FormatVersion: FormatVersion,
		Generator:     b.opts.Generator,
		GeneratedAt:   now.Format(time.RFC3339),
	}
	return snap, nil
}

// simplify keeps the fields the dashboard renders.
func simplify(item model.RawRepository) model.RawRepository {
	return model.RawRepository{
		ID:              item.ID,
		Name:            item.Name,
		FullName:        item.FullName,
		HTMLURL:         item.HTMLURL,
		Description:     item.Description,
		Language:        item.Language,
		StargazersCount: item.StargazersCount,
		ForksCount:      item.ForksCount,
		OpenIssuesCount: item.OpenIssuesCount,
		WatchersCount:   item.WatchersCount,
		UpdatedAt:       item.UpdatedAt,
		CreatedAt:       item.CreatedAt,
		Topics:          item.Topics,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Compression names accepted by Write.
var compressions = map[string]archives.Compressor{
	"gz":  archives.Gz{},
	"zst": archives.Zstd{},
	"xz":  archives.Xz{},
	"bz2": archives.Bz2{},
}

// Compressions lists the values accepted for the compress argument of Write.
func Compressions() []string {
	return []string{"none", "gz", "zst", "xz", "bz2"}
}

// Write stores snap at path as indented JSON, optionally compressed, replacing
// any existing file atomically.
func Write(snap *Snapshot, path, compression string) error {
	compression = strings.ToLower(strings.TrimPrefix(compression, "."))

	var compressor archives.Compressor
	if compression != "" && compression != "none" {
		c, ok := compressions[compression]
		if !ok {
			return fmt.Errorf("unknown compression %q (want one of %s)", compression, strings.Join(Compressions(), ", "))
		}
		compressor = c
	}

	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return fsutil.WriteFileAtomic(path, fsutil.FileModeDefault, func(w io.Writer) error {
		if compressor == nil {
			_, err := w.Write(body)
			return err
		}
		cw, err := compressor.OpenWriter(w)
		if err != nil {
			return fmt.Errorf("failed to open %s writer: %w", compression, err)
		}
		if _, err := cw.Write(body); err != nil {
			_ = cw.Close()
			return err
		}
		return cw.Close()
	})
}
