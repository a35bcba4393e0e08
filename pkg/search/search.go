// Package search fetches category pages from the GitHub search API, enriches
// them with trending scores and keeps recent pages in a TTL cache.
package search

import (
	"context"
	stderrors "errors"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/glorpus-work/repodash/internal/logger"
	"github.com/glorpus-work/repodash/pkg/cache"
	"github.com/glorpus-work/repodash/pkg/category"
	"github.com/glorpus-work/repodash/pkg/errors"
	"github.com/glorpus-work/repodash/pkg/github"
	"github.com/glorpus-work/repodash/pkg/model"
)

// Defaults for Options.
const (
	DefaultPerPage             = 30
	DefaultTrendingDays        = 7
	DefaultTrendingConcurrency = 1
)

// Options tunes the remote search.
type Options struct {
	PerPage             int
	TrendingDays        int
	TrendingConcurrency int
}

// Client answers (category, sort, page) requests from the remote API.
type Client struct {
	api      github.Client
	registry *category.Registry
	cache    *cache.Store[[]model.Repository]
	opts     Options
}

// NewClient creates a search client. A nil store disables caching.
func NewClient(api github.Client, registry *category.Registry, store *cache.Store[[]model.Repository], opts Options) *Client {
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultPerPage
	}
	if opts.TrendingDays <= 0 {
		opts.TrendingDays = DefaultTrendingDays
	}
	if opts.TrendingConcurrency <= 0 {
		opts.TrendingConcurrency = DefaultTrendingConcurrency
	}
	if registry == nil {
		registry = category.Default()
	}
	return &Client{api: api, registry: registry, cache: store, opts: opts}
}

// PerPage returns the page size used for requests.
func (c *Client) PerPage() int {
	return c.opts.PerPage
}

// Fetch returns one page of repositories for a category in the requested order.
// The returned slice is owned by the caller. Failures are *errors.NetworkError,
// *errors.RateLimitError or *errors.RemoteError and are never cached.
func (c *Client) Fetch(ctx context.Context, categoryName string, sort model.SortKey, page int) ([]model.Repository, error) {
	key := cache.Key{Category: categoryName, Sort: string(sort), Page: page}
	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			logger.Debug("Serving search from cache", logger.Fields{"key": key.String()})
			return slices.Clone(cached), nil
		}
	}

	query := github.SearchQuery{
		Topics:  c.registry.TopicsFor(categoryName),
		Sort:    APISort(sort),
		Order:   "desc",
		PerPage: c.opts.PerPage,
		Page:    page,
	}

	raws, err := c.api.SearchRepositories(ctx, query)
	if err != nil {
		return nil, err
	}

	if sort == model.SortTrending {
		if err := c.enrich(ctx, raws); err != nil {
			return nil, err
		}
	}

	records := model.NormalizeAll(raws, categoryName)
	if sort == model.SortTrending || query.Sort == "" {
		records = model.SortBy(records, sort)
	}

	if c.cache != nil {
		c.cache.Set(key, slices.Clone(records))
	}
	return records, nil
}

// ClearCache drops every cached page.
func (c *Client) ClearCache() cache.CleanResult {
	if c.cache == nil {
		return cache.CleanResult{}
	}
	return c.cache.Clean()
}

// CacheInfo reports cache statistics.
func (c *Client) CacheInfo() cache.Info {
	if c.cache == nil {
		return cache.Info{}
	}
	return c.cache.GetInfo()
}

// APISort translates a dashboard sort key to the search API vocabulary.
// An empty result means the parameter is omitted and ordering happens locally.
func APISort(sort model.SortKey) string {
	switch sort {
	case model.SortStars, model.SortForks, model.SortUpdated:
		return string(sort)
	case model.SortTrending:
		return string(model.SortStars)
	default:
		return ""
	}
}

// enrich sets TrendingScore on every record. A failed lookup leaves that
// record at zero and does not affect the others.
func (c *Client) enrich(ctx context.Context, raws []model.RawRepository) error {
	g := new(errgroup.Group)
	g.SetLimit(c.opts.TrendingConcurrency)

	for i := range raws {
		g.Go(func() error {
			score, err := c.score(ctx, raws[i].FullName)
			if err != nil {
				logger.Warn("Could not calculate trending", logger.Fields{
					"repo":  raws[i].FullName,
					"error": (&errors.StatsError{FullName: raws[i].FullName, Err: err}).Error(),
				})
				score = 0
			}
			raws[i].TrendingScore = &score
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return &errors.NetworkError{Op: "trending enrichment", Err: err}
	}
	return nil
}

func (c *Client) score(ctx context.Context, fullName string) (float64, error) {
	weeks, err := c.api.CommitActivity(ctx, fullName)
	if stderrors.Is(err, github.ErrStatsComputing) {
		logger.Debug("Commit activity not ready", logger.Fields{"repo": fullName})
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return TrendingScore(weeks, c.opts.TrendingDays), nil
}

// TrendingScore averages the last days weekly totals over days.
func TrendingScore(weeks []github.WeeklyCommits, days int) float64 {
	if days <= 0 || len(weeks) == 0 {
		return 0
	}
	recent := weeks
	if len(recent) > days {
		recent = recent[len(recent)-days:]
	}
	total := 0
	for _, w := range recent {
		total += w.Total
	}
	return float64(total) / float64(days)
}
