// Package dashboard holds the browse view state: the selected category, sort
// and page, the accumulated results and the client-side filters.
package dashboard

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/glorpus-work/repodash/internal/logger"
	"github.com/glorpus-work/repodash/pkg/cache"
	"github.com/glorpus-work/repodash/pkg/errors"
	"github.com/glorpus-work/repodash/pkg/filter"
	"github.com/glorpus-work/repodash/pkg/model"
	"github.com/glorpus-work/repodash/pkg/retrieval"
)

// Defaults for a new session.
const (
	DefaultCategory = "AI"
	DefaultSort     = model.SortStars
)

// ErrNoMorePages is returned by LoadMore when the last page was short.
var ErrNoMorePages = fmt.Errorf("no more results")

// Searcher is the retrieval surface the session needs.
type Searcher interface {
	Search(ctx context.Context, category string, sort model.SortKey, page int) (*retrieval.SearchResult, error)
	ClearCache() cache.CleanResult
	PerPage() int
}

// State is a copy of the view state.
type State struct {
	Category string
	Sort     model.SortKey
	Page     int
	HasMore  bool
	Loading  bool
	Results  int
	Filter   filter.Criteria
}

// Update describes the outcome of one load.
type Update struct {
	Result  *retrieval.SearchResult
	Added   int
	Stale   bool
	Replace bool
}

// Stats summarizes the accumulated results.
type Stats struct {
	Repos      int
	Stars      int
	Forks      int
	Categories int
	Languages  []LanguageCount
}

// LanguageCount is one row of the language breakdown.
type LanguageCount struct {
	Language string
	Count    int
}

// Session is safe for concurrent use. Only the response to the most recently
// issued load is applied; earlier responses are reported as stale.
type Session struct {
	searcher        Searcher
	categoryCount   int
	defaultCategory string

	mu         sync.Mutex
	category   string
	sort       model.SortKey
	page       int
	hasMore    bool
	loading    bool
	results    []model.Repository
	criteria   filter.Criteria
	filter     *filter.Filter
	generation uint64
}

// Options configures a Session.
type Options struct {
	Category   string
	Sort       model.SortKey
	Categories int
}

// New creates a session on page 1 of the given category and sort.
func New(searcher Searcher, opts Options) *Session {
	if opts.Category == "" {
		opts.Category = DefaultCategory
	}
	if opts.Sort == "" {
		opts.Sort = DefaultSort
	}
	f, _ := filter.New(filter.Criteria{}, nil)
	return &Session{
		searcher:        searcher,
		categoryCount:   opts.Categories,
		defaultCategory: opts.Category,
		category:        opts.Category,
		sort:            opts.Sort,
		page:            1,
		hasMore:         true,
		filter:          f,
	}
}

// State returns a copy of the current view state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Category: s.category,
		Sort:     s.sort,
		Page:     s.page,
		HasMore:  s.hasMore,
		Loading:  s.loading,
		Results:  len(s.results),
		Filter:   s.criteria,
	}
}

// Load fetches the current page again.
func (s *Session) Load(ctx context.Context) (*Update, error) {
	return s.load(ctx, nil)
}

// SetCategory switches category and reloads from page 1.
func (s *Session) SetCategory(ctx context.Context, name string) (*Update, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.ErrEmptyCategory
	}
	return s.load(ctx, func() {
		s.category = name
		s.page = 1
	})
}

// SetSort switches sort and reloads from page 1.
func (s *Session) SetSort(ctx context.Context, key model.SortKey) (*Update, error) {
	return s.load(ctx, func() {
		s.sort = key
		s.page = 1
	})
}

// LoadMore appends the next page. It is a no-op while a load is in flight.
func (s *Session) LoadMore(ctx context.Context) (*Update, error) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return &Update{Stale: true}, nil
	}
	if !s.hasMore {
		s.mu.Unlock()
		return nil, ErrNoMorePages
	}
	s.mu.Unlock()

	return s.load(ctx, func() { s.page++ })
}

// Refresh clears every cache and reloads page 1.
func (s *Session) Refresh(ctx context.Context) (*Update, error) {
	cleaned := s.searcher.ClearCache()
	logger.Debug("Refreshing dashboard", logger.Fields{"cache_entries": cleaned.EntriesFreed})
	return s.load(ctx, func() { s.page = 1 })
}

// Reset restores the default category, sort and filters and reloads.
func (s *Session) Reset(ctx context.Context) (*Update, error) {
	return s.load(ctx, func() {
		s.category = s.defaultCategory
		s.sort = DefaultSort
		s.page = 1
		s.criteria = filter.Criteria{}
		s.filter, _ = filter.New(s.criteria, nil)
	})
}

// SetFilter replaces the client-side filter. Results are not reloaded.
func (s *Session) SetFilter(c filter.Criteria) error {
	f, err := filter.New(c, nil)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = c
	s.filter = f
	return nil
}

// Filter returns the active filter criteria.
func (s *Session) Filter() filter.Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria
}

// Results returns every accumulated record, unfiltered.
func (s *Session) Results() []model.Repository {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Repository(nil), s.results...)
}

// Visible returns the accumulated records that pass the active filter.
func (s *Session) Visible(ctx context.Context) ([]model.Repository, error) {
	s.mu.Lock()
	records := append([]model.Repository(nil), s.results...)
	f := s.filter
	s.mu.Unlock()

	return f.Apply(ctx, records)
}

// Stats summarizes the accumulated records.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Repos: len(s.results), Categories: s.categoryCount}
	counts := map[string]int{}
	for _, r := range s.results {
		st.Stars += r.Stars
		st.Forks += r.Forks
		lang := r.LanguageName()
		if lang == "" {
			lang = "Other"
		}
		counts[lang]++
	}
	for lang, n := range counts {
		st.Languages = append(st.Languages, LanguageCount{Language: lang, Count: n})
	}
	slices.SortFunc(st.Languages, func(a, b LanguageCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Language, b.Language)
	})
	return st
}

func (s *Session) load(ctx context.Context, mutate func()) (*Update, error) {
	s.mu.Lock()
	prevPage := s.page
	if mutate != nil {
		mutate()
	}
	s.generation++
	gen := s.generation
	category, key, page := s.category, s.sort, s.page
	s.loading = true
	s.mu.Unlock()

	result, err := s.searcher.Search(ctx, category, key, page)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		logger.Debug("Discarding stale response", logger.Fields{
			"category": category,
			"sort":     string(key),
			"page":     page,
		})
		return &Update{Result: result, Stale: true}, nil
	}
	s.loading = false

	if err != nil {
		if page > 1 && page == prevPage+1 {
			s.page = prevPage
		}
		return nil, err
	}

	update := &Update{Result: result, Added: len(result.Records), Replace: page == 1}
	if page == 1 {
		s.results = append([]model.Repository(nil), result.Records...)
	} else {
		s.results = append(s.results, result.Records...)
	}
	s.hasMore = len(result.Records) == s.searcher.PerPage()
	return update, nil
}
