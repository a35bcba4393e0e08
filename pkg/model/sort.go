package model

import (
	"cmp"
	"slices"
)

// SortKey names an ordering of repository records.
type SortKey string

const (
	SortStars    SortKey = "stars"
	SortForks    SortKey = "forks"
	SortUpdated  SortKey = "updated"
	SortNewest   SortKey = "newest"
	SortTrending SortKey = "trending"
)

// SortKeys lists the keys understood by SortBy, in menu order.
func SortKeys() []SortKey {
	return []SortKey{SortStars, SortForks, SortUpdated, SortNewest, SortTrending}
}

// Known reports whether the key has its own ordering.
func (k SortKey) Known() bool {
	return slices.Contains(SortKeys(), k)
}

// SortBy returns a copy of records ordered by key, descending and stable.
// Unknown keys order by stars.
//
// Trending orders by TrendingScore with stars as tiebreak. Snapshot records
// carry no trending data, so for them trending is the same as stars.
func SortBy(records []Repository, key SortKey) []Repository {
	out := slices.Clone(records)
	slices.SortStableFunc(out, comparator(key))
	return out
}

func comparator(key SortKey) func(a, b Repository) int {
	switch key {
	case SortForks:
		return func(a, b Repository) int { return cmp.Compare(b.Forks, a.Forks) }
	case SortUpdated:
		return func(a, b Repository) int { return b.UpdatedAt.Compare(a.UpdatedAt) }
	case SortNewest:
		return func(a, b Repository) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case SortTrending:
		return func(a, b Repository) int {
			if c := cmp.Compare(b.TrendingScore, a.TrendingScore); c != 0 {
				return c
			}
			return cmp.Compare(b.Stars, a.Stars)
		}
	default:
		return func(a, b Repository) int { return cmp.Compare(b.Stars, a.Stars) }
	}
}

// Paginate returns the 1-based page of the given size. A page past the end,
// or a page below 1, is empty.
func Paginate(records []Repository, page, size int) []Repository {
	if page < 1 || size < 1 {
		return []Repository{}
	}
	start := (page - 1) * size
	if start >= len(records) {
		return []Repository{}
	}
	end := min(start+size, len(records))
	return slices.Clone(records[start:end])
}
