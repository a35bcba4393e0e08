// Package filter narrows a page of repositories by language, recency and an
// optional Tengo expression.
package filter

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/glorpus-work/repodash/pkg/errors"
	"github.com/glorpus-work/repodash/pkg/model"
)

// OtherLanguage matches records without a language.
const OtherLanguage = "other"

// Criteria is the user-facing filter state. The zero value matches everything.
type Criteria struct {
	Languages []string      `json:"languages,omitempty"`
	Since     time.Duration `json:"since,omitempty"`
	Where     string        `json:"where,omitempty"`
}

// IsZero reports whether no filter is active.
func (c Criteria) IsZero() bool {
	return len(c.Languages) == 0 && c.Since <= 0 && strings.TrimSpace(c.Where) == ""
}

// Filter is a compiled Criteria.
type Filter struct {
	languages map[string]bool
	since     time.Duration
	expr      *Expression
	now       func() time.Time
}

// New compiles criteria. now may be nil.
func New(c Criteria, now func() time.Time) (*Filter, error) {
	if now == nil {
		now = time.Now
	}
	f := &Filter{since: c.Since, now: now}

	if len(c.Languages) > 0 {
		f.languages = make(map[string]bool, len(c.Languages))
		for _, lang := range c.Languages {
			lang = strings.ToLower(strings.TrimSpace(lang))
			if lang != "" {
				f.languages[lang] = true
			}
		}
	}

	if strings.TrimSpace(c.Where) != "" {
		expr, err := Compile(c.Where)
		if err != nil {
			return nil, err
		}
		f.expr = expr
	}
	return f, nil
}

// Match reports whether a record passes every active filter.
func (f *Filter) Match(ctx context.Context, r model.Repository) (bool, error) {
	if len(f.languages) > 0 {
		lang := strings.ToLower(r.LanguageName())
		if lang == "" {
			lang = OtherLanguage
		}
		if !f.languages[lang] {
			return false, nil
		}
	}

	if f.since > 0 {
		if r.UpdatedAt.IsZero() || r.UpdatedAt.Before(f.now().Add(-f.since)) {
			return false, nil
		}
	}

	if f.expr != nil {
		return f.expr.Eval(ctx, r, f.now())
	}
	return true, nil
}

// Apply returns the matching records in their original order.
func (f *Filter) Apply(ctx context.Context, records []model.Repository) ([]model.Repository, error) {
	out := make([]model.Repository, 0, len(records))
	for _, r := range records {
		ok, err := f.Match(ctx, r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

var namedRanges = map[string]time.Duration{
	"all":   0,
	"":      0,
	"day":   24 * time.Hour,
	"today": 24 * time.Hour,
	"week":  7 * 24 * time.Hour,
	"month": 30 * 24 * time.Hour,
	"year":  365 * 24 * time.Hour,
}

// ParseRange parses a recency window: all, day, week, month, year, Nd, Nw or
// any Go duration. Zero means no limit.
func ParseRange(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if d, ok := namedRanges[s]; ok {
		return d, nil
	}

	for suffix, unit := range map[string]time.Duration{"d": 24 * time.Hour, "w": 7 * 24 * time.Hour} {
		if n, ok := strings.CutSuffix(s, suffix); ok {
			if v, err := strconv.Atoi(n); err == nil && v >= 0 {
				return time.Duration(v) * unit, nil
			}
		}
	}

	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %q", errors.ErrInvalidDuration, s)
	}
	return d, nil
}
