package filter

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/glorpus-work/repodash/pkg/errors"
	"github.com/glorpus-work/repodash/pkg/model"
)

const resultVar = "filter_result"

// Variables visible to an expression, with their zero values.
var exprVars = map[string]interface{}{
	"name":        "",
	"description": "",
	"language":    "",
	"category":    "",
	"url":         "",
	"stars":       0,
	"forks":       0,
	"issues":      0,
	"watchers":    0,
	"score":       0.0,
	"age_days":    0,
	"topics":      []interface{}{},
}

// Expression is a compiled Tengo boolean expression such as
// `stars > 1000 && language == "Go"`.
type Expression struct {
	source   string
	compiled *tengo.Compiled
}

// Compile checks and compiles a filter expression.
func Compile(source string) (*Expression, error) {
	script := tengo.NewScript([]byte("text := import(\"text\")\n" + resultVar + " := (" + source + ")"))
	script.SetImports(stdlib.GetModuleMap("text", "math", "times"))

	for name, zero := range exprVars {
		if err := script.Add(name, zero); err != nil {
			return nil, fmt.Errorf("failed to add %s to expression: %w", name, err)
		}
	}

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrFilterCompile, err)
	}
	return &Expression{source: source, compiled: compiled}, nil
}

// String returns the expression source.
func (e *Expression) String() string {
	return e.source
}

// Eval runs the expression against one record.
func (e *Expression) Eval(ctx context.Context, r model.Repository, now time.Time) (bool, error) {
	c := e.compiled.Clone()

	topics := make([]interface{}, 0, len(r.Topics))
	for _, t := range r.Topics {
		topics = append(topics, t)
	}

	vars := map[string]interface{}{
		"name":        r.FullName,
		"description": r.Description,
		"language":    r.LanguageName(),
		"category":    r.Category,
		"url":         r.HTMLURL,
		"stars":       r.Stars,
		"forks":       r.Forks,
		"issues":      r.OpenIssues,
		"watchers":    r.Watchers,
		"score":       r.TrendingScore,
		"age_days":    ageDays(r.UpdatedAt, now),
		"topics":      topics,
	}
	for name, v := range vars {
		if err := c.Set(name, v); err != nil {
			return false, fmt.Errorf("failed to set %s: %w", name, err)
		}
	}

	if err := c.RunContext(ctx); err != nil {
		return false, fmt.Errorf("evaluating %q for %s: %w", e.source, r.FullName, err)
	}

	v := c.Get(resultVar)
	matched, ok := v.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: got %s", errors.ErrFilterResult, v.ValueType())
	}
	return matched, nil
}

func ageDays(t, now time.Time) int {
	if t.IsZero() {
		return math.MaxInt32
	}
	return int(now.Sub(t).Hours() / 24)
}
