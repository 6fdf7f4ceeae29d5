// Package translate renders the generic filter/sort representation
// into engine-native syntax.
//
// Translation is deterministic: the same filters and dialect always
// produce byte-identical output. Filters are partitioned into maximal
// runs of consecutive same-combinator filters, preserving input order;
// a run is never re-ordered, only grouped.
package translate

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/searchbridge/searchbridge/search"
)

var (
	// ErrUnsupportedFilter is the documented marker for engines
	// without structured-filter support. Adapters receiving it
	// return an empty result set, never a silent no-op.
	ErrUnsupportedFilter = errors.New("structured filters not supported by engine")
	// ErrUnsupportedSort marks a sort kind the engine cannot
	// express.
	ErrUnsupportedSort = errors.New("sort kind not supported by engine")
)

// Dialect renders individual filters and sorts in one engine's syntax.
type Dialect interface {
	Name() string
	// RenderFilter renders a single validated filter condition.
	RenderFilter(f search.Filter) (string, error)
	// RenderSort renders a single sort criterion. An empty string
	// with nil error means the criterion is the engine's default and
	// is omitted.
	RenderSort(s search.SortSpec) (string, error)
	// And and Or are the dialect's combinator tokens.
	And() string
	Or() string
	// Group wraps an expression in the dialect's grouping syntax.
	Group(expr string) string
}

var (
	dialectMu sync.RWMutex
	dialects  = map[string]Dialect{
		search.Embedded:    embeddedDialect{},
		search.Typesense:   typesenseDialect{},
		search.Meilisearch: meiliDialect{},
	}
)

// Register adds a dialect for a custom engine.
func Register(d Dialect) {
	dialectMu.Lock()
	defer dialectMu.Unlock()
	dialects[d.Name()] = d
}

// For returns the dialect registered for the engine name.
func For(name string) (Dialect, error) {
	dialectMu.RLock()
	defer dialectMu.RUnlock()
	d, ok := dialects[name]
	if !ok {
		return nil, fmt.Errorf("no dialect for engine %s", name)
	}
	return d, nil
}

// Filters renders a filter list into one engine-native expression.
//
// Each filter renders individually wrapped in the dialect's grouping;
// filters within a run join with the run's combinator token. When more
// than one run exists, each run is additionally wrapped, and runs join
// with the combinator token of the succeeding run. An empty filter
// list renders to an empty string, meaning the parameter is absent.
func Filters(d Dialect, filters []search.Filter) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}
	for _, f := range filters {
		if err := f.Validate(); err != nil {
			return "", err
		}
	}

	runs := search.Runs(filters)
	rendered := make([]string, len(runs))
	for i, run := range runs {
		parts := make([]string, len(run))
		for j, f := range run {
			expr, err := d.RenderFilter(f)
			if err != nil {
				return "", err
			}
			parts[j] = d.Group(expr)
		}
		expr := strings.Join(parts, " "+token(d, run[0].Comb())+" ")
		if len(runs) > 1 && len(run) > 1 {
			expr = d.Group(expr)
		}
		rendered[i] = expr
	}

	var b strings.Builder
	b.WriteString(rendered[0])
	for i := 1; i < len(runs); i++ {
		b.WriteString(" " + token(d, runs[i][0].Comb()) + " ")
		b.WriteString(rendered[i])
	}
	return b.String(), nil
}

// Sorts renders a sort list into one comma-joined engine-native
// expression. An empty list renders to an empty string, meaning the
// parameter is absent.
func Sorts(d Dialect, sorts []search.SortSpec) (string, error) {
	if len(sorts) == 0 {
		return "", nil
	}
	if err := search.ValidateSorts(sorts); err != nil {
		return "", err
	}

	parts := make([]string, 0, len(sorts))
	for _, s := range sorts {
		expr, err := d.RenderSort(s)
		if err != nil {
			return "", err
		}
		if expr == "" {
			continue
		}
		parts = append(parts, expr)
	}
	return strings.Join(parts, ","), nil
}

func token(d Dialect, c search.Combinator) string {
	if c == search.CombOr {
		return d.Or()
	}
	return d.And()
}
