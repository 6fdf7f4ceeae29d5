package search

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

// Operator represents a generic filter operator.
type Operator string

const (
	OpEq      Operator = "eq"
	OpNeq     Operator = "neq"
	OpGt      Operator = "gt"
	OpGte     Operator = "gte"
	OpLt      Operator = "lt"
	OpLte     Operator = "lte"
	OpIn      Operator = "in"
	OpNotIn   Operator = "not_in"
	OpBetween Operator = "between"
	OpLike    Operator = "like"
	OpNull    Operator = "null"
	OpNotNull Operator = "not_null"
)

// Operators returns every generic operator. Dialect operator tables
// must cover all of them.
func Operators() []Operator {
	return []Operator{
		OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte,
		OpIn, OpNotIn, OpBetween, OpLike, OpNull, OpNotNull,
	}
}

// Combinator represents how a filter combines with its neighbors.
type Combinator string

const (
	CombAnd Combinator = "and"
	CombOr  Combinator = "or"
)

// Filter represents one generic filter condition.
type Filter struct {
	Field    string     `json:"field"`
	Operator Operator   `json:"operator"`
	Value    any        `json:"value,omitempty"`
	// Combinator defaults to CombAnd when empty.
	Combinator Combinator `json:"combinator,omitempty"`
}

// Comb returns the effective combinator.
func (f Filter) Comb() Combinator {
	if f.Combinator == CombOr {
		return CombOr
	}
	return CombAnd
}

// Validate checks the operator/value invariants: BETWEEN carries
// exactly two values, IN and NOT_IN a non-empty list, NULL and
// NOT_NULL no value at all.
func (f Filter) Validate() error {
	switch f.Operator {
	case OpBetween:
		vs, ok := ValueList(f.Value)
		if !ok || len(vs) != 2 {
			return fmt.Errorf("filter %s: between requires exactly 2 values", f.Field)
		}
	case OpIn, OpNotIn:
		vs, ok := ValueList(f.Value)
		if !ok || len(vs) == 0 {
			return fmt.Errorf("filter %s: %s requires a non-empty list", f.Field, f.Operator)
		}
	case OpNull, OpNotNull:
		if f.Value != nil {
			return fmt.Errorf("filter %s: %s takes no value", f.Field, f.Operator)
		}
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpLike:
		if f.Value == nil {
			return fmt.Errorf("filter %s: %s requires a value", f.Field, f.Operator)
		}
	default:
		return fmt.Errorf("filter %s: unknown operator %q", f.Field, f.Operator)
	}
	return nil
}

// ValueList converts a filter value to a []any when it holds a slice
// of any element type.
func ValueList(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if vs, ok := v.([]any); ok {
		return vs, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// Runs partitions filters into maximal runs of consecutive filters
// sharing the same combinator, preserving input order. A run is never
// re-ordered, only grouped.
func Runs(filters []Filter) [][]Filter {
	var runs [][]Filter
	for _, f := range filters {
		n := len(runs)
		if n > 0 && runs[n-1][0].Comb() == f.Comb() {
			runs[n-1] = append(runs[n-1], f)
			continue
		}
		runs = append(runs, []Filter{f})
	}
	return runs
}

// FilterSet is a small builder for the generic filter representation.
// It is what callers (forms, CLI glue) construct and hand to Search.
type FilterSet struct {
	filters []Filter
}

// NewFilterSet creates an empty filter set.
func NewFilterSet() *FilterSet {
	return &FilterSet{}
}

// Where appends an AND-combined filter.
func (s *FilterSet) Where(field string, op Operator, value any) *FilterSet {
	s.filters = append(s.filters, Filter{Field: field, Operator: op, Value: value, Combinator: CombAnd})
	return s
}

// OrWhere appends an OR-combined filter.
func (s *FilterSet) OrWhere(field string, op Operator, value any) *FilterSet {
	s.filters = append(s.filters, Filter{Field: field, Operator: op, Value: value, Combinator: CombOr})
	return s
}

// Filters returns the accumulated filters in insertion order.
func (s *FilterSet) Filters() []Filter {
	return s.filters
}

// ToQueryParams encodes the set as URL query parameters. Each filter
// becomes one "filter" value of the form field:operator:value, with
// list values comma-joined.
func (s *FilterSet) ToQueryParams() url.Values {
	params := url.Values{}
	for _, f := range s.filters {
		var val string
		if vs, ok := ValueList(f.Value); ok {
			parts := make([]string, len(vs))
			for i, v := range vs {
				parts[i] = fmt.Sprintf("%v", v)
			}
			val = strings.Join(parts, ",")
		} else if f.Value != nil {
			val = fmt.Sprintf("%v", f.Value)
		}
		entry := fmt.Sprintf("%s:%s:%s", f.Field, f.Operator, val)
		if f.Comb() == CombOr {
			entry = "or:" + entry
		}
		params.Add("filter", entry)
	}
	return params
}

// FromQueryParams reconstructs a filter set from parameters produced
// by ToQueryParams. Values round-trip as strings; multi-value
// operators split on commas.
func FromQueryParams(params url.Values) (*FilterSet, error) {
	s := NewFilterSet()
	for _, entry := range params["filter"] {
		comb := CombAnd
		if rest, ok := strings.CutPrefix(entry, "or:"); ok {
			comb = CombOr
			entry = rest
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 || parts[0] == "" {
			return nil, fmt.Errorf("malformed filter parameter %q", entry)
		}
		f := Filter{Field: parts[0], Operator: Operator(parts[1]), Combinator: comb}
		switch f.Operator {
		case OpIn, OpNotIn, OpBetween:
			raw := strings.Split(parts[2], ",")
			vs := make([]any, len(raw))
			for i, r := range raw {
				vs[i] = r
			}
			f.Value = vs
		case OpNull, OpNotNull:
			// no value
		default:
			f.Value = parts[2]
		}
		if err := f.Validate(); err != nil {
			return nil, err
		}
		s.filters = append(s.filters, f)
	}
	return s, nil
}
