package search

import (
	"reflect"
	"testing"
)

func TestFilterValidate(t *testing.T) {
	cases := []struct {
		name    string
		filter  Filter
		wantErr bool
	}{
		{"eq with value", Filter{Field: "status", Operator: OpEq, Value: "active"}, false},
		{"eq without value", Filter{Field: "status", Operator: OpEq}, true},
		{"between two values", Filter{Field: "price", Operator: OpBetween, Value: []any{1, 2}}, false},
		{"between one value", Filter{Field: "price", Operator: OpBetween, Value: []any{1}}, true},
		{"between three values", Filter{Field: "price", Operator: OpBetween, Value: []any{1, 2, 3}}, true},
		{"between scalar", Filter{Field: "price", Operator: OpBetween, Value: 7}, true},
		{"in non-empty", Filter{Field: "tag", Operator: OpIn, Value: []string{"a"}}, false},
		{"in empty", Filter{Field: "tag", Operator: OpIn, Value: []any{}}, true},
		{"not_in empty", Filter{Field: "tag", Operator: OpNotIn, Value: []any{}}, true},
		{"null without value", Filter{Field: "deleted_at", Operator: OpNull}, false},
		{"null with value", Filter{Field: "deleted_at", Operator: OpNull, Value: 1}, true},
		{"not_null without value", Filter{Field: "deleted_at", Operator: OpNotNull}, false},
		{"unknown operator", Filter{Field: "x", Operator: "regex", Value: ".*"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.filter.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestValueList(t *testing.T) {
	if vs, ok := ValueList([]string{"a", "b"}); !ok || len(vs) != 2 {
		t.Errorf("typed slice: got %v, %v", vs, ok)
	}
	if vs, ok := ValueList([]any{1, 2}); !ok || len(vs) != 2 {
		t.Errorf("any slice: got %v, %v", vs, ok)
	}
	if _, ok := ValueList("scalar"); ok {
		t.Error("scalar must not convert")
	}
	if _, ok := ValueList(nil); ok {
		t.Error("nil must not convert")
	}
}

func TestRuns(t *testing.T) {
	filters := []Filter{
		{Field: "a", Operator: OpEq, Value: 1},
		{Field: "b", Operator: OpEq, Value: 2},
		{Field: "c", Operator: OpEq, Value: 3, Combinator: CombOr},
		{Field: "d", Operator: OpEq, Value: 4},
	}
	runs := Runs(filters)
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
	if len(runs[0]) != 2 || runs[0][1].Field != "b" {
		t.Errorf("first run %v", runs[0])
	}
	if len(runs[1]) != 1 || runs[1][0].Field != "c" {
		t.Errorf("second run %v", runs[1])
	}
	if len(runs[2]) != 1 || runs[2][0].Field != "d" {
		t.Errorf("third run %v", runs[2])
	}
}

func TestFilterSetBuilder(t *testing.T) {
	s := NewFilterSet().
		Where("status", OpEq, "active").
		OrWhere("kind", OpEq, "draft")

	filters := s.Filters()
	if len(filters) != 2 {
		t.Fatalf("got %d filters, want 2", len(filters))
	}
	if filters[0].Comb() != CombAnd {
		t.Errorf("Where must combine with AND")
	}
	if filters[1].Comb() != CombOr {
		t.Errorf("OrWhere must combine with OR")
	}
}

func TestFilterSetQueryParamsRoundTrip(t *testing.T) {
	s := NewFilterSet().
		Where("status", OpEq, "active").
		Where("category", OpIn, []any{"a", "b"}).
		OrWhere("deleted_at", OpNull, nil)

	params := s.ToQueryParams()
	got, err := FromQueryParams(params)
	if err != nil {
		t.Fatalf("FromQueryParams: %v", err)
	}

	filters := got.Filters()
	if len(filters) != 3 {
		t.Fatalf("got %d filters, want 3", len(filters))
	}
	if filters[0].Field != "status" || filters[0].Value != "active" {
		t.Errorf("first filter %+v", filters[0])
	}
	if !reflect.DeepEqual(filters[1].Value, []any{"a", "b"}) {
		t.Errorf("list value %v", filters[1].Value)
	}
	if filters[2].Operator != OpNull || filters[2].Value != nil {
		t.Errorf("null filter %+v", filters[2])
	}
	if filters[2].Comb() != CombOr {
		t.Errorf("combinator lost in round trip")
	}
}

func TestFromQueryParamsMalformed(t *testing.T) {
	s := NewFilterSet().Where("status", OpEq, "active")
	params := s.ToQueryParams()
	params.Add("filter", "nocolons")
	if _, err := FromQueryParams(params); err == nil {
		t.Fatal("expected error for malformed parameter")
	}
}

func TestValidateSorts(t *testing.T) {
	t.Run("single distance", func(t *testing.T) {
		sorts := []SortSpec{SortByDistance("location", 1, 2, "asc"), SortBy("price", "asc")}
		if err := ValidateSorts(sorts); err != nil {
			t.Errorf("ValidateSorts: %v", err)
		}
	})
	t.Run("two distance sorts", func(t *testing.T) {
		sorts := []SortSpec{SortByDistance("a", 1, 2, "asc"), SortByDistance("b", 3, 4, "asc")}
		if err := ValidateSorts(sorts); err == nil {
			t.Error("expected error for two distance sorts")
		}
	})
	t.Run("distance without point", func(t *testing.T) {
		sorts := []SortSpec{{Field: "location", Kind: SortDistance}}
		if err := ValidateSorts(sorts); err == nil {
			t.Error("expected error for distance sort without point")
		}
	})
	t.Run("plain without field", func(t *testing.T) {
		if err := ValidateSorts([]SortSpec{{Kind: SortPlain}}); err == nil {
			t.Error("expected error for plain sort without field")
		}
	})
}

func TestSortSpecDefaults(t *testing.T) {
	s := SortSpec{Field: "price"}
	if s.Dir() != "asc" {
		t.Errorf("default direction %q, want asc", s.Dir())
	}
	if s.EffectiveKind() != SortPlain {
		t.Errorf("default kind %q, want plain", s.EffectiveKind())
	}
}
