package typesense

import (
	"encoding/json"
	"testing"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/searchbridge/searchbridge/config"
	"github.com/searchbridge/searchbridge/search"
	tsclient "github.com/searchbridge/searchbridge/search/typesense/client"
)

func testAdapter() *Adapter {
	return NewAdapter(tsclient.NewClient("", ""), config.Retry{Attempts: 1})
}

// searchResult decodes an engine response fixture the way the client
// does, so fixtures stay independent of the generated struct shapes.
func searchResult(t *testing.T, payload string) *api.SearchResult {
	t.Helper()
	var res api.SearchResult
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		t.Fatalf("decoding fixture: %v", err)
	}
	return &res
}

func TestBuildEnvelope(t *testing.T) {
	res := searchResult(t, `{
		"found": 2,
		"hits": [
			{
				"document": {"id": "1", "title": "Wireless headphones", "price": 129.99},
				"text_match": 578730,
				"highlights": [
					{"field": "title", "snippet": "Wireless <mark>headphones</mark>"}
				]
			},
			{
				"document": {"id": "2", "title": "Desk lamp"}
			}
		]
	}`)

	env := buildEnvelope(res, 10, &search.Options{Offset: 0})

	if env.TotalFound != 2 {
		t.Errorf("total %d, want 2", env.TotalFound)
	}
	if len(env.Hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(env.Hits))
	}

	first := env.Hits[0]
	if first.ID != "1" {
		t.Errorf("id %q", first.ID)
	}
	if first.Score != 578730 {
		t.Errorf("score %v, want engine text match", first.Score)
	}
	if first.Highlights["title"] != "Wireless <mark>headphones</mark>" {
		t.Errorf("highlights %v", first.Highlights)
	}
	if first.Document["price"] != 129.99 {
		t.Errorf("document %v", first.Document)
	}

	if env.Hits[1].Highlights != nil {
		t.Errorf("unexpected highlights %v", env.Hits[1].Highlights)
	}
}

func TestBuildEnvelopeNil(t *testing.T) {
	env := buildEnvelope(nil, 10, &search.Options{Offset: 20})
	if len(env.Hits) != 0 || env.TotalFound != 0 {
		t.Errorf("nil response must produce an empty envelope, got %+v", env)
	}
	if env.Page.Limit != 10 || env.Page.Offset != 20 {
		t.Errorf("page info %+v", env.Page)
	}
}

func TestBuildEnvelopeFacets(t *testing.T) {
	res := searchResult(t, `{
		"found": 0,
		"hits": [],
		"facet_counts": [
			{
				"field_name": "category",
				"counts": [
					{"value": "electronics", "count": 42},
					{"value": "books", "count": 17}
				]
			}
		]
	}`)

	opts := &search.Options{
		Facets:        []search.FacetSpec{search.TermsFacet("category")},
		AppliedFacets: map[string][]string{"category": {"books"}},
	}
	env := buildEnvelope(res, 10, opts)

	facetRes := env.Facets["category"]
	if facetRes == nil {
		t.Fatal("missing category facet")
	}
	if len(facetRes.Values) != 2 {
		t.Fatalf("got %d values, want 2", len(facetRes.Values))
	}
	if facetRes.Values[0].Value != "electronics" || facetRes.Values[0].Count != 42 {
		t.Errorf("top value %+v", facetRes.Values[0])
	}
	if !facetRes.Values[1].Selected {
		t.Error("applied value not marked selected")
	}
}

func TestBuildParams(t *testing.T) {
	a := testAdapter()
	opts := &search.Options{
		Offset: 20,
		Filters: []search.Filter{
			{Field: "price", Operator: search.OpBetween, Value: []any{500, 2000}},
			{Field: "category", Operator: search.OpIn, Value: []any{"electronics", "computers"}},
		},
		SortBy:          []search.SortSpec{search.SortBy("price", "desc")},
		Facets:          []search.FacetSpec{search.TermsFacet("category"), search.TermsFacet("brand")},
		HighlightFields: []string{"title", "description"},
	}

	params, err := a.buildParams("laptop", 10, opts)
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}

	if *params.Q != "laptop" {
		t.Errorf("q %q", *params.Q)
	}
	if *params.Limit != 10 || *params.Offset != 20 {
		t.Errorf("limit %d offset %d, want 10/20", *params.Limit, *params.Offset)
	}
	if *params.FilterBy != `(price:=[500..2000]) && (category:=["electronics","computers"])` {
		t.Errorf("filter_by %q", *params.FilterBy)
	}
	if *params.SortBy != "price:desc" {
		t.Errorf("sort_by %q", *params.SortBy)
	}
	if *params.FacetBy != "category,brand" {
		t.Errorf("facet_by %q", *params.FacetBy)
	}
	if *params.HighlightFields != "title,description" {
		t.Errorf("highlight_fields %q", *params.HighlightFields)
	}
}

func TestBuildParamsDefaults(t *testing.T) {
	a := testAdapter()
	params, err := a.buildParams("", 10, &search.Options{})
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}
	if *params.Q != "*" {
		t.Errorf("empty query must become the match-all query, got %q", *params.Q)
	}
	if *params.QueryBy != defaultQueryBy {
		t.Errorf("query_by %q", *params.QueryBy)
	}
	if params.FilterBy != nil || params.SortBy != nil || params.FacetBy != nil {
		t.Error("absent options must stay absent, not empty strings")
	}
	if *params.Limit != 10 {
		t.Errorf("limit %d, want 10", *params.Limit)
	}
	if params.Offset != nil {
		t.Errorf("zero offset must stay absent, got %d", *params.Offset)
	}
}

func TestBuildParamsUnalignedOffset(t *testing.T) {
	// Offsets are passed through verbatim; an offset that is not a
	// multiple of the limit must not be rounded to a page boundary.
	a := testAdapter()
	params, err := a.buildParams("q", 10, &search.Options{Offset: 25})
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}
	if *params.Offset != 25 {
		t.Errorf("offset %d, want 25", *params.Offset)
	}
	if *params.Limit != 10 {
		t.Errorf("limit %d, want 10", *params.Limit)
	}
}

func TestConfigureQueryBy(t *testing.T) {
	a := testAdapter()
	if err := a.Configure(map[string]any{"query_by": "name,summary"}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	params, err := a.buildParams("q", 10, &search.Options{})
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}
	if *params.QueryBy != "name,summary" {
		t.Errorf("query_by %q", *params.QueryBy)
	}

	if err := a.Configure(map[string]any{"query_by": 7}); err == nil {
		t.Error("non-string query_by must be rejected")
	}
	if err := a.Configure(map[string]any{"query_by": ""}); err == nil {
		t.Error("empty query_by must be rejected")
	}
}

func TestHighlightsFallback(t *testing.T) {
	hs := []api.SearchHighlight{
		{Field: pointer.String("title"), Value: pointer.String("full value")},
		{Field: pointer.String("body")},
	}
	out := highlights(hs)
	if out["title"] != "full value" {
		t.Errorf("value fallback missing, got %v", out)
	}
	if _, ok := out["body"]; ok {
		t.Error("highlight without content must be dropped")
	}
}
