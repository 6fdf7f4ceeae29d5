package meili

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/meilisearch/meilisearch-go"

	"github.com/searchbridge/searchbridge/config"
	"github.com/searchbridge/searchbridge/search"
)

func testAdapter() *Adapter {
	return NewAdapter(NewClient("", ""), config.Retry{Attempts: 1})
}

// searchResponse decodes an engine response fixture the way the client
// does, so fixtures stay independent of the client's response types.
func searchResponse(t *testing.T, payload string) *meilisearch.SearchResponse {
	t.Helper()
	var resp meilisearch.SearchResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		t.Fatalf("decoding fixture: %v", err)
	}
	return &resp
}

func TestBuildEnvelope(t *testing.T) {
	resp := searchResponse(t, `{
		"estimatedTotalHits": 2,
		"hits": [
			{
				"id": "1",
				"title": "Wireless headphones",
				"price": 129.99,
				"_rankingScore": 0.87,
				"_formatted": {"title": "Wireless <em>headphones</em>"}
			},
			{
				"id": "2",
				"title": "Desk lamp"
			}
		]
	}`)

	opts := &search.Options{HighlightFields: []string{"title"}}
	env := buildEnvelope(resp, 10, opts)

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
	if first.Score != 0.87 {
		t.Errorf("score %v, want engine ranking score", first.Score)
	}
	if first.Highlights["title"] != "Wireless <em>headphones</em>" {
		t.Errorf("highlights %v", first.Highlights)
	}
	if _, ok := first.Document["_rankingScore"]; ok {
		t.Error("ranking score must not leak into the document")
	}
	if _, ok := first.Document["_formatted"]; ok {
		t.Error("formatted payload must not leak into the document")
	}
	if first.Document["price"] != 129.99 {
		t.Errorf("price %v, raw values must decode", first.Document["price"])
	}

	second := env.Hits[1]
	if second.Score != 1.0 {
		t.Errorf("score without ranking score %v, want 1.0", second.Score)
	}
	if second.Highlights != nil {
		t.Errorf("unexpected highlights %v", second.Highlights)
	}
}

func TestBuildEnvelopeFacets(t *testing.T) {
	resp := searchResponse(t, `{
		"hits": [],
		"facetDistribution": {
			"category": {"electronics": 42, "books": 17}
		}
	}`)
	opts := &search.Options{
		Facets:        []search.FacetSpec{search.TermsFacet("category")},
		AppliedFacets: map[string][]string{"category": {"books"}},
	}

	env := buildEnvelope(resp, 10, opts)
	res := env.Facets["category"]
	if res == nil {
		t.Fatal("missing category facet")
	}
	if len(res.Values) != 2 || res.Values[0].Value != "electronics" {
		t.Errorf("values %v", res.Values)
	}
	if !res.Values[1].Selected {
		t.Error("applied value not marked selected")
	}
}

func TestBuildParams(t *testing.T) {
	a := testAdapter()
	opts := &search.Options{
		Offset: 20,
		Filters: []search.Filter{
			{Field: "category", Operator: search.OpEq, Value: "electronics"},
			{Field: "price", Operator: search.OpLte, Value: 500},
		},
		SortBy:          []search.SortSpec{search.SortBy("price", "asc"), search.SortBy("name", "desc")},
		Facets:          []search.FacetSpec{search.TermsFacet("category")},
		HighlightFields: []string{"title"},
	}

	params, err := a.buildParams(10, opts)
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}

	if params.Limit != 10 || params.Offset != 20 {
		t.Errorf("window %d/%d", params.Limit, params.Offset)
	}
	if params.Filter != `(category = "electronics") AND (price <= 500)` {
		t.Errorf("filter %v", params.Filter)
	}
	if !reflect.DeepEqual(params.Sort, []string{"price:asc", "name:desc"}) {
		t.Errorf("sort %v", params.Sort)
	}
	if !reflect.DeepEqual(params.Facets, []string{"category"}) {
		t.Errorf("facets %v", params.Facets)
	}
	if !reflect.DeepEqual(params.AttributesToHighlight, []string{"title"}) {
		t.Errorf("highlight %v", params.AttributesToHighlight)
	}
	if !params.ShowRankingScore {
		t.Error("ranking score must be requested")
	}
}

func TestBuildParamsFilterExprPassthrough(t *testing.T) {
	a := testAdapter()
	opts := &search.Options{
		FilterExpr: `category = "native"`,
		Filters: []search.Filter{
			{Field: "ignored", Operator: search.OpEq, Value: "x"},
		},
	}
	params, err := a.buildParams(10, opts)
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}
	if params.Filter != `category = "native"` {
		t.Errorf("pre-rendered expression must pass through, got %v", params.Filter)
	}
}

func TestBuildParamsInvalidFilter(t *testing.T) {
	a := testAdapter()
	_, err := a.buildParams(10, &search.Options{
		Filters: []search.Filter{{Field: "price", Operator: search.OpBetween, Value: []any{1}}},
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestSearchOnNilClient(t *testing.T) {
	// An unconfigured client fails cleanly instead of panicking, and
	// the failure carries the adapter wrapper.
	a := testAdapter()
	_, err := a.Search(t.Context(), "articles", "q", nil)
	if err == nil {
		t.Fatal("expected error from unconfigured client")
	}
	var ee *search.EngineError
	if !errors.As(err, &ee) {
		t.Fatalf("error not wrapped: %v", err)
	}
	if ee.Adapter != search.Meilisearch {
		t.Errorf("adapter %q", ee.Adapter)
	}
}

func TestIsIndexNotFound(t *testing.T) {
	missing := &meilisearch.Error{StatusCode: 404}
	missing.MeilisearchApiError.Code = "index_not_found"
	if !isIndexNotFound(fmt.Errorf("searching: %w", missing)) {
		t.Error("index_not_found code not recognized through wrapping")
	}

	invalid := &meilisearch.Error{StatusCode: 400}
	invalid.MeilisearchApiError.Code = "invalid_search_filter"
	if isIndexNotFound(invalid) {
		t.Error("other API error misclassified as missing index")
	}
	if isIndexNotFound(errors.New("document `articles` not found")) {
		t.Error("untyped error mentioning not found misclassified")
	}
	if isIndexNotFound(nil) {
		t.Error("nil misclassified")
	}
}
