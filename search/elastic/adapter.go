// Package elastic provides an Elasticsearch adapter built on the
// custom-registration extension point. It is not one of the three
// built-in engines; importing it registers the "elasticsearch" factory
// and a Lucene dialect under the same name:
//
//	import _ "github.com/searchbridge/searchbridge/search/elastic"
package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/searchbridge/searchbridge/config"
	"github.com/searchbridge/searchbridge/search"
	esclient "github.com/searchbridge/searchbridge/search/elastic/client"
	"github.com/searchbridge/searchbridge/search/facet"
	"github.com/searchbridge/searchbridge/search/translate"
	"github.com/searchbridge/searchbridge/utils/retry"
)

// Name is the adapter name the package registers under.
const Name = "elasticsearch"

func init() {
	translate.Register(translate.LuceneDialect{Engine: Name})
	search.RegisterFactory(Name, func(cfg *config.Config) (search.Adapter, error) {
		if cfg.Elasticsearch == nil || len(cfg.Elasticsearch.Addresses) == 0 {
			return nil, fmt.Errorf("elasticsearch: addresses not configured")
		}
		c, err := esclient.NewClient(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Username, cfg.Elasticsearch.Password)
		if err != nil {
			return nil, err
		}
		return NewAdapter(c, cfg.Retry), nil
	})
}

// Adapter implements the capability contract for Elasticsearch.
type Adapter struct {
	client *esclient.Client
	retry  config.Retry
}

// NewAdapter creates an Elasticsearch adapter over client.
func NewAdapter(client *esclient.Client, retryCfg config.Retry) *Adapter {
	return &Adapter{client: client, retry: retryCfg}
}

func (a *Adapter) Name() string { return Name }

func (a *Adapter) Configure(options map[string]any) error {
	// Connection parameters are fixed at construction.
	return nil
}

// do retries fn on transient connection failures. Engine error
// responses are surfaced immediately.
func (a *Adapter) do(ctx context.Context, fn func() error) error {
	return retry.Do(ctx, a.retry.Attempts, a.retry.Backoff, func(err error) bool {
		return !esclient.IsAPIError(err)
	}, fn)
}

func (a *Adapter) Index(ctx context.Context, collection string, documents []search.Document) error {
	err := a.do(ctx, func() error {
		for _, doc := range documents {
			id, derr := documentID(doc)
			if derr != nil {
				return derr
			}
			if ierr := a.client.IndexDocument(ctx, collection, id, doc); ierr != nil {
				return ierr
			}
		}
		return nil
	})
	return search.WrapErr(a.Name(), "index", err)
}

func (a *Adapter) AddDocument(ctx context.Context, collection string, document search.Document) error {
	return a.Index(ctx, collection, []search.Document{document})
}

func (a *Adapter) UpdateDocument(ctx context.Context, collection, id string, partial search.Document) error {
	err := a.do(ctx, func() error {
		return a.client.UpdateDocument(ctx, collection, id, partial)
	})
	return search.WrapErr(a.Name(), "update_document", err)
}

func (a *Adapter) DeleteDocument(ctx context.Context, collection, id string) error {
	err := a.do(ctx, func() error {
		return a.client.DeleteDocument(ctx, collection, id)
	})
	return search.WrapErr(a.Name(), "delete_document", err)
}

func (a *Adapter) GetDocument(ctx context.Context, collection, id string) (search.Document, error) {
	var doc map[string]any
	err := a.do(ctx, func() error {
		var gerr error
		doc, gerr = a.client.GetDocument(ctx, collection, id)
		return gerr
	})
	if err != nil {
		return nil, search.WrapErr(a.Name(), "get_document", err)
	}
	return doc, nil
}

// searchResponse is the subset of the search API response the adapter
// consumes.
type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID        string              `json:"_id"`
			Score     *float64            `json:"_score"`
			Source    map[string]any      `json:"_source"`
			Highlight map[string][]string `json:"highlight"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

func (a *Adapter) Search(ctx context.Context, collection, query string, opts *search.Options) (*search.Envelope, error) {
	if opts == nil {
		opts = &search.Options{}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	body, err := a.buildBody(query, limit, opts)
	if err != nil {
		return nil, search.WrapErr(a.Name(), "search", fmt.Errorf("%w: %v", search.ErrQuery, err))
	}

	var resp searchResponse
	err = a.do(ctx, func() error {
		return a.client.Search(ctx, collection, body, &resp)
	})
	if err != nil {
		if esclient.IsNotFound(err) {
			env := search.EmptyEnvelope(limit, opts.Offset)
			env.Facets = facet.Normalize(opts.Facets, nil, nil, opts.AppliedFacets)
			return env, nil
		}
		return nil, search.WrapErr(a.Name(), "search", err)
	}

	return a.buildEnvelope(&resp, limit, opts)
}

// buildBody renders the JSON search request. Free-text query and the
// translated filter expression combine into one query_string query.
func (a *Adapter) buildBody(query string, limit int, opts *search.Options) (string, error) {
	dialect, err := translate.For(a.Name())
	if err != nil {
		return "", err
	}

	filterExpr := opts.FilterExpr
	if filterExpr == "" {
		filterExpr, err = translate.Filters(dialect, opts.Filters)
		if err != nil {
			return "", err
		}
	}

	body := map[string]any{
		"query": queryClause(query, filterExpr),
		"from":  opts.Offset,
		"size":  limit,
	}

	sortExpr, err := translate.Sorts(dialect, opts.SortBy)
	if err != nil {
		return "", err
	}
	if sortExpr != "" {
		body["sort"] = sortClauses(sortExpr)
	}

	if len(opts.Facets) > 0 {
		aggs, aerr := aggClauses(opts.Facets)
		if aerr != nil {
			return "", aerr
		}
		body["aggs"] = aggs
	}

	if len(opts.HighlightFields) > 0 {
		fields := make(map[string]any, len(opts.HighlightFields))
		for _, f := range opts.HighlightFields {
			fields[f] = map[string]any{}
		}
		body["highlight"] = map[string]any{
			"pre_tags":  []string{"<em>"},
			"post_tags": []string{"</em>"},
			"fields":    fields,
		}
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// queryClause combines the free-text query and the filter expression.
// Both empty means match_all.
func queryClause(query, filterExpr string) map[string]any {
	var qs string
	switch {
	case query != "" && filterExpr != "":
		qs = "(" + query + ") AND (" + filterExpr + ")"
	case query != "":
		qs = query
	case filterExpr != "":
		qs = filterExpr
	default:
		return map[string]any{"match_all": map[string]any{}}
	}
	return map[string]any{
		"query_string": map[string]any{"query": qs},
	}
}

// sortClauses turns the dialect's "field:dir" list into the JSON sort
// array.
func sortClauses(sortExpr string) []any {
	parts := strings.Split(sortExpr, ",")
	clauses := make([]any, 0, len(parts))
	for _, p := range parts {
		field, dir := p, "asc"
		if i := strings.LastIndex(p, ":"); i >= 0 {
			field, dir = p[:i], p[i+1:]
		}
		clauses = append(clauses, map[string]any{field: map[string]any{"order": dir}})
	}
	return clauses
}

// aggClauses builds one aggregation per requested facet. Stats facets
// use the stats aggregation; every other kind requests raw value
// counts via terms and leaves bucketing to the normalizer, so the
// output matches the other engines exactly.
func aggClauses(specs []search.FacetSpec) (map[string]any, error) {
	aggs := make(map[string]any, len(specs))
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		if spec.Kind == search.FacetStatsKind {
			aggs[spec.Field] = map[string]any{
				"stats": map[string]any{"field": spec.Field},
			}
			continue
		}
		size := spec.MaxValues
		if size <= 0 {
			size = 1000
		}
		aggs[spec.Field] = map[string]any{
			"terms": map[string]any{"field": spec.Field, "size": size},
		}
	}
	return aggs, nil
}

// buildEnvelope normalizes the engine response.
func (a *Adapter) buildEnvelope(resp *searchResponse, limit int, opts *search.Options) (*search.Envelope, error) {
	env := &search.Envelope{
		Hits:       make([]search.Hit, 0, len(resp.Hits.Hits)),
		TotalFound: resp.Hits.Total.Value,
		Page:       search.PageInfo{Limit: limit, Offset: opts.Offset},
	}

	for _, hit := range resp.Hits.Hits {
		h := search.Hit{
			ID:       hit.ID,
			Document: hit.Source,
		}
		if hit.Score != nil {
			h.Score = *hit.Score
		}
		if len(hit.Highlight) > 0 {
			h.Highlights = firstFragments(hit.Highlight)
		}
		env.Hits = append(env.Hits, h)
	}

	if len(opts.Facets) > 0 {
		dist, stats, err := facet.FromAggregations(resp.Aggregations)
		if err != nil {
			return nil, search.WrapErr(a.Name(), "search", err)
		}
		env.Facets = facet.Normalize(opts.Facets, dist, stats, opts.AppliedFacets)
	}
	return env, nil
}

func (a *Adapter) DeleteIndex(ctx context.Context, collection string) error {
	err := a.do(ctx, func() error {
		return a.client.DeleteIndex(ctx, collection)
	})
	return search.WrapErr(a.Name(), "delete_index", err)
}

func (a *Adapter) IndexExists(ctx context.Context, collection string) (bool, error) {
	var exists bool
	err := a.do(ctx, func() error {
		var cerr error
		exists, cerr = a.client.IndexExists(ctx, collection)
		return cerr
	})
	if err != nil {
		return false, search.WrapErr(a.Name(), "index_exists", err)
	}
	return exists, nil
}

// Close is a no-op: the client speaks plain HTTP.
func (a *Adapter) Close() error {
	return nil
}

// documentID extracts the required string id from a document.
func documentID(doc search.Document) (string, error) {
	v, ok := doc["id"]
	if !ok {
		return "", fmt.Errorf("document missing id field")
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprintf("%v", v), nil
}

// firstFragments keeps the first highlight fragment per field.
func firstFragments(fragments map[string][]string) map[string]string {
	out := make(map[string]string, len(fragments))
	for field, frags := range fragments {
		if len(frags) > 0 {
			out[field] = frags[0]
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
