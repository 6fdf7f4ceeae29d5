package meili

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"

	"github.com/searchbridge/searchbridge/config"
	"github.com/searchbridge/searchbridge/search"
	"github.com/searchbridge/searchbridge/search/facet"
	"github.com/searchbridge/searchbridge/search/translate"
	"github.com/searchbridge/searchbridge/utils/retry"
)

func init() {
	search.RegisterFactory(search.Meilisearch, func(cfg *config.Config) (search.Adapter, error) {
		if cfg.Meilisearch == nil || cfg.Meilisearch.Host == "" {
			return nil, fmt.Errorf("meilisearch: host not configured")
		}
		return NewAdapter(NewClient(cfg.Meilisearch.Host, cfg.Meilisearch.APIKey), cfg.Retry), nil
	})
}

// Adapter implements the capability contract for Meilisearch.
//
// UpdateDocument follows the engine's primary-key semantics: a partial
// document carrying a different id upserts a new document instead of
// renaming the existing one.
type Adapter struct {
	client *Client
	retry  config.Retry
}

// NewAdapter creates a Meilisearch adapter over client.
func NewAdapter(client *Client, retryCfg config.Retry) *Adapter {
	return &Adapter{client: client, retry: retryCfg}
}

func (a *Adapter) Name() string { return search.Meilisearch }

func (a *Adapter) Configure(options map[string]any) error {
	// Meilisearch needs no runtime knobs beyond its connection.
	return nil
}

// do retries fn on transient connection failures. Engine-level API
// errors (bad syntax, missing index) are surfaced immediately.
func (a *Adapter) do(ctx context.Context, fn func() error) error {
	return retry.Do(ctx, a.retry.Attempts, a.retry.Backoff, func(err error) bool {
		var apiErr *meilisearch.Error
		return !errors.As(err, &apiErr)
	}, fn)
}

func (a *Adapter) Index(ctx context.Context, collection string, documents []search.Document) error {
	docs := make([]any, len(documents))
	for i, d := range documents {
		docs[i] = d
	}
	err := a.do(ctx, func() error {
		return a.client.AddDocuments(collection, docs, "id")
	})
	return search.WrapErr(a.Name(), "index", err)
}

func (a *Adapter) AddDocument(ctx context.Context, collection string, document search.Document) error {
	err := a.do(ctx, func() error {
		return a.client.AddDocuments(collection, []any{document}, "id")
	})
	return search.WrapErr(a.Name(), "add_document", err)
}

func (a *Adapter) UpdateDocument(ctx context.Context, collection, id string, partial search.Document) error {
	doc := make(search.Document, len(partial)+1)
	for k, v := range partial {
		doc[k] = v
	}
	if _, ok := doc["id"]; !ok {
		doc["id"] = id
	}
	err := a.do(ctx, func() error {
		return a.client.UpdateDocuments(collection, []any{doc})
	})
	return search.WrapErr(a.Name(), "update_document", err)
}

func (a *Adapter) DeleteDocument(ctx context.Context, collection, id string) error {
	err := a.do(ctx, func() error {
		return a.client.DeleteDocument(collection, id)
	})
	return search.WrapErr(a.Name(), "delete_document", err)
}

func (a *Adapter) GetDocument(ctx context.Context, collection, id string) (search.Document, error) {
	var doc search.Document
	err := a.do(ctx, func() error {
		return a.client.GetDocument(collection, id, &doc)
	})
	if err != nil {
		return nil, search.WrapErr(a.Name(), "get_document", err)
	}
	return doc, nil
}

func (a *Adapter) Search(ctx context.Context, collection, query string, opts *search.Options) (*search.Envelope, error) {
	if opts == nil {
		opts = &search.Options{}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	params, err := a.buildParams(limit, opts)
	if err != nil {
		return nil, search.WrapErr(a.Name(), "search", fmt.Errorf("%w: %v", search.ErrQuery, err))
	}

	var resp *meilisearch.SearchResponse
	err = a.do(ctx, func() error {
		var serr error
		resp, serr = a.client.Search(collection, query, params)
		return serr
	})
	if err != nil {
		if isIndexNotFound(err) {
			// Missing collections are an empty result for remote
			// engines, not a fault.
			env := search.EmptyEnvelope(limit, opts.Offset)
			env.Facets = facet.Normalize(opts.Facets, nil, nil, opts.AppliedFacets)
			return env, nil
		}
		return nil, search.WrapErr(a.Name(), "search", err)
	}

	return buildEnvelope(resp, limit, opts), nil
}

// buildParams renders the engine-native search request.
func (a *Adapter) buildParams(limit int, opts *search.Options) (*SearchParams, error) {
	params := &SearchParams{
		Limit:  int64(limit),
		Offset: int64(opts.Offset),
	}

	dialect, err := translate.For(search.Meilisearch)
	if err != nil {
		return nil, err
	}

	filterExpr := opts.FilterExpr
	if filterExpr == "" {
		filterExpr, err = translate.Filters(dialect, opts.Filters)
		if err != nil {
			return nil, err
		}
	}
	if filterExpr != "" {
		params.Filter = filterExpr
	}

	sortExpr, err := translate.Sorts(dialect, opts.SortBy)
	if err != nil {
		return nil, err
	}
	if sortExpr != "" {
		params.Sort = strings.Split(sortExpr, ",")
	}

	if len(opts.Facets) > 0 {
		facets := make([]string, len(opts.Facets))
		for i, spec := range opts.Facets {
			if err := spec.Validate(); err != nil {
				return nil, err
			}
			facets[i] = spec.Field
		}
		params.Facets = facets
	}

	if len(opts.HighlightFields) > 0 {
		params.AttributesToHighlight = opts.HighlightFields
		params.HighlightPreTag = "<em>"
		params.HighlightPostTag = "</em>"
	}

	params.ShowRankingScore = true
	return params, nil
}

// buildEnvelope normalizes the engine response. Split out for tests.
func buildEnvelope(resp *meilisearch.SearchResponse, limit int, opts *search.Options) *search.Envelope {
	env := &search.Envelope{
		Hits:       make([]search.Hit, 0, len(resp.Hits)),
		TotalFound: resp.EstimatedTotalHits,
		Page:       search.PageInfo{Limit: limit, Offset: opts.Offset},
	}

	for _, raw := range resp.Hits {
		doc := decodeHit(raw)
		hit := search.Hit{
			ID:       fieldString(doc["id"]),
			Score:    1.0,
			Document: doc,
		}
		if score, ok := doc["_rankingScore"].(float64); ok {
			hit.Score = score
			delete(doc, "_rankingScore")
		}
		if formatted, ok := doc["_formatted"].(map[string]any); ok {
			hit.Highlights = highlightFields(formatted, opts.HighlightFields)
			delete(doc, "_formatted")
		}
		env.Hits = append(env.Hits, hit)
	}

	if len(opts.Facets) > 0 {
		dist := facet.FromFacetDistribution(toAnyMap(resp.FacetDistribution))
		stats := facet.FromFacetStats(toAnyMap(resp.FacetStats))
		env.Facets = facet.Normalize(opts.Facets, dist, stats, opts.AppliedFacets)
	}
	return env
}

func (a *Adapter) DeleteIndex(ctx context.Context, collection string) error {
	err := a.do(ctx, func() error {
		return a.client.DeleteIndex(collection)
	})
	return search.WrapErr(a.Name(), "delete_index", err)
}

func (a *Adapter) IndexExists(ctx context.Context, collection string) (bool, error) {
	var exists bool
	err := a.do(ctx, func() error {
		gerr := a.client.GetIndex(collection)
		if gerr != nil {
			if isIndexNotFound(gerr) {
				exists = false
				return nil
			}
			return gerr
		}
		exists = true
		return nil
	})
	if err != nil {
		return false, search.WrapErr(a.Name(), "index_exists", err)
	}
	return exists, nil
}

// Close is a no-op: meilisearch-go speaks plain HTTP and holds no
// persistent connection.
func (a *Adapter) Close() error {
	return nil
}

// isIndexNotFound reports whether err is the engine's index_not_found
// API error. Classification goes through the typed error so unrelated
// failures that merely mention "not found" stay faults.
func isIndexNotFound(err error) bool {
	var apiErr *meilisearch.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.MeilisearchApiError.Code == "index_not_found"
}

// decodeHit converts one raw hit into a document, resolving any
// json.RawMessage values the client leaves undecoded.
func decodeHit[M ~map[string]V, V any](raw M) search.Document {
	doc := make(search.Document, len(raw))
	for k, v := range raw {
		doc[k] = decodeValue(v)
	}
	return doc
}

func decodeValue(v any) any {
	if raw, ok := v.(json.RawMessage); ok {
		var out any
		if err := json.Unmarshal(raw, &out); err == nil {
			return out
		}
		return string(raw)
	}
	return v
}

func fieldString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	}
	return fmt.Sprintf("%v", v)
}

// highlightFields keeps the formatted values for the requested
// fields, as strings.
func highlightFields(formatted map[string]any, fields []string) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		if v, ok := formatted[f]; ok {
			out[f] = fieldString(decodeValue(v))
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// toAnyMap reshapes an engine payload of unknown concrete type into a
// generic map through a JSON round trip.
func toAnyMap(v any) map[string]any {
	if v == nil {
		return nil
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}
