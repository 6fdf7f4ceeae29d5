// Package typesense provides the Typesense built-in adapter. It
// registers itself when imported:
//
//	import _ "github.com/searchbridge/searchbridge/search/typesense"
package typesense

import (
	"context"
	"fmt"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/searchbridge/searchbridge/config"
	"github.com/searchbridge/searchbridge/search"
	"github.com/searchbridge/searchbridge/search/facet"
	"github.com/searchbridge/searchbridge/search/translate"
	tsclient "github.com/searchbridge/searchbridge/search/typesense/client"
	"github.com/searchbridge/searchbridge/utils/retry"
)

func init() {
	search.RegisterFactory(search.Typesense, func(cfg *config.Config) (search.Adapter, error) {
		if cfg.Typesense == nil || cfg.Typesense.Host == "" {
			return nil, fmt.Errorf("typesense: host not configured")
		}
		return NewAdapter(tsclient.NewClient(cfg.Typesense.URL(), cfg.Typesense.APIKey), cfg.Retry), nil
	})
}

// defaultQueryBy is used when the caller has not configured the
// fields a full-text query matches against.
const defaultQueryBy = "title,content,name,description"

// Adapter implements the capability contract for Typesense.
//
// The document identifier is immutable under UpdateDocument; an "id"
// key in the partial document is ignored by the engine's PATCH
// endpoint.
type Adapter struct {
	client  *tsclient.Client
	retry   config.Retry
	queryBy string
}

// NewAdapter creates a Typesense adapter over client.
func NewAdapter(client *tsclient.Client, retryCfg config.Retry) *Adapter {
	return &Adapter{client: client, retry: retryCfg, queryBy: defaultQueryBy}
}

func (a *Adapter) Name() string { return search.Typesense }

// Configure recognizes "query_by": a comma-joined list of fields
// full-text queries match against.
func (a *Adapter) Configure(options map[string]any) error {
	if v, ok := options["query_by"]; ok {
		s, ok := v.(string)
		if !ok || s == "" {
			return search.WrapErr(a.Name(), "configure", fmt.Errorf("query_by must be a non-empty string, got %T", v))
		}
		a.queryBy = s
	}
	return nil
}

// do retries fn on transient connection failures. Engine HTTP errors
// are surfaced immediately.
func (a *Adapter) do(ctx context.Context, fn func() error) error {
	return retry.Do(ctx, a.retry.Attempts, a.retry.Backoff, func(err error) bool {
		return !tsclient.IsAPIError(err)
	}, fn)
}

func (a *Adapter) Index(ctx context.Context, collection string, documents []search.Document) error {
	err := a.do(ctx, func() error {
		if cerr := a.client.EnsureCollection(ctx, collection); cerr != nil {
			return cerr
		}
		for _, doc := range documents {
			if uerr := a.client.Upsert(ctx, collection, doc); uerr != nil {
				return uerr
			}
		}
		return nil
	})
	return search.WrapErr(a.Name(), "index", err)
}

func (a *Adapter) AddDocument(ctx context.Context, collection string, document search.Document) error {
	err := a.do(ctx, func() error {
		if cerr := a.client.EnsureCollection(ctx, collection); cerr != nil {
			return cerr
		}
		return a.client.Upsert(ctx, collection, document)
	})
	return search.WrapErr(a.Name(), "add_document", err)
}

func (a *Adapter) UpdateDocument(ctx context.Context, collection, id string, partial search.Document) error {
	err := a.do(ctx, func() error {
		return a.client.Update(ctx, collection, id, partial)
	})
	return search.WrapErr(a.Name(), "update_document", err)
}

func (a *Adapter) DeleteDocument(ctx context.Context, collection, id string) error {
	err := a.do(ctx, func() error {
		return a.client.Delete(ctx, collection, id)
	})
	return search.WrapErr(a.Name(), "delete_document", err)
}

func (a *Adapter) GetDocument(ctx context.Context, collection, id string) (search.Document, error) {
	var doc map[string]any
	err := a.do(ctx, func() error {
		var gerr error
		doc, gerr = a.client.Retrieve(ctx, collection, id)
		return gerr
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

	params, err := a.buildParams(query, limit, opts)
	if err != nil {
		return nil, search.WrapErr(a.Name(), "search", fmt.Errorf("%w: %v", search.ErrQuery, err))
	}

	var res *api.SearchResult
	err = a.do(ctx, func() error {
		var serr error
		res, serr = a.client.Search(ctx, collection, params)
		return serr
	})
	if err != nil {
		if tsclient.IsNotFound(err) {
			env := search.EmptyEnvelope(limit, opts.Offset)
			env.Facets = facet.Normalize(opts.Facets, nil, nil, opts.AppliedFacets)
			return env, nil
		}
		return nil, search.WrapErr(a.Name(), "search", err)
	}

	return buildEnvelope(res, limit, opts), nil
}

// buildParams renders the engine-native search parameters. The query
// string "*" matches all documents when the caller passes an empty
// query.
func (a *Adapter) buildParams(query string, limit int, opts *search.Options) (*tsclient.SearchParams, error) {
	if query == "" {
		query = "*"
	}
	params := &tsclient.SearchParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String(a.queryBy),
		Limit:   pointer.Int(limit),
	}
	if opts.Offset > 0 {
		params.Offset = pointer.Int(opts.Offset)
	}

	dialect, err := translate.For(search.Typesense)
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
		params.FilterBy = pointer.String(filterExpr)
	}

	sortExpr, err := translate.Sorts(dialect, opts.SortBy)
	if err != nil {
		return nil, err
	}
	if sortExpr != "" {
		params.SortBy = pointer.String(sortExpr)
	}

	if len(opts.Facets) > 0 {
		fields := make([]string, len(opts.Facets))
		for i, spec := range opts.Facets {
			if err := spec.Validate(); err != nil {
				return nil, err
			}
			fields[i] = spec.Field
		}
		params.FacetBy = pointer.String(strings.Join(fields, ","))
	}

	if len(opts.HighlightFields) > 0 {
		params.HighlightFields = pointer.String(strings.Join(opts.HighlightFields, ","))
	}

	return params, nil
}

// buildEnvelope normalizes the engine response. Split out for tests.
func buildEnvelope(res *api.SearchResult, limit int, opts *search.Options) *search.Envelope {
	env := search.EmptyEnvelope(limit, opts.Offset)
	if res == nil {
		return env
	}
	if res.Found != nil {
		env.TotalFound = int64(*res.Found)
	}

	if res.Hits != nil {
		for _, hit := range *res.Hits {
			var doc search.Document
			if hit.Document != nil {
				doc = *hit.Document
			}
			h := search.Hit{
				ID:       fieldString(doc["id"]),
				Document: doc,
			}
			if hit.TextMatch != nil {
				h.Score = float64(*hit.TextMatch)
			}
			if hit.Highlights != nil {
				h.Highlights = highlights(*hit.Highlights)
			}
			env.Hits = append(env.Hits, h)
		}
	}

	if len(opts.Facets) > 0 {
		env.Facets = facet.Normalize(opts.Facets, facetDistribution(res), nil, opts.AppliedFacets)
	}
	return env
}

// facetDistribution reshapes the facet_counts payload.
func facetDistribution(res *api.SearchResult) facet.Distribution {
	if res.FacetCounts == nil {
		return nil
	}
	fields := make([]facet.FieldCounts, 0, len(*res.FacetCounts))
	for _, fc := range *res.FacetCounts {
		if fc.FieldName == nil || fc.Counts == nil {
			continue
		}
		entry := facet.FieldCounts{FieldName: *fc.FieldName}
		for _, c := range *fc.Counts {
			if c.Value == nil {
				continue
			}
			count := int64(0)
			if c.Count != nil {
				count = int64(*c.Count)
			}
			entry.Counts = append(entry.Counts, facet.Count{Value: *c.Value, Count: count})
		}
		fields = append(fields, entry)
	}
	return facet.FromFacetCounts(fields)
}

// highlights keeps one snippet per highlighted field.
func highlights(hs []api.SearchHighlight) map[string]string {
	out := make(map[string]string, len(hs))
	for _, h := range hs {
		if h.Field == nil {
			continue
		}
		switch {
		case h.Snippet != nil:
			out[*h.Field] = *h.Snippet
		case h.Value != nil:
			out[*h.Field] = *h.Value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (a *Adapter) DeleteIndex(ctx context.Context, collection string) error {
	err := a.do(ctx, func() error {
		return a.client.DeleteCollection(ctx, collection)
	})
	return search.WrapErr(a.Name(), "delete_index", err)
}

func (a *Adapter) IndexExists(ctx context.Context, collection string) (bool, error) {
	var exists bool
	err := a.do(ctx, func() error {
		var cerr error
		exists, cerr = a.client.CollectionExists(ctx, collection)
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

func fieldString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	}
	return fmt.Sprintf("%v", v)
}
