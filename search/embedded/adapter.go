// Package embedded provides the file-based built-in adapter, backed by
// bleve indexes stored one directory per collection.
//
// It registers itself when imported:
//
//	import _ "github.com/searchbridge/searchbridge/search/embedded"
//
// Unlike the remote adapters, a search against a missing collection
// fails with search.ErrIndexNotFound instead of returning an empty
// envelope, and no retries are performed: failures here are local
// (missing directory, permissions), not transient.
//
// The engine has no structured-filter support. A search carrying
// filters returns an empty result set, never a silently unfiltered
// one.
package embedded

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/searchbridge/searchbridge/config"
	"github.com/searchbridge/searchbridge/search"
	"github.com/searchbridge/searchbridge/search/facet"
	"github.com/searchbridge/searchbridge/search/translate"
)

func init() {
	search.RegisterFactory(search.Embedded, func(cfg *config.Config) (search.Adapter, error) {
		if cfg.Embedded == nil || cfg.Embedded.StoragePath == "" {
			return nil, fmt.Errorf("embedded: storage path not configured")
		}
		return NewAdapter(cfg.Embedded.StoragePath), nil
	})
}

// sourceKey prefixes the internal-store key holding a document's
// original JSON, so GetDocument returns what was indexed rather than
// bleve's analyzed fields.
const sourceKey = "src:"

// Adapter implements the capability contract over bleve.
type Adapter struct {
	path      string
	fuzziness bool

	mu      sync.Mutex
	indexes map[string]bleve.Index
}

// NewAdapter creates an embedded adapter storing indexes under path.
func NewAdapter(path string) *Adapter {
	return &Adapter{
		path:    path,
		indexes: make(map[string]bleve.Index),
	}
}

func (a *Adapter) Name() string { return search.Embedded }

// Configure recognizes "fuzziness" (bool) as a default for searches
// that do not set Options.Fuzziness.
func (a *Adapter) Configure(options map[string]any) error {
	if v, ok := options["fuzziness"]; ok {
		b, ok := v.(bool)
		if !ok {
			return search.WrapErr(a.Name(), "configure", fmt.Errorf("fuzziness must be a bool, got %T", v))
		}
		a.fuzziness = b
	}
	return nil
}

// open returns the bleve index for collection, creating it when
// create is set. A missing index without create fails with
// search.ErrIndexNotFound.
func (a *Adapter) open(collection string, create bool) (bleve.Index, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if idx, ok := a.indexes[collection]; ok {
		return idx, nil
	}

	path := filepath.Join(a.path, collection)
	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		if !create {
			return nil, fmt.Errorf("%w: %s", search.ErrIndexNotFound, collection)
		}
		idx, err = bleve.New(path, bleve.NewIndexMapping())
	}
	if err != nil {
		return nil, err
	}

	a.indexes[collection] = idx
	return idx, nil
}

func (a *Adapter) Index(ctx context.Context, collection string, documents []search.Document) error {
	idx, err := a.open(collection, true)
	if err != nil {
		return search.WrapErr(a.Name(), "index", err)
	}

	batch := idx.NewBatch()
	sources := make(map[string][]byte, len(documents))
	for _, doc := range documents {
		id, err := documentID(doc)
		if err != nil {
			return search.WrapErr(a.Name(), "index", err)
		}
		if err := batch.Index(id, doc); err != nil {
			return search.WrapErr(a.Name(), "index", err)
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return search.WrapErr(a.Name(), "index", err)
		}
		sources[id] = raw
	}

	if err := idx.Batch(batch); err != nil {
		return search.WrapErr(a.Name(), "index", err)
	}
	for id, raw := range sources {
		if err := idx.SetInternal([]byte(sourceKey+id), raw); err != nil {
			return search.WrapErr(a.Name(), "index", err)
		}
	}
	return nil
}

func (a *Adapter) AddDocument(ctx context.Context, collection string, document search.Document) error {
	return a.Index(ctx, collection, []search.Document{document})
}

// UpdateDocument merges partial into the stored document and
// re-indexes it. The identifier is immutable here; an "id" key in
// partial is ignored.
func (a *Adapter) UpdateDocument(ctx context.Context, collection, id string, partial search.Document) error {
	idx, err := a.open(collection, false)
	if err != nil {
		return search.WrapErr(a.Name(), "update_document", err)
	}

	raw, err := idx.GetInternal([]byte(sourceKey + id))
	if err != nil {
		return search.WrapErr(a.Name(), "update_document", err)
	}
	if raw == nil {
		return search.WrapErr(a.Name(), "update_document", fmt.Errorf("document %s not found", id))
	}

	var doc search.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return search.WrapErr(a.Name(), "update_document", err)
	}
	for k, v := range partial {
		if k == "id" {
			continue
		}
		doc[k] = v
	}

	return a.Index(ctx, collection, []search.Document{doc})
}

func (a *Adapter) DeleteDocument(ctx context.Context, collection, id string) error {
	idx, err := a.open(collection, false)
	if err != nil {
		return search.WrapErr(a.Name(), "delete_document", err)
	}
	if err := idx.Delete(id); err != nil {
		return search.WrapErr(a.Name(), "delete_document", err)
	}
	if err := idx.DeleteInternal([]byte(sourceKey + id)); err != nil {
		return search.WrapErr(a.Name(), "delete_document", err)
	}
	return nil
}

func (a *Adapter) GetDocument(ctx context.Context, collection, id string) (search.Document, error) {
	idx, err := a.open(collection, false)
	if err != nil {
		return nil, search.WrapErr(a.Name(), "get_document", err)
	}
	raw, err := idx.GetInternal([]byte(sourceKey + id))
	if err != nil {
		return nil, search.WrapErr(a.Name(), "get_document", err)
	}
	if raw == nil {
		return nil, search.WrapErr(a.Name(), "get_document", fmt.Errorf("document %s not found", id))
	}
	var doc search.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
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

	// No structured-filter support: a filtered search matches
	// nothing rather than silently dropping the filters.
	if opts.FilterExpr != "" || len(opts.Filters) > 0 {
		env := search.EmptyEnvelope(limit, opts.Offset)
		env.Facets = facet.Normalize(opts.Facets, nil, nil, opts.AppliedFacets)
		return env, nil
	}

	idx, err := a.open(collection, false)
	if err != nil {
		return nil, search.WrapErr(a.Name(), "search", err)
	}

	req := bleve.NewSearchRequestOptions(a.buildQuery(query, opts), limit, opts.Offset, false)
	req.Fields = []string{"*"}

	dialect, err := translate.For(a.Name())
	if err != nil {
		return nil, search.WrapErr(a.Name(), "search", err)
	}
	sortExpr, err := translate.Sorts(dialect, opts.SortBy)
	if err != nil {
		return nil, search.WrapErr(a.Name(), "search", fmt.Errorf("%w: %v", search.ErrQuery, err))
	}
	if sortExpr != "" {
		req.SortBy(strings.Split(sortExpr, ","))
	}

	if len(opts.HighlightFields) > 0 {
		req.Highlight = bleve.NewHighlight()
		for _, f := range opts.HighlightFields {
			req.Highlight.AddField(f)
		}
	}

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, search.WrapErr(a.Name(), "search", err)
	}

	env := &search.Envelope{
		Hits:       make([]search.Hit, 0, len(res.Hits)),
		TotalFound: int64(res.Total),
		Page:       search.PageInfo{Limit: limit, Offset: opts.Offset},
		Facets:     facet.Normalize(opts.Facets, nil, nil, opts.AppliedFacets),
	}
	for _, hit := range res.Hits {
		doc, err := a.GetDocument(ctx, collection, hit.ID)
		if err != nil {
			doc = hit.Fields
		}
		env.Hits = append(env.Hits, search.Hit{
			ID:         hit.ID,
			Score:      hit.Score,
			Highlights: firstFragments(hit.Fragments),
			Document:   doc,
		})
	}
	return env, nil
}

// buildQuery picks the bleve query for the search string. Fuzziness
// applies when requested per search or configured on the adapter.
func (a *Adapter) buildQuery(qs string, opts *search.Options) query.Query {
	if strings.TrimSpace(qs) == "" {
		return bleve.NewMatchAllQuery()
	}
	mq := bleve.NewMatchQuery(qs)
	if opts.Fuzziness || a.fuzziness {
		mq.SetFuzziness(2)
	}
	return mq
}

func (a *Adapter) DeleteIndex(ctx context.Context, collection string) error {
	a.mu.Lock()
	if idx, ok := a.indexes[collection]; ok {
		_ = idx.Close()
		delete(a.indexes, collection)
	}
	a.mu.Unlock()

	path := filepath.Join(a.path, collection)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return search.WrapErr(a.Name(), "delete_index", fmt.Errorf("%w: %s", search.ErrIndexNotFound, collection))
	}
	if err := os.RemoveAll(path); err != nil {
		return search.WrapErr(a.Name(), "delete_index", err)
	}
	return nil
}

func (a *Adapter) IndexExists(ctx context.Context, collection string) (bool, error) {
	a.mu.Lock()
	_, open := a.indexes[collection]
	a.mu.Unlock()
	if open {
		return true, nil
	}
	_, err := os.Stat(filepath.Join(a.path, collection))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, search.WrapErr(a.Name(), "index_exists", err)
	}
	return true, nil
}

// Close closes every open index.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	var firstErr error
	for name, idx := range a.indexes {
		if err := idx.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(a.indexes, name)
	}
	return firstErr
}

// documentID extracts the required string id from a document.
func documentID(doc search.Document) (string, error) {
	v, ok := doc["id"]
	if !ok {
		return "", fmt.Errorf("document missing id field")
	}
	switch id := v.(type) {
	case string:
		return id, nil
	case fmt.Stringer:
		return id.String(), nil
	}
	return fmt.Sprintf("%v", v), nil
}

// firstFragments keeps the first highlight fragment per field.
func firstFragments(fragments map[string][]string) map[string]string {
	if len(fragments) == 0 {
		return nil
	}
	out := make(map[string]string, len(fragments))
	for field, frags := range fragments {
		if len(frags) > 0 {
			out[field] = frags[0]
		}
	}
	return out
}
