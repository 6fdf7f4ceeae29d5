// Package search provides a backend-agnostic search abstraction.
//
// One generic vocabulary of queries, filters, sorts, and facet requests
// is translated into the native conventions of several full-text
// engines, and their responses are normalized back into a single
// envelope shape.
//
// Built-in engines:
//   - embedded: file-based index (bleve), no server required
//   - typesense: remote Typesense server
//   - meilisearch: remote Meilisearch server
//
// Engine packages register themselves when imported, like database/sql
// drivers. An application imports the engines it intends to use:
//
//	import (
//		_ "github.com/searchbridge/searchbridge/search/embedded"
//		_ "github.com/searchbridge/searchbridge/search/meili"
//		_ "github.com/searchbridge/searchbridge/search/typesense"
//	)
//
// Additional engines register a Factory the same way (see
// search/elastic) or at runtime through Manager.RegisterAdapter.
// Built-in names are reserved and cannot be overridden.
//
// A Manager owns the currently active adapter and supports runtime
// switching and benchmarking:
//
//	m, err := search.New(cfg)
//	if err != nil { ... }
//	defer m.Close()
//
//	env, err := m.Search(ctx, "articles", "laptop", &search.Options{
//		Limit:   20,
//		Filters: []search.Filter{{Field: "price", Operator: search.OpBetween, Value: []any{500, 2000}}},
//	})
//
// Hit scores are backend-native and are not comparable across engines.
package search
