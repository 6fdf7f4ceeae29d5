package search

import "context"

// Built-in adapter names. These are reserved: they resolve to the
// engines shipped with this module and cannot be overridden through
// RegisterAdapter.
const (
	Embedded    = "embedded"
	Typesense   = "typesense"
	Meilisearch = "meilisearch"
)

// BuiltinNames returns the built-in adapter names in benchmark order.
func BuiltinNames() []string {
	return []string{Embedded, Typesense, Meilisearch}
}

// IsBuiltin reports whether name is a reserved built-in adapter name.
func IsBuiltin(name string) bool {
	switch name {
	case Embedded, Typesense, Meilisearch:
		return true
	}
	return false
}

// Adapter is the uniform capability contract every engine implements.
//
// Every mutating operation either succeeds or fails with an
// EngineError; no partial mutation is reported as success. Search
// returns an empty envelope when the target collection does not
// exist, except the embedded adapter which returns ErrIndexNotFound.
//
// UpdateDocument semantics for the identifier field are
// adapter-specific: the embedded and typesense adapters treat the id
// as immutable, while meilisearch follows the engine's primary-key
// semantics, where a changed id in the partial document upserts a new
// document. See each adapter's documentation.
type Adapter interface {
	// Name returns the adapter's registered name.
	Name() string

	// Index creates or replaces documents in bulk.
	Index(ctx context.Context, collection string, documents []Document) error
	// AddDocument adds a single document.
	AddDocument(ctx context.Context, collection string, document Document) error
	// UpdateDocument applies a partial update to the document with id.
	UpdateDocument(ctx context.Context, collection, id string, partial Document) error
	// DeleteDocument removes the document with id.
	DeleteDocument(ctx context.Context, collection, id string) error
	// Search runs a query and returns the normalized envelope.
	Search(ctx context.Context, collection, query string, opts *Options) (*Envelope, error)
	// GetDocument fetches a single document by id.
	GetDocument(ctx context.Context, collection, id string) (Document, error)
	// DeleteIndex drops the whole collection.
	DeleteIndex(ctx context.Context, collection string) error
	// IndexExists reports whether the collection exists.
	IndexExists(ctx context.Context, collection string) (bool, error)
	// Configure applies adapter-specific runtime options.
	Configure(options map[string]any) error

	// Close releases the adapter's resources. The manager calls it
	// when the adapter is replaced by a switch.
	Close() error
}
