package search

// Document is the generic record shape exchanged with engines.
type Document = map[string]any

// Options represents per-search options recognized by all adapters.
type Options struct {
	// Limit caps the number of hits returned. Zero means the
	// configured default (10 unless overridden).
	Limit int
	// Offset skips the first N hits.
	Offset int
	// SortBy is applied in order.
	SortBy []SortSpec
	// Filters is the generic filter representation consumed by the
	// translator.
	Filters []Filter
	// FilterExpr is a pre-rendered filter expression in the active
	// engine's native syntax. When set it takes precedence over
	// Filters and is passed through untranslated.
	FilterExpr string
	// Facets requests server-side aggregations.
	Facets []FacetSpec
	// AppliedFacets holds the facet values currently applied by the
	// caller, per field. Used only to compute FacetValue.Selected.
	AppliedFacets map[string][]string
	// HighlightFields limits highlighting to the named fields.
	HighlightFields []string
	// Fuzziness enables fuzzy matching. Honored by the embedded
	// engine only; remote engines apply their own typo tolerance.
	Fuzziness bool
}

// PageInfo describes the window a search response covers.
type PageInfo struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Hit represents one search result item.
//
// Score is backend-native. Scores from different engines are not on a
// shared scale and must not be compared across adapters.
type Hit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Highlights map[string]string `json:"highlights,omitempty"`
	Document   Document          `json:"document"`
}

// Envelope represents the uniform search response, independent of the
// engine that produced it.
type Envelope struct {
	Hits       []Hit                   `json:"hits"`
	TotalFound int64                   `json:"total_found"`
	Page       PageInfo                `json:"page_info"`
	Facets     map[string]*FacetResult `json:"facets,omitempty"`
}

// EmptyEnvelope returns a valid envelope with no hits.
func EmptyEnvelope(limit, offset int) *Envelope {
	return &Envelope{
		Hits: []Hit{},
		Page: PageInfo{Limit: limit, Offset: offset},
	}
}

// FacetValue represents one aggregated value within a facet.
type FacetValue struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Count    int64  `json:"count"`
	Selected bool   `json:"selected"`
}

// FacetResult represents one normalized facet, identical in shape
// regardless of the engine that computed it.
type FacetResult struct {
	Field  string       `json:"field"`
	Label  string       `json:"label"`
	Kind   FacetKind    `json:"kind"`
	Values []FacetValue `json:"values"`
	// Total is the sum of all value counts.
	Total int64 `json:"total"`
	// Missing counts documents without a value for the field, when
	// the engine reports it.
	Missing int64 `json:"missing"`
	// Stats is populated for stats facets when available.
	Stats *FacetStats `json:"stats,omitempty"`
}

// FacetStats represents numeric aggregates for a stats facet.
type FacetStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	Sum float64 `json:"sum"`
}
