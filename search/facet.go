package search

import "fmt"

// FacetKind represents the kind of aggregation requested for a field.
type FacetKind string

const (
	FacetTerms         FacetKind = "terms"
	FacetRange         FacetKind = "range"
	FacetDateHistogram FacetKind = "date_histogram"
	FacetHistogram     FacetKind = "histogram"
	FacetStatsKind     FacetKind = "stats"
	FacetCardinality   FacetKind = "cardinality"
)

// RangeBucket represents one bucket of a range facet. At least one of
// From/To must be set. Buckets are ordered and must not overlap.
type RangeBucket struct {
	From  *float64 `json:"from,omitempty"`
	To    *float64 `json:"to,omitempty"`
	Label string   `json:"label,omitempty"`
}

// BucketFrom creates a one-sided bucket with a lower bound.
func BucketFrom(from float64) RangeBucket {
	return RangeBucket{From: &from}
}

// BucketTo creates a one-sided bucket with an upper bound.
func BucketTo(to float64) RangeBucket {
	return RangeBucket{To: &to}
}

// Bucket creates a two-sided bucket [from, to).
func Bucket(from, to float64) RangeBucket {
	return RangeBucket{From: &from, To: &to}
}

// Contains reports whether v falls into the bucket. From is
// inclusive, To exclusive.
func (b RangeBucket) Contains(v float64) bool {
	if b.From != nil && v < *b.From {
		return false
	}
	if b.To != nil && v >= *b.To {
		return false
	}
	return true
}

// FacetSpec represents one requested facet.
type FacetSpec struct {
	Field string    `json:"field"`
	Kind  FacetKind `json:"kind"`
	// Label is the display label for the facet; defaults to Field.
	Label string `json:"label,omitempty"`
	// Buckets applies to range facets only.
	Buckets []RangeBucket `json:"buckets,omitempty"`
	// Interval applies to histogram facets.
	Interval float64 `json:"interval,omitempty"`
	// MaxValues caps the number of returned values for terms facets.
	MaxValues int `json:"max_values,omitempty"`
}

// TermsFacet creates a terms facet on field.
func TermsFacet(field string) FacetSpec {
	return FacetSpec{Field: field, Kind: FacetTerms}
}

// RangeFacet creates a range facet on field with the given buckets.
func RangeFacet(field string, buckets ...RangeBucket) FacetSpec {
	return FacetSpec{Field: field, Kind: FacetRange, Buckets: buckets}
}

// Validate checks the facet invariants.
func (s FacetSpec) Validate() error {
	if s.Field == "" {
		return fmt.Errorf("facet requires a field")
	}
	switch s.Kind {
	case FacetTerms, FacetDateHistogram, FacetStatsKind, FacetCardinality:
	case FacetRange:
		if len(s.Buckets) == 0 {
			return fmt.Errorf("facet %s: range facet requires buckets", s.Field)
		}
		for i, b := range s.Buckets {
			if b.From == nil && b.To == nil {
				return fmt.Errorf("facet %s: bucket %d must define at least one bound", s.Field, i)
			}
		}
	case FacetHistogram:
		if s.Interval <= 0 {
			return fmt.Errorf("facet %s: histogram requires a positive interval", s.Field)
		}
	default:
		return fmt.Errorf("facet %s: unknown kind %q", s.Field, s.Kind)
	}
	return nil
}
