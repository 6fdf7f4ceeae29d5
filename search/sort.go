package search

import "fmt"

// SortKind represents the kind of sort applied to a field.
type SortKind string

const (
	SortPlain     SortKind = "plain"
	SortRelevance SortKind = "relevance"
	SortDistance  SortKind = "distance"
	SortRandom    SortKind = "random"
)

// GeoPoint represents a latitude/longitude pair for distance sorts.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SortSpec represents one sort criterion.
//
// Direction is "asc" or "desc" and defaults to "asc". Random sorts
// ignore direction. A distance sort requires Point to be set; at most
// one distance sort may appear in a sort list.
type SortSpec struct {
	Field     string    `json:"field"`
	Direction string    `json:"direction,omitempty"`
	Kind      SortKind  `json:"kind,omitempty"`
	Point     *GeoPoint `json:"point,omitempty"`
}

// SortBy creates a plain field sort.
func SortBy(field, direction string) SortSpec {
	return SortSpec{Field: field, Direction: direction, Kind: SortPlain}
}

// SortByRelevance creates a relevance sort.
func SortByRelevance(direction string) SortSpec {
	return SortSpec{Direction: direction, Kind: SortRelevance}
}

// SortByDistance creates a geo-distance sort on field from point.
func SortByDistance(field string, lat, lng float64, direction string) SortSpec {
	return SortSpec{Field: field, Direction: direction, Kind: SortDistance, Point: &GeoPoint{Lat: lat, Lng: lng}}
}

// SortByRandom creates a random-order sort.
func SortByRandom() SortSpec {
	return SortSpec{Kind: SortRandom}
}

// Dir returns the effective direction.
func (s SortSpec) Dir() string {
	if s.Direction == "desc" {
		return "desc"
	}
	return "asc"
}

// EffectiveKind returns the effective sort kind, defaulting to plain.
func (s SortSpec) EffectiveKind() SortKind {
	if s.Kind == "" {
		return SortPlain
	}
	return s.Kind
}

// ValidateSorts checks the sort-list invariants.
func ValidateSorts(sorts []SortSpec) error {
	distance := 0
	for _, s := range sorts {
		switch s.EffectiveKind() {
		case SortDistance:
			distance++
			if s.Point == nil {
				return fmt.Errorf("sort %s: distance sort requires a lat/lng point", s.Field)
			}
		case SortPlain:
			if s.Field == "" {
				return fmt.Errorf("plain sort requires a field")
			}
		}
	}
	if distance > 1 {
		return fmt.Errorf("at most one distance sort is allowed")
	}
	return nil
}
