// Package facet normalizes engine-specific aggregation payloads into
// the uniform FacetResult shape.
//
// Each engine reports facet counts differently: Typesense nests them
// under facet_counts as a list of {value, count} pairs per field,
// Meilisearch under facetDistribution as a value→count map, and
// Elasticsearch-family engines under aggregations as bucket lists.
// The extractors in this package reduce all of them to one
// Distribution, and Normalize produces identical results regardless of
// which engine the counts came from.
package facet

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Count represents one value's document count within a field.
type Count struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// Distribution maps a field to its value counts.
type Distribution map[string][]Count

// Stats represents numeric aggregates an engine reported for a field.
type Stats struct {
	Min float64
	Max float64
	Avg float64
	Sum float64
}

// FieldCounts mirrors one entry of Typesense's facet_counts payload.
type FieldCounts struct {
	FieldName string  `json:"field_name"`
	Counts    []Count `json:"counts"`
}

// FromFacetCounts extracts a distribution from a Typesense-shaped
// facet_counts list.
func FromFacetCounts(counts []FieldCounts) Distribution {
	dist := make(Distribution, len(counts))
	for _, fc := range counts {
		vs := make([]Count, len(fc.Counts))
		copy(vs, fc.Counts)
		dist[fc.FieldName] = vs
	}
	return dist
}

// FromFacetDistribution extracts a distribution from a
// Meilisearch-shaped facetDistribution payload (field → value →
// count). Counts arrive as float64 when decoded from JSON.
func FromFacetDistribution(raw map[string]any) Distribution {
	dist := make(Distribution, len(raw))
	for field, v := range raw {
		values, ok := v.(map[string]any)
		if !ok {
			continue
		}
		counts := make([]Count, 0, len(values))
		for value, n := range values {
			counts = append(counts, Count{Value: value, Count: toInt64(n)})
		}
		sortCounts(counts)
		dist[field] = counts
	}
	return dist
}

// FromFacetStats extracts per-field stats from a Meilisearch-shaped
// facetStats payload (field → {min, max}).
func FromFacetStats(raw map[string]any) map[string]Stats {
	out := make(map[string]Stats, len(raw))
	for field, v := range raw {
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		out[field] = Stats{
			Min: toFloat64(entry["min"]),
			Max: toFloat64(entry["max"]),
			Avg: toFloat64(entry["avg"]),
			Sum: toFloat64(entry["sum"]),
		}
	}
	return out
}

// FromAggregations extracts a distribution and stats from an
// Elasticsearch-shaped aggregations payload. Bucket aggregations
// contribute counts; stats aggregations contribute Stats.
func FromAggregations(raw map[string]json.RawMessage) (Distribution, map[string]Stats, error) {
	dist := make(Distribution)
	stats := make(map[string]Stats)

	for field, msg := range raw {
		var agg struct {
			Buckets []struct {
				Key         any    `json:"key"`
				KeyAsString string `json:"key_as_string"`
				DocCount    int64  `json:"doc_count"`
			} `json:"buckets"`
			Count *int64  `json:"count"`
			Min   float64 `json:"min"`
			Max   float64 `json:"max"`
			Avg   float64 `json:"avg"`
			Sum   float64 `json:"sum"`
		}
		if err := json.Unmarshal(msg, &agg); err != nil {
			return nil, nil, fmt.Errorf("aggregation %s: %w", field, err)
		}

		if agg.Buckets != nil {
			counts := make([]Count, 0, len(agg.Buckets))
			for _, b := range agg.Buckets {
				value := b.KeyAsString
				if value == "" {
					value = keyString(b.Key)
				}
				counts = append(counts, Count{Value: value, Count: b.DocCount})
			}
			dist[field] = counts
			continue
		}
		if agg.Count != nil {
			stats[field] = Stats{Min: agg.Min, Max: agg.Max, Avg: agg.Avg, Sum: agg.Sum}
		}
	}
	return dist, stats, nil
}

// sortCounts orders by count descending, then value ascending, so map
// sources produce deterministic output.
func sortCounts(counts []Count) {
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Value < counts[j].Value
	})
}

func keyString(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case float64:
		return strconv.FormatFloat(k, 'f', -1, 64)
	case nil:
		return ""
	}
	return fmt.Sprintf("%v", key)
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	}
	return 0
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	return 0
}
