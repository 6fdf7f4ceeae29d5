package facet

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/searchbridge/searchbridge/search"
)

// Normalize produces one FacetResult per requested spec from an
// extracted distribution. The output shape is identical regardless of
// which engine produced the distribution.
//
// Selection state is computed by membership-testing each value against
// applied, the caller's currently applied facet values per field. This
// is pure and independent of result ordering. Fields absent from the
// distribution produce a structurally valid empty result; faceting is
// a best-effort enhancement, not a required capability.
func Normalize(specs []search.FacetSpec, dist Distribution, stats map[string]Stats, applied map[string][]string) map[string]*search.FacetResult {
	if len(specs) == 0 {
		return nil
	}

	results := make(map[string]*search.FacetResult, len(specs))
	for _, spec := range specs {
		results[spec.Field] = normalizeOne(spec, dist[spec.Field], stats[spec.Field], applied[spec.Field])
	}
	return results
}

func normalizeOne(spec search.FacetSpec, counts []Count, st Stats, applied []string) *search.FacetResult {
	res := &search.FacetResult{
		Field:  spec.Field,
		Label:  spec.Label,
		Kind:   spec.Kind,
		Values: []search.FacetValue{},
	}
	if res.Label == "" {
		res.Label = spec.Field
	}

	switch spec.Kind {
	case search.FacetTerms:
		normalizeTerms(res, spec, counts, applied)
	case search.FacetRange:
		normalizeRange(res, spec, counts, applied)
	case search.FacetHistogram:
		normalizeHistogram(res, spec, counts, applied)
	case search.FacetDateHistogram:
		normalizeDateHistogram(res, counts, applied)
	case search.FacetStatsKind:
		normalizeStats(res, counts, st)
	case search.FacetCardinality:
		res.Total = int64(len(counts))
	}
	return res
}

func normalizeTerms(res *search.FacetResult, spec search.FacetSpec, counts []Count, applied []string) {
	sorted := make([]Count, len(counts))
	copy(sorted, counts)
	sortCounts(sorted)

	if spec.MaxValues > 0 && len(sorted) > spec.MaxValues {
		sorted = sorted[:spec.MaxValues]
	}
	for _, c := range sorted {
		res.Values = append(res.Values, search.FacetValue{
			Value:    c.Value,
			Label:    c.Value,
			Count:    c.Count,
			Selected: contains(applied, c.Value),
		})
		res.Total += c.Count
	}
}

// normalizeRange folds raw value counts into the requested buckets.
// Values that parse as numbers are summed into the bucket containing
// them; unparseable values count as missing.
func normalizeRange(res *search.FacetResult, spec search.FacetSpec, counts []Count, applied []string) {
	sums := make([]int64, len(spec.Buckets))
	for _, c := range counts {
		n, ok := parseNumber(c.Value)
		if !ok {
			res.Missing += c.Count
			continue
		}
		for i, b := range spec.Buckets {
			if b.Contains(n) {
				sums[i] += c.Count
				break
			}
		}
	}

	for i, b := range spec.Buckets {
		value := bucketKey(b)
		res.Values = append(res.Values, search.FacetValue{
			Value:    value,
			Label:    bucketLabel(b),
			Count:    sums[i],
			Selected: contains(applied, value),
		})
		res.Total += sums[i]
	}
}

func normalizeHistogram(res *search.FacetResult, spec search.FacetSpec, counts []Count, applied []string) {
	interval := spec.Interval
	sums := make(map[float64]int64)
	for _, c := range counts {
		n, ok := parseNumber(c.Value)
		if !ok {
			res.Missing += c.Count
			continue
		}
		sums[math.Floor(n/interval)*interval] += c.Count
	}

	keys := make([]float64, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	for _, k := range keys {
		value := formatNumber(k)
		res.Values = append(res.Values, search.FacetValue{
			Value:    value,
			Label:    formatNumber(k) + " - " + formatNumber(k+interval),
			Count:    sums[k],
			Selected: contains(applied, value),
		})
		res.Total += sums[k]
	}
}

// normalizeDateHistogram buckets values by calendar month and formats
// bucket keys as human month labels.
func normalizeDateHistogram(res *search.FacetResult, counts []Count, applied []string) {
	sums := make(map[string]int64)
	for _, c := range counts {
		t, ok := parseTime(c.Value)
		if !ok {
			res.Missing += c.Count
			continue
		}
		sums[t.Format("2006-01")] += c.Count
	}

	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		t, _ := time.Parse("2006-01", k)
		res.Values = append(res.Values, search.FacetValue{
			Value:    k,
			Label:    t.Format("January 2006"),
			Count:    sums[k],
			Selected: contains(applied, k),
		})
		res.Total += sums[k]
	}
}

func normalizeStats(res *search.FacetResult, counts []Count, st Stats) {
	if st != (Stats{}) {
		res.Stats = &search.FacetStats{Min: st.Min, Max: st.Max, Avg: st.Avg, Sum: st.Sum}
		return
	}

	// No engine-side stats; derive them from the value counts.
	var n int64
	first := true
	stats := search.FacetStats{}
	for _, c := range counts {
		v, ok := parseNumber(c.Value)
		if !ok {
			res.Missing += c.Count
			continue
		}
		if first || v < stats.Min {
			stats.Min = v
		}
		if first || v > stats.Max {
			stats.Max = v
		}
		first = false
		stats.Sum += v * float64(c.Count)
		n += c.Count
	}
	if n > 0 {
		stats.Avg = stats.Sum / float64(n)
		res.Stats = &stats
		res.Total = n
	}
}

// bucketKey renders the canonical value key of a range bucket, used
// for selection membership.
func bucketKey(b search.RangeBucket) string {
	from, to := "", ""
	if b.From != nil {
		from = formatNumber(*b.From)
	}
	if b.To != nil {
		to = formatNumber(*b.To)
	}
	return from + "-" + to
}

// bucketLabel renders the display label: "{from} - {to}" for
// two-sided buckets, "≥ {from}" and "≤ {to}" for one-sided ones.
func bucketLabel(b search.RangeBucket) string {
	if b.Label != "" {
		return b.Label
	}
	switch {
	case b.From != nil && b.To != nil:
		return formatNumber(*b.From) + " - " + formatNumber(*b.To)
	case b.From != nil:
		return "≥ " + formatNumber(*b.From)
	default:
		return "≤ " + formatNumber(*b.To)
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

// parseTime accepts the date shapes engines put in facet values:
// RFC3339 timestamps, plain dates, and unix seconds or milliseconds.
func parseTime(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), true
		}
		return time.Unix(n, 0).UTC(), true
	}
	return time.Time{}, false
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
