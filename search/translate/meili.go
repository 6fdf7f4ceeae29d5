package translate

import (
	"fmt"

	"github.com/searchbridge/searchbridge/search"
)

// meiliDialect renders Meilisearch filter / sort syntax.
type meiliDialect struct{}

func (meiliDialect) Name() string { return search.Meilisearch }

func (meiliDialect) And() string { return "AND" }
func (meiliDialect) Or() string  { return "OR" }

func (meiliDialect) Group(expr string) string { return "(" + expr + ")" }

func (d meiliDialect) RenderFilter(f search.Filter) (string, error) {
	switch f.Operator {
	case search.OpEq:
		return fmt.Sprintf("%s = %s", f.Field, quoted(f.Value)), nil
	case search.OpNeq:
		return fmt.Sprintf("%s != %s", f.Field, quoted(f.Value)), nil
	case search.OpGt:
		return fmt.Sprintf("%s > %s", f.Field, bare(f.Value)), nil
	case search.OpGte:
		return fmt.Sprintf("%s >= %s", f.Field, bare(f.Value)), nil
	case search.OpLt:
		return fmt.Sprintf("%s < %s", f.Field, bare(f.Value)), nil
	case search.OpLte:
		return fmt.Sprintf("%s <= %s", f.Field, bare(f.Value)), nil
	case search.OpIn:
		vs, _ := search.ValueList(f.Value)
		return fmt.Sprintf("%s IN [%s]", f.Field, list(vs, quoted, ", ")), nil
	case search.OpNotIn:
		vs, _ := search.ValueList(f.Value)
		return fmt.Sprintf("%s NOT IN [%s]", f.Field, list(vs, quoted, ", ")), nil
	case search.OpBetween:
		vs, _ := search.ValueList(f.Value)
		return fmt.Sprintf("%s %s TO %s", f.Field, bare(vs[0]), bare(vs[1])), nil
	case search.OpLike:
		// Meilisearch filters match whole values; the closest
		// rendering is equality, typo tolerance happens query-side.
		return fmt.Sprintf("%s = %s", f.Field, quoted(f.Value)), nil
	case search.OpNull:
		return fmt.Sprintf("%s IS NULL", f.Field), nil
	case search.OpNotNull:
		return fmt.Sprintf("%s IS NOT NULL", f.Field), nil
	}
	return "", fmt.Errorf("meilisearch: unknown operator %q", f.Operator)
}

func (d meiliDialect) RenderSort(s search.SortSpec) (string, error) {
	switch s.EffectiveKind() {
	case search.SortPlain:
		return fmt.Sprintf("%s:%s", s.Field, s.Dir()), nil
	case search.SortRelevance:
		// Relevance is Meilisearch's default ranking; omitted.
		return "", nil
	case search.SortDistance:
		return fmt.Sprintf("_geoPoint(%s, %s):%s", bare(s.Point.Lat), bare(s.Point.Lng), s.Dir()), nil
	case search.SortRandom:
		return "", fmt.Errorf("%w: meilisearch random sort", ErrUnsupportedSort)
	}
	return "", fmt.Errorf("meilisearch: unknown sort kind %q", s.Kind)
}
