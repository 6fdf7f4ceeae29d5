package translate

import (
	"fmt"

	"github.com/searchbridge/searchbridge/search"
)

// LuceneDialect renders Lucene query-string syntax, used by the
// elastic extension adapter. Exported so custom adapters speaking a
// Lucene-family query language can reuse it under their own name:
//
//	translate.Register(translate.LuceneDialect{Engine: "solr"})
type LuceneDialect struct {
	// Engine is the adapter name the dialect registers under.
	Engine string
}

func (d LuceneDialect) Name() string { return d.Engine }

func (LuceneDialect) And() string { return "AND" }
func (LuceneDialect) Or() string  { return "OR" }

func (LuceneDialect) Group(expr string) string { return "(" + expr + ")" }

func (d LuceneDialect) RenderFilter(f search.Filter) (string, error) {
	switch f.Operator {
	case search.OpEq:
		return fmt.Sprintf("%s:%s", f.Field, quoted(f.Value)), nil
	case search.OpNeq:
		return fmt.Sprintf("-%s:%s", f.Field, quoted(f.Value)), nil
	case search.OpGt:
		return fmt.Sprintf("%s:{%s TO *}", f.Field, bare(f.Value)), nil
	case search.OpGte:
		return fmt.Sprintf("%s:[%s TO *]", f.Field, bare(f.Value)), nil
	case search.OpLt:
		return fmt.Sprintf("%s:{* TO %s}", f.Field, bare(f.Value)), nil
	case search.OpLte:
		return fmt.Sprintf("%s:[* TO %s]", f.Field, bare(f.Value)), nil
	case search.OpIn:
		vs, _ := search.ValueList(f.Value)
		return fmt.Sprintf("%s:(%s)", f.Field, list(vs, quoted, " OR ")), nil
	case search.OpNotIn:
		vs, _ := search.ValueList(f.Value)
		return fmt.Sprintf("-%s:(%s)", f.Field, list(vs, quoted, " OR ")), nil
	case search.OpBetween:
		vs, _ := search.ValueList(f.Value)
		return fmt.Sprintf("%s:[%s TO %s]", f.Field, bare(vs[0]), bare(vs[1])), nil
	case search.OpLike:
		return fmt.Sprintf("%s:*%s*", f.Field, bare(f.Value)), nil
	case search.OpNull:
		return fmt.Sprintf("-_exists_:%s", f.Field), nil
	case search.OpNotNull:
		return fmt.Sprintf("_exists_:%s", f.Field), nil
	}
	return "", fmt.Errorf("%s: unknown operator %q", d.Engine, f.Operator)
}

func (d LuceneDialect) RenderSort(s search.SortSpec) (string, error) {
	switch s.EffectiveKind() {
	case search.SortPlain:
		return fmt.Sprintf("%s:%s", s.Field, s.Dir()), nil
	case search.SortRelevance:
		return fmt.Sprintf("_score:%s", s.Dir()), nil
	case search.SortDistance:
		return "", fmt.Errorf("%w: %s distance sort", ErrUnsupportedSort, d.Engine)
	case search.SortRandom:
		return "", fmt.Errorf("%w: %s random sort", ErrUnsupportedSort, d.Engine)
	}
	return "", fmt.Errorf("%s: unknown sort kind %q", d.Engine, s.Kind)
}
