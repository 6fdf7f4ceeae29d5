package translate

import (
	"fmt"

	"github.com/searchbridge/searchbridge/search"
)

// typesenseDialect renders Typesense filter_by / sort_by syntax.
type typesenseDialect struct{}

func (typesenseDialect) Name() string { return search.Typesense }

func (typesenseDialect) And() string { return "&&" }
func (typesenseDialect) Or() string  { return "||" }

func (typesenseDialect) Group(expr string) string { return "(" + expr + ")" }

func (d typesenseDialect) RenderFilter(f search.Filter) (string, error) {
	switch f.Operator {
	case search.OpEq:
		return fmt.Sprintf("%s:=%s", f.Field, bare(f.Value)), nil
	case search.OpNeq:
		return fmt.Sprintf("%s:!=%s", f.Field, bare(f.Value)), nil
	case search.OpGt:
		return fmt.Sprintf("%s:>%s", f.Field, bare(f.Value)), nil
	case search.OpGte:
		return fmt.Sprintf("%s:>=%s", f.Field, bare(f.Value)), nil
	case search.OpLt:
		return fmt.Sprintf("%s:<%s", f.Field, bare(f.Value)), nil
	case search.OpLte:
		return fmt.Sprintf("%s:<=%s", f.Field, bare(f.Value)), nil
	case search.OpIn:
		vs, _ := search.ValueList(f.Value)
		return fmt.Sprintf("%s:=[%s]", f.Field, list(vs, quoted, ",")), nil
	case search.OpNotIn:
		vs, _ := search.ValueList(f.Value)
		return fmt.Sprintf("%s:!=[%s]", f.Field, list(vs, quoted, ",")), nil
	case search.OpBetween:
		vs, _ := search.ValueList(f.Value)
		return fmt.Sprintf("%s:=[%s..%s]", f.Field, bare(vs[0]), bare(vs[1])), nil
	case search.OpLike:
		// Typesense filters have no substring operator; a bare
		// field:value filter performs the engine's token match.
		return fmt.Sprintf("%s:%s", f.Field, bare(f.Value)), nil
	case search.OpNull:
		return fmt.Sprintf("%s:=null", f.Field), nil
	case search.OpNotNull:
		return fmt.Sprintf("%s:!=null", f.Field), nil
	}
	return "", fmt.Errorf("typesense: unknown operator %q", f.Operator)
}

func (d typesenseDialect) RenderSort(s search.SortSpec) (string, error) {
	switch s.EffectiveKind() {
	case search.SortPlain:
		return fmt.Sprintf("%s:%s", s.Field, s.Dir()), nil
	case search.SortRelevance:
		return fmt.Sprintf("_text_match:%s", s.Dir()), nil
	case search.SortDistance:
		return fmt.Sprintf("%s(%s, %s):%s", s.Field, bare(s.Point.Lat), bare(s.Point.Lng), s.Dir()), nil
	case search.SortRandom:
		return "", fmt.Errorf("%w: typesense random sort", ErrUnsupportedSort)
	}
	return "", fmt.Errorf("typesense: unknown sort kind %q", s.Kind)
}
