package translate

import (
	"fmt"

	"github.com/searchbridge/searchbridge/search"
)

// embeddedDialect covers the embedded file-based engine, which has no
// structured-filter support. Every operator maps to the documented
// unsupported marker; the adapter turns it into an empty result set.
type embeddedDialect struct{}

func (embeddedDialect) Name() string { return search.Embedded }

func (embeddedDialect) And() string { return "AND" }
func (embeddedDialect) Or() string  { return "OR" }

func (embeddedDialect) Group(expr string) string { return "(" + expr + ")" }

func (embeddedDialect) RenderFilter(f search.Filter) (string, error) {
	return "", fmt.Errorf("%w: operator %s", ErrUnsupportedFilter, f.Operator)
}

func (d embeddedDialect) RenderSort(s search.SortSpec) (string, error) {
	switch s.EffectiveKind() {
	case search.SortPlain:
		if s.Dir() == "desc" {
			return "-" + s.Field, nil
		}
		return s.Field, nil
	case search.SortRelevance:
		if s.Dir() == "asc" {
			return "_score", nil
		}
		return "-_score", nil
	case search.SortDistance:
		return "", fmt.Errorf("%w: embedded distance sort", ErrUnsupportedSort)
	case search.SortRandom:
		return "", fmt.Errorf("%w: embedded random sort", ErrUnsupportedSort)
	}
	return "", fmt.Errorf("embedded: unknown sort kind %q", s.Kind)
}
