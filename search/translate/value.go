package translate

import (
	"fmt"
	"strconv"
	"strings"
)

// bare renders a scalar without quoting.
func bare(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	}
	return fmt.Sprintf("%v", v)
}

// quoted renders strings double-quoted and everything else bare.
func quoted(v any) string {
	if s, ok := v.(string); ok {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return bare(v)
}

// list renders values comma-joined without surrounding brackets.
func list(vs []any, render func(any) string, sep string) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = render(v)
	}
	return strings.Join(parts, sep)
}
