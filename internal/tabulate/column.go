package tabulate

import (
	"math"
	"strings"
)

// DefaultSentinel replaces missing and empty-like text cells.
const DefaultSentinel = "no data"

// emptyLike are the textual forms a null or blank takes after stringifying.
var emptyLike = map[string]struct{}{
	"":      {},
	"nan":   {},
	"NaN":   {},
	"NaT":   {},
	"None":  {},
	"<nil>": {},
}

// ColumnCoercer rewrites a column to a single concrete type.
type ColumnCoercer struct {
	Sentinel string
}

// NewColumnCoercer returns a coercer using sentinel for text gaps; an empty
// sentinel falls back to DefaultSentinel.
func NewColumnCoercer(sentinel string) *ColumnCoercer {
	if sentinel == "" {
		sentinel = DefaultSentinel
	}
	return &ColumnCoercer{Sentinel: sentinel}
}

// CoerceColumn returns one value per input value. It never fails.
func (cc *ColumnCoercer) CoerceColumn(values []any, cat Category) []Value {
	out := make([]Value, len(values))
	for i, raw := range values {
		out[i] = cc.coerceOne(raw, cat)
	}
	return out
}

func (cc *ColumnCoercer) coerceOne(raw any, cat Category) Value {
	switch cat {
	case Numeric:
		if isBlank(raw) {
			return Number(0)
		}
		v, ok := toNumber(raw)
		if !ok || math.IsNaN(v.Num) {
			return Number(0)
		}
		return v
	case Temporal:
		if isBlank(raw) {
			return Missing()
		}
		v, ok := toDateTime(raw)
		if !ok {
			return Missing()
		}
		return v
	case Textual:
		if isBlank(raw) {
			return Text(cc.Sentinel)
		}
		s := stringify(raw)
		if _, empty := emptyLike[strings.TrimSpace(s)]; empty {
			return Text(cc.Sentinel)
		}
		return Text(s)
	default:
		return Text(stringify(raw))
	}
}
