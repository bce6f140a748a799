package tabulate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Rule is one step of the field coercion chain. Convert reports ok=false
// when the raw value does not belong to the rule's kind.
type Rule struct {
	Name    string
	Kind    Kind
	Convert func(raw any) (Value, bool)
}

// rules is evaluated in order; the last rule always succeeds.
var rules = []Rule{
	{Name: "numeric", Kind: KindNumber, Convert: toNumber},
	{Name: "temporal", Kind: KindDateTime, Convert: toDateTime},
	{Name: "textual", Kind: KindText, Convert: toText},
}

// Rules returns a copy of the coercion chain in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Coerce converts one raw scalar. Blank input is Missing; otherwise the
// first rule that accepts the value wins. Parse failures are not errors.
func Coerce(raw any) Value {
	if isBlank(raw) {
		return Missing()
	}
	for _, r := range rules {
		if v, ok := r.Convert(raw); ok {
			return v
		}
	}
	return Text(stringify(raw))
}

func isBlank(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []byte:
		return strings.TrimSpace(string(v)) == ""
	case Value:
		return v.IsMissing()
	default:
		return false
	}
}

func toNumber(raw any) (Value, bool) {
	switch v := raw.(type) {
	case float64:
		return Number(v), true
	case float32:
		return Number(float64(v)), true
	case int:
		return Number(float64(v)), true
	case int8:
		return Number(float64(v)), true
	case int16:
		return Number(float64(v)), true
	case int32:
		return Number(float64(v)), true
	case int64:
		return Number(float64(v)), true
	case uint:
		return Number(float64(v)), true
	case uint8:
		return Number(float64(v)), true
	case uint16:
		return Number(float64(v)), true
	case uint32:
		return Number(float64(v)), true
	case uint64:
		return Number(float64(v)), true
	case bool:
		if v {
			return Number(1), true
		}
		return Number(0), true
	case Value:
		if v.Kind == KindNumber {
			return v, true
		}
		if v.Kind == KindText {
			return parseNumber(v.Str)
		}
		return Value{}, false
	case string:
		return parseNumber(v)
	case []byte:
		return parseNumber(string(v))
	default:
		return Value{}, false
	}
}

func parseNumber(s string) (Value, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		// Out-of-range input still yields ±Inf or 0, like a plain float parse.
		if errors.Is(err, strconv.ErrRange) {
			return Number(f), true
		}
		return Value{}, false
	}
	return Number(f), true
}

func toDateTime(raw any) (Value, bool) {
	switch v := raw.(type) {
	case time.Time:
		return DateTime(v), true
	case *time.Time:
		if v == nil {
			return Value{}, false
		}
		return DateTime(*v), true
	case Value:
		if v.Kind == KindDateTime {
			return v, true
		}
		if v.Kind == KindText {
			return parseDateTime(v.Str)
		}
		return Value{}, false
	case string:
		return parseDateTime(v)
	case []byte:
		return parseDateTime(string(v))
	default:
		return Value{}, false
	}
}

func parseDateTime(s string) (v Value, ok bool) {
	// dateparse panics on a handful of malformed inputs.
	defer func() {
		if recover() != nil {
			v, ok = Value{}, false
		}
	}()
	t, err := dateparse.ParseIn(strings.TrimSpace(s), time.UTC)
	if err != nil {
		return Value{}, false
	}
	return DateTime(t), true
}

func toText(raw any) (Value, bool) {
	return Text(stringify(raw)), true
}

func stringify(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case Value:
		return v.String()
	case time.Time:
		return DateTime(v).String()
	case float64:
		return Number(v).String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
