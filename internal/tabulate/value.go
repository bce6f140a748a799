package tabulate

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind tags the active member of a Value.
type Kind int

const (
	KindMissing Kind = iota
	KindNumber
	KindDateTime
	KindText
)

// String returns the lower-case name of the kind
func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindNumber:
		return "number"
	case KindDateTime:
		return "datetime"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a coerced cell. Exactly one of Num, Time or Str is meaningful,
// selected by Kind. The zero Value is Missing.
type Value struct {
	Kind Kind
	Num  float64
	Time time.Time
	Str  string
}

// Missing returns the empty marker.
func Missing() Value { return Value{} }

// Number wraps a float.
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// DateTime wraps a timestamp.
func DateTime(t time.Time) Value { return Value{Kind: KindDateTime, Time: t} }

// Text wraps a string.
func Text(s string) Value { return Value{Kind: KindText, Str: s} }

// IsMissing reports whether v is the empty marker.
func (v Value) IsMissing() bool { return v.Kind == KindMissing }

// String renders the value the way it appears in an exported sheet.
func (v Value) String() string {
	switch v.Kind {
	case KindMissing:
		return ""
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindDateTime:
		if v.Time.Hour() == 0 && v.Time.Minute() == 0 && v.Time.Second() == 0 && v.Time.Nanosecond() == 0 {
			return v.Time.Format("2006-01-02")
		}
		return v.Time.Format("2006-01-02 15:04:05")
	case KindText:
		return v.Str
	default:
		return ""
	}
}

// Any returns the Go value carried by v; nil for Missing.
func (v Value) Any() any {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindDateTime:
		return v.Time
	case KindText:
		return v.Str
	default:
		return nil
	}
}

// Equal compares kind and payload. NaN numbers are equal to each other.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindMissing:
		return true
	case KindNumber:
		if math.IsNaN(v.Num) && math.IsNaN(o.Num) {
			return true
		}
		return v.Num == o.Num
	case KindDateTime:
		return v.Time.Equal(o.Time)
	case KindText:
		return v.Str == o.Str
	default:
		return false
	}
}

// Compare orders values: Missing < Number < DateTime < Text, natural order
// within a kind.
func Compare(a, b Value) int {
	if a.Kind != b.Kind {
		if a.Kind < b.Kind {
			return -1
		}
		return 1
	}
	switch a.Kind {
	case KindNumber:
		switch {
		case a.Num < b.Num:
			return -1
		case a.Num > b.Num:
			return 1
		}
		return 0
	case KindDateTime:
		return a.Time.Compare(b.Time)
	case KindText:
		switch {
		case a.Str < b.Str:
			return -1
		case a.Str > b.Str:
			return 1
		}
		return 0
	default:
		return 0
	}
}

// Category is the predominant type assigned to a whole column.
type Category int

const (
	Numeric Category = iota
	Temporal
	Textual
)

// categoryOrder is the priority used when a column is classified.
var categoryOrder = []Category{Numeric, Temporal, Textual}

// String returns the category name used in logs and metrics
func (c Category) String() string {
	switch c {
	case Numeric:
		return "numeric"
	case Temporal:
		return "temporal"
	case Textual:
		return "textual"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// categoryOf maps a coerced kind to the category it counts toward. ok is
// false for Missing.
func categoryOf(k Kind) (Category, bool) {
	switch k {
	case KindNumber:
		return Numeric, true
	case KindDateTime:
		return Temporal, true
	case KindText:
		return Textual, true
	case KindMissing:
		return 0, false
	default:
		return 0, false
	}
}
