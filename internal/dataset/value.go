// Package dataset implements the in-memory table engine: typed cells,
// schema inference, B-tree backed frames, queries, and statistics.
package dataset

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"gridwatch/internal/calendar"
)

// Kind is the value kind of a column.
type Kind int

const (
	// KindString holds arbitrary text.
	KindString Kind = iota
	// KindInt holds 64-bit integers.
	KindInt
	// KindFloat holds 64-bit floats.
	KindFloat
	// KindBool holds booleans.
	KindBool
	// KindTime holds timestamps.
	KindTime
)

// String returns the kind name used in summaries and logs.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

// Numeric reports whether the kind participates in numeric statistics.
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "string":
		return KindString, true
	case "int":
		return KindInt, true
	case "float":
		return KindFloat, true
	case "bool":
		return KindBool, true
	case "time":
		return KindTime, true
	default:
		return KindString, false
	}
}

// MarshalJSON renders the kind by name so schema and summary JSON
// stay readable.
func (k Kind) MarshalJSON() ([]byte, error) {
	return strconv.AppendQuote(nil, k.String()), nil
}

// UnmarshalJSON parses a kind name.
func (k *Kind) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.Wrap(err, "kind must be a string")
	}
	parsed, ok := ParseKind(s)
	if !ok {
		return errors.Errorf("unknown kind %q", s)
	}
	*k = parsed
	return nil
}

// Value is one cell. The zero Value is a null string.
type Value struct {
	kind Kind
	null bool
	s    string
	i    int64
	f    float64
	b    bool
	t    time.Time
}

// String constructs a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int constructs an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float constructs a float value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Bool constructs a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Time constructs a timestamp value.
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

// Null constructs a null value of the given kind.
func Null(kind Kind) Value { return Value{kind: kind, null: true} }

// Kind returns the value kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the cell is empty.
func (v Value) IsNull() bool { return v.null }

// Int64 returns the integer payload.
func (v Value) Int64() int64 { return v.i }

// Float64 returns the numeric payload, widening ints.
func (v Value) Float64() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.b }

// Time returns the timestamp payload.
func (v Value) Time() time.Time { return v.t }

// String renders the cell for display and export. Nulls render empty.
func (v Value) String() string {
	if v.null {
		return ""
	}
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.Format(time.RFC3339)
	default:
		return v.s
	}
}

// Compare orders v against other: -1, 0, or 1. Nulls sort after
// non-nulls; mixed kinds fall back to rendered strings.
func (v Value) Compare(other Value) int {
	switch {
	case v.null && other.null:
		return 0
	case v.null:
		return 1
	case other.null:
		return -1
	}

	if v.kind != other.kind {
		// Int and float columns may mix after widening.
		if v.kind.Numeric() && other.kind.Numeric() {
			return compareFloats(v.Float64(), other.Float64())
		}
		return strings.Compare(v.String(), other.String())
	}

	switch v.kind {
	case KindString:
		return strings.Compare(v.s, other.s)
	case KindInt:
		switch {
		case v.i < other.i:
			return -1
		case v.i > other.i:
			return 1
		}
		return 0
	case KindFloat:
		return compareFloats(v.f, other.f)
	case KindBool:
		switch {
		case !v.b && other.b:
			return -1
		case v.b && !other.b:
			return 1
		}
		return 0
	case KindTime:
		switch {
		case v.t.Before(other.t):
			return -1
		case v.t.After(other.t):
			return 1
		}
		return 0
	default:
		return strings.Compare(v.String(), other.String())
	}
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Parse converts a raw cell into a Value of the given kind. Empty cells
// become nulls; unparseable cells degrade to strings so a single bad
// cell never loses data.
func Parse(raw string, kind Kind) Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Null(kind)
	}

	switch kind {
	case KindInt:
		if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return Int(i)
		}
	case KindFloat:
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return Float(f)
		}
	case KindBool:
		switch strings.ToLower(trimmed) {
		case "true":
			return Bool(true)
		case "false":
			return Bool(false)
		}
	case KindTime:
		if t, err := calendar.ParseTime(trimmed); err == nil {
			return Time(t)
		}
	}

	return String(raw)
}

// classify returns the narrowest kind a raw cell fits, used by schema
// inference. Empty cells classify as no kind at all.
func classify(raw string) (Kind, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return KindString, false
	}
	if _, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return KindInt, true
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return KindFloat, true
	}
	switch strings.ToLower(trimmed) {
	case "true", "false":
		return KindBool, true
	}
	if _, err := calendar.ParseTime(trimmed); err == nil {
		return KindTime, true
	}
	return KindString, true
}

// widen merges an observed cell kind into the column kind accumulated
// so far. Int widens to float; anything else conflicting collapses to
// string.
func widen(have, observed Kind) Kind {
	if have == observed {
		return have
	}
	if have.Numeric() && observed.Numeric() {
		return KindFloat
	}
	return KindString
}
