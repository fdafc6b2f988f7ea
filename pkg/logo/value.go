package logo

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind identifies which scalar a Value holds.
type ValueKind int

const (
	// KindString is a quoted text literal.
	KindString ValueKind = iota + 1
	// KindInt is an integer literal.
	KindInt
	// KindFloat is a decimal literal.
	KindFloat
	// KindBool is a true/false literal.
	KindBool
)

// String returns the kind name.
func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "invalid"
	}
}

// Value is a scalar literal used in filter expressions. The zero Value is invalid
// and compiles to nothing.
type Value struct {
	kind ValueKind
	str  string
	num  int64
	flt  float64
	b    bool
}

// String returns a text Value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Int returns an integer Value.
func Int(n int) Value {
	return Value{kind: KindInt, num: int64(n)}
}

// Int64 returns an integer Value.
func Int64(n int64) Value {
	return Value{kind: KindInt, num: n}
}

// Float returns a decimal Value. NaN and infinities have no literal form and
// yield the invalid zero Value.
func Float(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}

	return Value{kind: KindFloat, flt: f}
}

// Bool returns a boolean Value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// ValueOf converts a dynamically typed scalar into a Value. Integral floats decoded
// from JSON (which have no integer type) are kept as integers.
func ValueOf(v interface{}) (Value, error) {
	switch typed := v.(type) {
	case Value:
		return typed, nil
	case string:
		return String(typed), nil
	case bool:
		return Bool(typed), nil
	case int:
		return Int(typed), nil
	case int8:
		return Int64(int64(typed)), nil
	case int16:
		return Int64(int64(typed)), nil
	case int32:
		return Int64(int64(typed)), nil
	case int64:
		return Int64(typed), nil
	case uint8:
		return Int64(int64(typed)), nil
	case uint16:
		return Int64(int64(typed)), nil
	case uint32:
		return Int64(int64(typed)), nil
	case uint:
		if uint64(typed) > math.MaxInt64 {
			return Value{}, fmt.Errorf("%w: %d overflows int64", ErrInvalidValue, typed)
		}

		return Int64(int64(typed)), nil
	case uint64:
		if typed > math.MaxInt64 {
			return Value{}, fmt.Errorf("%w: %d overflows int64", ErrInvalidValue, typed)
		}

		return Int64(int64(typed)), nil
	case float32:
		return floatValue(float64(typed))
	case float64:
		return floatValue(typed)
	case json.Number:
		if n, err := typed.Int64(); err == nil {
			return Int64(n), nil
		}

		f, err := typed.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q", ErrInvalidValue, typed.String())
		}

		return floatValue(f)
	default:
		return Value{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidValue, v)
	}
}

func floatValue(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, fmt.Errorf("%w: %v is not a finite number", ErrInvalidValue, f)
	}

	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return Int64(int64(f)), nil
	}

	return Float(f), nil
}

// Kind reports the scalar kind, zero for the zero Value.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsValid reports whether the Value was built by one of the constructors.
func (v Value) IsValid() bool {
	return v.kind != 0
}

// Interface returns the underlying Go value.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return v.num
	case KindFloat:
		return v.flt
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// Text renders the value without quoting.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.flt, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Literal renders the value as a filter literal. Strings are single-quoted and
// embedded quotes are left untouched.
func (v Value) Literal() string {
	return v.literal(false)
}

func (v Value) literal(escapeQuotes bool) string {
	if v.kind != KindString {
		return v.Text()
	}

	s := v.str
	if escapeQuotes {
		s = strings.ReplaceAll(s, "'", "''")
	}

	return "'" + s + "'"
}

// GoString implements fmt.GoStringer for readable test failures.
func (v Value) GoString() string {
	return fmt.Sprintf("logo.Value{%s %s}", v.kind, v.Literal())
}
