// Package eval evaluates pre-parsed condition and argument expressions
// against a per-trigger context.
package eval

import (
	"strconv"
	"strings"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	// KindNone is an absent value, such as a reference to content that
	// was never loaded. It compares unequal to everything and counts as 0.
	KindNone Kind = iota
	KindBool
	KindNumber
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return "none"
	}
}

// Value is the result of evaluating an expression.
type Value struct {
	Kind Kind
	B    bool
	N    float64
	S    string
}

// None is the absent value.
var None = Value{}

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{Kind: KindBool, B: b} }

// Num wraps a number.
func Num(n float64) Value { return Value{Kind: KindNumber, N: n} }

// Int wraps an integer.
func Int(n int64) Value { return Value{Kind: KindNumber, N: float64(n)} }

// Str wraps a string. Strings are normalized to lower case so content
// comparisons are case-insensitive.
func Str(s string) Value { return Value{Kind: KindString, S: strings.ToLower(s)} }

// Truthy converts a value to a condition result.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.B
	case KindNumber:
		return v.N != 0
	case KindString:
		return v.S != ""
	default:
		return false
	}
}

// Number converts a value to a number. Booleans are 0 or 1, absent is 0.
func (v Value) Number() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.N, true
	case KindBool:
		if v.B {
			return 1, true
		}
		return 0, true
	case KindNone:
		return 0, true
	default:
		return 0, false
	}
}

// Text returns the string form of a value.
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.S
	case KindNumber:
		return strconv.FormatFloat(v.N, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.B)
	default:
		return ""
	}
}

func (v Value) String() string {
	if v.Kind == KindNone {
		return "none"
	}
	return v.Text()
}
