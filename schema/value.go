package schema

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Value is a runtime config value. The set of implementations is closed:
// Bool, Number, String and List.
type Value interface {
	isValue()
}

type (
	Bool   bool
	Number float64
	String string
	List   []Value
)

func (Bool) isValue()   {}
func (Number) isValue() {}
func (String) isValue() {}
func (List) isValue()   {}

// Valid reports whether n holds a real number (not the NaN sentinel).
func (n Number) Valid() bool {
	return !math.IsNaN(float64(n))
}

// String renders n in its shortest decimal form. Magnitudes outside
// [1e-6, 1e21) use exponent notation.
func (n Number) String() string {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if abs := math.Abs(f); f == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	// 1e-07 -> 1e-7
	if e := strings.IndexByte(s, 'e'); e > 0 && e+3 < len(s) && s[e+2] == '0' {
		s = s[:e+2] + s[e+3:]
	}
	return s
}

// MarshalJSON carries non-finite numbers as strings since JSON has no literal
// for them.
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return json.Marshal(n.String())
	}
	return json.Marshal(f)
}

func (n *Number) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = Number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*n = Number(parseNumber(s))
	return nil
}

// Format renders a scalar value the way it appears on the right-hand side of
// a config line. Strings are emitted unchanged and never re-quoted.
func Format(v Value) string {
	switch v := v.(type) {
	case Bool:
		if v {
			return "true"
		}
		return "false"
	case Number:
		return v.String()
	case String:
		return string(v)
	case List:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = Format(e)
		}
		return strings.Join(parts, ",")
	}
	return ""
}

// Equal compares two values structurally. NaN equals NaN so that a parsed
// invalid number survives a round trip.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case Bool:
		bb, ok := b.(Bool)
		return ok && a == bb
	case Number:
		bn, ok := b.(Number)
		if !ok {
			return false
		}
		if math.IsNaN(float64(a)) || math.IsNaN(float64(bn)) {
			return math.IsNaN(float64(a)) && math.IsNaN(float64(bn))
		}
		return a == bn
	case String:
		bs, ok := b.(String)
		return ok && a == bs
	case List:
		bl, ok := b.(List)
		if !ok || len(a) != len(bl) {
			return false
		}
		for i := range a {
			if !Equal(a[i], bl[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Clone returns a copy of v that shares no backing storage with it.
func Clone(v Value) Value {
	if l, ok := v.(List); ok {
		out := make(List, len(l))
		copy(out, l)
		return out
	}
	return v
}
