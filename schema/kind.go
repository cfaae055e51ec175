package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the value kind of a field. It decides how a raw literal is decoded,
// how a value is formatted, and whether a key may appear on several lines.
type Kind uint8

const (
	KindBoolean Kind = iota
	KindNumber
	KindColor
	KindEnum
	KindText
	KindFile
	KindKeybindingList
	KindRepeatable
)

var kindNames = [...]string{
	KindBoolean:        "boolean",
	KindNumber:         "number",
	KindColor:          "color",
	KindEnum:           "enum",
	KindText:           "text",
	KindFile:           "file",
	KindKeybindingList: "keybinding-list",
	KindRepeatable:     "repeatable",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown field kind %q", name)
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Multi reports whether several lines for the same key accumulate into a list.
func (k Kind) Multi() bool {
	return k == KindRepeatable
}

// Decode converts an unquoted raw literal into a Value of this kind.
// A non-numeric literal for KindNumber yields NaN rather than an error.
func (k Kind) Decode(raw string) Value {
	switch k {
	case KindBoolean:
		return Bool(raw == "true")
	case KindNumber:
		return Number(parseNumber(raw))
	case KindColor, KindEnum, KindText, KindFile, KindKeybindingList, KindRepeatable:
		return String(raw)
	}
	panic(fmt.Sprintf("schema: unhandled kind %d", k))
}

// Accepts reports whether v is a legal value (or default) for this kind.
func (k Kind) Accepts(v Value) bool {
	switch k {
	case KindBoolean:
		_, ok := v.(Bool)
		return ok
	case KindNumber:
		_, ok := v.(Number)
		return ok
	case KindColor, KindEnum, KindText, KindFile, KindKeybindingList:
		_, ok := v.(String)
		return ok
	case KindRepeatable:
		switch v.(type) {
		case String, List:
			return true
		}
		return false
	}
	return false
}

// parseNumber reads a decimal literal. Hex, "inf" and "nan" spellings are
// not numbers; only "Infinity" is, since that is how Number prints it.
func parseNumber(raw string) float64 {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	for i := 0; i < len(raw); i++ {
		switch c := raw[i]; {
		case c >= '0' && c <= '9', c == '.', c == '+', c == '-', c == 'e', c == 'E':
		default:
			return math.NaN()
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// ParseFloat returns ±Inf together with ErrRange on overflow.
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}
