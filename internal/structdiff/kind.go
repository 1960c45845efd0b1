package structdiff

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// kind tags the closed set of shapes a semi-structured value can take.
type kind uint8

const (
	kindInvalid kind = iota
	kindMapping
	kindSequence
	kindString
	kindNumber
	kindBool
	kindNull
)

// kindOf classifies a parsed JSON-like value. Values outside the model come
// back as kindInvalid; Diff still terminates on those by comparing rendered
// representations instead of raising.
func kindOf(v any) kind {
	switch v.(type) {
	case nil:
		return kindNull
	case map[string]any:
		return kindMapping
	case []any:
		return kindSequence
	case string:
		return kindString
	case bool:
		return kindBool
	case float64, float32,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		json.Number:
		return kindNumber
	}
	return kindInvalid
}

// toFloat widens any numeric subtype to float64 so an integer and a float
// that are numerically equal compare equal.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// render produces the display form embedded in value-mismatch records:
// bare digits for numbers, quoted strings, true/false, null, and compact
// JSON for composite values.
func render(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(x)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
