// Package keyconv converts mapping keys between camelCase and snake_case.
//
// Ops Manager API payloads carry camelCase keys while client libraries
// commonly expose snake_case. Conversion is bidirectional but lossy for
// acronym-heavy names (a B->A->B cycle may not reproduce the input); callers
// that hit such keys should exclude them from comparison rather than expect
// an exact round trip.
package keyconv

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Direction selects which way Normalize converts mapping keys.
type Direction string

const (
	ToSnakeCase Direction = "to_snake"
	ToCamelCase Direction = "to_camel"
)

func (d Direction) Valid() bool {
	switch d {
	case ToSnakeCase, ToCamelCase:
		return true
	}
	return false
}

// Two-pass word-boundary rule for ToSnake. The first pass separates an
// uppercase run from a following capitalized word (HTTPServer -> HTTP_Server),
// the second separates a lowercase-or-digit run from a following uppercase
// letter (orgId -> org_Id).
var (
	upperWord  = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	lowerUpper = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// ToSnake converts a camelCase name to snake_case. Names without uppercase
// letters come back unchanged apart from lowercasing.
func ToSnake(name string) string {
	s := upperWord.ReplaceAllString(name, "${1}_${2}")
	s = lowerUpper.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}

// ToCamel converts a snake_case name to camelCase. The first component keeps
// its case; every later component gets its first letter upper-cased and the
// rest left alone. Empty components between doubled underscores contribute
// nothing. A name without underscores comes back unchanged.
func ToCamel(name string) string {
	components := strings.Split(name, "_")
	if len(components) == 1 {
		return name
	}
	var b strings.Builder
	b.WriteString(components[0])
	for _, c := range components[1:] {
		if c == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(c)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(c[size:])
	}
	return b.String()
}

// Normalize rebuilds value with every mapping key converted per dir.
// Sequences are rebuilt with each element normalized recursively; scalars are
// returned as-is. Only keys are converted, never string values.
func Normalize(value any, dir Direction) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[convert(k, dir)] = Normalize(item, dir)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Normalize(item, dir)
		}
		return out
	default:
		return value
	}
}

func convert(key string, dir Direction) string {
	if dir == ToCamelCase {
		return ToCamel(key)
	}
	return ToSnake(key)
}
