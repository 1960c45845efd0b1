// Package structdiff reports structural differences between two parsed
// JSON-like values as an ordered list of human-readable records.
//
// The walk dispatches on a closed set of value kinds. Mappings compare over
// the sorted union of their keys, sequences compare element-wise only when
// their lengths match, and everything else falls through to scalar
// comparison with a numeric-tolerance rule so 3 and 3.0 are equal. Inputs
// are never mutated and every call returns a fresh result slice, so values
// may be diffed from concurrent goroutines.
package structdiff

import (
	"fmt"
	"sort"
)

// Ignore is a set of bare field names skipped at every nesting depth.
// Membership is tested on the key name alone, independent of path.
type Ignore map[string]struct{}

// NewIgnore builds an Ignore set from field names.
func NewIgnore(names ...string) Ignore {
	ig := make(Ignore, len(names))
	for _, n := range names {
		ig[n] = struct{}{}
	}
	return ig
}

func (ig Ignore) Has(name string) bool {
	_, ok := ig[name]
	return ok
}

// Diff walks left and right in lock step and returns one record per
// divergence, deterministically ordered. Records take the forms:
//
//	Missing in Left: <path>
//	Missing in Right: <path>
//	<path>: list length mismatch (left=<n>, right=<m>)
//	<path>: value mismatch (left=<repr>, right=<repr>)
//
// A nil ignore set skips nothing. Diff never fails for parsed JSON input:
// every divergence becomes a record and equal inputs produce none.
func Diff(left, right any, ignore Ignore) []string {
	return diffValue(left, right, "", ignore)
}

func diffValue(left, right any, path string, ignore Ignore) []string {
	lk, rk := kindOf(left), kindOf(right)
	switch {
	case lk == kindMapping && rk == kindMapping:
		return diffMappings(left.(map[string]any), right.(map[string]any), path, ignore)
	case lk == kindSequence && rk == kindSequence:
		return diffSequences(left.([]any), right.([]any), path, ignore)
	default:
		return diffScalars(left, right, lk, rk, path)
	}
}

func diffMappings(left, right map[string]any, path string, ignore Ignore) []string {
	var records []string
	for _, key := range unionKeys(left, right) {
		if ignore.Has(key) {
			continue
		}
		keyPath := key
		if path != "" {
			keyPath = path + "." + key
		}
		lv, inLeft := left[key]
		rv, inRight := right[key]
		switch {
		case !inLeft:
			records = append(records, "Missing in Left: "+keyPath)
		case !inRight:
			records = append(records, "Missing in Right: "+keyPath)
		default:
			records = append(records, diffValue(lv, rv, keyPath, ignore)...)
		}
	}
	return records
}

// diffSequences emits a single length record when the sides disagree on
// length and does not descend into elements. Element-wise recursion only
// happens for equal-length sequences.
func diffSequences(left, right []any, path string, ignore Ignore) []string {
	if len(left) != len(right) {
		return []string{fmt.Sprintf("%s: list length mismatch (left=%d, right=%d)", path, len(left), len(right))}
	}
	var records []string
	for i := range left {
		records = append(records, diffValue(left[i], right[i], fmt.Sprintf("%s[%d]", path, i), ignore)...)
	}
	return records
}

// diffScalars covers the remaining cases: at least one side is a scalar, or
// the sides disagree in kind. The numeric branch runs before strict
// equality so numeric subtype never causes a false mismatch.
func diffScalars(left, right any, lk, rk kind, path string) []string {
	if lf, lok := toFloat(left); lok {
		if rf, rok := toFloat(right); rok {
			if lf == rf {
				return nil
			}
			return []string{mismatch(path, left, right)}
		}
	}
	if lk != rk {
		return []string{mismatch(path, left, right)}
	}
	if lk == kindInvalid {
		// Outside the data model: compare rendered forms rather than panic
		// on values Go cannot compare with ==.
		if render(left) == render(right) {
			return nil
		}
		return []string{mismatch(path, left, right)}
	}
	if left == right {
		return nil
	}
	return []string{mismatch(path, left, right)}
}

func mismatch(path string, left, right any) string {
	return fmt.Sprintf("%s: value mismatch (left=%s, right=%s)", path, render(left), render(right))
}

func unionKeys(left, right map[string]any) []string {
	keys := make([]string, 0, len(left)+len(right))
	for k := range left {
		keys = append(keys, k)
	}
	for k := range right {
		if _, ok := left[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
