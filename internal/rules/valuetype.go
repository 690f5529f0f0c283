// internal/rules/valuetype.go
package rules

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"
)

/*
 * Operand type guards and equality semantics.
 *
 * Operators validate operand shapes before comparing. Kinds follow the
 * loosely typed rule grammar rather than Go types: every integer and float
 * kind is a number, any slice is an array, nil is undefined.
 *
 * Equality modes:
 *   - looseEqual: used by `is` on scalars. Numbers and numeric strings compare
 *     numerically, booleans compare as 0/1, undefined equals only undefined.
 *   - strictEqual: used for array membership. Same kind and same value; NaN
 *     matches NaN so membership tests are reflexive.
 *
 * No coercion happens for ordering operators: `less than` and friends reject
 * numeric-looking strings instead of parsing them.
 */

// ValueKind classifies an operand the way operator guards see it.
type ValueKind int

const (
	KindUndefined ValueKind = iota
	KindString
	KindNumber
	KindBoolean
	KindObject
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindObject:
		return "object"
	default:
		return "undefined"
	}
}

// KindOf returns the kind of a single operand. Arrays and maps are objects.
func KindOf(v any) ValueKind {
	switch v.(type) {
	case nil:
		return KindUndefined
	case string:
		return KindString
	case bool:
		return KindBoolean
	}
	if _, ok := toFloat64(v); ok {
		return KindNumber
	}
	return KindObject
}

// ValueType returns the element kind for arrays (kind of the first element,
// undefined when empty) and the operand kind otherwise.
func ValueType(v any) ValueKind {
	if arr, ok := asArray(v); ok {
		if len(arr) == 0 {
			return KindUndefined
		}
		return KindOf(arr[0])
	}
	return KindOf(v)
}

// IsPrimitive reports whether v is a string, number or bool.
func IsPrimitive(v any) bool {
	switch KindOf(v) {
	case KindString, KindNumber, KindBoolean:
		return true
	default:
		return false
	}
}

// IsOperand reports whether v is a primitive or an array of primitives.
func IsOperand(v any) bool {
	if arr, ok := asArray(v); ok {
		for _, elem := range arr {
			if !IsPrimitive(elem) {
				return false
			}
		}
		return true
	}
	return IsPrimitive(v)
}

// isArray reports whether v is a slice or array (strings are not arrays).
func isArray(v any) bool {
	_, ok := asArray(v)
	return ok
}

// asArray normalises any slice or array to []any.
// []any is returned as-is; typed slices ([]string, []int, ...) are copied.
func asArray(v any) ([]any, bool) {
	if arr, ok := v.([]any); ok {
		return arr, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// toFloat64 converts value to float64 if it's a numeric type.
// Handles every integer and float kind so Go callers need not pre-convert.
func toFloat64(v any) (float64, bool) {
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
	default:
		return 0, false
	}
}

// stringToNumber converts a string the way loose equality does.
// Whitespace is trimmed; the empty string is 0; unparsable input is NaN.
func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.Contains(s, "_") {
		return math.NaN()
	}
	if len(lower) > 2 && lower[0] == '0' {
		base := 0
		switch lower[1] {
		case 'x':
			base = 16
		case 'o':
			base = 8
		case 'b':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(lower[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	if strings.Contains(lower, "0x") || strings.Contains(lower, "p") {
		// Signed or fractional hex literals are not numbers here.
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

// looseEqual compares two scalars with numeric coercion between numbers,
// numeric strings and booleans.
func looseEqual(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)

	if ka == KindUndefined || kb == KindUndefined {
		return ka == kb
	}
	if ka == kb {
		switch ka {
		case KindNumber:
			na, _ := toFloat64(a)
			nb, _ := toFloat64(b)
			return na == nb
		case KindString, KindBoolean:
			return a == b
		default:
			return reflect.DeepEqual(a, b)
		}
	}
	if ka == KindBoolean {
		return looseEqual(boolToNumber(a.(bool)), b)
	}
	if kb == KindBoolean {
		return looseEqual(a, boolToNumber(b.(bool)))
	}
	if ka == KindNumber && kb == KindString {
		na, _ := toFloat64(a)
		return na == stringToNumber(b.(string))
	}
	if ka == KindString && kb == KindNumber {
		nb, _ := toFloat64(b)
		return stringToNumber(a.(string)) == nb
	}
	return false
}

// strictEqual compares without coercion. NaN equals NaN.
func strictEqual(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case KindUndefined:
		return true
	case KindNumber:
		na, _ := toFloat64(a)
		nb, _ := toFloat64(b)
		return na == nb || (math.IsNaN(na) && math.IsNaN(nb))
	case KindString, KindBoolean:
		return a == b
	default:
		return reflect.DeepEqual(a, b)
	}
}

func boolToNumber(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// includes reports whether arr holds an element strictly equal to v.
func includes(arr []any, v any) bool {
	for _, elem := range arr {
		if strictEqual(elem, v) {
			return true
		}
	}
	return false
}

// everyIncluded reports whether every element of subset is in set.
// Empty subsets are vacuously included.
func everyIncluded(subset, set []any) bool {
	for _, elem := range subset {
		if !includes(set, elem) {
			return false
		}
	}
	return true
}
