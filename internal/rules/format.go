// internal/rules/format.go
package rules

import (
	"math"
	"strconv"
	"strings"

	"github.com/wpblocks/ruleparser/internal/types"
)

// FormatRule renders a rule for error messages: [ <source> <operator> <target> ].
func FormatRule(rule types.Rule) string {
	return "[ " + FormatValue(rule.Source) + " " + rule.Operator + " " + FormatValue(rule.Target) + " ]"
}

// FormatValue renders an operand. Arrays print as [ a, b, c ] and nil as undefined.
func FormatValue(v any) string {
	if arr, ok := asArray(v); ok {
		parts := make([]string, len(arr))
		for i, elem := range arr {
			parts[i] = FormatValue(elem)
		}
		return "[ " + strings.Join(parts, ", ") + " ]"
	}
	switch x := v.(type) {
	case nil:
		return "undefined"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	}
	if f, ok := toFloat64(v); ok {
		return formatNumber(f)
	}
	return "[object Object]"
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	case math.Abs(f) >= 1e21 || math.Abs(f) < 1e-6:
		return strconv.FormatFloat(f, 'g', -1, 64)
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}
