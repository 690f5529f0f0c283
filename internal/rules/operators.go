// internal/rules/operators.go
package rules

import (
	"fmt"
	"strings"

	"github.com/wpblocks/ruleparser/internal/types"
)

/*
 * Operator evaluators.
 *
 * Every evaluator validates operand shapes up front and returns a
 * *types.TypeError on mismatch instead of coercing. Messages embed the rule
 * rendered from the operands the evaluator received, so swap-based
 * operators (contains, greater than, gte) print source and target reversed.
 *
 * Families:
 *   - is: array subset or loose scalar equality
 *   - in: membership, array subset, or substring for two strings
 *   - less than: numeric ordering; strict by default, <= when extra[0] is false
 *
 * Everything else (negations, contains, greater than, lte, gte) is built by
 * calling these three with negated results or swapped operands.
 */

// Canonical operator names registered by NewDefaultRegistry.
const (
	OpIs          = "is"
	OpNotIs       = "not is"
	OpIn          = "in"
	OpNotIn       = "not in"
	OpContains    = "contains"
	OpNotContains = "not contains"
	OpLessThan    = "less than"
	OpGreaterThan = "greater than"
	OpLte         = "lte"
	OpGte         = "gte"
)

// defaultAliases maps each shorthand to its canonical operator.
var defaultAliases = [][2]string{
	{"=", OpIs},
	{"!=", OpNotIs},
	{"!in", OpNotIn},
	{"!contains", OpNotContains},
	{"<", OpLessThan},
	{">", OpGreaterThan},
	{"<=", OpLte},
	{">=", OpGte},
}

// registerDefaults installs the built-in operators and aliases.
func registerDefaults(r *Registry) {
	r.Register(OpIs, Is)
	r.Register(OpNotIs, Not(Is))
	r.Register(OpIn, In)
	r.Register(OpNotIn, Not(In))
	r.Register(OpContains, Contains)
	r.Register(OpNotContains, Not(Contains))
	r.Register(OpLessThan, LessThan)
	r.Register(OpGreaterThan, GreaterThan)
	r.Register(OpLte, Lte)
	r.Register(OpGte, Gte)

	for _, a := range defaultAliases {
		r.Alias(a[0], a[1])
	}
}

// Is checks equality. Both operands must be arrays or both scalars.
// Arrays: every source element is in target (extra target elements are ignored).
// Scalars: loose equality.
func Is(source, target any, rule types.Rule, _ ...any) (bool, error) {
	sourceArr, sourceIsArr := asArray(source)
	targetArr, targetIsArr := asArray(target)

	if sourceIsArr != targetIsArr {
		return false, typeError(source, target, rule,
			"Source and target must both be arrays or both be non-array values")
	}
	if sourceIsArr {
		return everyIncluded(sourceArr, targetArr), nil
	}
	return looseEqual(source, target), nil
}

// In checks that source is in target.
// Target must be an array unless both operands are strings, which selects
// substring containment. Array sources require every element in target.
func In(source, target any, rule types.Rule, _ ...any) (bool, error) {
	if ValueType(source) != ValueType(target) {
		return false, typeError(source, target, rule,
			"Source and target must be of the same type")
	}

	targetArr, targetIsArr := asArray(target)
	if !targetIsArr {
		s, sok := source.(string)
		t, tok := target.(string)
		if sok && tok {
			return strings.Contains(t, s), nil
		}
		return false, typeError(source, target, rule,
			"Target must be an array")
	}

	if sourceArr, ok := asArray(source); ok {
		return everyIncluded(sourceArr, targetArr), nil
	}
	return includes(targetArr, source), nil
}

// Contains checks that source contains target: In with operands swapped.
func Contains(source, target any, rule types.Rule, extra ...any) (bool, error) {
	return In(target, source, rule, extra...)
}

// LessThan compares numbers. extra[0] == false selects <= instead of <.
func LessThan(source, target any, rule types.Rule, extra ...any) (bool, error) {
	strict := true
	if len(extra) > 0 {
		if b, ok := extra[0].(bool); ok {
			strict = b
		}
	}

	s, sok := numberOperand(source)
	t, tok := numberOperand(target)
	if !sok || !tok {
		return false, typeError(source, target, rule,
			"Source and target must be numbers")
	}
	if strict {
		return s < t, nil
	}
	return s <= t, nil
}

// GreaterThan is LessThan with operands swapped.
func GreaterThan(source, target any, rule types.Rule, _ ...any) (bool, error) {
	return LessThan(target, source, rule, true)
}

// Lte is non-strict LessThan.
func Lte(source, target any, rule types.Rule, _ ...any) (bool, error) {
	return LessThan(source, target, rule, false)
}

// Gte is non-strict LessThan with operands swapped.
func Gte(source, target any, rule types.Rule, _ ...any) (bool, error) {
	return LessThan(target, source, rule, false)
}

// Not negates an evaluator. Errors pass through unchanged.
func Not(fn Evaluator) Evaluator {
	return func(source, target any, rule types.Rule, extra ...any) (bool, error) {
		ok, err := fn(source, target, rule, extra...)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}
}

// numberOperand accepts numeric kinds only; arrays and strings are rejected.
func numberOperand(v any) (float64, bool) {
	if KindOf(v) != KindNumber {
		return 0, false
	}
	return toFloat64(v)
}

// typeError builds the error an evaluator returns for a contract violation.
// The rule is rendered from the operands as received.
func typeError(source, target any, rule types.Rule, reason string) error {
	rendered := FormatRule(types.Rule{Source: source, Operator: rule.Operator, Target: target})
	return &types.TypeError{Message: fmt.Sprintf("%s in rule %s", reason, rendered)}
}
