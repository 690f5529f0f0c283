// Package types provides domain models shared across ruleparser components.
//
// Zero-dependency design: types.go, rules.go and errors.go use only the
// standard library so the rule engine can be embedded without pulling in
// storage or transport code. ID utilities in ids.go import uuid but are only
// needed by rule set persistence.
package types

// Value is a primitive rule operand: string, number or bool.
// Numbers may be any Go integer or float kind; JSON input decodes to float64.
// nil stands for the undefined value a missing store key resolves to.
type Value = any

// Store is the flat runtime data that rule source keys are resolved against.
// Keys are opaque: "cart.cartTotal" is a single key, not a path.
// Values are a Value or a []any of values.
type Store map[string]any

// Lookup returns the value stored under key, or nil when the key is absent.
func (s Store) Lookup(key string) any {
	if s == nil {
		return nil
	}
	return s[key]
}

// Resource limits enforced when rule trees are decoded or validated.
const (
	// MaxRuleDepth bounds group nesting so recursive passes cannot exhaust the stack.
	// 32 levels is far beyond hand-authored conditional logic.
	MaxRuleDepth = 32

	// MaxRuleCount bounds the number of leaf rules in one tree.
	MaxRuleCount = 1024

	// MaxRuleSetNameLength limits persisted rule set names.
	MaxRuleSetNameLength = 128
)
