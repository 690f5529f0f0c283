// internal/rules/parser.go
package rules

import (
	"github.com/wpblocks/ruleparser/internal/types"
)

/*
 * Rule tree parsing.
 *
 * Parse runs three sequential passes over a possibly nested rule tree:
 *   1. ResolveSources: replace each leaf's store key with store[key]
 *      (nil when absent, never an error)
 *   2. EvaluateRules: replace each resolved leaf with the boolean returned by
 *      the registry for its operator
 *   3. Reduce: fold groups with ALL (every) or ANY (some); plain lists fold
 *      as ALL, including at the top level
 *
 * Every leaf is evaluated before reduction, so an ANY group that is already
 * satisfied still reports an error from a later leaf. The first error in
 * left-to-right order stops evaluation and is returned unchanged.
 *
 * Operators are resolved by name during pass 2, so operators registered after
 * a tree was authored are usable without rebuilding anything.
 */

// Parse evaluates rules against store using the Default registry.
func Parse(rules types.Group[types.RawRule], store types.Store) (bool, error) {
	return Default.Parse(rules, store)
}

// Parse evaluates rules against store using this registry's operators.
func (r *Registry) Parse(rules types.Group[types.RawRule], store types.Store) (bool, error) {
	resolved := ResolveSources(rules, store)
	evaluated, err := r.EvaluateRules(resolved)
	if err != nil {
		return false, err
	}
	return Reduce(evaluated), nil
}

// ResolveSources replaces every leaf's key with the value it maps to in store.
func ResolveSources(rules types.Group[types.RawRule], store types.Store) types.Group[types.Rule] {
	resolved, _ := mapGroup(rules, func(raw types.RawRule) (types.Rule, error) {
		return types.Rule{
			Source:   store.Lookup(raw.Key),
			Operator: raw.Operator,
			Target:   raw.Target,
		}, nil
	})
	return resolved
}

// EvaluateRules replaces every resolved leaf with its operator's result.
func (r *Registry) EvaluateRules(rules types.Group[types.Rule]) (types.Group[bool], error) {
	return mapGroup(rules, func(rule types.Rule) (bool, error) {
		return r.Call(rule.Operator, rule.Source, rule.Target, rule)
	})
}

// Reduce folds a boolean tree into a single result.
// Empty ALL groups are true; empty ANY groups are false.
func Reduce(rules types.Group[bool]) bool {
	anyOf := rules.EffectiveCombinator() == types.CombinatorAny
	for _, node := range rules.Nodes {
		v := reduceNode(node)
		if anyOf && v {
			return true
		}
		if !anyOf && !v {
			return false
		}
	}
	return !anyOf
}

func reduceNode(node types.Node[bool]) bool {
	if node.Group != nil {
		return Reduce(*node.Group)
	}
	if node.Rule != nil {
		return *node.Rule
	}
	return false
}

// mapGroup rebuilds a group with every leaf transformed by fn, keeping the
// combinator structure. Stops at the first error.
func mapGroup[A, B any](g types.Group[A], fn func(A) (B, error)) (types.Group[B], error) {
	out := types.Group[B]{
		Combinator: g.Combinator,
		Explicit:   g.Explicit,
		Nodes:      make([]types.Node[B], 0, len(g.Nodes)),
	}
	for _, node := range g.Nodes {
		switch {
		case node.Group != nil:
			child, err := mapGroup(*node.Group, fn)
			if err != nil {
				return types.Group[B]{}, err
			}
			out.Nodes = append(out.Nodes, types.Nested(child))
		case node.Rule != nil:
			v, err := fn(*node.Rule)
			if err != nil {
				return types.Group[B]{}, err
			}
			out.Nodes = append(out.Nodes, types.Leaf(v))
		}
	}
	return out, nil
}
