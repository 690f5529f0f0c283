// internal/rules/compile.go
package rules

import (
	"fmt"

	"github.com/wpblocks/ruleparser/internal/types"
)

/*
 * Authoring-time validation.
 *
 * Validate moves error detection from evaluation time to the moment a rule
 * tree is stored or submitted:
 *   1. Nesting depth within MaxRuleDepth
 *   2. Leaf count within MaxRuleCount
 *   3. Explicit groups use ALL or ANY
 *   4. Every operator is non-empty and resolvable (direct or alias)
 *
 * Parse never calls Validate. An unknown operator in an unvalidated tree
 * still fails at evaluation with the registry's lookup error.
 */

// Validate checks a tree against this registry's operators and the resource limits.
func (r *Registry) Validate(rules types.Group[types.RawRule]) error {
	leaves := 0
	return r.validateGroup(rules, "$", 1, &leaves)
}

func (r *Registry) validateGroup(g types.Group[types.RawRule], path string, depth int, leaves *int) error {
	if depth > types.MaxRuleDepth {
		return fmt.Errorf("%s: %w", path, types.ErrRuleTooDeep)
	}
	if g.Explicit && g.Combinator != types.CombinatorAll && g.Combinator != types.CombinatorAny {
		return fmt.Errorf("%w: %s: unknown combinator %q", types.ErrMalformedRules, path, g.Combinator)
	}

	for i, node := range g.Nodes {
		nodePath := fmt.Sprintf("%s[%d]", path, i)
		switch {
		case node.Group != nil:
			if err := r.validateGroup(*node.Group, nodePath, depth+1, leaves); err != nil {
				return err
			}
		case node.Rule != nil:
			*leaves++
			if *leaves > types.MaxRuleCount {
				return fmt.Errorf("%s: %w", nodePath, types.ErrTooManyRules)
			}
			if node.Rule.Operator == "" {
				return fmt.Errorf("%s: %w", nodePath, types.ErrEmptyOperator)
			}
			if _, err := r.Lookup(node.Rule.Operator); err != nil {
				return fmt.Errorf("%s: %w", nodePath, err)
			}
		default:
			return fmt.Errorf("%w: %s: empty node", types.ErrMalformedRules, nodePath)
		}
	}
	return nil
}
