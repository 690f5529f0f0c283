// internal/rules/decode.go
package rules

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/wpblocks/ruleparser/internal/types"
	"gopkg.in/yaml.v3"
)

/*
 * Rule grammar decoding.
 *
 * Translates the positional, JSON-serialisable grammar into typed trees:
 *
 *   Rules   := [ RawRule | Rules, ... ] | [ "ALL"|"ANY", [ RawRule | Rules, ... ] ]
 *   RawRule := [ string, string, Value | Value[] ]
 *
 * Recognition order for each array element:
 *   1. first element literally "ALL" or "ANY": combinator pair; anything
 *      other than [combinator, array] is malformed
 *   2. three elements shaped string, string, operand: leaf rule
 *   3. any other array: nested plain list
 *
 * A leaf whose store key is "ALL" or "ANY" is therefore read as a
 * combinator pair and rejected. Depth and leaf limits are enforced while
 * decoding so oversized input never reaches the evaluation passes.
 */

// DecodeRules parses the JSON rule grammar.
func DecodeRules(data []byte) (types.Group[types.RawRule], error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return types.Group[types.RawRule]{}, fmt.Errorf("%w: %v", types.ErrMalformedRules, err)
	}
	return DecodeRulesValue(v)
}

// DecodeRulesYAML parses the same grammar written as YAML sequences.
func DecodeRulesYAML(data []byte) (types.Group[types.RawRule], error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return types.Group[types.RawRule]{}, fmt.Errorf("%w: %v", types.ErrMalformedRules, err)
	}
	return DecodeRulesValue(v)
}

// DecodeRulesValue builds a tree from generic decoded values ([]any, string, float64, bool).
func DecodeRulesValue(v any) (types.Group[types.RawRule], error) {
	d := &decoder{}
	arr, ok := asArray(v)
	if !ok {
		return types.Group[types.RawRule]{}, fmt.Errorf("%w: top level must be an array", types.ErrMalformedRules)
	}
	return d.group(arr, "$", 1)
}

// decoder tracks the leaf count across one tree.
type decoder struct {
	leaves int
}

func (d *decoder) group(arr []any, path string, depth int) (types.Group[types.RawRule], error) {
	if depth > types.MaxRuleDepth {
		return types.Group[types.RawRule]{}, fmt.Errorf("%s: %w", path, types.ErrRuleTooDeep)
	}

	if len(arr) > 0 && types.IsCombinator(arr[0]) {
		if len(arr) != 2 {
			return types.Group[types.RawRule]{}, fmt.Errorf("%w: %s: combinator group must have exactly 2 elements, got %d",
				types.ErrMalformedRules, path, len(arr))
		}
		children, ok := asArray(arr[1])
		if !ok {
			return types.Group[types.RawRule]{}, fmt.Errorf("%w: %s: combinator %v must be followed by an array",
				types.ErrMalformedRules, path, arr[0])
		}
		nodes, err := d.nodes(children, path+"[1]", depth)
		if err != nil {
			return types.Group[types.RawRule]{}, err
		}
		return types.Group[types.RawRule]{
			Combinator: types.Combinator(arr[0].(string)),
			Explicit:   true,
			Nodes:      nodes,
		}, nil
	}

	nodes, err := d.nodes(arr, path, depth)
	if err != nil {
		return types.Group[types.RawRule]{}, err
	}
	return types.Group[types.RawRule]{Combinator: types.CombinatorAll, Nodes: nodes}, nil
}

func (d *decoder) nodes(items []any, path string, depth int) ([]types.Node[types.RawRule], error) {
	nodes := make([]types.Node[types.RawRule], 0, len(items))
	for i, item := range items {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		arr, ok := asArray(item)
		if !ok {
			return nil, fmt.Errorf("%w: %s: expected a rule or a list of rules, got %s",
				types.ErrMalformedRules, itemPath, KindOf(item))
		}

		if len(arr) == 0 || !types.IsCombinator(arr[0]) {
			if raw, ok := rawRuleOf(arr); ok {
				d.leaves++
				if d.leaves > types.MaxRuleCount {
					return nil, fmt.Errorf("%s: %w", itemPath, types.ErrTooManyRules)
				}
				nodes = append(nodes, types.Leaf(raw))
				continue
			}
		}

		child, err := d.group(arr, itemPath, depth+1)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, types.Nested(child))
	}
	return nodes, nil
}

// rawRuleOf recognises [string, string, operand].
func rawRuleOf(arr []any) (types.RawRule, bool) {
	if len(arr) != 3 {
		return types.RawRule{}, false
	}
	key, ok := arr[0].(string)
	if !ok {
		return types.RawRule{}, false
	}
	op, ok := arr[1].(string)
	if !ok {
		return types.RawRule{}, false
	}
	if !IsOperand(arr[2]) {
		return types.RawRule{}, false
	}
	return types.RawRule{Key: key, Operator: op, Target: arr[2]}, true
}

// DecodeStore parses a flat JSON object into a Store.
func DecodeStore(data []byte) (types.Store, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedStore, err)
	}
	return DecodeStoreValue(v)
}

// DecodeStoreYAML parses a flat YAML mapping into a Store.
func DecodeStoreYAML(data []byte) (types.Store, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedStore, err)
	}
	return DecodeStoreValue(v)
}

// DecodeStoreValue validates a decoded object. Values must be operands or null;
// nested objects are rejected because keys are never traversed.
func DecodeStoreValue(v any) (types.Store, error) {
	if v == nil {
		return types.Store{}, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: store must be an object, got %s", types.ErrMalformedStore, KindOf(v))
	}
	store := make(types.Store, len(m))
	for key, value := range m {
		if value != nil && !IsOperand(value) {
			return nil, fmt.Errorf("%w: key %q: value must be a string, number, boolean or array of those",
				types.ErrMalformedStore, key)
		}
		store[key] = value
	}
	return store, nil
}

// EncodeRules renders a tree back into the positional grammar.
// Operators such as "<" are written unescaped.
func EncodeRules(rules types.Group[types.RawRule]) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(EncodeRulesValue(rules)); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// EncodeRulesValue renders a tree as generic values.
func EncodeRulesValue(rules types.Group[types.RawRule]) []any {
	children := make([]any, 0, len(rules.Nodes))
	for _, node := range rules.Nodes {
		switch {
		case node.Group != nil:
			children = append(children, EncodeRulesValue(*node.Group))
		case node.Rule != nil:
			children = append(children, []any{node.Rule.Key, node.Rule.Operator, node.Rule.Target})
		}
	}
	if rules.Explicit {
		return []any{string(rules.Combinator), children}
	}
	return children
}
