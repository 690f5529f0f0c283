package rules

import (
	"github.com/wpblocks/ruleparser/internal/types"
)

// Engine bundles a registry with decoding for callers that work with
// generic or serialised input (CLI, gRPC service).
type Engine struct {
	registry *Registry
}

// OperatorInfo describes one registered operator and its aliases.
type OperatorInfo struct {
	Name    string
	Aliases []string
}

// NewEngine creates an engine over registry. A nil registry selects Default.
func NewEngine(registry *Registry) *Engine {
	if registry == nil {
		registry = Default
	}
	return &Engine{registry: registry}
}

// Registry returns the engine's operator registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Evaluate parses an already decoded tree.
func (e *Engine) Evaluate(rules types.Group[types.RawRule], store types.Store) (bool, error) {
	return e.registry.Parse(rules, store)
}

// EvaluateValues decodes generic rule and store values, then evaluates.
func (e *Engine) EvaluateValues(rules any, store any) (bool, error) {
	tree, err := DecodeRulesValue(rules)
	if err != nil {
		return false, err
	}
	s, err := DecodeStoreValue(store)
	if err != nil {
		return false, err
	}
	return e.registry.Parse(tree, s)
}

// EvaluateJSON decodes JSON rules and store, then evaluates.
func (e *Engine) EvaluateJSON(rules, store []byte) (bool, error) {
	tree, err := DecodeRules(rules)
	if err != nil {
		return false, err
	}
	s, err := DecodeStore(store)
	if err != nil {
		return false, err
	}
	return e.registry.Parse(tree, s)
}

// Validate checks a tree against the engine's registry.
func (e *Engine) Validate(rules types.Group[types.RawRule]) error {
	return e.registry.Validate(rules)
}

// Operators lists registered operators with their aliases.
func (e *Engine) Operators() []OperatorInfo {
	names := e.registry.Operators()
	out := make([]OperatorInfo, 0, len(names))
	for _, name := range names {
		out = append(out, OperatorInfo{Name: name, Aliases: e.registry.AliasesOf(name)})
	}
	return out
}
