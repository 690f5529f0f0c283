// internal/rules/registry.go
package rules

import (
	"fmt"
	"sort"
	"sync"

	"github.com/wpblocks/ruleparser/internal/types"
)

// Evaluator compares a resolved source against a target.
// rule is the leaf being evaluated; extra carries operator-specific arguments.
type Evaluator func(source, target any, rule types.Rule, extra ...any) (bool, error)

// LookupError is returned when an operator has no registration and no alias.
type LookupError struct {
	Name string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("No such evaluator with key %q exists.", e.Name)
}

func (e *LookupError) Unwrap() error {
	return types.ErrNoSuchEvaluator
}

// Registry maps operator names to evaluators.
// Aliases store the canonical name, not the function, so re-registering a
// canonical operator is picked up by its aliases on the next call.
type Registry struct {
	mu         sync.RWMutex
	evaluators map[string]Evaluator
	order      []string
	aliases    map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		evaluators: make(map[string]Evaluator),
		aliases:    make(map[string]string),
	}
}

// NewDefaultRegistry creates a registry holding the built-in operators.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	registerDefaults(r)
	return r
}

// Register stores fn under name, replacing any existing registration.
func (r *Registry) Register(name string, fn Evaluator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.evaluators[name]; !ok {
		r.order = append(r.order, name)
	}
	r.evaluators[name] = fn
}

// Alias makes alias resolve to whatever is registered under canonical at call time.
func (r *Registry) Alias(alias, canonical string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[alias] = canonical
}

// Has reports whether name has a direct registration. Aliases are not consulted.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.evaluators[name]
	return ok
}

// Operators returns directly registered names in registration order.
func (r *Registry) Operators() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Aliases returns a copy of the alias table (alias -> canonical).
func (r *Registry) Aliases() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.aliases))
	for k, v := range r.aliases {
		out[k] = v
	}
	return out
}

// AliasesOf returns the sorted aliases pointing at canonical.
func (r *Registry) AliasesOf(canonical string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for alias, target := range r.aliases {
		if target == canonical {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}

// Lookup resolves name to an evaluator: direct registration first, then alias.
func (r *Registry) Lookup(name string) (Evaluator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if fn, ok := r.evaluators[name]; ok {
		return fn, nil
	}
	if canonical, ok := r.aliases[name]; ok {
		if fn, ok := r.evaluators[canonical]; ok {
			return fn, nil
		}
	}
	return nil, &LookupError{Name: name}
}

// Call resolves name and invokes the evaluator.
// The lock is released before the evaluator runs so evaluators may use the registry.
func (r *Registry) Call(name string, source, target any, rule types.Rule, extra ...any) (bool, error) {
	fn, err := r.Lookup(name)
	if err != nil {
		return false, err
	}
	return fn(source, target, rule, extra...)
}

// Default is the process-wide registry used by the package-level functions.
var Default = NewDefaultRegistry()

// Register stores fn under name in the Default registry.
func Register(name string, fn Evaluator) { Default.Register(name, fn) }

// Alias adds an alias to the Default registry.
func Alias(alias, canonical string) { Default.Alias(alias, canonical) }

// Has reports whether the Default registry has a direct registration for name.
func Has(name string) bool { return Default.Has(name) }

// Operators lists the Default registry's directly registered operators.
func Operators() []string { return Default.Operators() }

// Call invokes an operator from the Default registry.
func Call(name string, source, target any, rule types.Rule, extra ...any) (bool, error) {
	return Default.Call(name, source, target, rule, extra...)
}
