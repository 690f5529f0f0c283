// internal/rules/parser_test.go
package rules

import (
	"errors"
	"strings"
	"testing"

	"github.com/wpblocks/ruleparser/internal/types"
)

func cartStore() types.Store {
	return types.Store{
		"cart.cartTotal": 75.0,
		"cart.cartItems": []any{1.0, 2.0, 3.0, 4.0, 5.0},
		"customer.id":    1.0,
		"customer.role":  "custom-role",
	}
}

func raw(key, op string, target any) types.Node[types.RawRule] {
	return types.Leaf(types.RawRule{Key: key, Operator: op, Target: target})
}

func TestParse_AllOperatorsImplicitAll(t *testing.T) {
	rules := types.List(
		raw("cart.cartTotal", "less than", 100.0),
		raw("cart.cartTotal", "greater than", 50.0),
		raw("cart.cartItems", "contains", 5.0),
		raw("cart.cartItems", "not contains", 6.0),
		raw("customer.id", "in", []any{1.0, 2.0, 3.0}),
		raw("customer.id", "not in", []any{4.0, 5.0, 6.0}),
		raw("customer.role", "is", "custom-role"),
		raw("customer.role", "not is", "customer"),
	)

	got, err := Parse(rules, cartStore())
	if err != nil {
		t.Fatalf("Parse() error = %v, want nil", err)
	}
	if !got {
		t.Errorf("Parse() = false, want true")
	}
}

func TestParse_AnyGroup(t *testing.T) {
	rules := types.Any(
		raw("cart.cartTotal", "less than", 100.0),
		raw("customer.id", "is", 3.0),
	)

	got, err := Parse(rules, cartStore())
	if err != nil {
		t.Fatalf("Parse() error = %v, want nil", err)
	}
	if !got {
		t.Errorf("Parse() = false, want true (first branch matches)")
	}
}

func TestParse_AllGroupFails(t *testing.T) {
	rules := types.All(
		raw("cart.cartTotal", "less than", 100.0),
		raw("cart.cartTotal", "greater than", 100.0),
	)

	got, err := Parse(rules, cartStore())
	if err != nil {
		t.Fatalf("Parse() error = %v, want nil", err)
	}
	if got {
		t.Errorf("Parse() = true, want false")
	}
}

func TestParse_NumericStringIsTypeError(t *testing.T) {
	rules := types.All(raw("cart.cartTotal", "less than", 75.5))
	store := types.Store{"cart.cartTotal": "75.3"}

	_, err := Parse(rules, store)
	if !errors.Is(err, types.ErrType) {
		t.Fatalf("Parse() error = %v, want ErrType", err)
	}
}

func TestParse_ArrayContainsArray(t *testing.T) {
	rules := types.All(raw("cart.items", "contains", []any{"apple", "orange"}))
	store := types.Store{"cart.items": []any{"banana", "apple", "orange"}}

	got, err := Parse(rules, store)
	if err != nil {
		t.Fatalf("Parse() error = %v, want nil", err)
	}
	if !got {
		t.Errorf("Parse() = false, want true")
	}
}

func TestParse_NestedGroups(t *testing.T) {
	store := types.Store{"a": 10.0, "b": 1.0, "c": 5.0}
	rules := types.All(
		types.Nested(types.Any(
			raw("a", "<", 100.0),
			raw("b", "is", 3.0),
		)),
		raw("c", ">", 1.0),
	)

	got, err := Parse(rules, store)
	if err != nil {
		t.Fatalf("Parse() error = %v, want nil", err)
	}
	if !got {
		t.Errorf("Parse() = false, want true")
	}

	deep := types.Any(
		types.Nested(types.All(
			types.Nested(types.List(raw("a", "is", 11.0))),
			raw("c", "is", 5.0),
		)),
		types.Nested(types.Any(
			types.Nested(types.All[types.RawRule]()),
		)),
	)
	got, err = Parse(deep, store)
	if err != nil {
		t.Fatalf("Parse() error = %v, want nil", err)
	}
	if !got {
		t.Errorf("Parse(deep) = false, want true (empty ALL branch is vacuously true)")
	}
}

func TestParse_EmptyGroups(t *testing.T) {
	tests := []struct {
		name  string
		rules types.Group[types.RawRule]
		want  bool
	}{
		{name: "empty plain list", rules: types.List[types.RawRule](), want: true},
		{name: "empty ALL", rules: types.All[types.RawRule](), want: true},
		{name: "empty ANY", rules: types.Any[types.RawRule](), want: false},
		{name: "zero group", rules: types.Group[types.RawRule]{}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.rules, nil)
			if err != nil {
				t.Fatalf("Parse() error = %v, want nil", err)
			}
			if got != tt.want {
				t.Errorf("Parse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse_MissingKeyResolvesUndefined(t *testing.T) {
	rules := types.List(raw("missing", "is", "x"))

	got, err := Parse(rules, types.Store{})
	if err != nil {
		t.Fatalf("Parse() error = %v, want nil", err)
	}
	if got {
		t.Errorf("Parse() = true, want false for undefined source")
	}

	resolved := ResolveSources(rules, types.Store{})
	if src := resolved.Nodes[0].Rule.Source; src != nil {
		t.Errorf("resolved source = %v, want nil", src)
	}

	_, err = Parse(types.List(raw("missing", "<", 1.0)), nil)
	if !errors.Is(err, types.ErrType) {
		t.Errorf("Parse() error = %v, want ErrType for undefined numeric source", err)
	}
}

func TestParse_UnknownOperator(t *testing.T) {
	_, err := Parse(types.List(raw("k", "nope", 1.0)), types.Store{"k": 1.0})
	if err == nil {
		t.Fatal("Parse() error = nil, want lookup error")
	}
	if !strings.Contains(err.Error(), `No such evaluator with key "nope" exists.`) {
		t.Errorf("Parse() error = %q, want lookup message", err.Error())
	}
	if !errors.Is(err, types.ErrNoSuchEvaluator) {
		t.Errorf("errors.Is(err, ErrNoSuchEvaluator) = false, want true")
	}
}

func TestParse_ErrorsAfterSatisfiedAny(t *testing.T) {
	rules := types.Any(
		raw("a", "is", 1.0),
		raw("a", "nope", 1.0),
	)

	_, err := Parse(rules, types.Store{"a": 1.0})
	if !errors.Is(err, types.ErrNoSuchEvaluator) {
		t.Errorf("Parse() error = %v, want ErrNoSuchEvaluator (leaves evaluate before reduction)", err)
	}
}

func TestParse_FirstErrorWins(t *testing.T) {
	rules := types.List(
		raw("a", "first-unknown", 1.0),
		raw("a", "<", "x"),
	)

	_, err := Parse(rules, types.Store{"a": 1.0})
	var lookupErr *LookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("Parse() error = %v, want *LookupError", err)
	}
	if lookupErr.Name != "first-unknown" {
		t.Errorf("LookupError.Name = %q, want first-unknown", lookupErr.Name)
	}
}

func TestParse_RuntimeExtension(t *testing.T) {
	registry := NewDefaultRegistry()
	rules := types.List(raw("cart.cartTotal", "between", []any{50.0, 100.0}))

	if _, err := registry.Parse(rules, cartStore()); !errors.Is(err, types.ErrNoSuchEvaluator) {
		t.Fatalf("Parse() before register error = %v, want ErrNoSuchEvaluator", err)
	}

	registry.Register("between", func(source, target any, rule types.Rule, _ ...any) (bool, error) {
		bounds, ok := target.([]any)
		if !ok || len(bounds) != 2 {
			return false, &types.TypeError{Message: "between needs [low, high]"}
		}
		low, err := registry.Call("gte", source, bounds[0], rule)
		if err != nil {
			return false, err
		}
		high, err := registry.Call("lte", source, bounds[1], rule)
		if err != nil {
			return false, err
		}
		return low && high, nil
	})

	got, err := registry.Parse(rules, cartStore())
	if err != nil {
		t.Fatalf("Parse() error = %v, want nil", err)
	}
	if !got {
		t.Errorf("Parse() = false, want true for 75 between 50 and 100")
	}
}

func TestParse_PackageRegister(t *testing.T) {
	Register("test: always", func(source, target any, rule types.Rule, _ ...any) (bool, error) {
		return true, nil
	})

	got, err := Parse(types.List(raw("anything", "test: always", 0.0)), nil)
	if err != nil {
		t.Fatalf("Parse() error = %v, want nil", err)
	}
	if !got {
		t.Errorf("Parse() = false, want true")
	}
	if !Has("test: always") {
		t.Errorf("Has() = false after Register")
	}
}

func TestReduce(t *testing.T) {
	yes := types.Leaf(true)
	no := types.Leaf(false)

	tests := []struct {
		name  string
		rules types.Group[bool]
		want  bool
	}{
		{name: "ALL true", rules: types.All(yes, yes), want: true},
		{name: "ALL with false", rules: types.All(yes, no), want: false},
		{name: "ANY with true", rules: types.Any(no, yes), want: true},
		{name: "ANY all false", rules: types.Any(no, no), want: false},
		{name: "plain list as ALL", rules: types.List(yes, no), want: false},
		{name: "nested", rules: types.All(types.Nested(types.Any(no, yes)), yes), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reduce(tt.rules); got != tt.want {
				t.Errorf("Reduce() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateRules_KeepsStructure(t *testing.T) {
	resolved := types.Any(
		types.Leaf(types.Rule{Source: 10.0, Operator: "<", Target: 100.0}),
		types.Nested(types.List(types.Leaf(types.Rule{Source: 1.0, Operator: "is", Target: 3.0}))),
	)

	evaluated, err := NewDefaultRegistry().EvaluateRules(resolved)
	if err != nil {
		t.Fatalf("EvaluateRules() error = %v, want nil", err)
	}
	if !evaluated.Explicit || evaluated.Combinator != types.CombinatorAny {
		t.Errorf("combinator = %v explicit=%v, want ANY explicit", evaluated.Combinator, evaluated.Explicit)
	}
	if len(evaluated.Nodes) != 2 {
		t.Fatalf("len(Nodes) = %d, want 2", len(evaluated.Nodes))
	}
	if !*evaluated.Nodes[0].Rule {
		t.Errorf("first leaf = false, want true")
	}
	nested := evaluated.Nodes[1].Group
	if nested == nil || nested.Explicit || *nested.Nodes[0].Rule {
		t.Errorf("nested plain list not preserved or wrong value: %+v", nested)
	}
}
