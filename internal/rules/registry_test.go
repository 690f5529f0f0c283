// internal/rules/registry_test.go
package rules

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/wpblocks/ruleparser/internal/types"
)

func constant(v bool) Evaluator {
	return func(source, target any, rule types.Rule, _ ...any) (bool, error) {
		return v, nil
	}
}

func TestRegistry_DefaultOperators(t *testing.T) {
	registry := NewDefaultRegistry()

	want := []string{"is", "not is", "in", "not in", "contains", "not contains", "less than", "greater than", "lte", "gte"}
	got := registry.Operators()
	if len(got) != len(want) {
		t.Fatalf("Operators() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Operators()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	aliases := map[string]string{
		"=": "is", "!=": "not is", "!in": "not in", "!contains": "not contains",
		"<": "less than", ">": "greater than", "<=": "lte", ">=": "gte",
	}
	gotAliases := registry.Aliases()
	if len(gotAliases) != len(aliases) {
		t.Errorf("Aliases() = %v, want %v", gotAliases, aliases)
	}
	for alias, canonical := range aliases {
		if gotAliases[alias] != canonical {
			t.Errorf("alias %q -> %q, want %q", alias, gotAliases[alias], canonical)
		}
		if registry.Has(alias) {
			t.Errorf("Has(%q) = true, want false (aliases are not direct registrations)", alias)
		}
	}
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	registry := NewRegistry()
	registry.Register("op", constant(false))
	registry.Register("op", constant(true))

	got, err := registry.Call("op", nil, nil, types.Rule{})
	if err != nil {
		t.Fatalf("Call() error = %v, want nil", err)
	}
	if !got {
		t.Errorf("Call() = false, want true from the latest registration")
	}
	if ops := registry.Operators(); len(ops) != 1 {
		t.Errorf("Operators() = %v, want a single entry", ops)
	}
}

func TestRegistry_AliasResolvesAtCallTime(t *testing.T) {
	registry := NewRegistry()
	registry.Register("canonical", constant(false))
	registry.Alias("short", "canonical")

	got, _ := registry.Call("short", nil, nil, types.Rule{})
	if got {
		t.Fatalf("Call(alias) = true, want false")
	}

	registry.Register("canonical", constant(true))
	got, err := registry.Call("short", nil, nil, types.Rule{})
	if err != nil {
		t.Fatalf("Call(alias) error = %v, want nil", err)
	}
	if !got {
		t.Errorf("Call(alias) = false after re-registering canonical, want true")
	}
}

func TestRegistry_DirectHitBeforeAlias(t *testing.T) {
	registry := NewRegistry()
	registry.Register("canonical", constant(false))
	registry.Register("name", constant(true))
	registry.Alias("name", "canonical")

	got, _ := registry.Call("name", nil, nil, types.Rule{})
	if !got {
		t.Errorf("Call() = false, want direct registration to win over alias")
	}
}

func TestRegistry_CallUnknown(t *testing.T) {
	registry := NewRegistry()
	registry.Alias("dangling", "missing")

	tests := []struct {
		name    string
		op      string
		wantMsg string
	}{
		{name: "no registration", op: "nope", wantMsg: `No such evaluator with key "nope" exists.`},
		{name: "alias to missing canonical", op: "dangling", wantMsg: `No such evaluator with key "dangling" exists.`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.Call(tt.op, nil, nil, types.Rule{})
			if err == nil {
				t.Fatal("Call() error = nil, want lookup error")
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Call() error = %q, want %q", err.Error(), tt.wantMsg)
			}
			if !errors.Is(err, types.ErrNoSuchEvaluator) {
				t.Errorf("errors.Is(err, ErrNoSuchEvaluator) = false")
			}
		})
	}
}

func TestRegistry_PassesExtraArguments(t *testing.T) {
	registry := NewRegistry()
	var seen []any
	registry.Register("spy", func(source, target any, rule types.Rule, extra ...any) (bool, error) {
		seen = extra
		return true, nil
	})
	registry.Alias("s", "spy")

	if _, err := registry.Call("s", 1, 2, types.Rule{}, "x", 3); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if len(seen) != 2 || seen[0] != "x" || seen[1] != 3 {
		t.Errorf("extra = %v, want [x 3]", seen)
	}
}

func TestRegistry_AliasesOf(t *testing.T) {
	registry := NewDefaultRegistry()
	registry.Alias("equals", "is")

	got := registry.AliasesOf("is")
	want := []string{"=", "equals"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("AliasesOf(is) = %v, want %v", got, want)
	}
	if got := registry.AliasesOf("in"); len(got) != 0 {
		t.Errorf("AliasesOf(in) = %v, want none", got)
	}
}

func TestRegistry_ConcurrentRegisterAndCall(t *testing.T) {
	registry := NewDefaultRegistry()
	rule := types.Rule{Source: 1.0, Operator: "is", Target: 1.0}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			registry.Register(fmt.Sprintf("op-%d", i), constant(true))
			registry.Alias(fmt.Sprintf("alias-%d", i), "is")
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if ok, err := registry.Call("=", 1.0, 1.0, rule); err != nil || !ok {
					t.Errorf("Call() = %v, %v during concurrent registration", ok, err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if n := len(registry.Operators()); n != 18 {
		t.Errorf("len(Operators()) = %d, want 18", n)
	}
}
