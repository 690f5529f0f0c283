// internal/rules/property_test.go
package rules

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/wpblocks/ruleparser/internal/types"
)

// Property-based test: aliases behave exactly like their canonical operator
func TestRegistry_PropertyAliasEquivalence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	registry := NewDefaultRegistry()

	properties.Property("numeric aliases match canonical operators", prop.ForAll(
		func(s, t float64) bool {
			for _, pair := range defaultAliases {
				rule := types.Rule{Source: s, Operator: pair[0], Target: t}
				a, errA := registry.Call(pair[0], s, t, rule)
				c, errC := registry.Call(pair[1], s, t, rule)
				if (errA == nil) != (errC == nil) || a != c {
					return false
				}
			}
			return true
		},
		gen.Float64Range(-1000, 1000),
		gen.Float64Range(-1000, 1000),
	))

	properties.Property("membership aliases match canonical operators", prop.ForAll(
		func(s int, set []int) bool {
			source := float64(s)
			target := make([]any, len(set))
			for i, v := range set {
				target[i] = float64(v)
			}
			for _, pair := range [][2]string{{"!in", "not in"}, {"=", "is"}, {"!=", "not is"}} {
				rule := types.Rule{Source: source, Operator: pair[0], Target: target}
				a, errA := registry.Call(pair[0], source, target, rule)
				c, errC := registry.Call(pair[1], source, target, rule)
				if (errA == nil) != (errC == nil) || a != c {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 10),
		gen.SliceOfN(5, gen.IntRange(0, 10)),
	))

	properties.TestingRun(t)
}

// Property-based test: negated operators are the exact complement
func TestRegistry_PropertyNegationConsistency(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	registry := NewDefaultRegistry()
	pairs := [][2]string{{"is", "not is"}, {"in", "not in"}, {"contains", "not contains"}}

	properties.Property("not X == !X for string operands", prop.ForAll(
		func(s, t string) bool {
			for _, pair := range pairs {
				rule := types.Rule{Source: s, Operator: pair[0], Target: t}
				pos, errP := registry.Call(pair[0], s, t, rule)
				neg, errN := registry.Call(pair[1], s, t, rule)
				if errP != nil || errN != nil {
					return false
				}
				if neg != !pos {
					return false
				}
			}
			return true
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

// Property-based test: greater than is less than with operands swapped
func TestRegistry_PropertyComparisonSwap(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("greater than / gte agree with Go comparison", prop.ForAll(
		func(s, t int) bool {
			rule := types.Rule{}
			gt, err1 := Call("greater than", s, t, rule)
			gte, err2 := Call("gte", s, t, rule)
			lt, err3 := Call("less than", s, t, rule)
			lte, err4 := Call("lte", s, t, rule)
			if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
				return false
			}
			return gt == (s > t) && gte == (s >= t) && lt == (s < t) && lte == (s <= t)
		},
		gen.IntRange(-50, 50),
		gen.IntRange(-50, 50),
	))

	properties.TestingRun(t)
}

// Property-based test: parse is pure and a plain list equals an explicit ALL
func TestParse_PropertyDefaultCombinatorAndIdempotence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	ops := []string{"is", "not is", "less than", "greater than", "lte", "gte"}

	properties.Property("List(...) == All(...) and repeated calls agree", prop.ForAll(
		func(values []int, opIdx []int) bool {
			store := types.Store{}
			nodes := make([]types.Node[types.RawRule], 0, len(values))
			for i, v := range values {
				key := string(rune('a' + i%26))
				store[key] = float64(v)
				op := ops[opIdx[i%len(opIdx)]%len(ops)]
				nodes = append(nodes, types.Leaf(types.RawRule{Key: key, Operator: op, Target: 5.0}))
			}

			plain, err1 := Parse(types.List(nodes...), store)
			explicit, err2 := Parse(types.All(nodes...), store)
			again, err3 := Parse(types.List(nodes...), store)
			if err1 != nil || err2 != nil || err3 != nil {
				return false
			}
			return plain == explicit && plain == again
		},
		gen.SliceOfN(6, gen.IntRange(0, 10)),
		gen.SliceOfN(3, gen.IntRange(0, 100)),
	))

	properties.TestingRun(t)
}
