package types

/*
 * Domain types for rule evaluation.
 *
 * A rule tree is a Group of Nodes; every Node is either a leaf rule or a
 * nested Group. The tree is generic over the leaf type so the same shape
 * carries each evaluation pass:
 *
 *   Group[RawRule] -> Group[Rule] -> Group[bool] -> bool
 *
 * The positional JSON grammar ([ "ALL"|"ANY", [...] ] vs a plain list) is
 * translated into this form by internal/rules decoding. Explicit records
 * whether a combinator was written so the tree can be encoded back verbatim.
 */

// Combinator joins the results of a group.
type Combinator string

const (
	// CombinatorAll requires every child to be true. Empty groups are true.
	CombinatorAll Combinator = "ALL"
	// CombinatorAny requires at least one child to be true. Empty groups are false.
	CombinatorAny Combinator = "ANY"
)

// IsCombinator reports whether v is literally the string "ALL" or "ANY".
func IsCombinator(v any) bool {
	s, ok := v.(string)
	return ok && (s == string(CombinatorAll) || s == string(CombinatorAny))
}

// RawRule is an unresolved leaf: Key is looked up in the Store.
type RawRule struct {
	Key      string
	Operator string
	Target   any
}

// Rule is a resolved leaf ready for operator evaluation.
type Rule struct {
	Source   any
	Operator string
	Target   any
}

// Node is one element of a group: exactly one of Rule or Group is set.
type Node[T any] struct {
	Rule  *T
	Group *Group[T]
}

// Group is a list of nodes joined by a combinator.
type Group[T any] struct {
	Combinator Combinator // CombinatorAll when Explicit is false
	Explicit   bool       // true when written as [combinator, [...]]
	Nodes      []Node[T]
}

// Leaf wraps a rule in a Node.
func Leaf[T any](rule T) Node[T] {
	return Node[T]{Rule: &rule}
}

// Nested wraps a group in a Node.
func Nested[T any](group Group[T]) Node[T] {
	return Node[T]{Group: &group}
}

// All builds an explicit ALL group.
func All[T any](nodes ...Node[T]) Group[T] {
	return Group[T]{Combinator: CombinatorAll, Explicit: true, Nodes: nodes}
}

// Any builds an explicit ANY group.
func Any[T any](nodes ...Node[T]) Group[T] {
	return Group[T]{Combinator: CombinatorAny, Explicit: true, Nodes: nodes}
}

// List builds a plain list, which reduces as ALL.
func List[T any](nodes ...Node[T]) Group[T] {
	return Group[T]{Combinator: CombinatorAll, Nodes: nodes}
}

// EffectiveCombinator returns the combinator used for reduction.
// Plain lists and zero-valued groups reduce as ALL.
func (g Group[T]) EffectiveCombinator() Combinator {
	if g.Explicit && g.Combinator == CombinatorAny {
		return CombinatorAny
	}
	return CombinatorAll
}
