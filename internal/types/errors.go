package types

import "errors"

// Sentinel errors for ruleparser operations.
var (
	// ErrType indicates an operator received operands of the wrong shape or type.
	ErrType = errors.New("type error")

	// ErrNoSuchEvaluator indicates an operator name with no registration or alias.
	ErrNoSuchEvaluator = errors.New("no such evaluator")

	// ErrMalformedRules indicates input that does not follow the rule grammar.
	ErrMalformedRules = errors.New("malformed rules")

	// ErrMalformedStore indicates a store value that is not a primitive or array of primitives.
	ErrMalformedStore = errors.New("malformed store")

	// ErrRuleTooDeep indicates group nesting beyond MaxRuleDepth.
	ErrRuleTooDeep = errors.New("rule tree exceeds maximum depth")

	// ErrTooManyRules indicates more than MaxRuleCount leaf rules.
	ErrTooManyRules = errors.New("rule tree has too many rules")

	// ErrEmptyOperator indicates a leaf rule with an empty operator name.
	ErrEmptyOperator = errors.New("rule operator is empty")

	// ErrInvalidRuleSetName indicates an empty or oversized rule set name.
	ErrInvalidRuleSetName = errors.New("invalid rule set name")
)

// TypeError reports operands that do not satisfy an operator's contract.
// Message carries the rendered rule; errors.Is(err, ErrType) holds.
type TypeError struct {
	Message string
}

func (e *TypeError) Error() string {
	return e.Message
}

func (e *TypeError) Unwrap() error {
	return ErrType
}
