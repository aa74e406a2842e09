package ruleexpr

import (
	"errors"
	"fmt"
)

// Sentinel errors for engine operations.
var (
	// ErrRuleNotFound indicates no rule is loaded under the requested name.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrNotBool indicates Match was called on a rule that produced a non-Bool value.
	ErrNotBool = errors.New("rule result is not a bool")

	// ErrEngineClosed indicates the engine has been closed.
	ErrEngineClosed = errors.New("engine closed")
)

// RuleError wraps an evaluation error with the rule that produced it.
// Use errors.Is to test the underlying cause, e.g. expr.ErrInvalidParameter.
type RuleError struct {
	Rule string
	Err  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s: %v", e.Rule, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}
