// Package ruleset stores named rules and keeps them compiled for evaluation.
//
// A Rule is source text in either surface syntax. Stores persist rules
// (in memory, SQLite or BoltDB) so they can be kept as data and reloaded;
// a Set holds the compiled trees ready to evaluate.
package ruleset

import (
	"errors"
	"fmt"
	"time"

	"github.com/randalmurphal/ruleexpr/pkg/ruleexpr/expr"
)

// Syntax names the front-end a rule is written for.
type Syntax string

const (
	// SyntaxText is the textual grammar, e.g. "{age} >= 18".
	SyntaxText Syntax = "text"
	// SyntaxJSON is the JSON surface syntax, e.g. {"lhs": "{age}", "op": ">=", "rhs": 18}.
	SyntaxJSON Syntax = "json"
)

// Valid reports whether s is a known syntax.
func (s Syntax) Valid() bool {
	return s == SyntaxText || s == SyntaxJSON
}

// Rule is a named expression.
type Rule struct {
	// ID is assigned by a Store on first save and kept across updates.
	ID string `json:"id"`
	// Name identifies the rule; stores key rules by name.
	Name string `json:"name"`
	// Syntax selects the parser for Source.
	Syntax Syntax `json:"syntax"`
	// Source is the expression text.
	Source string `json:"source"`
	// Description is free text for humans.
	Description string `json:"description,omitempty"`
	// UpdatedAt is set by a Store on save.
	UpdatedAt time.Time `json:"updated_at"`
}

// Sentinel errors for rule and store operations.
var (
	// ErrNotFound indicates no rule exists with the requested name.
	ErrNotFound = errors.New("rule not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("rule store closed")

	// ErrInvalidRule indicates a rule with a missing name, source or unknown syntax.
	ErrInvalidRule = errors.New("invalid rule")
)

// Validate checks the fields a store needs. It does not parse Source.
func (r Rule) Validate() error {
	switch {
	case r.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidRule)
	case !r.Syntax.Valid():
		return fmt.Errorf("%w: rule %s: unknown syntax %q", ErrInvalidRule, r.Name, r.Syntax)
	case r.Source == "":
		return fmt.Errorf("%w: rule %s: source is required", ErrInvalidRule, r.Name)
	}
	return nil
}

// Compile parses the rule source with the front-end named by its syntax.
func Compile(r Rule, opts ...expr.Option) (expr.Expr, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var (
		x   expr.Expr
		err error
	)
	switch r.Syntax {
	case SyntaxJSON:
		x, err = expr.ParseJSON([]byte(r.Source), opts...)
	default:
		x, err = expr.Parse(r.Source, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("compile rule %s: %w", r.Name, err)
	}
	return x, nil
}
