package expr

import (
	"errors"
	"fmt"
)

// Sentinel errors for parsing.
var (
	// ErrInvalidExpr indicates a syntax error in the source text or JSON document.
	ErrInvalidExpr = errors.New("invalid expr")

	// ErrInvalidValue indicates a value this language cannot represent, such as JSON null.
	ErrInvalidValue = errors.New("invalid value")

	// ErrInvalidOp indicates an operator string that matches no known operator.
	ErrInvalidOp = errors.New("invalid op")

	// ErrMissingValue indicates a JSON operation object lacks lhs, op or rhs.
	ErrMissingValue = errors.New("missing value")
)

// Sentinel errors for evaluation.
var (
	// ErrInvalidParameter indicates an identifier absent from the parameters.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidOperation indicates operand types the operator does not accept.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrMaxDepth indicates an expression nested deeper than the configured limit.
	ErrMaxDepth = errors.New("maximum nesting depth exceeded")
)

// ParseErrorKind classifies a ParseError.
type ParseErrorKind int

// Parse error kinds.
const (
	InvalidExpr ParseErrorKind = iota
	InvalidValue
	InvalidOp
	MissingValue
)

// String returns the kind name.
func (k ParseErrorKind) String() string {
	switch k {
	case InvalidValue:
		return "InvalidValue"
	case InvalidOp:
		return "InvalidOp"
	case MissingValue:
		return "MissingValue"
	default:
		return "InvalidExpr"
	}
}

// ParseError reports why a front-end rejected its input.
type ParseError struct {
	// Kind classifies the failure.
	Kind ParseErrorKind
	// Pos is the byte offset in source text, or -1 for JSON input.
	Pos int
	// Msg describes the offending token, value or key.
	Msg string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("%v: %s at position %d", e.Unwrap(), e.Msg, e.Pos)
	}
	return fmt.Sprintf("%v: %s", e.Unwrap(), e.Msg)
}

// Unwrap returns the sentinel matching Kind for errors.Is support.
func (e *ParseError) Unwrap() error {
	switch e.Kind {
	case InvalidValue:
		return ErrInvalidValue
	case InvalidOp:
		return ErrInvalidOp
	case MissingValue:
		return ErrMissingValue
	default:
		return ErrInvalidExpr
	}
}

// ParameterError reports an identifier with no binding.
type ParameterError struct {
	// Name is the parameter name without braces.
	Name string
}

// Error implements the error interface.
func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s", e.Name)
}

// Unwrap returns ErrInvalidParameter for errors.Is support.
func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// OperationError reports operands an operator cannot be applied to.
type OperationError struct {
	Left  Value
	Op    Op
	Right Value
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	return fmt.Sprintf("invalid operation %#v %#v %#v", e.Left, e.Op, e.Right)
}

// Unwrap returns ErrInvalidOperation for errors.Is support.
func (e *OperationError) Unwrap() error {
	return ErrInvalidOperation
}

// DepthError reports an expression nested beyond the configured limit.
type DepthError struct {
	// Max is the configured limit.
	Max int
}

// Error implements the error interface.
func (e *DepthError) Error() string {
	return fmt.Sprintf("expression nesting exceeds maximum depth (%d)", e.Max)
}

// Unwrap returns ErrMaxDepth for errors.Is support.
func (e *DepthError) Unwrap() error {
	return ErrMaxDepth
}
