/*
Package expr parses and evaluates rule expressions.

# Overview

expr implements a small predicate/arithmetic language over named parameters.
Expressions are parsed once into an immutable tree and evaluated against a
parameter binding as often as needed, from any number of goroutines.

Two front-ends produce the same tree shape:

	x, err := expr.Parse("{age} >= 18 && {country} in ['US', 'CA']")
	x, err := expr.ParseJSON([]byte(`{"lhs": "{a}", "op": "in", "rhs": [4, 5, 6]}`))

# Expression Syntax

	<expr>     := <expr> ('&&' | '||') <equality> | <equality>
	<equality> := <equality> <cmp> <additive> | <additive>
	<cmp>      := '==' | '!=' | 'in' | '>' | '<' | '>=' | '<='
	<additive> := <additive> ('+' | '-') <mult> | <mult>
	<mult>     := <mult> ('*' | '/' | '%') <term> | <term>
	<term>     := <value> | <array> | '{' name '}' | '(' <expr> ')'
	<array>    := '[' (<value> ',')* <value>? ']'
	<value>    := 'string' | 123 | 1.5 | true | false

Every level folds left, so "a - b - c" is "(a - b) - c" and
"a == b > c" is "(a == b) > c". Names match [a-z][a-z0-9_]*. Strings have no
escape sequences.

# Value Types

Values are Bool, Number (float64), String or Array. Arrays may mix kinds.
No implicit conversion is ever made between kinds: 1 + false is an error,
not a number.

# Operators

	&& ||          Bool, Bool
	== !=          both Bool, both Number or both String
	in             Bool, Number or String on the left, Array on the right
	> < >= <=      both Number or both Bool (false < true)
	+ - * / %      Number, Number

Both operands are always evaluated, so a missing parameter on the right of
&& is reported even when the left side is false.

# Evaluation

	params := expr.Params{"age": expr.FromInt(21), "country": expr.String("US")}
	v, err := expr.Evaluate(x, params)   // Bool(true)

	vars := map[string]any{"age": 21, "country": "US"}
	params, err := expr.ParamsOf(vars)

# Errors

Parse failures are *ParseError values whose Kind is InvalidExpr, InvalidValue,
InvalidOp or MissingValue. Evaluation failures are *ParameterError or
*OperationError. Trees nested beyond the WithMaxDepth limit produce
*DepthError. All of them unwrap to the sentinels in this package, so
errors.Is(err, expr.ErrInvalidParameter) works through any wrapping.
*/
package expr
