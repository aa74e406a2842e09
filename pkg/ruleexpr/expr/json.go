package expr

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
)

// ParseJSON parses an expression in the JSON surface syntax:
//
//	{"lhs": "{a}", "op": "in", "rhs": [4, 5, 6]}
//
// Objects are operations, strings of the form {name} are identifiers, and
// every other string, number, boolean or array is a literal. Malformed JSON is
// reported as InvalidExpr; the tree itself is checked as in FromGeneric.
func ParseJSON(data []byte, opts ...Option) (Expr, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &ParseError{Kind: InvalidExpr, Pos: -1, Msg: err.Error()}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Kind: InvalidExpr, Pos: -1, Msg: "trailing data after JSON value"}
	}
	return FromGeneric(doc, opts...)
}

// FromGeneric translates an already decoded JSON- or YAML-like value into an
// Expr, producing the same tree shape as Parse.
//
// Accepted shapes:
//   - map[string]any with exactly the keys lhs, op and rhs: an operation
//   - string: an identifier when it reads {name}, a String literal otherwise
//   - bool, any integer or float kind, json.Number: a literal
//   - []any: an Array literal; elements are literals, never identifiers
//
// A missing key is MissingValue, an unknown or non-string op is InvalidOp,
// null and other unsupported leaves are InvalidValue.
func FromGeneric(v any, opts ...Option) (Expr, error) {
	t := translator{maxDepth: buildOptions(opts).maxDepth}
	return t.expr(v, 1)
}

type translator struct {
	maxDepth int
}

var operationKeys = []string{"lhs", "op", "rhs"}

func (t translator) expr(v any, depth int) (Expr, error) {
	if depth > t.maxDepth {
		return nil, &DepthError{Max: t.maxDepth}
	}

	switch val := v.(type) {
	case map[string]any:
		return t.operation(val, depth)
	case string:
		if name, ok := identifierName(val); ok {
			return Ident(name), nil
		}
		return Lit(String(val)), nil
	case nil:
		return nil, invalidValue("null")
	}

	lit, err := t.literal(v, depth)
	if err != nil {
		return nil, err
	}
	return Lit(lit), nil
}

func (t translator) operation(obj map[string]any, depth int) (Expr, error) {
	for _, key := range operationKeys {
		if _, ok := obj[key]; !ok {
			return nil, &ParseError{Kind: MissingValue, Pos: -1, Msg: key}
		}
	}
	if len(obj) != len(operationKeys) {
		return nil, &ParseError{Kind: InvalidExpr, Pos: -1, Msg: "unexpected keys " + strings.Join(extraKeys(obj), ", ")}
	}

	raw := obj["op"]
	symbol, ok := raw.(string)
	if !ok {
		return nil, &ParseError{Kind: InvalidOp, Pos: -1, Msg: renderJSON(raw)}
	}
	op, ok := ParseOp(strings.TrimSpace(symbol))
	if !ok {
		return nil, &ParseError{Kind: InvalidOp, Pos: -1, Msg: symbol}
	}

	lhs, err := t.expr(obj["lhs"], depth+1)
	if err != nil {
		return nil, err
	}
	rhs, err := t.expr(obj["rhs"], depth+1)
	if err != nil {
		return nil, err
	}
	return NewBinary(lhs, op, rhs), nil
}

// literal converts a leaf or array. Strings inside arrays stay strings.
// Scalar elements share the depth of their array, as in the text grammar;
// only an array nested inside another array adds a level.
func (t translator) literal(v any, depth int) (Value, error) {
	if depth > t.maxDepth {
		return Value{}, &DepthError{Max: t.maxDepth}
	}

	switch val := v.(type) {
	case nil:
		return Value{}, invalidValue("null")
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return Value{}, invalidValue(val.String())
		}
		return Number(f), nil
	case []any:
		elems := make([]Value, len(val))
		for i, e := range val {
			elemDepth := depth
			if _, nested := e.([]any); nested {
				elemDepth++
			}
			ev, err := t.literal(e, elemDepth)
			if err != nil {
				return Value{}, err
			}
			elems[i] = ev
		}
		return Array(elems...), nil
	case map[string]any:
		return Value{}, invalidValue("object " + renderJSON(val))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Number(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), nil
	default:
		return Value{}, invalidValue(fmt.Sprintf("unsupported type %T", v))
	}
}

func invalidValue(msg string) error {
	return &ParseError{Kind: InvalidValue, Pos: -1, Msg: msg}
}

func extraKeys(obj map[string]any) []string {
	var keys []string
	for k := range obj {
		if k != "lhs" && k != "op" && k != "rhs" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func renderJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
