package expr

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Expr is a node of a parsed expression tree.
//
// Trees are built by Parse, ParseJSON or FromGeneric and must not be modified
// afterwards. A tree may be evaluated any number of times, concurrently.
type Expr interface {
	fmt.Stringer
	exprNode()
}

// Identifier references a parameter, written {name} in source.
type Identifier struct {
	Name string
}

// Literal is a constant value.
type Literal struct {
	Value Value
}

// Binary applies Op to the results of Left and Right.
// The node owns both children; subtrees are never shared.
type Binary struct {
	Left  Expr
	Op    Op
	Right Expr
}

func (*Identifier) exprNode() {}
func (*Literal) exprNode()    {}
func (*Binary) exprNode()     {}

// Ident returns an Identifier node.
func Ident(name string) *Identifier { return &Identifier{Name: name} }

// Lit returns a Literal node.
func Lit(v Value) *Literal { return &Literal{Value: v} }

// NewBinary returns a Binary node.
func NewBinary(left Expr, op Op, right Expr) *Binary {
	return &Binary{Left: left, Op: op, Right: right}
}

// String renders the identifier as {name}.
func (n *Identifier) String() string { return "{" + n.Name + "}" }

// String renders the literal in the textual syntax, quoting strings.
func (n *Literal) String() string { return literalText(n.Value) }

// String renders the node fully parenthesized, e.g. (1 + {a}).
func (n *Binary) String() string {
	return "(" + exprText(n.Left) + " " + n.Op.String() + " " + exprText(n.Right) + ")"
}

func exprText(x Expr) string {
	if x == nil {
		return "<nil>"
	}
	return x.String()
}

func literalText(v Value) string {
	switch v.Kind() {
	case KindString:
		s, _ := v.AsString()
		return "'" + s + "'"
	case KindArray:
		elems, _ := v.AsArray()
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = literalText(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return v.String()
	}
}

// MarshalJSON renders x in the JSON surface syntax accepted by ParseJSON.
//
// A string literal that looks like {name} cannot be told apart from an
// identifier in that syntax and is rejected with ErrInvalidValue.
func MarshalJSON(x Expr) ([]byte, error) {
	g, err := toGeneric(x)
	if err != nil {
		return nil, err
	}
	return json.Marshal(g)
}

func toGeneric(x Expr) (any, error) {
	switch n := x.(type) {
	case *Identifier:
		return n.String(), nil
	case *Literal:
		if s, ok := n.Value.AsString(); ok && isIdentifierText(s) {
			return nil, fmt.Errorf("%w: string literal %q reads as an identifier", ErrInvalidValue, s)
		}
		if !n.Value.IsValid() {
			return nil, fmt.Errorf("%w: zero value", ErrInvalidValue)
		}
		return n.Value.Interface(), nil
	case *Binary:
		lhs, err := toGeneric(n.Left)
		if err != nil {
			return nil, err
		}
		rhs, err := toGeneric(n.Right)
		if err != nil {
			return nil, err
		}
		if n.Op.Family() == FamilyInvalid {
			return nil, fmt.Errorf("%w: %d", ErrInvalidOp, int(n.Op))
		}
		return map[string]any{"lhs": lhs, "op": n.Op.String(), "rhs": rhs}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported node %T", ErrInvalidExpr, x)
	}
}
