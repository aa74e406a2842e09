package expr

import "fmt"

// DefaultMaxDepth is the nesting limit used when WithMaxDepth is not given.
const DefaultMaxDepth = 4096

// Option configures parsing and evaluation.
type Option func(*options)

type options struct {
	maxDepth int
}

func buildOptions(opts []Option) options {
	o := options{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMaxDepth sets the maximum nesting depth.
// Default: DefaultMaxDepth
//
// The text parser counts both parenthesis nesting and tree height, the JSON
// translator counts object and array nesting, and the evaluator counts
// recursion depth. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

// Operator levels from lowest to highest precedence. Every level folds left.
var levels = [][]Family{
	{FamilyLogical},
	{FamilyEquality, FamilyRelational},
	{FamilyAdditive},
	{FamilyMultiplicative},
}

// Parse parses an expression in the textual syntax:
//
//	{age} >= 18 && {country} in ['US', 'CA']
//
// Errors are *ParseError (kind InvalidExpr) or *DepthError.
func Parse(src string, opts ...Option) (Expr, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens, maxDepth: buildOptions(opts).maxDepth}
	x, _, err := p.parseLevel(0)
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != TokenEOF {
		return nil, p.unexpected(tok)
	}
	return x, nil
}

type parser struct {
	tokens   []Token
	pos      int
	maxDepth int
	nesting  int
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) advance() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

// parseLevel parses a left fold of operators at the given level.
// It returns the node and its height.
func (p *parser) parseLevel(level int) (Expr, int, error) {
	if level == len(levels) {
		return p.parseTerm()
	}

	left, height, err := p.parseLevel(level + 1)
	if err != nil {
		return nil, 0, err
	}
	for {
		tok := p.peek()
		if tok.Kind != TokenOp || !inLevel(tok.Op, level) {
			return left, height, nil
		}
		p.advance()

		right, rh, err := p.parseLevel(level + 1)
		if err != nil {
			return nil, 0, err
		}
		height = max(height, rh) + 1
		if height > p.maxDepth {
			return nil, 0, &DepthError{Max: p.maxDepth}
		}
		left = NewBinary(left, tok.Op, right)
	}
}

func inLevel(op Op, level int) bool {
	for _, f := range levels[level] {
		if op.Family() == f {
			return true
		}
	}
	return false
}

// parseTerm parses a literal, array, identifier or parenthesized expression.
func (p *parser) parseTerm() (Expr, int, error) {
	tok := p.peek()
	switch tok.Kind {
	case TokenIdent:
		p.advance()
		return Ident(stripBraces(tok.Text)), 1, nil
	case TokenLBracket:
		v, err := p.parseArray()
		if err != nil {
			return nil, 0, err
		}
		return Lit(v), 1, nil
	case TokenLParen:
		p.advance()
		p.nesting++
		if p.nesting > p.maxDepth {
			return nil, 0, &DepthError{Max: p.maxDepth}
		}
		x, height, err := p.parseLevel(0)
		if err != nil {
			return nil, 0, err
		}
		if next := p.advance(); next.Kind != TokenRParen {
			return nil, 0, p.expected(next, ")")
		}
		p.nesting--
		return x, height, nil
	}

	v, ok := tokenValue(tok)
	if !ok {
		return nil, 0, p.unexpected(tok)
	}
	p.advance()
	return Lit(v), 1, nil
}

// parseArray parses "[" (Value ",")* Value? "]".
func (p *parser) parseArray() (Value, error) {
	p.advance() // [
	var elems []Value
	for {
		tok := p.advance()
		if tok.Kind == TokenRBracket {
			return Array(elems...), nil
		}
		v, ok := tokenValue(tok)
		if !ok {
			return Value{}, p.expected(tok, "a literal or ]")
		}
		elems = append(elems, v)

		switch next := p.advance(); next.Kind {
		case TokenComma:
		case TokenRBracket:
			return Array(elems...), nil
		default:
			return Value{}, p.expected(next, ", or ]")
		}
	}
}

// tokenValue converts a literal token into its Value.
func tokenValue(tok Token) (Value, bool) {
	switch tok.Kind {
	case TokenInt, TokenFloat:
		return Number(tok.Num), true
	case TokenString:
		return String(tok.Text[1 : len(tok.Text)-1]), true
	case TokenTrue:
		return Bool(true), true
	case TokenFalse:
		return Bool(false), true
	default:
		return Value{}, false
	}
}

func (p *parser) unexpected(tok Token) error {
	return &ParseError{Kind: InvalidExpr, Pos: tok.Pos, Msg: fmt.Sprintf("unexpected %s", tok.describe())}
}

func (p *parser) expected(tok Token, want string) error {
	return &ParseError{Kind: InvalidExpr, Pos: tok.Pos, Msg: fmt.Sprintf("unexpected %s, expected %s", tok.describe(), want)}
}
