package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenKind
	}{
		{"empty", "", []TokenKind{TokenEOF}},
		{"whitespace only", " \t\n ", []TokenKind{TokenEOF}},
		{"identifier", "{user_id2}", []TokenKind{TokenIdent, TokenEOF}},
		{"integer and float", "12 3.25", []TokenKind{TokenInt, TokenFloat, TokenEOF}},
		{"string", "'hello world'", []TokenKind{TokenString, TokenEOF}},
		{"booleans", "true false", []TokenKind{TokenTrue, TokenFalse, TokenEOF}},
		{"punctuation", "( ) [ ] ,", []TokenKind{TokenLParen, TokenRParen, TokenLBracket, TokenRBracket, TokenComma, TokenEOF}},
		{"no spaces", "{a}>=1&&{b}in[1,2]", []TokenKind{
			TokenIdent, TokenOp, TokenInt, TokenOp, TokenIdent, TokenOp,
			TokenLBracket, TokenInt, TokenComma, TokenInt, TokenRBracket, TokenEOF,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, kinds(tokens))
		})
	}
}

func TestTokenize_Operators(t *testing.T) {
	tokens, err := Tokenize("&& || == != in > < >= <= + - * / %")
	require.NoError(t, err)

	var got []Op
	for _, tok := range tokens {
		if tok.Kind == TokenOp {
			got = append(got, tok.Op)
		}
	}
	assert.Equal(t, []Op{
		OpAnd, OpOr, OpEq, OpNeq, OpIn, OpGt, OpLt, OpGte, OpLte,
		OpAdd, OpSub, OpMul, OpDiv, OpMod,
	}, got)
}

func TestTokenize_PrefersLongerOperator(t *testing.T) {
	tokens, err := Tokenize("1>=2")
	require.NoError(t, err)
	require.Len(t, tokens, 4)
	assert.Equal(t, OpGte, tokens[1].Op)
	assert.Equal(t, ">=", tokens[1].Text)
}

func TestTokenize_Positions(t *testing.T) {
	tokens, err := Tokenize("  {a} + 'x'")
	require.NoError(t, err)
	assert.Equal(t, 2, tokens[0].Pos)
	assert.Equal(t, 6, tokens[1].Pos)
	assert.Equal(t, 8, tokens[2].Pos)
	assert.Equal(t, "'x'", tokens[2].Text)
	assert.Equal(t, 11, tokens[3].Pos)
}

func TestTokenize_Numbers(t *testing.T) {
	tokens, err := Tokenize("007 1.50")
	require.NoError(t, err)
	assert.Equal(t, 7.0, tokens[0].Num)
	assert.Equal(t, 1.5, tokens[1].Num)
	assert.Equal(t, TokenFloat, tokens[1].Kind)
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		pos   int
	}{
		{"bare word", "age", 0},
		{"uppercase identifier", "{Age}", 0},
		{"identifier starting with digit", "{1a}", 0},
		{"unterminated identifier", "{abc", 0},
		{"identifier with dash", "{a-b}", 0},
		{"unterminated string", "'abc", 0},
		{"single ampersand", "1 & 2", 2},
		{"bang", "!true", 0},
		{"single equals", "1 = 1", 2},
		{"dangling dot", "1.", 1},
		{"double quotes", `"a"`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidExpr)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, InvalidExpr, perr.Kind)
			assert.Equal(t, tt.pos, perr.Pos)
		})
	}
}

func TestIdentifierName(t *testing.T) {
	name, ok := identifierName("{abc_1}")
	assert.True(t, ok)
	assert.Equal(t, "abc_1", name)

	for _, s := range []string{"abc", "{a} + 1", "{A}", "'{a}'", ""} {
		_, ok := identifierName(s)
		assert.False(t, ok, "input %q", s)
	}
}
