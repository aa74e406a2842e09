package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind represents the different kinds of tokens in an expression.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenInt
	TokenFloat
	TokenString
	TokenTrue
	TokenFalse
	TokenOp
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenComma
)

var tokenNames = [...]string{
	TokenEOF:      "end of input",
	TokenIdent:    "identifier",
	TokenInt:      "integer",
	TokenFloat:    "float",
	TokenString:   "string",
	TokenTrue:     "true",
	TokenFalse:    "false",
	TokenOp:       "operator",
	TokenLParen:   "(",
	TokenRParen:   ")",
	TokenLBracket: "[",
	TokenRBracket: "]",
	TokenComma:    ",",
}

// String returns a readable name for the kind.
func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenNames) {
		return "unknown"
	}
	return tokenNames[k]
}

// Token is a lexical token.
type Token struct {
	Kind TokenKind
	// Text is the source text of the token, braces and quotes included.
	Text string
	// Pos is the byte offset of the token in the source.
	Pos int
	// Op is set for TokenOp.
	Op Op
	// Num is set for TokenInt and TokenFloat.
	Num float64
}

func (t Token) describe() string {
	if t.Kind == TokenEOF {
		return "end of input"
	}
	return strconv.Quote(t.Text)
}

// Symbols ordered so two-character operators are tried before their prefixes.
var symbolOps = []string{"&&", "||", "==", "!=", ">=", "<=", ">", "<", "+", "-", "*", "/", "%"}

var punctuation = map[byte]TokenKind{
	'(': TokenLParen,
	')': TokenRParen,
	'[': TokenLBracket,
	']': TokenRBracket,
	',': TokenComma,
}

var keywords = []struct {
	word string
	kind TokenKind
}{
	{"true", TokenTrue},
	{"false", TokenFalse},
	{"in", TokenOp},
}

// Lexer splits source text into tokens, skipping whitespace between them.
type Lexer struct {
	src string
	pos int
}

// NewLexer creates a lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Tokenize returns every token of src, ending with TokenEOF.
func Tokenize(src string) ([]Token, error) {
	lx := NewLexer(src)
	var tokens []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens, nil
		}
	}
}

// Next returns the next token. At the end of input it returns TokenEOF,
// repeatedly.
func (l *Lexer) Next() (Token, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return Token{Kind: TokenEOF, Pos: l.pos}, nil
	}

	start := l.pos
	c := l.src[start]

	if kind, ok := punctuation[c]; ok {
		l.pos++
		return Token{Kind: kind, Text: l.src[start:l.pos], Pos: start}, nil
	}

	switch {
	case c == '{':
		return l.lexIdent()
	case c == '\'':
		return l.lexString()
	case isDigit(c):
		return l.lexNumber()
	}

	rest := l.src[start:]
	for _, sym := range symbolOps {
		if strings.HasPrefix(rest, sym) {
			l.pos += len(sym)
			op, _ := ParseOp(sym)
			return Token{Kind: TokenOp, Text: sym, Pos: start, Op: op}, nil
		}
	}
	for _, kw := range keywords {
		if strings.HasPrefix(rest, kw.word) {
			l.pos += len(kw.word)
			tok := Token{Kind: kw.kind, Text: kw.word, Pos: start}
			if kw.kind == TokenOp {
				tok.Op = OpIn
			}
			return tok, nil
		}
	}

	r, _ := utf8.DecodeRuneInString(rest)
	return Token{}, l.errorf(start, "unrecognized token %q", r)
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

// lexIdent scans \{[a-z][a-z0-9_]*\}.
func (l *Lexer) lexIdent() (Token, error) {
	start := l.pos
	l.pos++ // {
	if l.pos >= len(l.src) || !isLower(l.src[l.pos]) {
		return Token{}, l.errorf(start, "identifier must start with a lowercase letter")
	}
	for l.pos < len(l.src) && (isLower(l.src[l.pos]) || isDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
		l.pos++
	}
	if l.pos >= len(l.src) || l.src[l.pos] != '}' {
		return Token{}, l.errorf(start, "unterminated identifier")
	}
	l.pos++
	return Token{Kind: TokenIdent, Text: l.src[start:l.pos], Pos: start}, nil
}

// lexString scans '[^']*'. There are no escape sequences.
func (l *Lexer) lexString() (Token, error) {
	start := l.pos
	end := strings.IndexByte(l.src[start+1:], '\'')
	if end < 0 {
		return Token{}, l.errorf(start, "unterminated string")
	}
	l.pos = start + 1 + end + 1
	return Token{Kind: TokenString, Text: l.src[start:l.pos], Pos: start}, nil
}

// lexNumber scans [0-9]+ or [0-9]+\.[0-9]+.
func (l *Lexer) lexNumber() (Token, error) {
	start := l.pos
	l.scanDigits()
	kind := TokenInt
	if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && isDigit(l.src[l.pos+1]) {
		l.pos++
		l.scanDigits()
		kind = TokenFloat
	}
	text := l.src[start:l.pos]
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Token{}, l.errorf(start, "invalid number %s", text)
	}
	return Token{Kind: kind, Text: text, Pos: start, Num: n}, nil
}

func (l *Lexer) scanDigits() {
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
}

func (l *Lexer) errorf(pos int, format string, args ...any) error {
	return &ParseError{Kind: InvalidExpr, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }

// isIdentifierText reports whether s is exactly one identifier token.
func isIdentifierText(s string) bool {
	_, ok := identifierName(s)
	return ok
}

// identifierName returns the name inside {name} when s lexes as a single
// identifier token, ignoring surrounding whitespace.
func identifierName(s string) (string, bool) {
	lx := NewLexer(s)
	tok, err := lx.Next()
	if err != nil || tok.Kind != TokenIdent {
		return "", false
	}
	if next, err := lx.Next(); err != nil || next.Kind != TokenEOF {
		return "", false
	}
	return stripBraces(tok.Text), true
}

func stripBraces(text string) string {
	return text[1 : len(text)-1]
}
