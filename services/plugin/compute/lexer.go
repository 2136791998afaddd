package compute

import "strconv"

// TokenType identifies the kind of a lexed token
type TokenType int

const (
	// ILLEGAL marks an unrecognized byte; the lexer stops right after it
	ILLEGAL TokenType = iota
	EOF

	NUMBER
	IDENT

	PLUS  // +
	MINUS // -
	STAR  // *
	SLASH // /

	LPAREN // (
	RPAREN // )
	LBRACE // {
	RBRACE // }
)

// Token is a lexed unit of an expression
type Token struct {
	Type     TokenType
	Literal  string
	Value    float64 // only set for NUMBER tokens
	Position int
}

// Lexer turns an expression string into a forward-only token sequence
type Lexer struct {
	input    string
	position int
	done     bool
}

// NewLexer creates a lexer positioned at the beginning of the input
func NewLexer(input string) *Lexer {
	return &Lexer{
		input: input,
	}
}

// Reset rewinds the lexer to the beginning of its input
func (l *Lexer) Reset() {
	l.position = 0
	l.done = false
}

// NextToken returns the next token. Once the input is exhausted, or right after an ILLEGAL
// token was produced, every following call returns an EOF token.
func (l *Lexer) NextToken() Token {
	if l.done {
		return Token{Type: EOF, Position: len(l.input)}
	}

	l.skipWhitespace()
	if l.position >= len(l.input) {
		l.done = true
		return Token{Type: EOF, Position: len(l.input)}
	}

	start := l.position
	ch := l.input[start]
	switch ch {
	case '+':
		return l.single(PLUS)
	case '-':
		return l.single(MINUS)
	case '*':
		return l.single(STAR)
	case '/':
		return l.single(SLASH)
	case '(':
		return l.single(LPAREN)
	case ')':
		return l.single(RPAREN)
	case '{':
		return l.single(LBRACE)
	case '}':
		return l.single(RBRACE)
	}

	if isDigit(ch) {
		return l.readNumber()
	}
	if isLetter(ch) {
		return l.readIdentifier()
	}

	log.Debug("unknown character in expression", "position", start, "character", string(ch))
	l.done = true
	return Token{Type: ILLEGAL, Literal: l.input[start : start+1], Position: start}
}

// Tokens drains the lexer and returns every token up to, but excluding, EOF
func (l *Lexer) Tokens() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

func (l *Lexer) single(tokenType TokenType) Token {
	tok := Token{
		Type:     tokenType,
		Literal:  l.input[l.position : l.position+1],
		Position: l.position,
	}
	l.position++

	return tok
}

func (l *Lexer) readNumber() Token {
	start := l.position
	for l.position < len(l.input) && (isDigit(l.input[l.position]) || l.input[l.position] == '.') {
		l.position++
	}

	literal := l.input[start:l.position]
	value, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		log.Debug("malformed number in expression", "literal", literal, "error", err)
		l.done = true
		return Token{Type: ILLEGAL, Literal: literal, Position: start}
	}

	return Token{Type: NUMBER, Literal: literal, Value: value, Position: start}
}

func (l *Lexer) readIdentifier() Token {
	start := l.position
	for l.position < len(l.input) && isIdentChar(l.input[l.position]) {
		l.position++
	}

	return Token{Type: IDENT, Literal: l.input[start:l.position], Position: start}
}

func (l *Lexer) skipWhitespace() {
	for l.position < len(l.input) && (l.input[l.position] == ' ' || l.input[l.position] == '\t') {
		l.position++
	}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isIdentChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '.'
}

func (t TokenType) String() string {
	switch t {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case NUMBER:
		return "NUMBER"
	case IDENT:
		return "IDENT"
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case STAR:
		return "*"
	case SLASH:
		return "/"
	case LPAREN:
		return "("
	case RPAREN:
		return ")"
	case LBRACE:
		return "{"
	case RBRACE:
		return "}"
	default:
		return "UNKNOWN"
	}
}
