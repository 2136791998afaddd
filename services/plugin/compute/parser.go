package compute

import (
	"fmt"
)

const (
	_ int = iota
	LOWEST
	SUM     // + -
	PRODUCT // * /
)

var precedences = map[TokenType]int{
	PLUS:  SUM,
	MINUS: SUM,
	STAR:  PRODUCT,
	SLASH: PRODUCT,
}

var operators = map[TokenType]Op{
	PLUS:  OpAdd,
	MINUS: OpSub,
	STAR:  OpMul,
	SLASH: OpDiv,
}

// Parser builds expression trees. It keeps no state between Parse calls so one value can
// serve every expression of a check.
type Parser struct{}

// NewParser creates a new parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse turns the expression text into its tree. The whole input must be consumed.
func (p *Parser) Parse(input string) (Expr, error) {
	log.Trace("parsing expression", "expression", input)

	state := newParseState(NewLexer(input))
	expr := state.parseExpression(LOWEST)
	if state.err != nil {
		return nil, state.err
	}

	if !state.peekTokenIs(EOF) {
		state.unexpectedPeek("end of expression")
		return nil, state.err
	}

	return expr, nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (p *Parser) IsInterfaceNil() bool {
	return p == nil
}

type parseState struct {
	l *Lexer

	curToken  Token
	peekToken Token

	err error
}

func newParseState(l *Lexer) *parseState {
	ps := &parseState{l: l}

	// Read two tokens, so curToken and peekToken are both set
	ps.nextToken()
	ps.nextToken()

	return ps
}

func (ps *parseState) nextToken() {
	ps.curToken = ps.peekToken
	ps.peekToken = ps.l.NextToken()
}

func (ps *parseState) parseExpression(precedence int) Expr {
	left := ps.parsePrefix()
	if ps.err != nil {
		return nil
	}

	for precedence < ps.peekPrecedence() {
		ps.nextToken()
		left = ps.parseInfix(left)
		if ps.err != nil {
			return nil
		}
	}

	return left
}

func (ps *parseState) parsePrefix() Expr {
	switch ps.curToken.Type {
	case NUMBER:
		return &NumberLiteral{Value: ps.curToken.Value}
	case LBRACE:
		return ps.parseIdentifier()
	case LPAREN:
		return ps.parseGroupedExpression()
	case IDENT:
		return ps.parseCall()
	case ILLEGAL:
		ps.lexError(ps.curToken)
		return nil
	default:
		ps.fail(ps.curToken.Position, fmt.Sprintf("unexpected token %s", describe(ps.curToken)))
		return nil
	}
}

func (ps *parseState) parseInfix(left Expr) Expr {
	expression := &BinaryOp{
		Op:   operators[ps.curToken.Type],
		Left: left,
	}

	precedence := ps.curPrecedence()
	ps.nextToken()
	expression.Right = ps.parseExpression(precedence)

	return expression
}

func (ps *parseState) parseIdentifier() Expr {
	if !ps.expectPeek(IDENT) {
		return nil
	}
	name := ps.curToken.Literal

	if !ps.expectPeek(RBRACE) {
		return nil
	}

	return &Identifier{Name: name}
}

func (ps *parseState) parseGroupedExpression() Expr {
	ps.nextToken()

	expr := ps.parseExpression(LOWEST)
	if ps.err != nil {
		return nil
	}

	if !ps.expectPeek(RPAREN) {
		return nil
	}

	return expr
}

func (ps *parseState) parseCall() Expr {
	fn, ok := functions[ps.curToken.Literal]
	if !ok {
		ps.fail(ps.curToken.Position, fmt.Sprintf("bare identifier %q, counters must be written as {%s}",
			ps.curToken.Literal, ps.curToken.Literal))
		return nil
	}

	if !ps.expectPeek(LPAREN) {
		return nil
	}

	arg := ps.parseGroupedExpression()
	if ps.err != nil {
		return nil
	}

	return &Call{Func: fn, Arg: arg}
}

func (ps *parseState) peekTokenIs(t TokenType) bool {
	return ps.peekToken.Type == t
}

func (ps *parseState) expectPeek(t TokenType) bool {
	if ps.peekTokenIs(t) {
		ps.nextToken()
		return true
	}

	ps.unexpectedPeek(t.String())
	return false
}

func (ps *parseState) unexpectedPeek(expected string) {
	if ps.peekToken.Type == ILLEGAL {
		ps.lexError(ps.peekToken)
		return
	}

	ps.fail(ps.peekToken.Position, fmt.Sprintf("expected %s, got %s instead", expected, describe(ps.peekToken)))
}

func (ps *parseState) lexError(tok Token) {
	ps.err = &ParseError{
		Pos: tok.Position,
		Msg: fmt.Sprintf("invalid input %q", tok.Literal),
		Err: ErrLex,
	}
}

func (ps *parseState) fail(pos int, msg string) {
	ps.err = &ParseError{Pos: pos, Msg: msg}
}

func (ps *parseState) peekPrecedence() int {
	if p, ok := precedences[ps.peekToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (ps *parseState) curPrecedence() int {
	if p, ok := precedences[ps.curToken.Type]; ok {
		return p
	}

	return LOWEST
}

func describe(tok Token) string {
	switch tok.Type {
	case EOF:
		return "end of expression"
	case NUMBER, IDENT:
		return fmt.Sprintf("%s %q", tok.Type, tok.Literal)
	default:
		return fmt.Sprintf("%q", tok.Type.String())
	}
}
