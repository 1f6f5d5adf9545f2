// Package parser turns cell input into the postfix atom stream consumed by the
// evaluator, along with the symbols the cell reads.
package parser

import (
	"fmt"
	"slices"
	"strconv"

	"arevel/internal/lexer"
	"arevel/internal/object"
	"arevel/internal/symbol"
	"arevel/internal/token"
	"arevel/internal/value"
)

const (
	_      int = iota
	LOWEST     // grouping, call arguments
)

// PREFIX binds unary minus tighter than products but looser than calls.
var (
	PREFIX = symbol.Precedence(value.SymMultiply) + 1
	CALL   = symbol.Precedence(value.SymOpenParen)
)

var infixOperators = map[token.TokenType]value.Value{
	token.OR:       value.SymOr,
	token.AND:      value.SymAnd,
	token.EQ:       value.SymDblEquals,
	token.NOT_EQ:   value.SymNotEquals,
	token.LT:       value.SymLt,
	token.LT_EQ:    value.SymLte,
	token.GT:       value.SymGt,
	token.GT_EQ:    value.SymGte,
	token.PLUS:     value.SymPlus,
	token.MINUS:    value.SymMinus,
	token.ASTERISK: value.SymMultiply,
	token.SLASH:    value.SymDivide,
	token.PERCENT:  value.SymModulo,
}

var literals = map[token.TokenType]value.Value{
	token.TRUE:  value.True,
	token.FALSE: value.False,
	token.NONE:  value.None,
}

// Resolver maps a referenced name to the symbol of the cell that defines it.
type Resolver func(name string) (value.Value, bool)

// Error is a parse failure. Code is one of the parse stage error words.
type Error struct {
	Code     value.Value
	Position int
	Literal  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (at %d, near %q)", value.Message(e.Code), e.Position, e.Literal)
}

// Word returns the error word for the failure, carrying the position as its
// detail index.
func (e *Error) Word() value.Value {
	return value.WithDetail(e.Code, uint32(e.Position))
}

// Result is a parsed cell body.
type Result struct {
	Parsed []object.Atom
	// Refs lists the non builtin symbols read by the body, in order of first use.
	Refs []value.Value
}

type (
	prefixParseFn func() bool
	infixParseFn  func(start int) bool
)

type Parser struct {
	l       *lexer.Lexer
	resolve Resolver
	err     *Error

	curToken  token.Token
	peekToken token.Token

	out  []object.Atom
	refs []value.Value

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(l *lexer.Lexer, resolve Resolver) *Parser {
	p := &Parser{
		l:       l,
		resolve: resolve,
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE, p.parseKeywordLiteral)
	p.registerPrefix(token.FALSE, p.parseKeywordLiteral)
	p.registerPrefix(token.NONE, p.parseKeywordLiteral)
	p.registerPrefix(token.MINUS, p.parseMinus)
	p.registerPrefix(token.PLUS, p.parsePlus)
	p.registerPrefix(token.NOT, p.parseNot)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for tok := range infixOperators {
		p.registerInfix(tok, p.parseInfixExpression)
	}
	p.registerInfix(token.LPAREN, p.parseCallExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Parse parses a whole cell. A leading "=" is accepted and ignored. Blank
// input yields an empty body.
func Parse(input string, resolve Resolver) (*Result, error) {
	p := New(lexer.New(input), resolve)
	return p.ParseCell()
}

func (p *Parser) ParseCell() (*Result, error) {
	if p.curTokenIs(token.ASSIGN) {
		p.nextToken()
	}
	if !p.curTokenIs(token.EOF) {
		if p.parseExpression(LOWEST) && !p.peekTokenIs(token.EOF) {
			p.nextToken()
			if p.curTokenIs(token.RPAREN) {
				p.fail(value.ErrUnmatchedParens)
			} else {
				p.fail(value.ErrUnexpectedToken)
			}
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return &Result{Parsed: p.out, Refs: p.refs}, nil
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

// fail records the first error at the current token.
func (p *Parser) fail(code value.Value) bool {
	if p.err == nil {
		p.err = &Error{Code: code, Position: p.curToken.Position, Literal: p.curToken.Literal}
	}
	return false
}

func precedence(t token.TokenType) int {
	if t == token.LPAREN {
		return CALL
	}
	if sym, ok := infixOperators[t]; ok {
		return symbol.Precedence(sym)
	}
	return 0
}

func (p *Parser) peekPrecedence() int {
	return precedence(p.peekToken.Type)
}

func (p *Parser) emit(atoms ...object.Atom) {
	p.out = append(p.out, atoms...)
}

func (p *Parser) parseExpression(prec int) bool {
	start := len(p.out)
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		return p.noPrefixParseFnError()
	}
	if !prefix() {
		return false
	}

	for !p.peekTokenIs(token.EOF) && prec < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		p.nextToken()
		if !infix(start) {
			return false
		}
	}
	return true
}

func (p *Parser) noPrefixParseFnError() bool {
	switch p.curToken.Type {
	case token.UNTERMINATED_STRING:
		return p.fail(value.ErrUnterminatedString)
	case token.INVALID_NUMBER:
		return p.fail(value.ErrInvalidFloat)
	case token.ILLEGAL:
		return p.fail(value.ErrUnknownToken)
	case token.RPAREN:
		return p.fail(value.ErrUnmatchedParens)
	default:
		return p.fail(value.ErrUnexpectedToken)
	}
}

func (p *Parser) parseIdentifier() bool {
	if p.resolve != nil {
		if sym, ok := p.resolve(p.curToken.Literal); ok {
			if !slices.Contains(p.refs, sym) {
				p.refs = append(p.refs, sym)
			}
			p.emit(&object.Symbol{Value: sym})
			return true
		}
	}
	if m, ok := symbol.ModuleByName(p.curToken.Literal); ok {
		p.emit(&object.Symbol{Value: m.Symbol})
		return true
	}
	return p.fail(value.ErrUnknownSymbol)
}

func (p *Parser) parseNumberLiteral() bool {
	f, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		return p.fail(value.ErrInvalidFloat)
	}
	p.emit(&object.Numeric{Value: f})
	return true
}

func (p *Parser) parseStringLiteral() bool {
	p.emit(&object.String{Value: p.curToken.Literal})
	return true
}

func (p *Parser) parseKeywordLiteral() bool {
	p.emit(&object.Symbol{Value: literals[p.curToken.Type]})
	return true
}

// parseMinus folds negative number literals and rewrites -x as 0 - x.
func (p *Parser) parseMinus() bool {
	start := len(p.out)
	p.nextToken()
	if !p.parseExpression(PREFIX) {
		return false
	}
	if len(p.out) == start+1 {
		if n, ok := p.out[start].(*object.Numeric); ok {
			p.out[start] = &object.Numeric{Value: -n.Value}
			return true
		}
	}
	operand := slices.Clone(p.out[start:])
	p.out = append(p.out[:start], &object.Numeric{Value: 0})
	p.emit(operand...)
	p.emit(&object.Symbol{Value: value.SymMinus})
	return true
}

func (p *Parser) parsePlus() bool {
	p.nextToken()
	return p.parseExpression(PREFIX)
}

func (p *Parser) parseNot() bool {
	p.nextToken()
	if !p.parseExpression(symbol.Precedence(value.SymNot)) {
		return false
	}
	p.emit(&object.Symbol{Value: value.SymNot})
	return true
}

func (p *Parser) parseGroupedExpression() bool {
	p.nextToken()
	if !p.parseExpression(LOWEST) {
		return false
	}
	if !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return p.fail(value.ErrUnmatchedParens)
	}
	p.nextToken()
	return true
}

func (p *Parser) parseInfixExpression(start int) bool {
	op := infixOperators[p.curToken.Type]
	prec := precedence(p.curToken.Type)
	p.nextToken()
	if !p.parseExpression(prec) {
		return false
	}
	p.emit(&object.Symbol{Value: op})
	return true
}

// parseCallExpression moves the callee, already emitted at out[start:], behind
// the arguments: args..., count, callee..., __call__.
func (p *Parser) parseCallExpression(start int) bool {
	callee := slices.Clone(p.out[start:])
	p.out = p.out[:start]

	count := 0
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
	} else {
		for {
			p.nextToken()
			if !p.parseExpression(LOWEST) {
				return false
			}
			count++
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
				continue
			}
			if !p.peekTokenIs(token.RPAREN) {
				p.nextToken()
				return p.fail(value.ErrUnmatchedParens)
			}
			p.nextToken()
			break
		}
	}

	p.emit(&object.Numeric{Value: float64(count)})
	p.emit(callee...)
	p.emit(&object.Symbol{Value: value.SymCallFn})
	return true
}
