package lexer

import (
	"arevel/internal/token"
)

type GeneralTokenizer struct {
	lexer *Lexer
}

func NewGeneralTokenizer(lexer *Lexer) *GeneralTokenizer {
	return &GeneralTokenizer{lexer: lexer}
}

func (g *GeneralTokenizer) NextToken() token.Token {
	var tok token.Token

	g.lexer.skipWhitespace()

	startPosition := g.lexer.position

	switch g.lexer.ch {
	case '=':
		tok = g.lexer.handleCompoundToken(token.ASSIGN, '=', token.EQ)
	case '+':
		tok = newToken(token.PLUS, g.lexer.ch, startPosition)
	case '-':
		tok = newToken(token.MINUS, g.lexer.ch, startPosition)
	case '!':
		tok = g.lexer.handleCompoundToken(token.ILLEGAL, '=', token.NOT_EQ)
	case '/':
		tok = newToken(token.SLASH, g.lexer.ch, startPosition)
	case '*':
		tok = newToken(token.ASTERISK, g.lexer.ch, startPosition)
	case '%':
		tok = newToken(token.PERCENT, g.lexer.ch, startPosition)
	case '<':
		tok = g.lexer.handleCompoundToken(token.LT, '=', token.LT_EQ)
	case '>':
		tok = g.lexer.handleCompoundToken(token.GT, '=', token.GT_EQ)
	case ';':
		tok = newToken(token.SEMICOLON, g.lexer.ch, startPosition)
	case ':':
		tok = newToken(token.COLON, g.lexer.ch, startPosition)
	case ',':
		tok = newToken(token.COMMA, g.lexer.ch, startPosition)
	case '.':
		if isDigit(g.lexer.peekChar()) {
			return g.number(startPosition)
		}
		tok = newToken(token.PERIOD, g.lexer.ch, startPosition)
	case '{':
		tok = newToken(token.LBRACE, g.lexer.ch, startPosition)
	case '}':
		tok = newToken(token.RBRACE, g.lexer.ch, startPosition)
	case '(':
		tok = newToken(token.LPAREN, g.lexer.ch, startPosition)
	case ')':
		tok = newToken(token.RPAREN, g.lexer.ch, startPosition)
	case '[':
		tok = newToken(token.LBRACKET, g.lexer.ch, startPosition)
	case ']':
		tok = newToken(token.RBRACKET, g.lexer.ch, startPosition)
	case '"', '\'':
		g.lexer.switchMode(NewStringTokenizer(g.lexer, g.lexer.ch))
		g.lexer.readChar() // consume the opening quote
		return g.lexer.currentMode.NextToken()
	case 0:
		tok.Literal = ""
		tok.Type = token.EOF
		tok.Position = startPosition
		return tok
	default:
		if isLetter(g.lexer.ch) {
			tok.Literal = g.lexer.readIdentifier()
			tok.Type = token.LookupIdent(tok.Literal)
			tok.Position = startPosition
			return tok
		} else if isDigit(g.lexer.ch) {
			return g.number(startPosition)
		}
		tok = newToken(token.ILLEGAL, g.lexer.ch, startPosition)
	}

	g.lexer.readChar()
	return tok
}

func (g *GeneralTokenizer) number(startPosition int) token.Token {
	literal, ok := g.lexer.readNumber()
	if !ok {
		return token.Token{Type: token.INVALID_NUMBER, Literal: literal, Position: startPosition}
	}
	return token.Token{Type: token.NUMBER, Literal: literal, Position: startPosition}
}
