package lexer

import (
	"unicode"
	"unicode/utf8"

	"arevel/internal/token"
)

type Lexer struct {
	input        string
	position     int       // current byte position in input (points to start of current rune)
	readPosition int       // next byte position in input (start of next rune)
	ch           rune      // current rune under examination; 0 means EOF
	currentMode  Tokenizer // Current tokenizer strategy
}

type Tokenizer interface {
	NextToken() token.Token
}

func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.switchMode(NewGeneralTokenizer(l))
	l.readChar()
	return l
}

func (l *Lexer) switchMode(mode Tokenizer) {
	l.currentMode = mode
}

func (l *Lexer) NextToken() token.Token {
	return l.currentMode.NextToken()
}

// Tokenize reads every token of input up to and including EOF.
func Tokenize(input string) []token.Token {
	l := New(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

func (l *Lexer) handleCompoundToken(
	t token.TokenType,
	ch1 rune,
	t1 token.TokenType,
) token.Token {
	startPosition := l.position
	if l.peekChar() == ch1 {
		first := l.ch
		l.readChar()
		literal := string(first) + string(l.ch)
		return token.Token{Type: t1, Literal: literal, Position: startPosition}
	}
	return newToken(t, l.ch, startPosition)
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
}

// readChar advances by one UTF-8 rune, updating byte positions
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

// peekChar returns the next rune without advancing; returns 0 at EOF
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// readIdentifier returns the substring (bytes) covering the identifier runes
func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber reads digits with an optional fraction and exponent. It reports
// false for a dangling exponent or a second decimal point.
func (l *Lexer) readNumber() (string, bool) {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		if !isDigit(l.ch) {
			l.skipNumber()
			return l.input[start:l.position], false
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == '.' || isLetter(l.ch) {
		l.skipNumber()
		return l.input[start:l.position], false
	}
	return l.input[start:l.position], true
}

func (l *Lexer) skipNumber() {
	for l.ch == '.' || isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
}

// Unicode-aware helpers
func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.Is(unicode.Mn, ch) || unicode.Is(unicode.Mc, ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func newToken(tokenType token.TokenType, ch rune, position int) token.Token {
	return token.Token{Type: tokenType, Literal: string(ch), Position: position}
}
