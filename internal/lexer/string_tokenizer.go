package lexer

import (
	"strings"

	"arevel/internal/token"
)

// StringTokenizer reads a quoted string. Either quote style may open a string
// and only the same quote closes it.
type StringTokenizer struct {
	lexer *Lexer
	quote rune
}

func NewStringTokenizer(lexer *Lexer, quote rune) *StringTokenizer {
	return &StringTokenizer{lexer: lexer, quote: quote}
}

func (s *StringTokenizer) NextToken() token.Token {
	var result strings.Builder
	startPosition := s.lexer.position - 1

	// Fall back to the general tokenizer mode after the string ends
	defer s.lexer.switchMode(NewGeneralTokenizer(s.lexer))

	for {
		if s.lexer.ch == 0 {
			return token.Token{
				Type:     token.UNTERMINATED_STRING,
				Literal:  result.String(),
				Position: startPosition,
			}
		}

		if s.lexer.ch == s.quote {
			s.lexer.readChar() // Consume the closing quote
			break
		}

		if s.lexer.ch == '\\' {
			s.lexer.readChar() // Move to the escaped character
			switch s.lexer.ch {
			case 'n':
				result.WriteRune('\n')
			case 'r':
				result.WriteRune('\r')
			case 't':
				result.WriteRune('\t')
			case '\\', '"', '\'':
				result.WriteRune(s.lexer.ch)
			case 0:
				continue
			default:
				result.WriteRune('\\')
				result.WriteRune(s.lexer.ch)
			}
		} else {
			result.WriteRune(s.lexer.ch)
		}

		s.lexer.readChar()
	}

	return token.Token{
		Type:     token.STRING,
		Literal:  result.String(),
		Position: startPosition,
	}
}
