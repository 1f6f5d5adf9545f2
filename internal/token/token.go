package token

import "strings"

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Lexing failures that map to their own error codes
	UNTERMINATED_STRING = "UNTERMINATED_STRING"
	INVALID_NUMBER      = "INVALID_NUMBER"

	// Identifiers + literals
	IDENT  = "IDENT"  // price, Total_2, ...
	NUMBER = "NUMBER" // 1343456, 1.5e3
	STRING = "STRING" // "foobar"

	// Operators
	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	ASTERISK = "*"
	SLASH    = "/"
	PERCENT  = "%"

	LT    = "<"
	LT_EQ = "<="
	GT    = ">"
	GT_EQ = ">="

	EQ     = "=="
	NOT_EQ = "!="

	// Delimiters
	PERIOD    = "."
	COMMA     = ","
	SEMICOLON = ";"
	COLON     = ":"

	LPAREN   = "("
	RPAREN   = ")"
	LBRACE   = "{"
	RBRACE   = "}"
	LBRACKET = "["
	RBRACKET = "]"

	// Keywords
	AND   = "AND"
	OR    = "OR"
	NOT   = "NOT"
	TRUE  = "TRUE"
	FALSE = "FALSE"
	NONE  = "NONE"
)

type Token struct {
	Type     TokenType
	Literal  string
	Position int // the src index of the token
}

// Keywords are matched case insensitively, so "and", "And" and "AND" are the
// same token.
var keywords = map[string]TokenType{
	"and":   AND,
	"or":    OR,
	"not":   NOT,
	"true":  TRUE,
	"false": FALSE,
	"none":  NONE,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[strings.ToLower(ident)]; ok {
		return tok
	}
	return IDENT
}
