package parser

import "strings"

// TokenType defines the type of a token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenKeyword
	TokenNumber
	TokenTypedLiteral // industrial literals: T#10ms, 16#FF
	TokenString
	TokenAssign    // :=
	TokenOp        // = <> < > <= >= + - * / MOD-like symbol ops
	TokenLParen    // (
	TokenRParen    // )
	TokenLBracket  // [
	TokenRBracket  // ]
	TokenSemicolon // ;
	TokenColon     // :
	TokenComma     // ,
	TokenDotDot    // ..
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenIdent:
		return "Ident"
	case TokenKeyword:
		return "Keyword"
	case TokenNumber:
		return "Number"
	case TokenTypedLiteral:
		return "TypedLiteral"
	case TokenString:
		return "String"
	case TokenAssign:
		return "Assign"
	case TokenOp:
		return "Op"
	case TokenLParen:
		return "LParen"
	case TokenRParen:
		return "RParen"
	case TokenLBracket:
		return "LBracket"
	case TokenRBracket:
		return "RBracket"
	case TokenSemicolon:
		return "Semicolon"
	case TokenColon:
		return "Colon"
	case TokenComma:
		return "Comma"
	case TokenDotDot:
		return "DotDot"
	default:
		return "Unknown"
	}
}

// Token represents a lexical token. Value holds the canonical text: keywords
// are upper-cased, identifiers keep their source spelling.
type Token struct {
	Type  TokenType
	Value string
	Line  int
	Col   int
}

// keywords holds every reserved word, upper-cased. An identifier only becomes
// a keyword when its whole text matches, so `VARx` stays an identifier.
var keywords = map[string]bool{
	"PROGRAM": true, "END_PROGRAM": true,
	"FUNCTION_BLOCK": true, "END_FUNCTION_BLOCK": true,
	"FUNCTION": true, "END_FUNCTION": true,
	"VAR": true, "VAR_INPUT": true, "VAR_OUTPUT": true, "VAR_IN_OUT": true,
	"VAR_TEMP": true, "VAR_GLOBAL": true, "VAR_EXTERNAL": true, "END_VAR": true,
	"CONSTANT": true, "RETAIN": true, "PERSISTENT": true,
	"IF": true, "THEN": true, "ELSIF": true, "ELSE": true, "END_IF": true,
	"CASE": true, "OF": true, "END_CASE": true,
	"FOR": true, "TO": true, "BY": true, "DO": true, "END_FOR": true,
	"WHILE": true, "END_WHILE": true,
	"REPEAT": true, "UNTIL": true, "END_REPEAT": true,
	"RETURN": true, "EXIT": true, "CONTINUE": true,
	"AND": true, "OR": true, "XOR": true, "NOT": true, "MOD": true,
	"ARRAY": true, "STRUCT": true, "END_STRUCT": true,
}

// wordLiterals are keyword-shaped tokens that are literals, not keywords.
var wordLiterals = map[string]bool{
	"TRUE":  true,
	"FALSE": true,
}

// IsKeyword reports whether word (in any casing) is a reserved keyword.
func IsKeyword(word string) bool {
	return keywords[strings.ToUpper(word)]
}
