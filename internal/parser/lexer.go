package parser

import (
	"strings"
	"unicode"
)

// Lex performs lexical analysis on ST source text and returns the token
// stream terminated by an EOF token. Keywords are recognized
// case-insensitively but only on whole words.
func Lex(input string) ([]Token, error) {
	var tokens []Token

	line, col := 1, 1
	i := 0

	advance := func(n int) {
		for k := 0; k < n && i < len(input); k++ {
			if input[i] == '\n' {
				line++
				col = 1
			} else {
				col++
			}
			i++
		}
	}

	for i < len(input) {
		c := input[i]

		if isSpace(c) {
			advance(1)
			continue
		}

		// Line comment: // ...
		if c == '/' && i+1 < len(input) && input[i+1] == '/' {
			for i < len(input) && input[i] != '\n' {
				advance(1)
			}
			continue
		}

		// Block comments: (* ... *) and /* ... */
		if c == '(' && i+1 < len(input) && input[i+1] == '*' {
			advance(2)
			for i+1 < len(input) && !(input[i] == '*' && input[i+1] == ')') {
				advance(1)
			}
			advance(2)
			continue
		}
		if c == '/' && i+1 < len(input) && input[i+1] == '*' {
			advance(2)
			for i+1 < len(input) && !(input[i] == '*' && input[i+1] == '/') {
				advance(1)
			}
			advance(2)
			continue
		}

		startLine, startCol := line, col

		// Identifier, keyword, or typed literal with word prefix (T#10ms).
		if isIdentStart(c) {
			start := i
			for i < len(input) && isIdentChar(input[i]) {
				advance(1)
			}
			word := input[start:i]

			if i < len(input) && input[i] == '#' {
				advance(1)
				for i < len(input) && isBasedChar(input[i]) {
					advance(1)
				}
				tokens = append(tokens, Token{Type: TokenTypedLiteral, Value: input[start:i], Line: startLine, Col: startCol})
				continue
			}

			upper := strings.ToUpper(word)
			switch {
			case wordLiterals[upper]:
				tokens = append(tokens, Token{Type: TokenNumber, Value: upper, Line: startLine, Col: startCol})
			case keywords[upper]:
				tokens = append(tokens, Token{Type: TokenKeyword, Value: upper, Line: startLine, Col: startCol})
			default:
				tokens = append(tokens, Token{Type: TokenIdent, Value: word, Line: startLine, Col: startCol})
			}
			continue
		}

		// Number or based literal with numeric prefix (16#FF, 2#1010).
		if isDigit(c) {
			start := i
			for i < len(input) && isDigit(input[i]) {
				advance(1)
			}
			if i < len(input) && input[i] == '#' {
				advance(1)
				for i < len(input) && isBasedChar(input[i]) {
					advance(1)
				}
				tokens = append(tokens, Token{Type: TokenTypedLiteral, Value: input[start:i], Line: startLine, Col: startCol})
				continue
			}
			// Fraction, but not the `..` of an array range.
			if i+1 < len(input) && input[i] == '.' && isDigit(input[i+1]) {
				advance(1)
				for i < len(input) && isDigit(input[i]) {
					advance(1)
				}
			}
			// Exponent.
			if i < len(input) && (input[i] == 'e' || input[i] == 'E') {
				j := i + 1
				if j < len(input) && (input[j] == '+' || input[j] == '-') {
					j++
				}
				if j < len(input) && isDigit(input[j]) {
					advance(j - i)
					for i < len(input) && isDigit(input[i]) {
						advance(1)
					}
				}
			}
			tokens = append(tokens, Token{Type: TokenNumber, Value: input[start:i], Line: startLine, Col: startCol})
			continue
		}

		// String literal in single quotes.
		if c == '\'' {
			start := i
			advance(1)
			for i < len(input) && input[i] != '\'' {
				advance(1)
			}
			advance(1) // closing quote
			tokens = append(tokens, Token{Type: TokenString, Value: input[start:i], Line: startLine, Col: startCol})
			continue
		}

		// Multi-byte operators before single-byte ones.
		switch {
		case strings.HasPrefix(input[i:], ":="):
			tokens = append(tokens, Token{Type: TokenAssign, Value: ":=", Line: startLine, Col: startCol})
			advance(2)
		case strings.HasPrefix(input[i:], "<>"),
			strings.HasPrefix(input[i:], "<="),
			strings.HasPrefix(input[i:], ">="):
			tokens = append(tokens, Token{Type: TokenOp, Value: input[i : i+2], Line: startLine, Col: startCol})
			advance(2)
		case strings.HasPrefix(input[i:], ".."):
			tokens = append(tokens, Token{Type: TokenDotDot, Value: "..", Line: startLine, Col: startCol})
			advance(2)
		default:
			var tt TokenType
			switch c {
			case '=', '<', '>', '+', '-', '*', '/':
				tt = TokenOp
			case '(':
				tt = TokenLParen
			case ')':
				tt = TokenRParen
			case '[':
				tt = TokenLBracket
			case ']':
				tt = TokenRBracket
			case ';':
				tt = TokenSemicolon
			case ':':
				tt = TokenColon
			case ',':
				tt = TokenComma
			default:
				return nil, &LexError{Ch: c, Line: line, Col: col}
			}
			tokens = append(tokens, Token{Type: tt, Value: string(c), Line: startLine, Col: startCol})
			advance(1)
		}
	}

	tokens = append(tokens, Token{Type: TokenEOF, Value: "", Line: line, Col: col})
	return tokens, nil
}

func isIdentStart(c byte) bool {
	return unicode.IsLetter(rune(c)) || c == '_'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isBasedChar(c byte) bool {
	return isIdentChar(c) || c == '.' || c == '-'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
