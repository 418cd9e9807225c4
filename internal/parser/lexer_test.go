package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexBasics(t *testing.T) {
	tokens, err := Lex("x := 1;")
	require.NoError(t, err)

	types := tokenTypes(tokens)
	assert.Equal(t, []TokenType{TokenIdent, TokenAssign, TokenNumber, TokenSemicolon, TokenEOF}, types)
	assert.Equal(t, "x", tokens[0].Value)
	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 1, tokens[0].Col)
}

func TestLexKeywordsAndIdents(t *testing.T) {
	tokens, err := Lex("IF enabled THEN count := count + 1; END_IF;")
	require.NoError(t, err)

	assert.Equal(t, TokenKeyword, tokens[0].Type)
	assert.Equal(t, "IF", tokens[0].Value)
	assert.Equal(t, TokenIdent, tokens[1].Type)
	assert.Equal(t, TokenKeyword, tokens[2].Type)

	// keywords are case-insensitive and normalized to upper case
	tokens, err = Lex("if x then end_if;")
	require.NoError(t, err)
	assert.Equal(t, TokenKeyword, tokens[0].Type)
	assert.Equal(t, "IF", tokens[0].Value)
}

func TestLexComments(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"line comment", "// note\nx := 1;"},
		{"pascal block", "(* note *) x := 1;"},
		{"c block", "/* note */ x := 1;"},
		{"multiline block", "(* line1\nline2 *)\nx := 1;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Lex(tt.code)
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(tokens), 2)
			assert.Equal(t, "x", tokens[0].Value)
		})
	}
}

func TestLexOperators(t *testing.T) {
	tokens, err := Lex("a <> b <= c >= d < e > f")
	require.NoError(t, err)

	var ops []string
	for _, tok := range tokens {
		if tok.Type == TokenOp {
			ops = append(ops, tok.Value)
		}
	}
	assert.Equal(t, []string{"<>", "<=", ">=", "<", ">"}, ops)
}

func TestLexNumbers(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected []string
	}{
		{"integer", "42", []string{"42"}},
		{"real", "3.14", []string{"3.14"}},
		{"exponent", "1.5e3", []string{"1.5e3"}},
		{"range stays two numbers", "1..5", []string{"1", "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Lex(tt.code)
			require.NoError(t, err)
			var nums []string
			for _, tok := range tokens {
				if tok.Type == TokenNumber {
					nums = append(nums, tok.Value)
				}
			}
			assert.Equal(t, tt.expected, nums)
		})
	}
}

func TestLexTypedLiterals(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"T#10ms", "T#10ms"},
		{"t#5s", "t#5s"},
		{"16#FF", "16#FF"},
		{"INT#0", "INT#0"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			tokens, err := Lex(tt.code)
			require.NoError(t, err)
			require.Equal(t, TokenTypedLiteral, tokens[0].Type)
			assert.Equal(t, tt.expected, tokens[0].Value)
		})
	}
}

func TestLexString(t *testing.T) {
	tokens, err := Lex("msg := 'hello';")
	require.NoError(t, err)
	assert.Equal(t, TokenString, tokens[2].Type)
}

func TestLexErrorPosition(t *testing.T) {
	_, err := Lex("x := 1;\n@")
	require.Error(t, err)

	var lexErr *LexError
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, 2, lexErr.Line)
	assert.Equal(t, 1, lexErr.Col)
}

func tokenTypes(tokens []Token) []TokenType {
	types := make([]TokenType, 0, len(tokens))
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	return types
}
