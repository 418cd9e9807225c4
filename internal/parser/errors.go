package parser

import (
	"fmt"
	"strings"
)

// LexError reports an unrecognized character in the source text.
type LexError struct {
	Ch   byte
	Line int
	Col  int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("line %d col %d: unrecognized character %q", e.Line, e.Col, e.Ch)
}

// SyntaxError reports an unexpected token together with the set of token
// texts the parser would have accepted at that point.
type SyntaxError struct {
	Got      Token
	Line     int
	Col      int
	Expected []string
}

func (e *SyntaxError) Error() string {
	got := e.Got.Value
	if e.Got.Type == TokenEOF {
		got = "end of input"
	}
	return fmt.Sprintf("line %d col %d: unexpected %q, expected one of: %s",
		e.Line, e.Col, got, strings.Join(e.Expected, ", "))
}
