// Package parser implements lexical and syntactic analysis for IEC 61131-3
// Structured Text, producing the canonical AST of the ast package in a single
// pass over the token stream.
package parser

import (
	"strconv"
	"strings"

	"github.com/oscat-labs/stlin/internal/ast"
)

// elementaryTypes lists the builtin scalar type names.
var elementaryTypes = map[string]bool{
	"BOOL": true, "BYTE": true, "WORD": true, "DWORD": true, "LWORD": true,
	"SINT": true, "INT": true, "DINT": true, "LINT": true,
	"USINT": true, "UINT": true, "UDINT": true, "ULINT": true,
	"REAL": true, "LREAL": true,
	"TIME": true, "DATE": true, "TOD": true, "DT": true,
}

// Parse parses source text containing one or more program organization units.
// The returned error is a *LexError or *SyntaxError; parsing never panics
// past this boundary.
func Parse(code string) (*ast.File, error) {
	tokens, err := Lex(preprocess(code))
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	file := &ast.File{}
	for p.cur().Type != TokenEOF {
		unit, err := p.parseUnit()
		if err != nil {
			return nil, err
		}
		file.Units = append(file.Units, unit)
	}
	if len(file.Units) == 0 {
		return nil, p.errExpected("PROGRAM", "FUNCTION_BLOCK", "FUNCTION")
	}
	return file, nil
}

// preprocess strips a BOM and normalizes line endings. Scraped industrial
// sources frequently carry both.
func preprocess(code string) string {
	code = strings.TrimPrefix(code, "\uFEFF")
	return strings.ReplaceAll(strings.TrimSpace(code), "\r\n", "\n")
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) cur() Token {
	return p.tokens[p.pos]
}

func (p *parser) peek(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *parser) next() Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

// gotKeyword consumes the current token if it is the given keyword.
func (p *parser) gotKeyword(kw string) bool {
	if p.atKeyword(kw) {
		p.next()
		return true
	}
	return false
}

func (p *parser) atKeyword(kw string) bool {
	t := p.cur()
	return t.Type == TokenKeyword && t.Value == kw
}

func (p *parser) wantKeyword(kw string) error {
	if !p.gotKeyword(kw) {
		return p.errExpected(kw)
	}
	return nil
}

func (p *parser) want(tt TokenType, desc string) (Token, error) {
	if p.cur().Type != tt {
		return Token{}, p.errExpected(desc)
	}
	return p.next(), nil
}

func (p *parser) errExpected(expected ...string) error {
	t := p.cur()
	return &SyntaxError{Got: t, Line: t.Line, Col: t.Col, Expected: expected}
}

// ----------------------------------------------------------------------------
// Program organization units

func (p *parser) parseUnit() (*ast.Unit, error) {
	switch {
	case p.gotKeyword("PROGRAM"):
		return p.parseUnitRest(ast.KindProgram, "END_PROGRAM", false)
	case p.gotKeyword("FUNCTION_BLOCK"):
		return p.parseUnitRest(ast.KindFunctionBlock, "END_FUNCTION_BLOCK", false)
	case p.gotKeyword("FUNCTION"):
		return p.parseUnitRest(ast.KindFunction, "END_FUNCTION", true)
	default:
		return nil, p.errExpected("PROGRAM", "FUNCTION_BLOCK", "FUNCTION")
	}
}

func (p *parser) parseUnitRest(kind ast.UnitKind, endKw string, withReturn bool) (*ast.Unit, error) {
	name, err := p.want(TokenIdent, "identifier")
	if err != nil {
		return nil, err
	}
	unit := &ast.Unit{Kind: kind, Name: name.Value}

	if withReturn {
		if _, err := p.want(TokenColon, ":"); err != nil {
			return nil, err
		}
		rt, err := p.parseType()
		if err != nil {
			return nil, err
		}
		unit.ReturnType = rt
	}

	for p.atVarBlockStart() {
		vb, err := p.parseVarBlock()
		if err != nil {
			return nil, err
		}
		unit.VarBlocks = append(unit.VarBlocks, vb)
	}

	body, err := p.parseStmts(map[string]bool{endKw: true})
	if err != nil {
		return nil, err
	}
	unit.Body = body

	if err := p.wantKeyword(endKw); err != nil {
		return nil, err
	}
	// Trailing semicolon after END_* is tolerated.
	if p.cur().Type == TokenSemicolon {
		p.next()
	}
	return unit, nil
}

// ----------------------------------------------------------------------------
// Variable blocks

var storageKeywords = map[string]ast.Storage{
	"VAR":          ast.StorageVar,
	"VAR_INPUT":    ast.StorageInput,
	"VAR_OUTPUT":   ast.StorageOutput,
	"VAR_IN_OUT":   ast.StorageInOut,
	"VAR_TEMP":     ast.StorageTemp,
	"VAR_GLOBAL":   ast.StorageGlobal,
	"VAR_EXTERNAL": ast.StorageExternal,
}

func (p *parser) atVarBlockStart() bool {
	t := p.cur()
	if t.Type != TokenKeyword {
		return false
	}
	_, ok := storageKeywords[t.Value]
	return ok
}

func (p *parser) parseVarBlock() (*ast.VarBlock, error) {
	storage := storageKeywords[p.next().Value]
	vb := &ast.VarBlock{Storage: storage}

	switch {
	case p.gotKeyword("CONSTANT"):
		vb.Qualifier = ast.QualConstant
	case p.gotKeyword("RETAIN"):
		vb.Qualifier = ast.QualRetain
	case p.gotKeyword("PERSISTENT"):
		vb.Qualifier = ast.QualPersistent
	}

	for !p.atKeyword("END_VAR") {
		decls, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		vb.Decls = append(vb.Decls, decls...)
	}
	p.next() // END_VAR
	if p.cur().Type == TokenSemicolon {
		p.next()
	}
	return vb, nil
}

// parseVarDecl parses `a, b : TYPE [:= expr] ;` and returns one VarDecl per
// declared name.
func (p *parser) parseVarDecl() ([]*ast.VarDecl, error) {
	var names []string
	for {
		name, err := p.want(TokenIdent, "identifier")
		if err != nil {
			return nil, err
		}
		names = append(names, name.Value)
		if p.cur().Type != TokenComma {
			break
		}
		p.next()
	}

	if _, err := p.want(TokenColon, ":"); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}

	var init ast.Expr
	if p.cur().Type == TokenAssign {
		p.next()
		init, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.want(TokenSemicolon, ";"); err != nil {
		return nil, err
	}

	decls := make([]*ast.VarDecl, 0, len(names))
	for _, n := range names {
		decls = append(decls, &ast.VarDecl{Name: n, Type: typ, Init: init})
	}
	return decls, nil
}

func (p *parser) parseType() (ast.TypeRef, error) {
	if p.gotKeyword("ARRAY") {
		if _, err := p.want(TokenLBracket, "["); err != nil {
			return nil, err
		}
		lower, err := p.parseBound()
		if err != nil {
			return nil, err
		}
		if _, err := p.want(TokenDotDot, ".."); err != nil {
			return nil, err
		}
		upper, err := p.parseBound()
		if err != nil {
			return nil, err
		}
		if _, err := p.want(TokenRBracket, "]"); err != nil {
			return nil, err
		}
		if err := p.wantKeyword("OF"); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &ast.ArrayType{Lower: lower, Upper: upper, Elem: elem}, nil
	}

	if p.gotKeyword("STRUCT") {
		st := &ast.StructType{}
		for !p.atKeyword("END_STRUCT") {
			fields, err := p.parseVarDecl()
			if err != nil {
				return nil, err
			}
			st.Fields = append(st.Fields, fields...)
		}
		p.next() // END_STRUCT
		return st, nil
	}

	name, err := p.want(TokenIdent, "type name")
	if err != nil {
		return nil, err
	}
	upper := strings.ToUpper(name.Value)

	if upper == "STRING" {
		st := &ast.StringType{}
		if p.cur().Type == TokenLParen {
			p.next()
			n, err := p.want(TokenNumber, "string length")
			if err != nil {
				return nil, err
			}
			st.Length, _ = strconv.Atoi(n.Value)
			if _, err := p.want(TokenRParen, ")"); err != nil {
				return nil, err
			}
		}
		return st, nil
	}

	if elementaryTypes[upper] {
		return &ast.ScalarType{Name: upper}, nil
	}
	return &ast.NamedType{Name: name.Value}, nil
}

func (p *parser) parseBound() (int, error) {
	neg := false
	if t := p.cur(); t.Type == TokenOp && t.Value == "-" {
		neg = true
		p.next()
	}
	tok, err := p.want(TokenNumber, "array bound")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok.Value)
	if err != nil {
		return 0, p.errExpected("integer array bound")
	}
	if neg {
		n = -n
	}
	return n, nil
}

// ----------------------------------------------------------------------------
// Statements

// parseStmts parses statements until one of the stop keywords is reached.
func (p *parser) parseStmts(stop map[string]bool) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for {
		t := p.cur()
		if t.Type == TokenEOF {
			return stmts, nil
		}
		if t.Type == TokenKeyword && stop[t.Value] {
			return stmts, nil
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
}

func (p *parser) parseStmt() (ast.Stmt, error) {
	t := p.cur()
	if t.Type == TokenKeyword {
		switch t.Value {
		case "IF":
			return p.parseIf()
		case "CASE":
			return p.parseCase()
		case "FOR":
			return p.parseFor()
		case "WHILE":
			return p.parseWhile()
		case "REPEAT":
			return p.parseRepeat()
		case "RETURN":
			p.next()
			_, err := p.want(TokenSemicolon, ";")
			return &ast.ReturnStmt{}, err
		case "EXIT":
			p.next()
			_, err := p.want(TokenSemicolon, ";")
			return &ast.ExitStmt{}, err
		case "CONTINUE":
			p.next()
			_, err := p.want(TokenSemicolon, ";")
			return &ast.ContinueStmt{}, err
		}
		return nil, p.errExpected("statement")
	}

	if t.Type == TokenIdent {
		// `name(...)` is a call statement; anything else must assign.
		if p.peek(1).Type == TokenLParen {
			return p.parseCallStmt()
		}
		return p.parseAssign()
	}
	return nil, p.errExpected("statement")
}

func (p *parser) parseAssign() (ast.Stmt, error) {
	target, err := p.want(TokenIdent, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.want(TokenAssign, ":="); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.want(TokenSemicolon, ";"); err != nil {
		return nil, err
	}
	return &ast.AssignStmt{Target: &ast.VarRef{Name: target.Value}, Value: value}, nil
}

func (p *parser) parseCallStmt() (ast.Stmt, error) {
	name := p.next().Value
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	if _, err := p.want(TokenSemicolon, ";"); err != nil {
		return nil, err
	}
	return &ast.CallStmt{Name: name, Args: args}, nil
}

func (p *parser) parseIf() (ast.Stmt, error) {
	p.next() // IF
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.wantKeyword("THEN"); err != nil {
		return nil, err
	}

	stop := map[string]bool{"ELSIF": true, "ELSE": true, "END_IF": true}
	then, err := p.parseStmts(stop)
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{Cond: cond, Then: then}

	for p.gotKeyword("ELSIF") {
		econd, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.wantKeyword("THEN"); err != nil {
			return nil, err
		}
		ebody, err := p.parseStmts(stop)
		if err != nil {
			return nil, err
		}
		stmt.Elifs = append(stmt.Elifs, &ast.ElifBranch{Cond: econd, Body: ebody})
	}

	if p.gotKeyword("ELSE") {
		els, err := p.parseStmts(map[string]bool{"END_IF": true})
		if err != nil {
			return nil, err
		}
		stmt.Else = els
	}

	if err := p.wantKeyword("END_IF"); err != nil {
		return nil, err
	}
	if p.cur().Type == TokenSemicolon {
		p.next()
	}
	return stmt, nil
}

func (p *parser) parseCase() (ast.Stmt, error) {
	p.next() // CASE
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.wantKeyword("OF"); err != nil {
		return nil, err
	}

	stmt := &ast.CaseStmt{Cond: cond}
	for p.atCaseLabel() {
		entry := &ast.CaseEntry{}
		for {
			entry.Values = append(entry.Values, p.next().Value)
			if p.cur().Type != TokenComma {
				break
			}
			p.next()
		}
		if _, err := p.want(TokenColon, ":"); err != nil {
			return nil, err
		}
		body, err := p.parseCaseBody()
		if err != nil {
			return nil, err
		}
		entry.Body = body
		stmt.Entries = append(stmt.Entries, entry)
	}
	if len(stmt.Entries) == 0 {
		return nil, p.errExpected("case selection")
	}

	if p.gotKeyword("ELSE") {
		els, err := p.parseStmts(map[string]bool{"END_CASE": true})
		if err != nil {
			return nil, err
		}
		stmt.Else = els
	}

	if err := p.wantKeyword("END_CASE"); err != nil {
		return nil, err
	}
	if p.cur().Type == TokenSemicolon {
		p.next()
	}
	return stmt, nil
}

// parseCaseBody parses statements until the next case label, ELSE, or
// END_CASE.
func (p *parser) parseCaseBody() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for {
		t := p.cur()
		if t.Type == TokenEOF || p.atKeyword("ELSE") || p.atKeyword("END_CASE") || p.atCaseLabel() {
			return stmts, nil
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
}

// atCaseLabel reports whether the tokens ahead form a case selector list,
// i.e. values separated by commas and terminated by a bare colon. Assignments
// use := so a single-token lookahead on the colon is unambiguous, but the
// comma-separated list still needs a scan.
func (p *parser) atCaseLabel() bool {
	j := 0
	for {
		t := p.peek(j)
		if t.Type != TokenNumber && t.Type != TokenIdent && t.Type != TokenTypedLiteral {
			return false
		}
		j++
		switch p.peek(j).Type {
		case TokenComma:
			j++
		case TokenColon:
			return true
		default:
			return false
		}
	}
}

func (p *parser) parseFor() (ast.Stmt, error) {
	p.next() // FOR
	v, err := p.want(TokenIdent, "loop variable")
	if err != nil {
		return nil, err
	}
	if _, err := p.want(TokenAssign, ":="); err != nil {
		return nil, err
	}
	from, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.wantKeyword("TO"); err != nil {
		return nil, err
	}
	to, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	var step ast.Expr
	if p.gotKeyword("BY") {
		step, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if err := p.wantKeyword("DO"); err != nil {
		return nil, err
	}
	body, err := p.parseStmts(map[string]bool{"END_FOR": true})
	if err != nil {
		return nil, err
	}
	if err := p.wantKeyword("END_FOR"); err != nil {
		return nil, err
	}
	if p.cur().Type == TokenSemicolon {
		p.next()
	}
	return &ast.ForStmt{Var: v.Value, From: from, To: to, Step: step, Body: body}, nil
}

func (p *parser) parseWhile() (ast.Stmt, error) {
	p.next() // WHILE
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.wantKeyword("DO"); err != nil {
		return nil, err
	}
	body, err := p.parseStmts(map[string]bool{"END_WHILE": true})
	if err != nil {
		return nil, err
	}
	if err := p.wantKeyword("END_WHILE"); err != nil {
		return nil, err
	}
	if p.cur().Type == TokenSemicolon {
		p.next()
	}
	return &ast.WhileStmt{Cond: cond, Body: body}, nil
}

func (p *parser) parseRepeat() (ast.Stmt, error) {
	p.next() // REPEAT
	body, err := p.parseStmts(map[string]bool{"UNTIL": true})
	if err != nil {
		return nil, err
	}
	if err := p.wantKeyword("UNTIL"); err != nil {
		return nil, err
	}
	until, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur().Type == TokenSemicolon {
		p.next()
	}
	if err := p.wantKeyword("END_REPEAT"); err != nil {
		return nil, err
	}
	if p.cur().Type == TokenSemicolon {
		p.next()
	}
	return &ast.RepeatStmt{Body: body, Until: until}, nil
}

// ----------------------------------------------------------------------------
// Expressions
//
// Precedence low to high: OR/XOR, AND, = <>, < > <= >=, + -, * / MOD, unary.

func (p *parser) parseExpr() (ast.Expr, error) {
	return p.parseBinary(0)
}

var binaryLevels = []map[string]bool{
	{"OR": true, "XOR": true},
	{"AND": true},
	{"=": true, "<>": true},
	{"<": true, ">": true, "<=": true, ">=": true},
	{"+": true, "-": true},
	{"*": true, "/": true, "MOD": true},
}

func (p *parser) parseBinary(level int) (ast.Expr, error) {
	if level >= len(binaryLevels) {
		return p.parseUnary()
	}
	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	ops := binaryLevels[level]
	for {
		t := p.cur()
		isOp := (t.Type == TokenOp || t.Type == TokenKeyword) && ops[t.Value]
		if !isOp {
			return left, nil
		}
		p.next()
		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: t.Value, Left: left, Right: right}
	}
}

func (p *parser) parseUnary() (ast.Expr, error) {
	t := p.cur()
	if t.Type == TokenKeyword && t.Value == "NOT" {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: "NOT", Operand: operand}, nil
	}
	if t.Type == TokenOp && t.Value == "-" {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: "-", Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	t := p.cur()
	switch t.Type {
	case TokenNumber, TokenTypedLiteral, TokenString:
		p.next()
		return &ast.Literal{Raw: t.Value}, nil
	case TokenLParen:
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.want(TokenRParen, ")"); err != nil {
			return nil, err
		}
		return inner, nil
	case TokenIdent:
		p.next()
		if p.cur().Type == TokenLParen {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return &ast.CallExpr{Name: t.Value, Args: args}, nil
		}
		return &ast.VarRef{Name: t.Value}, nil
	default:
		return nil, p.errExpected("expression")
	}
}

// parseArgs parses a parenthesized argument list supporting both positional
// and formal `name := expr` forms. The := keeps formal arguments
// distinguishable from an equality comparison in the same position.
func (p *parser) parseArgs() ([]*ast.Arg, error) {
	if _, err := p.want(TokenLParen, "("); err != nil {
		return nil, err
	}
	var args []*ast.Arg
	if p.cur().Type == TokenRParen {
		p.next()
		return args, nil
	}
	for {
		arg := &ast.Arg{}
		if p.cur().Type == TokenIdent && p.peek(1).Type == TokenAssign {
			arg.Name = p.next().Value
			p.next() // :=
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		arg.Value = value
		args = append(args, arg)

		if p.cur().Type == TokenComma {
			p.next()
			continue
		}
		break
	}
	if _, err := p.want(TokenRParen, ")"); err != nil {
		return nil, err
	}
	return args, nil
}
