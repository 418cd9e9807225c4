// Package unparser renders the canonical AST back to ST source text with
// fixed indentation and upper-cased keywords.
package unparser

import (
	"fmt"
	"strings"

	"github.com/oscat-labs/stlin/internal/ast"
)

const indentUnit = "    "

// Unparse renders a whole file. Units are separated by a blank line.
func Unparse(f *ast.File) string {
	parts := make([]string, 0, len(f.Units))
	for _, u := range f.Units {
		parts = append(parts, UnparseUnit(u))
	}
	return strings.Join(parts, "\n")
}

// UnparseUnit renders a single program organization unit.
func UnparseUnit(u *ast.Unit) string {
	var b strings.Builder

	b.WriteString(u.Kind.String() + " " + u.Name)
	if u.Kind == ast.KindFunction && u.ReturnType != nil {
		b.WriteString(" : " + ast.TypeString(u.ReturnType))
	}
	b.WriteString("\n")

	writeVarBlocks(&b, u.VarBlocks)
	writeStmts(&b, u.Body, 1)

	b.WriteString("END_" + u.Kind.String() + "\n")
	return b.String()
}

// writeVarBlocks flattens the declarations and re-groups consecutive runs
// sharing a storage class and qualifier into printed blocks. Declarations are
// never reordered across storage-class boundaries.
func writeVarBlocks(b *strings.Builder, blocks []*ast.VarBlock) {
	type flatDecl struct {
		storage   ast.Storage
		qualifier ast.Qualifier
		decl      *ast.VarDecl
	}
	var flat []flatDecl
	for _, vb := range blocks {
		for _, d := range vb.Decls {
			flat = append(flat, flatDecl{vb.Storage, vb.Qualifier, d})
		}
	}

	i := 0
	for i < len(flat) {
		storage, qualifier := flat[i].storage, flat[i].qualifier

		header := storage.String()
		if qualifier != ast.QualNone {
			header += " " + qualifier.String()
		}
		b.WriteString(header + "\n")

		for i < len(flat) && flat[i].storage == storage && flat[i].qualifier == qualifier {
			d := flat[i].decl
			fmt.Fprintf(b, "%s%s : %s", indentUnit, d.Name, ast.TypeString(d.Type))
			if d.Init != nil {
				b.WriteString(" := " + ExprString(d.Init))
			}
			b.WriteString(";\n")
			i++
		}
		b.WriteString("END_VAR\n")
	}
}

func writeStmts(b *strings.Builder, stmts []ast.Stmt, indent int) {
	for _, s := range stmts {
		writeStmt(b, s, indent)
	}
}

func writeStmt(b *strings.Builder, s ast.Stmt, indent int) {
	pad := strings.Repeat(indentUnit, indent)

	switch s := s.(type) {
	case *ast.AssignStmt:
		fmt.Fprintf(b, "%s%s := %s;\n", pad, ExprString(s.Target), ExprString(s.Value))

	case *ast.IfStmt:
		fmt.Fprintf(b, "%sIF %s THEN\n", pad, ExprString(s.Cond))
		writeStmts(b, s.Then, indent+1)
		for _, e := range s.Elifs {
			fmt.Fprintf(b, "%sELSIF %s THEN\n", pad, ExprString(e.Cond))
			writeStmts(b, e.Body, indent+1)
		}
		if len(s.Else) > 0 {
			fmt.Fprintf(b, "%sELSE\n", pad)
			writeStmts(b, s.Else, indent+1)
		}
		fmt.Fprintf(b, "%sEND_IF;\n", pad)

	case *ast.CaseStmt:
		fmt.Fprintf(b, "%sCASE %s OF\n", pad, ExprString(s.Cond))
		for _, e := range s.Entries {
			fmt.Fprintf(b, "%s%s%s:\n", pad, indentUnit, strings.Join(e.Values, ", "))
			writeStmts(b, e.Body, indent+2)
		}
		if len(s.Else) > 0 {
			fmt.Fprintf(b, "%s%sELSE\n", pad, indentUnit)
			writeStmts(b, s.Else, indent+2)
		}
		fmt.Fprintf(b, "%sEND_CASE;\n", pad)

	case *ast.ForStmt:
		fmt.Fprintf(b, "%sFOR %s := %s TO %s", pad, s.Var, ExprString(s.From), ExprString(s.To))
		if s.Step != nil {
			b.WriteString(" BY " + ExprString(s.Step))
		}
		b.WriteString(" DO\n")
		writeStmts(b, s.Body, indent+1)
		fmt.Fprintf(b, "%sEND_FOR;\n", pad)

	case *ast.WhileStmt:
		fmt.Fprintf(b, "%sWHILE %s DO\n", pad, ExprString(s.Cond))
		writeStmts(b, s.Body, indent+1)
		fmt.Fprintf(b, "%sEND_WHILE;\n", pad)

	case *ast.RepeatStmt:
		fmt.Fprintf(b, "%sREPEAT\n", pad)
		writeStmts(b, s.Body, indent+1)
		fmt.Fprintf(b, "%sUNTIL %s\n", pad, ExprString(s.Until))
		fmt.Fprintf(b, "%sEND_REPEAT;\n", pad)

	case *ast.CallStmt:
		fmt.Fprintf(b, "%s%s(%s);\n", pad, s.Name, argList(s.Args))

	case *ast.ReturnStmt:
		fmt.Fprintf(b, "%sRETURN;\n", pad)

	case *ast.ExitStmt:
		fmt.Fprintf(b, "%sEXIT;\n", pad)

	case *ast.ContinueStmt:
		fmt.Fprintf(b, "%sCONTINUE;\n", pad)
	}
}

// ExprString renders an expression as source text. Binary expressions are
// parenthesized so operator structure survives a re-parse unchanged.
func ExprString(e ast.Expr) string {
	switch e := e.(type) {
	case nil:
		return ""
	case *ast.VarRef:
		return e.Name
	case *ast.Literal:
		return e.Raw
	case *ast.BinaryExpr:
		return "(" + ExprString(e.Left) + " " + e.Op + " " + ExprString(e.Right) + ")"
	case *ast.UnaryExpr:
		if e.Op == "NOT" {
			return "NOT " + ExprString(e.Operand)
		}
		return e.Op + ExprString(e.Operand)
	case *ast.CallExpr:
		return e.Name + "(" + argList(e.Args) + ")"
	default:
		return ""
	}
}

func argList(args []*ast.Arg) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if a.Name != "" {
			parts = append(parts, a.Name+" := "+ExprString(a.Value))
		} else {
			parts = append(parts, ExprString(a.Value))
		}
	}
	return strings.Join(parts, ", ")
}
