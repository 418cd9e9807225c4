package ast

import (
	"fmt"
	"strings"
)

// Result is the stable, JSON-serializable outcome shape consumed by external
// tooling. Status is "success" or "error"; AST is present only on success.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	AST     any    `json:"ast,omitempty"`
}

// Success wraps a parsed file into a success result.
func Success(f *File) Result {
	return Result{Status: "success", AST: FileJSON(f)}
}

// Failure wraps an error message into an error result.
func Failure(msg string) Result {
	return Result{Status: "error", Message: msg}
}

// FileJSON converts a file to the language-neutral map form. The field names
// are a contract with external consumers and must not drift with internal
// struct naming.
func FileJSON(f *File) any {
	units := make([]any, 0, len(f.Units))
	for _, u := range f.Units {
		units = append(units, unitJSON(u))
	}
	return units
}

func unitJSON(u *Unit) map[string]any {
	m := map[string]any{
		"unit_type":  u.Kind.String(),
		"name":       u.Name,
		"var_blocks": varBlocksJSON(u.VarBlocks),
		"body":       stmtsJSON(u.Body),
	}
	if u.ReturnType != nil {
		m["return_type"] = TypeString(u.ReturnType)
	}
	return m
}

func varBlocksJSON(blocks []*VarBlock) []any {
	out := make([]any, 0, len(blocks))
	for _, vb := range blocks {
		decls := make([]any, 0, len(vb.Decls))
		for _, d := range vb.Decls {
			dm := map[string]any{
				"name": d.Name,
				"type": TypeString(d.Type),
			}
			if d.Init != nil {
				dm["init"] = exprJSON(d.Init)
			}
			decls = append(decls, dm)
		}
		bm := map[string]any{
			"storage": vb.Storage.String(),
			"decls":   decls,
		}
		if vb.Qualifier != QualNone {
			bm["qualifier"] = vb.Qualifier.String()
		}
		out = append(out, bm)
	}
	return out
}

func stmtsJSON(stmts []Stmt) []any {
	out := make([]any, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, stmtJSON(s))
	}
	return out
}

func stmtJSON(s Stmt) map[string]any {
	switch s := s.(type) {
	case *AssignStmt:
		return map[string]any{
			"stmt_type": "assign",
			"target":    exprJSON(s.Target),
			"value":     exprJSON(s.Value),
		}
	case *IfStmt:
		elifs := make([]any, 0, len(s.Elifs))
		for _, e := range s.Elifs {
			elifs = append(elifs, map[string]any{
				"cond":      exprJSON(e.Cond),
				"then_body": stmtsJSON(e.Body),
			})
		}
		return map[string]any{
			"stmt_type":     "if",
			"cond":          exprJSON(s.Cond),
			"then_body":     stmtsJSON(s.Then),
			"elif_branches": elifs,
			"else_body":     stmtsJSON(s.Else),
		}
	case *CaseStmt:
		entries := make([]any, 0, len(s.Entries))
		for _, e := range s.Entries {
			entries = append(entries, map[string]any{
				"values": e.Values,
				"body":   stmtsJSON(e.Body),
			})
		}
		return map[string]any{
			"stmt_type": "case",
			"cond":      exprJSON(s.Cond),
			"entries":   entries,
			"else_body": stmtsJSON(s.Else),
		}
	case *ForStmt:
		m := map[string]any{
			"stmt_type": "for",
			"var":       s.Var,
			"start":     exprJSON(s.From),
			"end":       exprJSON(s.To),
			"body":      stmtsJSON(s.Body),
		}
		if s.Step != nil {
			m["step"] = exprJSON(s.Step)
		}
		return m
	case *WhileStmt:
		return map[string]any{
			"stmt_type": "while",
			"cond":      exprJSON(s.Cond),
			"body":      stmtsJSON(s.Body),
		}
	case *RepeatStmt:
		return map[string]any{
			"stmt_type":  "repeat",
			"body":       stmtsJSON(s.Body),
			"until_cond": exprJSON(s.Until),
		}
	case *CallStmt:
		return map[string]any{
			"stmt_type": "call",
			"func_name": s.Name,
			"args":      argsJSON(s.Args),
		}
	case *ReturnStmt:
		return map[string]any{"stmt_type": "return"}
	case *ExitStmt:
		return map[string]any{"stmt_type": "exit"}
	case *ContinueStmt:
		return map[string]any{"stmt_type": "continue"}
	default:
		return map[string]any{"stmt_type": "unknown"}
	}
}

func exprJSON(e Expr) map[string]any {
	switch e := e.(type) {
	case *VarRef:
		return map[string]any{"expr_type": "var", "name": e.Name}
	case *Literal:
		return map[string]any{"expr_type": "literal", "value": e.Raw}
	case *BinaryExpr:
		return map[string]any{
			"expr_type": "binop",
			"op":        e.Op,
			"left":      exprJSON(e.Left),
			"right":     exprJSON(e.Right),
		}
	case *UnaryExpr:
		return map[string]any{
			"expr_type": "unaryop",
			"op":        e.Op,
			"operand":   exprJSON(e.Operand),
		}
	case *CallExpr:
		return map[string]any{
			"expr_type": "call",
			"func_name": e.Name,
			"args":      argsJSON(e.Args),
		}
	default:
		return map[string]any{"expr_type": "unknown"}
	}
}

func argsJSON(args []*Arg) []any {
	out := make([]any, 0, len(args))
	for _, a := range args {
		m := map[string]any{"value": exprJSON(a.Value)}
		if a.Name != "" {
			m["param_name"] = a.Name
		}
		out = append(out, m)
	}
	return out
}

// TypeString renders a type reference as source text.
func TypeString(t TypeRef) string {
	switch t := t.(type) {
	case nil:
		return ""
	case *ScalarType:
		return t.Name
	case *StringType:
		if t.Length > 0 {
			return fmt.Sprintf("STRING(%d)", t.Length)
		}
		return "STRING"
	case *ArrayType:
		return fmt.Sprintf("ARRAY [%d..%d] OF %s", t.Lower, t.Upper, TypeString(t.Elem))
	case *StructType:
		var b strings.Builder
		b.WriteString("STRUCT ")
		for _, f := range t.Fields {
			fmt.Fprintf(&b, "%s : %s; ", f.Name, TypeString(f.Type))
		}
		b.WriteString("END_STRUCT")
		return b.String()
	case *NamedType:
		return t.Name
	default:
		return ""
	}
}
