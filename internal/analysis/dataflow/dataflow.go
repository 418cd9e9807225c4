// Package dataflow computes read and write variable sets over AST subtrees.
//
// Both computations are pure: they take any statement, expression, or
// statement list and return a fresh set, so callers may invoke them
// repeatedly across mutations without staleness concerns.
package dataflow

import "github.com/oscat-labs/stlin/internal/ast"

// VarSet is a set of variable names.
type VarSet map[string]bool

// NewVarSet builds a set from the given names.
func NewVarSet(names ...string) VarSet {
	s := make(VarSet, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

func (s VarSet) add(name string) {
	s[name] = true
}

func (s VarSet) union(other VarSet) {
	for n := range other {
		s[n] = true
	}
}

// Intersects reports whether s and other share any name.
func (s VarSet) Intersects(other VarSet) bool {
	for n := range other {
		if s[n] {
			return true
		}
	}
	return false
}

// Contains reports whether name is in the set.
func (s VarSet) Contains(name string) bool {
	return s[name]
}

// ReadVars returns every variable read anywhere in the given statements.
func ReadVars(stmts []ast.Stmt) VarSet {
	res := VarSet{}
	for _, s := range stmts {
		res.union(StmtReadVars(s))
	}
	return res
}

// WriteVars returns every variable written anywhere in the given statements.
func WriteVars(stmts []ast.Stmt) VarSet {
	res := VarSet{}
	for _, s := range stmts {
		res.union(StmtWriteVars(s))
	}
	return res
}

// StmtReadVars returns the read set of a single statement.
func StmtReadVars(s ast.Stmt) VarSet {
	res := VarSet{}
	switch s := s.(type) {
	case *ast.AssignStmt:
		res.union(ExprVars(s.Value))
	case *ast.IfStmt:
		res.union(ExprVars(s.Cond))
		res.union(ReadVars(s.Then))
		for _, e := range s.Elifs {
			res.union(ExprVars(e.Cond))
			res.union(ReadVars(e.Body))
		}
		res.union(ReadVars(s.Else))
	case *ast.CaseStmt:
		res.union(ExprVars(s.Cond))
		for _, e := range s.Entries {
			res.union(ReadVars(e.Body))
		}
		res.union(ReadVars(s.Else))
	case *ast.ForStmt:
		res.union(ExprVars(s.From))
		res.union(ExprVars(s.To))
		res.union(ExprVars(s.Step))
		res.union(ReadVars(s.Body))
	case *ast.WhileStmt:
		res.union(ExprVars(s.Cond))
		res.union(ReadVars(s.Body))
	case *ast.RepeatStmt:
		res.union(ReadVars(s.Body))
		res.union(ExprVars(s.Until))
	case *ast.CallStmt:
		for _, a := range s.Args {
			res.union(ExprVars(a.Value))
		}
	}
	return res
}

// StmtWriteVars returns the write set of a single statement. Call arguments
// never contribute writes: an in/out-parameter convention is a deliberate
// extension point left unimplemented.
func StmtWriteVars(s ast.Stmt) VarSet {
	res := VarSet{}
	switch s := s.(type) {
	case *ast.AssignStmt:
		if v, ok := s.Target.(*ast.VarRef); ok {
			res.add(v.Name)
		}
	case *ast.IfStmt:
		res.union(WriteVars(s.Then))
		for _, e := range s.Elifs {
			res.union(WriteVars(e.Body))
		}
		res.union(WriteVars(s.Else))
	case *ast.CaseStmt:
		for _, e := range s.Entries {
			res.union(WriteVars(e.Body))
		}
		res.union(WriteVars(s.Else))
	case *ast.ForStmt:
		// The loop counter is written by the loop itself.
		res.add(s.Var)
		res.union(WriteVars(s.Body))
	case *ast.WhileStmt:
		res.union(WriteVars(s.Body))
	case *ast.RepeatStmt:
		res.union(WriteVars(s.Body))
	}
	return res
}

// ExprVars returns every variable referenced by an expression.
func ExprVars(e ast.Expr) VarSet {
	res := VarSet{}
	switch e := e.(type) {
	case nil:
		return res
	case *ast.VarRef:
		res.add(e.Name)
	case *ast.BinaryExpr:
		res.union(ExprVars(e.Left))
		res.union(ExprVars(e.Right))
	case *ast.UnaryExpr:
		res.union(ExprVars(e.Operand))
	case *ast.CallExpr:
		for _, a := range e.Args {
			res.union(ExprVars(a.Value))
		}
	}
	return res
}

// Hazard reports whether swapping two adjacent statements would violate a
// RAW, WAR, or WAW dependency.
func Hazard(a, b ast.Stmt) bool {
	ra, wa := StmtReadVars(a), StmtWriteVars(a)
	rb, wb := StmtReadVars(b), StmtWriteVars(b)
	return wa.Intersects(rb) || ra.Intersects(wb) || wa.Intersects(wb)
}
