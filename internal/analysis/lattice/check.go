package lattice

import (
	"strconv"
	"strings"

	"github.com/oscat-labs/stlin/internal/analysis/dataflow"
	"github.com/oscat-labs/stlin/internal/ast"
)

// CheckDivisions walks a unit body with a flow-sensitive zero-ness state and
// returns the divisor expressions that are definitely zero. Loops are handled
// conservatively: every variable the loop writes is havocked to Top before
// and after the body, so the pass never reports a divisor a loop might fix.
func CheckDivisions(body []ast.Stmt) []ast.Expr {
	var findings []ast.Expr
	walkStmts(body, State{}, &findings)
	return findings
}

func walkStmts(stmts []ast.Stmt, st State, findings *[]ast.Expr) {
	for _, s := range stmts {
		walkStmt(s, st, findings)
	}
}

func walkStmt(s ast.Stmt, st State, findings *[]ast.Expr) {
	switch s := s.(type) {
	case *ast.AssignStmt:
		scanExpr(s.Value, st, findings)
		if target, ok := s.Target.(*ast.VarRef); ok {
			st.Set(target.Name, evalExpr(s.Value, st))
		}

	case *ast.IfStmt:
		scanExpr(s.Cond, st, findings)
		branches := [][]ast.Stmt{s.Then}
		for _, e := range s.Elifs {
			scanExpr(e.Cond, st, findings)
			branches = append(branches, e.Body)
		}
		branches = append(branches, s.Else)
		joinBranches(branches, st, findings)

	case *ast.CaseStmt:
		scanExpr(s.Cond, st, findings)
		var branches [][]ast.Stmt
		for _, e := range s.Entries {
			branches = append(branches, e.Body)
		}
		branches = append(branches, s.Else)
		joinBranches(branches, st, findings)

	case *ast.ForStmt:
		scanExpr(s.From, st, findings)
		scanExpr(s.To, st, findings)
		if s.Step != nil {
			scanExpr(s.Step, st, findings)
		}
		havoc(st, s)
		walkStmts(s.Body, st, findings)
		havoc(st, s)

	case *ast.WhileStmt:
		scanExpr(s.Cond, st, findings)
		havoc(st, s)
		walkStmts(s.Body, st, findings)
		havoc(st, s)

	case *ast.RepeatStmt:
		havoc(st, s)
		walkStmts(s.Body, st, findings)
		scanExpr(s.Until, st, findings)
		havoc(st, s)

	case *ast.CallStmt:
		for _, a := range s.Args {
			scanExpr(a.Value, st, findings)
		}
	}
}

// joinBranches walks each branch on a cloned state and merges the outcomes
// back into st. The implicit fall-through path is one of the branches, so an
// empty else list still participates in the join.
func joinBranches(branches [][]ast.Stmt, st State, findings *[]ast.Expr) {
	var merged State
	for _, body := range branches {
		branchState := st.Clone()
		walkStmts(body, branchState, findings)
		if merged == nil {
			merged = branchState
		} else {
			merged = JoinStates(merged, branchState)
		}
	}
	for name := range st {
		delete(st, name)
	}
	for name, val := range merged {
		st[name] = val
	}
}

func havoc(st State, s ast.Stmt) {
	for name := range dataflow.StmtWriteVars(s) {
		st.Set(name, Top)
	}
}

// scanExpr records divisors that evaluate to Zero, then recurses.
func scanExpr(e ast.Expr, st State, findings *[]ast.Expr) {
	switch e := e.(type) {
	case *ast.BinaryExpr:
		scanExpr(e.Left, st, findings)
		scanExpr(e.Right, st, findings)
		if (e.Op == "/" || e.Op == "MOD") && evalExpr(e.Right, st) == Zero {
			*findings = append(*findings, e.Right)
		}
	case *ast.UnaryExpr:
		scanExpr(e.Operand, st, findings)
	case *ast.CallExpr:
		for _, a := range e.Args {
			scanExpr(a.Value, st, findings)
		}
	}
}

func evalExpr(e ast.Expr, st State) Zeroness {
	switch e := e.(type) {
	case *ast.Literal:
		return literalKind(e.Raw)

	case *ast.VarRef:
		return st.Get(e.Name)

	case *ast.UnaryExpr:
		if e.Op == "-" {
			return evalExpr(e.Operand, st)
		}
		return Top

	case *ast.BinaryExpr:
		l := evalExpr(e.Left, st)
		r := evalExpr(e.Right, st)
		switch e.Op {
		case "+":
			if l == Zero {
				return r
			}
			if r == Zero {
				return l
			}
			return MaybeZero
		case "-":
			if r == Zero {
				return l
			}
			return MaybeZero
		case "*":
			if l == Zero || r == Zero {
				return Zero
			}
			if l == NonZero && r == NonZero {
				return NonZero
			}
			return MaybeZero
		default:
			return Top
		}

	default:
		return Top
	}
}

// literalKind classifies a numeric literal token. Typed literals like
// INT#0 are classified by their value part; non-numeric literals are Top.
func literalKind(raw string) Zeroness {
	val := raw
	if i := strings.LastIndex(val, "#"); i >= 0 {
		val = val[i+1:]
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return Top
	}
	if f == 0 {
		return Zero
	}
	return NonZero
}
