// Package slicer implements conservative backward program slicing over ST
// statement lists. The slice may retain more than a minimal result but never
// drops a statement that can affect a seed variable.
package slicer

import (
	"github.com/oscat-labs/stlin/internal/analysis/dataflow"
	"github.com/oscat-labs/stlin/internal/ast"
)

// BackwardSlice returns the statements of body that can influence the seed
// variables, in original order. Assignment targets stay in the relevant set
// once matched: under re-assignment across PLC scan cycles a single pass
// cannot prove the earlier definition dead, so the scan keeps it.
func BackwardSlice(body []ast.Stmt, seeds dataflow.VarSet) []ast.Stmt {
	relevant := dataflow.VarSet{}
	for v := range seeds {
		relevant[v] = true
	}

	var kept []ast.Stmt // reverse order while scanning
	for i := len(body) - 1; i >= 0; i-- {
		if s := sliceStmt(body[i], relevant); s != nil {
			kept = append(kept, s)
		}
	}

	// Un-reverse before returning.
	out := make([]ast.Stmt, 0, len(kept))
	for i := len(kept) - 1; i >= 0; i-- {
		out = append(out, kept[i])
	}
	return out
}

// sliceStmt decides whether stmt belongs in the slice, updating relevant as
// a side effect. It returns nil when the statement is dropped, the original
// statement when kept whole, or a rebuilt node when branch bodies were
// themselves sliced. Input nodes are never mutated.
func sliceStmt(stmt ast.Stmt, relevant dataflow.VarSet) ast.Stmt {
	switch s := stmt.(type) {
	case *ast.AssignStmt:
		target, ok := s.Target.(*ast.VarRef)
		if !ok || !relevant.Contains(target.Name) {
			return nil
		}
		merge(relevant, dataflow.ExprVars(s.Value))
		return s

	case *ast.IfStmt:
		// Each branch is sliced against a snapshot so sibling branches do
		// not see each other's discoveries.
		thenSlice := BackwardSlice(s.Then, relevant)
		var elifs []*ast.ElifBranch
		anyElif := false
		for _, e := range s.Elifs {
			b := BackwardSlice(e.Body, relevant)
			if len(b) > 0 {
				anyElif = true
			}
			elifs = append(elifs, &ast.ElifBranch{Cond: e.Cond, Body: b})
		}
		elseSlice := BackwardSlice(s.Else, relevant)

		if len(thenSlice) == 0 && !anyElif && len(elseSlice) == 0 {
			return nil
		}
		merge(relevant, dataflow.ExprVars(s.Cond))
		for _, e := range s.Elifs {
			merge(relevant, dataflow.ExprVars(e.Cond))
		}
		merge(relevant, dataflow.ReadVars(thenSlice))
		for _, e := range elifs {
			merge(relevant, dataflow.ReadVars(e.Body))
		}
		merge(relevant, dataflow.ReadVars(elseSlice))
		return &ast.IfStmt{Cond: s.Cond, Then: thenSlice, Elifs: elifs, Else: elseSlice}

	case *ast.CaseStmt:
		var entries []*ast.CaseEntry
		any := false
		for _, e := range s.Entries {
			b := BackwardSlice(e.Body, relevant)
			if len(b) > 0 {
				any = true
			}
			entries = append(entries, &ast.CaseEntry{Values: e.Values, Body: b})
		}
		elseSlice := BackwardSlice(s.Else, relevant)
		if !any && len(elseSlice) == 0 {
			return nil
		}
		merge(relevant, dataflow.ExprVars(s.Cond))
		for _, e := range entries {
			merge(relevant, dataflow.ReadVars(e.Body))
		}
		merge(relevant, dataflow.ReadVars(elseSlice))
		return &ast.CaseStmt{Cond: s.Cond, Entries: entries, Else: elseSlice}

	default:
		// Loops and calls are kept whole whenever they write anything the
		// slice cares about.
		if dataflow.StmtWriteVars(stmt).Intersects(relevant) {
			merge(relevant, dataflow.StmtReadVars(stmt))
			return stmt
		}
		return nil
	}
}

func merge(dst, src dataflow.VarSet) {
	for v := range src {
		dst[v] = true
	}
}
