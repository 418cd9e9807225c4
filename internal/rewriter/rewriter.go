// Package rewriter applies semantics-preserving mutations to ST units:
// operand commutation, condition inversion, consistent variable renaming,
// and hazard-checked statement reordering. Every randomized decision draws
// from an injected seedable source, so rewrites are reproducible.
package rewriter

import (
	"math/rand"
	"strings"

	"github.com/oscat-labs/stlin/internal/analysis/dataflow"
	"github.com/oscat-labs/stlin/internal/ast"
)

// Options holds the mutation probabilities.
type Options struct {
	SwapProb    float64 // commute a commutative binary operator
	InvertProb  float64 // invert an IF condition and swap its branches
	RenameProb  float64 // rename a variable (decided once per name)
	ReorderProb float64 // swap a hazard-free adjacent statement pair
}

// DefaultOptions mirrors the probabilities used for data augmentation.
func DefaultOptions() Options {
	return Options{
		SwapProb:    0.5,
		InvertProb:  0.5,
		RenameProb:  0.3,
		ReorderProb: 0.5,
	}
}

// commutative lists the operators safe to swap. Float reassociation is not
// modeled: ST arithmetic here is treated as commutative and associative.
var commutative = map[string]bool{
	"+": true, "*": true, "AND": true, "OR": true,
}

// Rewriter mutates one unit per RewriteUnit call. The rename map is owned by
// the instance and reset per unit, so every occurrence of a name within a
// unit gets the same treatment; instances must not be shared across
// concurrent rewrites.
type Rewriter struct {
	rng     *rand.Rand
	opts    Options
	renames map[string]string
	decided map[string]bool
	taken   dataflow.VarSet
}

// New returns a Rewriter drawing decisions from the given seed.
func New(seed int64, opts Options) *Rewriter {
	return &Rewriter{
		rng:  rand.New(rand.NewSource(seed)),
		opts: opts,
	}
}

// RewriteUnit deep-copies u, mutates the copy bottom-up, and returns it.
// The input is never modified.
func (r *Rewriter) RewriteUnit(u *ast.Unit) *ast.Unit {
	r.renames = make(map[string]string)
	r.decided = make(map[string]bool)
	r.taken = unitNames(u)

	out := ast.CloneUnit(u)
	out.Body = r.rewriteStmts(out.Body)

	// Declarations take the same mapping the body received, keeping every
	// renamed reference declared.
	for _, vb := range out.VarBlocks {
		for _, d := range vb.Decls {
			if renamed, ok := r.renames[d.Name]; ok {
				d.Name = renamed
			}
			if d.Init != nil {
				d.Init = r.rewriteExpr(d.Init)
			}
		}
	}
	return out
}

// RewriteFile rewrites every unit of a file copy.
func (r *Rewriter) RewriteFile(f *ast.File) *ast.File {
	out := &ast.File{}
	for _, u := range f.Units {
		out.Units = append(out.Units, r.RewriteUnit(u))
	}
	return out
}

func (r *Rewriter) rewriteStmts(stmts []ast.Stmt) []ast.Stmt {
	for i, s := range stmts {
		stmts[i] = r.rewriteStmt(s)
	}
	return r.reorder(stmts)
}

func (r *Rewriter) rewriteStmt(s ast.Stmt) ast.Stmt {
	switch s := s.(type) {
	case *ast.AssignStmt:
		s.Target = r.rewriteExpr(s.Target)
		s.Value = r.rewriteExpr(s.Value)
		return s

	case *ast.IfStmt:
		s.Cond = r.rewriteExpr(s.Cond)
		s.Then = r.rewriteStmts(s.Then)
		for _, e := range s.Elifs {
			e.Cond = r.rewriteExpr(e.Cond)
			e.Body = r.rewriteStmts(e.Body)
		}
		s.Else = r.rewriteStmts(s.Else)

		// Inversion is only sound for a plain IF/ELSE: an ELSIF chain has
		// no single complementary branch to swap with.
		if len(s.Elifs) == 0 && len(s.Else) > 0 && r.chance(r.opts.InvertProb) {
			s.Cond = &ast.UnaryExpr{Op: "NOT", Operand: s.Cond}
			s.Then, s.Else = s.Else, s.Then
		}
		return s

	case *ast.CaseStmt:
		s.Cond = r.rewriteExpr(s.Cond)
		for _, e := range s.Entries {
			e.Body = r.rewriteStmts(e.Body)
		}
		s.Else = r.rewriteStmts(s.Else)
		return s

	case *ast.ForStmt:
		s.Var = r.renameVar(s.Var)
		s.From = r.rewriteExpr(s.From)
		s.To = r.rewriteExpr(s.To)
		if s.Step != nil {
			s.Step = r.rewriteExpr(s.Step)
		}
		s.Body = r.rewriteStmts(s.Body)
		return s

	case *ast.WhileStmt:
		s.Cond = r.rewriteExpr(s.Cond)
		s.Body = r.rewriteStmts(s.Body)
		return s

	case *ast.RepeatStmt:
		s.Body = r.rewriteStmts(s.Body)
		s.Until = r.rewriteExpr(s.Until)
		return s

	case *ast.CallStmt:
		for _, a := range s.Args {
			a.Value = r.rewriteExpr(a.Value)
		}
		return s

	default:
		return s
	}
}

func (r *Rewriter) rewriteExpr(e ast.Expr) ast.Expr {
	switch e := e.(type) {
	case *ast.VarRef:
		e.Name = r.renameVar(e.Name)
		return e

	case *ast.BinaryExpr:
		e.Left = r.rewriteExpr(e.Left)
		e.Right = r.rewriteExpr(e.Right)
		if commutative[e.Op] && r.chance(r.opts.SwapProb) {
			e.Left, e.Right = e.Right, e.Left
		}
		return e

	case *ast.UnaryExpr:
		e.Operand = r.rewriteExpr(e.Operand)
		return e

	case *ast.CallExpr:
		for _, a := range e.Args {
			a.Value = r.rewriteExpr(a.Value)
		}
		return e

	default:
		return e
	}
}

// renameVar returns the consistent replacement for name, deciding once per
// unit whether the name is renamed at all. All-uppercase names are treated
// as constants and single-letter names are left alone.
func (r *Rewriter) renameVar(name string) string {
	if renamed, ok := r.renames[name]; ok {
		return renamed
	}
	if r.decided[name] {
		return name
	}
	r.decided[name] = true

	if len(name) <= 1 || name == strings.ToUpper(name) || strings.HasPrefix(name, "var_") {
		return name
	}
	if !r.chance(r.opts.RenameProb) {
		return name
	}
	renamed := "var_" + name
	// A declared or referenced var_<name> would be captured by the rename.
	if r.taken.Contains(renamed) {
		return name
	}
	r.renames[name] = renamed
	return renamed
}

// unitNames collects every name declared or referenced by the unit.
func unitNames(u *ast.Unit) dataflow.VarSet {
	names := dataflow.ReadVars(u.Body)
	for n := range dataflow.WriteVars(u.Body) {
		names[n] = true
	}
	for _, vb := range u.VarBlocks {
		for _, d := range vb.Decls {
			names[d.Name] = true
			for n := range dataflow.ExprVars(d.Init) {
				names[n] = true
			}
		}
	}
	return names
}

// reorder performs random adjacent swaps gated by the RAW/WAR/WAW hazard
// test. The attempt count matches the list length.
func (r *Rewriter) reorder(stmts []ast.Stmt) []ast.Stmt {
	if len(stmts) < 2 {
		return stmts
	}
	for attempt := 0; attempt < len(stmts); attempt++ {
		i := r.rng.Intn(len(stmts) - 1)
		if dataflow.Hazard(stmts[i], stmts[i+1]) {
			continue
		}
		if r.chance(r.opts.ReorderProb) {
			stmts[i], stmts[i+1] = stmts[i+1], stmts[i]
		}
	}
	return stmts
}

func (r *Rewriter) chance(p float64) bool {
	return r.rng.Float64() < p
}
