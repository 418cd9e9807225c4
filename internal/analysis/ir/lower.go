package ir

import (
	"fmt"

	"github.com/oscat-labs/stlin/internal/ast"
	"github.com/oscat-labs/stlin/internal/unparser"
)

// Builder lowers statement lists into flat IR. Labels are generated from a
// per-builder counter, so lowering the same body twice yields identical
// instruction sequences.
type Builder struct {
	instrs    []Instr
	labelSeq  int
	loopEnds  []string // EXIT targets, innermost last
	loopHeads []string // CONTINUE targets, innermost last
	exitLabel string
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Lower flattens a unit body into an instruction list. RETURN branches to a
// synthetic exit label appended at the end.
func (b *Builder) Lower(body []ast.Stmt) []Instr {
	b.instrs = nil
	b.exitLabel = b.freshLabel("exit")
	b.lowerStmts(body)
	b.emit(&Label{Name: b.exitLabel})
	return b.instrs
}

func (b *Builder) emit(i Instr) {
	b.instrs = append(b.instrs, i)
}

func (b *Builder) freshLabel(hint string) string {
	b.labelSeq++
	return fmt.Sprintf("L%d_%s", b.labelSeq, hint)
}

func (b *Builder) lowerStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		b.lowerStmt(s)
	}
}

func (b *Builder) lowerStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.AssignStmt:
		b.lowerAssign(s)

	case *ast.CallStmt:
		args := make([]string, 0, len(s.Args))
		for _, a := range s.Args {
			text := unparser.ExprString(a.Value)
			if a.Name != "" {
				text = a.Name + " := " + text
			}
			args = append(args, text)
		}
		b.emit(&Call{Callee: s.Name, Args: args})

	case *ast.IfStmt:
		b.lowerIf(s)

	case *ast.CaseStmt:
		b.lowerCase(s)

	case *ast.ForStmt:
		b.lowerFor(s)

	case *ast.WhileStmt:
		head := b.freshLabel("while")
		body := b.freshLabel("do")
		end := b.freshLabel("wend")
		b.emit(&Label{Name: head})
		b.emit(&BranchCond{Cond: unparser.ExprString(s.Cond), True: body, False: end})
		b.emit(&Label{Name: body})
		b.pushLoop(end, head)
		b.lowerStmts(s.Body)
		b.popLoop()
		b.emit(&Goto{Target: head})
		b.emit(&Label{Name: end})

	case *ast.RepeatStmt:
		head := b.freshLabel("repeat")
		end := b.freshLabel("rend")
		b.emit(&Label{Name: head})
		b.pushLoop(end, head)
		b.lowerStmts(s.Body)
		b.popLoop()
		b.emit(&BranchCond{Cond: unparser.ExprString(s.Until), True: end, False: head})
		b.emit(&Label{Name: end})

	case *ast.ReturnStmt:
		b.emit(&Goto{Target: b.exitLabel})

	case *ast.ExitStmt:
		if target := b.innermost(b.loopEnds); target != "" {
			b.emit(&Goto{Target: target})
		} else {
			b.emit(&Goto{Target: b.exitLabel})
		}

	case *ast.ContinueStmt:
		if target := b.innermost(b.loopHeads); target != "" {
			b.emit(&Goto{Target: target})
		} else {
			b.emit(&Goto{Target: b.exitLabel})
		}
	}
}

func (b *Builder) lowerAssign(s *ast.AssignStmt) {
	target := unparser.ExprString(s.Target)
	switch v := s.Value.(type) {
	case *ast.BinaryExpr:
		b.emit(&BinOp{
			Dest:  target,
			Op:    v.Op,
			Left:  unparser.ExprString(v.Left),
			Right: unparser.ExprString(v.Right),
		})
	case *ast.CallExpr:
		args := make([]string, 0, len(v.Args))
		for _, a := range v.Args {
			args = append(args, unparser.ExprString(a.Value))
		}
		b.emit(&Call{Dest: target, Callee: v.Name, Args: args})
	default:
		b.emit(&Assign{Target: target, Src: unparser.ExprString(s.Value)})
	}
}

func (b *Builder) lowerIf(s *ast.IfStmt) {
	end := b.freshLabel("endif")

	// Each arm gets a then-label; the false edge chains to the next arm.
	arms := []*ast.ElifBranch{{Cond: s.Cond, Body: s.Then}}
	arms = append(arms, s.Elifs...)

	for _, arm := range arms {
		thenL := b.freshLabel("then")
		elseL := b.freshLabel("else")
		b.emit(&BranchCond{Cond: unparser.ExprString(arm.Cond), True: thenL, False: elseL})
		b.emit(&Label{Name: thenL})
		b.lowerStmts(arm.Body)
		b.emit(&Goto{Target: end})
		b.emit(&Label{Name: elseL})
	}
	b.lowerStmts(s.Else)
	b.emit(&Label{Name: end})
}

func (b *Builder) lowerCase(s *ast.CaseStmt) {
	end := b.freshLabel("endcase")
	sel := unparser.ExprString(s.Cond)

	for _, entry := range s.Entries {
		bodyL := b.freshLabel("of")
		nextL := b.freshLabel("next")
		cond := ""
		for i, v := range entry.Values {
			if i > 0 {
				cond += " OR "
			}
			cond += sel + " = " + v
		}
		b.emit(&BranchCond{Cond: cond, True: bodyL, False: nextL})
		b.emit(&Label{Name: bodyL})
		b.lowerStmts(entry.Body)
		b.emit(&Goto{Target: end})
		b.emit(&Label{Name: nextL})
	}
	b.lowerStmts(s.Else)
	b.emit(&Label{Name: end})
}

func (b *Builder) lowerFor(s *ast.ForStmt) {
	head := b.freshLabel("for")
	body := b.freshLabel("do")
	incr := b.freshLabel("step")
	end := b.freshLabel("endfor")

	b.emit(&Assign{Target: s.Var, Src: unparser.ExprString(s.From)})
	b.emit(&Label{Name: head})
	b.emit(&BranchCond{
		Cond:  s.Var + " <= " + unparser.ExprString(s.To),
		True:  body,
		False: end,
	})
	b.emit(&Label{Name: body})
	// CONTINUE must run the increment, so it targets incr rather than head.
	b.pushLoop(end, incr)
	b.lowerStmts(s.Body)
	b.popLoop()

	step := "1"
	if s.Step != nil {
		step = unparser.ExprString(s.Step)
	}
	b.emit(&Label{Name: incr})
	b.emit(&BinOp{Dest: s.Var, Op: "+", Left: s.Var, Right: step})
	b.emit(&Goto{Target: head})
	b.emit(&Label{Name: end})
}

func (b *Builder) pushLoop(end, head string) {
	b.loopEnds = append(b.loopEnds, end)
	b.loopHeads = append(b.loopHeads, head)
}

func (b *Builder) popLoop() {
	b.loopEnds = b.loopEnds[:len(b.loopEnds)-1]
	b.loopHeads = b.loopHeads[:len(b.loopHeads)-1]
}

func (b *Builder) innermost(stack []string) string {
	if len(stack) == 0 {
		return ""
	}
	return stack[len(stack)-1]
}
