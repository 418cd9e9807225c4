// Package ir defines a flat instruction form for ST statement bodies and the
// lowering from the AST into it. The instruction list is the input to the
// control-flow graph builder: all structured control flow is made explicit
// through labels, conditional branches, and gotos.
package ir

import "fmt"

// Instr is the interface implemented by all IR instructions.
type Instr interface {
	aInstr()
	String() string
}

// Assign copies the value of Src into Target. Operands are source-level
// expression texts; the CFG layer only needs instruction granularity.
type Assign struct {
	Target string
	Src    string
}

// BinOp computes Left Op Right into Dest.
type BinOp struct {
	Dest  string
	Op    string
	Left  string
	Right string
}

// Call invokes Callee with Args, optionally assigning the result to Dest.
type Call struct {
	Dest   string
	Callee string
	Args   []string
}

// BranchCond transfers control to True when Cond holds, else to False.
// There is no implicit fall-through.
type BranchCond struct {
	Cond  string
	True  string
	False string
}

// Label is a branch target marker.
type Label struct {
	Name string
}

// Goto transfers control unconditionally to Target, with no fall-through.
type Goto struct {
	Target string
}

func (*Assign) aInstr()     {}
func (*BinOp) aInstr()      {}
func (*Call) aInstr()       {}
func (*BranchCond) aInstr() {}
func (*Label) aInstr()      {}
func (*Goto) aInstr()       {}

func (i *Assign) String() string { return fmt.Sprintf("%s := %s", i.Target, i.Src) }
func (i *BinOp) String() string {
	return fmt.Sprintf("%s := %s %s %s", i.Dest, i.Left, i.Op, i.Right)
}

func (i *Call) String() string {
	if i.Dest != "" {
		return fmt.Sprintf("%s := call %s(%v)", i.Dest, i.Callee, i.Args)
	}
	return fmt.Sprintf("call %s(%v)", i.Callee, i.Args)
}

func (i *BranchCond) String() string {
	return fmt.Sprintf("branch %s ? %s : %s", i.Cond, i.True, i.False)
}

func (i *Label) String() string { return i.Name + ":" }
func (i *Goto) String() string  { return "goto " + i.Target }
