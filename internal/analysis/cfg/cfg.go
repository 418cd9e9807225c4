package cfg

import (
	"fmt"

	"github.com/oscat-labs/stlin/internal/analysis/ir"
)

// LabelResolutionError reports a branch or goto that references a label no
// instruction defines. This is a builder defect, never user input, so CFG
// construction aborts on it.
type LabelResolutionError struct {
	Label string
	Index int
}

func (e *LabelResolutionError) Error() string {
	return fmt.Sprintf("cfg: instruction %d references undefined label %q", e.Index, e.Label)
}

// InstrCFG is an instruction-level control-flow graph: one node per
// instruction, identified by its index in Instrs.
type InstrCFG struct {
	Instrs []ir.Instr
	Succ   map[int][]int
	Pred   map[int][]int
	Entry  int
	Exits  map[int]bool
}

// Build constructs the instruction-level CFG in two passes: first a label
// scan, then edge insertion. BranchCond and Goto suppress the fall-through
// edge; every other instruction falls through to its successor.
func Build(instrs []ir.Instr) (*InstrCFG, error) {
	n := len(instrs)
	g := &InstrCFG{
		Instrs: instrs,
		Succ:   make(map[int][]int, n),
		Pred:   make(map[int][]int, n),
		Exits:  make(map[int]bool),
	}
	for i := 0; i < n; i++ {
		g.Succ[i] = nil
		g.Pred[i] = nil
	}

	labels := make(map[string]int)
	for i, instr := range instrs {
		if l, ok := instr.(*ir.Label); ok {
			labels[l.Name] = i
		}
	}

	resolve := func(name string, at int) (int, error) {
		idx, ok := labels[name]
		if !ok {
			return 0, &LabelResolutionError{Label: name, Index: at}
		}
		return idx, nil
	}

	for i, instr := range instrs {
		switch instr := instr.(type) {
		case *ir.BranchCond:
			t, err := resolve(instr.True, i)
			if err != nil {
				return nil, err
			}
			f, err := resolve(instr.False, i)
			if err != nil {
				return nil, err
			}
			g.addEdge(i, t)
			g.addEdge(i, f)
		case *ir.Goto:
			t, err := resolve(instr.Target, i)
			if err != nil {
				return nil, err
			}
			g.addEdge(i, t)
		default:
			if i+1 < n {
				g.addEdge(i, i+1)
			}
		}
	}

	if n > 0 {
		g.Entry = 0
	} else {
		g.Entry = -1
	}
	for i := 0; i < n; i++ {
		if len(g.Succ[i]) == 0 {
			g.Exits[i] = true
		}
	}
	return g, nil
}

func (g *InstrCFG) addEdge(i, j int) {
	for _, s := range g.Succ[i] {
		if s == j {
			return
		}
	}
	g.Succ[i] = append(g.Succ[i], j)
	g.Pred[j] = append(g.Pred[j], i)
}

// BasicBlock is a maximal straight-line run of instructions.
type BasicBlock struct {
	ID     int
	Instrs []int // instruction indices, in order
	Succs  []int // successor block IDs
	Preds  []int // predecessor block IDs
}

// BlockCFG is the basic-block form of an InstrCFG.
type BlockCFG struct {
	Instrs []ir.Instr
	Blocks []*BasicBlock
	Entry  int
	Exits  map[int]bool
}

// BuildBlocks coalesces an instruction CFG into basic blocks with the
// classical leader algorithm: the first instruction, every branch or goto
// target, and the instruction following any branch or goto are leaders.
func BuildBlocks(g *InstrCFG) *BlockCFG {
	n := len(g.Instrs)
	if n == 0 {
		return &BlockCFG{Entry: -1, Exits: map[int]bool{}}
	}

	leaders := map[int]bool{0: true}
	for i, instr := range g.Instrs {
		switch instr.(type) {
		case *ir.BranchCond, *ir.Goto:
			// The CFG already resolved every target, so its successor
			// lists are exactly the branch targets.
			for _, t := range g.Succ[i] {
				leaders[t] = true
			}
			if i+1 < n {
				leaders[i+1] = true
			}
		}
	}

	var starts []int
	for i := 0; i < n; i++ {
		if leaders[i] {
			starts = append(starts, i)
		}
	}

	out := &BlockCFG{Instrs: g.Instrs, Entry: 0, Exits: map[int]bool{}}
	owner := make(map[int]int, n)
	for bi, start := range starts {
		end := n - 1
		if bi+1 < len(starts) {
			end = starts[bi+1] - 1
		}
		block := &BasicBlock{ID: bi}
		for i := start; i <= end; i++ {
			block.Instrs = append(block.Instrs, i)
			owner[i] = bi
		}
		out.Blocks = append(out.Blocks, block)
	}

	for _, block := range out.Blocks {
		last := block.Instrs[len(block.Instrs)-1]
		for _, j := range g.Succ[last] {
			target := out.Blocks[owner[j]]
			block.Succs = appendUnique(block.Succs, target.ID)
			target.Preds = appendUnique(target.Preds, block.ID)
		}
		if len(g.Succ[last]) == 0 {
			out.Exits[block.ID] = true
		}
	}
	return out
}

func appendUnique(ids []int, id int) []int {
	for _, x := range ids {
		if x == id {
			return ids
		}
	}
	return append(ids, id)
}
