package cfg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oscat-labs/stlin/internal/analysis/ir"
	"github.com/oscat-labs/stlin/internal/parser"
)

func lowerBody(t *testing.T, body string) []ir.Instr {
	t.Helper()
	file, err := parser.Parse("PROGRAM P\n" + body + "\nEND_PROGRAM")
	require.NoError(t, err)
	return ir.NewBuilder().Lower(file.Units[0].Body)
}

func TestBuildStraightLine(t *testing.T) {
	g, err := Build(lowerBody(t, "A := 1;\nB := 2;"))
	require.NoError(t, err)

	// assign, assign, exit label
	require.Len(t, g.Instrs, 3)
	assert.Equal(t, 0, g.Entry)
	assert.Equal(t, []int{1}, g.Succ[0])
	assert.Equal(t, []int{2}, g.Succ[1])
	assert.True(t, g.Exits[2])
	assert.Equal(t, []int{1}, g.Pred[2])
}

func TestBuildBranchSuppressesFallThrough(t *testing.T) {
	g, err := Build(lowerBody(t, `
IF cond THEN
    A := 1;
END_IF;`))
	require.NoError(t, err)

	branchIdx := -1
	for i, in := range g.Instrs {
		if _, ok := in.(*ir.BranchCond); ok {
			branchIdx = i
		}
	}
	require.GreaterOrEqual(t, branchIdx, 0)

	succs := g.Succ[branchIdx]
	require.Len(t, succs, 2)
	// both edges are resolved label targets, and the instruction after a
	// goto is only reachable through its label
	for _, s := range succs {
		_, ok := g.Instrs[s].(*ir.Label)
		assert.True(t, ok)
	}
}

func TestBuildUndefinedLabel(t *testing.T) {
	instrs := []ir.Instr{
		&ir.Goto{Target: "nowhere"},
	}
	_, err := Build(instrs)
	require.Error(t, err)

	var lerr *LabelResolutionError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "nowhere", lerr.Label)
	assert.Equal(t, 0, lerr.Index)
}

func TestBuildEmpty(t *testing.T) {
	g, err := Build(nil)
	require.NoError(t, err)
	assert.Equal(t, -1, g.Entry)
	assert.Empty(t, g.Exits)
}

func TestBuildBlocksLeaders(t *testing.T) {
	instrs := lowerBody(t, `
IF cond THEN
    A := 1;
END_IF;
B := 2;`)
	g, err := Build(instrs)
	require.NoError(t, err)
	blocks := BuildBlocks(g)

	require.NotEmpty(t, blocks.Blocks)
	assert.Equal(t, 0, blocks.Entry)

	// every instruction belongs to exactly one block
	covered := map[int]int{}
	for _, b := range blocks.Blocks {
		for _, i := range b.Instrs {
			covered[i]++
		}
	}
	require.Len(t, covered, len(instrs))
	for _, n := range covered {
		assert.Equal(t, 1, n)
	}

	// a block never continues past a branch
	for _, b := range blocks.Blocks {
		for _, i := range b.Instrs[:len(b.Instrs)-1] {
			_, isBranch := g.Instrs[i].(*ir.BranchCond)
			_, isGoto := g.Instrs[i].(*ir.Goto)
			assert.False(t, isBranch || isGoto)
		}
	}
}

func TestPostDominators(t *testing.T) {
	instrs := lowerBody(t, `
IF cond THEN
    A := 1;
END_IF;
B := 2;`)
	g, err := Build(instrs)
	require.NoError(t, err)

	succ, exitID := ExtendWithVirtualExit(g)
	pd := PostDominators(succ, exitID)

	assert.Equal(t, len(instrs), exitID)

	// the virtual exit post-dominates only itself
	assert.Equal(t, NodeSet{exitID: true}, pd[exitID])

	// every node is post-dominated by itself and the virtual exit
	for i := 0; i < len(instrs); i++ {
		assert.True(t, pd[i][i], "node %d", i)
		assert.True(t, pd[i][exitID], "node %d", i)
	}

	// the final assignment post-dominates the branch
	branchIdx, assignB := findBranchAndAssign(t, instrs, "B")
	assert.True(t, pd[branchIdx][assignB])
}

func TestControlDeps(t *testing.T) {
	instrs := lowerBody(t, `
IF cond THEN
    A := 1;
END_IF;
B := 2;`)
	g, err := Build(instrs)
	require.NoError(t, err)

	succ, exitID := ExtendWithVirtualExit(g)
	pd := PostDominators(succ, exitID)
	deps := ControlDeps(succ, exitID, pd)

	branchIdx, assignB := findBranchAndAssign(t, instrs, "B")
	assignA := -1
	for i, in := range instrs {
		if a, ok := in.(*ir.Assign); ok && a.Target == "A" {
			assignA = i
		}
	}
	require.GreaterOrEqual(t, assignA, 0)

	// the branch decides the guarded assignment but not the join successor
	assert.True(t, deps[branchIdx][assignA])
	assert.False(t, deps[branchIdx][assignB])

	// the virtual exit never controls anything
	_, ok := deps[exitID]
	assert.False(t, ok)
}

func TestControlDepsLoop(t *testing.T) {
	instrs := lowerBody(t, `
WHILE run DO
    A := 1;
END_WHILE;`)
	g, err := Build(instrs)
	require.NoError(t, err)

	succ, exitID := ExtendWithVirtualExit(g)
	pd := PostDominators(succ, exitID)
	deps := ControlDeps(succ, exitID, pd)

	branchIdx := -1
	assignA := -1
	for i, in := range instrs {
		switch in := in.(type) {
		case *ir.BranchCond:
			branchIdx = i
		case *ir.Assign:
			if in.Target == "A" {
				assignA = i
			}
		}
	}
	require.GreaterOrEqual(t, branchIdx, 0)
	require.GreaterOrEqual(t, assignA, 0)
	assert.True(t, deps[branchIdx][assignA])
}

func TestPrintDot(t *testing.T) {
	instrs := lowerBody(t, `
IF cond THEN
    A := 1;
END_IF;`)
	g, err := Build(instrs)
	require.NoError(t, err)

	var buf strings.Builder
	BuildBlocks(g).PrintDot(&buf, nil)
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "digraph cfg {"))
	assert.Contains(t, out, "->")
	assert.Contains(t, out, "A := 1")
}

func findBranchAndAssign(t *testing.T, instrs []ir.Instr, target string) (int, int) {
	t.Helper()
	branchIdx, assignIdx := -1, -1
	for i, in := range instrs {
		switch in := in.(type) {
		case *ir.BranchCond:
			branchIdx = i
		case *ir.Assign:
			if in.Target == target {
				assignIdx = i
			}
		}
	}
	require.GreaterOrEqual(t, branchIdx, 0)
	require.GreaterOrEqual(t, assignIdx, 0)
	return branchIdx, assignIdx
}
