package slicer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oscat-labs/stlin/internal/analysis/dataflow"
	"github.com/oscat-labs/stlin/internal/ast"
	"github.com/oscat-labs/stlin/internal/parser"
	"github.com/oscat-labs/stlin/internal/unparser"
)

func mustBody(t *testing.T, body string) []ast.Stmt {
	t.Helper()
	file, err := parser.Parse("PROGRAM P\n" + body + "\nEND_PROGRAM")
	require.NoError(t, err)
	return file.Units[0].Body
}

func bodyText(stmts []ast.Stmt) string {
	u := &ast.Unit{Kind: ast.KindProgram, Name: "P", Body: stmts}
	return unparser.UnparseUnit(u)
}

func TestSliceDropsUnrelated(t *testing.T) {
	body := mustBody(t, "X := 1;\nY := X + 1;\nZ := 99;")

	slice := BackwardSlice(body, dataflow.NewVarSet("Y"))
	require.Len(t, slice, 2)

	text := bodyText(slice)
	assert.Contains(t, text, "X := 1;")
	assert.Contains(t, text, "Y := (X + 1);")
	assert.NotContains(t, text, "Z")
}

func TestSliceKeepsTransitiveChain(t *testing.T) {
	body := mustBody(t, "A := 1;\nB := A;\nC := B;\nD := 5;")

	slice := BackwardSlice(body, dataflow.NewVarSet("C"))
	assert.Len(t, slice, 3)
}

func TestSliceKeepsRedefinitions(t *testing.T) {
	// both writes stay: across scan cycles the earlier one is not provably dead
	body := mustBody(t, "X := 1;\nX := 2;\nY := X;")

	slice := BackwardSlice(body, dataflow.NewVarSet("Y"))
	assert.Len(t, slice, 3)
}

func TestSliceEmptySeeds(t *testing.T) {
	body := mustBody(t, "X := 1;\nY := 2;")
	slice := BackwardSlice(body, dataflow.NewVarSet())
	assert.Empty(t, slice)
}

func TestSliceIfBranches(t *testing.T) {
	body := mustBody(t, `
IF cond THEN
    X := A;
    T := 1;
ELSE
    X := B;
END_IF;
Y := X;`)

	slice := BackwardSlice(body, dataflow.NewVarSet("Y"))
	require.Len(t, slice, 2)

	ifStmt, ok := slice[0].(*ast.IfStmt)
	require.True(t, ok)
	require.Len(t, ifStmt.Then, 1) // T := 1 is gone
	assert.Len(t, ifStmt.Else, 1)

	// the condition and branch reads became relevant
	text := bodyText(slice)
	assert.Contains(t, text, "cond")
	assert.NotContains(t, text, "T := 1;")
}

func TestSliceDropsWholeIf(t *testing.T) {
	body := mustBody(t, `
IF cond THEN
    T := 1;
END_IF;
Y := X;`)

	slice := BackwardSlice(body, dataflow.NewVarSet("Y"))
	require.Len(t, slice, 1)
	_, ok := slice[0].(*ast.AssignStmt)
	assert.True(t, ok)
}

func TestSliceKeepsLoopsThatWrite(t *testing.T) {
	body := mustBody(t, `
FOR i := 1 TO n DO
    total := total + i;
END_FOR;
junk := 0;
Y := total;`)

	slice := BackwardSlice(body, dataflow.NewVarSet("Y"))
	require.Len(t, slice, 2)
	_, ok := slice[0].(*ast.ForStmt)
	assert.True(t, ok)

	// the loop bound feeds the slice through the kept loop
	text := bodyText(slice)
	assert.Contains(t, text, "n")
	assert.NotContains(t, text, "junk")
}

func TestSliceDoesNotMutateInput(t *testing.T) {
	body := mustBody(t, `
IF cond THEN
    X := A;
    T := 1;
END_IF;
Y := X;`)
	before := bodyText(body)

	BackwardSlice(body, dataflow.NewVarSet("Y"))
	assert.Equal(t, before, bodyText(body))
}

func TestSlicePreservesOrder(t *testing.T) {
	body := mustBody(t, "A := 1;\nB := A;\nC := A + B;")

	slice := BackwardSlice(body, dataflow.NewVarSet("C"))
	require.Len(t, slice, 3)
	assert.Equal(t, "A", slice[0].(*ast.AssignStmt).Target.(*ast.VarRef).Name)
	assert.Equal(t, "B", slice[1].(*ast.AssignStmt).Target.(*ast.VarRef).Name)
	assert.Equal(t, "C", slice[2].(*ast.AssignStmt).Target.(*ast.VarRef).Name)
}
