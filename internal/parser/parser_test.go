package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oscat-labs/stlin/internal/ast"
)

func TestParseProgram(t *testing.T) {
	code := `
PROGRAM Conveyor
VAR
    speed : REAL := 0.0;
    count, limit : INT;
    running : BOOL;
END_VAR
    speed := speed + 1.5;
    count := count + 1;
END_PROGRAM
`
	file, err := Parse(code)
	require.NoError(t, err)
	require.Len(t, file.Units, 1)

	unit := file.Units[0]
	assert.Equal(t, ast.KindProgram, unit.Kind)
	assert.Equal(t, "Conveyor", unit.Name)

	require.Len(t, unit.VarBlocks, 1)
	decls := unit.VarBlocks[0].Decls
	require.Len(t, decls, 4)
	assert.Equal(t, "speed", decls[0].Name)
	require.NotNil(t, decls[0].Init)
	assert.Equal(t, "count", decls[1].Name)
	assert.Equal(t, "limit", decls[2].Name)
	// comma-separated names share one type
	assert.Equal(t, decls[1].Type, decls[2].Type)

	require.Len(t, unit.Body, 2)
	assign, ok := unit.Body[0].(*ast.AssignStmt)
	require.True(t, ok)
	assert.Equal(t, "speed", assign.Target.(*ast.VarRef).Name)
}

func TestParseFunctionReturnType(t *testing.T) {
	code := `
FUNCTION Scale : REAL
VAR_INPUT
    raw : INT;
END_VAR
    Scale := raw * 0.1;
END_FUNCTION
`
	file, err := Parse(code)
	require.NoError(t, err)

	unit := file.Units[0]
	assert.Equal(t, ast.KindFunction, unit.Kind)
	require.NotNil(t, unit.ReturnType)
	assert.Equal(t, "REAL", ast.TypeString(unit.ReturnType))
	assert.Equal(t, ast.StorageInput, unit.VarBlocks[0].Storage)
}

func TestParseFunctionBlock(t *testing.T) {
	code := `
FUNCTION_BLOCK Debounce
VAR_INPUT
    signal : BOOL;
END_VAR
VAR_OUTPUT
    stable : BOOL;
END_VAR
VAR CONSTANT
    LIMIT : INT := 3;
END_VAR
    stable := signal;
END_FUNCTION_BLOCK
`
	file, err := Parse(code)
	require.NoError(t, err)

	unit := file.Units[0]
	assert.Equal(t, ast.KindFunctionBlock, unit.Kind)
	require.Len(t, unit.VarBlocks, 3)
	assert.Equal(t, ast.QualConstant, unit.VarBlocks[2].Qualifier)
}

func TestParseIfElsifElse(t *testing.T) {
	code := `
PROGRAM P
VAR
    x, y : INT;
END_VAR
    IF x > 10 THEN
        y := 1;
    ELSIF x > 5 THEN
        y := 2;
    ELSE
        y := 3;
    END_IF;
END_PROGRAM
`
	file, err := Parse(code)
	require.NoError(t, err)

	stmt, ok := file.Units[0].Body[0].(*ast.IfStmt)
	require.True(t, ok)
	assert.Len(t, stmt.Then, 1)
	require.Len(t, stmt.Elifs, 1)
	assert.Len(t, stmt.Elifs[0].Body, 1)
	assert.Len(t, stmt.Else, 1)
}

func TestParseCase(t *testing.T) {
	code := `
PROGRAM P
VAR
    state, out : INT;
END_VAR
    CASE state OF
        0:
            out := 10;
        1, 2:
            out := 20;
        ELSE
            out := 0;
    END_CASE;
END_PROGRAM
`
	file, err := Parse(code)
	require.NoError(t, err)

	stmt, ok := file.Units[0].Body[0].(*ast.CaseStmt)
	require.True(t, ok)
	require.Len(t, stmt.Entries, 2)
	assert.Equal(t, []string{"0"}, stmt.Entries[0].Values)
	assert.Equal(t, []string{"1", "2"}, stmt.Entries[1].Values)
	assert.Len(t, stmt.Else, 1)
}

func TestParseLoops(t *testing.T) {
	code := `
PROGRAM P
VAR
    i, total : INT;
    done : BOOL;
END_VAR
    FOR i := 1 TO 10 BY 2 DO
        total := total + i;
    END_FOR;
    WHILE NOT done DO
        done := TRUE;
    END_WHILE;
    REPEAT
        total := total - 1;
    UNTIL total <= 0;
    END_REPEAT;
END_PROGRAM
`
	file, err := Parse(code)
	require.NoError(t, err)
	body := file.Units[0].Body
	require.Len(t, body, 3)

	forStmt, ok := body[0].(*ast.ForStmt)
	require.True(t, ok)
	assert.Equal(t, "i", forStmt.Var)
	require.NotNil(t, forStmt.Step)

	_, ok = body[1].(*ast.WhileStmt)
	require.True(t, ok)

	repeatStmt, ok := body[2].(*ast.RepeatStmt)
	require.True(t, ok)
	require.IsType(t, &ast.BinaryExpr{}, repeatStmt.Until)
}

func TestParseCallStatement(t *testing.T) {
	code := `
PROGRAM P
VAR
    timer1 : TON;
    go : BOOL;
END_VAR
    timer1(IN := go, PT := T#5s);
END_PROGRAM
`
	file, err := Parse(code)
	require.NoError(t, err)

	call, ok := file.Units[0].Body[0].(*ast.CallStmt)
	require.True(t, ok)
	assert.Equal(t, "timer1", call.Name)
	require.Len(t, call.Args, 2)
	assert.Equal(t, "IN", call.Args[0].Name)
	assert.Equal(t, "PT", call.Args[1].Name)
	assert.Equal(t, "T#5s", call.Args[1].Value.(*ast.Literal).Raw)
}

func TestParsePrecedence(t *testing.T) {
	code := `
PROGRAM P
VAR
    a, b, c, r : INT;
END_VAR
    r := a + b * c;
END_PROGRAM
`
	file, err := Parse(code)
	require.NoError(t, err)

	value := file.Units[0].Body[0].(*ast.AssignStmt).Value
	add, ok := value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", add.Op)
	mul, ok := add.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "*", mul.Op)
}

func TestParseArrayAndStringTypes(t *testing.T) {
	code := `
PROGRAM P
VAR
    buf : ARRAY [-1..10] OF INT;
    name : STRING(20);
END_VAR
END_PROGRAM
`
	file, err := Parse(code)
	require.NoError(t, err)

	decls := file.Units[0].VarBlocks[0].Decls
	arr, ok := decls[0].Type.(*ast.ArrayType)
	require.True(t, ok)
	assert.Equal(t, -1, arr.Lower)
	assert.Equal(t, 10, arr.Upper)

	str, ok := decls[1].Type.(*ast.StringType)
	require.True(t, ok)
	assert.Equal(t, 20, str.Length)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"empty input", ""},
		{"missing END_IF", "PROGRAM P VAR x : BOOL; END_VAR IF x THEN END_PROGRAM"},
		{"missing semicolon", "PROGRAM P VAR x : INT; END_VAR x := 1 END_PROGRAM"},
		{"bare assign", "PROGRAM P VAR x : INT; END_VAR x = 1; END_PROGRAM"},
		{"no unit header", "x := 1;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.code)
			require.Error(t, err)

			var synErr *SyntaxError
			require.ErrorAs(t, err, &synErr)
			assert.Positive(t, synErr.Line)
		})
	}
}

func TestParseMultipleUnits(t *testing.T) {
	code := `
PROGRAM Main
VAR
    x : INT;
END_VAR
    x := 1;
END_PROGRAM

FUNCTION_BLOCK Helper
VAR
    y : INT;
END_VAR
    y := 2;
END_FUNCTION_BLOCK
`
	file, err := Parse(code)
	require.NoError(t, err)
	require.Len(t, file.Units, 2)
	assert.Equal(t, "Main", file.Units[0].Name)
	assert.Equal(t, "Helper", file.Units[1].Name)
}

func TestParseStripsBOMAndCRLF(t *testing.T) {
	code := "\uFEFFPROGRAM P\r\nVAR\r\n    x : INT;\r\nEND_VAR\r\n    x := 1;\r\nEND_PROGRAM\r\n"
	file, err := Parse(code)
	require.NoError(t, err)
	require.Len(t, file.Units, 1)
	assert.Equal(t, "P", file.Units[0].Name)
}
