package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleUnit() *Unit {
	return &Unit{
		Kind: KindProgram,
		Name: "P",
		VarBlocks: []*VarBlock{
			{Storage: StorageVar, Decls: []*VarDecl{
				{Name: "x", Type: &ScalarType{Name: "INT"}, Init: &Literal{Raw: "0"}},
			}},
		},
		Body: []Stmt{
			&IfStmt{
				Cond: &BinaryExpr{Op: ">", Left: &VarRef{Name: "x"}, Right: &Literal{Raw: "1"}},
				Then: []Stmt{
					&AssignStmt{Target: &VarRef{Name: "x"}, Value: &Literal{Raw: "0"}},
				},
			},
		},
	}
}

func TestCloneUnitIsDeep(t *testing.T) {
	orig := sampleUnit()
	clone := CloneUnit(orig)
	require.Equal(t, orig, clone)

	// mutating the clone leaves the original untouched
	clone.Name = "Q"
	clone.VarBlocks[0].Decls[0].Name = "renamed"
	clone.Body[0].(*IfStmt).Then[0].(*AssignStmt).Target.(*VarRef).Name = "y"

	assert.Equal(t, "P", orig.Name)
	assert.Equal(t, "x", orig.VarBlocks[0].Decls[0].Name)
	assert.Equal(t, "x", orig.Body[0].(*IfStmt).Then[0].(*AssignStmt).Target.(*VarRef).Name)
}

func TestCloneExprNil(t *testing.T) {
	assert.Nil(t, CloneExpr(nil))
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		name     string
		typ      TypeRef
		expected string
	}{
		{"scalar", &ScalarType{Name: "REAL"}, "REAL"},
		{"named", &NamedType{Name: "TON"}, "TON"},
		{"string sized", &StringType{Length: 20}, "STRING(20)"},
		{"string unsized", &StringType{}, "STRING"},
		{"array", &ArrayType{Lower: -1, Upper: 8, Elem: &ScalarType{Name: "INT"}}, "ARRAY [-1..8] OF INT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TypeString(tt.typ))
		})
	}
}
