// Package ast defines the canonical AST for IEC 61131-3 Structured Text.
//
// There are three closed node categories: statements, expressions, and type
// references. Each category is a sealed interface; the marker methods keep
// implementations restricted to this package so that switches over a category
// stay exhaustive.
package ast

// UnitKind discriminates the three program organization unit forms.
type UnitKind int

const (
	KindProgram UnitKind = iota
	KindFunctionBlock
	KindFunction
)

func (k UnitKind) String() string {
	switch k {
	case KindProgram:
		return "PROGRAM"
	case KindFunctionBlock:
		return "FUNCTION_BLOCK"
	case KindFunction:
		return "FUNCTION"
	default:
		return "UNKNOWN"
	}
}

// File is a parsed source text: one or more program organization units.
type File struct {
	Units []*Unit
}

// Unit is a single PROGRAM, FUNCTION_BLOCK, or FUNCTION declaration.
// ReturnType is non-nil only for functions.
type Unit struct {
	Kind       UnitKind
	Name       string
	ReturnType TypeRef
	VarBlocks  []*VarBlock
	Body       []Stmt
}

// Storage is the storage class of a variable block.
type Storage int

const (
	StorageVar Storage = iota
	StorageInput
	StorageOutput
	StorageInOut
	StorageTemp
	StorageGlobal
	StorageExternal
)

func (s Storage) String() string {
	switch s {
	case StorageVar:
		return "VAR"
	case StorageInput:
		return "VAR_INPUT"
	case StorageOutput:
		return "VAR_OUTPUT"
	case StorageInOut:
		return "VAR_IN_OUT"
	case StorageTemp:
		return "VAR_TEMP"
	case StorageGlobal:
		return "VAR_GLOBAL"
	case StorageExternal:
		return "VAR_EXTERNAL"
	default:
		return "VAR"
	}
}

// Qualifier is an optional variable block qualifier.
type Qualifier int

const (
	QualNone Qualifier = iota
	QualConstant
	QualRetain
	QualPersistent
)

func (q Qualifier) String() string {
	switch q {
	case QualConstant:
		return "CONSTANT"
	case QualRetain:
		return "RETAIN"
	case QualPersistent:
		return "PERSISTENT"
	default:
		return ""
	}
}

// VarBlock is one VAR.../END_VAR group of declarations.
type VarBlock struct {
	Storage   Storage
	Qualifier Qualifier
	Decls     []*VarDecl
}

// VarDecl declares a single variable. Init is nil when no initializer is given.
type VarDecl struct {
	Name string
	Type TypeRef
	Init Expr
}

// ----------------------------------------------------------------------------
// Type references

// TypeRef is the interface for all type reference nodes.
type TypeRef interface {
	aType()
}

// ScalarType is a builtin elementary type such as BOOL, INT, or TIME.
type ScalarType struct {
	Name string
}

// StringType is STRING with an optional declared length (0 means unsized).
type StringType struct {
	Length int
}

// ArrayType is ARRAY [Lower..Upper] OF Elem.
type ArrayType struct {
	Lower int
	Upper int
	Elem  TypeRef
}

// StructType is an inline STRUCT...END_STRUCT definition.
type StructType struct {
	Fields []*VarDecl
}

// NamedType refers to a user-defined type or function block instance type.
type NamedType struct {
	Name string
}

func (*ScalarType) aType() {}
func (*StringType) aType() {}
func (*ArrayType) aType()  {}
func (*StructType) aType() {}
func (*NamedType) aType()  {}

// ----------------------------------------------------------------------------
// Statements

// Stmt is the interface for all statement nodes.
type Stmt interface {
	aStmt()
}

// AssignStmt is Target := Value;
type AssignStmt struct {
	Target Expr
	Value  Expr
}

// ElifBranch is one ELSIF arm of an if statement.
type ElifBranch struct {
	Cond Expr
	Body []Stmt
}

// IfStmt is IF Cond THEN Then [ELSIF...]* [ELSE Else] END_IF;
type IfStmt struct {
	Cond  Expr
	Then  []Stmt
	Elifs []*ElifBranch
	Else  []Stmt
}

// CaseEntry is one selection arm of a case statement. Values holds the raw
// selector texts (numbers or enumeration identifiers).
type CaseEntry struct {
	Values []string
	Body   []Stmt
}

// CaseStmt is CASE Cond OF entries [ELSE Else] END_CASE;
type CaseStmt struct {
	Cond    Expr
	Entries []*CaseEntry
	Else    []Stmt
}

// ForStmt is FOR Var := From TO To [BY Step] DO Body END_FOR;
// Step is nil when no BY clause is present.
type ForStmt struct {
	Var  string
	From Expr
	To   Expr
	Step Expr
	Body []Stmt
}

// WhileStmt is WHILE Cond DO Body END_WHILE;
type WhileStmt struct {
	Cond Expr
	Body []Stmt
}

// RepeatStmt is REPEAT Body UNTIL Until END_REPEAT;
type RepeatStmt struct {
	Body  []Stmt
	Until Expr
}

// CallStmt is a function or function block invocation used as a statement.
type CallStmt struct {
	Name string
	Args []*Arg
}

// ReturnStmt is RETURN;
type ReturnStmt struct{}

// ExitStmt is EXIT;
type ExitStmt struct{}

// ContinueStmt is CONTINUE;
type ContinueStmt struct{}

func (*AssignStmt) aStmt()   {}
func (*IfStmt) aStmt()       {}
func (*CaseStmt) aStmt()     {}
func (*ForStmt) aStmt()      {}
func (*WhileStmt) aStmt()    {}
func (*RepeatStmt) aStmt()   {}
func (*CallStmt) aStmt()     {}
func (*ReturnStmt) aStmt()   {}
func (*ExitStmt) aStmt()     {}
func (*ContinueStmt) aStmt() {}

// ----------------------------------------------------------------------------
// Expressions

// Expr is the interface for all expression nodes.
type Expr interface {
	aExpr()
}

// VarRef is a reference to a variable by name.
type VarRef struct {
	Name string
}

// Literal is a numeric, string, boolean, or typed literal kept in raw
// source form (e.g. "42", "T#10ms", "16#FF", "'abc'").
type Literal struct {
	Raw string
}

// BinaryExpr is Left Op Right. Op is the upper-cased source operator.
type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
}

// UnaryExpr is Op Operand, where Op is "NOT" or "-".
type UnaryExpr struct {
	Op      string
	Operand Expr
}

// CallExpr is a function invocation in expression position.
type CallExpr struct {
	Name string
	Args []*Arg
}

// Arg is one invocation argument. Name is empty for positional arguments
// and set for the formal `name := expr` form.
type Arg struct {
	Name  string
	Value Expr
}

func (*VarRef) aExpr()     {}
func (*Literal) aExpr()    {}
func (*BinaryExpr) aExpr() {}
func (*UnaryExpr) aExpr()  {}
func (*CallExpr) aExpr()   {}
