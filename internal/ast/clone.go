package ast

// CloneFile returns a deep copy of f. Analyses that mutate an AST must copy
// it first; originals stay valid for diffing and retry.
func CloneFile(f *File) *File {
	if f == nil {
		return nil
	}
	out := &File{Units: make([]*Unit, len(f.Units))}
	for i, u := range f.Units {
		out.Units[i] = CloneUnit(u)
	}
	return out
}

// CloneUnit returns a deep copy of u.
func CloneUnit(u *Unit) *Unit {
	if u == nil {
		return nil
	}
	out := &Unit{
		Kind:       u.Kind,
		Name:       u.Name,
		ReturnType: cloneType(u.ReturnType),
	}
	for _, vb := range u.VarBlocks {
		out.VarBlocks = append(out.VarBlocks, cloneVarBlock(vb))
	}
	out.Body = CloneStmts(u.Body)
	return out
}

func cloneVarBlock(vb *VarBlock) *VarBlock {
	out := &VarBlock{Storage: vb.Storage, Qualifier: vb.Qualifier}
	for _, d := range vb.Decls {
		out.Decls = append(out.Decls, cloneVarDecl(d))
	}
	return out
}

func cloneVarDecl(d *VarDecl) *VarDecl {
	return &VarDecl{Name: d.Name, Type: cloneType(d.Type), Init: CloneExpr(d.Init)}
}

func cloneType(t TypeRef) TypeRef {
	switch t := t.(type) {
	case nil:
		return nil
	case *ScalarType:
		return &ScalarType{Name: t.Name}
	case *StringType:
		return &StringType{Length: t.Length}
	case *ArrayType:
		return &ArrayType{Lower: t.Lower, Upper: t.Upper, Elem: cloneType(t.Elem)}
	case *StructType:
		out := &StructType{}
		for _, f := range t.Fields {
			out.Fields = append(out.Fields, cloneVarDecl(f))
		}
		return out
	case *NamedType:
		return &NamedType{Name: t.Name}
	default:
		return nil
	}
}

// CloneStmts deep-copies a statement list.
func CloneStmts(stmts []Stmt) []Stmt {
	if stmts == nil {
		return nil
	}
	out := make([]Stmt, len(stmts))
	for i, s := range stmts {
		out[i] = CloneStmt(s)
	}
	return out
}

// CloneStmt deep-copies a single statement.
func CloneStmt(s Stmt) Stmt {
	switch s := s.(type) {
	case *AssignStmt:
		return &AssignStmt{Target: CloneExpr(s.Target), Value: CloneExpr(s.Value)}
	case *IfStmt:
		out := &IfStmt{
			Cond: CloneExpr(s.Cond),
			Then: CloneStmts(s.Then),
			Else: CloneStmts(s.Else),
		}
		for _, e := range s.Elifs {
			out.Elifs = append(out.Elifs, &ElifBranch{Cond: CloneExpr(e.Cond), Body: CloneStmts(e.Body)})
		}
		return out
	case *CaseStmt:
		out := &CaseStmt{Cond: CloneExpr(s.Cond), Else: CloneStmts(s.Else)}
		for _, e := range s.Entries {
			values := make([]string, len(e.Values))
			copy(values, e.Values)
			out.Entries = append(out.Entries, &CaseEntry{Values: values, Body: CloneStmts(e.Body)})
		}
		return out
	case *ForStmt:
		return &ForStmt{
			Var:  s.Var,
			From: CloneExpr(s.From),
			To:   CloneExpr(s.To),
			Step: CloneExpr(s.Step),
			Body: CloneStmts(s.Body),
		}
	case *WhileStmt:
		return &WhileStmt{Cond: CloneExpr(s.Cond), Body: CloneStmts(s.Body)}
	case *RepeatStmt:
		return &RepeatStmt{Body: CloneStmts(s.Body), Until: CloneExpr(s.Until)}
	case *CallStmt:
		return &CallStmt{Name: s.Name, Args: cloneArgs(s.Args)}
	case *ReturnStmt:
		return &ReturnStmt{}
	case *ExitStmt:
		return &ExitStmt{}
	case *ContinueStmt:
		return &ContinueStmt{}
	default:
		return nil
	}
}

// CloneExpr deep-copies an expression.
func CloneExpr(e Expr) Expr {
	switch e := e.(type) {
	case nil:
		return nil
	case *VarRef:
		return &VarRef{Name: e.Name}
	case *Literal:
		return &Literal{Raw: e.Raw}
	case *BinaryExpr:
		return &BinaryExpr{Op: e.Op, Left: CloneExpr(e.Left), Right: CloneExpr(e.Right)}
	case *UnaryExpr:
		return &UnaryExpr{Op: e.Op, Operand: CloneExpr(e.Operand)}
	case *CallExpr:
		return &CallExpr{Name: e.Name, Args: cloneArgs(e.Args)}
	default:
		return nil
	}
}

func cloneArgs(args []*Arg) []*Arg {
	var out []*Arg
	for _, a := range args {
		out = append(out, &Arg{Name: a.Name, Value: CloneExpr(a.Value)})
	}
	return out
}
