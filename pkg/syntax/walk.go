package syntax

// Children returns the direct child nodes of n in source order. Nil
// children are skipped.
func Children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, c := range nodes {
			if c != nil && !isNilNode(c) {
				out = append(out, c)
			}
		}
	}
	addExprs := func(list []Expr) {
		for _, e := range list {
			if e != nil {
				add(e)
			}
		}
	}
	addStmts := func(list []Stmt) {
		for _, s := range list {
			add(s)
		}
	}

	switch n := n.(type) {
	case *VarDecl:
		for _, d := range n.Decls {
			add(d)
		}
	case *Declarator:
		add(n.Target, n.Init)
	case *ExprStmt:
		add(n.X)
	case *BlockStmt:
		addStmts(n.List)
	case *IfStmt:
		add(n.Test, n.Then, n.Else)
	case *WhileStmt:
		add(n.Test, n.Body)
	case *DoWhileStmt:
		add(n.Body, n.Test)
	case *ForStmt:
		add(n.Init, n.Test, n.Update, n.Body)
	case *ForInStmt:
		add(n.Left, n.Right, n.Body)
	case *ReturnStmt:
		add(n.Result)
	case *ThrowStmt:
		add(n.X)
	case *TryStmt:
		add(n.Body, n.Param, n.Handler, n.Finally)
	case *SwitchStmt:
		add(n.Tag)
		for _, c := range n.Cases {
			add(c)
		}
	case *CaseClause:
		add(n.Test)
		addStmts(n.Body)
	case *LabeledStmt:
		add(n.Body)
	case *FuncDecl:
		add(n.Func)
	case *ClassDecl:
		add(n.Class)
	case *ImportDecl:
		for _, id := range n.Names {
			add(id)
		}
	case *BadStmt:
		for _, id := range n.Idents {
			add(id)
		}
	case *Literal:
		addExprs(n.Parts)
	case *ObjectLit:
		for _, p := range n.Props {
			add(p)
		}
	case *Property:
		add(n.Key, n.Value)
	case *ArrayLit:
		addExprs(n.Elems)
	case *FuncLit:
		add(n.Name)
		addExprs(n.Params)
		add(n.Body)
	case *ClassLit:
		add(n.Name, n.Super)
		addExprs(n.Members)
	case *MemberExpr:
		add(n.Object, n.Property)
	case *CallExpr:
		add(n.Callee)
		addExprs(n.Args)
	case *AssignExpr:
		add(n.Target, n.Value)
	case *BinaryExpr:
		add(n.X, n.Y)
	case *LogicalExpr:
		add(n.X, n.Y)
	case *ConditionalExpr:
		add(n.Test, n.Then, n.Else)
	case *UnaryExpr:
		add(n.X)
	case *UpdateExpr:
		add(n.X)
	case *ParenExpr:
		add(n.X)
	case *SequenceExpr:
		addExprs(n.List)
	case *SpreadExpr:
		add(n.X)
	case *Pattern:
		addExprs(n.Elems)
	case *BadExpr:
		addExprs(n.Children)
	}
	return out
}

// Inspect traverses the tree rooted at n in depth-first order. If f returns
// false the children of the current node are skipped.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || isNilNode(n) || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}

// isNilNode catches typed nil pointers stored in interface fields.
func isNilNode(n Node) bool {
	switch n := n.(type) {
	case *BlockStmt:
		return n == nil
	case *Ident:
		return n == nil
	case *FuncLit:
		return n == nil
	case *ClassLit:
		return n == nil
	case *VarDecl:
		return n == nil
	case *Declarator:
		return n == nil
	case *CaseClause:
		return n == nil
	case *Property:
		return n == nil
	}
	return false
}
