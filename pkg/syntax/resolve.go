package syntax

type scope struct {
	parent *scope
	fn     *Function
	names  map[string]*Binding
	// arrow functions have no arguments object of their own
	arrow bool
	isFn  bool
}

func (s *scope) lookup(name string) *Binding {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.names[name]; ok {
			return b
		}
	}
	return nil
}

func (s *scope) functionScope() *scope {
	cur := s
	for cur.parent != nil && !cur.isFn {
		cur = cur.parent
	}
	return cur
}

type resolver struct {
	file  *File
	free  map[string]*Binding
	byLit map[*FuncLit]*Function
}

func newResolver(file *File) *resolver {
	return &resolver{
		file:  file,
		free:  make(map[string]*Binding),
		byLit: make(map[*FuncLit]*Function),
	}
}

func (r *resolver) resolveFile(top *Function) {
	r.file.TopLevel = top
	r.file.Functions = append(r.file.Functions, top)
	s := &scope{fn: top, names: make(map[string]*Binding), isFn: true}
	r.hoist(s, top.Body)
	r.stmtList(s, top.Body)
	r.file.byLit = r.byLit
}

func (r *resolver) newBinding(name string, kind BindingKind, owner *Function) *Binding {
	b := &Binding{ID: len(r.file.Bindings), Name: name, Kind: kind, Owner: owner}
	r.file.Bindings = append(r.file.Bindings, b)
	return b
}

// declare binds id in s. A redeclaration of a var-like name reuses the
// existing binding.
func (r *resolver) declare(s *scope, id *Ident, kind BindingKind) *Binding {
	if id == nil {
		return nil
	}
	b, ok := s.names[id.Name]
	if !ok {
		b = r.newBinding(id.Name, kind, s.fn)
		b.Decl = id
		s.names[id.Name] = b
		if kind == KindParam {
			s.fn.Params = append(s.fn.Params, b)
		} else {
			s.fn.Locals = append(s.fn.Locals, b)
		}
	}
	id.Binding = b
	b.Usages = append(b.Usages, Usage{Ident: id, Kind: UsageDeclaration})
	return b
}

// use resolves a reference. Names with no declaration in scope resolve to
// builtin bindings for eval and arguments and to a per-file free binding
// otherwise.
func (r *resolver) use(s *scope, id *Ident, kind UsageKind) {
	if id == nil {
		return
	}
	b := s.lookup(id.Name)
	if b == nil {
		b = r.implicit(s, id.Name)
	}
	id.Binding = b
	b.Usages = append(b.Usages, Usage{Ident: id, Kind: kind})
}

func (r *resolver) implicit(s *scope, name string) *Binding {
	if name == "arguments" {
		fs := s.functionScope()
		for fs.arrow && fs.parent != nil {
			fs = fs.parent.functionScope()
		}
		if !fs.fn.IsTopLevel() {
			b := r.newBinding(name, KindBuiltin, nil)
			fs.names[name] = b
			return b
		}
	}
	if b, ok := r.free[name]; ok {
		return b
	}
	kind := KindFree
	if name == "eval" || name == "arguments" {
		kind = KindBuiltin
	}
	b := r.newBinding(name, kind, nil)
	r.free[name] = b
	return b
}

// hoist declares the var and function declarations of a function body,
// not descending into nested functions.
func (r *resolver) hoist(s *scope, list []Stmt) {
	for _, st := range list {
		Inspect(st, func(n Node) bool {
			switch n := n.(type) {
			case *VarDecl:
				if n.Kind == DeclVar {
					for _, d := range n.Decls {
						for _, id := range patternIdents(d.Target) {
							r.declare(s, id, KindVar)
						}
					}
				}
			case *FuncDecl:
				r.declare(s, n.Func.Name, KindFunction)
				return false
			case *FuncLit, *ClassLit:
				return false
			case Expr:
				// var declarations never hide inside expressions
				return false
			}
			return true
		})
	}
}

// declareLexical declares the let, const and class declarations found
// directly in list.
func (r *resolver) declareLexical(s *scope, list []Stmt) {
	for _, st := range list {
		switch st := st.(type) {
		case *VarDecl:
			if st.Kind == DeclVar {
				continue
			}
			kind := KindLet
			if st.Kind == DeclConst {
				kind = KindConst
			}
			for _, d := range st.Decls {
				for _, id := range patternIdents(d.Target) {
					r.declare(s, id, kind)
				}
			}
		case *ClassDecl:
			r.declare(s, st.Class.Name, KindClass)
		}
	}
}

func (r *resolver) stmtList(s *scope, list []Stmt) {
	r.declareLexical(s, list)
	for _, st := range list {
		r.stmt(s, st)
	}
}

func (r *resolver) block(s *scope, b *BlockStmt) {
	if b == nil {
		return
	}
	r.stmtList(r.child(s), b.List)
}

func (r *resolver) child(s *scope) *scope {
	return &scope{parent: s, fn: s.fn, names: make(map[string]*Binding)}
}

func (r *resolver) stmt(s *scope, st Stmt) {
	switch st := st.(type) {
	case nil:
	case *VarDecl:
		for _, d := range st.Decls {
			// targets were declared by hoist or declareLexical
			r.patternDefaults(s, d.Target)
			r.expr(s, d.Init)
		}
	case *ExprStmt:
		r.expr(s, st.X)
	case *BlockStmt:
		r.block(s, st)
	case *IfStmt:
		r.expr(s, st.Test)
		r.nested(s, st.Then)
		r.nested(s, st.Else)
	case *WhileStmt:
		r.expr(s, st.Test)
		r.nested(s, st.Body)
	case *DoWhileStmt:
		r.nested(s, st.Body)
		r.expr(s, st.Test)
	case *ForStmt:
		loop := r.child(s)
		if st.Init != nil {
			r.stmtList(loop, []Stmt{st.Init})
		}
		r.expr(loop, st.Test)
		r.expr(loop, st.Update)
		r.nested(loop, st.Body)
	case *ForInStmt:
		r.expr(s, st.Right)
		loop := r.child(s)
		switch left := st.Left.(type) {
		case *VarDecl:
			r.stmtList(loop, []Stmt{left})
		case Expr:
			r.target(loop, left, UsageWrite)
		}
		r.nested(loop, st.Body)
	case *ReturnStmt:
		r.expr(s, st.Result)
	case *ThrowStmt:
		r.expr(s, st.X)
	case *TryStmt:
		r.block(s, st.Body)
		if st.Handler != nil {
			cs := r.child(s)
			for _, id := range patternIdents(st.Param) {
				r.declare(cs, id, KindCatch)
			}
			r.patternDefaults(cs, st.Param)
			r.block(cs, st.Handler)
		}
		r.block(s, st.Finally)
	case *SwitchStmt:
		r.expr(s, st.Tag)
		cs := r.child(s)
		var all []Stmt
		for _, c := range st.Cases {
			all = append(all, c.Body...)
		}
		r.declareLexical(cs, all)
		for _, c := range st.Cases {
			r.expr(cs, c.Test)
			for _, b := range c.Body {
				r.stmt(cs, b)
			}
		}
	case *LabeledStmt:
		r.nested(s, st.Body)
	case *FuncDecl:
		r.function(s, st.Func)
	case *ClassDecl:
		r.class(s, st.Class)
	case *ImportDecl:
		for _, id := range st.Names {
			r.declare(s.functionScope(), id, KindImport)
		}
	case *BadStmt:
		for _, id := range st.Idents {
			r.use(s, id, UsageRead)
		}
	}
}

// nested resolves a statement in its own block scope, as for loop bodies and
// branches that are not blocks.
func (r *resolver) nested(s *scope, st Stmt) {
	if st == nil {
		return
	}
	if b, ok := st.(*BlockStmt); ok {
		r.block(s, b)
		return
	}
	r.stmtList(r.child(s), []Stmt{st})
}

func (r *resolver) expr(s *scope, e Expr) {
	switch e := e.(type) {
	case nil:
	case *Ident:
		r.use(s, e, UsageRead)
	case *Literal:
		for _, p := range e.Parts {
			r.expr(s, p)
		}
	case *ObjectLit:
		for _, p := range e.Props {
			if p.Computed {
				r.expr(s, p.Key)
			}
			r.expr(s, p.Value)
		}
	case *ArrayLit:
		for _, el := range e.Elems {
			r.expr(s, el)
		}
	case *FuncLit:
		r.function(s, e)
	case *ClassLit:
		r.class(s, e)
	case *MemberExpr:
		r.expr(s, e.Object)
		if e.Computed {
			r.expr(s, e.Property)
		}
	case *CallExpr:
		r.expr(s, e.Callee)
		for _, a := range e.Args {
			r.expr(s, a)
		}
	case *AssignExpr:
		kind := UsageWrite
		if e.Op != "=" {
			kind = UsageReadWrite
		}
		r.target(s, e.Target, kind)
		r.expr(s, e.Value)
	case *BinaryExpr:
		r.expr(s, e.X)
		r.expr(s, e.Y)
	case *LogicalExpr:
		r.expr(s, e.X)
		r.expr(s, e.Y)
	case *ConditionalExpr:
		r.expr(s, e.Test)
		r.expr(s, e.Then)
		r.expr(s, e.Else)
	case *UnaryExpr:
		r.expr(s, e.X)
	case *UpdateExpr:
		r.target(s, e.X, UsageReadWrite)
	case *ParenExpr:
		r.expr(s, e.X)
	case *SequenceExpr:
		for _, x := range e.List {
			r.expr(s, x)
		}
	case *SpreadExpr:
		r.expr(s, e.X)
	case *Pattern:
		r.target(s, e, UsageWrite)
	case *BadExpr:
		for _, c := range e.Children {
			r.expr(s, c)
		}
	case *ThisExpr:
	}
}

// target resolves an assignment target.
func (r *resolver) target(s *scope, e Expr, kind UsageKind) {
	switch e := e.(type) {
	case *Ident:
		r.use(s, e, kind)
	case *ParenExpr:
		r.target(s, e.X, kind)
	case *Pattern:
		for _, el := range e.Elems {
			r.target(s, el, UsageWrite)
		}
	case *AssignExpr:
		r.target(s, e.Target, UsageWrite)
		r.expr(s, e.Value)
	case *SpreadExpr:
		r.target(s, e.X, UsageWrite)
	default:
		r.expr(s, e)
	}
}

// patternDefaults resolves the default-value expressions of a declaration
// pattern, whose identifiers are already declared.
func (r *resolver) patternDefaults(s *scope, e Expr) {
	switch e := e.(type) {
	case *Pattern:
		for _, el := range e.Elems {
			r.patternDefaults(s, el)
		}
	case *AssignExpr:
		r.patternDefaults(s, e.Target)
		r.expr(s, e.Value)
	case *SpreadExpr:
		r.patternDefaults(s, e.X)
	}
}

func (r *resolver) function(outer *scope, lit *FuncLit) {
	if lit == nil {
		return
	}
	fn := &Function{
		Name:   lit.DisplayName(),
		Lit:    lit,
		Body:   lit.Body.List,
		Loc:    lit.Loc,
		Parent: outer.fn,
	}
	r.byLit[lit] = fn
	r.file.Functions = append(r.file.Functions, fn)

	s := &scope{parent: outer, fn: fn, names: make(map[string]*Binding), isFn: true, arrow: lit.Arrow}
	for _, p := range lit.Params {
		for _, id := range patternIdents(p) {
			r.declare(s, id, KindParam)
		}
	}
	if lit.Name != nil && lit.Name.Binding == nil {
		// named function expressions see their own name
		if _, shadowed := s.names[lit.Name.Name]; !shadowed {
			r.declare(s, lit.Name, KindFunction)
		}
	}
	for _, p := range lit.Params {
		r.patternDefaults(s, p)
	}
	r.hoist(s, fn.Body)
	r.stmtList(s, fn.Body)
}

func (r *resolver) class(s *scope, cl *ClassLit) {
	if cl == nil {
		return
	}
	inner := s
	if cl.Name != nil && cl.Name.Binding == nil {
		inner = r.child(s)
		r.declare(inner, cl.Name, KindClass)
	}
	r.expr(inner, cl.Super)
	for _, m := range cl.Members {
		r.expr(inner, m)
	}
}

// patternIdents returns the identifiers bound by a declaration target.
func patternIdents(e Expr) []*Ident {
	var out []*Ident
	var walk func(Expr)
	walk = func(e Expr) {
		switch e := e.(type) {
		case *Ident:
			out = append(out, e)
		case *Pattern:
			for _, el := range e.Elems {
				walk(el)
			}
		case *AssignExpr:
			walk(e.Target)
		case *SpreadExpr:
			walk(e.X)
		}
	}
	walk(e)
	return out
}

// FunctionOf returns the analysis unit of a function literal.
func (f *File) FunctionOf(lit *FuncLit) *Function {
	return f.byLit[lit]
}

// TargetIdents returns the identifiers a declaration or assignment target
// binds, descending into destructuring patterns.
func TargetIdents(e Expr) []*Ident {
	return patternIdents(e)
}
