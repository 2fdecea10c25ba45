package symbolic

import (
	"strings"

	"github.com/l3aro/go-symflow/pkg/cfg"
	"github.com/l3aro/go-symflow/pkg/syntax"
)

// executor holds the transfer rules. unmodeled is called for every construct
// the rules do not understand; it is nil while iterating to the fixpoint.
type executor struct {
	unmodeled func(n syntax.Node, kind string)
}

func (x *executor) report(n syntax.Node, kind string) {
	if x.unmodeled != nil {
		x.unmodeled(n, kind)
	}
}

// block applies the elements of b to s and returns the state at the end of
// the block. observe, when set, sees the state before every element.
func (x *executor) block(b *cfg.Block, s *State, observe func(el syntax.Node, before *State)) *State {
	if b.Opaque {
		if observe != nil && len(b.Elements) > 0 {
			observe(b.Elements[0], s)
		}
		if len(b.Elements) > 0 {
			x.report(b.Elements[0], opaqueKind(b.Elements[0]))
		}
		for _, binding := range b.Touched {
			s = s.Set(binding, Unknown)
		}
		return s
	}
	for _, el := range b.Elements {
		if s == nil {
			return nil
		}
		if observe != nil {
			observe(el, s)
		}
		s = x.element(s, el)
	}
	return s
}

func opaqueKind(n syntax.Node) string {
	if bad, ok := n.(*syntax.BadStmt); ok {
		return bad.Kind
	}
	switch n.(type) {
	case *syntax.BreakStmt:
		return "break without target"
	case *syntax.ContinueStmt:
		return "continue without target"
	}
	return "statement"
}

func (x *executor) element(s *State, n syntax.Node) *State {
	switch n := n.(type) {
	case *syntax.VarDecl:
		for _, d := range n.Decls {
			s = x.declare(s, n.Kind, d)
		}
	case *syntax.ExprStmt:
		_, s = x.eval(s, n.X)
	case *syntax.ReturnStmt:
		_, s = x.eval(s, n.Result)
	case *syntax.ThrowStmt:
		_, s = x.eval(s, n.X)
	case *syntax.FuncDecl:
		if n.Func != nil && n.Func.Name != nil {
			s = s.Set(n.Func.Name.Binding, Truthy)
		}
	case *syntax.ClassDecl:
		if n.Class != nil {
			_, s = x.eval(s, n.Class.Super)
			if n.Class.Name != nil {
				s = s.Set(n.Class.Name.Binding, Truthy)
			}
		}
	case *syntax.ImportDecl:
		for _, id := range n.Names {
			s = s.Set(id.Binding, Unknown)
		}
	case *syntax.ForInStmt:
		s = x.iterate(s, n.Left)
	case *syntax.BreakStmt, *syntax.ContinueStmt, *syntax.EmptyStmt:
	case syntax.Expr:
		_, s = x.eval(s, n)
	default:
		x.report(n, "statement")
	}
	return s
}

// declare applies one declarator. let without initializer is undefined; var
// without initializer keeps whatever the hoisted binding holds.
func (x *executor) declare(s *State, kind syntax.DeclKind, d *syntax.Declarator) *State {
	if d.Init == nil {
		if id, ok := d.Target.(*syntax.Ident); ok && kind != syntax.DeclVar {
			s = s.Set(id.Binding, Null)
		}
		return s
	}
	v, s := x.eval(s, d.Init)
	if id, ok := d.Target.(*syntax.Ident); ok {
		return s.Set(id.Binding, v)
	}
	for _, id := range syntax.TargetIdents(d.Target) {
		s = s.Set(id.Binding, Unknown)
	}
	return s
}

// iterate binds the loop variable of a for-in or for-of head to the next
// element, which can be anything.
func (x *executor) iterate(s *State, left syntax.Node) *State {
	switch l := left.(type) {
	case *syntax.VarDecl:
		for _, d := range l.Decls {
			for _, id := range syntax.TargetIdents(d.Target) {
				s = s.Set(id.Binding, Unknown)
			}
		}
	case *syntax.MemberExpr:
		_, s = x.eval(s, l)
	case syntax.Expr:
		for _, id := range syntax.TargetIdents(l) {
			s = s.Set(id.Binding, Unknown)
		}
	}
	return s
}

// eval returns the value of e and the state after evaluating it.
func (x *executor) eval(s *State, e syntax.Expr) (Value, *State) {
	if s == nil || e == nil {
		return Unknown, s
	}
	switch e := e.(type) {
	case *syntax.Ident:
		return s.Get(e.Binding), s
	case *syntax.Literal:
		for _, part := range e.Parts {
			_, s = x.eval(s, part)
		}
		return literalValue(e), s
	case *syntax.ObjectLit:
		for _, p := range e.Props {
			if p.Computed {
				_, s = x.eval(s, p.Key)
			}
			_, s = x.eval(s, p.Value)
		}
		return Truthy, s
	case *syntax.ArrayLit:
		for _, el := range e.Elems {
			_, s = x.eval(s, el)
		}
		return Truthy, s
	case *syntax.FuncLit:
		return Truthy, s
	case *syntax.ClassLit:
		_, s = x.eval(s, e.Super)
		return Truthy, s
	case *syntax.ThisExpr:
		return Unknown, s
	case *syntax.MemberExpr:
		_, s = x.eval(s, e.Object)
		if e.Computed {
			_, s = x.eval(s, e.Property)
		}
		return Unknown, RefineAccess(s, e)
	case *syntax.CallExpr:
		_, s = x.eval(s, e.Callee)
		for _, arg := range e.Args {
			_, s = x.eval(s, arg)
		}
		if e.New {
			return Truthy, s
		}
		return Unknown, s
	case *syntax.AssignExpr:
		return x.assign(s, e)
	case *syntax.BinaryExpr:
		_, s = x.eval(s, e.X)
		_, s = x.eval(s, e.Y)
		return NotNull, s
	case *syntax.LogicalExpr:
		return x.logical(s, e)
	case *syntax.ConditionalExpr:
		_, s = x.eval(s, e.Test)
		vt, st := x.eval(Assume(s, e.Test, true), e.Then)
		vf, sf := x.eval(Assume(s, e.Test, false), e.Else)
		return joinResults(vt, st, vf, sf)
	case *syntax.UnaryExpr:
		v, s := x.eval(s, e.X)
		return unaryValue(e.Op, v), s
	case *syntax.UpdateExpr:
		_, s = x.eval(s, e.X)
		if id, ok := syntax.Unparen(e.X).(*syntax.Ident); ok {
			s = s.Set(id.Binding, NotNull)
		}
		return NotNull, s
	case *syntax.ParenExpr:
		return x.eval(s, e.X)
	case *syntax.SequenceExpr:
		v := Unknown
		for _, item := range e.List {
			v, s = x.eval(s, item)
		}
		return v, s
	case *syntax.SpreadExpr:
		_, s = x.eval(s, e.X)
		return Unknown, s
	case *syntax.Pattern:
		return Unknown, s
	case *syntax.BadExpr:
		x.report(e, e.Kind)
		for _, child := range e.Children {
			_, s = x.eval(s, child)
		}
		return Unknown, s
	}
	x.report(e, "expression")
	return Unknown, s
}

func (x *executor) assign(s *State, e *syntax.AssignExpr) (Value, *State) {
	target := syntax.Unparen(e.Target)
	if m, ok := target.(*syntax.MemberExpr); ok {
		_, s = x.eval(s, m.Object)
		if m.Computed {
			_, s = x.eval(s, m.Property)
		}
		s = RefineAccess(s, m)
		if e.Op != "=" {
			return Unknown, s
		}
		return x.eval(s, e.Value)
	}

	switch e.Op {
	case "=":
		v, s := x.eval(s, e.Value)
		if id, ok := target.(*syntax.Ident); ok {
			return v, s.Set(id.Binding, v)
		}
		for _, id := range syntax.TargetIdents(target) {
			s = s.Set(id.Binding, Unknown)
		}
		return v, s
	case "&&=", "||=", "??=":
		_, s = x.eval(s, e.Value)
		for _, id := range syntax.TargetIdents(target) {
			s = s.Set(id.Binding, Unknown)
		}
		return Unknown, s
	}
	// arithmetic, bitwise and shift compound assignments
	_, s = x.eval(s, e.Value)
	for _, id := range syntax.TargetIdents(target) {
		s = s.Set(id.Binding, NotNull)
	}
	return NotNull, s
}

// logical evaluates the right operand only on the path where it runs and
// joins both paths.
func (x *executor) logical(s *State, e *syntax.LogicalExpr) (Value, *State) {
	vx, s := x.eval(s, e.X)
	switch e.Op {
	case "&&":
		short, _ := Narrow(vx, Null|Falsy)
		vy, sy := x.eval(Assume(s, e.X, true), e.Y)
		return joinResults(short, Assume(s, e.X, false), vy, sy)
	case "||":
		short, _ := Narrow(vx, Truthy)
		vy, sy := x.eval(Assume(s, e.X, false), e.Y)
		return joinResults(short, Assume(s, e.X, true), vy, sy)
	case "??":
		short, _ := Narrow(vx, NotNull)
		vy, sy := x.eval(s, e.Y)
		return joinResults(short, s, vy, sy)
	}
	x.report(e, "logical "+e.Op)
	_, s = x.eval(s, e.Y)
	return Unknown, s
}

// joinResults merges the value and state of two paths, ignoring a path whose
// state is unreachable or whose value is empty.
func joinResults(va Value, sa *State, vb Value, sb *State) (Value, *State) {
	switch {
	case sa == nil || va == 0:
		if sb == nil {
			return Unknown, sa.Merge(sb)
		}
		return normalize(vb), sa.Merge(sb)
	case sb == nil || vb == 0:
		return normalize(va), sa.Merge(sb)
	}
	return Merge(va, vb), sa.Merge(sb)
}

func literalValue(l *syntax.Literal) Value {
	switch l.Kind {
	case syntax.LitNull, syntax.LitUndefined:
		return Null
	case syntax.LitBool:
		if l.Raw == "true" {
			return Truthy
		}
		return Falsy
	case syntax.LitNumber:
		if isZero(l.Raw) {
			return Falsy
		}
		return Truthy
	case syntax.LitString:
		if len(l.Raw) <= 2 {
			return Falsy
		}
		return Truthy
	case syntax.LitTemplate:
		if len(l.Parts) > 0 {
			return NotNull
		}
		if len(l.Raw) <= 2 {
			return Falsy
		}
		return Truthy
	case syntax.LitRegex:
		return Truthy
	}
	return Unknown
}

// isZero reports whether a numeric literal denotes zero in any radix, such as
// 0, 0.0, 0x0 or 0n.
func isZero(raw string) bool {
	raw = strings.ToLower(strings.ReplaceAll(raw, "_", ""))
	raw = strings.TrimSuffix(raw, "n")
	for _, prefix := range []string{"0x", "0o", "0b"} {
		if strings.HasPrefix(raw, prefix) {
			raw = raw[2:]
			break
		}
	}
	if i := strings.IndexByte(raw, 'e'); i >= 0 {
		raw = raw[:i]
	}
	for _, c := range raw {
		if c != '0' && c != '.' {
			return false
		}
	}
	return raw != "" && raw != "."
}

func unaryValue(op string, v Value) Value {
	switch op {
	case "!":
		switch {
		case v == Unknown:
			return NotNull
		case v&Truthy == 0:
			return Truthy
		case v == Truthy:
			return Falsy
		}
		return NotNull
	case "void":
		return Null
	case "typeof":
		return Truthy
	case "await":
		// Only objects can be thenables; anything else resolves to itself.
		if v != 0 && v&Truthy == 0 {
			return v
		}
		return Unknown
	}
	return NotNull
}
