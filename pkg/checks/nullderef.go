package checks

import (
	"fmt"

	"github.com/l3aro/go-symflow/pkg/syntax"
)

// NullDereference reports property accesses on bindings that may hold null
// or undefined at that point, according to the observation stream.
type NullDereference struct{}

func (NullDereference) Key() string { return "null-dereference" }

func (NullDereference) Description() string {
	return "Properties of variables that may be null or undefined should not be accessed"
}

func (NullDereference) Check(ctx *Context) []Issue {
	var issues []Issue
	for _, res := range ctx.Results {
		if res == nil {
			continue
		}
		for _, o := range res.Observations {
			reported := make(map[*syntax.Binding]bool)
			for _, m := range dereferences(o.Node) {
				id := syntax.Unparen(m.Object).(*syntax.Ident)
				if reported[id.Binding] || !o.State.Get(id.Binding).MayBeNull() {
					continue
				}
				reported[id.Binding] = true
				issues = append(issues, Issue{
					Pos:     m.Start,
					Message: fmt.Sprintf("TypeError can be thrown as %q might be null or undefined here.", id.Name),
				})
			}
		}
	}
	return issues
}

// dereferences returns the member accesses of an element that run whenever
// the element runs and whose object is an identifier. Short-circuited
// operands, optional chains and nested functions are skipped.
func dereferences(n syntax.Node) []*syntax.MemberExpr {
	if fi, ok := n.(*syntax.ForInStmt); ok {
		n = fi.Left
	}
	var out []*syntax.MemberExpr
	var walk func(n syntax.Node)
	walk = func(n syntax.Node) {
		switch n := n.(type) {
		case nil, *syntax.FuncLit, *syntax.ClassLit:
			return
		case *syntax.LogicalExpr:
			walk(n.X)
			return
		case *syntax.ConditionalExpr:
			walk(n.Test)
			return
		case *syntax.MemberExpr:
			if n.Optional {
				return
			}
			if id, ok := syntax.Unparen(n.Object).(*syntax.Ident); ok && id.Binding != nil {
				out = append(out, n)
			}
		case *syntax.CallExpr:
			if n.Optional {
				return
			}
		}
		for _, c := range syntax.Children(n) {
			walk(c)
		}
	}
	walk(n)
	return out
}
