package checks

import (
	"fmt"

	"github.com/l3aro/go-symflow/pkg/syntax"
)

// CounterUpdatedInLoop reports assignments to a loop counter inside the
// loop body. Counters are the identifiers updated in the update clause of a
// for loop and the iteration variables of for-in and for-of loops.
type CounterUpdatedInLoop struct{}

func (CounterUpdatedInLoop) Key() string { return "counter-updated-in-loop" }

func (CounterUpdatedInLoop) Description() string {
	return "Loop counters should not be assigned to from within the loop body"
}

func (CounterUpdatedInLoop) Check(ctx *Context) []Issue {
	v := &counterVisitor{}
	for _, st := range ctx.File.TopLevel.Body {
		v.visit(st)
	}
	return v.issues
}

type counterVisitor struct {
	// loops maps, per enclosing loop body, each write usage of a counter to
	// the identifier that made it a counter.
	loops  []map[*syntax.Ident]*syntax.Ident
	issues []Issue
}

func (v *counterVisitor) visit(n syntax.Node) {
	switch n := n.(type) {
	case nil:
		return
	case *syntax.ForStmt:
		v.visit(n.Init)
		v.visit(n.Test)
		var counters []*syntax.Ident
		if n.Update != nil {
			counters = updatedIdents(n.Update)
			v.visit(n.Update)
		}
		v.loop(counters, n.Body)
		return
	case *syntax.ForInStmt:
		v.visit(n.Left)
		v.visit(n.Right)
		v.loop(iterationIdents(n.Left), n.Body)
		return
	case *syntax.Ident:
		for _, writes := range v.loops {
			if counter, ok := writes[n]; ok {
				v.issues = append(v.issues, Issue{
					Pos:       n.Start,
					Message:   fmt.Sprintf("Remove this assignment of %q.", n.Name),
					Secondary: []Location{{Pos: counter.Start, Message: "Counter variable update"}},
				})
				return
			}
		}
		return
	}
	for _, c := range syntax.Children(n) {
		v.visit(c)
	}
}

func (v *counterVisitor) loop(counters []*syntax.Ident, body syntax.Stmt) {
	writes := make(map[*syntax.Ident]*syntax.Ident)
	for _, c := range counters {
		if c.Binding == nil {
			continue
		}
		for _, u := range c.Binding.Usages {
			if u.IsWrite() {
				writes[u.Ident] = c
			}
		}
	}
	v.loops = append(v.loops, writes)
	v.visit(body)
	v.loops = v.loops[:len(v.loops)-1]
}

// updatedIdents returns the identifiers assigned or incremented by a for
// loop update clause.
func updatedIdents(update syntax.Expr) []*syntax.Ident {
	var out []*syntax.Ident
	syntax.Inspect(update, func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.FuncLit:
			return false
		case *syntax.AssignExpr:
			if id, ok := syntax.Unparen(n.Target).(*syntax.Ident); ok {
				out = append(out, id)
			}
		case *syntax.UpdateExpr:
			if id, ok := syntax.Unparen(n.X).(*syntax.Ident); ok {
				out = append(out, id)
			}
		}
		return true
	})
	return out
}

// iterationIdents returns the variables bound by a for-in or for-of head.
func iterationIdents(left syntax.Node) []*syntax.Ident {
	switch l := left.(type) {
	case *syntax.VarDecl:
		var out []*syntax.Ident
		for _, d := range l.Decls {
			out = append(out, syntax.TargetIdents(d.Target)...)
		}
		return out
	case *syntax.AssignExpr:
		return syntax.TargetIdents(l.Target)
	case syntax.Expr:
		return syntax.TargetIdents(l)
	}
	return nil
}
