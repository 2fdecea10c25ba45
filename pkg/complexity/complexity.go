// Package complexity counts the conditional operators of expressions and
// reports the ones that exceed a threshold.
//
// An expression is one complexity unit: every &&, || and ?: inside it adds
// one to the same total, however deeply nested. Function literals, array
// elements, object property values and class members start units of their
// own and never add to the enclosing total.
package complexity

import (
	"fmt"
	"sort"

	"github.com/l3aro/go-symflow/pkg/syntax"
)

// DefaultMax is the default number of operators allowed in one expression.
const DefaultMax = 3

// Unit is the count of one complexity unit.
type Unit struct {
	Root      syntax.Expr
	Operators []syntax.Position
	// Depth is the deepest nesting of conditional expressions.
	Depth int
}

// Total is the number of counted operators.
func (u Unit) Total() int { return len(u.Operators) }

// Verdict is a noncompliant unit.
type Verdict struct {
	Pos         syntax.Position   `json:"pos"`
	Total       int               `json:"total"`
	Max         int               `json:"max"`
	EffortToFix int               `json:"effort_to_fix"`
	Operators   []syntax.Position `json:"operators"`
	Depth       int               `json:"depth"`
}

// Message is the issue message of the verdict.
func (v Verdict) Message() string {
	return fmt.Sprintf("Reduce the number of conditional operators (%d) used in the expression (maximum allowed %d).", v.Total, v.Max)
}

// accumulator is threaded through one unit walk and returned by value.
type accumulator struct {
	operators []syntax.Position
	depth     int
	maxDepth  int
	// nested holds the units and function bodies met during the walk.
	nested []syntax.Node
}

func (acc accumulator) walk(n syntax.Node) accumulator {
	switch n := n.(type) {
	case *syntax.FuncLit:
		if n.Body != nil {
			acc.nested = append(acc.nested, n.Body)
		}
		return acc
	case *syntax.ClassLit:
		if n.Super != nil {
			acc = acc.walk(n.Super)
		}
		for _, m := range n.Members {
			acc.nested = append(acc.nested, m)
		}
		return acc
	case *syntax.ArrayLit:
		for _, el := range n.Elems {
			if el != nil {
				acc.nested = append(acc.nested, el)
			}
		}
		return acc
	case *syntax.Property:
		if n.Computed && n.Key != nil {
			acc = acc.walk(n.Key)
		}
		if n.Value != nil {
			acc.nested = append(acc.nested, n.Value)
		}
		return acc
	case *syntax.LogicalExpr:
		acc = acc.walk(n.X)
		if n.Op == "&&" || n.Op == "||" {
			acc.operators = append(acc.operators, n.OpPos)
		}
		return acc.walk(n.Y)
	case *syntax.ConditionalExpr:
		acc = acc.walk(n.Test)
		acc.operators = append(acc.operators, n.QuestionPos)
		acc.depth++
		acc.maxDepth = max(acc.maxDepth, acc.depth)
		acc = acc.walk(n.Then)
		acc = acc.walk(n.Else)
		acc.depth--
		return acc
	}
	for _, c := range syntax.Children(n) {
		acc = acc.walk(c)
	}
	return acc
}

// Count counts the unit rooted at e. Units nested in e are not included.
func Count(e syntax.Expr) Unit {
	u, _ := count(e)
	return u
}

func count(e syntax.Expr) (Unit, []syntax.Node) {
	acc := accumulator{}.walk(e)
	ops := acc.operators
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].Offset < ops[j].Offset })
	return Unit{Root: e, Operators: ops, Depth: acc.maxDepth}, acc.nested
}

// Evaluate returns the verdict of u against max, and false when u complies.
func Evaluate(u Unit, max int) (Verdict, bool) {
	if max < 1 {
		max = DefaultMax
	}
	total := u.Total()
	if total <= max {
		return Verdict{}, false
	}
	return Verdict{
		Pos:         u.Operators[0],
		Total:       total,
		Max:         max,
		EffortToFix: total - max,
		Operators:   u.Operators,
		Depth:       u.Depth,
	}, true
}

// Check evaluates e and every unit nested in it, including the bodies of
// function literals, and returns the noncompliant verdicts in source order.
func Check(e syntax.Expr, max int) []Verdict {
	return check([]syntax.Node{e}, max)
}

// AnalyzeFile checks every expression of the file.
func AnalyzeFile(file *syntax.File, max int) []Verdict {
	nodes := make([]syntax.Node, 0, len(file.TopLevel.Body))
	for _, st := range file.TopLevel.Body {
		nodes = append(nodes, st)
	}
	return check(nodes, max)
}

func check(pending []syntax.Node, max int) []Verdict {
	var out []Verdict
	for len(pending) > 0 {
		n := pending[0]
		pending = pending[1:]
		e, ok := n.(syntax.Expr)
		if !ok {
			pending = append(pending, roots(n)...)
			continue
		}
		u, nested := count(e)
		if v, bad := Evaluate(u, max); bad {
			out = append(out, v)
		}
		pending = append(pending, nested...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Pos.Offset < out[j].Pos.Offset })
	return out
}

// roots returns the outermost expressions below a statement.
func roots(n syntax.Node) []syntax.Node {
	var out []syntax.Node
	for _, c := range syntax.Children(n) {
		if _, ok := c.(syntax.Expr); ok {
			out = append(out, c)
			continue
		}
		out = append(out, roots(c)...)
	}
	return out
}
