package symbolic

import "github.com/l3aro/go-symflow/pkg/syntax"

// RefineAccess applies the property-access rule: reading or writing a
// property of identifier x proves x is not null from that point on. Optional
// chains prove nothing.
func RefineAccess(s *State, m *syntax.MemberExpr) *State {
	if s == nil || m == nil || m.Optional {
		return s
	}
	id, ok := syntax.Unparen(m.Object).(*syntax.Ident)
	if !ok || id.Binding == nil {
		return s
	}
	// An access on a value known to be null throws; the state after it is
	// still described as NOT_NULL.
	v, ok := Narrow(s.Get(id.Binding), NotNull)
	if !ok {
		v = NotNull
	}
	return s.Set(id.Binding, v)
}

// Assume narrows s under the hypothesis that cond evaluated to outcome. It
// returns nil when the hypothesis is infeasible. Only the true outcome of a
// bare identifier is refined; its false outcome stays as is.
func Assume(s *State, cond syntax.Expr, outcome bool) *State {
	if s == nil || cond == nil {
		return s
	}
	switch e := cond.(type) {
	case *syntax.ParenExpr:
		return Assume(s, e.X, outcome)
	case *syntax.Ident:
		if outcome {
			return s.Narrow(e.Binding, Truthy)
		}
	case *syntax.UnaryExpr:
		if e.Op == "!" {
			return Assume(s, e.X, !outcome)
		}
	case *syntax.BinaryExpr:
		return assumeComparison(s, e, outcome)
	case *syntax.AssignExpr:
		if id, ok := syntax.Unparen(e.Target).(*syntax.Ident); ok && e.Op == "=" {
			return Assume(s, id, outcome)
		}
	case *syntax.LogicalExpr:
		switch e.Op {
		case "&&":
			left := Assume(s, e.X, true)
			if outcome {
				return Assume(left, e.Y, true)
			}
			return Assume(s, e.X, false).Merge(Assume(left, e.Y, false))
		case "||":
			left := Assume(s, e.X, false)
			if !outcome {
				return Assume(left, e.Y, false)
			}
			return Assume(s, e.X, true).Merge(Assume(left, e.Y, true))
		}
	}
	return s
}

// assumeComparison handles x == null, x != undefined and their strict and
// mirrored forms. null and undefined are both NULL.
func assumeComparison(s *State, e *syntax.BinaryExpr, outcome bool) *State {
	var nonNull bool
	switch e.Op {
	case "!=", "!==":
		nonNull = true
	case "==", "===":
	default:
		return s
	}

	var operand syntax.Expr
	switch {
	case syntax.IsNullish(e.Y):
		operand = e.X
	case syntax.IsNullish(e.X):
		operand = e.Y
	default:
		return s
	}
	id, ok := syntax.Unparen(operand).(*syntax.Ident)
	if !ok {
		return s
	}
	if nonNull == outcome {
		return s.Narrow(id.Binding, NotNull)
	}
	return s.Narrow(id.Binding, Null)
}
