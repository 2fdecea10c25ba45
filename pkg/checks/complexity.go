package checks

import "github.com/l3aro/go-symflow/pkg/complexity"

// ExpressionComplexity reports expressions with too many conditional
// operators.
type ExpressionComplexity struct{}

func (ExpressionComplexity) Key() string { return "expression-complexity" }

func (ExpressionComplexity) Description() string {
	return "Expressions should not be too complex"
}

func (ExpressionComplexity) Check(ctx *Context) []Issue {
	var issues []Issue
	for _, v := range complexity.AnalyzeFile(ctx.File, ctx.MaxComplexity) {
		is := Issue{
			Pos:         v.Pos,
			Message:     v.Message(),
			EffortToFix: v.EffortToFix,
		}
		for _, op := range v.Operators {
			is.Secondary = append(is.Secondary, Location{Pos: op})
		}
		issues = append(issues, is)
	}
	return issues
}
