package checks

import (
	"fmt"

	"github.com/l3aro/go-symflow/pkg/syntax"
)

var illegalNames = map[string]bool{
	"eval":      true,
	"arguments": true,
}

// BoundOrAssignedEvalOrArguments reports declarations that shadow eval or
// arguments and writes to the built-in ones.
type BoundOrAssignedEvalOrArguments struct{}

func (BoundOrAssignedEvalOrArguments) Key() string { return "eval-arguments" }

func (BoundOrAssignedEvalOrArguments) Description() string {
	return `"eval" and "arguments" should not be bound or assigned`
}

func (BoundOrAssignedEvalOrArguments) Check(ctx *Context) []Issue {
	var issues []Issue
	for _, b := range ctx.File.Bindings {
		if !illegalNames[b.Name] {
			continue
		}
		if b.Kind == syntax.KindParam || !b.Builtin() {
			msg := fmt.Sprintf("Do not use %q to declare a %s - use another name.", b.Name, b.Kind)
			for _, u := range b.Declarations() {
				issues = append(issues, Issue{Pos: u.Ident.Start, Message: msg})
			}
			continue
		}
		for _, u := range b.Usages {
			if u.Kind != syntax.UsageRead {
				issues = append(issues, Issue{
					Pos:     u.Ident.Start,
					Message: fmt.Sprintf("Remove the modification of %q.", b.Name),
				})
			}
		}
	}
	return issues
}
