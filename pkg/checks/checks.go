// Package checks implements the rules that turn analysis results into
// issues: expression complexity, possible null dereference, loop counters
// updated in the loop body and bound or assigned eval/arguments.
package checks

import (
	"fmt"
	"sort"

	"github.com/l3aro/go-symflow/pkg/symbolic"
	"github.com/l3aro/go-symflow/pkg/syntax"
)

// Location is a secondary location of an issue.
type Location struct {
	Pos     syntax.Position `json:"pos"`
	Message string          `json:"message,omitempty"`
}

// Issue is one finding of a rule.
type Issue struct {
	Rule        string          `json:"rule"`
	Path        string          `json:"path,omitempty"`
	Pos         syntax.Position `json:"pos"`
	Message     string          `json:"message"`
	EffortToFix int             `json:"effort_to_fix,omitempty"`
	Secondary   []Location      `json:"secondary,omitempty"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s:%s: %s [%s]", i.Path, i.Pos, i.Message, i.Rule)
}

// Context is what a rule runs against: one parsed file and the symbolic
// results of its functions.
type Context struct {
	File *syntax.File
	// Results holds one entry per function of File, in the same order;
	// nil for functions whose analysis failed.
	Results       []*symbolic.Result
	MaxComplexity int
}

// Rule is a check over one file.
type Rule interface {
	Key() string
	Description() string
	Check(ctx *Context) []Issue
}

// All returns every rule in a fixed order.
func All() []Rule {
	return []Rule{
		ExpressionComplexity{},
		NullDereference{},
		CounterUpdatedInLoop{},
		BoundOrAssignedEvalOrArguments{},
	}
}

// Keys returns the keys of every rule.
func Keys() []string {
	rules := All()
	keys := make([]string, len(rules))
	for i, r := range rules {
		keys[i] = r.Key()
	}
	return keys
}

// Lookup returns the rule with the given key.
func Lookup(key string) (Rule, bool) {
	for _, r := range All() {
		if r.Key() == key {
			return r, true
		}
	}
	return nil, false
}

// Select returns the rules named by keys, or every rule when keys is empty.
func Select(keys []string) ([]Rule, error) {
	if len(keys) == 0 {
		return All(), nil
	}
	out := make([]Rule, 0, len(keys))
	for _, k := range keys {
		r, ok := Lookup(k)
		if !ok {
			return nil, fmt.Errorf("unknown rule %q", k)
		}
		out = append(out, r)
	}
	return out, nil
}

// Run applies rules to ctx and returns the issues in source order.
func Run(ctx *Context, rules []Rule) []Issue {
	var issues []Issue
	for _, r := range rules {
		for _, is := range r.Check(ctx) {
			is.Rule = r.Key()
			if ctx.File != nil {
				is.Path = ctx.File.Path
			}
			issues = append(issues, is)
		}
	}
	Sort(issues)
	return issues
}

// Sort orders issues by path, then position, then rule.
func Sort(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Pos.Offset != b.Pos.Offset {
			return a.Pos.Offset < b.Pos.Offset
		}
		return a.Rule < b.Rule
	})
}
