package symbolic

import (
	"strings"

	"github.com/l3aro/go-symflow/pkg/cfg"
	"github.com/l3aro/go-symflow/pkg/syntax"
)

// Observation is the program state just before an element executes.
type Observation struct {
	Pos   syntax.Position
	Node  syntax.Node
	Block *cfg.Block
	State *State
}

// Entry is one (location, binding, value) triple of the observation stream.
type Entry struct {
	Pos     syntax.Position `json:"pos"`
	Name    string          `json:"name"`
	Value   Value           `json:"value"`
	Binding *syntax.Binding `json:"-"`
}

// String renders the entry as a disjunction, e.g. "x=NULL || x=TRUTHY".
func (e Entry) String() string {
	return e.Value.Describe(e.Name)
}

// Entries returns one triple per tracked binding, in declaration order.
func (o Observation) Entries() []Entry {
	out := make([]Entry, 0, o.State.Len())
	o.State.Each(func(b *syntax.Binding, v Value) bool {
		out = append(out, Entry{Pos: o.Pos, Name: b.Name, Value: v, Binding: b})
		return true
	})
	return out
}

// Value returns the observed value of the first tracked binding called
// name, UNKNOWN when there is none. Bindings are tracked in declaration
// order, so a shadowed name resolves to the outermost declaration; use
// ValueOf to read a specific binding.
func (o Observation) Value(name string) Value {
	for _, e := range o.Entries() {
		if e.Name == name {
			return e.Value
		}
	}
	return Unknown
}

// ValueOf returns the observed value of b, UNKNOWN when b is not tracked.
func (o Observation) ValueOf(b *syntax.Binding) Value {
	return o.State.Get(b)
}

// Describe renders the observed value of name as a disjunction.
func (o Observation) Describe(name string) string {
	return o.Value(name).Describe(name)
}

func (o Observation) String() string {
	entries := o.Entries()
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.String()
	}
	return o.Pos.String() + " " + strings.Join(parts, ", ")
}
