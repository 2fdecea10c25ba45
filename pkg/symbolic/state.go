package symbolic

import (
	"strings"

	"github.com/tidwall/btree"

	"github.com/l3aro/go-symflow/pkg/syntax"
)

type entry struct {
	binding *syntax.Binding
	value   Value
}

// State is an immutable program state mapping bindings to values. Entries
// are ordered by binding ID, which is declaration order. Bindings without an
// entry hold UNKNOWN. A nil *State is bottom: the point is unreachable.
type State struct {
	m *btree.Map[int, entry]
}

// NewState returns a state in which every given binding is UNKNOWN.
func NewState(bindings ...*syntax.Binding) *State {
	s := &State{m: &btree.Map[int, entry]{}}
	for _, b := range bindings {
		s.m.Set(b.ID, entry{binding: b, value: Unknown})
	}
	return s
}

// Get returns the value of b, UNKNOWN when b is not tracked.
func (s *State) Get(b *syntax.Binding) Value {
	v, _ := s.Lookup(b)
	return v
}

// Lookup returns the value of b and whether b is tracked.
func (s *State) Lookup(b *syntax.Binding) (Value, bool) {
	if s == nil || b == nil {
		return Unknown, false
	}
	e, ok := s.m.Get(b.ID)
	if !ok {
		return Unknown, false
	}
	return e.value, true
}

// Set returns a state in which b holds v.
func (s *State) Set(b *syntax.Binding, v Value) *State {
	if s == nil || b == nil {
		return s
	}
	if cur, ok := s.Lookup(b); ok && cur == v {
		return s
	}
	next := &State{m: s.m.Copy()}
	next.m.Set(b.ID, entry{binding: b, value: normalize(v)})
	return next
}

// Narrow returns a state in which b is restricted to the values of to, or
// nil when b can hold none of them.
func (s *State) Narrow(b *syntax.Binding, to Value) *State {
	if s == nil || b == nil {
		return s
	}
	v, ok := Narrow(s.Get(b), to)
	if !ok {
		return nil
	}
	return s.Set(b, v)
}

// Merge joins two states. A binding tracked by only one side is UNKNOWN on
// the other.
func (s *State) Merge(other *State) *State {
	switch {
	case s == nil:
		return other
	case other == nil:
		return s
	case s == other:
		return s
	}
	out := &State{m: s.m.Copy()}
	changed := false
	other.m.Scan(func(id int, oe entry) bool {
		se, ok := s.m.Get(id)
		v := Unknown
		if ok {
			v = Merge(se.value, oe.value)
		}
		if !ok || v != se.value {
			out.m.Set(id, entry{binding: oe.binding, value: v})
			changed = true
		}
		return true
	})
	s.m.Scan(func(id int, se entry) bool {
		if _, ok := other.m.Get(id); !ok && se.value != Unknown {
			out.m.Set(id, entry{binding: se.binding, value: Unknown})
			changed = true
		}
		return true
	})
	if !changed {
		return s
	}
	return out
}

// Equal reports whether both states hold the same entries.
func (s *State) Equal(other *State) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s == other {
		return true
	}
	if s.m.Len() != other.m.Len() {
		return false
	}
	equal := true
	s.m.Scan(func(id int, se entry) bool {
		oe, ok := other.m.Get(id)
		equal = ok && oe.value == se.value
		return equal
	})
	return equal
}

// Len returns the number of tracked bindings.
func (s *State) Len() int {
	if s == nil {
		return 0
	}
	return s.m.Len()
}

// Each calls fn for every tracked binding in declaration order until fn
// returns false.
func (s *State) Each(fn func(b *syntax.Binding, v Value) bool) {
	if s == nil {
		return
	}
	s.m.Scan(func(_ int, e entry) bool {
		return fn(e.binding, e.value)
	})
}

// Bindings returns the tracked bindings in declaration order.
func (s *State) Bindings() []*syntax.Binding {
	out := make([]*syntax.Binding, 0, s.Len())
	s.Each(func(b *syntax.Binding, _ Value) bool {
		out = append(out, b)
		return true
	})
	return out
}

// Widen returns a state in which every tracked binding is UNKNOWN.
func (s *State) Widen() *State {
	if s == nil {
		return nil
	}
	return NewState(s.Bindings()...)
}

func (s *State) String() string {
	if s == nil {
		return "<unreachable>"
	}
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	s.Each(func(b *syntax.Binding, v Value) bool {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(b.Name)
		sb.WriteByte('=')
		sb.WriteString(v.String())
		return true
	})
	sb.WriteByte('}')
	return sb.String()
}
