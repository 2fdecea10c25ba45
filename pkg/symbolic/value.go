// Package symbolic runs a path-sensitive abstract interpretation over the CFG
// of one function. It tracks, per program point, whether each binding may be
// null, truthy or falsy, and reports the inferred states as observations.
package symbolic

import "strings"

// Value is the set of abstract tags a binding may hold. TRUTHY and FALSY are
// the two halves of NOT_NULL; UNKNOWN means no information and absorbs every
// other tag. The zero Value is empty and never escapes the package.
type Value uint8

const (
	atomNull Value = 1 << iota
	atomTruthy
	atomFalsy
	flagUnknown

	atoms = atomNull | atomTruthy | atomFalsy
)

// The named tags.
const (
	Null    = atomNull
	Truthy  = atomTruthy
	Falsy   = atomFalsy
	NotNull = atomTruthy | atomFalsy
	Unknown = atoms | flagUnknown
)

// Values lists every distinct value of the lattice.
var Values = []Value{
	Null, Truthy, Falsy, NotNull,
	Null | Truthy, Null | Falsy, Null | NotNull,
	Unknown,
}

func normalize(v Value) Value {
	if v&flagUnknown != 0 {
		return Unknown
	}
	return v
}

// Merge returns the union of a and b.
func Merge(a, b Value) Value {
	return normalize(a | b)
}

// Narrow intersects v with the runtime values described by to. It reports
// false when nothing remains, which makes the path infeasible.
func Narrow(v, to Value) (Value, bool) {
	r := v & to & atoms
	return r, r != 0
}

// Includes reports whether every tag of other is also a tag of v.
func (v Value) Includes(other Value) bool {
	return v|other == v
}

// Covers reports whether v admits every runtime value. {NULL, NOT_NULL}
// covers everything while still being distinct from UNKNOWN.
func (v Value) Covers() bool {
	return v&atoms == atoms
}

// MayBeNull reports whether v was proven to possibly hold null. UNKNOWN is
// not such a proof.
func (v Value) MayBeNull() bool {
	return v != Unknown && v&atomNull != 0
}

// Tags returns the tags of v in a fixed order, using NOT_NULL when both
// halves are present.
func (v Value) Tags() []string {
	v = normalize(v)
	if v == Unknown {
		return []string{"UNKNOWN"}
	}
	var tags []string
	if v&atomNull != 0 {
		tags = append(tags, "NULL")
	}
	switch v & NotNull {
	case NotNull:
		tags = append(tags, "NOT_NULL")
	case Truthy:
		tags = append(tags, "TRUTHY")
	case Falsy:
		tags = append(tags, "FALSY")
	}
	return tags
}

func (v Value) String() string {
	if v == 0 {
		return "EMPTY"
	}
	if v.Covers() {
		return "UNKNOWN"
	}
	return strings.Join(v.Tags(), " || ")
}

// Describe renders the value of name as a disjunction, e.g.
// "x=NULL || x=TRUTHY".
func (v Value) Describe(name string) string {
	if v.Covers() {
		return name + "=UNKNOWN"
	}
	tags := v.Tags()
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = name + "=" + t
	}
	return strings.Join(parts, " || ")
}

// MarshalText renders the value the way String does.
func (v Value) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}
