package symbolic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeProperties(t *testing.T) {
	for _, a := range Values {
		assert.Equal(t, a, Merge(a, a), "idempotent %s", a)
		assert.Equal(t, Unknown, Merge(a, Unknown), "absorbing %s", a)
		for _, b := range Values {
			m := Merge(a, b)
			assert.Equal(t, m, Merge(b, a), "commutative %s %s", a, b)
			assert.True(t, m.Includes(a), "%s includes %s", m, a)
			assert.True(t, m.Includes(b), "%s includes %s", m, b)
		}
	}
}

func TestMergeExamples(t *testing.T) {
	assert.Equal(t, NotNull, Merge(NotNull, NotNull))
	assert.Equal(t, NotNull, Merge(Truthy, Falsy))
	assert.Equal(t, NotNull, Merge(Truthy, NotNull))

	union := Merge(Null, NotNull)
	assert.NotEqual(t, Unknown, union, "the union is kept precise")
	assert.True(t, union.Covers())
	assert.Equal(t, "UNKNOWN", union.String())
	assert.Equal(t, "x=UNKNOWN", union.Describe("x"))
}

func TestNarrow(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		to   Value
		want Value
		ok   bool
	}{
		{"unknown to not null", Unknown, NotNull, NotNull, true},
		{"unknown to truthy", Unknown, Truthy, Truthy, true},
		{"union to truthy", Null | Truthy, Truthy, Truthy, true},
		{"union to null", Null | Truthy, Null, Null, true},
		{"null to not null", Null, NotNull, 0, false},
		{"falsy to truthy", Falsy, Truthy, 0, false},
		{"not null to falsy", NotNull, Falsy, Falsy, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Narrow(tt.v, tt.to)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValueRendering(t *testing.T) {
	tests := []struct {
		v        Value
		str      string
		describe string
	}{
		{Unknown, "UNKNOWN", "x=UNKNOWN"},
		{Null, "NULL", "x=NULL"},
		{NotNull, "NOT_NULL", "x=NOT_NULL"},
		{Null | Truthy, "NULL || TRUTHY", "x=NULL || x=TRUTHY"},
		{Null | Falsy, "NULL || FALSY", "x=NULL || x=FALSY"},
	}
	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			assert.Equal(t, tt.str, tt.v.String())
			assert.Equal(t, tt.describe, tt.v.Describe("x"))
		})
	}
}

func TestMayBeNull(t *testing.T) {
	assert.True(t, Null.MayBeNull())
	assert.True(t, (Null | Truthy).MayBeNull())
	assert.False(t, Unknown.MayBeNull())
	assert.False(t, NotNull.MayBeNull())
}
