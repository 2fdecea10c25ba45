package complexity

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-symflow/pkg/syntax"
)

func parse(t *testing.T, src string) *syntax.File {
	t.Helper()
	f, err := syntax.Parse(context.Background(), "test.js", []byte(src))
	require.NoError(t, err)
	return f
}

func lines(ps []syntax.Position) []int {
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = p.Line
	}
	return out
}

func TestFixture(t *testing.T) {
	file, err := syntax.ParseFile(context.Background(), filepath.Join("..", "..", "testdata", "js", "expressionComplexity.js"))
	require.NoError(t, err)

	verdicts := AnalyzeFile(file, DefaultMax)
	var got []int
	var totals []int
	for _, v := range verdicts {
		got = append(got, v.Pos.Line)
		totals = append(totals, v.Total)
	}
	assert.Equal(t, []int{1, 3, 5, 8, 28, 30, 38, 41, 45}, got)
	assert.Equal(t, []int{4, 4, 5, 6, 4, 4, 4, 4, 4}, totals)

	b := verdicts[0]
	assert.Equal(t, 1, b.EffortToFix)
	assert.Equal(t, "Reduce the number of conditional operators (4) used in the expression (maximum allowed 3).", b.Message())
	assert.Equal(t, 4, b.Depth)

	c := verdicts[1]
	assert.Equal(t, 14, c.Pos.Column)
	assert.Equal(t, []int{3, 3, 3, 3}, lines(c.Operators))

	f := verdicts[3]
	assert.Equal(t, 3, f.EffortToFix)
	assert.Equal(t, "Reduce the number of conditional operators (6) used in the expression (maximum allowed 3).", f.Message())

	last := verdicts[len(verdicts)-1]
	assert.Equal(t, []int{45, 46, 47, 47}, lines(last.Operators))
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		max    int
		want   int
		effort int
		bad    bool
	}{
		{"nested ternaries", "false ? (true ? (false ? (true ? 1:0):0):0) : 1;", 3, 4, 1, true},
		{"flat or chain", "true || false || true || false || false;", 3, 4, 1, true},
		{"bitwise", "true | false | true | false;", 1, 0, 0, false},
		{"nullish coalescing", "a ?? b ?? c ?? d ?? e;", 1, 0, 0, false},
		{"at threshold", "a && b && c && d;", 3, 3, 0, false},
		{"custom max", "a && b && c;", 1, 2, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := parse(t, tt.src)
			require.Len(t, f.TopLevel.Body, 1)
			e := f.TopLevel.Body[0].(*syntax.ExprStmt).X

			u := Count(e)
			assert.Equal(t, tt.want, u.Total())
			v, bad := Evaluate(u, tt.max)
			assert.Equal(t, tt.bad, bad)
			assert.Equal(t, tt.effort, v.EffortToFix)
		})
	}
}

func TestFunctionLiteralIsIndependent(t *testing.T) {
	f := parse(t, "var z = ok &&\n  function () { return a && b && c && d && e && f; };\n")
	decl := f.TopLevel.Body[0].(*syntax.VarDecl)

	outer := Count(decl.Decls[0].Init)
	assert.Equal(t, 1, outer.Total())

	verdicts := Check(decl.Decls[0].Init, DefaultMax)
	require.Len(t, verdicts, 1)
	assert.Equal(t, 5, verdicts[0].Total)
	assert.Equal(t, 2, verdicts[0].Pos.Line)
	assert.Equal(t, 2, verdicts[0].EffortToFix)
}

func TestObjectValuesAreIndependent(t *testing.T) {
	f := parse(t, "var o = { k: a && b && c, m: a || b || c || d || e };\n")
	verdicts := AnalyzeFile(f, DefaultMax)
	require.Len(t, verdicts, 1)
	assert.Equal(t, 4, verdicts[0].Total)
}

func TestInvalidMaxUsesDefault(t *testing.T) {
	f := parse(t, "a && b && c && d;")
	u := Count(f.TopLevel.Body[0].(*syntax.ExprStmt).X)
	v, bad := Evaluate(u, 0)
	require.True(t, bad)
	assert.Equal(t, DefaultMax, v.Max)
}
