package output

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-symflow/pkg/cfg"
	"github.com/l3aro/go-symflow/pkg/checks"
	"github.com/l3aro/go-symflow/pkg/complexity"
	"github.com/l3aro/go-symflow/pkg/symbolic"
	"github.com/l3aro/go-symflow/pkg/syntax"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestIssues(t *testing.T) {
	var buf bytes.Buffer
	Issues(&buf, []checks.Issue{
		{
			Rule:    "counter-updated-in-loop",
			Path:    "a.js",
			Pos:     syntax.Position{Line: 3, Column: 5},
			Message: `Remove this assignment of "i".`,
			Secondary: []checks.Location{
				{Pos: syntax.Position{Line: 2, Column: 27}, Message: "Counter variable update"},
			},
		},
		{
			Rule:      "expression-complexity",
			Path:      "a.js",
			Pos:       syntax.Position{Line: 9, Column: 11},
			Message:   "too complex",
			Secondary: []checks.Location{{Pos: syntax.Position{Line: 9, Column: 11}}},
		},
	})

	assert.Equal(t, `a.js:3:5: Remove this assignment of "i". [counter-updated-in-loop]
    2:27 Counter variable update
a.js:9:11: too complex [expression-complexity]
    9:11 +1
`, buf.String())
}

func TestSummary(t *testing.T) {
	tests := []struct {
		files, issues, failed int
		want                  string
	}{
		{3, 0, 0, "no issues in 3 files\n"},
		{3, 1, 0, "1 issue in 3 files\n"},
		{3, 2, 1, "2 issues in 3 files, 1 file failed\n"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		Summary(&buf, tt.files, tt.issues, tt.failed)
		assert.Equal(t, tt.want, buf.String())
	}
}

func parseFunc(t *testing.T, src, name string) (*syntax.File, *cfg.Graph) {
	t.Helper()
	file, err := syntax.Parse(context.Background(), "test.js", []byte(src))
	require.NoError(t, err)
	for _, fn := range file.Functions {
		if fn.Name == name {
			g, err := cfg.Build(fn)
			require.NoError(t, err)
			return file, g
		}
	}
	t.Fatalf("function %s not found", name)
	return nil, nil
}

func TestCFGBlocksInOrder(t *testing.T) {
	file, g := parseFunc(t, `function f(a, b) { if (a && b) { return 1; } return 2; }`, "f")

	var buf bytes.Buffer
	CFG(&buf, g.Info(file))

	out := buf.String()
	assert.Contains(t, out, "=== CFG for function: f ===")
	assert.Contains(t, out, "Cyclomatic Complexity: 3")
	assert.Contains(t, out, "[a && b]")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("  block_2 ")), bytes.Index(buf.Bytes(), []byte("  block_3 ")))
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("  block_3 ")), bytes.Index(buf.Bytes(), []byte("  block_4 ")))
}

func TestStates(t *testing.T) {
	file, g := parseFunc(t, "function f(p) {\n  var x = null;\n  p.foo;\n}\n", "f")
	res, err := symbolic.Execute(g)
	require.NoError(t, err)

	views := StateViews(file, res.Observations)
	require.Len(t, views, 2)
	assert.Equal(t, 3, views[1].Line)
	assert.Equal(t, "p.foo;", views[1].Statement)

	var buf bytes.Buffer
	States(&buf, "f", views, res.Diagnostics)
	assert.Contains(t, buf.String(), "p=UNKNOWN, x=NULL")

	buf.Reset()
	require.NoError(t, JSON(&buf, views[1]))
	assert.Contains(t, buf.String(), `"statement": "p.foo;"`)
	assert.Contains(t, buf.String(), `"value": "NULL"`)
}

func TestVerdicts(t *testing.T) {
	file, err := syntax.Parse(context.Background(), "test.js", []byte("var v = a && b || c && d || e;\n"))
	require.NoError(t, err)

	var views []VerdictView
	for _, v := range complexity.AnalyzeFile(file, 3) {
		views = append(views, VerdictView{Path: file.Path, Message: v.Message(), Verdict: v})
	}
	require.Len(t, views, 1)

	var buf bytes.Buffer
	Verdicts(&buf, views)
	assert.Contains(t, buf.String(), "test.js:1:11: Reduce the number of conditional operators (4)")
	assert.Contains(t, buf.String(), "(effort 1)")
	assert.Contains(t, buf.String(), "operators at 1:11, 1:16, 1:21, 1:26")

	buf.Reset()
	require.NoError(t, JSON(&buf, views))
	assert.Contains(t, buf.String(), `"effort_to_fix": 1`)
	assert.Contains(t, buf.String(), `"path": "test.js"`)
}

func TestNewProgressSilent(t *testing.T) {
	bar := NewProgress(2, false)
	require.NoError(t, bar.Add(1))
	require.NoError(t, bar.Add(1))
	require.NoError(t, bar.Finish())
}
