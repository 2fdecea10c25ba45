package engine

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/l3aro/go-symflow/pkg/cache"
	"github.com/l3aro/go-symflow/pkg/cfg"
	"github.com/l3aro/go-symflow/pkg/checks"
	"github.com/l3aro/go-symflow/pkg/syntax"
)

const nullDeref = `function ok(x) {
  var y = null;
  y.foo;
}
function other() {
  return 1;
}
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func functionNames(res *FileResult) []string {
	var names []string
	for _, fr := range res.Functions {
		names = append(names, fr.Function.Name)
	}
	return names
}

func TestAnalyzeSource(t *testing.T) {
	a := New(WithLogger(zaptest.NewLogger(t)))
	res, err := a.AnalyzeSource(context.Background(), "test.js", []byte(nullDeref))
	require.NoError(t, err)

	assert.Equal(t, []string{"<program>", "ok", "other"}, functionNames(res))
	for _, fr := range res.Functions {
		assert.NoError(t, fr.Err)
		assert.NotNil(t, fr.Graph)
		assert.NotNil(t, fr.Result)
	}

	require.Len(t, res.Issues, 1)
	assert.Equal(t, "null-dereference", res.Issues[0].Rule)
	assert.Equal(t, 3, res.Issues[0].Pos.Line)
	assert.Equal(t, "test.js", res.Issues[0].Path)

	fr, ok := res.Function("ok")
	require.True(t, ok)
	assert.Equal(t, "NULL", fr.Result.Observations[len(fr.Result.Observations)-1].Value("y").String())

	_, ok = res.Function("missing")
	assert.False(t, ok)
}

func TestAnalyzeSourceWithSelectedRules(t *testing.T) {
	rules, err := checks.Select([]string{"expression-complexity"})
	require.NoError(t, err)

	a := New(WithRules(rules), WithMaxComplexity(1))
	res, err := a.AnalyzeSource(context.Background(), "test.js", []byte("var v = a && b || c;\n"+nullDeref))
	require.NoError(t, err)

	require.Len(t, res.Issues, 1)
	assert.Equal(t, "expression-complexity", res.Issues[0].Rule)
	assert.Equal(t, 1, res.Issues[0].EffortToFix)
}

func TestMalformedFunctionIsIsolated(t *testing.T) {
	file, err := syntax.Parse(context.Background(), "test.js", []byte(nullDeref))
	require.NoError(t, err)
	require.Len(t, file.Functions, 3)
	file.Functions[1].Body = []syntax.Stmt{&syntax.IfStmt{Then: &syntax.BlockStmt{}}}

	a := New(WithLogger(zaptest.NewLogger(t)))
	res := a.analyze(file)

	require.Len(t, res.Functions, 3)
	assert.True(t, errors.Is(res.Functions[1].Err, cfg.ErrMalformedInput))
	assert.Nil(t, res.Functions[1].Result)
	assert.NotNil(t, res.Functions[0].Result)
	assert.NotNil(t, res.Functions[2].Result)

	require.Len(t, res.Errors(), 1)
	assert.Contains(t, res.Errors()[0].Error(), "function ok")

	rep := res.Report()
	assert.Equal(t, 3, rep.Functions)
	assert.Len(t, rep.Failures, 1)
	assert.Empty(t, rep.Issues)
}

func TestAnalyzeFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.js": nullDeref})

	res, err := New().AnalyzeFile(context.Background(), filepath.Join(dir, "a.js"))
	require.NoError(t, err)
	assert.Len(t, res.Issues, 1)

	_, err = New().AnalyzeFile(context.Background(), filepath.Join(dir, "missing.js"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestAnalyzeFilesParallel(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := writeFiles(t, map[string]string{
		"a.js": nullDeref,
		"b.js": "var x = 1;\n",
		"c.js": "function f(eval) {}\n",
	})
	paths := []string{
		filepath.Join(dir, "a.js"),
		filepath.Join(dir, "missing.js"),
		filepath.Join(dir, "b.js"),
		filepath.Join(dir, "c.js"),
	}

	var done atomic.Int32
	a := New(WithWorkers(2), WithLogger(zaptest.NewLogger(t)))
	reports, err := a.AnalyzeFiles(context.Background(), paths, func() { done.Add(1) })

	var perrs *ProcessingErrors
	require.True(t, errors.As(err, &perrs))
	require.Len(t, perrs.Errors, 1)
	assert.Equal(t, paths[1], perrs.Errors[0].Path)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	require.Len(t, reports, 4)
	assert.Nil(t, reports[1])
	assert.Len(t, reports[0].Issues, 1)
	assert.Empty(t, reports[2].Issues)
	require.Len(t, reports[3].Issues, 1)
	assert.Equal(t, "eval-arguments", reports[3].Issues[0].Rule)
	assert.Equal(t, int32(4), done.Load())
}

func TestAnalyzeFilesUsesCache(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.js": nullDeref})
	paths := []string{filepath.Join(dir, "a.js")}

	c := cache.New(cache.Options{MaxEntries: 8})
	a := New(WithCache(c))

	first, err := a.AnalyzeFiles(context.Background(), paths, nil)
	require.NoError(t, err)
	assert.False(t, first[0].Cached)
	assert.Equal(t, 1, c.Len())

	second, err := a.AnalyzeFiles(context.Background(), paths, nil)
	require.NoError(t, err)
	assert.True(t, second[0].Cached)
	assert.Equal(t, first[0].Issues, second[0].Issues)

	// Other settings produce other keys.
	_, err = New(WithCache(c), WithMaxComplexity(7)).AnalyzeFiles(context.Background(), paths, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
}

func TestAnalyzeFilesCanceled(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := writeFiles(t, map[string]string{"a.js": nullDeref, "b.js": nullDeref})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reports, err := New(WithWorkers(1)).AnalyzeFiles(ctx, []string{
		filepath.Join(dir, "a.js"),
		filepath.Join(dir, "b.js"),
	}, nil)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, []*Report{nil, nil}, reports)
}

func TestProcessingErrors(t *testing.T) {
	errs := &ProcessingErrors{}
	assert.False(t, errs.HasErrors())
	assert.Equal(t, "no errors", errs.Error())

	errs.Add("a.js", errors.New("boom"))
	assert.Equal(t, "a.js: boom", errs.Error())

	errs.Add("b.js", errors.New("bang"))
	assert.Equal(t, "2 files failed to process (first: a.js: boom)", errs.Error())
}
