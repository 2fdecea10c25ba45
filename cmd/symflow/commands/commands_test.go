package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

const source = `function ok(x) {
  var y = null;
  y.foo;
}
function other() {
  return 1;
}
`

// project writes a source file and a config with the cache disabled and
// returns their paths.
func project(t *testing.T) (dir, configPath string) {
	t.Helper()
	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.js"), []byte(source), 0644))
	configPath = filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("cache:\n  enabled: false\nlog:\n  level: error\n"), 0644))
	return dir, configPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	RootCmd.SetOut(&buf)
	RootCmd.SetErr(&buf)
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return buf.String(), err
}

func TestCheckCommand(t *testing.T) {
	dir, configPath := project(t)

	out, err := run(t, "check", dir, "--config", configPath)
	assert.True(t, errors.Is(err, errIssuesFound))
	assert.Contains(t, out, `a.js:3:3: TypeError can be thrown as "y" might be null or undefined here. [null-dereference]`)
	assert.Contains(t, out, "1 issue in 1 files")
}

func TestStatesCommand(t *testing.T) {
	dir, configPath := project(t)

	out, err := run(t, "states", filepath.Join(dir, "a.js"), "ok", "--json", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"function": "ok"`)
	assert.Contains(t, out, `"statement": "y.foo;"`)
	assert.Contains(t, out, `"value": "NULL"`)
}

func TestCFGCommand(t *testing.T) {
	dir, configPath := project(t)

	out, err := run(t, "cfg", filepath.Join(dir, "a.js"), "other", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "=== CFG for function: other ===")
	assert.Contains(t, out, "return 1;")

	_, err = run(t, "cfg", filepath.Join(dir, "a.js"), "nope", "--config", configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `function "nope" not found`)

	_, err = run(t, "cfg", dir, "--config", configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}

func TestComplexityCommand(t *testing.T) {
	dir, configPath := project(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.js"), []byte("var v = a && b || c;\n"), 0644))

	out, err := run(t, "complexity", dir, "--max", "1", "--config", configPath)
	assert.True(t, errors.Is(err, errIssuesFound))
	assert.Contains(t, out, "b.js:1:11: Reduce the number of conditional operators (2) used in the expression (maximum allowed 1).")
	assert.NotContains(t, out, "a.js")
}
