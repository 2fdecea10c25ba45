package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		fullPath := filepath.Join(root, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0644))
	}
}

func paths(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func TestScannerScan(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"index.js":                 "let a = 1;",
		"lib/util.mjs":             "export {}",
		"lib/legacy.cjs":           "module.exports = {}",
		"README.md":                "# Test",
		"src/app.py":               "print('hello')",
		".hidden/file.js":          "hidden",
		"node_modules/pkg/main.js": "module.exports = {}",
		"dist/bundle.js":           "bundle",
	})

	results, err := New(DefaultOptions()).Scan(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, []string{"index.js", "lib/legacy.cjs", "lib/util.mjs"}, paths(results))
	assert.Equal(t, int64(len("let a = 1;")), results[0].Size)
	assert.Equal(t, filepath.Join(tmpDir, "index.js"), results[0].FullPath)
}

func TestScannerSingleFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{"script.txt": "x;"})

	results, err := Scan(filepath.Join(tmpDir, "script.txt"))
	require.NoError(t, err)
	assert.Equal(t, []string{"script.txt"}, paths(results))

	_, err = Scan(filepath.Join(tmpDir, "missing.js"))
	assert.Error(t, err)
}

func TestScannerWithIgnoreFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		".symflowignore":        "# Ignore test files\n*.test.js\ngenerated/\n/vendored.js\n!keep.test.js\n",
		"app.js":                "x;",
		"app.test.js":           "x;",
		"keep.test.js":          "x;",
		"vendored.js":           "x;",
		"sub/vendored.js":       "x;",
		"generated/out.js":      "x;",
		"sub/generated/deep.js": "x;",
		"sub/.symflowignore":    "local.js\n",
		"sub/local.js":          "x;",
		"sub/nested/local.js":   "x;",
		"other/local.js":        "x;",
	})

	results, err := New(DefaultOptions()).Scan(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"app.js",
		"keep.test.js",
		"other/local.js",
		"sub/vendored.js",
	}, paths(results))
}

func TestScannerSkipHidden(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"visible.js":      "x;",
		".hidden/file.js": "x;",
		".eslintrc.js":    "x;",
	})

	opts := DefaultOptions()
	results, err := New(opts).Scan(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"visible.js"}, paths(results))

	opts.SkipHidden = false
	results, err = New(opts).Scan(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{".eslintrc.js", ".hidden/file.js", "visible.js"}, paths(results))
}

func TestIgnorePattern(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		isDir   bool
		match   bool
	}{
		// Simple patterns
		{"*.js", "file.js", false, true},
		{"*.js", "dir/file.js", false, true},
		{"*.js", "file.txt", false, false},
		{"build/", "build/file.js", false, true},
		{"build/", "other/build/file.js", false, true},
		{"build/", "builder.js", false, false},
		{"build/", "build", true, true},
		{"build/", "build", false, false},

		// Anchored patterns
		{"/build/", "build/file.js", false, true},
		{"/build/", "src/build/file.js", false, false},
		{"src/*.js", "src/app.js", false, true},
		{"src/*.js", "src/deep/app.js", false, false},
		{"src/*.js", "lib/src/app.js", false, false},

		// Double asterisk
		{"**/test/**", "test/file.js", false, true},
		{"**/test/**", "src/test/file.js", false, true},
		{"**/test/**", "src/deep/test/file.js", false, true},
		{"**/test/**", "testing/file.js", false, false},

		// Question mark and classes
		{"file?.js", "file1.js", false, true},
		{"file?.js", "file12.js", false, false},
		{"file[ab].js", "fileb.js", false, true},

		// Negation patterns still match; the caller inverts them
		{"!*.js", "file.js", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			p := ParseIgnorePattern(tt.pattern)
			require.True(t, p.Valid())
			assert.Equal(t, tt.match, p.Match(tt.path, tt.isDir))
		})
	}
}

func TestIgnorePatternWithin(t *testing.T) {
	p := ParseIgnorePattern("local.js").Within("sub")
	assert.True(t, p.Match("sub/local.js", false))
	assert.True(t, p.Match("sub/deep/local.js", false))
	assert.False(t, p.Match("local.js", false))

	p = ParseIgnorePattern("/top.js").Within("sub")
	assert.True(t, p.Match("sub/top.js", false))
	assert.False(t, p.Match("sub/deep/top.js", false))
}

func TestInvalidPattern(t *testing.T) {
	assert.False(t, ParseIgnorePattern("[unclosed").Valid())
	assert.False(t, ParseIgnorePattern("/").Valid())
}
