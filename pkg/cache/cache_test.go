package cache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestLRUCache_Basic(t *testing.T) {
	c := New(Options{MaxEntries: 3})

	c.Set("a", []byte("value_a"))
	c.Set("b", []byte("value_b"))
	c.Set("c", []byte("value_c"))

	assert.Equal(t, 3, c.Len())

	val, found := c.Get("a")
	require.True(t, found)
	assert.Equal(t, []byte("value_a"), val)

	_, found = c.Get("missing")
	assert.False(t, found)

	assert.Equal(t, Stats{Entries: 3, Hits: 1, Misses: 1}, c.Stats())
}

func TestLRUCache_LRU_Eviction(t *testing.T) {
	c := New(Options{MaxEntries: 3})

	c.Set("a", []byte("value_a"))
	c.Set("b", []byte("value_b"))
	c.Set("c", []byte("value_c"))

	// Access 'a' to make it most recently used
	c.Get("a")

	// Add new item - should evict 'b' (least recently used)
	c.Set("d", []byte("value_d"))

	assert.Equal(t, 3, c.Len())

	_, found := c.Get("b")
	assert.False(t, found, "b should have been evicted")

	for _, k := range []string{"a", "c", "d"} {
		_, found = c.Get(k)
		assert.True(t, found, "%s should still be present", k)
	}
}

func TestLRUCache_Delete(t *testing.T) {
	c := New(Options{MaxEntries: 10})
	c.Set("a", []byte("1"))
	c.Delete("a")
	c.Delete("never-set")

	_, found := c.Get("a")
	assert.False(t, found)
	assert.Equal(t, 0, c.Len())
}

func TestLRUCache_DefaultSize(t *testing.T) {
	c := New(Options{})
	for i := 0; i < DefaultMaxEntries+5; i++ {
		c.Set(Key("k", strconv.Itoa(i)), nil)
	}
	assert.Equal(t, DefaultMaxEntries, c.Len())
}

type report struct {
	Path   string
	Issues []string
	Lines  []int
}

func TestValueRoundTrip(t *testing.T) {
	c := New(Options{MaxEntries: 4})
	in := report{Path: "a.js", Issues: []string{"null-dereference"}, Lines: []int{3, 6}}
	require.NoError(t, c.SetValue("r", in))

	var out report
	require.NoError(t, c.GetValue("r", &out))
	assert.Equal(t, in, out)

	err := c.GetValue("other", &out)
	assert.True(t, errors.Is(err, ErrKeyNotFound))
}

func TestGetValueDropsUndecodableEntry(t *testing.T) {
	c := New(Options{MaxEntries: 4})
	c.Set("bad", []byte{0xc1})

	var out report
	err := c.GetValue("bad", &out)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrKeyNotFound))
	assert.Equal(t, 0, c.Len())
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("a", "b"), Key("a", "b"))
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
	assert.NotEqual(t, Key("a"), Key("a", ""))
	assert.NotEmpty(t, Key())
}

func TestSaveLoadPreservesRecency(t *testing.T) {
	c := New(Options{MaxEntries: 3})
	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	c.Set("c", []byte("3"))
	c.Get("a") // order, most recent first: a c b

	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))

	restored := New(Options{MaxEntries: 3})
	require.NoError(t, restored.Load(&buf))
	assert.Equal(t, 3, restored.Len())

	// b is the least recently used entry after the reload.
	restored.Set("d", []byte("4"))
	_, found := restored.Get("b")
	assert.False(t, found)
	val, found := restored.Get("a")
	require.True(t, found)
	assert.Equal(t, []byte("1"), val)
}

func TestLoadSkipsOtherVersions(t *testing.T) {
	data, err := msgpack.Marshal(&snapshot{
		Version: formatVersion + 1,
		Entries: []*Entry{{Key: "a", Value: []byte("1")}},
	})
	require.NoError(t, err)

	c := New(Options{MaxEntries: 3})
	require.NoError(t, c.Load(bytes.NewReader(data)))
	assert.Equal(t, 0, c.Len())

	assert.Error(t, c.Load(bytes.NewReader([]byte("not msgpack at all"))))
}

func TestPersistToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.msgpack")

	c := New(Options{MaxEntries: 8})
	require.NoError(t, c.SetValue("r", report{Path: "x.js"}))
	require.NoError(t, PersistToFile(c, path))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	loaded := New(Options{MaxEntries: 8})
	require.NoError(t, LoadFromFile(loaded, path))

	var out report
	require.NoError(t, loaded.GetValue("r", &out))
	assert.Equal(t, "x.js", out.Path)
}

func TestLoadFromMissingFile(t *testing.T) {
	c := New(Options{MaxEntries: 8})
	require.NoError(t, LoadFromFile(c, filepath.Join(t.TempDir(), "absent")))
	assert.Equal(t, 0, c.Len())
}
