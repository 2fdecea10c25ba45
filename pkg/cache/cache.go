// Package cache provides an LRU cache of analysis reports with disk
// persistence.
package cache

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/tidwall/tinylru"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrKeyNotFound is returned when a key is not found in the cache.
var ErrKeyNotFound = errors.New("key not found")

// formatVersion is bumped whenever the persisted layout or the meaning of
// cached payloads changes; files with another version are ignored.
const formatVersion = 1

// DefaultMaxEntries is the capacity used when Options leaves it unset.
const DefaultMaxEntries = 1024

// Key derives a cache key from its parts. Parts are separated so that
// ("ab", "c") and ("a", "bc") hash differently.
func Key(parts ...string) string {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(p)
		_, _ = d.Write([]byte{0})
	}
	return strconv.FormatUint(d.Sum64(), 16)
}

// Entry represents a cache entry with metadata.
type Entry struct {
	Key       string    `msgpack:"key"`
	Value     []byte    `msgpack:"value"`
	CreatedAt time.Time `msgpack:"created_at"`
}

// Stats reports cache effectiveness.
type Stats struct {
	Entries int
	Hits    int64
	Misses  int64
}

// Options configures the LRU cache.
type Options struct {
	// MaxEntries is the maximum number of entries kept in memory.
	MaxEntries int
}

// LRUCache is an in-memory LRU cache of msgpack payloads. It is safe for
// concurrent use.
type LRUCache struct {
	lru    tinylru.LRU
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a new LRU cache with the given options.
func New(opts Options) *LRUCache {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	c := &LRUCache{}
	c.lru.Resize(opts.MaxEntries)
	return c
}

// Get retrieves the raw payload stored under key.
func (c *LRUCache) Get(key string) ([]byte, bool) {
	v, ok := c.lru.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return v.(*Entry).Value, true
}

// Set stores a raw payload under key, evicting the least recently used entry
// when the cache is full.
func (c *LRUCache) Set(key string, value []byte) {
	c.lru.Set(key, &Entry{Key: key, Value: value, CreatedAt: time.Now()})
}

// Delete removes a key from the cache.
func (c *LRUCache) Delete(key string) {
	c.lru.Delete(key)
}

// Len returns the number of entries in the cache.
func (c *LRUCache) Len() int {
	return c.lru.Len()
}

// Stats returns the entry count and the hit and miss counters.
func (c *LRUCache) Stats() Stats {
	return Stats{Entries: c.lru.Len(), Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// GetValue decodes the payload under key into v. It returns ErrKeyNotFound
// when the key is absent.
func (c *LRUCache) GetValue(key string, v any) error {
	data, ok := c.Get(key)
	if !ok {
		return ErrKeyNotFound
	}
	if err := msgpack.Unmarshal(data, v); err != nil {
		c.Delete(key)
		return fmt.Errorf("decoding cache entry %s: %w", key, err)
	}
	return nil
}

// SetValue encodes v with msgpack and stores it under key.
func (c *LRUCache) SetValue(key string, v any) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding cache entry %s: %w", key, err)
	}
	c.Set(key, data)
	return nil
}

// snapshot is the persisted form of the cache.
type snapshot struct {
	Version int      `msgpack:"version"`
	Entries []*Entry `msgpack:"entries"`
}

// Save persists the cache to a writer using msgpack. Entries are written
// from least to most recently used so that Load restores the same order.
func (c *LRUCache) Save(w io.Writer) error {
	snap := snapshot{Version: formatVersion}
	c.lru.Reverse(func(_, v interface{}) bool {
		snap.Entries = append(snap.Entries, v.(*Entry))
		return true
	})
	if err := msgpack.NewEncoder(w).Encode(&snap); err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	return nil
}

// Load restores entries from a reader written by Save. Snapshots of another
// format version are skipped without error.
func (c *LRUCache) Load(r io.Reader) error {
	var snap snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("decoding cache: %w", err)
	}
	if snap.Version != formatVersion {
		return nil
	}
	for _, e := range snap.Entries {
		if e == nil || e.Key == "" {
			continue
		}
		c.lru.Set(e.Key, e)
	}
	return nil
}

// PersistToFile saves the cache to a file, creating parent directories.
func PersistToFile(c *LRUCache, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	if err := c.Save(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing cache file: %w", err)
	}
	return os.Rename(tmp, path)
}

// LoadFromFile loads the cache from a file. A missing file leaves the cache
// empty.
func LoadFromFile(c *LRUCache, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening cache file: %w", err)
	}
	defer f.Close()
	return c.Load(f)
}
