package cache

import (
	"strconv"
	"strings"
	"testing"
)

func BenchmarkCacheGet(b *testing.B) {
	c := New(Options{MaxEntries: 10000})
	payload := []byte(strings.Repeat("x", 100))
	for i := 0; i < 1000; i++ {
		c.Set("key"+strconv.Itoa(i), payload)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("key999")
	}
}

func BenchmarkCacheSet(b *testing.B) {
	c := New(Options{MaxEntries: 10000})
	payload := []byte(strings.Repeat("x", 100))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set("key"+strconv.Itoa(i), payload)
	}
}

func BenchmarkKey(b *testing.B) {
	src := strings.Repeat("let x = a && b || c;\n", 200)
	for i := 0; i < b.N; i++ {
		Key("file.js", src, "3")
	}
}
