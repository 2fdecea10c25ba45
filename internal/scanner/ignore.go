package scanner

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IgnorePattern represents a single gitignore-style pattern.
type IgnorePattern struct {
	pattern     string // Pattern as written
	glob        string // Pattern body handed to doublestar
	isNegation  bool   // True if pattern starts with !
	isDirectory bool   // True if pattern ends with /
	isAnchored  bool   // True if pattern is relative to the ignore file's directory
}

// ParseIgnorePattern parses a gitignore-style pattern string. A pattern with
// a slash anywhere but at its end is anchored, otherwise it matches at any
// depth.
func ParseIgnorePattern(pattern string) IgnorePattern {
	p := IgnorePattern{pattern: pattern}
	body := pattern

	if strings.HasPrefix(body, "!") {
		p.isNegation = true
		body = body[1:]
	}
	if strings.HasSuffix(body, "/") {
		p.isDirectory = true
		body = strings.TrimSuffix(body, "/")
	}
	if strings.HasPrefix(body, "/") {
		p.isAnchored = true
		body = body[1:]
	} else if strings.Contains(body, "/") {
		p.isAnchored = true
	}

	p.glob = body
	return p
}

// Valid reports whether the pattern is a well-formed glob.
func (p IgnorePattern) Valid() bool {
	return p.glob != "" && doublestar.ValidatePattern(p.glob)
}

// Within rebases the pattern onto dir, the slash separated path of the
// directory holding the ignore file.
func (p IgnorePattern) Within(dir string) IgnorePattern {
	if dir == "" {
		return p
	}
	if p.isAnchored {
		p.glob = path.Join(dir, p.glob)
	} else {
		p.glob = path.Join(dir, "**", p.glob)
		p.isAnchored = true
	}
	return p
}

// Match reports whether the pattern selects the path or one of its parent
// directories. Negation patterns match the same way; the caller decides what
// a match means.
func (p IgnorePattern) Match(relPath string, isDir bool) bool {
	if (!p.isDirectory || isDir) && p.matchPath(relPath) {
		return true
	}
	for i := 0; i < len(relPath); i++ {
		if relPath[i] == '/' && p.matchPath(relPath[:i]) {
			return true
		}
	}
	return false
}

// IsNegation returns true if this pattern is a negation pattern.
func (p IgnorePattern) IsNegation() bool {
	return p.isNegation
}

func (p IgnorePattern) matchPath(relPath string) bool {
	if ok, _ := doublestar.Match(p.glob, relPath); ok {
		return true
	}
	if p.isAnchored {
		return false
	}
	ok, _ := doublestar.Match("**/"+p.glob, relPath)
	return ok
}
