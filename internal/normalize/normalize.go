// Package normalize provides tag-name and wildcard-pattern normalization.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/errors"
)

const (
	// MaxPatternLength bounds a wildcard pattern's length.
	MaxPatternLength = 128
	// MaxWildcards bounds the number of '*' runes in one pattern.
	MaxWildcards = 3
)

// Name normalizes a raw tag token: unicode NFKC fold, lowercase, trimmed,
// inner whitespace collapsed to single underscores. Namespaced names keep
// their ':' separator ("creator:jane doe" -> "creator:jane_doe").
func Name(raw string) string {
	s := norm.NFKC.String(raw)
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastSpace && b.Len() > 0 {
				b.WriteByte('_')
			}
			lastSpace = true
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), "_")
}

// IsWildcard reports whether a normalized token is a wildcard pattern.
func IsWildcard(token string) bool {
	return strings.ContainsRune(token, '*')
}

// ValidateWildcard checks a wildcard pattern against the syntax bounds.
// Returns a validation error naming the offending token.
func ValidateWildcard(pattern string) error {
	if len(pattern) > MaxPatternLength {
		return errors.Validationf("wildcard pattern too long: %q", pattern)
	}
	if strings.Count(pattern, "*") > MaxWildcards {
		return errors.Validationf("too many wildcards in pattern: %q", pattern)
	}
	for _, r := range pattern {
		if unicode.IsControl(r) {
			return errors.Validationf("control character in pattern: %q", pattern)
		}
	}
	if strings.Trim(pattern, "*") == "" {
		return errors.Validationf("wildcard pattern matches everything: %q", pattern)
	}
	return nil
}

// GlobToLike converts a glob pattern ('*' matches any run of characters)
// into a SQL LIKE pattern, escaping LIKE metacharacters with backslash.
func GlobToLike(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern) + 4)
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteByte('%')
		case '%', '_', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MatchGlob reports whether name matches the glob pattern without a store
// round-trip. Used by the blacklist to filter candidate tags in memory.
func MatchGlob(pattern, name string) bool {
	pr := []rune(pattern)
	nr := []rune(name)

	// Iterative '*' backtracking; patterns are short so this is plenty fast.
	starIdx, matchIdx := -1, 0
	p, n := 0, 0
	for n < len(nr) {
		switch {
		case p < len(pr) && pr[p] == '*':
			starIdx = p
			matchIdx = n
			p++
		case p < len(pr) && pr[p] == nr[n]:
			p++
			n++
		case starIdx >= 0:
			p = starIdx + 1
			matchIdx++
			n = matchIdx
		default:
			return false
		}
	}
	for p < len(pr) && pr[p] == '*' {
		p++
	}
	return p == len(pr)
}
