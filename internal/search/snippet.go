package search

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Snippet construction bounds, in bytes of source text.
const (
	snippetContext = 60  // text kept before the first match
	snippetLength  = 200 // total window size
)

type matchRange struct {
	start, end int
}

// buildSnippet extracts a window of text around the first query match and
// wraps every matched region in <em> tags. Matches are anchored at word
// starts and cover exactly the queried characters: a query for "back"
// against "background" highlights only the "back" prefix, not the token.
func buildSnippet(text string, terms []string) string {
	lower, offsets := foldText(text)
	matches := findMatches(lower, terms)
	for i, m := range matches {
		matches[i] = matchRange{start: offsets[m.start], end: offsets[m.end]}
	}

	start, end := window(text, matches)

	var b strings.Builder
	if start > 0 {
		b.WriteString("…")
	}

	pos := start
	for _, m := range matches {
		if m.end <= start || m.start >= end {
			continue
		}
		if m.start > pos {
			b.WriteString(text[pos:m.start])
		}
		b.WriteString("<em>")
		b.WriteString(text[m.start:m.end])
		b.WriteString("</em>")
		pos = m.end
	}
	if pos < end {
		b.WriteString(text[pos:end])
	}

	if end < len(text) {
		b.WriteString("…")
	}
	return b.String()
}

// foldText lowers text rune by rune and records, for each byte of the
// lowered form, the byte offset of the originating rune. Case folding can
// change rune width, so lowered offsets cannot index the original directly;
// the trailing sentinel maps a match ending at len(lower) to len(text).
func foldText(text string) (string, []int) {
	var b strings.Builder
	b.Grow(len(text))
	offsets := make([]int, 0, len(text)+1)
	for i, r := range text {
		lr := unicode.ToLower(r)
		for j := 0; j < utf8.RuneLen(lr); j++ {
			offsets = append(offsets, i)
		}
		b.WriteRune(lr)
	}
	offsets = append(offsets, len(text))
	return b.String(), offsets
}

// findMatches locates every word-anchored occurrence of every term and
// merges overlaps. Offsets are byte positions into the lowered text.
func findMatches(lower string, terms []string) []matchRange {
	var matches []matchRange
	for _, term := range terms {
		if term == "" {
			continue
		}
		for from := 0; ; {
			i := strings.Index(lower[from:], term)
			if i < 0 {
				break
			}
			pos := from + i
			if wordStart(lower, pos) {
				matches = append(matches, matchRange{start: pos, end: pos + len(term)})
			}
			from = pos + 1
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	merged := matches[:0]
	for _, m := range matches {
		if n := len(merged); n > 0 && m.start < merged[n-1].end {
			if m.end > merged[n-1].end {
				merged[n-1].end = m.end
			}
			continue
		}
		merged = append(merged, m)
	}
	return merged
}

// wordStart reports whether pos begins a word.
func wordStart(s string, pos int) bool {
	if pos == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:pos])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// window picks the snippet byte range: centered before the first match,
// clamped to the text, snapped to rune boundaries.
func window(text string, matches []matchRange) (int, int) {
	start := 0
	if len(matches) > 0 && matches[0].start > snippetContext {
		start = matches[0].start - snippetContext
	}
	end := start + snippetLength
	if end > len(text) {
		end = len(text)
		if end-start < snippetLength {
			start = end - snippetLength
			if start < 0 {
				start = 0
			}
		}
	}

	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return start, end
}
