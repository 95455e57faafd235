package extraction

import (
	"strings"
	"unicode/utf8"
)

// Truncate returns the longest prefix of s holding at most maxChars characters.
// It never splits a multi-byte rune and is idempotent.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	if len(s) <= maxChars || utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i]
		}
		n++
	}
	return s
}

// Source is one named piece of source text with its character budget.
type Source struct {
	Name   string
	Text   string
	Budget int
}

// bounded truncates every source to its budget. A zero budget leaves the text untouched.
func bounded(sources []Source) map[string]string {
	out := make(map[string]string, len(sources))
	for _, s := range sources {
		if s.Budget > 0 {
			out[s.Name] = Truncate(s.Text, s.Budget)
		} else {
			out[s.Name] = s.Text
		}
	}
	return out
}

// cutAtWord shortens s to at most maxChars runes at the last word boundary and marks the cut with "...".
func cutAtWord(s string, maxChars int) string {
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	cut := Truncate(s, maxChars)
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}

// ellipsize caps s at maxLen runes, replacing the tail with "..." when it is cut.
func ellipsize(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return Truncate(s, maxLen)
	}
	return Truncate(s, maxLen-3) + "..."
}

// collapseSpace joins all whitespace runs into single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
