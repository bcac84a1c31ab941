// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tokenize turns located page text into the line sequence the
// course parser walks.
package tokenize

import "strings"

// Lines is an ordered, indexable sequence of trimmed lines. Blank lines are
// kept as empty strings.
type Lines []string

// Tokenize splits text on newlines and trims surrounding whitespace (including
// a trailing carriage return) from every line.
func Tokenize(text string) Lines {
	raw := strings.Split(text, "\n")
	lines := make(Lines, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

// Len returns the number of lines.
func (l Lines) Len() int { return len(l) }

// At returns line i and whether i is in range.
func (l Lines) At(i int) (string, bool) {
	if i < 0 || i >= len(l) {
		return "", false
	}
	return l[i], true
}

// BlankFrom reports whether every line from i to the end is empty.
func (l Lines) BlankFrom(i int) bool {
	for ; i < len(l); i++ {
		if l[i] != "" {
			return false
		}
	}
	return true
}
