// Package metrics derives cheap local features from text without calling
// any external service.
package metrics

import (
	"strings"
	"unicode/utf8"
)

// Features summarises one input string.
type Features struct {
	Bytes int
	Runes int
	Words int
	Lines int
}

// CountFeatures measures s. Words split on Unicode whitespace; an empty
// string has zero lines, anything else has one line per newline plus one.
func CountFeatures(s string) Features {
	lines := 0
	if s != "" {
		lines = 1 + strings.Count(s, "\n")
	}
	return Features{
		Bytes: len(s),
		Runes: utf8.RuneCountInString(s),
		Words: len(strings.Fields(s)),
		Lines: lines,
	}
}
