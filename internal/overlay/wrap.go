package overlay

import (
	"strings"
	"unicode/utf8"
)

// WrapLines splits text into lines of at most maxChars characters, packing
// whole words greedily. maxChars <= 0 disables wrapping and returns the text
// as a single line regardless of length. A word longer than maxChars is kept
// whole on its own line, never split. The result always has at least one
// line, even for empty input.
func WrapLines(text string, maxChars int) []string {
	if maxChars <= 0 {
		return []string{text}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	lines := make([]string, 0, 1)
	current := words[0]
	for _, word := range words[1:] {
		if utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= maxChars {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}
