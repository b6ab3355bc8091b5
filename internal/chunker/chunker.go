// Package chunker splits long comment text into pieces that fit a
// service's request limit, and extracts a short tail of the previous
// translation as context for LLM translators.
package chunker

import (
	"strings"
	"unicode"
)

// DefaultContextWords is the default size of the ExtractContext window.
const DefaultContextWords = 25

// Chunk splits text into pieces of at most maxChars runes. Splits are
// attempted, in order of preference, at:
//  1. blank lines
//  2. line breaks
//  3. sentence ends: 。！？ anywhere, . ! ? when followed by a space
//  4. whitespace
//  5. a hard cut at maxChars
//
// maxChars <= 0 means no limit.
func Chunk(text string, maxChars int) []string {
	if maxChars <= 0 || len([]rune(text)) <= maxChars {
		return []string{text}
	}

	var chunks []string
	remaining := text

	for len([]rune(remaining)) > maxChars {
		split := findSplit(remaining, maxChars)
		if chunk := strings.TrimSpace(remaining[:split]); chunk != "" {
			chunks = append(chunks, chunk)
		}
		remaining = strings.TrimSpace(remaining[split:])
	}

	if remaining != "" {
		chunks = append(chunks, remaining)
	}

	return chunks
}

// findSplit returns the byte offset at which to cut text so that the first
// piece holds at most maxChars runes.
func findSplit(text string, maxChars int) int {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return len(text)
	}
	candidate := runes[:maxChars]
	offset := func(i int) int { return len(string(candidate[:i])) }

	prefix := string(candidate)
	if idx := strings.LastIndex(prefix, "\n\n"); idx > 0 {
		return idx + 2
	}
	if idx := strings.LastIndex(prefix, "\n"); idx > 0 {
		return idx + 1
	}

	for i := len(candidate) - 1; i > 0; i-- {
		switch r := candidate[i]; {
		case r == '。' || r == '！' || r == '？':
			return offset(i + 1)
		case (r == '.' || r == '!' || r == '?') && i+1 < len(candidate) && unicode.IsSpace(candidate[i+1]):
			return offset(i + 1)
		}
	}

	for i := len(candidate) - 1; i > 0; i-- {
		if unicode.IsSpace(candidate[i]) {
			return offset(i)
		}
	}

	return len(prefix)
}

// ExtractContext returns the last wordCount words of text joined by single
// spaces, or the whole trimmed text when it is shorter. wordCount <= 0
// selects DefaultContextWords.
func ExtractContext(text string, wordCount int) string {
	if wordCount <= 0 {
		wordCount = DefaultContextWords
	}
	words := strings.Fields(text)
	if len(words) <= wordCount {
		return strings.Join(words, " ")
	}
	return strings.Join(words[len(words)-wordCount:], " ")
}
