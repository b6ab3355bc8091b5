// Package postprocess turns raw service output into text that fits on a
// single comment line.
//
// Clean is applied to everything an LLM-backed service (Ollama, OpenRouter,
// refiner) returns; SingleLine is applied to every translation right before
// it is written next to the source comment.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean strips LLM artifacts in order and returns the trimmed result:
//  1. reasoning blocks
//  2. echoed instructions ("Here is the translation:")
//  3. wrapping quotes or a leading comment marker
func Clean(text string) string {
	text = removeThinkingBlocks(text)
	text = removeInstructionEchoes(text)
	text = removeQuoteWrapping(text)
	text = removeCommentMarker(text)
	return strings.TrimSpace(text)
}

// SingleLine replaces line breaks with spaces.
func SingleLine(text string) string {
	return lineBreaks.Replace(text)
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// RE2 has no backreferences, so every tag pair is spelled out.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// An opening tag without its closer means the model was cut off mid-thought.
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Each pattern is anchored and requires a colon to avoid eating real content.
var echoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the)? (?:english |refined |translated )?(?:translation|text|comment)\s*:`),
	regexp.MustCompile(`(?i)^(?:the )?(?:english |refined )?(?:translation|translated text|translated comment)\s*:`),
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.]? here(?:'s| is)(?: the)? (?:english |refined |translated )?(?:translation|text|comment)\s*:`),
	regexp.MustCompile(`(?i)^english\s*:`),
}

func removeInstructionEchoes(text string) string {
	for _, re := range echoPatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// removeQuoteWrapping drops one matching pair of outer quotes:
//
//	"…"  '…'  `…`  「…」  “…”  ‘…’
func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	if (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '`' && last == '`') ||
		(first == '「' && last == '」') ||
		(first == '“' && last == '”') ||
		(first == '‘' && last == '’') {
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}

// Models sometimes answer with a ready-made comment ("# Load config"); the
// annotator adds its own marker. A bare "#" must be followed by whitespace
// so that "#1 cause" keeps its number sign.
var commentMarkerRe = regexp.MustCompile(`^(?://\s*|#\s+)`)

func removeCommentMarker(text string) string {
	return commentMarkerRe.ReplaceAllString(text, "")
}
