// Package detector answers two questions about comment text: whether it
// contains Japanese characters at all, and which natural language a longer
// passage is written in.
package detector

import (
	"regexp"
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// japaneseRe covers hiragana, katakana, CJK extension A, CJK unified
// ideographs and half-width katakana.
var japaneseRe = regexp.MustCompile(`[\x{3040}-\x{30ff}\x{3400}-\x{4dbf}\x{4e00}-\x{9fff}\x{ff66}-\x{ff9f}]`)

// ContainsJapanese reports whether text holds at least one Japanese character.
func ContainsJapanese(text string) bool {
	return japaneseRe.MatchString(text)
}

// Detector wraps a lingua language detector. Building one is expensive,
// so callers should keep the instance around.
type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector restricted to the languages that show up in source
// comments in practice. A small candidate set keeps detection fast and
// makes short English fragments far less likely to be misread.
func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.Japanese,
			lingua.Chinese,
			lingua.Korean,
			lingua.German,
			lingua.French,
			lingua.Spanish,
		).
		Build()

	return &Detector{detector: detector}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if text == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the ISO 639-1 code of the detected language, lower case.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
