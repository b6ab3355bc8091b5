// Package validator checks that a translation is really in the target
// language before it is written into the source file.
package validator

import (
	"fmt"
	"strings"

	"github.com/valpere/encomment/internal/detector"
)

// minValidationLength is the shortest text, in runes, handed to the
// language detector. Shorter comments ("Retry", "TODO") are unreliable.
const minValidationLength = 20

// Validator rejects translations that came back untranslated or in the
// wrong language. Reuse the instance; the detector is costly to build.
type Validator struct {
	det *detector.Detector
}

func New() *Validator {
	return &Validator{det: detector.New()}
}

// IsValid reports whether translatedText is acceptable for targetLang.
//
// Any Japanese left in an English target is a failure regardless of
// length, since services often echo the source back unchanged. Otherwise
// short or ambiguous texts pass.
func (v *Validator) IsValid(translatedText, targetLang string) (bool, error) {
	if targetLang == "" {
		return true, nil
	}

	text := strings.TrimSpace(translatedText)
	if text == "" {
		return false, fmt.Errorf("translation is empty")
	}

	if targetLang != "ja" && detector.ContainsJapanese(text) {
		return false, fmt.Errorf("translation still contains Japanese text")
	}

	if len([]rune(text)) < minValidationLength {
		return true, nil
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		return true, nil
	}

	if !strings.EqualFold(detected, targetLang) {
		return false, fmt.Errorf("expected %s but detected %s", targetLang, detected)
	}

	return true, nil
}
