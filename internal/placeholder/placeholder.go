// Package placeholder shields the parts of a comment that must survive
// translation verbatim (code spans, URLs, JSDoc tags, HTML tags) behind
// numbered markers [PH0], [PH1], … and puts them back afterwards.
package placeholder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// protected lists the patterns in the order they are applied. Longer
// constructs come first so that a URL inside a code span stays inside it.
var protected = []*regexp.Regexp{
	regexp.MustCompile("(?s)```.*?```"),
	regexp.MustCompile("`[^`\n]+`"),
	regexp.MustCompile(`\{@(?:link|linkcode|linkplain)\s[^}]*\}`),
	regexp.MustCompile(`https?://[^\s<>"'` + "`" + `）」]+`),
	regexp.MustCompile(`@(?:param|arg|argument|returns?|throws|type|typedef|template|property|prop)\b(?:\s+\{[^}]*\})?(?:\s+\[?[A-Za-z_$][\w$.]*\]?)?`),
	regexp.MustCompile(`</?[A-Za-z][^>]*>`),
}

var rePlaceholder = regexp.MustCompile(`\[PH(\d+)\]`)

// Protect replaces protected spans with [PHn] markers in order of
// appearance and returns the rewritten text plus the captured originals.
func Protect(text string) (string, []string) {
	var markers []string

	replace := func(match string) string {
		id := fmt.Sprintf("[PH%d]", len(markers))
		markers = append(markers, match)
		return id
	}

	for _, re := range protected {
		text = re.ReplaceAllStringFunc(text, replace)
	}

	return text, markers
}

// Restore puts the originals back. Markers with unknown indices are left
// as they are.
func Restore(text string, markers []string) string {
	if len(markers) == 0 {
		return text
	}
	return rePlaceholder.ReplaceAllStringFunc(text, func(match string) string {
		sub := rePlaceholder.FindStringSubmatch(match)
		idx, err := strconv.Atoi(sub[1])
		if err != nil || idx >= len(markers) {
			return match
		}
		return markers[idx]
	})
}

// Validate returns the indices of markers missing from text.
func Validate(text string, markers []string) []int {
	var missing []int
	for i := range markers {
		if !strings.Contains(text, fmt.Sprintf("[PH%d]", i)) {
			missing = append(missing, i)
		}
	}
	return missing
}
