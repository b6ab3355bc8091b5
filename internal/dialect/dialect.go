// Package dialect describes how a family of source files writes comments:
// the line-comment syntax, the multi-line region syntax (block comments or
// docstrings) and the prefix used for inserted lines.
package dialect

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrUnsupported is returned by ForPath for file types without a profile.
var ErrUnsupported = errors.New("unsupported file type")

// RegionKind tells block comments apart from docstrings.
type RegionKind int

const (
	Block RegionKind = iota
	Docstring
)

func (k RegionKind) String() string {
	switch k {
	case Block:
		return "block"
	case Docstring:
		return "docstring"
	default:
		return fmt.Sprintf("RegionKind(%d)", int(k))
	}
}

// Profile is the static description of one dialect.
//
// LineComment must capture the leading whitespace in group 1 and the
// comment text after the marker in group 2.
type Profile struct {
	Name string

	LineComment *regexp.Regexp
	LinePrefix  string

	RegionKind   RegionKind
	RegionOpen   *regexp.Regexp
	RegionClose  *regexp.Regexp
	RegionPrefix string
}

// OpensRegion reports whether line starts a block comment or docstring.
func (p Profile) OpensRegion(line string) bool {
	return p.RegionOpen.MatchString(line)
}

// ClosesRegion reports whether line ends the current region.
func (p Profile) ClosesRegion(line string) bool {
	return p.RegionClose.MatchString(line)
}

// MatchLineComment returns the indentation and comment text of a line
// comment. ok is false when line is not a line comment.
func (p Profile) MatchLineComment(line string) (indent, text string, ok bool) {
	m := p.LineComment.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// Any run of three quote characters at the start of a line both opens and
// closes a docstring; the quotes need not match each other or the opener.
var docstringDelim = regexp.MustCompile(`^(\s*)(["']{3})`)

var (
	Python = Profile{
		Name:         "python",
		LineComment:  regexp.MustCompile(`^(\s*)#(.*)`),
		LinePrefix:   "#",
		RegionKind:   Docstring,
		RegionOpen:   docstringDelim,
		RegionClose:  docstringDelim,
		RegionPrefix: "#",
	}

	CLike = Profile{
		Name:         "javascript",
		LineComment:  regexp.MustCompile(`^(\s*)//(.*)`),
		LinePrefix:   "//",
		RegionKind:   Block,
		RegionOpen:   regexp.MustCompile(`/\*`),
		RegionClose:  regexp.MustCompile(`\*/`),
		RegionPrefix: "//",
	}
)

var byExtension = map[string]Profile{
	".py":  Python,
	".js":  CLike,
	".jsx": CLike,
	".ts":  CLike,
	".tsx": CLike,
}

// ForPath picks the profile for path by its extension, case-insensitively.
func ForPath(path string) (Profile, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if p, ok := byExtension[ext]; ok {
		return p, nil
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnsupported, path)
}

// Extensions lists the supported file extensions in sorted order.
func Extensions() []string {
	return []string{".js", ".jsx", ".py", ".ts", ".tsx"}
}
