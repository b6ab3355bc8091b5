package annotator

import (
	"strings"

	"github.com/valpere/encomment/internal/dialect"
)

// CommentGroup is a run of contiguous line comments that all contain
// Japanese. It is translated as one unit.
type CommentGroup struct {
	// Start is the zero-based index of the first member line.
	Start  int
	Indent string
	Prefix string
	Lines  []string
	Texts  []string
}

func (g *CommentGroup) add(line, text string) {
	g.Lines = append(g.Lines, line)
	g.Texts = append(g.Texts, text)
}

// End is the index of the last member line.
func (g *CommentGroup) End() int {
	return g.Start + len(g.Lines) - 1
}

// Text joins the trimmed comment texts with single spaces.
func (g *CommentGroup) Text() string {
	parts := make([]string, len(g.Texts))
	for i, t := range g.Texts {
		parts[i] = strings.TrimSpace(t)
	}
	return strings.Join(parts, " ")
}

// Region is a block comment or docstring. Interior excludes the delimiter
// lines.
type Region struct {
	Kind     dialect.RegionKind
	Start    int
	End      int
	Indent   string
	Prefix   string
	Interior []string
}

// Text joins the trimmed interior lines with newlines.
func (r *Region) Text() string {
	parts := make([]string, len(r.Interior))
	for i, l := range r.Interior {
		parts[i] = strings.TrimSpace(l)
	}
	return strings.Join(parts, "\n")
}

func leadingWhitespace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
