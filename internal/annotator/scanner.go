package annotator

import (
	"github.com/valpere/encomment/internal/detector"
	"github.com/valpere/encomment/internal/dialect"
)

// Handler receives the scanner's output in source order. Line is called
// for every input line. Group and Region are called right after the last
// line they cover has been passed to Line.
type Handler interface {
	Line(line string)
	Group(g *CommentGroup)
	Region(r *Region)
}

type mode int

const (
	modeNormal mode = iota
	modeInBlock
	modeInDocstring
)

type scanState struct {
	mode   mode
	group  *CommentGroup
	region *Region
}

// Scan walks lines once, classifying each one against p.
//
// A line that opens a region is never checked for the closing token, so
// `/* text */` on one line starts a block that runs until the next line
// containing `*/` alone. Regions still open at the end of input are dropped.
func Scan(lines []string, p dialect.Profile, h Handler) {
	st := &scanState{}
	for i, line := range lines {
		step(st, p, h, i, line)
	}
	flushGroup(st, h)
}

func step(st *scanState, p dialect.Profile, h Handler, i int, line string) {
	if st.mode != modeNormal {
		h.Line(line)
		// Block comments do not nest, but a line that opens one inside an
		// open block is interior even when it also holds the close token.
		if st.mode == modeInBlock && p.OpensRegion(line) {
			st.region.Interior = append(st.region.Interior, line)
			return
		}
		if p.ClosesRegion(line) {
			st.region.End = i
			flushRegion(st, h)
			st.mode = modeNormal
			return
		}
		st.region.Interior = append(st.region.Interior, line)
		return
	}

	if p.OpensRegion(line) {
		flushGroup(st, h)
		h.Line(line)
		st.region = &Region{
			Kind:   p.RegionKind,
			Start:  i,
			Indent: leadingWhitespace(line),
			Prefix: p.RegionPrefix,
		}
		st.mode = modeInBlock
		if p.RegionKind == dialect.Docstring {
			st.mode = modeInDocstring
		}
		return
	}

	if indent, text, ok := p.MatchLineComment(line); ok && detector.ContainsJapanese(text) {
		if st.group == nil {
			st.group = &CommentGroup{Start: i, Indent: indent, Prefix: p.LinePrefix}
		}
		st.group.add(line, text)
		h.Line(line)
		return
	}

	flushGroup(st, h)
	h.Line(line)
}

func flushGroup(st *scanState, h Handler) {
	if st.group == nil {
		return
	}
	g := st.group
	st.group = nil
	h.Group(g)
}

func flushRegion(st *scanState, h Handler) {
	r := st.region
	st.region = nil
	if r == nil || !detector.ContainsJapanese(r.Text()) {
		return
	}
	h.Region(r)
}
