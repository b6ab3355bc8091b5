package annotator

import (
	"reflect"
	"testing"

	"github.com/valpere/encomment/internal/dialect"
)

type recorder struct {
	events  []string
	groups  []*CommentGroup
	regions []*Region
}

func (r *recorder) Line(line string) { r.events = append(r.events, "line:"+line) }

func (r *recorder) Group(g *CommentGroup) {
	r.events = append(r.events, "group")
	r.groups = append(r.groups, g)
}

func (r *recorder) Region(reg *Region) {
	r.events = append(r.events, "region")
	r.regions = append(r.regions, reg)
}

func TestScan_EventOrder(t *testing.T) {
	rec := &recorder{}
	Scan([]string{"# あ", "# い", "x", `"""`, "う", `"""`}, dialect.Python, rec)

	want := []string{
		"line:# あ", "line:# い", "group",
		"line:x",
		`line:"""`, "line:う", `line:"""`, "region",
	}
	if !reflect.DeepEqual(rec.events, want) {
		t.Errorf("events = %q, want %q", rec.events, want)
	}
}

func TestScan_GroupFields(t *testing.T) {
	rec := &recorder{}
	Scan([]string{"code", "\t// 一 ", "\t//二", "code"}, dialect.CLike, rec)

	if len(rec.groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(rec.groups))
	}
	g := rec.groups[0]
	if g.Start != 1 || g.End() != 2 {
		t.Errorf("group spans %d-%d, want 1-2", g.Start, g.End())
	}
	if g.Indent != "\t" || g.Prefix != "//" {
		t.Errorf("indent=%q prefix=%q", g.Indent, g.Prefix)
	}
	if !reflect.DeepEqual(g.Lines, []string{"\t// 一 ", "\t//二"}) {
		t.Errorf("lines = %q", g.Lines)
	}
	if g.Text() != "一 二" {
		t.Errorf("text = %q", g.Text())
	}
}

func TestScan_RegionFields(t *testing.T) {
	rec := &recorder{}
	Scan([]string{"x", "    /**", "     * 説明", "     */"}, dialect.CLike, rec)

	if len(rec.regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(rec.regions))
	}
	r := rec.regions[0]
	if r.Kind != dialect.Block || r.Start != 1 || r.End != 3 {
		t.Errorf("kind=%s start=%d end=%d", r.Kind, r.Start, r.End)
	}
	if r.Indent != "    " || r.Prefix != "//" {
		t.Errorf("indent=%q prefix=%q", r.Indent, r.Prefix)
	}
	if r.Text() != "* 説明" {
		t.Errorf("text = %q", r.Text())
	}
}

func TestScan_DocstringKind(t *testing.T) {
	rec := &recorder{}
	Scan([]string{`"""`, "説明", `"""`}, dialect.Python, rec)
	if len(rec.regions) != 1 || rec.regions[0].Kind != dialect.Docstring {
		t.Fatalf("expected one docstring region, got %+v", rec.regions)
	}
}

func TestScan_EveryLineReported(t *testing.T) {
	input := []string{"/* a", "// 日本", "*/", "// 日本", `"""`, "", "b"}
	rec := &recorder{}
	Scan(input, dialect.CLike, rec)

	var lines []string
	for _, e := range rec.events {
		if len(e) >= 5 && e[:5] == "line:" {
			lines = append(lines, e[5:])
		}
	}
	if !reflect.DeepEqual(lines, input) {
		t.Errorf("reported lines = %q, want %q", lines, input)
	}
}
