// Package annotator finds Japanese comments in a source file and inserts
// one English line after each comment group, block comment or docstring.
//
// The output is always the input with lines inserted, never removed or
// reordered. Translations are requested one at a time in source order.
package annotator

import (
	"context"
	"errors"
	"strconv"
	"strings"

	charmlog "github.com/charmbracelet/log"

	"github.com/valpere/encomment/internal/dialect"
	"github.com/valpere/encomment/internal/logger"
	"github.com/valpere/encomment/internal/markdown"
	"github.com/valpere/encomment/internal/postprocess"
)

// ErrNoTranslation marks a Translator error that means "nothing could be
// asked", as opposed to a failed request. Such errors are logged at debug
// level only.
var ErrNoTranslation = errors.New("no translation available")

// Translator turns Japanese text into English.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// TranslatorFunc adapts a plain function to Translator.
type TranslatorFunc func(ctx context.Context, text string) (string, error)

func (f TranslatorFunc) Translate(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// Placeholder is the line text used when no translation is available.
func Placeholder(text string) string {
	return "English: " + strings.TrimSpace(text)
}

type Options struct {
	// FlattenMarkup renders block and docstring text as markdown and
	// translates only the visible words.
	FlattenMarkup bool
	Logger        *charmlog.Logger
}

// Result is the annotated file plus counters for reporting.
type Result struct {
	Lines      []string
	Groups     int
	Regions    int
	Translated int
	Fallbacks  int
}

// Inserted is the number of synthesized lines.
func (r *Result) Inserted() int {
	return r.Translated + r.Fallbacks
}

type Annotator struct {
	translator Translator
	opts       Options
	log        *charmlog.Logger
}

// New returns an Annotator. A nil translator makes every inserted line a
// placeholder.
func New(tr Translator, opts Options) *Annotator {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Annotator{translator: tr, opts: opts, log: log}
}

// Annotate scans lines with profile p and returns the annotated copy.
func (a *Annotator) Annotate(ctx context.Context, lines []string, p dialect.Profile) *Result {
	e := &emitter{
		ctx: ctx,
		a:   a,
		res: &Result{Lines: make([]string, 0, len(lines))},
	}
	Scan(lines, p, e)
	return e.res
}

// emitter is the Handler that builds the output sequence.
type emitter struct {
	ctx context.Context
	a   *Annotator
	res *Result
}

func (e *emitter) Line(line string) {
	e.res.Lines = append(e.res.Lines, line)
}

func (e *emitter) Group(g *CommentGroup) {
	e.res.Groups++
	text := g.Text()
	e.insert(g.Indent, g.Prefix, text, text, g.Start, g.End())
}

func (e *emitter) Region(r *Region) {
	e.res.Regions++
	text := r.Text()
	request := text
	if e.a.opts.FlattenMarkup {
		if flat := markdown.ToPlainText(text); flat != "" {
			request = flat
		}
	}
	e.insert(r.Indent, r.Prefix, text, request, r.Start, r.End)
}

// insert translates request and appends one line. The placeholder quotes
// source, which may differ from request when markup was flattened.
func (e *emitter) insert(indent, prefix, source, request string, start, end int) {
	english, ok := e.a.translate(e.ctx, request, start, end)
	if ok {
		e.res.Translated++
	} else {
		english = Placeholder(source)
		e.res.Fallbacks++
	}
	e.res.Lines = append(e.res.Lines, indent+prefix+" "+postprocess.SingleLine(english))
}

func (a *Annotator) translate(ctx context.Context, text string, start, end int) (string, bool) {
	if a.translator == nil {
		return "", false
	}
	english, err := a.translator.Translate(ctx, text)
	if errors.Is(err, ErrNoTranslation) {
		a.log.Debug("no translation, using placeholder", "lines", lineRange(start, end), "err", err)
		return "", false
	}
	if err != nil {
		a.log.Warn("translation failed, using placeholder", "lines", lineRange(start, end), "err", err)
		return "", false
	}
	if strings.TrimSpace(english) == "" {
		a.log.Warn("empty translation, using placeholder", "lines", lineRange(start, end))
		return "", false
	}
	a.log.Debug("translated", "lines", lineRange(start, end), "chars", len([]rune(text)))
	return strings.TrimSpace(english), true
}

func lineRange(start, end int) string {
	if start == end {
		return strconv.Itoa(start + 1)
	}
	return strconv.Itoa(start+1) + "-" + strconv.Itoa(end+1)
}
