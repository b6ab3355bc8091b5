// Package markdown flattens markdown-formatted docstrings and block
// comments into plain prose before they are sent for translation.
package markdown

import (
	"bytes"
	"html"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

func ToHTML(md []byte) string {
	opts := mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags,
	}
	renderer := mdhtml.NewRenderer(opts)
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse(md)
	return string(markdown.Render(doc, renderer))
}

// ToPlainText renders text as markdown and keeps only the visible words,
// one non-empty line per rendered block. Entities are decoded.
func ToPlainText(text string) string {
	plain := html.UnescapeString(StripHTMLTags(ToHTML([]byte(text))))

	var lines []string
	for _, l := range strings.Split(plain, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}

func StripHTMLTags(htmlContent string) string {
	var result bytes.Buffer
	inTag := false

	for _, ch := range htmlContent {
		switch ch {
		case '<':
			inTag = true
		case '>':
			inTag = false
		default:
			if !inTag {
				result.WriteRune(ch)
			}
		}
	}

	return result.String()
}
