package translator

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// languageName renders a language code as an English name ("ja" → "Japanese").
// Unknown codes are returned as given.
func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}

// buildCommentPrompt is the instruction shared by the LLM-backed services.
func buildCommentPrompt(req TranslateRequest) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You translate source code comments from %s to %s.\n",
		languageName(sourceOrDefault(req.SourceLang)), languageName(targetOrDefault(req.TargetLang)))
	sb.WriteString("Write one concise comment in the style a programmer would use. ")
	sb.WriteString("Keep identifiers, file names, numbers and [PHn] markers exactly as they are. ")
	sb.WriteString("Respond with the translation only: no quotes, no comment markers, no explanations.")

	if len(req.GlossaryTerms) > 0 {
		sb.WriteString("\n\nTERMINOLOGY (use these exact translations):\n")
		terms := make([]string, 0, len(req.GlossaryTerms))
		for src := range req.GlossaryTerms {
			terms = append(terms, src)
		}
		sort.Strings(terms)
		for _, src := range terms {
			fmt.Fprintf(&sb, "  %s → %s\n", src, req.GlossaryTerms[src])
		}
	}

	if req.PreviousContext != "" {
		fmt.Fprintf(&sb, "\n\nCONTEXT (the previous comment in the same file, do NOT translate it):\n...%s", req.PreviousContext)
	}

	return sb.String()
}
