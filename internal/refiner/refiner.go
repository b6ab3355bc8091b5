// Package refiner rewrites a draft translation into the terse register of
// a code comment. It runs after the translation services and is optional.
package refiner

import "context"

type Refiner interface {
	Refine(ctx context.Context, sourceLang, targetLang, sourceText, draftText string) (string, error)
}
