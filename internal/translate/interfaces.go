// Package translate re-renders line-item text in a target language while
// preserving the original extraction as the single source of truth.
package translate

import (
	"context"

	"github.com/ledgerlens/ledgerlens/internal/model"
)

// TranslatedItem is one translated line item, addressed by the position of
// its source in the request so results merge back positionally even if the
// collaborator reorders or omits entries.
type TranslatedItem struct {
	Description string
	GLCategory  string
	Index       int
}

// Translator defines the translation collaborator contract.
type Translator interface {
	Translate(ctx context.Context, items []model.LineItem, targetLanguage string) ([]TranslatedItem, error)
	Close() error
}

// Merge applies translated items onto a copy of the source line items.
// Results address source positions by index; out-of-range indices are
// dropped and missing indices keep the original text unchanged.
func Merge(source []model.LineItem, translated []TranslatedItem) []model.LineItem {
	merged := model.CloneLineItems(source)

	for _, t := range translated {
		if t.Index < 0 || t.Index >= len(merged) {
			continue
		}
		if t.Description != "" {
			merged[t.Index].Description = t.Description
		}
		if t.GLCategory != "" {
			merged[t.Index].GLCategory = t.GLCategory
		}
	}

	return merged
}
