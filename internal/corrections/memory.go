// Package corrections implements the learned keyword-to-category memory.
// When a user fixes a line item's ledger category, a keyword derived from the
// description is remembered; later extractions whose descriptions contain a
// remembered keyword get the learned category applied automatically.
package corrections

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/ledgerlens/ledgerlens/internal/service"
)

// LearnedConfidence is the ledger-category confidence assigned when a learned
// correction overrides the extractor's guess.
const LearnedConfidence = 99

// minKeywordLength is the shortest word worth remembering as a keyword.
const minKeywordLength = 4

// Memory applies and records learned corrections over a persistence port.
type Memory struct {
	store service.CorrectionStore
}

// NewMemory creates a correction memory backed by the given store.
func NewMemory(store service.CorrectionStore) *Memory {
	return &Memory{store: store}
}

// Lookup returns the learned correction whose keyword appears in the given
// description, or nil when none matches. Matching is a case-insensitive
// substring check; the first matching keyword wins and iteration order over
// stored keywords is unspecified.
func (m *Memory) Lookup(ctx context.Context, description string) (*model.Correction, error) {
	corrections, err := m.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load corrections: %w", err)
	}

	lower := strings.ToLower(description)
	for i := range corrections {
		if strings.Contains(lower, strings.ToLower(corrections[i].Keyword)) {
			return &corrections[i], nil
		}
	}

	return nil, nil
}

// Record remembers a manual category correction. The keyword is derived from
// the item description; descriptions with no usable keyword are skipped.
func (m *Memory) Record(ctx context.Context, description, category string) (*model.Correction, error) {
	keyword := DeriveKeyword(description)
	if keyword == "" {
		slog.Debug("No usable keyword in description, correction not recorded",
			"description", description)
		return nil, nil
	}

	correction := &model.Correction{
		Keyword:     keyword,
		Category:    category,
		LastUpdated: time.Now(),
	}
	if err := m.store.Save(ctx, correction); err != nil {
		return nil, fmt.Errorf("failed to save correction: %w", err)
	}

	slog.Info("Recorded correction", "keyword", keyword, "category", category)
	return correction, nil
}

// Apply rewrites the category of every line item whose description matches a
// learned keyword. Applied items get the learned category, a fixed high
// confidence, and a reasoning string naming the rule. Returns the number of
// items changed.
func (m *Memory) Apply(ctx context.Context, items []model.LineItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	corrections, err := m.store.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load corrections: %w", err)
	}
	if len(corrections) == 0 {
		return 0, nil
	}

	applied := 0
	for i := range items {
		lower := strings.ToLower(items[i].Description)
		for _, correction := range corrections {
			if !strings.Contains(lower, strings.ToLower(correction.Keyword)) {
				continue
			}

			items[i].GLCategory = correction.Category
			items[i].GLConfidence = LearnedConfidence
			items[i].GLReasoning = fmt.Sprintf("Learned rule: descriptions containing %q are categorized as %q", correction.Keyword, correction.Category)
			applied++

			if err := m.store.IncrementUseCount(ctx, correction.Keyword); err != nil {
				slog.Warn("Failed to increment correction use count",
					"keyword", correction.Keyword,
					"error", err)
			}
			break
		}
	}

	return applied, nil
}

// DeriveKeyword picks the keyword to remember for a description: the first
// word of at least minKeywordLength letters, lowercased with surrounding
// punctuation stripped. Returns "" when the description has no usable word.
func DeriveKeyword(description string) string {
	for _, word := range strings.Fields(description) {
		trimmed := strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len([]rune(trimmed)) >= minKeywordLength {
			return strings.ToLower(trimmed)
		}
	}
	return ""
}
