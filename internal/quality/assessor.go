// Package quality derives validation flags, a confidence tier, and
// sensitive-data findings from an extracted record. Assessment is a pure
// function of record content; running it twice yields identical results.
package quality

import (
	"strings"

	"github.com/ledgerlens/ledgerlens/internal/currency"
	"github.com/ledgerlens/ledgerlens/internal/model"
)

const (
	// LowItemThreshold is the minimum number of line items a plausible trade
	// document carries. Fewer than this suggests a partial extraction.
	LowItemThreshold = 2

	// LanguageConfidenceFloor suppresses the unsupported-language flag when
	// the extractor itself was at least this confident in its language call.
	// A legitimate but untranslatable language should not look like an
	// extraction defect.
	LanguageConfidenceFloor = 90
)

// supportedLanguages is the allow-list of languages the translation side of
// the application can handle.
var supportedLanguages = map[string]bool{
	"english":    true,
	"spanish":    true,
	"french":     true,
	"german":     true,
	"portuguese": true,
	"italian":    true,
	"dutch":      true,
	"chinese":    true,
	"japanese":   true,
	"korean":     true,
}

// Assess inspects a record and returns a copy with validation flags, a
// confidence tier, and sensitive-data findings populated. All derived fields
// are recomputed from scratch, so prior assessment state never leaks into a
// new result.
func Assess(record model.Record) model.Record {
	assessed := record
	assessed.Flags = model.ValidationFlags{}
	assessed.HasSensitiveData = false
	assessed.SensitiveDataTypes = nil

	assessed.Flags.HasZeroPrices = hasZeroPricedItems(record.LineItems)
	assessed.Flags.LowItemCount = len(record.LineItems) < LowItemThreshold
	assessed.Flags.MissingMetadata = missingMetadata(record)
	assessed.Flags.UnsupportedCurrency = !currency.Supported(record.CurrencySymbol)
	assessed.Flags.UnsupportedLanguage = unsupportedLanguage(record)

	assessed.HasSensitiveData, assessed.SensitiveDataTypes = scanSensitiveData(record)

	assessed.Confidence = deriveConfidence(assessed.Flags)

	return assessed
}

// deriveConfidence maps flags to a tier. Metadata and currency problems make
// the record untrustworthy; pricing and item-count problems merely make it
// suspect. The unsupported-language flag alone never downgrades confidence.
func deriveConfidence(flags model.ValidationFlags) model.ConfidenceTier {
	switch {
	case flags.MissingMetadata || flags.UnsupportedCurrency:
		return model.ConfidenceLow
	case flags.HasZeroPrices || flags.LowItemCount:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceHigh
	}
}

func hasZeroPricedItems(items []model.LineItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if item.UnitPrice == 0 && item.TotalAmount == 0 {
			return true
		}
	}
	return false
}

func missingMetadata(record model.Record) bool {
	vendor := strings.ToLower(strings.TrimSpace(record.VendorName))
	if vendor == "" || vendor == "unknown" || vendor == "unknown vendor" {
		return true
	}
	return record.TotalAmount == 0
}

func unsupportedLanguage(record model.Record) bool {
	lang := strings.TrimSpace(record.Language)
	if lang == "" || lang == model.LanguageOriginal {
		return false
	}
	if supportedLanguages[strings.ToLower(lang)] {
		return false
	}
	return record.LanguageConfidence < LanguageConfidenceFloor
}
