// Package model defines the core domain models used throughout the application.
package model

import (
	"time"
)

// DocumentType labels come from the extraction collaborator and form an open
// set; unknown labels are kept as-is and only drive display.
const (
	DocTypeInvoice     = "INVOICE"
	DocTypePackingSlip = "PACKING SLIP"
	DocTypeBOL         = "BOL"
	DocTypeUnknown     = "UNKNOWN"
)

// LanguageOriginal is the language value of a record whose line items carry
// the extracted, untranslated text.
const LanguageOriginal = "Original"

// ConfidenceTier is the derived trust level for an extracted record.
type ConfidenceTier string

// Confidence tiers, from most to least trustworthy.
const (
	ConfidenceHigh   ConfidenceTier = "High"
	ConfidenceMedium ConfidenceTier = "Medium"
	ConfidenceLow    ConfidenceTier = "Low"
)

// ValidationFlags are independent data-quality findings; any combination may
// be set at once.
type ValidationFlags struct {
	HasZeroPrices       bool `json:"hasZeroPrices"`
	LowItemCount        bool `json:"lowItemCount"`
	MissingMetadata     bool `json:"missingMetadata"`
	UnsupportedCurrency bool `json:"unsupportedCurrency"`
	UnsupportedLanguage bool `json:"unsupportedLanguage"`
}

// Record represents one reconciled trade document.
type Record struct {
	ID                 string          `json:"id"`
	DocumentType       string          `json:"documentType"`
	VendorName         string          `json:"vendorName"`
	InvoiceDate        string          `json:"invoiceDate"`
	TotalAmount        float64         `json:"totalAmount"`
	CurrencySymbol     string          `json:"currencySymbol"`
	LineItems          []LineItem      `json:"lineItems"`
	Language           string          `json:"language"`
	OriginalLineItems  []LineItem      `json:"originalLineItems"`
	LanguageConfidence float64         `json:"languageConfidence,omitempty"`
	ProcessingTime     time.Duration   `json:"processingTimeMs"`
	IsDemo             bool            `json:"isDemo"`
	Confidence         ConfidenceTier  `json:"confidenceScore,omitempty"`
	Flags              ValidationFlags `json:"validationFlags"`
	HasSensitiveData   bool            `json:"hasSensitiveData"`
	SensitiveDataTypes []string        `json:"sensitiveDataTypes,omitempty"`
}

// CloneLineItems returns a deep copy of the given line items. Snapshots of
// the original extraction must not alias the displayed slice, otherwise a
// translation would silently rewrite the snapshot too.
func CloneLineItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	cloned := make([]LineItem, len(items))
	copy(cloned, items)
	return cloned
}

// RestoreOriginal puts the record back into its untranslated state.
func (r *Record) RestoreOriginal() {
	r.LineItems = CloneLineItems(r.OriginalLineItems)
	r.Language = LanguageOriginal
}
