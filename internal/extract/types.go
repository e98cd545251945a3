// Package extract talks to the vision extraction collaborator and turns its
// loosely typed output into domain records. All wire-shape tolerance lives
// here: numbers arriving as decorated strings, missing fields, and
// inconsistent date formats are normalized before a record leaves the
// package.
package extract

import (
	"encoding/json"
	"strconv"
	"strings"
)

// RawRecord is the extraction collaborator's wire shape. Field values are
// trusted only after coercion (see ToRecord).
type RawRecord struct {
	DocumentType       string        `json:"documentType"`
	VendorName         string        `json:"vendorName"`
	InvoiceDate        string        `json:"invoiceDate"`
	TotalAmount        FlexNumber    `json:"totalAmount"`
	CurrencySymbol     string        `json:"currencySymbol"`
	Language           string        `json:"language"`
	LanguageConfidence FlexNumber    `json:"languageConfidence"`
	LineItems          []RawLineItem `json:"lineItems"`
}

// RawLineItem is a line item as the collaborator reports it.
type RawLineItem struct {
	SKU          string     `json:"sku"`
	Description  string     `json:"description"`
	GLCategory   string     `json:"glCategory"`
	GLReasoning  string     `json:"glReasoning"`
	Quantity     FlexNumber `json:"quantity"`
	UnitPrice    FlexNumber `json:"unitPrice"`
	TotalAmount  FlexNumber `json:"totalAmount"`
	GLConfidence FlexNumber `json:"glConfidence"`
}

// FlexNumber is a float64 that tolerates the collaborator's habit of
// returning numbers as strings decorated with currency signs, thousands
// separators, or stray punctuation. Anything unparsable becomes 0 rather
// than failing the whole extraction.
type FlexNumber float64

// UnmarshalJSON accepts a JSON number, a numeric string (with decoration),
// or null.
func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*n = 0
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = 0
			return nil
		}
		*n = FlexNumber(parseLooseNumber(s))
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*n = 0
		return nil
	}
	*n = FlexNumber(f)
	return nil
}

// Float64 returns the underlying value.
func (n FlexNumber) Float64() float64 {
	return float64(n)
}

// parseLooseNumber strips every character that is not a digit, '.', or '-'
// and parses what remains. An unparsable result is 0.
func parseLooseNumber(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if cleaned == "" {
		return 0
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return f
}
