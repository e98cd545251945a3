package extract

import (
	"strings"
	"time"

	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/shopspring/decimal"
)

// dateFormats are the invoice date layouts the collaborator has been seen to
// emit, tried in order.
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02-01-2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// ToRecord coerces a raw extraction result into a domain record. Numeric
// fields have already been sanitized by FlexNumber; this step normalizes the
// date, defaults the document type, and back-fills line-item prices and
// totals that can be derived from their siblings.
func (r RawRecord) ToRecord() model.Record {
	record := model.Record{
		DocumentType:       normalizeDocumentType(r.DocumentType),
		VendorName:         strings.TrimSpace(r.VendorName),
		InvoiceDate:        normalizeDate(r.InvoiceDate),
		TotalAmount:        r.TotalAmount.Float64(),
		CurrencySymbol:     strings.TrimSpace(r.CurrencySymbol),
		Language:           normalizeLanguage(r.Language),
		LanguageConfidence: r.LanguageConfidence.Float64(),
		LineItems:          make([]model.LineItem, 0, len(r.LineItems)),
	}

	for _, raw := range r.LineItems {
		record.LineItems = append(record.LineItems, coerceLineItem(raw))
	}

	return record
}

func coerceLineItem(raw RawLineItem) model.LineItem {
	item := model.LineItem{
		SKU:          strings.TrimSpace(raw.SKU),
		Description:  strings.TrimSpace(raw.Description),
		GLCategory:   strings.TrimSpace(raw.GLCategory),
		GLReasoning:  strings.TrimSpace(raw.GLReasoning),
		Quantity:     raw.Quantity.Float64(),
		UnitPrice:    raw.UnitPrice.Float64(),
		TotalAmount:  raw.TotalAmount.Float64(),
		GLConfidence: int(raw.GLConfidence.Float64()),
	}

	// Back-fill whichever of unit price and total is missing but derivable
	// from the other two fields, rounded to cents.
	if item.UnitPrice == 0 && item.Quantity > 0 && item.TotalAmount > 0 {
		price := decimal.NewFromFloat(item.TotalAmount).
			Div(decimal.NewFromFloat(item.Quantity)).
			Round(2)
		item.UnitPrice, _ = price.Float64()
	} else if item.TotalAmount == 0 && item.Quantity > 0 && item.UnitPrice > 0 {
		total := decimal.NewFromFloat(item.Quantity).
			Mul(decimal.NewFromFloat(item.UnitPrice)).
			Round(2)
		item.TotalAmount, _ = total.Float64()
	}

	return item
}

func normalizeDocumentType(docType string) string {
	cleaned := strings.ToUpper(strings.TrimSpace(docType))
	if cleaned == "" {
		return model.DocTypeUnknown
	}
	return cleaned
}

func normalizeLanguage(language string) string {
	cleaned := strings.TrimSpace(language)
	if cleaned == "" {
		return model.LanguageOriginal
	}
	return cleaned
}

// normalizeDate converts recognized layouts to ISO form. Unrecognized values
// are kept verbatim so the user can correct them by hand rather than having
// them silently replaced.
func normalizeDate(date string) string {
	cleaned := strings.TrimSpace(date)
	if cleaned == "" {
		return ""
	}

	for _, format := range dateFormats {
		if parsed, err := time.Parse(format, cleaned); err == nil {
			return parsed.Format("2006-01-02")
		}
	}

	return cleaned
}
