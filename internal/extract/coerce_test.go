package extract

import (
	"encoding/json"
	"testing"

	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexNumber_Unmarshal(t *testing.T) {
	tests := []struct {
		name string
		json string
		want float64
	}{
		{name: "plain number", json: `12.5`, want: 12.5},
		{name: "integer", json: `40`, want: 40},
		{name: "numeric string", json: `"12.5"`, want: 12.5},
		{name: "currency sign stripped", json: `"$1,234.56"`, want: 1234.56},
		{name: "euro decoration stripped", json: `"€ 99,00"`, want: 9900},
		{name: "negative", json: `"-42.10"`, want: -42.10},
		{name: "stray punctuation", json: `"12.34*"`, want: 12.34},
		{name: "unparsable becomes zero", json: `"N/A"`, want: 0},
		{name: "double dot becomes zero", json: `"1.2.3"`, want: 0},
		{name: "null", json: `null`, want: 0},
		{name: "empty string", json: `""`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n FlexNumber
			require.NoError(t, json.Unmarshal([]byte(tt.json), &n))
			assert.Equal(t, tt.want, n.Float64())
		})
	}
}

func TestToRecord_BackfillsUnitPrice(t *testing.T) {
	raw := RawRecord{
		VendorName:     "Acme",
		InvoiceDate:    "2024-01-01",
		TotalAmount:    100,
		CurrencySymbol: "$",
		LineItems: []RawLineItem{
			{Description: "Widget", Quantity: 2, UnitPrice: 0, TotalAmount: 40},
		},
	}

	record := raw.ToRecord()

	require.Len(t, record.LineItems, 1)
	assert.Equal(t, 20.0, record.LineItems[0].UnitPrice)
	assert.Equal(t, 40.0, record.LineItems[0].TotalAmount)
}

func TestToRecord_BackfillsTotal(t *testing.T) {
	raw := RawRecord{
		LineItems: []RawLineItem{
			{Description: "Widget", Quantity: 3, UnitPrice: 9.99, TotalAmount: 0},
		},
	}

	record := raw.ToRecord()

	assert.Equal(t, 29.97, record.LineItems[0].TotalAmount)
}

func TestToRecord_NoBackfillWhenBothZero(t *testing.T) {
	raw := RawRecord{
		LineItems: []RawLineItem{
			{Description: "Freebie", Quantity: 1, UnitPrice: 0, TotalAmount: 0},
		},
	}

	record := raw.ToRecord()

	assert.Zero(t, record.LineItems[0].UnitPrice)
	assert.Zero(t, record.LineItems[0].TotalAmount)
}

func TestToRecord_BackfillRoundsToCents(t *testing.T) {
	raw := RawRecord{
		LineItems: []RawLineItem{
			{Description: "Odd lot", Quantity: 3, UnitPrice: 0, TotalAmount: 10},
		},
	}

	record := raw.ToRecord()

	assert.Equal(t, 3.33, record.LineItems[0].UnitPrice)
}

func TestToRecord_Normalization(t *testing.T) {
	raw := RawRecord{
		DocumentType:   " invoice ",
		VendorName:     "  Acme Corp  ",
		InvoiceDate:    "01/15/2024",
		CurrencySymbol: " $ ",
		Language:       "",
	}

	record := raw.ToRecord()

	assert.Equal(t, model.DocTypeInvoice, record.DocumentType)
	assert.Equal(t, "Acme Corp", record.VendorName)
	assert.Equal(t, "2024-01-15", record.InvoiceDate)
	assert.Equal(t, "$", record.CurrencySymbol)
	assert.Equal(t, model.LanguageOriginal, record.Language)
}

func TestToRecord_UnknownDocumentType(t *testing.T) {
	record := RawRecord{}.ToRecord()
	assert.Equal(t, model.DocTypeUnknown, record.DocumentType)
}

func TestNormalizeDate_KeepsUnparsableVerbatim(t *testing.T) {
	raw := RawRecord{InvoiceDate: "sometime last spring"}
	record := raw.ToRecord()
	assert.Equal(t, "sometime last spring", record.InvoiceDate)
}

func TestToRecord_WireShapeWithStringNumbers(t *testing.T) {
	payload := `{
		"documentType": "INVOICE",
		"vendorName": "Acme",
		"invoiceDate": "2024-01-01",
		"totalAmount": "$100.00",
		"currencySymbol": "$",
		"language": "Original",
		"languageConfidence": "95",
		"lineItems": [
			{"description": "Widget", "glCategory": "Hardware", "quantity": "2", "unitPrice": "0", "totalAmount": "40.00", "glConfidence": "85"}
		]
	}`

	var raw RawRecord
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))

	record := raw.ToRecord()
	assert.Equal(t, 100.0, record.TotalAmount)
	assert.Equal(t, 95.0, record.LanguageConfidence)
	require.Len(t, record.LineItems, 1)
	assert.Equal(t, 20.0, record.LineItems[0].UnitPrice)
	assert.Equal(t, 85, record.LineItems[0].GLConfidence)
}
