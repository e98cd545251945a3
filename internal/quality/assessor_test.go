package quality

import (
	"testing"

	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/stretchr/testify/assert"
)

func healthyRecord() model.Record {
	return model.Record{
		ID:             "rec-1",
		DocumentType:   model.DocTypeInvoice,
		VendorName:     "Acme Industrial Supply",
		InvoiceDate:    "2024-03-15",
		TotalAmount:    1250.00,
		CurrencySymbol: "$",
		Language:       model.LanguageOriginal,
		LineItems: []model.LineItem{
			{SKU: "A-100", Description: "Hex bolts", Quantity: 10, UnitPrice: 25, TotalAmount: 250, GLCategory: "Hardware"},
			{SKU: "A-200", Description: "Steel plate", Quantity: 4, UnitPrice: 250, TotalAmount: 1000, GLCategory: "Raw Materials"},
		},
	}
}

func TestAssess_HealthyRecord(t *testing.T) {
	assessed := Assess(healthyRecord())

	assert.Equal(t, model.ValidationFlags{}, assessed.Flags)
	assert.Equal(t, model.ConfidenceHigh, assessed.Confidence)
	assert.False(t, assessed.HasSensitiveData)
	assert.Empty(t, assessed.SensitiveDataTypes)
}

func TestAssess_ZeroPricesYieldMediumConfidence(t *testing.T) {
	record := healthyRecord()
	record.LineItems = append(record.LineItems, model.LineItem{
		Description: "Mystery item", Quantity: 1, UnitPrice: 0, TotalAmount: 0,
	})

	assessed := Assess(record)

	assert.True(t, assessed.Flags.HasZeroPrices)
	assert.Equal(t, model.ConfidenceMedium, assessed.Confidence)
}

func TestAssess_LowItemCount(t *testing.T) {
	record := healthyRecord()
	record.LineItems = record.LineItems[:1]

	assessed := Assess(record)

	assert.True(t, assessed.Flags.LowItemCount)
	assert.Equal(t, model.ConfidenceMedium, assessed.Confidence)
}

func TestAssess_MissingMetadataYieldsLowConfidence(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Record)
	}{
		{name: "empty vendor and zero total", mutate: func(r *model.Record) {
			r.VendorName = ""
			r.TotalAmount = 0
		}},
		{name: "unknown vendor placeholder", mutate: func(r *model.Record) {
			r.VendorName = "Unknown"
		}},
		{name: "zero total alone", mutate: func(r *model.Record) {
			r.TotalAmount = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := healthyRecord()
			tt.mutate(&record)

			assessed := Assess(record)

			assert.True(t, assessed.Flags.MissingMetadata)
			assert.Equal(t, model.ConfidenceLow, assessed.Confidence)
		})
	}
}

func TestAssess_UnsupportedCurrency(t *testing.T) {
	record := healthyRecord()
	record.CurrencySymbol = "₴"

	assessed := Assess(record)

	assert.True(t, assessed.Flags.UnsupportedCurrency)
	assert.Equal(t, model.ConfidenceLow, assessed.Confidence)
}

func TestAssess_UnsupportedLanguage(t *testing.T) {
	tests := []struct {
		name       string
		language   string
		confidence float64
		wantFlag   bool
	}{
		{name: "original never flags", language: model.LanguageOriginal, confidence: 0, wantFlag: false},
		{name: "supported language never flags", language: "Spanish", confidence: 10, wantFlag: false},
		{name: "unsupported with low extractor confidence flags", language: "Finnish", confidence: 40, wantFlag: true},
		{name: "unsupported with high extractor confidence is suppressed", language: "Finnish", confidence: 95, wantFlag: false},
		{name: "threshold itself suppresses", language: "Finnish", confidence: LanguageConfidenceFloor, wantFlag: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := healthyRecord()
			record.Language = tt.language
			record.LanguageConfidence = tt.confidence

			assessed := Assess(record)

			assert.Equal(t, tt.wantFlag, assessed.Flags.UnsupportedLanguage)
			// Language problems alone never downgrade confidence.
			assert.Equal(t, model.ConfidenceHigh, assessed.Confidence)
		})
	}
}

func TestAssess_SensitiveData(t *testing.T) {
	tests := []struct {
		name           string
		mutate         func(*model.Record)
		wantCategories []string
	}{
		{
			name: "ssn shaped vendor name",
			mutate: func(r *model.Record) {
				r.VendorName = "Vendor 123-45-6789 LLC"
			},
			wantCategories: []string{"SSN"},
		},
		{
			name: "card number in description",
			mutate: func(r *model.Record) {
				r.LineItems[0].Description = "Paid with 4111111111111111"
			},
			wantCategories: []string{"Card Number"},
		},
		{
			name: "email in description",
			mutate: func(r *model.Record) {
				r.LineItems[1].Description = "Contact billing@acme.example.com"
			},
			wantCategories: []string{"Email Address"},
		},
		{
			name: "tax keyword",
			mutate: func(r *model.Record) {
				r.LineItems[0].Description = "Includes Tax ID registration"
			},
			wantCategories: []string{"Tax ID"},
		},
		{
			name: "duplicate hits deduplicated",
			mutate: func(r *model.Record) {
				r.VendorName = "SSN 111-22-3333"
				r.LineItems[0].Description = "social security filing 444-55-6666"
			},
			wantCategories: []string{"SSN"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := healthyRecord()
			tt.mutate(&record)

			assessed := Assess(record)

			assert.True(t, assessed.HasSensitiveData)
			assert.Equal(t, tt.wantCategories, assessed.SensitiveDataTypes)
		})
	}
}

func TestAssess_Idempotent(t *testing.T) {
	records := []model.Record{
		healthyRecord(),
		{VendorName: "", TotalAmount: 0, CurrencySymbol: "??", Language: "Klingon"},
		{
			VendorName:     "Data 123-45-6789",
			TotalAmount:    50,
			CurrencySymbol: "$",
			LineItems:      []model.LineItem{{Description: "thing", UnitPrice: 0, TotalAmount: 0}},
		},
	}

	for _, record := range records {
		once := Assess(record)
		twice := Assess(once)
		assert.Equal(t, once.Flags, twice.Flags)
		assert.Equal(t, once.Confidence, twice.Confidence)
		assert.Equal(t, once.HasSensitiveData, twice.HasSensitiveData)
		assert.Equal(t, once.SensitiveDataTypes, twice.SensitiveDataTypes)
	}
}

func TestAssess_DoesNotMutateInput(t *testing.T) {
	record := healthyRecord()
	record.VendorName = ""

	_ = Assess(record)

	assert.Equal(t, model.ValidationFlags{}, record.Flags)
	assert.Empty(t, record.Confidence)
}
