// Package export serializes session records into formats consumable by
// downstream accounting systems. Every serializer is a pure function of the
// record list; the same records and format always produce the same bytes.
package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ledgerlens/ledgerlens/internal/currency"
	"github.com/ledgerlens/ledgerlens/internal/model"
)

// Format selects an export serializer.
type Format string

// Supported export formats.
const (
	FormatCSV       Format = "csv"
	FormatLedgerCSV Format = "ledger"
	FormatPipeCSV   Format = "pipe"
	FormatXLS       Format = "xls"
	FormatXLSX      Format = "xlsx"
	FormatJSON      Format = "json"
)

// Formats returns the supported format selectors.
func Formats() []Format {
	return []Format{FormatCSV, FormatLedgerCSV, FormatPipeCSV, FormatXLS, FormatXLSX, FormatJSON}
}

// Serialize renders the records in the given format.
func Serialize(records []model.Record, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return genericCSV(records), nil
	case FormatLedgerCSV:
		return ledgerCSV(records), nil
	case FormatPipeCSV:
		return pipeCSV(records), nil
	case FormatXLS:
		return htmlTableXLS(records), nil
	case FormatXLSX:
		return workbookXLSX(records)
	case FormatJSON:
		return prettyJSON(records)
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// Extension returns the file extension for a format, without the dot.
func Extension(format Format) string {
	switch format {
	case FormatLedgerCSV, FormatPipeCSV:
		return "csv"
	default:
		return string(format)
	}
}

// Filename derives a stable file name from the records and format. Single
// records are named after their document type and vendor; multi-record
// exports get a fixed stem so repeated exports overwrite rather than pile up.
func Filename(records []model.Record, format Format) string {
	stem := "records"
	if len(records) == 1 {
		docType := sanitizeToken(records[0].DocumentType)
		vendor := sanitizeToken(records[0].VendorName)
		if docType == "" {
			docType = "document"
		}
		if vendor == "" {
			vendor = "unknown-vendor"
		}
		stem = docType + "_" + vendor
	}
	return fmt.Sprintf("%s_%s.%s", stem, format, Extension(format))
}

// sanitizeToken lowercases a name and reduces it to hyphen-separated
// alphanumeric runs, so it is safe in any filesystem.
func sanitizeToken(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// prettyJSON exports one record as an object and several as an array.
func prettyJSON(records []model.Record) ([]byte, error) {
	if len(records) == 1 {
		return json.MarshalIndent(records[0], "", "  ")
	}
	return json.MarshalIndent(records, "", "  ")
}

// WithDisplayCurrency returns a copy of the records with all monetary
// amounts converted into the target currency for display. The input records
// are not modified; stored amounts stay in the document's own currency.
func WithDisplayCurrency(records []model.Record, targetCode string) []model.Record {
	code, _ := currency.ResolveCode(targetCode)

	out := make([]model.Record, len(records))
	for i, record := range records {
		converted := record
		converted.TotalAmount = currency.Convert(record.TotalAmount, record.CurrencySymbol, code)
		converted.LineItems = model.CloneLineItems(record.LineItems)
		for j := range converted.LineItems {
			converted.LineItems[j].UnitPrice = currency.Convert(converted.LineItems[j].UnitPrice, record.CurrencySymbol, code)
			converted.LineItems[j].TotalAmount = currency.Convert(converted.LineItems[j].TotalAmount, record.CurrencySymbol, code)
		}
		converted.CurrencySymbol = code
		out[i] = converted
	}
	return out
}
