package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/ledgerlens/ledgerlens/internal/model"
)

// utf8BOM makes spreadsheet tools decode non-ASCII vendor and description
// text correctly.
const utf8BOM = "\uFEFF"

var genericHeader = []string{
	"Document Type", "Vendor", "Invoice Date", "Currency", "Document Total",
	"SKU", "Description", "Category", "Quantity", "Unit Price", "Line Total",
}

// genericCSV emits one row per line item, each carrying its parent record's
// header fields. A record with no line items still gets one row so it cannot
// vanish from an export.
func genericCSV(records []model.Record) []byte {
	var b strings.Builder
	b.WriteString(utf8BOM)
	writeRow(&b, ',', quoteAll(genericHeader))

	for _, record := range records {
		parent := []string{
			quote(record.DocumentType),
			quote(record.VendorName),
			quote(record.InvoiceDate),
			quote(record.CurrencySymbol),
			money(record.TotalAmount),
		}

		if len(record.LineItems) == 0 {
			writeRow(&b, ',', append(parent, quote(""), quote(""), quote(""), "", "", ""))
			continue
		}

		for _, item := range record.LineItems {
			row := append(append([]string{}, parent...),
				quote(item.SKU),
				quote(item.Description),
				quote(item.GLCategory),
				number(item.Quantity),
				money(item.UnitPrice),
				money(item.TotalAmount),
			)
			writeRow(&b, ',', row)
		}
	}

	return []byte(b.String())
}

var ledgerHeader = []string{"Date", "Vendor", "Account", "Description", "Amount"}

// ledgerCSV is the ledger-import dialect: comma-delimited, M/D/YYYY dates,
// one row per line item with no parent document total.
func ledgerCSV(records []model.Record) []byte {
	var b strings.Builder
	b.WriteString(utf8BOM)
	writeRow(&b, ',', quoteAll(ledgerHeader))

	for _, record := range records {
		date := ledgerDate(record.InvoiceDate)
		for _, item := range record.LineItems {
			writeRow(&b, ',', []string{
				quote(date),
				quote(record.VendorName),
				quote(item.GLCategory),
				quote(item.Description),
				money(item.TotalAmount),
			})
		}
	}

	return []byte(b.String())
}

var pipeHeader = []string{"Vendor", "Date", "DocType", "Description", "Qty", "UnitPrice", "LineTotal"}

// pipeCSV is the pipe-delimited dialect. Free text is still quoted so a pipe
// inside a description cannot shift columns.
func pipeCSV(records []model.Record) []byte {
	var b strings.Builder
	b.WriteString(utf8BOM)
	writeRow(&b, '|', quoteAll(pipeHeader))

	for _, record := range records {
		for _, item := range record.LineItems {
			writeRow(&b, '|', []string{
				quote(record.VendorName),
				quote(record.InvoiceDate),
				quote(record.DocumentType),
				quote(item.Description),
				number(item.Quantity),
				money(item.UnitPrice),
				money(item.TotalAmount),
			})
		}
	}

	return []byte(b.String())
}

func writeRow(b *strings.Builder, delimiter rune, fields []string) {
	for i, field := range fields {
		if i > 0 {
			b.WriteRune(delimiter)
		}
		b.WriteString(field)
	}
	b.WriteString("\r\n")
}

// quote wraps a free-text field, doubling internal quotes. Every free-text
// field is quoted, even when it contains no delimiter.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteAll(fields []string) []string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = quote(f)
	}
	return quoted
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ledgerDate reformats an ISO date as M/D/YYYY, without zero padding.
// Unparsable dates pass through verbatim rather than being dropped.
func ledgerDate(isoDate string) string {
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return isoDate
	}
	return strconv.Itoa(int(t.Month())) + "/" + strconv.Itoa(t.Day()) + "/" + strconv.Itoa(t.Year())
}
