package export

import (
	"html"
	"strings"

	"github.com/ledgerlens/ledgerlens/internal/model"
)

// htmlTableXLS renders the records as an HTML table, which spreadsheet tools
// open as a legacy .xls workbook. Cell text is HTML-escaped.
func htmlTableXLS(records []model.Record) []byte {
	var b strings.Builder
	b.WriteString("<html><head><meta charset=\"UTF-8\"></head><body><table border=\"1\">\n")

	b.WriteString("<tr>")
	for _, h := range genericHeader {
		b.WriteString("<th>")
		b.WriteString(html.EscapeString(h))
		b.WriteString("</th>")
	}
	b.WriteString("</tr>\n")

	for _, record := range records {
		items := record.LineItems
		if len(items) == 0 {
			items = []model.LineItem{{}}
		}
		for _, item := range items {
			cells := []string{
				record.DocumentType,
				record.VendorName,
				record.InvoiceDate,
				record.CurrencySymbol,
				money(record.TotalAmount),
				item.SKU,
				item.Description,
				item.GLCategory,
				number(item.Quantity),
				money(item.UnitPrice),
				money(item.TotalAmount),
			}
			b.WriteString("<tr>")
			for _, cell := range cells {
				b.WriteString("<td>")
				b.WriteString(html.EscapeString(cell))
				b.WriteString("</td>")
			}
			b.WriteString("</tr>\n")
		}
	}

	b.WriteString("</table></body></html>\n")
	return []byte(b.String())
}
