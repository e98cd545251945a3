package export

import (
	"fmt"

	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Records"

// workbookXLSX renders the records as a real XLSX workbook with the same
// shape as the generic CSV: one row per line item, parent fields repeated.
func workbookXLSX(records []model.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("removing default sheet: %w", err)
	}

	for col, h := range genericHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}

	row := 2
	for _, record := range records {
		items := record.LineItems
		if len(items) == 0 {
			items = []model.LineItem{{}}
		}
		for _, item := range items {
			values := []any{
				record.DocumentType,
				record.VendorName,
				record.InvoiceDate,
				record.CurrencySymbol,
				record.TotalAmount,
				item.SKU,
				item.Description,
				item.GLCategory,
				item.Quantity,
				item.UnitPrice,
				item.TotalAmount,
			}
			for col, value := range values {
				cell, err := excelize.CoordinatesToCellName(col+1, row)
				if err != nil {
					return nil, err
				}
				if err := f.SetCellValue(sheetName, cell, value); err != nil {
					return nil, err
				}
			}
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
