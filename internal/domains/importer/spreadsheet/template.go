package spreadsheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"pos-backend/internal/domains/importer/model"
)

// TemplateHeaders are the canonical column headers per import kind. Row 1 of
// an uploaded workbook is expected to carry these (or a known alias).
var TemplateHeaders = map[model.ImportKind][]string{
	model.KindProducts: {
		"name", "sku", "price", "cost_price", "stock", "unit",
		"category", "description", "barcode", "alert_stock",
		"weight_unit", "is_active",
	},
	model.KindStock: {"sku", "stock"},
	model.KindUsers: {"email", "full_name", "role"},
}

// Template builds the upload template workbook for an import kind: one sheet
// whose first row holds the column headers.
func Template(kind model.ImportKind) (*excelize.File, error) {
	headers, ok := TemplateHeaders[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported import kind %q", kind)
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, name := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, fmt.Errorf("failed to set header cell: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		f.SetCellStyle(sheet, "A1", last, headerStyle)
	}

	return f, nil
}
