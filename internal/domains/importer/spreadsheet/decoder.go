package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrDecode marks a workbook that cannot be parsed. Decode failures are
// job-fatal; everything past decoding is handled per row.
var ErrDecode = errors.New("cannot decode workbook")

// Row maps a lowercased header name to the trimmed cell value. Cells missing
// from a row are present with an empty string.
type Row map[string]string

// Decode parses the first sheet of an xlsx workbook. Row 1 is the header,
// every following row is data. Returns data rows in sheet order.
func Decode(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrDecode)
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if len(cells) == 0 {
		return nil, nil
	}

	header := make([]string, len(cells[0]))
	for i, name := range cells[0] {
		header[i] = strings.ToLower(strings.TrimSpace(name))
	}

	rows := make([]Row, 0, len(cells)-1)
	for _, record := range cells[1:] {
		row := make(Row, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			value := ""
			// excelize trims trailing empty cells from each record
			if i < len(record) {
				value = strings.TrimSpace(record[i])
			}
			row[name] = value
		}
		rows = append(rows, row)
	}

	return rows, nil
}
