package spreadsheet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, cells := range rows {
		for c, value := range cells {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestDecodeMapsHeadersToCells(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"Name", "SKU", "Price"},
		{"Coca Cola 500ml", "CC-500", "1.50"},
		{"Pan Integral", "PAN-01", "0.80"},
	})

	rows, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Coca Cola 500ml", rows[0]["name"])
	assert.Equal(t, "CC-500", rows[0]["sku"])
	assert.Equal(t, "1.50", rows[0]["price"])
	assert.Equal(t, "PAN-01", rows[1]["sku"])
}

func TestDecodeLowercasesAndTrimsHeaders(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"  NOMBRE ", "Precio"},
		{"Leche", "2,50"},
	})

	rows, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "Leche", rows[0]["nombre"])
	assert.Equal(t, "2,50", rows[0]["precio"])
}

func TestDecodeFillsMissingCellsWithEmptyString(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"sku", "stock", "unit"},
		{"AB-1"},
	})

	rows, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "AB-1", rows[0]["sku"])
	assert.Equal(t, "", rows[0]["stock"])
	assert.Equal(t, "", rows[0]["unit"])
}

func TestDecodeHeaderOnlyWorkbook(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"sku", "stock"},
	})

	rows, err := Decode(data)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("this is not a workbook"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestTemplateRoundTripsThroughDecode(t *testing.T) {
	f, err := Template("stock")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	rows, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestTemplateUnknownKind(t *testing.T) {
	_, err := Template("invoices")
	require.Error(t, err)
}
