package spreadsheet

import (
	"math"
	"strconv"
	"strings"
)

// AliasTable maps a logical field name to the column headers that may carry
// it. The uploaded templates circulate in both English and Spanish, so each
// field accepts several aliases. Headers are matched lowercased; aliases are
// therefore listed lowercase, canonical name first.
type AliasTable map[string][]string

// Get resolves a logical field against a row, trying each alias in order.
func (t AliasTable) Get(row Row, field string) string {
	for _, alias := range t[field] {
		if v, ok := row[alias]; ok && v != "" {
			return v
		}
	}
	return ""
}

var (
	// ProductFields covers the products template columns.
	ProductFields = AliasTable{
		"name":        {"name", "nombre"},
		"sku":         {"sku", "codigo", "código"},
		"price":       {"price", "precio"},
		"cost_price":  {"cost_price", "costo", "precio_costo"},
		"stock":       {"stock", "cantidad", "existencias"},
		"unit":        {"unit", "unidad"},
		"category":    {"category", "categoria", "categoría"},
		"description": {"description", "descripcion", "descripción"},
		"barcode":     {"barcode", "codigo_barras", "código_barras"},
		"alert_stock": {"alert_stock", "stock_minimo", "stock_mínimo"},
		"weight_unit": {"weight_unit", "unidad_peso"},
		"is_active":   {"is_active", "activo"},
	}

	// StockFields covers the stock-update template columns.
	StockFields = AliasTable{
		"sku":   {"sku", "codigo", "código"},
		"stock": {"stock", "cantidad", "existencias"},
	}

	// UserFields covers the users template columns.
	UserFields = AliasTable{
		"email":     {"email", "correo"},
		"full_name": {"full_name", "nombre_completo", "nombre"},
		"role":      {"role", "rol"},
	}
)

// ParseNumber parses a numeric cell, accepting comma as decimal separator.
// Only finite values are valid cell contents; "NaN" and "inf" parse under
// strconv but are rejected here.
func ParseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}

// ParseInt parses an integer cell; values like "3,0" are accepted as 3.
func ParseInt(s string) (int, error) {
	n, err := ParseNumber(s)
	if err != nil {
		return 0, err
	}
	if n != float64(int(n)) {
		return 0, strconv.ErrSyntax
	}
	return int(n), nil
}

// ParseBool parses a boolean-ish cell in either language. Unrecognized values
// report ok=false so callers can keep their default.
func ParseBool(s string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "si", "sí":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}
