package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAliasGetPrefersCanonicalName(t *testing.T) {
	row := Row{"price": "10", "precio": "99"}
	assert.Equal(t, "10", ProductFields.Get(row, "price"))
}

func TestAliasGetFallsBackToSpanishHeader(t *testing.T) {
	row := Row{"nombre": "Arroz", "precio": "3,20", "categoria": "Granos"}

	assert.Equal(t, "Arroz", ProductFields.Get(row, "name"))
	assert.Equal(t, "3,20", ProductFields.Get(row, "price"))
	assert.Equal(t, "Granos", ProductFields.Get(row, "category"))
}

func TestAliasGetSkipsEmptyValues(t *testing.T) {
	row := Row{"name": "", "nombre": "Azúcar"}
	assert.Equal(t, "Azúcar", ProductFields.Get(row, "name"))
}

func TestAliasGetMissingField(t *testing.T) {
	assert.Equal(t, "", StockFields.Get(Row{}, "sku"))
}

func TestParseNumberAcceptsCommaDecimal(t *testing.T) {
	n, err := ParseNumber("3,50")
	require.NoError(t, err)
	assert.Equal(t, 3.5, n)

	n, err = ParseNumber(" 10.25 ")
	require.NoError(t, err)
	assert.Equal(t, 10.25, n)
}

func TestParseNumberRejectsText(t *testing.T) {
	_, err := ParseNumber("gratis")
	assert.Error(t, err)
}

func TestParseNumberRejectsNonFiniteValues(t *testing.T) {
	for _, s := range []string{"NaN", "nan", "inf", "+Inf", "-Infinity"} {
		_, err := ParseNumber(s)
		assert.Error(t, err, "value %q", s)
	}
}

func TestParseIntAcceptsIntegralDecimals(t *testing.T) {
	n, err := ParseInt("3,0")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestParseIntRejectsFractions(t *testing.T) {
	_, err := ParseInt("3,5")
	assert.Error(t, err)
}

func TestParseBool(t *testing.T) {
	cases := []struct {
		in    string
		value bool
		ok    bool
	}{
		{"sí", true, true},
		{"si", true, true},
		{"yes", true, true},
		{"TRUE", true, true},
		{"no", false, true},
		{"0", false, true},
		{"quizás", false, false},
		{"", false, false},
	}

	for _, tc := range cases {
		value, ok := ParseBool(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.value, value, "input %q", tc.in)
	}
}
