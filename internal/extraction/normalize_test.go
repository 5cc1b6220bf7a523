package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dardania/billscan/internal/models"
)

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain integer", "1234", "1234.00"},
		{"dot decimal", "12.20", "12.20"},
		{"comma decimal", "12,20", "12.20"},
		{"european grouping", "1.234,56", "1234.56"},
		{"us grouping", "1,234.56", "1234.56"},
		{"grouping only", "1.234", "1234.00"},
		{"currency symbol", "€ 45,90", "45.90"},
		{"single fractional digit", "7,5", "7.50"},
		{"negative", "-10.00", "-10.00"},
		{"large european", "12.345.678,90", "12345678.90"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAmount(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeAmountRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "n/a", "free", "-", "..,,"} {
		_, err := NormalizeAmount(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestDecodeResultAppliesLineItemDefaults(t *testing.T) {
	data := []byte(`{
		"vendor_name": "Benzinë Prishtina",
		"total_amount": "45,90",
		"line_items": [
			{"description": "Diesel", "amount": "45,90", "category_code": "not-a-real-code", "vat_code": "7"}
		]
	}`)

	result, err := decodeResult(data)
	require.NoError(t, err)
	require.Len(t, result.LineItems, 1)

	item := result.LineItems[0]
	assert.Equal(t, models.DefaultCategoryCode, item.CategoryCode)
	assert.Equal(t, models.DefaultVATCode, item.VATCode)
	assert.Equal(t, "45.90", item.Amount)
	assert.Equal(t, 1.0, item.Quantity)
	assert.Equal(t, models.DefaultUnit, item.Unit)
	assert.Equal(t, 1, item.PageNumber)
	assert.Equal(t, "EUR", result.Currency)
	assert.Equal(t, "45.90", result.TotalAmount)
}

func TestDecodeResultKeepsValidCodes(t *testing.T) {
	data := []byte(`{
		"vendor_name": "Restorant Te Lala",
		"total_amount": 12.5,
		"line_items": [
			{"description": "Drekë", "amount": 12.5, "category_code": "665-04", "vat_code": "8%", "quantity": 2, "unit": "porcion", "page_number": 3}
		]
	}`)

	result, err := decodeResult(data)
	require.NoError(t, err)
	require.Len(t, result.LineItems, 1)

	item := result.LineItems[0]
	assert.Equal(t, models.CategoryFood, item.CategoryCode)
	assert.Equal(t, models.VATReduced, item.VATCode)
	assert.Equal(t, "12.50", item.Amount)
	assert.Equal(t, 2.0, item.Quantity)
	assert.Equal(t, "porcion", item.Unit)
	assert.Equal(t, 3, item.PageNumber)
}

func TestDecodeResultNumericFields(t *testing.T) {
	// The oracle sometimes sends numbers where strings were requested
	data := []byte(`{
		"vendor_name": "Viva Fresh",
		"bill_number": 100234,
		"total_amount": 9.99,
		"line_items": [{"description": "Bukë", "amount": 0.5}]
	}`)

	result, err := decodeResult(data)
	require.NoError(t, err)
	assert.Equal(t, "100234", result.BillNumber)
	assert.Equal(t, "9.99", result.TotalAmount)
	assert.Equal(t, "0.50", result.LineItems[0].Amount)
}

func TestDecodeResultBadJSON(t *testing.T) {
	_, err := decodeResult([]byte(`{"vendor_name": `))
	assert.Error(t, err)
}

func TestDecodeResultUnparseableItemAmount(t *testing.T) {
	data := []byte(`{
		"vendor_name": "X",
		"line_items": [{"description": "mystery", "amount": "gratis"}]
	}`)
	_, err := decodeResult(data)
	assert.Error(t, err)
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "2025-03-14", normalizeDate("14/03/2025"))
	assert.Equal(t, "2025-03-14", normalizeDate("14.03.2025"))
	assert.Equal(t, "2025-03-14", normalizeDate("2025-03-14"))
	assert.Equal(t, "", normalizeDate("  "))
	// Unknown formats pass through untouched
	assert.Equal(t, "March 14th", normalizeDate("March 14th"))
}

func TestParseDate(t *testing.T) {
	ts, ok := ParseDate("2025-03-14")
	require.True(t, ok)
	assert.Equal(t, 2025, ts.Year())

	_, ok = ParseDate("March 14th")
	assert.False(t, ok)
}

func TestNormalizeOptionalAmount(t *testing.T) {
	assert.Equal(t, "", normalizeOptionalAmount(""))
	assert.Equal(t, "", normalizeOptionalAmount("n/a"))
	assert.Equal(t, "100.00", normalizeOptionalAmount("100"))
}
