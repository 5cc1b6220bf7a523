package extraction

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dardania/billscan/internal/models"
)

// flexString decodes a JSON value that may arrive as a string or a number.
// The oracle is asked for strings but does not always comply.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(v))
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

type rawLineItem struct {
	Description  flexString `json:"description"`
	CategoryCode flexString `json:"category_code"`
	Amount       flexString `json:"amount"`
	Date         flexString `json:"date"`
	Counterparty flexString `json:"counterparty"`
	VATCode      flexString `json:"vat_code"`
	VATRate      float64    `json:"vat_rate"`
	FiscalNumber flexString `json:"fiscal_number"`
	UnitNumber   flexString `json:"unit_number"`
	CertNumber   flexString `json:"cert_number"`
	Quantity     float64    `json:"quantity"`
	Unit         flexString `json:"unit"`
	Note         flexString `json:"note"`
	PageNumber   int        `json:"page_number"`
}

type rawResult struct {
	VendorName  flexString    `json:"vendor_name"`
	VendorTaxID flexString    `json:"vendor_tax_id"`
	BillNumber  flexString    `json:"bill_number"`
	BillDate    flexString    `json:"bill_date"`
	Subtotal    flexString    `json:"subtotal"`
	VAT8        flexString    `json:"vat_8"`
	VAT18       flexString    `json:"vat_18"`
	TotalVAT    flexString    `json:"total_vat"`
	TotalAmount flexString    `json:"total_amount"`
	Currency    flexString    `json:"currency"`
	LineItems   []rawLineItem `json:"line_items"`
}

// decodeResult validates and normalizes the oracle's raw JSON into a Result.
// Structural problems (non-parseable JSON) are errors; out-of-enumeration
// values are absorbed by defaults, never rejected.
func decodeResult(data []byte) (*Result, error) {
	var raw rawResult
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse oracle response: %w", err)
	}

	result := &Result{
		VendorName:  string(raw.VendorName),
		VendorTaxID: string(raw.VendorTaxID),
		BillNumber:  string(raw.BillNumber),
		BillDate:    normalizeDate(string(raw.BillDate)),
		Currency:    normalizeCurrency(string(raw.Currency)),
		RawResponse: data,
	}

	result.Subtotal = normalizeOptionalAmount(string(raw.Subtotal))
	result.VAT8 = normalizeOptionalAmount(string(raw.VAT8))
	result.VAT18 = normalizeOptionalAmount(string(raw.VAT18))
	result.TotalVAT = normalizeOptionalAmount(string(raw.TotalVAT))
	result.TotalAmount = normalizeOptionalAmount(string(raw.TotalAmount))

	for i, item := range raw.LineItems {
		amount, err := NormalizeAmount(string(item.Amount))
		if err != nil {
			return nil, fmt.Errorf("line item %d: %w", i, err)
		}

		normalized := LineItem{
			Description:  string(item.Description),
			CategoryCode: normalizeCategoryCode(string(item.CategoryCode)),
			Amount:       amount,
			Date:         normalizeDate(string(item.Date)),
			Counterparty: string(item.Counterparty),
			VATCode:      normalizeVATCode(string(item.VATCode)),
			VATRate:      item.VATRate,
			FiscalNumber: string(item.FiscalNumber),
			UnitNumber:   string(item.UnitNumber),
			CertNumber:   string(item.CertNumber),
			Quantity:     item.Quantity,
			Unit:         string(item.Unit),
			Note:         string(item.Note),
			PageNumber:   item.PageNumber,
		}

		if normalized.Quantity <= 0 {
			normalized.Quantity = 1
		}
		if normalized.Unit == "" {
			normalized.Unit = models.DefaultUnit
		}
		if normalized.PageNumber <= 0 {
			normalized.PageNumber = 1
		}

		result.LineItems = append(result.LineItems, normalized)
	}

	return result, nil
}

// normalizeCategoryCode substitutes the default for anything outside the
// closed ATK 665 set
func normalizeCategoryCode(code string) string {
	code = strings.TrimSpace(code)
	if models.IsValidCategoryCode(code) {
		return code
	}
	return models.DefaultCategoryCode
}

// normalizeVATCode substitutes the default for anything outside the VAT set
func normalizeVATCode(code string) string {
	code = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(code), "%"))
	if models.IsValidVATCode(code) {
		return code
	}
	return models.DefaultVATCode
}

// NormalizeAmount parses a monetary string that may use either '.' or ',' as
// the decimal separator and either as a thousands separator, and renders it
// canonically with two fractional digits. The disambiguation rule: a
// separator followed by more than two digits is a thousands separator, not a
// decimal point.
func NormalizeAmount(s string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			return r
		default:
			return -1
		}
	}, s)

	if cleaned == "" || cleaned == "-" {
		return "", fmt.Errorf("not a monetary amount: %q", s)
	}

	lastSep := strings.LastIndexAny(cleaned, ".,")
	var normalized string
	if lastSep == -1 {
		normalized = cleaned
	} else if len(cleaned)-lastSep-1 > 2 {
		// More than two digits after the last separator: all separators
		// are grouping marks.
		normalized = strings.Map(dropSeparators, cleaned)
	} else {
		intPart := strings.Map(dropSeparators, cleaned[:lastSep])
		normalized = intPart + "." + cleaned[lastSep+1:]
	}

	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return "", fmt.Errorf("not a monetary amount: %q", s)
	}

	return strconv.FormatFloat(value, 'f', 2, 64), nil
}

func dropSeparators(r rune) rune {
	if r == '.' || r == ',' {
		return -1
	}
	return r
}

// normalizeOptionalAmount returns the canonical form, or empty when the
// value is missing or unparseable. Document-level totals are advisory;
// only line-item amounts are load-bearing.
func normalizeOptionalAmount(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	normalized, err := NormalizeAmount(s)
	if err != nil {
		return ""
	}
	return normalized
}

var dateFormats = []string{
	"2006-01-02",
	"02/01/2006",
	"02.01.2006",
	"2006/01/02",
}

// normalizeDate renders a date in ISO form, or returns the input unchanged
// when no known format matches
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

// ParseDate parses a normalized or raw date string into a time
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func normalizeCurrency(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "EUR"
	}
	return s
}
