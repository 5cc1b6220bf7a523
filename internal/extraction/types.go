package extraction

import (
	"context"
	"errors"
)

var (
	// ErrNothingExtracted means the oracle answered but produced zero line
	// items. Treated as an extraction failure by the caller, not success.
	ErrNothingExtracted = errors.New("no line items extracted")

	// ErrNoPages is returned when Extract is called without any page
	ErrNoPages = errors.New("at least one page is required")
)

// Page is one image handed to the oracle. Order is significant: the first
// page is page 1 in the resulting line items.
type Page struct {
	Data     []byte
	MIMEType string
}

// LineItem is one purchase record as returned by the oracle, after
// normalization. Amount is a canonical decimal string with two fractional
// digits.
type LineItem struct {
	Description  string  `json:"description"`
	CategoryCode string  `json:"category_code"`
	Amount       string  `json:"amount"`
	Date         string  `json:"date,omitempty"` // YYYY-MM-DD once normalized
	Counterparty string  `json:"counterparty,omitempty"`
	VATCode      string  `json:"vat_code"`
	VATRate      float64 `json:"vat_rate,omitempty"`
	FiscalNumber string  `json:"fiscal_number,omitempty"`
	UnitNumber   string  `json:"unit_number,omitempty"`
	CertNumber   string  `json:"cert_number,omitempty"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	Note         string  `json:"note,omitempty"`
	PageNumber   int     `json:"page_number"`
}

// Result is the oracle's structured output for one document
type Result struct {
	VendorName   string     `json:"vendor_name"`
	VendorTaxID  string     `json:"vendor_tax_id,omitempty"`
	BillNumber   string     `json:"bill_number,omitempty"`
	BillDate     string     `json:"bill_date,omitempty"` // YYYY-MM-DD once normalized
	Subtotal     string     `json:"subtotal,omitempty"`
	VAT8         string     `json:"vat_8,omitempty"`
	VAT18        string     `json:"vat_18,omitempty"`
	TotalVAT     string     `json:"total_vat,omitempty"`
	TotalAmount  string     `json:"total_amount"`
	Currency     string     `json:"currency"`
	LineItems    []LineItem `json:"line_items"`
	RawResponse  []byte     `json:"-"`
}

// Extractor turns an ordered list of page images into structured bill data.
// Implementations do not retry; retry policy belongs to the caller.
type Extractor interface {
	Extract(ctx context.Context, pages []Page) (*Result, error)
}
