package models

import (
	"time"

	"github.com/google/uuid"
)

// Kosovo ATK form 665 category codes for expense classification.
const (
	CategoryFood        = "665-04"
	CategoryFuel        = "665-09"
	CategoryServices    = "665-11"
	CategoryOffice      = "665-12"
	CategoryUtilities   = "665-13"
	CategoryTransport   = "665-14"
	CategoryMaintenance = "665-15"
	CategoryOther       = "665-99"
)

// DefaultCategoryCode absorbs any category the oracle returns outside the
// closed set. Out-of-enumeration values are substituted, never rejected.
const DefaultCategoryCode = CategoryOther

// VAT codes: 8% reduced, 18% standard, 0% zero-rated, EX exempt.
const (
	VATReduced  = "8"
	VATStandard = "18"
	VATZero     = "0"
	VATExempt   = "EX"
)

// DefaultVATCode is substituted for out-of-enumeration VAT codes.
const DefaultVATCode = VATStandard

// DefaultUnit is substituted when the oracle omits a line item's unit.
const DefaultUnit = "pcs"

var validCategoryCodes = map[string]bool{
	CategoryFood:        true,
	CategoryFuel:        true,
	CategoryServices:    true,
	CategoryOffice:      true,
	CategoryUtilities:   true,
	CategoryTransport:   true,
	CategoryMaintenance: true,
	CategoryOther:       true,
}

var validVATCodes = map[string]bool{
	VATReduced:  true,
	VATStandard: true,
	VATZero:     true,
	VATExempt:   true,
}

// IsValidCategoryCode reports whether code belongs to the ATK 665 set
func IsValidCategoryCode(code string) bool {
	return validCategoryCodes[code]
}

// IsValidVATCode reports whether code belongs to the VAT code set
func IsValidVATCode(code string) bool {
	return validVATCodes[code]
}

// Expense is one extracted purchase record derived from a Bill. Created
// exclusively by the commit transaction; user edits happen elsewhere.
type Expense struct {
	ID        uuid.UUID  `json:"id"`
	CompanyID uuid.UUID  `json:"company_id"`
	UserID    uuid.UUID  `json:"user_id"`
	BillID    *uuid.UUID `json:"bill_id,omitempty"`
	BatchID   *uuid.UUID `json:"batch_id,omitempty"`

	Description  string     `json:"description"`
	CategoryCode string     `json:"category_code"`
	Amount       string     `json:"amount"` // canonical decimal, 2 fractional digits
	ExpenseDate  *time.Time `json:"expense_date,omitempty"`
	Counterparty string     `json:"counterparty"`
	VATCode      string     `json:"vat_code"`
	VATRate      *float64   `json:"vat_rate,omitempty"`

	// Jurisdiction identifiers (fiscal receipt number, business unit, cert).
	FiscalNumber string `json:"fiscal_number,omitempty"`
	UnitNumber   string `json:"unit_number,omitempty"`
	CertNumber   string `json:"cert_number,omitempty"`

	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	Note       string  `json:"note,omitempty"`
	PageNumber int     `json:"page_number"`
	Synced     bool    `json:"synced"`

	CreatedAt time.Time `json:"created_at"`
}
