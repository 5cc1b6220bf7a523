package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is the tenant boundary. Every bill, expense and audit entry is
// scoped to exactly one company; the worker only writes its usage counter.
type Company struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	TaxNumber        string    `json:"tax_number"`
	Email            string    `json:"email"`
	IsActive         bool      `json:"is_active"`
	MonthlyScanLimit int       `json:"monthly_scan_limit"`
	MonthlyScansUsed int       `json:"monthly_scans_used"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// User is a company-scoped account, read-only to the worker
type User struct {
	ID        uuid.UUID `json:"id"`
	CompanyID uuid.UUID `json:"company_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
