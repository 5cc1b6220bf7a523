package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dardania/billscan/internal/workflow"
)

// Bill represents one uploaded receipt/invoice document, possibly multi-page.
// Extraction fields stay nil until the worker has processed it.
type Bill struct {
	ID        uuid.UUID  `json:"id"`
	CompanyID uuid.UUID  `json:"company_id"`
	UserID    uuid.UUID  `json:"user_id"`
	BatchID   *uuid.UUID `json:"batch_id,omitempty"`

	StoragePaths []string `json:"storage_paths"`
	MIMEType     string   `json:"mime_type"`

	VendorName  *string    `json:"vendor_name,omitempty"`
	VendorTaxID *string    `json:"vendor_tax_id,omitempty"`
	BillNumber  *string    `json:"bill_number,omitempty"`
	BillDate    *time.Time `json:"bill_date,omitempty"`
	Subtotal    *string    `json:"subtotal,omitempty"`
	VAT8        *string    `json:"vat_8,omitempty"`
	VAT18       *string    `json:"vat_18,omitempty"`
	TotalVAT    *string    `json:"total_vat,omitempty"`
	TotalAmount *string    `json:"total_amount,omitempty"`
	Currency    string     `json:"currency"`

	// RawExtraction keeps the oracle's full decoded response as JSON.
	RawExtraction []byte `json:"raw_extraction,omitempty"`

	// Embedding is the content fingerprint used for duplicate detection.
	// Nil until the embedding step completes; a bill may finish processed
	// without one if the embedding call failed.
	Embedding []float32 `json:"-"`

	Status          workflow.Status `json:"status"`
	ErrorMessage    *string         `json:"error_message,omitempty"`
	DuplicateOfID   *uuid.UUID      `json:"duplicate_of_id,omitempty"`
	SimilarityScore *float64        `json:"similarity_score,omitempty"`

	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
