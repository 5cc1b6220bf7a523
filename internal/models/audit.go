package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded by the worker.
const (
	AuditActionBillProcessed = "bill_processed"
	AuditActionBillDuplicate = "bill_duplicate"
	AuditActionBillError     = "bill_error"
)

// AuditLog records one processing outcome for a bill
type AuditLog struct {
	ID           uuid.UUID  `json:"id"`
	CompanyID    uuid.UUID  `json:"company_id"`
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	Action       string     `json:"action"`
	ResourceType string     `json:"resource_type"`
	ResourceID   *uuid.UUID `json:"resource_id,omitempty"`
	Details      []byte     `json:"details,omitempty"` // JSON blob
	CreatedAt    time.Time  `json:"created_at"`
}
