package delivery

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrMalformedMessage marks a payload that can never be processed. The
// delivery layer settles such messages instead of redelivering them.
var ErrMalformedMessage = errors.New("malformed job message")

// JobMessage is published when a bill upload completes. The worker trusts
// only the identifiers; everything else is re-read from the database.
type JobMessage struct {
	BillID     uuid.UUID
	CompanyID  uuid.UUID
	UserID     uuid.UUID
	BatchID    *uuid.UUID
	MIMEType   string
	UploadedAt time.Time

	// StoragePaths mirrors the bill's stored objects. Informational: the
	// database copy is authoritative.
	StoragePaths []string
}

// rawJobMessage tolerates both field spellings the upload surfaces have
// used, and both the multi-page array form and the older single-path form.
type rawJobMessage struct {
	BillID       string   `json:"bill_id"`
	SubmissionID string   `json:"submissionId"`
	CompanyID    string   `json:"company_id"`
	TenantID     string   `json:"tenantId"`
	UserID       string   `json:"user_id"`
	UserIDAlt    string   `json:"userId"`
	BatchID      string   `json:"batch_id"`
	BatchIDAlt   string   `json:"batchId"`
	StoragePath  string   `json:"storage_path"`
	PathAlt      string   `json:"storagePath"`
	StoragePaths []string `json:"storage_paths"`
	PathsAlt     []string `json:"storagePaths"`
	MIMEType     string   `json:"mime_type"`
	MIMETypeAlt  string   `json:"mimeType"`
	UploadedAt   string   `json:"uploaded_at"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// DecodeJobMessage parses a job payload. Any failure wraps
// ErrMalformedMessage so the caller can settle the message permanently.
func DecodeJobMessage(data []byte) (*JobMessage, error) {
	var raw rawJobMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	billField := firstNonEmpty(raw.BillID, raw.SubmissionID)
	billID, err := uuid.Parse(billField)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid bill id %q", ErrMalformedMessage, billField)
	}
	companyField := firstNonEmpty(raw.CompanyID, raw.TenantID)
	companyID, err := uuid.Parse(companyField)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid company id %q", ErrMalformedMessage, companyField)
	}

	msg := &JobMessage{
		BillID:    billID,
		CompanyID: companyID,
		MIMEType:  firstNonEmpty(raw.MIMEType, raw.MIMETypeAlt),
	}

	if userField := firstNonEmpty(raw.UserID, raw.UserIDAlt); userField != "" {
		if id, err := uuid.Parse(userField); err == nil {
			msg.UserID = id
		}
	}
	if batchField := firstNonEmpty(raw.BatchID, raw.BatchIDAlt); batchField != "" {
		if id, err := uuid.Parse(batchField); err == nil {
			msg.BatchID = &id
		}
	}

	msg.StoragePaths = raw.StoragePaths
	if len(msg.StoragePaths) == 0 {
		msg.StoragePaths = raw.PathsAlt
	}
	if len(msg.StoragePaths) == 0 {
		if p := firstNonEmpty(raw.StoragePath, raw.PathAlt); p != "" {
			msg.StoragePaths = []string{p}
		}
	}

	if raw.UploadedAt != "" {
		if t, err := time.Parse(time.RFC3339, raw.UploadedAt); err == nil {
			msg.UploadedAt = t
		}
	}
	return msg, nil
}
