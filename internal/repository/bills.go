package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dardania/billscan/internal/dedup"
	"github.com/dardania/billscan/internal/models"
	"github.com/dardania/billscan/internal/workflow"
)

// ErrBillNotFound is returned when no bill matches the id within the tenant
var ErrBillNotFound = errors.New("bill not found")

// BillRepository handles bill database operations
type BillRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *sql.DB, logger *zap.Logger) *BillRepository {
	return &BillRepository{
		db:     db,
		logger: logger,
	}
}

const billColumns = `
	id, company_id, user_id, batch_id, storage_paths, mime_type,
	vendor_name, vendor_tax_id, bill_number, bill_date,
	subtotal, vat_8, vat_18, total_vat, total_amount, currency,
	raw_extraction, embedding::text, status, error_message,
	duplicate_of_id, similarity_score, processed_at, created_at, updated_at`

// GetByID fetches one bill scoped to its company. The company filter is the
// tenant isolation boundary; a bill of another company is not found.
func (r *BillRepository) GetByID(ctx context.Context, id, companyID uuid.UUID) (*models.Bill, error) {
	query := `SELECT` + billColumns + ` FROM bills WHERE id = $1 AND company_id = $2`

	row := r.db.QueryRowContext(ctx, query, id, companyID)
	bill, err := scanBill(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrBillNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch bill: %w", err)
	}
	return bill, nil
}

// SetStatus moves a bill to the given status outside any commit transaction.
// Used for the processing mark and for error outcomes.
func (r *BillRepository) SetStatus(ctx context.Context, id uuid.UUID, status workflow.Status) error {
	query := `UPDATE bills SET status = $2, updated_at = now() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status.String()); err != nil {
		return fmt.Errorf("failed to set bill status: %w", err)
	}
	return nil
}

// SetError records a terminal error outcome with its human-readable message
func (r *BillRepository) SetError(tx *sql.Tx, id uuid.UUID, message string) error {
	query := `
		UPDATE bills
		SET status = $2, error_message = $3, processed_at = now(), updated_at = now()
		WHERE id = $1
	`
	_, err := tx.Exec(query, id, workflow.StatusError.String(), message)
	if err != nil {
		return fmt.Errorf("failed to mark bill error: %w", err)
	}
	return nil
}

// CompleteProcessed writes the extracted document fields, the fingerprint
// (possibly nil) and the processed status in one statement. Runs inside the
// commit transaction.
func (r *BillRepository) CompleteProcessed(tx *sql.Tx, id uuid.UUID, result ExtractedFields, embedding []float32) error {
	query := `
		UPDATE bills
		SET vendor_name   = $2,
		    vendor_tax_id = $3,
		    bill_number   = $4,
		    bill_date     = $5,
		    subtotal      = NULLIF($6, '')::numeric,
		    vat_8         = NULLIF($7, '')::numeric,
		    vat_18        = NULLIF($8, '')::numeric,
		    total_vat     = NULLIF($9, '')::numeric,
		    total_amount  = NULLIF($10, '')::numeric,
		    currency      = $11,
		    raw_extraction = $12,
		    embedding     = CASE WHEN $13 = '' THEN NULL ELSE $13::vector END,
		    status        = $14,
		    processed_at  = now(),
		    updated_at    = now()
		WHERE id = $1
	`

	var vecLiteral string
	if len(embedding) > 0 {
		vecLiteral = dedup.EncodeVector(embedding)
	}

	_, err := tx.Exec(query, id,
		nullIfEmpty(result.VendorName),
		nullIfEmpty(result.VendorTaxID),
		nullIfEmpty(result.BillNumber),
		result.BillDate,
		result.Subtotal,
		result.VAT8,
		result.VAT18,
		result.TotalVAT,
		result.TotalAmount,
		result.Currency,
		result.RawExtraction,
		vecLiteral,
		workflow.StatusProcessed.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to complete bill: %w", err)
	}
	return nil
}

// CompleteDuplicate records the duplicate outcome: fingerprint stored,
// linkage to the earlier bill, similarity score. No line items are written.
func (r *BillRepository) CompleteDuplicate(tx *sql.Tx, id uuid.UUID, embedding []float32, duplicateOf uuid.UUID, similarity float64) error {
	query := `
		UPDATE bills
		SET embedding        = $2::vector,
		    status           = $3,
		    duplicate_of_id  = $4,
		    similarity_score = $5,
		    processed_at     = now(),
		    updated_at       = now()
		WHERE id = $1
	`
	_, err := tx.Exec(query, id,
		dedup.EncodeVector(embedding),
		workflow.StatusDuplicate.String(),
		duplicateOf,
		similarity,
	)
	if err != nil {
		return fmt.Errorf("failed to mark bill duplicate: %w", err)
	}
	return nil
}

// ExtractedFields carries the document-level values written on commit.
// Monetary fields are canonical decimal strings, empty when absent.
type ExtractedFields struct {
	VendorName    string
	VendorTaxID   string
	BillNumber    string
	BillDate      *time.Time
	Subtotal      string
	VAT8          string
	VAT18         string
	TotalVAT      string
	TotalAmount   string
	Currency      string
	RawExtraction []byte
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBill(row rowScanner) (*models.Bill, error) {
	var (
		bill            models.Bill
		batchID         uuid.NullUUID
		storagePaths    []byte
		mimeType        sql.NullString
		vendorName      sql.NullString
		vendorTaxID     sql.NullString
		billNumber      sql.NullString
		billDate        sql.NullTime
		subtotal        sql.NullString
		vat8            sql.NullString
		vat18           sql.NullString
		totalVAT        sql.NullString
		totalAmount     sql.NullString
		rawExtraction   []byte
		embeddingText   sql.NullString
		status          string
		errorMessage    sql.NullString
		duplicateOfID   uuid.NullUUID
		similarityScore sql.NullFloat64
		processedAt     sql.NullTime
	)

	err := row.Scan(
		&bill.ID, &bill.CompanyID, &bill.UserID, &batchID, &storagePaths, &mimeType,
		&vendorName, &vendorTaxID, &billNumber, &billDate,
		&subtotal, &vat8, &vat18, &totalVAT, &totalAmount, &bill.Currency,
		&rawExtraction, &embeddingText, &status, &errorMessage,
		&duplicateOfID, &similarityScore, &processedAt, &bill.CreatedAt, &bill.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(storagePaths) > 0 {
		if err := json.Unmarshal(storagePaths, &bill.StoragePaths); err != nil {
			return nil, fmt.Errorf("failed to decode storage paths: %w", err)
		}
	}
	if batchID.Valid {
		id := batchID.UUID
		bill.BatchID = &id
	}
	if mimeType.Valid {
		bill.MIMEType = mimeType.String
	}
	bill.VendorName = nullableString(vendorName)
	bill.VendorTaxID = nullableString(vendorTaxID)
	bill.BillNumber = nullableString(billNumber)
	bill.Subtotal = nullableString(subtotal)
	bill.VAT8 = nullableString(vat8)
	bill.VAT18 = nullableString(vat18)
	bill.TotalVAT = nullableString(totalVAT)
	bill.TotalAmount = nullableString(totalAmount)
	bill.ErrorMessage = nullableString(errorMessage)
	if billDate.Valid {
		t := billDate.Time
		bill.BillDate = &t
	}
	if processedAt.Valid {
		t := processedAt.Time
		bill.ProcessedAt = &t
	}
	if duplicateOfID.Valid {
		id := duplicateOfID.UUID
		bill.DuplicateOfID = &id
	}
	if similarityScore.Valid {
		v := similarityScore.Float64
		bill.SimilarityScore = &v
	}
	bill.RawExtraction = rawExtraction
	bill.Status = workflow.Status(status)

	if embeddingText.Valid && embeddingText.String != "" {
		vec, err := dedup.DecodeVector(embeddingText.String)
		if err != nil {
			return nil, fmt.Errorf("failed to decode embedding: %w", err)
		}
		bill.Embedding = vec
	}

	return &bill, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
