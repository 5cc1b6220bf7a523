package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dardania/billscan/internal/models"
)

// AuditRepository handles audit log database operations
type AuditRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB, logger *zap.Logger) *AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Create records one processing outcome. Runs inside the same transaction as
// the outcome it describes.
func (r *AuditRepository) Create(tx *sql.Tx, entry *models.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	query := `
		INSERT INTO audit_logs (id, company_id, user_id, action, resource_type, resource_id, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	var details interface{}
	if len(entry.Details) > 0 {
		details = entry.Details
	}
	_, err := tx.Exec(query,
		entry.ID, entry.CompanyID, entry.UserID,
		entry.Action, entry.ResourceType, entry.ResourceID, details,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}
