package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CompanyRepository handles company database operations
type CompanyRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *sql.DB, logger *zap.Logger) *CompanyRepository {
	return &CompanyRepository{
		db:     db,
		logger: logger,
	}
}

// IncrementScansUsed bumps the monthly usage counter. Runs inside the commit
// transaction for processed bills; duplicates and errors do not consume quota.
func (r *CompanyRepository) IncrementScansUsed(tx *sql.Tx, companyID uuid.UUID) error {
	query := `
		UPDATE companies
		SET monthly_scans_used = monthly_scans_used + 1, updated_at = now()
		WHERE id = $1
	`
	res, err := tx.Exec(query, companyID)
	if err != nil {
		return fmt.Errorf("failed to increment scan usage: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check scan usage update: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("company not found: %s", companyID)
	}
	return nil
}
