package repository

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dardania/billscan/internal/models"
)

// ExpenseRepository handles expense line item database operations
type ExpenseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *sql.DB, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

// InsertBatch writes all line items of a bill in one multi-row insert.
// Runs inside the commit transaction so the bill never becomes visible as
// processed with a partial item set.
func (r *ExpenseRepository) InsertBatch(tx *sql.Tx, expenses []models.Expense) error {
	if len(expenses) == 0 {
		return nil
	}

	builder := sq.Insert("expenses").
		Columns("id", "company_id", "user_id", "bill_id", "batch_id",
			"description", "category_code", "amount", "expense_date",
			"counterparty", "vat_code", "vat_rate",
			"fiscal_number", "unit_number", "cert_number",
			"quantity", "unit", "note", "page_number", "synced").
		PlaceholderFormat(sq.Dollar)

	for _, e := range expenses {
		id := e.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		builder = builder.Values(
			id, e.CompanyID, e.UserID, e.BillID, e.BatchID,
			e.Description, e.CategoryCode,
			sq.Expr("?::numeric", e.Amount),
			e.ExpenseDate,
			nullIfEmpty(e.Counterparty), e.VATCode, e.VATRate,
			nullIfEmpty(e.FiscalNumber), nullIfEmpty(e.UnitNumber), nullIfEmpty(e.CertNumber),
			e.Quantity, e.Unit, nullIfEmpty(e.Note), e.PageNumber, e.Synced,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build expense insert: %w", err)
	}
	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert expenses: %w", err)
	}
	return nil
}
