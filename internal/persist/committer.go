package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/dardania/billscan/internal/dedup"
	"github.com/dardania/billscan/internal/models"
	"github.com/dardania/billscan/internal/repository"
	"github.com/dardania/billscan/pkg/database"
)

// Committer writes processing outcomes. Every outcome is a single
// transaction so a bill is never visible half-finished: either the status,
// line items, counters and audit entry all land, or none do.
type Committer struct {
	db        *database.DB
	bills     *repository.BillRepository
	expenses  *repository.ExpenseRepository
	companies *repository.CompanyRepository
	audits    *repository.AuditRepository
	logger    *zap.Logger
}

// NewCommitter creates a committer over the given repositories
func NewCommitter(
	db *database.DB,
	bills *repository.BillRepository,
	expenses *repository.ExpenseRepository,
	companies *repository.CompanyRepository,
	audits *repository.AuditRepository,
	logger *zap.Logger,
) *Committer {
	return &Committer{
		db:        db,
		bills:     bills,
		expenses:  expenses,
		companies: companies,
		audits:    audits,
		logger:    logger,
	}
}

// CommitProcessed finalizes a successfully extracted bill: line items
// inserted, document fields and fingerprint written, monthly usage counter
// incremented, audit entry recorded. Embedding may be nil when the
// fingerprint step failed; the bill still completes as processed.
func (c *Committer) CommitProcessed(ctx context.Context, bill *models.Bill, fields repository.ExtractedFields, embedding []float32, items []models.Expense) error {
	err := c.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := c.expenses.InsertBatch(tx, items); err != nil {
			return err
		}
		if err := c.bills.CompleteProcessed(tx, bill.ID, fields, embedding); err != nil {
			return err
		}
		if err := c.companies.IncrementScansUsed(tx, bill.CompanyID); err != nil {
			return err
		}
		details, _ := json.Marshal(map[string]interface{}{
			"vendor":     fields.VendorName,
			"total":      fields.TotalAmount,
			"item_count": len(items),
		})
		return c.audits.Create(tx, &models.AuditLog{
			CompanyID:    bill.CompanyID,
			UserID:       &bill.UserID,
			Action:       models.AuditActionBillProcessed,
			ResourceType: "bill",
			ResourceID:   &bill.ID,
			Details:      details,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to commit processed bill: %w", err)
	}

	c.logger.Info("Bill processed",
		zap.String("bill_id", bill.ID.String()),
		zap.Int("items", len(items)))
	return nil
}

// CommitDuplicate finalizes a bill flagged as a duplicate of an earlier one.
// The fingerprint and the linkage are stored; no line items are created and
// the usage counter is not touched.
func (c *Committer) CommitDuplicate(ctx context.Context, bill *models.Bill, embedding []float32, match dedup.Match) error {
	err := c.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := c.bills.CompleteDuplicate(tx, bill.ID, embedding, match.BillID, match.Similarity); err != nil {
			return err
		}
		details, _ := json.Marshal(map[string]interface{}{
			"duplicate_of": match.BillID.String(),
			"similarity":   match.Similarity,
		})
		return c.audits.Create(tx, &models.AuditLog{
			CompanyID:    bill.CompanyID,
			UserID:       &bill.UserID,
			Action:       models.AuditActionBillDuplicate,
			ResourceType: "bill",
			ResourceID:   &bill.ID,
			Details:      details,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to commit duplicate bill: %w", err)
	}

	c.logger.Info("Bill marked duplicate",
		zap.String("bill_id", bill.ID.String()),
		zap.String("duplicate_of", match.BillID.String()),
		zap.Float64("similarity", match.Similarity))
	return nil
}

// CommitError finalizes a bill whose processing failed permanently
func (c *Committer) CommitError(ctx context.Context, bill *models.Bill, message string) error {
	err := c.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := c.bills.SetError(tx, bill.ID, message); err != nil {
			return err
		}
		details, _ := json.Marshal(map[string]string{"error": message})
		return c.audits.Create(tx, &models.AuditLog{
			CompanyID:    bill.CompanyID,
			UserID:       &bill.UserID,
			Action:       models.AuditActionBillError,
			ResourceType: "bill",
			ResourceID:   &bill.ID,
			Details:      details,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to commit bill error: %w", err)
	}

	c.logger.Warn("Bill failed",
		zap.String("bill_id", bill.ID.String()),
		zap.String("reason", message))
	return nil
}
