package dedup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dardania/billscan/internal/workflow"
)

// Match is the nearest stored fingerprint within the tenant
type Match struct {
	BillID     uuid.UUID
	Similarity float64
}

// Detector finds the nearest previously stored fingerprint within a tenant.
// A nil match means no candidate exists and the submission is unique.
type Detector interface {
	FindNearest(ctx context.Context, companyID uuid.UUID, vec []float32, excludeID uuid.UUID) (*Match, error)
}

// Threshold classifies a similarity score against the duplicate cutoff
type Threshold float64

// IsDuplicate reports whether the similarity meets or exceeds the cutoff
func (t Threshold) IsDuplicate(similarity float64) bool {
	return similarity >= float64(t)
}

// PGDetector implements Detector against the pgvector HNSW index on bills
type PGDetector struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPGDetector creates a detector over the given database
func NewPGDetector(db *sql.DB, logger *zap.Logger) *PGDetector {
	return &PGDetector{
		db:     db,
		logger: logger,
	}
}

// FindNearest returns the single closest processed bill of the company that
// has a stored fingerprint, excluding the candidate itself. Ties on distance
// resolve to the earliest-inserted bill. Similarity is 1 - cosine distance.
func (d *PGDetector) FindNearest(ctx context.Context, companyID uuid.UUID, vec []float32, excludeID uuid.UUID) (*Match, error) {
	query := squirrel.Select("id").
		Column(squirrel.Expr("embedding <=> ?::vector AS distance", EncodeVector(vec))).
		From("bills").
		Where(squirrel.Eq{
			"company_id": companyID,
			"status":     workflow.StatusProcessed.String(),
		}).
		Where(squirrel.NotEq{"id": excludeID}).
		Where("embedding IS NOT NULL").
		OrderBy("distance ASC", "created_at ASC", "id ASC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build similarity query: %w", err)
	}

	var (
		matchID  uuid.UUID
		distance float64
	)
	row := d.db.QueryRowContext(ctx, sqlStr, args...)
	if err := row.Scan(&matchID, &distance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		d.logger.Error("Similarity query failed",
			zap.String("company_id", companyID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("similarity query failed: %w", err)
	}

	match := &Match{
		BillID:     matchID,
		Similarity: 1.0 - distance,
	}

	d.logger.Debug("Nearest fingerprint found",
		zap.String("company_id", companyID.String()),
		zap.String("match_id", match.BillID.String()),
		zap.Float64("similarity", match.Similarity))

	return match, nil
}
