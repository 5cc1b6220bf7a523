package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dardania/billscan/internal/dedup"
	"github.com/dardania/billscan/internal/embedding"
	"github.com/dardania/billscan/internal/extraction"
	"github.com/dardania/billscan/internal/models"
	"github.com/dardania/billscan/internal/objstore"
	"github.com/dardania/billscan/internal/repository"
	"github.com/dardania/billscan/internal/workflow"
)

// BillStore is the read/claim side of bill persistence the processor needs
type BillStore interface {
	GetByID(ctx context.Context, id, companyID uuid.UUID) (*models.Bill, error)
	SetStatus(ctx context.Context, id uuid.UUID, status workflow.Status) error
}

// Sink receives the final outcome of a processing run. Each call is atomic.
type Sink interface {
	CommitProcessed(ctx context.Context, bill *models.Bill, fields repository.ExtractedFields, embedding []float32, items []models.Expense) error
	CommitDuplicate(ctx context.Context, bill *models.Bill, embedding []float32, match dedup.Match) error
	CommitError(ctx context.Context, bill *models.Bill, message string) error
}

// Processor runs the extraction pipeline for one bill at a time:
// claim, fetch, extract, fingerprint, dedup, commit.
type Processor struct {
	bills     BillStore
	store     objstore.Store
	extractor extraction.Extractor
	embedder  embedding.Embedder
	detector  dedup.Detector
	threshold dedup.Threshold
	sink      Sink
	timeout   time.Duration
	logger    *zap.Logger
}

// NewProcessor creates a processor with the given stages
func NewProcessor(
	bills BillStore,
	store objstore.Store,
	extractor extraction.Extractor,
	embedder embedding.Embedder,
	detector dedup.Detector,
	threshold dedup.Threshold,
	sink Sink,
	timeout time.Duration,
	logger *zap.Logger,
) *Processor {
	return &Processor{
		bills:     bills,
		store:     store,
		extractor: extractor,
		embedder:  embedder,
		detector:  detector,
		threshold: threshold,
		sink:      sink,
		timeout:   timeout,
		logger:    logger,
	}
}

// Process runs the pipeline for one job and reports how the message should
// be settled. Safe to call again for the same bill: terminal bills are
// acknowledged without reprocessing, and a bill stranded in processing by an
// interrupted run is reclaimed.
func (p *Processor) Process(ctx context.Context, job Job) Outcome {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	logger := p.logger.With(zap.String("bill_id", job.BillID.String()))

	bill, err := p.bills.GetByID(ctx, job.BillID, job.CompanyID)
	if err != nil {
		if errors.Is(err, repository.ErrBillNotFound) {
			// Nothing to update and the row will not appear on redelivery
			logger.Warn("Bill not found, discarding message")
			return OutcomeAck
		}
		logger.Error("Failed to fetch bill", zap.Error(err))
		return OutcomeRetry
	}

	if bill.Status.IsTerminal() {
		logger.Info("Bill already settled, skipping",
			zap.String("status", bill.Status.String()))
		return OutcomeAck
	}

	machine, err := workflow.NewMachine(bill.Status)
	if err != nil {
		logger.Warn("Bill carries unknown status, discarding message",
			zap.String("status", bill.Status.String()))
		return OutcomeAck
	}
	if err := machine.Fire(workflow.TriggerStart); err != nil {
		logger.Warn("Bill not in a startable state, discarding message",
			zap.String("status", bill.Status.String()))
		return OutcomeAck
	}
	if err := p.bills.SetStatus(ctx, bill.ID, workflow.StatusProcessing); err != nil {
		logger.Error("Failed to claim bill", zap.Error(err))
		return OutcomeRetry
	}

	outcome, err := p.run(ctx, logger, bill)
	if err != nil {
		logger.Error("Pipeline run failed", zap.Error(err))
		return OutcomeRetry
	}
	return outcome
}

// run executes the stages after the bill has been claimed. A returned error
// means the outcome itself could not be recorded.
func (p *Processor) run(ctx context.Context, logger *zap.Logger, bill *models.Bill) (Outcome, error) {
	pages, outcome, err := p.loadPages(ctx, logger, bill)
	if pages == nil {
		return outcome, err
	}

	result, err := p.extractor.Extract(ctx, pages)
	if err != nil {
		if isTransientError(err) {
			logger.Warn("Extraction failed, will retry", zap.Error(err))
			return OutcomeRetry, nil
		}
		return p.fail(ctx, bill, fmt.Sprintf("extraction failed: %v", err))
	}

	// Fingerprint failure is not fatal: the bill still completes, it just
	// never participates in duplicate detection.
	vec, err := p.embedder.Embed(ctx, embedding.SummaryText(result))
	if err != nil {
		logger.Warn("Fingerprint generation failed, skipping duplicate check", zap.Error(err))
		vec = nil
	}

	if vec != nil {
		match, err := p.detector.FindNearest(ctx, bill.CompanyID, vec, bill.ID)
		if err != nil {
			logger.Error("Duplicate lookup failed", zap.Error(err))
			return OutcomeRetry, nil
		}
		if match != nil && p.threshold.IsDuplicate(match.Similarity) {
			if err := p.sink.CommitDuplicate(ctx, bill, vec, *match); err != nil {
				return p.commitFailed(ctx, logger, bill, err)
			}
			return OutcomeAck, nil
		}
	}

	fields := buildFields(result)
	items := buildExpenses(bill, result)
	if err := p.sink.CommitProcessed(ctx, bill, fields, vec, items); err != nil {
		return p.commitFailed(ctx, logger, bill, err)
	}
	return OutcomeAck, nil
}

// commitFailed classifies a commit error: transient failures lean on
// redelivery, anything else is recorded as a terminal error.
func (p *Processor) commitFailed(ctx context.Context, logger *zap.Logger, bill *models.Bill, err error) (Outcome, error) {
	if isTransientError(err) {
		logger.Warn("Commit failed, will retry", zap.Error(err))
		return OutcomeRetry, nil
	}
	logger.Error("Commit rejected", zap.Error(err))
	return p.fail(ctx, bill, fmt.Sprintf("commit failed: %v", err))
}

// loadPages fetches the stored objects and renders them into oracle-ready
// page images. A nil page slice means the caller should return the outcome.
func (p *Processor) loadPages(ctx context.Context, logger *zap.Logger, bill *models.Bill) ([]extraction.Page, Outcome, error) {
	objects := make([]extraction.Page, 0, len(bill.StoragePaths))
	for _, path := range bill.StoragePaths {
		data, err := p.store.Fetch(ctx, path)
		if err != nil {
			if errors.Is(err, objstore.ErrNotFound) {
				outcome, ferr := p.fail(ctx, bill, fmt.Sprintf("stored object missing: %s", path))
				return nil, outcome, ferr
			}
			logger.Error("Failed to fetch stored object",
				zap.String("path", path), zap.Error(err))
			return nil, OutcomeRetry, nil
		}
		objects = append(objects, extraction.Page{Data: data, MIMEType: bill.MIMEType})
	}
	if len(objects) == 0 {
		outcome, err := p.fail(ctx, bill, "bill has no stored objects")
		return nil, outcome, err
	}

	pages, err := extraction.PreparePages(objects, logger)
	if err != nil {
		// Unreadable documents stay unreadable on redelivery
		outcome, ferr := p.fail(ctx, bill, fmt.Sprintf("failed to prepare pages: %v", err))
		return nil, outcome, ferr
	}
	return pages, OutcomeAck, nil
}

func (p *Processor) fail(ctx context.Context, bill *models.Bill, message string) (Outcome, error) {
	if err := p.sink.CommitError(ctx, bill, message); err != nil {
		return OutcomeRetry, err
	}
	return OutcomeAck, nil
}

func buildFields(result *extraction.Result) repository.ExtractedFields {
	fields := repository.ExtractedFields{
		VendorName:    result.VendorName,
		VendorTaxID:   result.VendorTaxID,
		BillNumber:    result.BillNumber,
		Subtotal:      result.Subtotal,
		VAT8:          result.VAT8,
		VAT18:         result.VAT18,
		TotalVAT:      result.TotalVAT,
		TotalAmount:   result.TotalAmount,
		Currency:      result.Currency,
		RawExtraction: result.RawResponse,
	}
	if t, ok := extraction.ParseDate(result.BillDate); ok {
		fields.BillDate = &t
	}
	return fields
}

func buildExpenses(bill *models.Bill, result *extraction.Result) []models.Expense {
	items := make([]models.Expense, 0, len(result.LineItems))
	for _, li := range result.LineItems {
		e := models.Expense{
			ID:           uuid.New(),
			CompanyID:    bill.CompanyID,
			UserID:       bill.UserID,
			BillID:       &bill.ID,
			BatchID:      bill.BatchID,
			Description:  li.Description,
			CategoryCode: li.CategoryCode,
			Amount:       li.Amount,
			Counterparty: li.Counterparty,
			VATCode:      li.VATCode,
			FiscalNumber: li.FiscalNumber,
			UnitNumber:   li.UnitNumber,
			CertNumber:   li.CertNumber,
			Quantity:     li.Quantity,
			Unit:         li.Unit,
			Note:         li.Note,
			PageNumber:   li.PageNumber,
		}
		if t, ok := extraction.ParseDate(li.Date); ok {
			e.ExpenseDate = &t
		}
		if li.VATRate > 0 {
			rate := li.VATRate
			e.VATRate = &rate
		}
		items = append(items, e)
	}
	return items
}
