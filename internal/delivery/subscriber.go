package delivery

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/dardania/billscan/internal/pipeline"
)

// Processor runs the pipeline for one decoded job
type Processor interface {
	Process(ctx context.Context, job pipeline.Job) pipeline.Outcome
}

// Subscriber pulls job messages from a Source and runs them through the
// processor with bounded concurrency. Implements the worker contract.
type Subscriber struct {
	source        Source
	processor     Processor
	retryStrategy *RetryStrategy
	maxConcurrent int
	logger        *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSubscriber creates a subscriber
func NewSubscriber(source Source, processor Processor, retry *RetryStrategy, maxConcurrent int, logger *zap.Logger) *Subscriber {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Subscriber{
		source:        source,
		processor:     processor,
		retryStrategy: retry,
		maxConcurrent: maxConcurrent,
		logger:        logger,
	}
}

// Name returns the worker name
func (s *Subscriber) Name() string {
	return "queue-subscriber"
}

// Start launches the consume loop
func (s *Subscriber) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("subscriber already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.consume(ctx)
	return nil
}

// Stop halts consumption and waits for in-flight jobs to finish
func (s *Subscriber) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done
}

func (s *Subscriber) consume(ctx context.Context) {
	defer close(s.done)

	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case d, ok := <-s.source.Deliveries():
			if !ok {
				wg.Wait()
				return
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(d *Delivery) {
				defer wg.Done()
				defer func() { <-sem }()
				s.handle(ctx, d)
			}(d)
		}
	}
}

func (s *Subscriber) handle(ctx context.Context, d *Delivery) {
	msg, err := DecodeJobMessage(d.Data)
	if err != nil {
		// Settle permanently; a broken payload never improves
		s.logger.Warn("Discarding malformed message", zap.Error(err))
		return
	}

	logger := s.logger.With(
		zap.String("bill_id", msg.BillID.String()),
		zap.Int("attempt", d.Attempt))

	outcome := s.processor.Process(ctx, pipeline.Job{
		BillID:    msg.BillID,
		CompanyID: msg.CompanyID,
	})
	if outcome != pipeline.OutcomeRetry {
		return
	}

	if s.retryStrategy.Exhausted(d.Attempt) {
		logger.Error("Retry budget exhausted, dropping message")
		return
	}

	delay := s.retryStrategy.Backoff(d.Attempt)
	logger.Warn("Scheduling redelivery", zap.Duration("delay", delay))
	s.source.Nack(d, delay)
}
