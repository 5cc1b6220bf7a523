package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Worker is the common contract for background components: the push server,
// the queue subscriber, anything with a lifecycle the binary controls.
type Worker interface {
	Start(ctx context.Context) error
	Stop()
	Name() string
}

// Manager starts registered workers in order and stops them in reverse, so
// the push server drains before the subscriber goes away.
type Manager struct {
	workers []Worker
	logger  *zap.Logger
	mu      sync.Mutex
}

// NewManager creates a worker manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

// Register adds workers. Start order is registration order.
func (m *Manager) Register(ws ...Worker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers = append(m.workers, ws...)
}

// StartAll starts every registered worker, stopping at the first failure
func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range m.workers {
		if err := w.Start(ctx); err != nil {
			m.logger.Error("Failed to start worker",
				zap.String("name", w.Name()),
				zap.Error(err))
			return err
		}
		m.logger.Info("Worker started", zap.String("name", w.Name()))
	}
	return nil
}

// StopAll stops workers in reverse registration order
func (m *Manager) StopAll() {
	m.mu.Lock()
	workers := make([]Worker, len(m.workers))
	copy(workers, m.workers)
	m.mu.Unlock()

	for i := len(workers) - 1; i >= 0; i-- {
		w := workers[i]
		w.Stop()
		m.logger.Info("Worker stopped", zap.String("name", w.Name()))
	}
}
