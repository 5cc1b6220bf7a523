package delivery

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrQueueClosed is returned by Publish after Close
	ErrQueueClosed = errors.New("queue closed")
	// ErrQueueFull is returned when the buffer has no room
	ErrQueueFull = errors.New("queue full")
)

// Delivery is one message handed to a subscriber. Attempt counts deliveries
// of this message, starting at 1.
type Delivery struct {
	Data    []byte
	Attempt int
}

// Source is the pull side of a job queue
type Source interface {
	// Deliveries yields messages until the source is closed
	Deliveries() <-chan *Delivery
	// Nack schedules the message for redelivery after the delay
	Nack(d *Delivery, delay time.Duration)
}

// Queue is an in-process job queue with delayed redelivery. Serves
// single-binary deployments where the upload surface and the worker share a
// process; push delivery over HTTP covers the distributed case.
type Queue struct {
	ch     chan *Delivery
	logger *zap.Logger
	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

// requeueDelay spaces out attempts to hand a redelivery to a full buffer
const requeueDelay = 50 * time.Millisecond

// NewQueue creates a queue buffering up to size messages
func NewQueue(size int, logger *zap.Logger) *Queue {
	if size <= 0 {
		size = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		ch:     make(chan *Delivery, size),
		logger: logger,
	}
}

// Publish enqueues a new message with attempt 1
func (q *Queue) Publish(data []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- &Delivery{Data: data, Attempt: 1}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Deliveries implements Source
func (q *Queue) Deliveries() <-chan *Delivery {
	return q.ch
}

// Nack implements Source: the message reappears after the delay with its
// attempt count bumped. The message survives a full buffer; it is only let
// go when the queue closes during shutdown.
func (q *Queue) Nack(d *Delivery, delay time.Duration) {
	redelivery := &Delivery{Data: d.Data, Attempt: d.Attempt + 1}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.wg.Add(1)
	q.mu.Unlock()

	q.redeliver(redelivery, delay)
}

// redeliver arms a timer holding one waitgroup slot. The slot is released
// when the message lands on the channel or the queue closes; a full buffer
// re-arms the timer instead of dropping the message.
func (q *Queue) redeliver(d *Delivery, delay time.Duration) {
	time.AfterFunc(delay, func() {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			q.wg.Done()
			return
		}
		select {
		case q.ch <- d:
			q.mu.Unlock()
			q.wg.Done()
		default:
			q.mu.Unlock()
			q.logger.Warn("Redelivery buffer full, rescheduling",
				zap.Int("attempt", d.Attempt))
			q.redeliver(d, requeueDelay)
		}
	})
}

// Close stops the queue. Pending redelivery timers are waited out so no
// goroutine writes to a closed channel.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.wg.Wait()
	close(q.ch)
}
