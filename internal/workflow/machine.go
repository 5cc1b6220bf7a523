package workflow

import (
	"errors"
	"fmt"
)

// Trigger represents an event that can cause a status transition
type Trigger string

const (
	TriggerEnqueue       Trigger = "ENQUEUE"
	TriggerStart         Trigger = "START"
	TriggerComplete      Trigger = "COMPLETE"
	TriggerMarkDuplicate Trigger = "MARK_DUPLICATE"
	TriggerFail          Trigger = "FAIL"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}

var (
	// ErrInvalidTransition is returned when a status transition is not allowed
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidStatus is returned when a status is not a known lifecycle status
	ErrInvalidStatus = errors.New("invalid status")
)

// transitions is the full lifecycle table:
// pending → queued → processing → {processed | duplicate | error}.
// A pending bill may also start directly, for transports that deliver before
// the queued mark lands. Starting again from processing is a self-transition:
// a redelivered message must be able to reclaim a bill whose previous run
// died or was nacked mid-flight.
var transitions = map[Status]map[Trigger]Status{
	StatusPending: {
		TriggerEnqueue: StatusQueued,
		TriggerStart:   StatusProcessing,
	},
	StatusQueued: {
		TriggerStart: StatusProcessing,
	},
	StatusProcessing: {
		TriggerStart:         StatusProcessing,
		TriggerComplete:      StatusProcessed,
		TriggerMarkDuplicate: StatusDuplicate,
		TriggerFail:          StatusError,
	},
}

// Machine tracks a single bill's status and validates transitions
type Machine struct {
	current Status
}

// NewMachine creates a machine positioned at the given status
func NewMachine(initial Status) (*Machine, error) {
	if !initial.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, initial)
	}
	return &Machine{current: initial}, nil
}

// Status returns the current status
func (m *Machine) Status() Status {
	return m.current
}

// CanFire returns true if the trigger is permitted in the current status
func (m *Machine) CanFire(trigger Trigger) bool {
	next, ok := transitions[m.current]
	if !ok {
		return false
	}
	_, ok = next[trigger]
	return ok
}

// Fire executes the trigger, moving to the new status if allowed
func (m *Machine) Fire(trigger Trigger) error {
	next, ok := transitions[m.current]
	if !ok {
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, m.current)
	}
	to, ok := next[trigger]
	if !ok {
		return fmt.Errorf("%w: %s does not permit %s", ErrInvalidTransition, m.current, trigger)
	}
	m.current = to
	return nil
}

// PermittedTriggers returns all triggers that can fire in the current status
func (m *Machine) PermittedTriggers() []Trigger {
	next, ok := transitions[m.current]
	if !ok {
		return nil
	}
	triggers := make([]Trigger, 0, len(next))
	for t := range next {
		triggers = append(triggers, t)
	}
	return triggers
}
