package pipeline

import "github.com/google/uuid"

// Outcome tells the delivery layer what to do with the message
type Outcome int

const (
	// OutcomeAck settles the message; the job is done or can never succeed.
	OutcomeAck Outcome = iota
	// OutcomeRetry requests redelivery; the failure looked transient.
	OutcomeRetry
)

func (o Outcome) String() string {
	if o == OutcomeRetry {
		return "retry"
	}
	return "ack"
}

// Job identifies one bill to process. CompanyID scopes every lookup to the
// owning tenant.
type Job struct {
	BillID    uuid.UUID
	CompanyID uuid.UUID
}
