package workflow

// Status represents a bill's position in the processing lifecycle
type Status string

const (
	StatusPending    Status = "pending"
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	StatusDuplicate  Status = "duplicate"
	StatusError      Status = "error"
)

var validStatuses = map[Status]bool{
	StatusPending:    true,
	StatusQueued:     true,
	StatusProcessing: true,
	StatusProcessed:  true,
	StatusDuplicate:  true,
	StatusError:      true,
}

// Terminal statuses: a redelivered job for a bill in one of these must be
// acknowledged without reprocessing.
var terminalStatuses = map[Status]bool{
	StatusProcessed: true,
	StatusDuplicate: true,
	StatusError:     true,
}

// IsTerminal returns true if no further transitions are allowed
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsValid returns true if the status is a known lifecycle status
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}
