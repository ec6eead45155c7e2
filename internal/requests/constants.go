package requests

// Status is the lifecycle state of a request record; pending is the
// only non-terminal state
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
)

const (
	requestCachePrefix = "request"

	// DateFormat is the submission format for vacation date fields
	DateFormat = "02.01.2006"

	// TimeFormat is the submission format for break time fields
	TimeFormat = "15:04"
)
