package requests

import (
	"sync"
	"time"
)

// Identity is a chat platform member as seen by the workflow: the
// platform ID, a display name, and the role names held at the moment
// the identity was observed
type Identity struct {
	Id    int64    `json:"id" yaml:"id"`
	Name  string   `json:"name" yaml:"name"`
	Roles []string `json:"roles" yaml:"roles"`
}

// MessageRef addresses the rendered notification message of a record
// on the chat platform
type MessageRef struct {
	ChatId    int64 `json:"chatId"`
	MessageId int   `json:"messageId"`
}

// Record is the plain data of one submitted request, safe to copy,
// render, and marshal. The live, decidable state behind it is an
// Entry; everything that leaves an Entry leaves as a Record value
type Record struct {
	Id        string   `json:"id"`
	Kind      Kind     `json:"kind"`
	Submitter Identity `json:"submitter"`

	// Start/End hold the fields as submitted; dates for vacations,
	// times for breaks
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason,omitempty"`

	DurationDays    int `json:"durationDays,omitempty"`
	DurationMinutes int `json:"durationMinutes,omitempty"`

	// NotifyRoles and AuthorizedRoles are captured once at submission
	// from the mention map; later map edits don't affect this record
	NotifyRoles     []string `json:"notifyRoles"`
	AuthorizedRoles []string `json:"authorizedRoles"`

	SubmittedAt  time.Time   `json:"submittedAt"`
	Status       Status      `json:"status"`
	DecidedBy    *Identity   `json:"decidedBy,omitempty"`
	DecidedAt    *time.Time  `json:"decidedAt,omitempty"`
	DenialReason string      `json:"denialReason,omitempty"`
	Message      *MessageRef `json:"message,omitempty"`
}

// FormatDuration renders the computed duration per the record's kind
func (r Record) FormatDuration() string {
	if r.Kind.IsTimeRanged() {
		return FormatMinutes(r.DurationMinutes)
	}
	return FormatDays(r.DurationDays)
}

// Entry is a live record registered with a workflow. It owns the lock
// that makes the pending→terminal transition single-winner; the record
// itself never travels with the lock attached
type Entry struct {
	mutex  sync.Mutex
	record Record
}

func newEntry(record Record) *Entry {
	return &Entry{record: record}
}

// Id is immutable after registration, safe to read without the lock
func (e *Entry) Id() string {
	return e.record.Id
}

// Kind is immutable after registration, safe to read without the lock
func (e *Entry) Kind() Kind {
	return e.record.Kind
}

// AuthorizedRoles is immutable after registration, safe to read
// without the lock
func (e *Entry) AuthorizedRoles() []string {
	return e.record.AuthorizedRoles
}

// Decide moves the entry from pending to the given terminal status.
// The status check and the write happen under the entry's lock, so of
// two racing decisions exactly one wins and the other observes
// ErrAlreadyDecided with the record unchanged
func (e *Entry) Decide(status Status, decider Identity, reason string) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.record.Status != StatusPending {
		return ErrAlreadyDecided
	}
	now := time.Now()
	e.record.Status = status
	e.record.DecidedBy = &decider
	e.record.DecidedAt = &now
	if status == StatusDenied {
		e.record.DenialReason = reason
	}
	return nil
}

// SetMessage attaches the rendered notification message once it has
// been delivered
func (e *Entry) SetMessage(ref MessageRef) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.record.Message = &ref
}

// Snapshot returns a consistent, detached copy of the record for
// rendering and persistence without holding the lock across I/O
func (e *Entry) Snapshot() Record {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	snapshot := e.record
	snapshot.NotifyRoles = append([]string{}, e.record.NotifyRoles...)
	snapshot.AuthorizedRoles = append([]string{}, e.record.AuthorizedRoles...)
	if e.record.DecidedBy != nil {
		decidedBy := *e.record.DecidedBy
		snapshot.DecidedBy = &decidedBy
	}
	if e.record.DecidedAt != nil {
		decidedAt := *e.record.DecidedAt
		snapshot.DecidedAt = &decidedAt
	}
	if e.record.Message != nil {
		message := *e.record.Message
		snapshot.Message = &message
	}
	return snapshot
}
