package requests

import (
	"emsbot/internal/common"
	"emsbot/internal/config"
	"emsbot/internal/mentions"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notifier delivers a rendered request notification to a channel and
// returns the handle of the message it created
type Notifier interface {
	SendRequestNotification(channelId int64, record Record) (MessageRef, error)
}

// Submission is the validated-on-entry form input for one request
type Submission struct {
	Kind      Kind     `json:"kind" yaml:"kind"`
	Submitter Identity `json:"submitter" yaml:"submitter"`
	Start     string   `json:"start" yaml:"start"`
	End       string   `json:"end" yaml:"end"`
	Reason    string   `json:"reason,omitempty" yaml:"reason,omitempty"`
}

type NewWorkflowOpts struct {
	Store       *config.Store
	Notifier    Notifier
	ServiceLogs chan<- common.ServiceLog
}

// Workflow builds pending records from submissions and keeps the
// in-process registry that decision events resolve against
type Workflow struct {
	store       *config.Store
	notifier    Notifier
	serviceLogs chan<- common.ServiceLog

	mutex   sync.RWMutex
	entries map[string]*Entry
}

func NewWorkflow(opts NewWorkflowOpts) *Workflow {
	serviceLogs := opts.ServiceLogs
	if serviceLogs == nil {
		serviceLogs = common.GetNoopServiceLog()
	}
	return &Workflow{
		store:       opts.Store,
		notifier:    opts.Notifier,
		serviceLogs: serviceLogs,
		entries:     map[string]*Entry{},
	}
}

// Submit validates the form input, resolves reviewer mentions from
// the mention map as it stands right now, creates the pending record,
// and sends the notification to the channel configured for the kind.
// When that channel is unset the record is still created and
// ErrUnroutedNotification is returned so the submitter learns about
// the gap instead of waiting on a review that can never be seen.
// The returned Record is a snapshot of the state after submission
func (w *Workflow) Submit(submission Submission) (Record, error) {
	if !submission.Kind.IsValid() {
		return Record{}, newValidationError("kind", fmt.Sprintf("unknown request kind '%s'", submission.Kind))
	}

	record := Record{
		Id:          uuid.New().String(),
		Kind:        submission.Kind,
		Submitter:   submission.Submitter,
		Start:       submission.Start,
		End:         submission.End,
		Reason:      submission.Reason,
		SubmittedAt: time.Now(),
		Status:      StatusPending,
	}

	if submission.Kind.IsTimeRanged() {
		start, err := time.Parse(TimeFormat, submission.Start)
		if err != nil {
			return Record{}, newValidationError("start time", fmt.Sprintf("'%s' is not in HH:MM format", submission.Start))
		}
		end, err := time.Parse(TimeFormat, submission.End)
		if err != nil {
			return Record{}, newValidationError("end time", fmt.Sprintf("'%s' is not in HH:MM format", submission.End))
		}
		record.DurationMinutes = durationMinutes(start, end)
	} else {
		start, err := time.Parse(DateFormat, submission.Start)
		if err != nil {
			return Record{}, newValidationError("start date", fmt.Sprintf("'%s' is not in DD.MM.YYYY format", submission.Start))
		}
		end, err := time.Parse(DateFormat, submission.End)
		if err != nil {
			return Record{}, newValidationError("end date", fmt.Sprintf("'%s' is not in DD.MM.YYYY format", submission.End))
		}
		if end.Before(start) {
			return Record{}, newValidationError("end date", "end date is before the start date")
		}
		record.DurationDays = durationDays(start, end)
	}

	document, err := w.store.Load()
	if err != nil {
		return Record{}, fmt.Errorf("failed to load the workflow configuration: %w", err)
	}
	resolution := mentions.Resolve(submission.Submitter.Roles, document.MentionMap())
	record.NotifyRoles = resolution.NotifyRoles
	record.AuthorizedRoles = append([]string{}, resolution.NotifyRoles...)

	entry := newEntry(record)
	w.mutex.Lock()
	w.entries[record.Id] = entry
	w.mutex.Unlock()
	w.persist(entry)
	requestsSubmittedCounter.WithLabelValues(string(record.Kind)).Inc()
	w.serviceLogs <- common.ServiceLogf(common.LogLevelInfo, "created request[%s] of kind[%s] by user[%v/%s]", record.Id, record.Kind, record.Submitter.Id, record.Submitter.Name)

	channelId, ok := document.ChannelId(submission.Kind.ChannelKey())
	if !ok {
		w.serviceLogs <- common.ServiceLogf(common.LogLevelWarn, "request[%s] has no notification channel for key[%s]", record.Id, submission.Kind.ChannelKey())
		return entry.Snapshot(), ErrUnroutedNotification
	}

	messageRef, err := w.notifier.SendRequestNotification(channelId, entry.Snapshot())
	if err != nil {
		return entry.Snapshot(), fmt.Errorf("failed to send notification for request[%s]: %w", record.Id, err)
	}
	entry.SetMessage(messageRef)
	w.persist(entry)
	return entry.Snapshot(), nil
}

// Get returns the live entry with the given ID
func (w *Workflow) Get(requestId string) (*Entry, bool) {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	entry, ok := w.entries[requestId]
	return entry, ok
}

// Persist writes the entry's current state through to the ledger; the
// in-memory entry stays authoritative, so a ledger failure is logged
// rather than propagated
func (w *Workflow) Persist(entry *Entry) {
	w.persist(entry)
}

func (w *Workflow) persist(entry *Entry) {
	if err := saveRecord(entry.Snapshot()); err != nil {
		w.serviceLogs <- common.ServiceLogf(common.LogLevelError, "failed to persist request[%s] to the ledger: %s", entry.Id(), err)
	}
}
