package bot

import (
	"emsbot/internal/approvals"
	"emsbot/internal/common"
	"emsbot/internal/config"
	"emsbot/internal/onboarding"
	"emsbot/internal/requests"
	"errors"
	"fmt"
	"sync"
)

// EntryPublisher publishes the request entry points (the affordances
// members use to open a submission form) to the request channel
type EntryPublisher interface {
	PublishEntryPoints(channelId int64) error
}

type NewDispatcherOpts struct {
	AdminChannelId int64
	Store          *config.Store
	Sequencer      *onboarding.Sequencer
	Workflow       *requests.Workflow
	Gate           *approvals.Gate
	Publisher      EntryPublisher
	ServiceLogs    chan<- common.ServiceLog
}

// Dispatcher is the single consumer of typed events; it owns the
// routing rules between the onboarding sequencer, the request
// workflow and the approval gate, so none of them know about the
// transport that feeds them
type Dispatcher struct {
	adminChannelId int64
	store          *config.Store
	sequencer      *onboarding.Sequencer
	workflow       *requests.Workflow
	gate           *approvals.Gate
	publisher      EntryPublisher
	serviceLogs    chan<- common.ServiceLog

	mutex     sync.Mutex
	published bool
}

func NewDispatcher(opts NewDispatcherOpts) *Dispatcher {
	serviceLogs := opts.ServiceLogs
	if serviceLogs == nil {
		serviceLogs = common.GetNoopServiceLog()
	}
	return &Dispatcher{
		adminChannelId: opts.AdminChannelId,
		store:          opts.Store,
		sequencer:      opts.Sequencer,
		workflow:       opts.Workflow,
		gate:           opts.Gate,
		publisher:      opts.Publisher,
		serviceLogs:    serviceLogs,
	}
}

// Activate kicks off onboarding, or publishes the request entry
// points right away when every channel binding is already configured.
// Entry points are never published before onboarding completes, so a
// request can't be routed to an unconfigured channel
func (d *Dispatcher) Activate() {
	if d.sequencer.IsComplete() {
		d.publishEntryPoints()
		return
	}
	d.sequencer.Start()
}

// Dispatch routes one event and returns the notice to show the acting
// member, if any. An empty notice means the event asked for no
// feedback (or was not observed at all)
func (d *Dispatcher) Dispatch(event Event) string {
	switch event.Type {
	case EventOnboardingReply:
		return d.handleOnboardingReply(event)
	case EventFormSubmitted:
		return d.handleFormSubmitted(event)
	case EventDecisionPressed:
		return d.handleDecisionPressed(event)
	}
	return ""
}

func (d *Dispatcher) handleOnboardingReply(event Event) string {
	// replies anywhere but the administrative channel are not input
	// to the sequencer, they're just chatter
	if event.ChannelId != d.adminChannelId {
		return ""
	}
	outcome := d.sequencer.SubmitReply(event.Reply)
	if outcome == onboarding.OutcomeAccepted && d.sequencer.IsComplete() {
		d.publishEntryPoints()
	}
	return ""
}

func (d *Dispatcher) handleFormSubmitted(event Event) string {
	if !d.sequencer.IsComplete() {
		return "The bot is still being configured, please try again later."
	}
	record, err := d.workflow.Submit(*event.Submission)
	if err != nil {
		if validationError, ok := requests.AsValidationError(err); ok {
			return fmt.Sprintf("Your request was not accepted: %s.", validationError.Error())
		}
		if errors.Is(err, requests.ErrUnroutedNotification) {
			return "Your request was recorded but no reviewer channel is configured yet, please contact an administrator."
		}
		d.serviceLogs <- common.ServiceLogf(common.LogLevelError, "failed to submit a request: %s", err)
		return "Something went wrong while submitting your request, please try again."
	}
	d.serviceLogs <- common.ServiceLogf(common.LogLevelInfo, "request[%s] submitted via %s", record.Id, event.Type)
	return fmt.Sprintf("Your %s request has been submitted.", record.Kind.Title())
}

func (d *Dispatcher) handleDecisionPressed(event Event) string {
	press := event.Decision
	entry, ok := d.workflow.Get(press.RequestId)
	if !ok {
		return "This request is no longer known to the bot."
	}
	if err := d.gate.Apply(entry, press.Decision, event.Actor, press.Reason); err != nil {
		switch {
		case errors.Is(err, approvals.ErrUnauthorized):
			return "You are not authorized to decide this request."
		case errors.Is(err, requests.ErrAlreadyDecided):
			return "This request has already been decided."
		}
		d.serviceLogs <- common.ServiceLogf(common.LogLevelError, "failed to apply a decision to request[%s]: %s", entry.Id(), err)
		return "Something went wrong while applying your decision, please try again."
	}
	if press.Decision == approvals.DecisionDeny {
		return "Request denied."
	}
	return "Request approved."
}

func (d *Dispatcher) publishEntryPoints() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.published || d.publisher == nil {
		return
	}
	document, err := d.store.Load()
	if err != nil {
		d.serviceLogs <- common.ServiceLogf(common.LogLevelError, "failed to load the workflow configuration: %s", err)
		return
	}
	channelId, ok := document.ChannelId(config.ChannelKeyRequest)
	if !ok {
		d.serviceLogs <- common.ServiceLogf(common.LogLevelWarn, "the request channel is unset, entry points stay unpublished")
		return
	}
	if err := d.publisher.PublishEntryPoints(channelId); err != nil {
		d.serviceLogs <- common.ServiceLogf(common.LogLevelError, "failed to publish entry points to channel[%v]: %s", channelId, err)
		return
	}
	d.serviceLogs <- common.ServiceLogf(common.LogLevelInfo, "published request entry points to channel[%v]", channelId)
	d.published = true
}
