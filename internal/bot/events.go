package bot

import (
	"emsbot/internal/approvals"
	"emsbot/internal/requests"
)

// EventType tags the three kinds of input the workflow core consumes;
// everything else the platform delivers is noise and never reaches the
// dispatcher's components
type EventType string

const (
	EventOnboardingReply EventType = "onboarding-reply"
	EventFormSubmitted   EventType = "form-submitted"
	EventDecisionPressed EventType = "decision-pressed"
)

// Event is one unit of input, already decoupled from the transport
// that delivered it
type Event struct {
	Type      EventType
	ChannelId int64

	// Actor is the member who produced the event, with their roles as
	// they are at this moment
	Actor requests.Identity

	// Reply carries the raw text of an onboarding reply
	Reply string

	// Submission carries the form fields of a submitted request
	Submission *requests.Submission

	// Decision carries a pressed decision affordance
	Decision *DecisionPress
}

// DecisionPress is an approve/deny press on a pending record
type DecisionPress struct {
	RequestId string
	Decision  approvals.Decision
	Reason    string
}
