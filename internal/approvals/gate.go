package approvals

import (
	"emsbot/internal/common"
	"emsbot/internal/requests"
	"errors"
)

// Decision is what a reviewer pressed
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionDeny    Decision = "deny"
)

// ErrUnauthorized is returned when the acting identity holds none of
// the roles captured on the record at submission time
var ErrUnauthorized = errors.New("not authorized to decide this request")

// Renderer re-renders a decided record's notification message in its
// terminal, non-interactive form (no more decision buttons)
type Renderer interface {
	FinalizeRequestNotification(record requests.Record) error
}

type NewGateOpts struct {
	Workflow    *requests.Workflow
	Renderer    Renderer
	ServiceLogs chan<- common.ServiceLog
}

// Gate guards decision events: it checks authorization against the
// actor's roles as they are right now, and guarantees that a record
// reaches a terminal state at most once
type Gate struct {
	workflow    *requests.Workflow
	renderer    Renderer
	serviceLogs chan<- common.ServiceLog
}

func NewGate(opts NewGateOpts) *Gate {
	serviceLogs := opts.ServiceLogs
	if serviceLogs == nil {
		serviceLogs = common.GetNoopServiceLog()
	}
	return &Gate{
		workflow:    opts.Workflow,
		renderer:    opts.Renderer,
		serviceLogs: serviceLogs,
	}
}

// Authorize reports whether any of the actor's current roles
// intersects the entry's authorized set. The actor's roles must be
// looked up at decision time, not reused from submission, since
// membership can change in between
func (g *Gate) Authorize(entry *requests.Entry, actorRoles []string) bool {
	for _, authorizedRole := range entry.AuthorizedRoles() {
		for _, actorRole := range actorRoles {
			if authorizedRole == actorRole {
				return true
			}
		}
	}
	return false
}

// Apply gates a decision into the entry. An ineligible actor gets
// ErrUnauthorized, a decision racing behind another one gets
// requests.ErrAlreadyDecided; in both cases the record is unchanged.
// On success the terminal state is stamped, written through to the
// ledger, and the notification message is re-rendered without its
// decision affordances. A render failure doesn't undo the decision,
// so it is logged rather than returned
func (g *Gate) Apply(entry *requests.Entry, decision Decision, actor requests.Identity, reason string) error {
	if !g.Authorize(entry, actor.Roles) {
		decisionsRejectedCounter.WithLabelValues("unauthorized").Inc()
		g.serviceLogs <- common.ServiceLogf(common.LogLevelWarn, "user[%v/%s] is not authorized to decide request[%s]", actor.Id, actor.Name, entry.Id())
		return ErrUnauthorized
	}

	status := requests.StatusApproved
	if decision == DecisionDeny {
		status = requests.StatusDenied
	}
	if err := entry.Decide(status, actor, reason); err != nil {
		decisionsRejectedCounter.WithLabelValues("already_decided").Inc()
		return err
	}
	g.workflow.Persist(entry)
	requestsDecidedCounter.WithLabelValues(string(entry.Kind()), string(status)).Inc()
	g.serviceLogs <- common.ServiceLogf(common.LogLevelInfo, "request[%s] was %s by user[%v/%s]", entry.Id(), status, actor.Id, actor.Name)

	if g.renderer != nil {
		if err := g.renderer.FinalizeRequestNotification(entry.Snapshot()); err != nil {
			g.serviceLogs <- common.ServiceLogf(common.LogLevelError, "failed to re-render the notification for request[%s]: %s", entry.Id(), err)
		}
	}
	return nil
}
