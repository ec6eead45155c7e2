package bot

import (
	"emsbot/internal/approvals"
	"emsbot/internal/cache"
	"emsbot/internal/config"
	"emsbot/internal/onboarding"
	"emsbot/internal/requests"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminChannelId int64 = 555

type fakePublisher struct {
	channelIds []int64
}

func (f *fakePublisher) PublishEntryPoints(channelId int64) error {
	f.channelIds = append(f.channelIds, channelId)
	return nil
}

type noopMessenger struct{}

func (noopMessenger) SendMessage(text string) error { return nil }

type noopNotifier struct{}

func (noopNotifier) SendRequestNotification(channelId int64, record requests.Record) (requests.MessageRef, error) {
	return requests.MessageRef{ChatId: channelId, MessageId: 1}, nil
}

func createDispatcher(t *testing.T, document config.Document) (*Dispatcher, *requests.Workflow, *fakePublisher) {
	cache.InitMemory()
	store := config.NewStore(filepath.Join(t.TempDir(), "emsbot.json"))
	require.NoError(t, store.Save(document))

	sequencer := onboarding.NewSequencer(onboarding.NewSequencerOpts{
		Store:    store,
		Document: document,
		Admin:    noopMessenger{},
	})
	workflow := requests.NewWorkflow(requests.NewWorkflowOpts{
		Store:    store,
		Notifier: noopNotifier{},
	})
	gate := approvals.NewGate(approvals.NewGateOpts{Workflow: workflow})
	publisher := &fakePublisher{}
	dispatcher := NewDispatcher(NewDispatcherOpts{
		AdminChannelId: testAdminChannelId,
		Store:          store,
		Sequencer:      sequencer,
		Workflow:       workflow,
		Gate:           gate,
		Publisher:      publisher,
	})
	return dispatcher, workflow, publisher
}

func createConfiguredDocument() config.Document {
	document := config.Document{}
	for index, key := range config.ChannelKeys {
		document.SetChannelId(key, int64(100+index))
	}
	document.SetMentionMap(map[string][]string{"Medic": {"Operations"}})
	return document
}

func TestActivatePublishesWhenConfigured(t *testing.T) {
	dispatcher, _, publisher := createDispatcher(t, createConfiguredDocument())
	dispatcher.Activate()
	require.Len(t, publisher.channelIds, 1)
	assert.Equal(t, int64(100), publisher.channelIds[0])

	// activation is idempotent
	dispatcher.Activate()
	assert.Len(t, publisher.channelIds, 1)
}

func TestActivateStartsOnboardingWhenUnconfigured(t *testing.T) {
	dispatcher, _, publisher := createDispatcher(t, config.Document{})
	dispatcher.Activate()
	assert.Empty(t, publisher.channelIds)
}

func TestOnboardingRepliesOutsideAdminChannelAreIgnored(t *testing.T) {
	dispatcher, _, publisher := createDispatcher(t, config.Document{})
	dispatcher.Activate()
	dispatcher.Dispatch(Event{
		Type:      EventOnboardingReply,
		ChannelId: testAdminChannelId + 1,
		Reply:     "12345",
	})
	dispatcher.Dispatch(Event{
		Type:      EventFormSubmitted,
		ChannelId: testAdminChannelId + 1,
		Submission: &requests.Submission{
			Kind:  requests.KindBreak,
			Start: "12:00",
			End:   "12:30",
		},
	})
	assert.Empty(t, publisher.channelIds)
}

func TestOnboardingCompletionPublishesEntryPoints(t *testing.T) {
	dispatcher, _, publisher := createDispatcher(t, config.Document{})
	dispatcher.Activate()
	for index := range config.ChannelKeys {
		dispatcher.Dispatch(Event{
			Type:      EventOnboardingReply,
			ChannelId: testAdminChannelId,
			Reply:     fmt.Sprintf("%v", 100+index),
		})
	}
	require.Len(t, publisher.channelIds, 1)
	assert.Equal(t, int64(100), publisher.channelIds[0])
}

func TestFormSubmissionsBlockedUntilOnboarded(t *testing.T) {
	dispatcher, _, _ := createDispatcher(t, config.Document{})
	dispatcher.Activate()
	notice := dispatcher.Dispatch(Event{
		Type:      EventFormSubmitted,
		ChannelId: 900,
		Actor:     requests.Identity{Id: 1, Name: "alice"},
		Submission: &requests.Submission{
			Kind:      requests.KindBreak,
			Submitter: requests.Identity{Id: 1, Name: "alice"},
			Start:     "12:00",
			End:       "12:30",
		},
	})
	assert.Contains(t, notice, "still being configured")
}

func TestFormSubmissionFlow(t *testing.T) {
	dispatcher, workflow, _ := createDispatcher(t, createConfiguredDocument())
	notice := dispatcher.Dispatch(Event{
		Type:      EventFormSubmitted,
		ChannelId: 900,
		Submission: &requests.Submission{
			Kind:      requests.KindIccVacation,
			Submitter: requests.Identity{Id: 1, Name: "alice", Roles: []string{"Medic"}},
			Start:     "01.03.2024",
			End:       "03.03.2024",
		},
	})
	assert.Contains(t, notice, "has been submitted")

	requestIds, err := requests.ListRecordIds()
	require.NoError(t, err)
	require.Len(t, requestIds, 1)
	_, ok := workflow.Get(requestIds[0])
	assert.True(t, ok)
}

func TestFormSubmissionValidationNotice(t *testing.T) {
	dispatcher, _, _ := createDispatcher(t, createConfiguredDocument())
	notice := dispatcher.Dispatch(Event{
		Type:      EventFormSubmitted,
		ChannelId: 900,
		Submission: &requests.Submission{
			Kind:      requests.KindIccVacation,
			Submitter: requests.Identity{Id: 1, Name: "alice", Roles: []string{"Medic"}},
			Start:     "garbage",
			End:       "03.03.2024",
		},
	})
	assert.Contains(t, notice, "not accepted")
}

func TestDecisionFlow(t *testing.T) {
	dispatcher, workflow, _ := createDispatcher(t, createConfiguredDocument())
	record, err := workflow.Submit(requests.Submission{
		Kind:      requests.KindIccVacation,
		Submitter: requests.Identity{Id: 1, Name: "alice", Roles: []string{"Medic"}},
		Start:     "01.03.2024",
		End:       "03.03.2024",
	})
	require.NoError(t, err)

	unauthorized := dispatcher.Dispatch(Event{
		Type:  EventDecisionPressed,
		Actor: requests.Identity{Id: 9, Name: "mallory", Roles: []string{"Intern"}},
		Decision: &DecisionPress{
			RequestId: record.Id,
			Decision:  approvals.DecisionApprove,
		},
	})
	assert.Contains(t, unauthorized, "not authorized")

	approved := dispatcher.Dispatch(Event{
		Type:  EventDecisionPressed,
		Actor: requests.Identity{Id: 10, Name: "olivia", Roles: []string{"Operations"}},
		Decision: &DecisionPress{
			RequestId: record.Id,
			Decision:  approvals.DecisionApprove,
		},
	})
	assert.Equal(t, "Request approved.", approved)

	repeated := dispatcher.Dispatch(Event{
		Type:  EventDecisionPressed,
		Actor: requests.Identity{Id: 10, Name: "olivia", Roles: []string{"Operations"}},
		Decision: &DecisionPress{
			RequestId: record.Id,
			Decision:  approvals.DecisionDeny,
			Reason:    "changed my mind",
		},
	})
	assert.Contains(t, repeated, "already been decided")
}

func TestDecisionOnUnknownRequest(t *testing.T) {
	dispatcher, _, _ := createDispatcher(t, createConfiguredDocument())
	notice := dispatcher.Dispatch(Event{
		Type:  EventDecisionPressed,
		Actor: requests.Identity{Id: 10, Name: "olivia", Roles: []string{"Operations"}},
		Decision: &DecisionPress{
			RequestId: "00000000-0000-0000-0000-000000000000",
			Decision:  approvals.DecisionApprove,
		},
	})
	assert.Contains(t, notice, "no longer known")
}
