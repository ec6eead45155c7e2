package requests

import (
	"emsbot/internal/cache"
	"emsbot/internal/config"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	channelIds []int64
	records    []Record
	err        error
}

func (f *fakeNotifier) SendRequestNotification(channelId int64, record Record) (MessageRef, error) {
	if f.err != nil {
		return MessageRef{}, f.err
	}
	f.channelIds = append(f.channelIds, channelId)
	f.records = append(f.records, record)
	return MessageRef{ChatId: channelId, MessageId: len(f.records)}, nil
}

func createWorkflow(t *testing.T, document config.Document) (*Workflow, *fakeNotifier) {
	cache.InitMemory()
	store := config.NewStore(filepath.Join(t.TempDir(), "emsbot.json"))
	require.NoError(t, store.Save(document))
	notifier := &fakeNotifier{}
	workflow := NewWorkflow(NewWorkflowOpts{
		Store:    store,
		Notifier: notifier,
	})
	return workflow, notifier
}

func createDocument(t *testing.T) config.Document {
	document := config.Document{}
	document.SetChannelId(config.ChannelKeyRequest, 100)
	document.SetChannelId(config.ChannelKeyIccVacation, 101)
	document.SetChannelId(config.ChannelKeyOcVacation, 102)
	document.SetChannelId(config.ChannelKeyBreak, 103)
	document.SetMentionMap(map[string][]string{
		"Medic":  {"Lead Medic", "Operations"},
		"Driver": {"Operations"},
	})
	return document
}

func TestSubmitVacationRequest(t *testing.T) {
	workflow, notifier := createWorkflow(t, createDocument(t))
	record, err := workflow.Submit(Submission{
		Kind:      KindIccVacation,
		Submitter: Identity{Id: 1, Name: "alice", Roles: []string{"Medic", "Driver"}},
		Start:     "01.03.2024",
		End:       "03.03.2024",
		Reason:    "family visit",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, record.Id)
	assert.Equal(t, StatusPending, record.Status)

	// an inclusive date range: 1st through 3rd is three days
	assert.Equal(t, 3, record.DurationDays)
	assert.Equal(t, []string{"Lead Medic", "Operations"}, record.NotifyRoles)
	assert.Equal(t, []string{"Lead Medic", "Operations"}, record.AuthorizedRoles)

	require.Len(t, notifier.channelIds, 1)
	assert.Equal(t, int64(101), notifier.channelIds[0])
	require.NotNil(t, record.Message)
	assert.Equal(t, int64(101), record.Message.ChatId)

	loaded, err := LoadRecord(record.Id)
	require.NoError(t, err)
	assert.Equal(t, record.Id, loaded.Id)
	assert.NotNil(t, loaded.Message)
}

func TestSubmitSingleDayVacation(t *testing.T) {
	workflow, _ := createWorkflow(t, createDocument(t))
	record, err := workflow.Submit(Submission{
		Kind:      KindOcVacation,
		Submitter: Identity{Id: 1, Name: "alice", Roles: []string{"Medic"}},
		Start:     "15.06.2024",
		End:       "15.06.2024",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, record.DurationDays)
}

func TestSubmitBreakRequest(t *testing.T) {
	workflow, notifier := createWorkflow(t, createDocument(t))
	record, err := workflow.Submit(Submission{
		Kind:      KindBreak,
		Submitter: Identity{Id: 2, Name: "bob", Roles: []string{"Driver"}},
		Start:     "12:00",
		End:       "13:20",
	})
	require.NoError(t, err)
	assert.Equal(t, 80, record.DurationMinutes)
	assert.Equal(t, "1h 20m", record.FormatDuration())
	require.Len(t, notifier.channelIds, 1)
	assert.Equal(t, int64(103), notifier.channelIds[0])
}

func TestSubmitBreakAcrossMidnight(t *testing.T) {
	workflow, _ := createWorkflow(t, createDocument(t))
	record, err := workflow.Submit(Submission{
		Kind:      KindBreak,
		Submitter: Identity{Id: 2, Name: "bob", Roles: []string{"Driver"}},
		Start:     "23:50",
		End:       "00:10",
	})
	require.NoError(t, err)

	// an end at or before the start is taken to be on the next day
	assert.Equal(t, 20, record.DurationMinutes)
}

func TestSubmitValidation(t *testing.T) {
	workflow, notifier := createWorkflow(t, createDocument(t))
	submitter := Identity{Id: 1, Name: "alice", Roles: []string{"Medic"}}

	for _, submission := range []Submission{
		{Kind: "sabbatical", Submitter: submitter, Start: "01.03.2024", End: "03.03.2024"},
		{Kind: KindIccVacation, Submitter: submitter, Start: "2024-03-01", End: "03.03.2024"},
		{Kind: KindIccVacation, Submitter: submitter, Start: "01.03.2024", End: "garbage"},
		{Kind: KindIccVacation, Submitter: submitter, Start: "03.03.2024", End: "01.03.2024"},
		{Kind: KindBreak, Submitter: submitter, Start: "12h00", End: "13:00"},
		{Kind: KindBreak, Submitter: submitter, Start: "12:00", End: "25:00"},
	} {
		_, err := workflow.Submit(submission)
		require.Error(t, err)
		_, ok := AsValidationError(err)
		assert.True(t, ok, "expected a validation error for %+v", submission)
	}
	assert.Empty(t, notifier.records)
}

func TestSubmitWithoutMappedRolesStillCreatesRecord(t *testing.T) {
	workflow, notifier := createWorkflow(t, createDocument(t))
	record, err := workflow.Submit(Submission{
		Kind:      KindIccVacation,
		Submitter: Identity{Id: 3, Name: "carol", Roles: []string{"Intern"}},
		Start:     "01.03.2024",
		End:       "01.03.2024",
	})
	require.NoError(t, err)
	assert.Empty(t, record.NotifyRoles)
	assert.Empty(t, record.AuthorizedRoles)
	require.Len(t, notifier.records, 1)
}

func TestSubmitUnroutedNotification(t *testing.T) {
	document := config.Document{}
	document.SetMentionMap(map[string][]string{"Medic": {"Lead Medic"}})
	workflow, notifier := createWorkflow(t, document)

	record, err := workflow.Submit(Submission{
		Kind:      KindIccVacation,
		Submitter: Identity{Id: 1, Name: "alice", Roles: []string{"Medic"}},
		Start:     "01.03.2024",
		End:       "01.03.2024",
	})
	require.ErrorIs(t, err, ErrUnroutedNotification)

	// the record exists and is decidable even though nobody was notified
	require.NotEmpty(t, record.Id)
	assert.Equal(t, StatusPending, record.Status)
	assert.Nil(t, record.Message)
	assert.Empty(t, notifier.records)

	live, ok := workflow.Get(record.Id)
	assert.True(t, ok)
	assert.Equal(t, record.Id, live.Id())
}

func TestLedgerListing(t *testing.T) {
	workflow, _ := createWorkflow(t, createDocument(t))
	submitter := Identity{Id: 1, Name: "alice", Roles: []string{"Medic"}}
	first, err := workflow.Submit(Submission{Kind: KindIccVacation, Submitter: submitter, Start: "01.03.2024", End: "01.03.2024"})
	require.NoError(t, err)
	second, err := workflow.Submit(Submission{Kind: KindBreak, Submitter: submitter, Start: "12:00", End: "12:30"})
	require.NoError(t, err)

	requestIds, err := ListRecordIds()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{first.Id, second.Id}, requestIds)
}
