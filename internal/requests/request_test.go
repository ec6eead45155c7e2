package requests

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createEntry() *Entry {
	return newEntry(Record{
		Id:              "req-1",
		Kind:            KindIccVacation,
		Submitter:       Identity{Id: 1, Name: "alice", Roles: []string{"Medic"}},
		Start:           "01.03.2024",
		End:             "02.03.2024",
		NotifyRoles:     []string{"Operations"},
		AuthorizedRoles: []string{"Operations"},
		Status:          StatusPending,
	})
}

func TestEntrySnapshotIsDetached(t *testing.T) {
	entry := createEntry()
	snapshot := entry.Snapshot()

	// a snapshot is a plain value; mutating it must not reach the
	// live entry
	snapshot.Status = StatusDenied
	snapshot.NotifyRoles[0] = "Nobody"
	snapshot.AuthorizedRoles = append(snapshot.AuthorizedRoles, "Intern")

	current := entry.Snapshot()
	assert.Equal(t, StatusPending, current.Status)
	assert.Equal(t, []string{"Operations"}, current.NotifyRoles)
	assert.Equal(t, []string{"Operations"}, current.AuthorizedRoles)
}

func TestEntryDecideStampsTerminalState(t *testing.T) {
	entry := createEntry()
	reviewer := Identity{Id: 10, Name: "olivia", Roles: []string{"Operations"}}

	require.NoError(t, entry.Decide(StatusDenied, reviewer, "understaffed"))
	snapshot := entry.Snapshot()
	assert.Equal(t, StatusDenied, snapshot.Status)
	assert.Equal(t, "understaffed", snapshot.DenialReason)
	require.NotNil(t, snapshot.DecidedBy)
	assert.Equal(t, int64(10), snapshot.DecidedBy.Id)
	require.NotNil(t, snapshot.DecidedAt)

	require.ErrorIs(t, entry.Decide(StatusApproved, reviewer, ""), ErrAlreadyDecided)
	assert.Equal(t, StatusDenied, entry.Snapshot().Status)
}

func TestEntryConcurrentDecideSingleWinner(t *testing.T) {
	entry := createEntry()
	reviewer := Identity{Id: 10, Name: "olivia", Roles: []string{"Operations"}}

	statuses := []Status{StatusApproved, StatusDenied}
	results := make([]error, len(statuses))
	var waitGroup sync.WaitGroup
	for index, status := range statuses {
		waitGroup.Add(1)
		go func(index int, status Status) {
			defer waitGroup.Done()
			results[index] = entry.Decide(status, reviewer, "racing")
		}(index, status)
	}
	waitGroup.Wait()

	winners := 0
	for _, result := range results {
		if result == nil {
			winners++
		} else {
			assert.ErrorIs(t, result, ErrAlreadyDecided)
		}
	}
	assert.Equal(t, 1, winners)
}
