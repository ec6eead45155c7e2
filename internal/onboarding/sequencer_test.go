package onboarding

import (
	"emsbot/internal/config"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessenger struct {
	messages []string
	err      error
}

func (f *fakeMessenger) SendMessage(text string) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, text)
	return nil
}

func createSequencer(t *testing.T, document config.Document) (*Sequencer, *config.Store, *fakeMessenger) {
	store := config.NewStore(filepath.Join(t.TempDir(), "emsbot.json"))
	messenger := &fakeMessenger{}
	sequencer := NewSequencer(NewSequencerOpts{
		Store:    store,
		Document: document,
		Admin:    messenger,
	})
	return sequencer, store, messenger
}

func TestSequencerSeedsOnlyUnsetKeys(t *testing.T) {
	document := config.Document{}
	document.SetChannelId(config.ChannelKeyRequest, 100)
	sequencer, _, _ := createSequencer(t, document)
	assert.Equal(t, []config.ChannelKey{
		config.ChannelKeyIccVacation,
		config.ChannelKeyOcVacation,
		config.ChannelKeyBreak,
	}, sequencer.Pending())
	assert.False(t, sequencer.IsComplete())
}

func TestSequencerCompleteDocument(t *testing.T) {
	document := config.Document{}
	for _, key := range config.ChannelKeys {
		document.SetChannelId(key, 100)
	}
	sequencer, _, messenger := createSequencer(t, document)
	assert.True(t, sequencer.IsComplete())
	sequencer.Start()
	assert.Empty(t, messenger.messages)
}

func TestSequencerIgnoresRepliesBeforeStart(t *testing.T) {
	sequencer, _, _ := createSequencer(t, config.Document{})
	assert.Equal(t, OutcomeIgnored, sequencer.SubmitReply("12345"))
}

func TestSequencerRejectsInvalidReplies(t *testing.T) {
	sequencer, store, messenger := createSequencer(t, config.Document{})
	sequencer.Start()
	require.Len(t, messenger.messages, 1)

	assert.Equal(t, OutcomeRejected, sequencer.SubmitReply("not a channel"))
	assert.Equal(t, OutcomeRejected, sequencer.SubmitReply("0"))

	// the front of the queue must not move
	assert.Equal(t, config.ChannelKeyRequest, sequencer.Pending()[0])
	_, err := store.Load()
	assert.ErrorIs(t, err, config.ErrNotFound)
}

func TestSequencerWalksTheQueueInOrder(t *testing.T) {
	sequencer, store, messenger := createSequencer(t, config.Document{})
	sequencer.Start()

	for index := range config.ChannelKeys {
		outcome := sequencer.SubmitReply(fmt.Sprintf(" %v \n", 1000+index))
		assert.Equal(t, OutcomeAccepted, outcome)
	}
	assert.True(t, sequencer.IsComplete())

	document, err := store.Load()
	require.NoError(t, err)
	for index, key := range config.ChannelKeys {
		channelId, ok := document.ChannelId(key)
		assert.True(t, ok)
		assert.Equal(t, int64(1000+index), channelId)
	}

	// each accepted reply is followed by a confirmation and, until the
	// queue drains, the next prompt
	assert.Equal(t, prompts[config.ChannelKeyRequest], messenger.messages[0])
	assert.Contains(t, messenger.messages, prompts[config.ChannelKeyBreak])
}

func TestSequencerStaysPutWhenPersistFails(t *testing.T) {
	// a store pointing at a directory that can't be created makes the
	// save fail while the parse succeeds
	store := config.NewStore(filepath.Join(t.TempDir(), "missing", "emsbot.json"))
	messenger := &fakeMessenger{}
	sequencer := NewSequencer(NewSequencerOpts{
		Store:    store,
		Document: config.Document{},
		Admin:    messenger,
	})
	sequencer.Start()
	assert.Equal(t, OutcomeRejected, sequencer.SubmitReply("12345"))
	assert.Equal(t, config.ChannelKeyRequest, sequencer.Pending()[0])
}
