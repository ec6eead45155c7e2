package onboarding

import (
	"emsbot/internal/common"
	"emsbot/internal/config"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Outcome is the result of feeding a reply into the sequencer
type Outcome string

const (
	// OutcomeAccepted means the reply was valid, persisted, and the
	// sequencer moved on to the next key
	OutcomeAccepted Outcome = "accepted"

	// OutcomeRejected means the reply was observed but not usable; the
	// key stays at the front of the queue and the prompt stands
	OutcomeRejected Outcome = "rejected"

	// OutcomeIgnored means the sequencer wasn't waiting for anything
	OutcomeIgnored Outcome = "ignored"
)

// Messenger is the administrative surface the sequencer prompts on
type Messenger interface {
	SendMessage(text string) error
}

var prompts = map[config.ChannelKey]string{
	config.ChannelKeyRequest:     "Enter the ID of the channel where requests are submitted:",
	config.ChannelKeyIccVacation: "Enter the ID of the channel for ICC vacation notices:",
	config.ChannelKeyOcVacation:  "Enter the ID of the channel for OC vacation notices:",
	config.ChannelKeyBreak:       "Enter the ID of the channel for break notices:",
}

type NewSequencerOpts struct {
	Store       *config.Store
	Document    config.Document
	Admin       Messenger
	ServiceLogs chan<- common.ServiceLog
}

// Sequencer walks the unset channel bindings one at a time: it prompts
// for the front of the queue, waits for exactly one qualifying reply,
// persists it, and only then moves on. Invalid replies keep the key at
// the front so the configured order survives retries
type Sequencer struct {
	store       *config.Store
	admin       Messenger
	serviceLogs chan<- common.ServiceLog

	mutex    sync.Mutex
	queue    []config.ChannelKey
	awaiting bool
}

// NewSequencer seeds the queue with the channel keys that are still
// unset in the provided document, in their canonical order
func NewSequencer(opts NewSequencerOpts) *Sequencer {
	serviceLogs := opts.ServiceLogs
	if serviceLogs == nil {
		serviceLogs = common.GetNoopServiceLog()
	}
	sequencer := &Sequencer{
		store:       opts.Store,
		admin:       opts.Admin,
		serviceLogs: serviceLogs,
	}
	for _, key := range config.ChannelKeys {
		if _, ok := opts.Document.ChannelId(key); !ok {
			sequencer.queue = append(sequencer.queue, key)
		}
	}
	return sequencer
}

// Start emits the prompt for the front of the queue unless a prompt is
// already in flight or there is nothing left to ask
func (s *Sequencer) Start() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.startLocked()
}

func (s *Sequencer) startLocked() {
	if s.awaiting || len(s.queue) == 0 {
		return
	}
	key := s.queue[0]
	if err := s.admin.SendMessage(prompts[key]); err != nil {
		s.serviceLogs <- common.ServiceLogf(common.LogLevelError, "failed to prompt for key[%s]: %s", key, err)
		return
	}
	s.serviceLogs <- common.ServiceLogf(common.LogLevelInfo, "awaiting a value for key[%s]", key)
	s.awaiting = true
}

// SubmitReply consumes one reply from the administrative surface. The
// reply must parse as a non-zero decimal channel ID; otherwise the key
// is kept at the front and the caller may try again. On success the
// updated document is persisted before the next prompt goes out, so a
// crash never loses an accepted answer
func (s *Sequencer) SubmitReply(raw string) Outcome {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.awaiting || len(s.queue) == 0 {
		return OutcomeIgnored
	}
	key := s.queue[0]
	channelId, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || channelId == 0 {
		s.serviceLogs <- common.ServiceLogf(common.LogLevelWarn, "received an invalid value for key[%s]: '%s'", key, raw)
		s.notify(fmt.Sprintf("That doesn't look like a channel ID, try again.\n%s", prompts[key]))
		return OutcomeRejected
	}
	if err := s.store.Update(func(document config.Document) error {
		document.SetChannelId(key, channelId)
		return nil
	}); err != nil {
		// the write didn't land, so the in-memory queue must not
		// advance either: a retry of the same reply stays safe
		s.serviceLogs <- common.ServiceLogf(common.LogLevelError, "failed to persist key[%s]: %s", key, err)
		s.notify(fmt.Sprintf("Failed to save %s, please send the value again.", key))
		return OutcomeRejected
	}
	s.queue = s.queue[1:]
	s.awaiting = false
	s.serviceLogs <- common.ServiceLogf(common.LogLevelInfo, "set key[%s] to channel[%v]", key, channelId)
	s.notify(fmt.Sprintf("Saved %s = %v", key, channelId))
	s.startLocked()
	return OutcomeAccepted
}

// IsComplete reports whether every channel binding has been collected;
// request entry points must not be published before this returns true
func (s *Sequencer) IsComplete() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.queue) == 0
}

// Pending returns the keys still waiting for a value, front first
func (s *Sequencer) Pending() []config.ChannelKey {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	pending := make([]config.ChannelKey, len(s.queue))
	copy(pending, s.queue)
	return pending
}

func (s *Sequencer) notify(text string) {
	if err := s.admin.SendMessage(text); err != nil {
		s.serviceLogs <- common.ServiceLogf(common.LogLevelError, "failed to send notice to the administrative surface: %s", err)
	}
}
