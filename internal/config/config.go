package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ChannelKey identifies one of the channel bindings in the workflow
// configuration document
type ChannelKey string

const (
	ChannelKeyRequest     ChannelKey = "request_channel_id"
	ChannelKeyIccVacation ChannelKey = "icc_vacation_channel_id"
	ChannelKeyOcVacation  ChannelKey = "oc_vacation_channel_id"
	ChannelKeyBreak       ChannelKey = "break_channel_id"
)

// ChannelKeys lists the channel bindings in the order the onboarding
// sequencer asks for them
var ChannelKeys = []ChannelKey{
	ChannelKeyRequest,
	ChannelKeyIccVacation,
	ChannelKeyOcVacation,
	ChannelKeyBreak,
}

const KeyMentionMap = "mention_map"

// KeyMemberRoles maps a member's platform ID to the role names they
// hold; the chat platform itself has no notion of named roles, so
// role membership is part of the workflow configuration
const KeyMemberRoles = "member_roles"

var ErrNotFound = errors.New("configuration document not found")

// Document is the workflow configuration document; keys we don't know
// about are carried as raw JSON so a save never strips them
type Document map[string]json.RawMessage

// ChannelId returns the channel bound to `key`, with a false second
// return when the key is unset or unparseable
func (d Document) ChannelId(key ChannelKey) (int64, bool) {
	raw, ok := d[string(key)]
	if !ok {
		return 0, false
	}
	var channelId int64
	if err := json.Unmarshal(raw, &channelId); err != nil {
		return 0, false
	}
	if channelId == 0 {
		return 0, false
	}
	return channelId, true
}

func (d Document) SetChannelId(key ChannelKey, channelId int64) {
	raw, _ := json.Marshal(channelId)
	d[string(key)] = raw
}

// MentionMap returns the role mention map; a missing or malformed
// entry yields an empty map rather than an error since an unconfigured
// map is a valid state
func (d Document) MentionMap() map[string][]string {
	mentionMap := map[string][]string{}
	raw, ok := d[KeyMentionMap]
	if !ok {
		return mentionMap
	}
	if err := json.Unmarshal(raw, &mentionMap); err != nil {
		return map[string][]string{}
	}
	return mentionMap
}

func (d Document) SetMentionMap(mentionMap map[string][]string) {
	raw, _ := json.Marshal(mentionMap)
	d[KeyMentionMap] = raw
}

// MemberRoles returns the roles held by the member with the given
// platform ID; an unknown member holds no roles
func (d Document) MemberRoles(memberId int64) []string {
	raw, ok := d[KeyMemberRoles]
	if !ok {
		return nil
	}
	memberRoles := map[string][]string{}
	if err := json.Unmarshal(raw, &memberRoles); err != nil {
		return nil
	}
	return memberRoles[fmt.Sprintf("%v", memberId)]
}

// SetMemberRoles replaces the role set of one member wholesale
func (d Document) SetMemberRoles(memberId int64, roles []string) {
	memberRoles := map[string][]string{}
	if raw, ok := d[KeyMemberRoles]; ok {
		json.Unmarshal(raw, &memberRoles)
	}
	memberRoles[fmt.Sprintf("%v", memberId)] = roles
	raw, _ := json.Marshal(memberRoles)
	d[KeyMemberRoles] = raw
}

// Store owns the configuration document on disk. Every mutation is a
// full-document overwrite, so read-modify-write cycles are serialised
// behind a mutex; cross-process locking is out of scope since exactly
// one bot process runs against a document
type Store struct {
	Path string

	mutex sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load reads and parses the document; a missing file surfaces as a
// wrapped ErrNotFound so callers can seed defaults
func (s *Store) Load() (Document, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read document at path[%s]: %w", s.Path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read document at path[%s]: %w", s.Path, err)
	}
	var document Document
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("failed to parse document at path[%s]: %w", s.Path, err)
	}
	return document, nil
}

// Save overwrites the document atomically with respect to the process
// by writing to a temporary file and renaming it over the target
func (s *Store) Save(document Document) error {
	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	directory := filepath.Dir(s.Path)
	temporaryFile, err := os.CreateTemp(directory, filepath.Base(s.Path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in directory[%s]: %w", directory, err)
	}
	temporaryPath := temporaryFile.Name()
	if _, err := temporaryFile.Write(data); err != nil {
		temporaryFile.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("failed to write document to path[%s]: %w", temporaryPath, err)
	}
	if err := temporaryFile.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("failed to close document at path[%s]: %w", temporaryPath, err)
	}
	if err := os.Chmod(temporaryPath, 0644); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("failed to set mode of document at path[%s]: %w", temporaryPath, err)
	}
	if err := os.Rename(temporaryPath, s.Path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("failed to move document to path[%s]: %w", s.Path, err)
	}
	return nil
}

// Update runs a read-modify-write cycle as a critical section; when
// the document doesn't exist yet an empty one is passed to `modify`.
// When `modify` or the save fails, the on-disk document is untouched
// and a retry is safe
func (s *Store) Update(modify func(Document) error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	document, err := s.Load()
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		document = Document{}
	}
	if err := modify(document); err != nil {
		return err
	}
	return s.Save(document)
}

// Describe renders the document as indented JSON for display on the
// administrative surface
func (s *Store) Describe() (string, error) {
	document, err := s.Load()
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal document: %w", err)
	}
	return string(data), nil
}
