// Package store persists the client session and conversation transcript
// across runs. It is a cache of server-side state, not a source of truth:
// malformed data on disk is treated as absent and purged.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yonatanbot/yonatan/pkg/config"
)

const stateFileName = "state.json"

// Sender identifies who produced a transcript message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one transcript entry.
type Message struct {
	ID        string `json:"id,omitempty"`
	Sender    Sender `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// State is the persisted client state.
type State struct {
	SessionID    string    `json:"session_id"`
	Transcript   []Message `json:"transcript"`
	LastActivity time.Time `json:"last_activity"`
}

// Store reads and writes the state file.
type Store struct {
	dir              string
	transcriptCap    int
	inactivityWindow time.Duration
}

// Options configures a Store. Zero values get defaults; Dir overrides the OS
// config directory (used by tests).
type Options struct {
	Dir              string
	TranscriptCap    int
	InactivityWindow time.Duration
}

// New creates a Store rooted at the user config dir unless overridden.
func New(opts Options) (*Store, error) {
	dir := opts.Dir
	if dir == "" {
		var err error
		dir, err = config.GetConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve state directory: %w", err)
		}
	}

	cap := opts.TranscriptCap
	if cap <= 0 {
		cap = config.DefaultTranscriptCap
	}
	window := opts.InactivityWindow
	if window <= 0 {
		window = config.DefaultInactivityWindow
	}

	return &Store{dir: dir, transcriptCap: cap, inactivityWindow: window}, nil
}

func (s *Store) path() string {
	return filepath.Join(s.dir, stateFileName)
}

// Load returns the stored state. It never fails on bad data: a missing,
// corrupt, or expired state file yields empty defaults, and corrupt files are
// removed so they do not resurface.
func (s *Store) Load() State {
	data, err := os.ReadFile(s.path())
	if err != nil {
		return State{}
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		_ = os.Remove(s.path())
		return State{}
	}

	if !st.LastActivity.IsZero() && time.Since(st.LastActivity) > s.inactivityWindow {
		// The server-side session has lapsed; start fresh.
		_ = os.Remove(s.path())
		return State{}
	}

	return st
}

// Save writes the state, truncating the transcript to the most recent entries
// and stamping the activity time.
func (s *Store) Save(sessionID string, transcript []Message) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	st := State{
		SessionID:    sessionID,
		Transcript:   truncate(transcript, s.transcriptCap),
		LastActivity: time.Now(),
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(), data, 0644)
}

// Clear removes the state file.
func (s *Store) Clear() error {
	err := os.Remove(s.path())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// truncate keeps the last n messages, most recent last.
func truncate(msgs []Message, n int) []Message {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}
