package store

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	opts.Dir = t.TempDir()
	s, err := New(opts)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s := newTestStore(t, Options{})
	st := s.Load()
	if st.SessionID != "" || len(st.Transcript) != 0 {
		t.Errorf("expected empty state, got %+v", st)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t, Options{})

	msgs := []Message{
		{Sender: SenderUser, Text: "שלום", Timestamp: 1},
		{Sender: SenderBot, Text: "שלום! איך אפשר לעזור?", Timestamp: 2},
	}
	if err := s.Save("sess-1", msgs); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	st := s.Load()
	if st.SessionID != "sess-1" {
		t.Errorf("session id = %q, want sess-1", st.SessionID)
	}
	if len(st.Transcript) != 2 {
		t.Fatalf("transcript length = %d, want 2", len(st.Transcript))
	}
	if st.Transcript[1].Text != "שלום! איך אפשר לעזור?" {
		t.Errorf("unexpected message: %+v", st.Transcript[1])
	}
	if st.LastActivity.IsZero() {
		t.Error("LastActivity not stamped")
	}
}

func TestTranscriptCap(t *testing.T) {
	s := newTestStore(t, Options{TranscriptCap: 50})

	var msgs []Message
	for i := 0; i < 60; i++ {
		msgs = append(msgs, Message{Sender: SenderUser, Text: fmt.Sprintf("msg %d", i), Timestamp: int64(i)})
	}
	if err := s.Save("sess-1", msgs); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	st := s.Load()
	if len(st.Transcript) != 50 {
		t.Fatalf("stored %d messages, want 50", len(st.Transcript))
	}
	if st.Transcript[0].Text != "msg 10" {
		t.Errorf("first kept message = %q, want msg 10", st.Transcript[0].Text)
	}
	if st.Transcript[49].Text != "msg 59" {
		t.Errorf("last kept message = %q, want msg 59 (most recent last)", st.Transcript[49].Text)
	}
}

func TestLoadCorruptFilePurged(t *testing.T) {
	s := newTestStore(t, Options{})

	path := filepath.Join(s.dir, stateFileName)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	st := s.Load()
	if st.SessionID != "" {
		t.Errorf("expected empty state from corrupt file, got %+v", st)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt state file was not purged")
	}
}

func TestLoadExpiredSessionDiscarded(t *testing.T) {
	s := newTestStore(t, Options{InactivityWindow: 30 * time.Minute})

	st := State{SessionID: "old", LastActivity: time.Now().Add(-time.Hour)}
	writeState(t, s, st)

	if got := s.Load(); got.SessionID != "" {
		t.Errorf("expired session survived load: %+v", got)
	}
}

func TestLoadFreshSessionKept(t *testing.T) {
	s := newTestStore(t, Options{InactivityWindow: 30 * time.Minute})

	st := State{SessionID: "fresh", LastActivity: time.Now().Add(-time.Minute)}
	writeState(t, s, st)

	if got := s.Load(); got.SessionID != "fresh" {
		t.Errorf("fresh session lost: %+v", got)
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t, Options{})
	if err := s.Save("sess-1", nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if st := s.Load(); st.SessionID != "" {
		t.Errorf("state survived Clear: %+v", st)
	}
	// Clearing twice is fine.
	if err := s.Clear(); err != nil {
		t.Errorf("second Clear failed: %v", err)
	}
}

// writeState writes a state file directly, bypassing Save's activity stamp.
func writeState(t *testing.T, s *Store, st State) {
	t.Helper()
	raw := fmt.Sprintf(`{"session_id":%q,"transcript":[],"last_activity":%q}`,
		st.SessionID, st.LastActivity.Format(time.RFC3339))
	if err := os.WriteFile(s.path(), []byte(raw), 0644); err != nil {
		t.Fatalf("write state: %v", err)
	}
}
