package state

import (
	"errors"
	"sync"
	"time"

	"github.com/five82/hitcard/internal/session"
)

// Snapshot is the latest published session plus bookkeeping for readers.
type Snapshot struct {
	Session     session.State `json:"session"`
	Phase       session.Phase `json:"phase"`
	Version     uint64        `json:"version"`
	LastUpdated time.Time     `json:"lastUpdated"`
	LastError   error         `json:"-"`
	LastErrorAt time.Time     `json:"-"`
}

// HasError reports whether an error was recorded since the last page change.
func (s Snapshot) HasError() bool {
	return s.LastError != nil
}

// Store coordinates concurrent access to the snapshot. The zero value is ready
// to use.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	now      func() time.Time
}

func (s *Store) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// Update publishes a new session state. A page change clears any recorded
// error since it belonged to the previous screen.
func (s *Store) Update(st session.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.Page != s.snapshot.Session.Page {
		s.snapshot.LastError = nil
		s.snapshot.LastErrorAt = time.Time{}
	}
	s.snapshot.Session = st.Clone()
	s.snapshot.Phase = st.Phase()
	s.snapshot.Version++
	s.snapshot.LastUpdated = s.clock()
}

// RecordError keeps err for display without touching the session.
func (s *Store) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.LastError = err
	s.snapshot.LastErrorAt = s.clock()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Session = s.snapshot.Session.Clone()
	if s.snapshot.LastError != nil {
		snap.LastError = errors.New(s.snapshot.LastError.Error())
	}
	return snap
}
