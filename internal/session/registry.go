// Package session holds the per-user chat event logs. Each log has exactly
// one writer (the orchestrator goroutine that was started with it) and at
// most one consumer (the progress stream). Starting a new chat replaces the
// user's entry, so a stale orchestrator keeps appending to its own orphaned
// log and never interleaves with the new one.
package session

import (
	"sync"

	"github.com/liftlog/coach/internal/model"
	appErr "github.com/liftlog/coach/internal/pkg/errors"
)

type Session struct {
	mu       sync.Mutex
	events   []model.Event
	terminal bool
}

// Append adds one event to the log. Appending anything after a terminal event
// is a programming error and is dropped.
func (s *Session) Append(ev model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminal {
		return
	}
	s.events = append(s.events, ev)
	if ev.Kind == model.EventTerminal {
		s.terminal = true
	}
}

// snapshot returns events from offset onward and whether the log has reached
// its terminal event.
func (s *Session) snapshot(from int) ([]model.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if from < 0 || from > len(s.events) {
		from = len(s.events)
	}
	tail := make([]model.Event, len(s.events)-from)
	copy(tail, s.events[from:])
	return tail, s.terminal
}

type Registry struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[int64]*Session)}
}

// Start creates a fresh session for the user, replacing any in-flight one.
// The returned session is the only handle its orchestrator should write to.
func (r *Registry) Start(userID int64) *Session {
	s := &Session{}
	r.mu.Lock()
	r.sessions[userID] = s
	r.mu.Unlock()
	return s
}

// Snapshot returns the user's events from offset onward plus whether the
// terminal event is included. ErrNotFound when the user has no session.
func (r *Registry) Snapshot(userID int64, from int) ([]model.Event, bool, error) {
	r.mu.Lock()
	s, ok := r.sessions[userID]
	r.mu.Unlock()
	if !ok {
		return nil, false, appErr.ErrNotFound
	}
	events, terminal := s.snapshot(from)
	return events, terminal, nil
}

// Clear evicts the user's session once its terminal event has been delivered.
// A session that was replaced in the meantime is left alone.
func (r *Registry) Clear(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if !ok {
		return
	}
	s.mu.Lock()
	terminal := s.terminal
	s.mu.Unlock()
	if terminal {
		delete(r.sessions, userID)
	}
}
