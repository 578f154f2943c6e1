// Package devserver implements the practice-session REST API against an
// in-memory store. It exists so the client can be developed and integration
// tested without the real backend; it is not a production service.
package devserver

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"codeberg.org/algopatterns/client/internal/gateway"
	"codeberg.org/algopatterns/client/internal/timeutil"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidTransition = errors.New("invalid session transition")
)

type storedEvent struct {
	EventType string         `json:"event_type"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type record struct {
	session *gateway.RemoteSession
	events  []storedEvent
	code    *gateway.CurrentCode
}

// manages practice sessions in memory, newest-first ordering preserved
// via the insertion log
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*record
	order    []string
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*record),
	}
}

// registers a session from a client descriptor and returns the stored copy
func (s *Store) Start(desc *gateway.SessionDescriptor) *gateway.RemoteSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	// the dev server models a single user: starting a session abandons
	// any session still running, like the real backend does
	for _, id := range s.order {
		rec := s.sessions[id]
		if rec.session.State == "active" || rec.session.State == "paused" {
			rec.session.State = "abandoned"
			rec.session.EndTime = timeutil.Now()
		}
	}

	startTime := desc.StartTime
	if startTime.IsZero() {
		startTime = timeutil.Now()
	}

	session := &gateway.RemoteSession{
		ID:            uuid.NewString(),
		SessionType:   desc.SessionType,
		State:         "active",
		QuestionID:    desc.QuestionID,
		QuestionTitle: desc.QuestionTitle,
		RoadmapID:     desc.RoadmapID,
		Difficulty:    desc.Difficulty,
		Language:      desc.Language,
		StartTime:     startTime,
		LastActivity:  startTime,
	}

	s.sessions[session.ID] = &record{session: session}
	s.order = append(s.order, session.ID)

	return copySession(session)
}

func (s *Store) Pause(sessionID string) (*gateway.RemoteSession, error) {
	return s.transition(sessionID, "active", "paused")
}

func (s *Store) Resume(sessionID string) (*gateway.RemoteSession, error) {
	return s.transition(sessionID, "paused", "active")
}

func (s *Store) transition(sessionID, from, to string) (*gateway.RemoteSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	if rec.session.State == to {
		// idempotent no-op, mirrors the real backend
		return copySession(rec.session), nil
	}

	if rec.session.State != from {
		return nil, ErrInvalidTransition
	}

	rec.session.State = to
	rec.session.LastActivity = timeutil.Now()

	return copySession(rec.session), nil
}

// ends a session; reason "completed" completes it, anything else abandons
func (s *Store) End(sessionID, reason string) (*gateway.RemoteSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	if rec.session.State == "completed" || rec.session.State == "abandoned" {
		return nil, ErrInvalidTransition
	}

	if reason == "completed" {
		rec.session.State = "completed"
		rec.session.Analytics.IsCompleted = true
	} else {
		rec.session.State = "abandoned"
	}

	now := timeutil.Now()
	rec.session.EndTime = now
	rec.session.LastActivity = now

	return copySession(rec.session), nil
}

func (s *Store) Get(sessionID string) (*gateway.RemoteSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	return copySession(rec.session), nil
}

// returns the newest session still active or paused, or nil
func (s *Store) Active() *gateway.RemoteSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.order) - 1; i >= 0; i-- {
		rec := s.sessions[s.order[i]]
		if rec.session.State == "active" || rec.session.State == "paused" {
			return copySession(rec.session)
		}
	}

	return nil
}

// lists sessions newest first
func (s *Store) List(limit int, includeActive bool) []*gateway.RemoteSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*gateway.RemoteSession, 0, len(s.order))

	for i := len(s.order) - 1; i >= 0; i-- {
		rec := s.sessions[s.order[i]]

		active := rec.session.State == "active" || rec.session.State == "paused"
		if active && !includeActive {
			continue
		}

		out = append(out, copySession(rec.session))

		if limit > 0 && len(out) >= limit {
			break
		}
	}

	return out
}

func (s *Store) AppendEvent(sessionID, eventType string, data map[string]any, timestamp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.sessions[sessionID]
	if !exists {
		return ErrSessionNotFound
	}

	if timestamp.IsZero() {
		timestamp = timeutil.Now()
	}

	rec.events = append(rec.events, storedEvent{
		EventType: eventType,
		Data:      data,
		Timestamp: timestamp,
	})

	if timestamp.After(rec.session.LastActivity) {
		rec.session.LastActivity = timestamp
	}

	// keep the analytics counters in step with the event log
	switch eventType {
	case "code_change":
		rec.session.Analytics.CodeChanges++
	case "test_run", "tests_run":
		rec.session.Analytics.TestsRun++
	case "hint_used":
		rec.session.Analytics.HintsUsed++
	case "submission", "attempt":
		rec.session.Analytics.AttemptsCount++
	}

	return nil
}

func (s *Store) SetCode(sessionID, code, language string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.sessions[sessionID]
	if !exists {
		return ErrSessionNotFound
	}

	now := timeutil.Now()

	rec.code = &gateway.CurrentCode{
		Code:      code,
		Language:  language,
		Timestamp: now,
	}

	rec.session.LastActivity = now
	rec.session.Analytics.CodeChanges++

	return nil
}

func (s *Store) GetCode(sessionID string) (*gateway.CurrentCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	if rec.code == nil {
		return nil, ErrSessionNotFound
	}

	code := *rec.code
	return &code, nil
}

// returns the session plus its current code for one-shot recovery
func (s *Store) Recovery(sessionID string) (*gateway.RemoteSession, *gateway.CurrentCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.sessions[sessionID]
	if !exists {
		return nil, nil, ErrSessionNotFound
	}

	var code *gateway.CurrentCode
	if rec.code != nil {
		c := *rec.code
		code = &c
	}

	return copySession(rec.session), code, nil
}

func copySession(s *gateway.RemoteSession) *gateway.RemoteSession {
	out := *s
	return &out
}
