package session

import (
	"time"
)

// kind of practice activity a session tracks
type Type string

const (
	TypeDailyChallenge   Type = "daily_challenge"
	TypeRoadmapChallenge Type = "roadmap_challenge"
	TypePractice         Type = "practice"
	TypeAssessment       Type = "assessment"
)

// lifecycle state of a session
type State string

const (
	StateIdle      State = "idle"
	StatePreparing State = "preparing"
	StateActive    State = "active"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
	StateAbandoned State = "abandoned"
	StateError     State = "error"

	// remote-only terminal state; never held locally but must be
	// recognized (and rejected) during recovery
	stateExpired State = "expired"
)

// reports whether the state permits no further transitions
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateAbandoned || s == stateExpired
}

// explicit transition table: the single enforced policy for which
// lifecycle moves are legal. Illegal moves are rejected here, not by
// per-method ad hoc guards.
var transitions = map[State][]State{
	StateIdle:      {StatePreparing, StateActive, StateError},
	StatePreparing: {StateActive, StateAbandoned, StateError},
	StateActive:    {StatePaused, StateCompleted, StateAbandoned, StateError},
	StatePaused:    {StateActive, StateCompleted, StateAbandoned, StateError},
	StateCompleted: {},
	StateAbandoned: {},
	StateError:     {StateIdle, StateActive},
}

// reports whether moving from one state to another is allowed
func canTransition(from, to State) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}

	return false
}

// monotonically non-decreasing activity counters for a session
type Analytics struct {
	CodeChanges   int
	TestsRun      int
	HintsUsed     int
	AttemptsCount int
	IsCompleted   bool
}

// one entry in the append-only session event log
type KeyEvent struct {
	Type      string
	Timestamp time.Time
	Data      map[string]any
}

// one captured editor state
type CodeSnapshot struct {
	Timestamp time.Time
	Code      string
	Language  string
	Length    int
}

// most recent snapshots retained per session
const maxCodeSnapshots = 20

// the single mutable practice-session entity. Only the orchestrator may
// mutate it; consumers receive copies.
type Session struct {
	ID            string
	Type          Type
	State         State
	StartTime     time.Time
	LastActivity  time.Time
	EndTime       time.Time
	QuestionID    string
	QuestionTitle string
	RoadmapID     string
	Difficulty    string
	Language      string
	Analytics     Analytics
	KeyEvents     []KeyEvent
	CodeSnapshots []CodeSnapshot
	RemoteSynced  bool
	RemoteID      string
	NeedsRecovery bool
}

// bumps lastActivity, keeping it monotonically non-decreasing
func (s *Session) touch(now time.Time) {
	if now.After(s.LastActivity) {
		s.LastActivity = now
	}
}

// appends to the event log and updates activity
func (s *Session) appendEvent(eventType string, data map[string]any, now time.Time) {
	s.KeyEvents = append(s.KeyEvents, KeyEvent{
		Type:      eventType,
		Timestamp: now,
		Data:      data,
	})

	s.touch(now)
}

// pushes a snapshot into the fixed-size ring, evicting the oldest entry
// once the cap is reached
func (s *Session) pushSnapshot(code, language string, now time.Time) {
	snapshot := CodeSnapshot{
		Timestamp: now,
		Code:      code,
		Language:  language,
		Length:    len(code),
	}

	if len(s.CodeSnapshots) >= maxCodeSnapshots {
		overflow := len(s.CodeSnapshots) - maxCodeSnapshots + 1
		s.CodeSnapshots = append(s.CodeSnapshots[:0], s.CodeSnapshots[overflow:]...)
	}

	s.CodeSnapshots = append(s.CodeSnapshots, snapshot)
	s.touch(now)
}

// returns the newest snapshot, or nil when none were recorded
func (s *Session) latestSnapshot() *CodeSnapshot {
	if len(s.CodeSnapshots) == 0 {
		return nil
	}

	snap := s.CodeSnapshots[len(s.CodeSnapshots)-1]
	return &snap
}

// returns a detached copy so callers cannot mutate orchestrator state
func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}

	out := *s

	out.KeyEvents = append([]KeyEvent(nil), s.KeyEvents...)
	out.CodeSnapshots = append([]CodeSnapshot(nil), s.CodeSnapshots...)

	return &out
}

// reports whether the value is one of the known session types
func ValidType(t Type) bool {
	switch t {
	case TypeDailyChallenge, TypeRoadmapChallenge, TypePractice, TypeAssessment:
		return true
	default:
		return false
	}
}
