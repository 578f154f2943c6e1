package tui

import (
	"time"

	"codeberg.org/algopatterns/client/internal/session"
)

// represents the current state of the TUI
type AppState int

const (
	StateStatus AppState = iota
	StateDone
)

// main TUI application model
type Model struct {
	state        AppState
	orch         *session.Orchestrator
	events       chan session.Event
	subscriberID int
	width        int
	height       int
	err          error
	lastEvent    string
	quitting     bool
}

// sent once a second to refresh the elapsed timer
type tickMsg time.Time

// wraps an orchestrator event for the update loop
type sessionEventMsg struct {
	event session.Event
}
