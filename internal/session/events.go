package session

import (
	"sync"
	"time"

	"codeberg.org/algopatterns/client/internal/logger"
)

// closed set of lifecycle notifications the orchestrator emits
type EventKind string

const (
	EventStarted          EventKind = "STARTED"
	EventPaused           EventKind = "PAUSED"
	EventResumed          EventKind = "RESUMED"
	EventCompleted        EventKind = "COMPLETED"
	EventAbandoned        EventKind = "ABANDONED"
	EventError            EventKind = "ERROR"
	EventInitialized      EventKind = "INITIALIZED"
	EventStateSyncRequest EventKind = "STATE_SYNC_REQUEST"
)

// payload delivered to subscribers. Fields are populated per kind:
// SessionID and State for lifecycle events, HasSession for INITIALIZED,
// Reason for PAUSED/COMPLETED/ABANDONED, Err for ERROR.
type Event struct {
	Kind       EventKind
	SessionID  string
	State      State
	Reason     string
	HasSession bool
	Err        error
	At         time.Time
}

// fan-out bus for orchestrator events. Subscribers register and
// unregister independently; a panicking subscriber is isolated so the
// remaining subscribers are still notified.
type bus struct {
	mu          sync.Mutex
	nextID      int
	subscribers map[int]func(Event)
}

func newBus() *bus {
	return &bus{subscribers: make(map[int]func(Event))}
}

// registers a subscriber and returns its handle
func (b *bus) subscribe(fn func(Event)) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subscribers[b.nextID] = fn

	return b.nextID
}

// removes a subscriber by handle
func (b *bus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, id)
}

// delivers the event to every subscriber on the caller's goroutine
func (b *bus) publish(event Event) {
	b.mu.Lock()
	subscribers := make([]func(Event), 0, len(b.subscribers))
	for _, fn := range b.subscribers {
		subscribers = append(subscribers, fn)
	}
	b.mu.Unlock()

	for _, fn := range subscribers {
		notify(fn, event)
	}
}

func notify(fn func(Event), event Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("session event subscriber panicked",
				"event", string(event.Kind),
				"panic", r,
			)
		}
	}()

	fn(event)
}
