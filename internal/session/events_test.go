package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBusDeliversToAllSubscribers(t *testing.T) {
	b := newBus()

	var first, second []EventKind
	b.subscribe(func(e Event) { first = append(first, e.Kind) })
	b.subscribe(func(e Event) { second = append(second, e.Kind) })

	b.publish(Event{Kind: EventStarted, At: time.Now()})
	b.publish(Event{Kind: EventPaused, At: time.Now()})

	assert.Equal(t, []EventKind{EventStarted, EventPaused}, first)
	assert.Equal(t, []EventKind{EventStarted, EventPaused}, second)
}

func TestBusUnsubscribeStopsDelivery(t *testing.T) {
	b := newBus()

	var got int
	id := b.subscribe(func(Event) { got++ })

	b.publish(Event{Kind: EventStarted})
	b.unsubscribe(id)
	b.publish(Event{Kind: EventPaused})

	assert.Equal(t, 1, got)
}

func TestBusIsolatesPanickingSubscriber(t *testing.T) {
	b := newBus()

	var delivered int
	b.subscribe(func(Event) { panic("subscriber bug") })
	b.subscribe(func(Event) { delivered++ })
	b.subscribe(func(Event) { panic("another one") })

	assert.NotPanics(t, func() {
		b.publish(Event{Kind: EventStarted})
	})

	assert.Equal(t, 1, delivered)
}

func TestStateTransitionTable(t *testing.T) {
	tests := []struct {
		from State
		to   State
		want bool
	}{
		{StateActive, StatePaused, true},
		{StateActive, StateCompleted, true},
		{StateActive, StateAbandoned, true},
		{StatePaused, StateActive, true},
		{StatePaused, StateCompleted, true},
		{StateIdle, StateActive, true},
		{StatePreparing, StateActive, true},
		{StateCompleted, StateActive, false},
		{StateAbandoned, StatePaused, false},
		{StateIdle, StatePaused, false},
		{StatePaused, StatePaused, false},
	}

	for _, tt := range tests {
		if got := canTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("canTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, StateCompleted.Terminal())
	assert.True(t, StateAbandoned.Terminal())
	assert.True(t, stateExpired.Terminal())
	assert.False(t, StateActive.Terminal())
	assert.False(t, StatePaused.Terminal())
	assert.False(t, StateIdle.Terminal())
}
