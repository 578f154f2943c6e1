// Package throttle provides a keep-latest write coalescer: at most one
// flush per window, with the last submitted value guaranteed to be flushed
// at the trailing edge of the window.
package throttle

import (
	"sync"
	"time"
)

// coalesces a stream of values into rate-limited flushes. A submit never
// flushes on the caller's path: the first submit opens a window, every
// submit inside it replaces the pending value, and a single deferred flush
// carries the newest value at the trailing edge. Intermediate values are
// dropped, the last always survives.
type Coalescer[T any] struct {
	mu        sync.Mutex
	window    time.Duration
	flush     func(T)
	timer     *time.Timer
	pending   T
	hasPend   bool
	lastFlush time.Time
	stopped   bool
}

// creates a coalescer that invokes flush at most once per window
func NewCoalescer[T any](window time.Duration, flush func(T)) *Coalescer[T] {
	return &Coalescer[T]{
		window: window,
		flush:  flush,
	}
}

// hands a value to the coalescer. Never flushes on the caller's goroutine;
// the value waits for the trailing edge of the window, where a burst will
// have overwritten it with the newest submission.
func (c *Coalescer[T]) Submit(value T) {
	c.mu.Lock()

	if c.stopped {
		c.mu.Unlock()
		return
	}

	now := time.Now()

	// an idle coalescer opens a fresh window at the first submit
	if now.Sub(c.lastFlush) >= c.window && !c.hasPend {
		c.lastFlush = now
	}

	// keep only the newest value and (re)arm a single trailing-edge timer
	// for the remainder of the window
	c.pending = value
	c.hasPend = true

	if c.timer != nil {
		c.timer.Stop()
	}

	remaining := c.window - now.Sub(c.lastFlush)
	if remaining < 0 {
		remaining = 0
	}

	c.timer = time.AfterFunc(remaining, c.fireTrailing)
	c.mu.Unlock()
}

func (c *Coalescer[T]) fireTrailing() {
	c.mu.Lock()

	if c.stopped || !c.hasPend {
		c.mu.Unlock()
		return
	}

	value := c.pending
	var zero T
	c.pending = zero
	c.hasPend = false
	c.lastFlush = time.Now()
	c.timer = nil

	c.mu.Unlock()
	c.flush(value)
}

// forces any pending value out immediately
func (c *Coalescer[T]) Flush() {
	c.mu.Lock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	c.mu.Unlock()
	c.fireTrailing()
}

// drops any pending value but keeps the coalescer usable
func (c *Coalescer[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	c.pending = zero
	c.hasPend = false
	c.lastFlush = time.Time{}

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// drops any pending value and prevents further flushes
func (c *Coalescer[T]) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	c.hasPend = false

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
