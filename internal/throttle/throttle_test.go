package throttle

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collects flushed values behind a mutex
type recorder struct {
	mu     sync.Mutex
	values []string
}

func (r *recorder) record(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.values...)
}

func TestCoalescerDefersFirstSubmitToTrailingEdge(t *testing.T) {
	rec := &recorder{}
	c := NewCoalescer(50*time.Millisecond, rec.record)
	defer c.Stop()

	c.Submit("a")

	// nothing goes out on the submit path itself
	require.Empty(t, rec.snapshot())

	assert.Eventually(t, func() bool {
		got := rec.snapshot()
		return len(got) == 1 && got[0] == "a"
	}, time.Second, 5*time.Millisecond)
}

func TestCoalescerColdBurstYieldsSingleFlushWithLastValue(t *testing.T) {
	rec := &recorder{}
	c := NewCoalescer(200*time.Millisecond, rec.record)
	defer c.Stop()

	// burst starting from idle: the first submit opens the window, the
	// later ones overwrite the pending value
	c.Submit("v1")
	c.Submit("v2")
	c.Submit("v3")

	require.Empty(t, rec.snapshot())

	assert.Eventually(t, func() bool {
		got := rec.snapshot()
		return len(got) == 1 && got[0] == "v3"
	}, time.Second, 5*time.Millisecond)

	// and nothing else arrives afterwards
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, []string{"v3"}, rec.snapshot())
}

func TestCoalescerKeepsLatestAcrossWindows(t *testing.T) {
	rec := &recorder{}
	c := NewCoalescer(80*time.Millisecond, rec.record)
	defer c.Stop()

	c.Submit("v1")

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	// a second burst right after the flush waits out a full new window
	c.Submit("v2")
	c.Submit("v3")
	c.Submit("v4")

	require.Equal(t, []string{"v1"}, rec.snapshot())

	assert.Eventually(t, func() bool {
		got := rec.snapshot()
		return len(got) == 2 && got[1] == "v4"
	}, time.Second, 5*time.Millisecond)

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, []string{"v1", "v4"}, rec.snapshot())
}

func TestCoalescerFlushForcesPendingOut(t *testing.T) {
	rec := &recorder{}
	c := NewCoalescer(time.Minute, rec.record)
	defer c.Stop()

	c.Submit("first")
	c.Submit("queued")

	require.Empty(t, rec.snapshot())

	c.Flush()
	assert.Equal(t, []string{"queued"}, rec.snapshot())

	// flush with nothing pending is a no-op
	c.Flush()
	assert.Equal(t, []string{"queued"}, rec.snapshot())
}

func TestCoalescerStopDropsPending(t *testing.T) {
	rec := &recorder{}
	c := NewCoalescer(20*time.Millisecond, rec.record)

	c.Submit("dropped")
	c.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.snapshot())

	// submits after stop are ignored
	c.Submit("late")
	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}

func TestCoalescerReopensAfterWindow(t *testing.T) {
	rec := &recorder{}
	c := NewCoalescer(30*time.Millisecond, rec.record)
	defer c.Stop()

	c.Submit("a")

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(60 * time.Millisecond)

	// window long elapsed: the next submit opens a new one
	c.Submit("b")

	assert.Eventually(t, func() bool {
		got := rec.snapshot()
		return len(got) == 2 && got[1] == "b"
	}, time.Second, 5*time.Millisecond)
}
