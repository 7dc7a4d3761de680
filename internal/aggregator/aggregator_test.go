package aggregator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances virtual time on every After call, so the poll loop runs
// instantly and deterministically. onTick, when set, runs after each advance
// and can inject late photos.
type fakeClock struct {
	now    time.Time
	onTick func(now time.Time)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	if c.onTick != nil {
		c.onTick(c.now)
	}
	return ch
}

func testAgg(clock Clock) *Aggregator {
	return New(DefaultConfig(), clock, nil)
}

func TestBatchCollectsAllPhotosOnce(t *testing.T) {
	clock := newFakeClock()
	a := testAgg(clock)

	require.True(t, a.Add("g1", []byte("p1")))
	require.False(t, a.Add("g1", []byte("p2")))
	require.Equal(t, 2, a.Size("g1"))

	photos := a.AwaitCompletion(context.Background(), "g1")
	require.Len(t, photos, 2)
	assert.Equal(t, []byte("p1"), photos[0])
	assert.Equal(t, []byte("p2"), photos[1])

	// Already consumed: a duplicate trigger yields nothing to process.
	assert.Nil(t, a.AwaitCompletion(context.Background(), "g1"))
	assert.Equal(t, 0, a.Size("g1"))
}

func TestIdleCompletionLatency(t *testing.T) {
	clock := newFakeClock()
	a := testAgg(clock)
	start := clock.Now()

	a.Add("g1", []byte("p1"))
	a.AwaitCompletion(context.Background(), "g1")

	// Quiet batch completes at the idle threshold, well under the ceiling.
	assert.Equal(t, time.Second, clock.Now().Sub(start))
}

func TestMaxWaitCeilingUnderConstantArrivals(t *testing.T) {
	clock := newFakeClock()
	a := testAgg(clock)
	start := clock.Now()

	a.Add("g1", []byte("p"))
	clock.onTick = func(now time.Time) {
		// A photo lands on every poll, so the batch never goes idle.
		if now.Sub(start) < 3*time.Second {
			a.Add("g1", []byte("p"))
		}
	}

	photos := a.AwaitCompletion(context.Background(), "g1")
	assert.Equal(t, 3*time.Second, clock.Now().Sub(start))
	require.NotEmpty(t, photos)
	assert.Len(t, photos, 6) // 1 initial + one per 500ms poll before the ceiling
}

func TestIndependentBatches(t *testing.T) {
	clock := newFakeClock()
	a := testAgg(clock)

	a.Add("g1", []byte("a"))
	a.Add("g2", []byte("b"))

	p1 := a.AwaitCompletion(context.Background(), "g1")
	p2 := a.AwaitCompletion(context.Background(), "g2")
	require.Len(t, p1, 1)
	require.Len(t, p2, 1)
	assert.Equal(t, []byte("a"), p1[0])
	assert.Equal(t, []byte("b"), p2[0])
}

func TestUnknownBatchYieldsNil(t *testing.T) {
	a := testAgg(newFakeClock())
	assert.Nil(t, a.AwaitCompletion(context.Background(), "missing"))
}

func TestCancelledContextDrainsBatch(t *testing.T) {
	clock := newFakeClock()
	a := testAgg(clock)
	a.Add("g1", []byte("p1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	photos := a.AwaitCompletion(ctx, "g1")
	assert.Len(t, photos, 1)
}
