package aggregator

import "time"

// Clock abstracts wall time so the poll loop can be driven without real
// sleeping in tests.
type Clock interface {
	Now() time.Time
	// After returns a channel that fires once d has elapsed.
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock is the default wall-time clock.
var SystemClock Clock = realClock{}
