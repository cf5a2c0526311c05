package engine

import "time"

// Clock abstracts wall-clock reads and tick scheduling so the engine can be
// driven deterministically in tests.
type Clock interface {
	// Now returns the current wall-clock time.
	Now() time.Time
	// NewTicker creates a Ticker firing every interval.
	NewTicker(interval time.Duration) Ticker
}

// Ticker abstracts time.Ticker.
type Ticker interface {
	// C returns the channel on which tick times are delivered.
	C() <-chan time.Time
	// Stop shuts the ticker down. It does not close C.
	Stop()
}

// NewRealClock returns a Clock backed by the time package.
func NewRealClock() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTicker(interval time.Duration) Ticker {
	return &realTicker{inner: time.NewTicker(interval)}
}

type realTicker struct {
	inner *time.Ticker
}

func (t *realTicker) C() <-chan time.Time { return t.inner.C }
func (t *realTicker) Stop()               { t.inner.Stop() }
