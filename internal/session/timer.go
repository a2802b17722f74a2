package session

import (
	"sync"
	"time"
)

// DefaultTickInterval is the refresh cadence of elapsed-time notifications.
const DefaultTickInterval = time.Second

// Clock reports the current instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// Elapsed returns the whole seconds between startedAt and now. It is always
// derived from the absolute start instant; a zero start or a clock that went
// backwards yields 0.
func Elapsed(startedAt, now time.Time) int64 {
	if startedAt.IsZero() {
		return 0
	}
	d := now.Sub(startedAt)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}

// Timer calls a function with the elapsed seconds of a session on a fixed
// cadence until stopped.
type Timer struct {
	clock    Clock
	interval time.Duration

	mu        sync.Mutex
	startedAt time.Time
	stop      chan struct{}
	done      chan struct{}
}

// NewTimer returns an inert timer.
func NewTimer(clock Clock, interval time.Duration) *Timer {
	if clock == nil {
		clock = SystemClock()
	}
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Timer{clock: clock, interval: interval}
}

// Start notifies fn once immediately and then on every tick. A running timer
// is restarted with the new start instant. fn must not call Stop.
func (t *Timer) Start(startedAt time.Time, fn func(elapsedSeconds int64)) {
	t.Stop()

	t.mu.Lock()
	t.startedAt = startedAt
	stop := make(chan struct{})
	done := make(chan struct{})
	t.stop, t.done = stop, done
	t.mu.Unlock()

	fn(Elapsed(startedAt, t.clock.Now()))

	go func() {
		defer close(done)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fn(Elapsed(startedAt, t.clock.Now()))
			}
		}
	}()
}

// Stop halts notifications and waits for the tick loop to exit. It is safe
// to call repeatedly.
func (t *Timer) Stop() {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	t.startedAt = time.Time{}
	t.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Elapsed reports the elapsed seconds of the running session, 0 when inert.
func (t *Timer) Elapsed() int64 {
	t.mu.Lock()
	startedAt := t.startedAt
	t.mu.Unlock()
	return Elapsed(startedAt, t.clock.Now())
}

// Running reports whether the timer is started.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}
