package hal

import (
	"sync"
	"time"
)

// hostTime only moves when a runner steps it, so every Step of one frame sees
// the same instant.
type hostTime struct {
	mu  sync.Mutex
	now time.Time
}

func newHostTime() *hostTime {
	return &hostTime{now: time.Now()}
}

func (t *hostTime) Now() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now
}

// sync catches the clock up with the wall clock.
func (t *hostTime) sync() {
	t.mu.Lock()
	t.now = time.Now()
	t.mu.Unlock()
}

// advance moves the clock by d regardless of the wall clock.
func (t *hostTime) advance(d time.Duration) {
	t.mu.Lock()
	t.now = t.now.Add(d)
	t.mu.Unlock()
}
