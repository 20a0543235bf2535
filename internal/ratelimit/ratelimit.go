// Package ratelimit bounds AI spend per window. The summarizer already caps
// calls per run; this guards the daily total across runs of a long-lived
// process.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a fixed-window counter. A zero or negative max disables the
// limit.
type Limiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	count   int
	resetAt time.Time
	now     func() time.Time
}

func New(max int, window time.Duration) *Limiter {
	l := &Limiter{max: max, window: window, now: time.Now}
	l.resetAt = l.now().Add(window)
	return l
}

// Allow reports whether another call fits in the current window.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maybeReset()
	return l.max <= 0 || l.count < l.max
}

// Record counts one performed call.
func (l *Limiter) Record() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maybeReset()
	l.count++
}

// Stats returns calls used in the window and the configured cap.
func (l *Limiter) Stats() (used, max int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maybeReset()
	return l.count, l.max
}

func (l *Limiter) maybeReset() {
	if l.now().After(l.resetAt) {
		l.count = 0
		l.resetAt = l.now().Add(l.window)
	}
}
