package ratelimit

import (
	"testing"
	"time"
)

func TestAllowUntilCap(t *testing.T) {
	l := New(2, time.Hour)
	for i := 0; i < 2; i++ {
		if !l.Allow() {
			t.Fatalf("call %d blocked before cap", i+1)
		}
		l.Record()
	}
	if l.Allow() {
		t.Fatal("call allowed past the cap")
	}
	used, max := l.Stats()
	if used != 2 || max != 2 {
		t.Fatalf("Stats = %d/%d", used, max)
	}
}

func TestWindowReset(t *testing.T) {
	l := New(1, time.Hour)
	current := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }
	l.resetAt = current.Add(time.Hour)

	l.Record()
	if l.Allow() {
		t.Fatal("expected cap reached")
	}
	current = current.Add(2 * time.Hour)
	if !l.Allow() {
		t.Fatal("expected window to reset")
	}
}

func TestZeroMaxDisablesLimit(t *testing.T) {
	l := New(0, time.Hour)
	for i := 0; i < 100; i++ {
		if !l.Allow() {
			t.Fatal("disabled limiter blocked a call")
		}
		l.Record()
	}
}
