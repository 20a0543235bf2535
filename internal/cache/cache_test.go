package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New()
	key := Key("Some title", "some body")

	if _, ok := c.Get(key); ok {
		t.Fatal("empty cache returned a hit")
	}
	c.Set(key, "a summary", time.Minute)
	got, ok := c.Get(key)
	if !ok || got != "a summary" {
		t.Fatalf("Get = %q, %v", got, ok)
	}
}

func TestExpiry(t *testing.T) {
	c := New()
	current := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	c.Set("k", "v", time.Minute)
	current = current.Add(2 * time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry returned a hit")
	}
}

func TestCleanup(t *testing.T) {
	c := New()
	current := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	c.Set("old", "v", time.Minute)
	c.Set("new", "v", time.Hour)
	current = current.Add(10 * time.Minute)

	c.Cleanup()
	if c.Len() != 1 {
		t.Fatalf("Len = %d after cleanup, want 1", c.Len())
	}
	if _, ok := c.Get("new"); !ok {
		t.Error("live entry removed by cleanup")
	}
}

func TestKeyDistinguishesTitleContentSplit(t *testing.T) {
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("keys must not collide across the title/content boundary")
	}
}
