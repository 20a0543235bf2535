package storage

import "testing"

func TestMemoryStoreStartsEmpty(t *testing.T) {
	ms := NewMemoryStore()
	if ms.IsNotified("a1") {
		t.Fatal("fresh store reported an article as notified")
	}
	if err := ms.MarkNotified(DeliveryRecord{ID: "a1"}); err != nil {
		t.Fatalf("MarkNotified: %v", err)
	}
	if !ms.IsNotified("a1") {
		t.Fatal("marked article not reported as notified")
	}
	if err := ms.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
