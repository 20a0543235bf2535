package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	fs := NewFileStore(path, 48*time.Hour)
	if err := fs.Load(); err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if fs.IsNotified("abc") {
		t.Fatal("fresh store should know nothing")
	}

	rec := DeliveryRecord{ID: "abc", Title: "t", Link: "https://x", Category: "NEWS", Source: "s"}
	if err := fs.MarkNotified(rec); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := fs.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := NewFileStore(path, 48*time.Hour)
	if err := reopened.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reopened.IsNotified("abc") {
		t.Fatal("notified state must survive reopen")
	}
	if reopened.IsNotified("other") {
		t.Fatal("unknown id reported as notified")
	}
}

func TestFileStoreCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	fs := NewFileStore(path, time.Hour)
	if err := fs.Load(); err != nil {
		t.Fatalf("corrupt state must not be fatal, got %v", err)
	}
	if fs.IsNotified("anything") {
		t.Fatal("corrupt state must behave as nothing notified")
	}
}

func TestFileStoreTTLExpiry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	fs := NewFileStore(path, time.Hour)
	old := DeliveryRecord{ID: "old", NotifiedAt: time.Now().Add(-2 * time.Hour)}
	fresh := DeliveryRecord{ID: "fresh", NotifiedAt: time.Now()}
	if err := fs.MarkNotified(old); err != nil {
		t.Fatal(err)
	}
	if err := fs.MarkNotified(fresh); err != nil {
		t.Fatal(err)
	}
	if err := fs.Save(); err != nil {
		t.Fatal(err)
	}

	reopened := NewFileStore(path, time.Hour)
	if err := reopened.Load(); err != nil {
		t.Fatal(err)
	}
	if reopened.IsNotified("old") {
		t.Error("expired record should not count as notified")
	}
	if !reopened.IsNotified("fresh") {
		t.Error("fresh record must count as notified")
	}
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "missing.json"), time.Hour)
	if err := fs.Load(); err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if fs.IsNotified("x") {
		t.Fatal("missing state must behave as nothing notified")
	}
}
