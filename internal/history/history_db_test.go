package history

import (
	"path/filepath"
	"testing"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestSaveAndLoad(t *testing.T) {
	m := newTestManager(t)

	entry := Entry{
		SnapshotKey:  "backups/app-2024-01-15.dump",
		SizeBytes:    1048576,
		DurationMs:   2300,
		DatabaseName: "app",
		Outcome:      "success",
	}
	if err := m.Save(entry); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	entries, err := m.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Load() returned %d entries, want 1", len(entries))
	}
	got := entries[0]
	if got.SnapshotKey != entry.SnapshotKey {
		t.Errorf("SnapshotKey = %q, want %q", got.SnapshotKey, entry.SnapshotKey)
	}
	if got.SizeBytes != entry.SizeBytes {
		t.Errorf("SizeBytes = %d, want %d", got.SizeBytes, entry.SizeBytes)
	}
	if got.Outcome != "success" {
		t.Errorf("Outcome = %q, want %q", got.Outcome, "success")
	}
	if got.Timestamp == "" {
		t.Error("Timestamp should be set when saving")
	}
}

func TestDelete(t *testing.T) {
	m := newTestManager(t)

	for _, key := range []string{"a.dump", "b.dump"} {
		if err := m.Save(Entry{SnapshotKey: key, DatabaseName: "d", Outcome: "success"}); err != nil {
			t.Fatalf("Save() error: %v", err)
		}
	}

	entries, err := m.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Load() returned %d entries, want 2", len(entries))
	}

	if err := m.Delete(entries[0].ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	remaining, err := m.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("Load() after Delete() returned %d entries, want 1", len(remaining))
	}
	if remaining[0].ID == entries[0].ID {
		t.Errorf("deleted entry %d still present", entries[0].ID)
	}
}

func TestClearAndCount(t *testing.T) {
	m := newTestManager(t)

	for i := 0; i < 3; i++ {
		if err := m.Save(Entry{SnapshotKey: "k", DatabaseName: "d", Outcome: "success"}); err != nil {
			t.Fatalf("Save() error: %v", err)
		}
	}

	count, err := m.GetCount()
	if err != nil {
		t.Fatalf("GetCount() error: %v", err)
	}
	if count != 3 {
		t.Errorf("GetCount() = %d, want 3", count)
	}

	if err := m.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	count, err = m.GetCount()
	if err != nil {
		t.Fatalf("GetCount() error: %v", err)
	}
	if count != 0 {
		t.Errorf("GetCount() after Clear() = %d, want 0", count)
	}
}
