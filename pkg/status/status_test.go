package status

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPublishAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "status.json")
	p := NewPublisher(path)

	if err := p.Publish(Snapshot{Phase: "navigating", Running: true, RunID: "r1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := p.Publish(Snapshot{Phase: "completed", Address: "192.168.1.2:40123"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	s, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if s.Phase != "completed" || s.Address != "192.168.1.2:40123" {
		t.Errorf("snapshot = %+v", s)
	}
	if s.Seq != 2 {
		t.Errorf("seq = %d, want 2", s.Seq)
	}
	if s.UpdatedAt.IsZero() {
		t.Error("updatedAt not stamped")
	}
}

func TestPublishLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	p := NewPublisher(filepath.Join(dir, "status.json"))
	for i := 0; i < 5; i++ {
		if err := p.Publish(Snapshot{Phase: "idle"}); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "status.json" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("directory contents = %v, want only status.json", names)
	}
}

func TestReadMissing(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("Read of a missing file succeeded")
	}
}
