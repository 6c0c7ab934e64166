package history

import (
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := testStore(t)

	base := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	runs := []Record{
		{RunID: "a", Trigger: "network", Network: "lab", Outcome: "completed",
			Host: "192.168.1.5", Port: 40123, Attempts: 1,
			StartedAt: base, FinishedAt: base.Add(20 * time.Second)},
		{RunID: "b", Trigger: "manual", Network: "lab", Outcome: "failed",
			Error: "no pairing address found on screen", Attempts: 3,
			StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour + time.Minute)},
	}
	for _, r := range runs {
		if err := s.Record(r); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}

	// Newest first.
	if got[0].RunID != "b" || got[1].RunID != "a" {
		t.Errorf("order = %s, %s", got[0].RunID, got[1].RunID)
	}
	if got[1].Host != "192.168.1.5" || got[1].Port != 40123 {
		t.Errorf("completed run = %+v", got[1])
	}
	if got[0].Error == "" || got[0].Attempts != 3 {
		t.Errorf("failed run = %+v", got[0])
	}
	if !got[1].StartedAt.Equal(base) {
		t.Errorf("startedAt = %v, want %v", got[1].StartedAt, base)
	}
}

func TestRecentLimit(t *testing.T) {
	s := testStore(t)
	for i := 0; i < 5; i++ {
		r := Record{
			RunID: "r", Trigger: "network", Network: "lab", Outcome: "completed",
			StartedAt:  time.Now().Add(time.Duration(i) * time.Minute),
			FinishedAt: time.Now(),
		}
		if err := s.Record(r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Recent(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("got %d records, want 3", len(got))
	}
}

func TestRecentEmpty(t *testing.T) {
	s := testStore(t)
	got, err := s.Recent(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %d records from an empty store", len(got))
	}
}
