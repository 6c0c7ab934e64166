// Package status publishes a machine-readable snapshot of the agent's state
// to a JSON file, so shell scripts and dashboards can poll it without talking
// to the process.
package status

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Snapshot is the published state.
type Snapshot struct {
	Phase     string    `json:"phase"`
	Running   bool      `json:"running"`
	RunID     string    `json:"runId,omitempty"`
	Network   string    `json:"network,omitempty"`
	Address   string    `json:"address,omitempty"`
	LastError string    `json:"lastError,omitempty"`
	Seq       uint64    `json:"seq"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Publisher writes snapshots atomically.
type Publisher struct {
	mu   sync.Mutex
	path string
	seq  uint64
}

// NewPublisher writes snapshots to path.
func NewPublisher(path string) *Publisher {
	return &Publisher{path: path}
}

// Publish writes the snapshot, stamping sequence and time. Readers never see
// a partially written file: the write goes to a temp file in the same
// directory, then renames over the target.
func (p *Publisher) Publish(s Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	s.Seq = p.seq
	s.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".status-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write status: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, p.path)
}

// Read loads a snapshot file.
func Read(path string) (Snapshot, error) {
	var s Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	err = json.Unmarshal(data, &s)
	return s, err
}
