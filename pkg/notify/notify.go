// Package notify delivers run results to external sinks. Delivery is
// fire-and-forget from the run's point of view: a sink failure is logged and
// never fails the run that produced the result.
package notify

import (
	"context"
	"time"

	"github.com/autopair-dev/wadb-agent/pkg/extract"
	"github.com/autopair-dev/wadb-agent/pkg/logging"
)

// Result is what a finished run reports: either a pairing address or a
// failure notice, plus run metadata.
type Result struct {
	RunID      string
	Device     string
	Trigger    string // "network" or "manual"
	Network    string
	Address    *extract.Candidate // nil on failure
	Error      string             // non-empty on failure
	Attempts   int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Succeeded reports whether the run produced an address.
func (r Result) Succeeded() bool {
	return r.Address != nil
}

// Sink receives run results.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, r Result) error
}

// Multi fans a result out to several sinks. Individual failures are logged
// and swallowed.
type Multi struct {
	sinks []Sink
}

// NewMulti bundles sinks.
func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Name implements Sink.
func (m *Multi) Name() string { return "multi" }

// Deliver sends the result to every sink. Always returns nil.
func (m *Multi) Deliver(ctx context.Context, r Result) error {
	log := logging.For("notify")
	for _, s := range m.sinks {
		if err := s.Deliver(ctx, r); err != nil {
			log.Warn().Str("sink", s.Name()).Err(err).Msg("delivery failed")
		}
	}
	return nil
}

// LogSink writes results to the process log.
type LogSink struct{}

// Name implements Sink.
func (LogSink) Name() string { return "log" }

// Deliver implements Sink.
func (LogSink) Deliver(_ context.Context, r Result) error {
	log := logging.For("notify")
	ev := log.Info().
		Str("run", r.RunID).
		Str("device", r.Device).
		Str("network", r.Network).
		Int("attempts", r.Attempts)

	if r.Succeeded() {
		ev.Str("address", r.Address.String()).Msg("wireless debugging enabled")
	} else {
		ev.Str("error", r.Error).Msg("automation run failed")
	}
	return nil
}
