// Package controller runs the enable-wireless-debugging automation as a
// phase machine: one run at a time, driven by network triggers or manual
// requests, with a bounded retry budget per run.
package controller

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/autopair-dev/wadb-agent/pkg/extract"
	"github.com/autopair-dev/wadb-agent/pkg/logging"
	"github.com/autopair-dev/wadb-agent/pkg/notify"
	"github.com/autopair-dev/wadb-agent/pkg/selector"
	"github.com/autopair-dev/wadb-agent/pkg/trigger"
	"github.com/autopair-dev/wadb-agent/pkg/uitree"
)

// RunInfo is a point-in-time view of the active (or last) run.
type RunInfo struct {
	RunID     string
	Trigger   string
	Network   string
	Attempt   int
	StartedAt time.Time
	Address   *extract.Candidate
	LastError string
}

// Callbacks let the embedding process observe runs without the controller
// knowing about status files or history databases.
type Callbacks struct {
	// OnPhase fires on every phase change.
	OnPhase func(Phase, RunInfo)

	// OnResult fires once per run, after dispatch.
	OnResult func(notify.Result)
}

// Options configures a Controller.
type Options struct {
	// Device is reported in results; typically the adb serial.
	Device string

	// TargetSSID gates network triggers.
	TargetSSID string

	// MaxRetries is the retry budget after the first attempt. 2 means at
	// most 3 attempts per run.
	MaxRetries int

	// RetryBackoff is the pause before a retry attempt.
	RetryBackoff time.Duration

	// SecondaryToggleFirst turns an already-enabled toggle off and back
	// on, for skins that only render the address right after enabling.
	SecondaryToggleFirst bool

	// ReturnHome presses home once a run finishes.
	ReturnHome bool

	Extract extract.Options
	Timings Timings
}

// Controller owns the run lifecycle.
type Controller struct {
	acc  uitree.Accessor
	pack *selector.Pack
	sink notify.Sink
	opts Options
	cb   Callbacks
	log  zerolog.Logger

	// connected reports the currently connected network, when a trigger
	// listener is attached.
	connected func() (string, bool)

	mu        sync.Mutex
	running   bool
	phase     Phase
	info      RunInfo
	runCancel context.CancelFunc
}

// New builds a controller. A nil pack uses the built-in selectors; a nil
// sink logs results.
func New(acc uitree.Accessor, pack *selector.Pack, sink notify.Sink, opts Options, cb Callbacks) *Controller {
	if pack == nil {
		pack = selector.Default()
	}
	if sink == nil {
		sink = notify.LogSink{}
	}
	if opts.Timings == (Timings{}) {
		opts.Timings = DefaultTimings()
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 5 * time.Second
	}
	return &Controller{
		acc:   acc,
		pack:  pack,
		sink:  sink,
		opts:  opts,
		cb:    cb,
		log:   logging.For("controller"),
		phase: PhaseIdle,
	}
}

// Run consumes trigger events until ctx is cancelled or the listener's
// channel closes. Each matching connect event starts a run in the
// background; events arriving mid-run are ignored.
func (c *Controller) Run(ctx context.Context, lis trigger.Listener) error {
	c.connected = lis.CurrentIdentifier

	for {
		select {
		case <-ctx.Done():
			c.Stop()
			return ctx.Err()
		case ev, ok := <-lis.Events():
			if !ok {
				return nil
			}
			if !ev.Connected || ev.Identifier != c.opts.TargetSSID {
				continue
			}
			if err := c.start(ctx, "network", ev.Identifier); err != nil {
				c.log.Debug().Str("ssid", ev.Identifier).Msg("trigger ignored, run in progress")
			}
		}
	}
}

// TriggerManually starts a run now, regardless of network state. Returns
// ErrRunInProgress if one is active.
func (c *Controller) TriggerManually(ctx context.Context) error {
	return c.start(ctx, "manual", c.opts.TargetSSID)
}

// Stop cancels the active run, if any. The run winds down to Idle without a
// failure notification.
func (c *Controller) Stop() {
	c.mu.Lock()
	cancel := c.runCancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Status returns the current phase and run info.
func (c *Controller) Status() (Phase, RunInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase, c.info
}

// start claims the single run slot and launches the run goroutine.
func (c *Controller) start(ctx context.Context, trig, network string) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrRunInProgress
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.running = true
	c.runCancel = cancel
	c.info = RunInfo{
		RunID:     uuid.NewString(),
		Trigger:   trig,
		Network:   network,
		StartedAt: time.Now(),
	}
	c.mu.Unlock()

	go func() {
		defer cancel()
		c.runOnce(runCtx)
		c.mu.Lock()
		c.running = false
		c.runCancel = nil
		c.mu.Unlock()
	}()
	return nil
}

// runOnce drives one run through its attempts and terminal phase.
func (c *Controller) runOnce(ctx context.Context) {
	c.setPhase(PhaseTriggered)
	info := c.snapshot()
	c.log.Info().
		Str("run", info.RunID).
		Str("trigger", info.Trigger).
		Str("ssid", info.Network).
		Msg("run started")

	maxAttempts := c.opts.MaxRetries + 1
	var addr *extract.Candidate
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		c.setAttempt(attempt)
		addr, lastErr = c.attempt(ctx)
		if lastErr == nil {
			break
		}
		c.setError(lastErr)

		if ctx.Err() != nil {
			// Cancelled: no retries, no failure notice.
			c.log.Info().Str("run", info.RunID).Msg("run cancelled")
			c.setPhase(PhaseIdle)
			return
		}

		c.log.Warn().
			Str("run", info.RunID).
			Int("attempt", attempt).
			Err(lastErr).
			Msg("attempt failed")

		if attempt < maxAttempts {
			c.setPhase(PhaseRetryPending)
			c.goHome()
			if !c.sleep(ctx, c.opts.RetryBackoff) {
				c.setPhase(PhaseIdle)
				return
			}
		}
	}

	c.finish(addr, lastErr)
}

// finish dispatches the result and settles into the terminal phase, then
// back to Idle ready for the next trigger.
func (c *Controller) finish(addr *extract.Candidate, runErr error) {
	c.mu.Lock()
	c.info.Address = addr
	info := c.info
	c.mu.Unlock()

	result := notify.Result{
		RunID:      info.RunID,
		Device:     c.opts.Device,
		Trigger:    info.Trigger,
		Network:    info.Network,
		Address:    addr,
		Attempts:   info.Attempt,
		StartedAt:  info.StartedAt,
		FinishedAt: time.Now(),
	}
	if runErr != nil {
		result.Error = runErr.Error()
	}

	c.setPhase(PhaseDispatching)
	// Delivery problems never fail the run; use a detached context so a
	// just-cancelled run still reports.
	dispatchCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := c.sink.Deliver(dispatchCtx, result); err != nil {
		c.log.Warn().Err(err).Msg("result delivery failed")
	}
	if c.cb.OnResult != nil {
		c.cb.OnResult(result)
	}

	if runErr == nil {
		c.setPhase(PhaseCompleted)
		c.log.Info().
			Str("run", info.RunID).
			Str("address", addr.String()).
			Int("attempts", info.Attempt).
			Msg("run completed")
	} else {
		c.setPhase(PhaseFailed)
		c.log.Error().
			Str("run", info.RunID).
			Err(runErr).
			Msg("run failed")
	}

	if c.opts.ReturnHome {
		c.goHome()
	}
	c.setPhase(PhaseIdle)
}

func (c *Controller) setPhase(p Phase) {
	c.mu.Lock()
	c.phase = p
	info := c.info
	c.mu.Unlock()

	c.log.Debug().Str("phase", p.String()).Msg("phase change")
	if c.cb.OnPhase != nil {
		c.cb.OnPhase(p, info)
	}
}

func (c *Controller) setAttempt(n int) {
	c.mu.Lock()
	c.info.Attempt = n
	c.mu.Unlock()
}

func (c *Controller) setError(err error) {
	c.mu.Lock()
	c.info.LastError = err.Error()
	c.mu.Unlock()
}

func (c *Controller) snapshot() RunInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info
}

func (c *Controller) goHome() {
	if err := c.acc.PressHome(); err != nil {
		c.log.Debug().Err(err).Msg("press home failed")
	}
}

// sleep waits unless the context ends first. Returns false on cancellation.
func (c *Controller) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
