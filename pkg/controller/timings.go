package controller

import "time"

// Timings gathers every wait and retry knob the state machine uses. Tests
// shrink these to keep runs fast; production uses the defaults.
type Timings struct {
	// ReadyPolls and ReadyPollInterval bound how long to wait for the
	// on-device automation server.
	ReadyPolls        int
	ReadyPollInterval time.Duration

	// NavSettle is the pause after opening a screen or tapping an entry,
	// giving the UI time to render before the hierarchy is re-read.
	NavSettle time.Duration

	// ScrollSweeps bounds how many times a list is scrolled while looking
	// for an entry or the toggle.
	ScrollSweeps int

	// ScrollSettle is the pause after a scroll gesture.
	ScrollSettle time.Duration

	// BuildTaps is the tap budget on the build number entry when
	// developer options must first be unlocked.
	BuildTaps int

	// BuildTapInterval spaces out the taps; too fast and the system
	// coalesces them.
	BuildTapInterval time.Duration

	// VerifyPolls and VerifyPollInterval bound the checked-state
	// confirmation after tapping the toggle.
	VerifyPolls        int
	VerifyPollInterval time.Duration

	// HarvestRetries bounds re-reads of the panel while waiting for the
	// pairing address to render.
	HarvestRetries int

	// HarvestSettle is the pause between harvest attempts.
	HarvestSettle time.Duration
}

// DefaultTimings returns production values.
func DefaultTimings() Timings {
	return Timings{
		ReadyPolls:         10,
		ReadyPollInterval:  time.Second,
		NavSettle:          time.Second,
		ScrollSweeps:       5,
		ScrollSettle:       700 * time.Millisecond,
		BuildTaps:          10,
		BuildTapInterval:   150 * time.Millisecond,
		VerifyPolls:        3,
		VerifyPollInterval: 500 * time.Millisecond,
		HarvestRetries:     5,
		HarvestSettle:      700 * time.Millisecond,
	}
}
