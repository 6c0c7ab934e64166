// Package trigger reports network connectivity events that start automation
// runs.
package trigger

import "time"

// Event is one edge of the connectivity signal.
type Event struct {
	Identifier string // network name (SSID)
	Connected  bool
	At         time.Time
}

// Listener is a stream of connectivity events plus a point read of the
// current network identifier.
type Listener interface {
	// Events returns the event channel. The channel is closed when the
	// listener stops.
	Events() <-chan Event

	// CurrentIdentifier returns the currently connected network name, if
	// known.
	CurrentIdentifier() (string, bool)
}
