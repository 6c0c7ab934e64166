package trigger

import (
	"bufio"
	"io"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/autopair-dev/wadb-agent/pkg/logging"
)

// StreamListener reads JSON-lines connectivity events from a reader, for
// hosts that push events instead of being polled. Each line carries at least
// {"ssid": "...", "connected": true|false}; unknown lines are skipped.
type StreamListener struct {
	mu      sync.Mutex
	current string
	events  chan Event
}

// NewStreamListener starts consuming the reader in the background.
func NewStreamListener(r io.Reader) *StreamListener {
	s := &StreamListener{events: make(chan Event, 8)}
	go s.consume(r)
	return s
}

// Events returns the event channel; closed when the reader is exhausted.
func (s *StreamListener) Events() <-chan Event {
	return s.events
}

// CurrentIdentifier returns the last reported connected SSID.
func (s *StreamListener) CurrentIdentifier() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current != ""
}

func (s *StreamListener) consume(r io.Reader) {
	defer close(s.events)

	log := logging.For("trigger")
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !gjson.Valid(line) {
			continue
		}

		ssid := gjson.Get(line, "ssid").String()
		connected := gjson.Get(line, "connected")
		if ssid == "" || !connected.Exists() {
			continue
		}

		ev := Event{
			Identifier: ssid,
			Connected:  connected.Bool(),
			At:         time.Now(),
		}
		if ts := gjson.Get(line, "at"); ts.Exists() {
			if t, err := time.Parse(time.RFC3339, ts.String()); err == nil {
				ev.At = t
			}
		}

		s.mu.Lock()
		if ev.Connected {
			s.current = ev.Identifier
		} else if s.current == ev.Identifier {
			s.current = ""
		}
		s.mu.Unlock()

		s.events <- ev
	}
	if err := scanner.Err(); err != nil {
		log.Warn().Err(err).Msg("event stream closed with error")
	}
}
