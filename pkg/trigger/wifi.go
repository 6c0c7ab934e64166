package trigger

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/autopair-dev/wadb-agent/pkg/logging"
)

// ShellRunner runs a shell command on the device. Implemented by
// device.AndroidDevice.
type ShellRunner interface {
	Shell(cmd string) (string, error)
}

// WifiWatcher polls the device's Wi-Fi state over adb and emits
// edge-triggered connect/disconnect events.
type WifiWatcher struct {
	shell    ShellRunner
	interval time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	current string
	events  chan Event
}

// NewWifiWatcher creates a watcher polling at the given interval.
func NewWifiWatcher(shell ShellRunner, interval time.Duration) *WifiWatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &WifiWatcher{
		shell:    shell,
		interval: interval,
		log:      logging.For("trigger"),
		events:   make(chan Event, 8),
	}
}

// Events returns the event channel.
func (w *WifiWatcher) Events() <-chan Event {
	return w.events
}

// CurrentIdentifier returns the last observed SSID.
func (w *WifiWatcher) CurrentIdentifier() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current, w.current != ""
}

// Run polls until the context is cancelled, then closes the event channel.
func (w *WifiWatcher) Run(ctx context.Context) {
	defer close(w.events)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.poll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *WifiWatcher) poll() {
	ssid := w.querySSID()

	w.mu.Lock()
	prev := w.current
	w.current = ssid
	w.mu.Unlock()

	if ssid == prev {
		return
	}

	now := time.Now()
	if prev != "" {
		w.emit(Event{Identifier: prev, Connected: false, At: now})
	}
	if ssid != "" {
		w.log.Info().Str("ssid", ssid).Msg("network connected")
		w.emit(Event{Identifier: ssid, Connected: true, At: now})
	}
}

func (w *WifiWatcher) emit(ev Event) {
	// Drop rather than block: the controller ignores triggers mid-run
	// anyway, and a stalled consumer must not wedge the poll loop.
	select {
	case w.events <- ev:
	default:
	}
}

var ssidRe = regexp.MustCompile(`SSID:\s*"?([^",\n]+)"?`)

// querySSID reads the connected SSID from dumpsys. Returns "" when Wi-Fi is
// down or the output is unparseable.
func (w *WifiWatcher) querySSID() string {
	out, err := w.shell.Shell("dumpsys wifi | grep 'mWifiInfo'")
	if err != nil {
		w.log.Debug().Err(err).Msg("wifi state query failed")
		return ""
	}

	m := ssidRe.FindStringSubmatch(out)
	if len(m) < 2 {
		return ""
	}

	ssid := strings.TrimSpace(m[1])
	if ssid == "<unknown ssid>" || ssid == "" {
		return ""
	}
	return ssid
}
