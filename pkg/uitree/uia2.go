package uitree

import (
	"fmt"
	"regexp"
	"time"

	"github.com/autopair-dev/wadb-agent/pkg/device"
	"github.com/autopair-dev/wadb-agent/pkg/uiautomator2"
)

// scroll gesture tuning: most of a screen per sweep, slow enough for the
// settings list to keep up.
const (
	scrollPercent = 0.8
	scrollSpeed   = 5000
)

// hostDevice is the adb surface the accessor uses alongside the HTTP client.
type hostDevice interface {
	Shell(cmd string) (string, error)
	RemoveForward(localPort int) error
}

// UIA2Accessor implements Accessor over the UIAutomator2 server plus adb
// shell for host-level actions (intents, home, foreground lookup).
type UIA2Accessor struct {
	client    *uiautomator2.Client
	dev       hostDevice
	localPort int
}

// deviceReadyWait bounds how long Connect waits for the device to come up.
const deviceReadyWait = 30 * time.Second

// Connect waits for the device, forwards a local port to its UIAutomator2
// server, and establishes a session. The forward is removed again when the
// session cannot be created, and on Close.
func Connect(dev *device.AndroidDevice, localPort int) (*UIA2Accessor, error) {
	if err := dev.WaitForDevice(deviceReadyWait); err != nil {
		return nil, err
	}
	if err := dev.Forward(localPort, "tcp:6790"); err != nil {
		return nil, err
	}

	client := uiautomator2.NewClientTCP(localPort)
	if err := client.CreateSession(uiautomator2.Capabilities{}); err != nil {
		dev.RemoveForward(localPort)
		return nil, fmt.Errorf("create UIAutomator2 session: %w", err)
	}

	return &UIA2Accessor{client: client, dev: dev, localPort: localPort}, nil
}

// Ready reports whether the UIAutomator2 server responds and is ready.
func (a *UIA2Accessor) Ready() bool {
	ready, err := a.client.Status()
	return err == nil && ready
}

// Root fetches the page source and parses it into a fresh tree snapshot.
func (a *UIA2Accessor) Root() (*Node, error) {
	source, err := a.client.Source()
	if err != nil {
		return nil, fmt.Errorf("fetch page source: %w", err)
	}
	return ParseHierarchy(source)
}

// Activate taps the center of the element.
func (a *UIA2Accessor) Activate(n *Node) error {
	if n == nil || n.Bounds.Empty() {
		return fmt.Errorf("element has no tappable bounds")
	}
	return a.client.Click(n.Bounds.CenterX(), n.Bounds.CenterY())
}

// Scroll scrolls within the element's bounds.
func (a *UIA2Accessor) Scroll(n *Node, forward bool) error {
	if n == nil || n.Bounds.Empty() {
		return fmt.Errorf("element has no scrollable bounds")
	}

	direction := "down"
	if !forward {
		direction = "up"
	}
	area := uiautomator2.RectModel{
		Left:   n.Bounds.X,
		Top:    n.Bounds.Y,
		Width:  n.Bounds.Width,
		Height: n.Bounds.Height,
	}
	return a.client.ScrollInArea(area, direction, scrollPercent, scrollSpeed)
}

// OpenScreen launches a system screen by intent action.
func (a *UIA2Accessor) OpenScreen(action string) error {
	out, err := a.dev.Shell("am start -a " + action)
	if err != nil {
		return fmt.Errorf("open screen %s: %s: %w", action, out, err)
	}
	return nil
}

// KeycodeHome is the Android HOME key.
const KeycodeHome = 3

// PressHome returns to the launcher.
func (a *UIA2Accessor) PressHome() error {
	return a.client.PressKeyCode(KeycodeHome)
}

var focusRe = regexp.MustCompile(`mCurrentFocus=Window\{[^ ]+ [^ ]+ ([\w.]+)/`)

// ForegroundPackage parses the focused window's owning package out of
// dumpsys output. Vendors format this line differently; an empty result is
// possible and callers treat it as unknown.
func (a *UIA2Accessor) ForegroundPackage() (string, error) {
	out, err := a.dev.Shell("dumpsys window windows | grep -E 'mCurrentFocus|mFocusedApp'")
	if err != nil {
		return "", err
	}

	if m := focusRe.FindStringSubmatch(out); len(m) >= 2 {
		return m[1], nil
	}
	return "", nil
}

// Close tears down the session and removes the port forward.
func (a *UIA2Accessor) Close() error {
	err := a.client.Close()
	if a.localPort != 0 {
		if ferr := a.dev.RemoveForward(a.localPort); ferr != nil && err == nil {
			err = ferr
		}
	}
	return err
}
