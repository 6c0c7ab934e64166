package device

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNoDevices is returned when adb reports no device in a usable state.
var ErrNoDevices = errors.New("no Android devices connected")

// ConnectedDevice is one row of "adb devices" output.
type ConnectedDevice struct {
	Serial string
	State  string // device, offline, unauthorized
	Type   string // emulator or device
}

// ListDevices asks adb for the currently connected devices.
func ListDevices() ([]ConnectedDevice, error) {
	adbPath, err := findADB()
	if err != nil {
		return nil, err
	}
	out, err := exec.Command(adbPath, "devices").Output()
	if err != nil {
		return nil, fmt.Errorf("adb devices: %w", err)
	}
	return parseDeviceList(string(out)), nil
}

// parseDeviceList reads "adb devices" output: a header plus occasional
// daemon chatter, then one tab-separated "serial<TAB>state" row per device.
// Lines without a tab are not device rows.
func parseDeviceList(output string) []ConnectedDevice {
	var devices []ConnectedDevice
	for _, line := range strings.Split(output, "\n") {
		serial, state, ok := strings.Cut(strings.TrimSpace(line), "\t")
		if !ok {
			continue
		}
		d := ConnectedDevice{
			Serial: serial,
			State:  strings.TrimSpace(state),
			Type:   "device",
		}
		if strings.HasPrefix(serial, "emulator-") {
			d.Type = "emulator"
		}
		devices = append(devices, d)
	}
	return devices
}

// FirstAvailable returns a handle to the first device in the "device" state.
// Offline and unauthorized rows are skipped.
func FirstAvailable() (*AndroidDevice, error) {
	devices, err := ListDevices()
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		if d.State == "device" {
			return New(d.Serial)
		}
	}
	return nil, ErrNoDevices
}
