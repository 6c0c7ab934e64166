// Package device provides ADB plumbing: device discovery, shell execution,
// and port forwarding for the UIAutomator2 server.
package device

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// AndroidDevice is a handle to one connected device.
type AndroidDevice struct {
	Serial  string
	adbPath string
}

// New creates a device handle for the given serial.
func New(serial string) (*AndroidDevice, error) {
	adbPath, err := findADB()
	if err != nil {
		return nil, err
	}
	return &AndroidDevice{Serial: serial, adbPath: adbPath}, nil
}

// Shell runs a shell command on the device and returns combined output.
func (d *AndroidDevice) Shell(cmd string) (string, error) {
	args := []string{"-s", d.Serial, "shell", cmd}
	c := exec.Command(d.adbPath, args...)

	var out bytes.Buffer
	c.Stdout = &out
	c.Stderr = &out

	if err := c.Run(); err != nil {
		return out.String(), fmt.Errorf("adb shell %q: %w", cmd, err)
	}
	return out.String(), nil
}

// Forward forwards a local TCP port to a remote device socket spec
// (e.g. "tcp:6790" or "localabstract:uiautomator2").
func (d *AndroidDevice) Forward(localPort int, remote string) error {
	c := exec.Command(d.adbPath, "-s", d.Serial, "forward",
		fmt.Sprintf("tcp:%d", localPort), remote)
	var out bytes.Buffer
	c.Stdout = &out
	c.Stderr = &out
	if err := c.Run(); err != nil {
		return fmt.Errorf("adb forward: %s: %w", strings.TrimSpace(out.String()), err)
	}
	return nil
}

// RemoveForward removes a previously created forward.
func (d *AndroidDevice) RemoveForward(localPort int) error {
	c := exec.Command(d.adbPath, "-s", d.Serial, "forward", "--remove",
		fmt.Sprintf("tcp:%d", localPort))
	return c.Run()
}

// WaitForDevice blocks until the device is in "device" state or the timeout
// elapses.
func (d *AndroidDevice) WaitForDevice(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		devices, err := ListDevices()
		if err == nil {
			for _, dev := range devices {
				if dev.Serial == d.Serial && dev.State == "device" {
					return nil
				}
			}
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("device %s not ready after %v", d.Serial, timeout)
		}
		time.Sleep(time.Second)
	}
}

// findADB locates the adb binary via PATH or ANDROID_HOME.
func findADB() (string, error) {
	if p, err := exec.LookPath("adb"); err == nil {
		return p, nil
	}

	for _, env := range []string{"ANDROID_HOME", "ANDROID_SDK_ROOT"} {
		home := os.Getenv(env)
		if home == "" {
			continue
		}
		p := filepath.Join(home, "platform-tools", "adb")
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("adb not found in PATH or ANDROID_HOME")
}
