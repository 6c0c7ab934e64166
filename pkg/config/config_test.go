package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`targetSSID: lab`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.TargetSSID != "lab" {
		t.Errorf("targetSSID = %q", cfg.TargetSSID)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("pollInterval = %v, want default 5s", cfg.PollInterval)
	}
	if cfg.LocalPort != 6790 {
		t.Errorf("localPort = %d, want 6790", cfg.LocalPort)
	}
	if cfg.Automation.MaxRetries != 2 {
		t.Errorf("maxRetries = %d, want 2", cfg.Automation.MaxRetries)
	}
	if !cfg.Automation.ReturnHome {
		t.Error("returnHome default should be true")
	}
	if cfg.Extract.MinPort != 1024 || cfg.Extract.MaxPort != 65535 {
		t.Errorf("extract port window = [%d, %d]", cfg.Extract.MinPort, cfg.Extract.MaxPort)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestParseOverrides(t *testing.T) {
	src := `
device: emulator-5554
targetSSID: lab
pollInterval: 2s
automation:
  maxRetries: 0
  retryBackoff: 10s
  secondaryToggleFirst: true
  returnHome: false
extract:
  minPort: 30000
  maxPort: 50000
  privateOnly: true
webhook:
  url: http://127.0.0.1:9000/hook
  ratePerMinute: 2
mqtt:
  broker: 127.0.0.1:1883
  topic: lab/wadb
log:
  level: debug
`
	cfg, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Device != "emulator-5554" || cfg.PollInterval != 2*time.Second {
		t.Errorf("device/pollInterval = %q/%v", cfg.Device, cfg.PollInterval)
	}
	if cfg.Automation.MaxRetries != 0 || cfg.Automation.RetryBackoff != 10*time.Second {
		t.Errorf("automation = %+v", cfg.Automation)
	}
	if !cfg.Automation.SecondaryToggleFirst || cfg.Automation.ReturnHome {
		t.Errorf("automation flags = %+v", cfg.Automation)
	}
	if !cfg.Extract.PrivateOnly || cfg.Extract.MinPort != 30000 {
		t.Errorf("extract = %+v", cfg.Extract)
	}
	if cfg.Webhook.URL == "" || cfg.MQTT.Topic != "lab/wadb" {
		t.Errorf("sinks = %+v %+v", cfg.Webhook, cfg.MQTT)
	}
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"missing ssid", `device: x`, "targetSSID"},
		{"negative retries", "targetSSID: lab\nautomation:\n  maxRetries: -1\n", "maxRetries"},
		{"tiny poll interval", "targetSSID: lab\npollInterval: 100ms\n", "pollInterval"},
		{"bad local port", "targetSSID: lab\nlocalPort: 70000\n", "localPort"},
		{"inverted port window", "targetSSID: lab\nextract:\n  minPort: 50000\n  maxPort: 40000\n", "port range"},
		{"mqtt without topic", "targetSSID: lab\nmqtt:\n  broker: 127.0.0.1:1883\n", "mqtt.topic"},
		{"garbage yaml", "targetSSID: [", "parse config"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
