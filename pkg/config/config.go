// Package config loads and validates the agent configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full agent configuration.
type Config struct {
	// Device is the adb serial to drive; empty means the first available
	// device.
	Device string `yaml:"device"`

	// TargetSSID is the network whose connection triggers a run.
	TargetSSID string `yaml:"targetSSID"`

	// PollInterval is how often the Wi-Fi watcher queries the device.
	PollInterval time.Duration `yaml:"pollInterval"`

	// LocalPort is the host port forwarded to the on-device automation
	// server.
	LocalPort int `yaml:"localPort"`

	Automation AutomationConfig `yaml:"automation"`
	Extract    ExtractConfig    `yaml:"extract"`
	Log        LogConfig        `yaml:"log"`

	// SelectorPack optionally points at a YAML file overriding the
	// built-in UI selectors, for vendor skins the defaults miss.
	SelectorPack string `yaml:"selectorPack"`

	// HistoryPath is the sqlite database recording finished runs. Empty
	// disables history.
	HistoryPath string `yaml:"historyPath"`

	// StatusPath is the JSON snapshot file other processes can poll.
	// Empty disables it.
	StatusPath string `yaml:"statusPath"`

	Webhook WebhookConfig `yaml:"webhook"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
}

// AutomationConfig tunes the run state machine.
type AutomationConfig struct {
	// MaxRetries is the number of retries after the first attempt; 2
	// means up to 3 attempts total.
	MaxRetries int `yaml:"maxRetries"`

	// RetryBackoff is the pause between attempts.
	RetryBackoff time.Duration `yaml:"retryBackoff"`

	// SecondaryToggleFirst flips the toggle off before on, for skins
	// that only show the address after a fresh enable.
	SecondaryToggleFirst bool `yaml:"secondaryToggleFirst"`

	// ReturnHome presses home after a run finishes.
	ReturnHome bool `yaml:"returnHome"`
}

// ExtractConfig tunes address extraction.
type ExtractConfig struct {
	MinPort     int  `yaml:"minPort"`
	MaxPort     int  `yaml:"maxPort"`
	PrivateOnly bool `yaml:"privateOnly"`
}

// LogConfig configures process logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// WebhookConfig configures the webhook sink. An empty URL disables it.
type WebhookConfig struct {
	URL           string `yaml:"url"`
	Script        string `yaml:"script"` // path to a payload transform
	RatePerMinute int    `yaml:"ratePerMinute"`
}

// MQTTConfig configures the MQTT sink. An empty broker disables it.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"clientID"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		PollInterval: 5 * time.Second,
		LocalPort:    6790,
		Automation: AutomationConfig{
			MaxRetries:   2,
			RetryBackoff: 5 * time.Second,
			ReturnHome:   true,
		},
		Extract: ExtractConfig{
			MinPort: 1024,
			MaxPort: 65535,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a YAML config file, applying defaults for unset fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML config bytes over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants the rest of the agent relies on.
func (c *Config) Validate() error {
	if c.TargetSSID == "" {
		return fmt.Errorf("targetSSID is required")
	}
	if c.Automation.MaxRetries < 0 {
		return fmt.Errorf("automation.maxRetries must not be negative")
	}
	if c.PollInterval < time.Second {
		return fmt.Errorf("pollInterval must be at least 1s")
	}
	if c.LocalPort <= 0 || c.LocalPort > 65535 {
		return fmt.Errorf("localPort %d out of range", c.LocalPort)
	}
	if c.Extract.MinPort < 0 || c.Extract.MaxPort > 65535 || c.Extract.MinPort > c.Extract.MaxPort {
		return fmt.Errorf("extract port range [%d, %d] invalid", c.Extract.MinPort, c.Extract.MaxPort)
	}
	if c.MQTT.Broker != "" && c.MQTT.Topic == "" {
		return fmt.Errorf("mqtt.topic is required when mqtt.broker is set")
	}
	return nil
}
