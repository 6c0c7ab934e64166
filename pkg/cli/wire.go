package cli

import (
	"fmt"
	"os"

	"github.com/autopair-dev/wadb-agent/pkg/config"
	"github.com/autopair-dev/wadb-agent/pkg/controller"
	"github.com/autopair-dev/wadb-agent/pkg/device"
	"github.com/autopair-dev/wadb-agent/pkg/extract"
	"github.com/autopair-dev/wadb-agent/pkg/history"
	"github.com/autopair-dev/wadb-agent/pkg/logging"
	"github.com/autopair-dev/wadb-agent/pkg/notify"
	"github.com/autopair-dev/wadb-agent/pkg/selector"
	"github.com/autopair-dev/wadb-agent/pkg/status"
	"github.com/autopair-dev/wadb-agent/pkg/uitree"
)

// Stack is the assembled runtime: device handle, accessor, controller, and
// the resources that need closing with it.
type Stack struct {
	Device     *device.AndroidDevice
	Controller *controller.Controller

	accessor *uitree.UIA2Accessor
	hist     *history.Store
	mqtt     *notify.MQTTSink
}

// Close releases the stack's resources.
func (s *Stack) Close() {
	if s.accessor != nil {
		s.accessor.Close()
	}
	if s.hist != nil {
		s.hist.Close()
	}
	if s.mqtt != nil {
		s.mqtt.Close()
	}
}

// buildStack assembles the runtime from configuration.
func buildStack(cfg *config.Config) (*Stack, error) {
	return buildStackWithResult(cfg, nil)
}

// buildStackWithResult additionally forwards each run's result to the given
// channel, when non-nil.
func buildStackWithResult(cfg *config.Config, results chan<- notify.Result) (*Stack, error) {
	log := logging.For("cli")

	serial := cfg.Device
	if serial == "" {
		first, err := device.FirstAvailable()
		if err != nil {
			return nil, err
		}
		serial = first.Serial
		log.Info().Str("serial", serial).Msg("using first available device")
	}

	dev, err := device.New(serial)
	if err != nil {
		return nil, err
	}

	accessor, err := uitree.Connect(dev, cfg.LocalPort)
	if err != nil {
		return nil, fmt.Errorf("connect to device %s: %w", serial, err)
	}

	stack := &Stack{Device: dev, accessor: accessor}

	pack := selector.Default()
	if cfg.SelectorPack != "" {
		pack, err = selector.LoadPack(cfg.SelectorPack)
		if err != nil {
			stack.Close()
			return nil, err
		}
	}

	sinks := []notify.Sink{notify.LogSink{}}
	if cfg.Webhook.URL != "" {
		script := ""
		if cfg.Webhook.Script != "" {
			data, err := os.ReadFile(cfg.Webhook.Script)
			if err != nil {
				stack.Close()
				return nil, fmt.Errorf("read webhook script: %w", err)
			}
			script = string(data)
		}
		hook, err := notify.NewWebhook(notify.WebhookOptions{
			URL:           cfg.Webhook.URL,
			Script:        script,
			RatePerMinute: cfg.Webhook.RatePerMinute,
		})
		if err != nil {
			stack.Close()
			return nil, err
		}
		sinks = append(sinks, hook)
	}
	if cfg.MQTT.Broker != "" {
		mq, err := notify.NewMQTT(notify.MQTTOptions{
			Broker:   cfg.MQTT.Broker,
			Topic:    cfg.MQTT.Topic,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
		})
		if err != nil {
			stack.Close()
			return nil, err
		}
		stack.mqtt = mq
		sinks = append(sinks, mq)
	}

	if cfg.HistoryPath != "" {
		stack.hist, err = history.Open(cfg.HistoryPath)
		if err != nil {
			stack.Close()
			return nil, err
		}
	}

	var publisher *status.Publisher
	if cfg.StatusPath != "" {
		publisher = status.NewPublisher(cfg.StatusPath)
	}

	cb := controller.Callbacks{
		OnPhase: func(p controller.Phase, info controller.RunInfo) {
			if publisher == nil {
				return
			}
			snap := status.Snapshot{
				Phase:     p.String(),
				Running:   p != controller.PhaseIdle,
				RunID:     info.RunID,
				Network:   info.Network,
				LastError: info.LastError,
			}
			if info.Address != nil {
				snap.Address = info.Address.String()
			}
			if err := publisher.Publish(snap); err != nil {
				log.Debug().Err(err).Msg("status publish failed")
			}
		},
		OnResult: func(r notify.Result) {
			if stack.hist != nil {
				rec := history.Record{
					RunID:      r.RunID,
					Trigger:    r.Trigger,
					Network:    r.Network,
					Outcome:    "completed",
					Error:      r.Error,
					Attempts:   r.Attempts,
					StartedAt:  r.StartedAt,
					FinishedAt: r.FinishedAt,
				}
				if r.Succeeded() {
					rec.Host = r.Address.Host
					rec.Port = r.Address.Port
				} else {
					rec.Outcome = "failed"
				}
				if err := stack.hist.Record(rec); err != nil {
					log.Warn().Err(err).Msg("history record failed")
				}
			}
			if results != nil {
				select {
				case results <- r:
				default:
				}
			}
		},
	}

	stack.Controller = controller.New(accessor, pack, notify.NewMulti(sinks...), controller.Options{
		Device:               serial,
		TargetSSID:           cfg.TargetSSID,
		MaxRetries:           cfg.Automation.MaxRetries,
		RetryBackoff:         cfg.Automation.RetryBackoff,
		SecondaryToggleFirst: cfg.Automation.SecondaryToggleFirst,
		ReturnHome:           cfg.Automation.ReturnHome,
		Extract: extract.Options{
			MinPort:     cfg.Extract.MinPort,
			MaxPort:     cfg.Extract.MaxPort,
			PrivateOnly: cfg.Extract.PrivateOnly,
		},
	}, cb)

	return stack, nil
}
