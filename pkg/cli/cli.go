// Package cli wires the agent's packages into the wadb-agent command.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/autopair-dev/wadb-agent/pkg/config"
	"github.com/autopair-dev/wadb-agent/pkg/controller"
	"github.com/autopair-dev/wadb-agent/pkg/device"
	"github.com/autopair-dev/wadb-agent/pkg/extract"
	"github.com/autopair-dev/wadb-agent/pkg/history"
	"github.com/autopair-dev/wadb-agent/pkg/logging"
	"github.com/autopair-dev/wadb-agent/pkg/notify"
	"github.com/autopair-dev/wadb-agent/pkg/trigger"
)

// New builds the command line application.
func New(version string) *cli.App {
	return &cli.App{
		Name:    "wadb-agent",
		Usage:   "enable Android wireless debugging automatically when a device joins the right network",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML configuration file",
				Value:   "wadb-agent.yaml",
			},
			&cli.StringFlag{
				Name:  "device",
				Usage: "adb serial, overriding the configured device",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "debug logging",
			},
		},
		Commands: []*cli.Command{
			watchCommand(),
			runCommand(),
			extractCommand(),
			historyCommand(),
			devicesCommand(),
		},
	}
}

// loadConfig reads the configured file and applies command line overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", c.String("config"), err)
	}
	if serial := c.String("device"); serial != "" {
		cfg.Device = serial
	}
	if c.Bool("verbose") {
		cfg.Log.Level = "debug"
	}
	if err := logging.Init(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File}); err != nil {
		return nil, err
	}
	return cfg, nil
}

// watchCommand runs the agent as a daemon: watch the network, run the
// automation on connect, repeat.
func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "watch for the target network and enable wireless debugging on connect",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "events-from",
				Usage: "read JSON-lines connectivity events from a file ('-' for stdin) instead of polling the device",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			log := logging.For("cli")

			// Config edits are picked up between runs: the stack is
			// rebuilt once the controller is idle again.
			cfgCh := make(chan *config.Config, 1)
			go func() {
				err := config.Watch(ctx, c.String("config"), func(next *config.Config) {
					select {
					case cfgCh <- next:
					default:
					}
				})
				if err != nil && ctx.Err() == nil {
					log.Warn().Err(err).Msg("config watcher stopped")
				}
			}()

			for {
				err := watchOnce(ctx, cfg, c.String("events-from"), cfgCh, &cfg)
				if err != nil || ctx.Err() != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
				log.Info().Msg("applying updated configuration")
			}
		},
	}
}

// watchOnce runs the trigger loop with one configuration. Returns nil when a
// new configuration should take over.
func watchOnce(ctx context.Context, cfg *config.Config, eventsFrom string, cfgCh <-chan *config.Config, out **config.Config) error {
	stack, err := buildStack(cfg)
	if err != nil {
		return err
	}
	defer stack.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	listener, err := newListener(runCtx, stack, cfg, eventsFrom)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- stack.Controller.Run(runCtx, listener) }()

	for {
		select {
		case err := <-done:
			if ctx.Err() != nil {
				return nil
			}
			return err
		case next := <-cfgCh:
			// Let an in-flight run finish before switching over.
			for {
				phase, _ := stack.Controller.Status()
				if phase == controller.PhaseIdle {
					break
				}
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(time.Second):
				}
			}
			*out = next
			cancel()
			<-done
			return nil
		}
	}
}

// newListener picks the trigger source: device polling by default, or a
// JSON-lines event stream when one is given.
func newListener(ctx context.Context, stack *Stack, cfg *config.Config, eventsFrom string) (trigger.Listener, error) {
	if eventsFrom == "" {
		watcher := trigger.NewWifiWatcher(stack.Device, cfg.PollInterval)
		go watcher.Run(ctx)
		return watcher, nil
	}

	if eventsFrom == "-" {
		return trigger.NewStreamListener(os.Stdin), nil
	}
	f, err := os.Open(eventsFrom)
	if err != nil {
		return nil, fmt.Errorf("open event stream: %w", err)
	}
	go func() {
		<-ctx.Done()
		f.Close()
	}()
	return trigger.NewStreamListener(f), nil
}

// runCommand performs a single run immediately, without waiting for a
// network trigger.
func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "run the automation once, now",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			results := make(chan notify.Result, 1)
			stack, err := buildStackWithResult(cfg, results)
			if err != nil {
				return err
			}
			defer stack.Close()

			if err := stack.Controller.TriggerManually(ctx); err != nil {
				return err
			}

			select {
			case <-ctx.Done():
				stack.Controller.Stop()
				return nil
			case r := <-results:
				if !r.Succeeded() {
					return fmt.Errorf("run failed after %d attempts: %s", r.Attempts, r.Error)
				}
				fmt.Println(r.Address.String())
				return nil
			}
		},
	}
}

// extractCommand runs the address extractor over text from arguments or
// stdin. Handy for testing selector packs against dumped screens.
func extractCommand() *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "extract a pairing address from text (arguments or stdin)",
		ArgsUsage: "[text...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "private-only", Usage: "accept private-range hosts only"},
		},
		Action: func(c *cli.Context) error {
			var corpus string
			if c.NArg() > 0 {
				corpus = strings.Join(c.Args().Slice(), " ")
			} else {
				var sb strings.Builder
				scanner := bufio.NewScanner(os.Stdin)
				for scanner.Scan() {
					sb.WriteString(scanner.Text())
					sb.WriteString(" ")
				}
				if err := scanner.Err(); err != nil {
					return err
				}
				corpus = sb.String()
			}

			opts := extract.Options{PrivateOnly: c.Bool("private-only")}
			cand, ok := extract.FromCorpus(corpus, opts)
			if !ok {
				return fmt.Errorf("no address found")
			}
			fmt.Println(cand.String())
			return nil
		},
	}
}

// historyCommand lists recent runs from the history database.
func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "list recent automation runs",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if cfg.HistoryPath == "" {
				return fmt.Errorf("historyPath is not configured")
			}

			store, err := history.Open(cfg.HistoryPath)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Recent(c.Int("limit"))
			if err != nil {
				return err
			}
			for _, r := range records {
				line := fmt.Sprintf("%s  %-9s %-20s %-9s attempts=%d",
					r.StartedAt.Format("2006-01-02 15:04:05"), r.Trigger, r.Network, r.Outcome, r.Attempts)
				if r.Outcome == "completed" {
					line += fmt.Sprintf("  %s:%d", r.Host, r.Port)
				} else if r.Error != "" {
					line += "  " + r.Error
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

// devicesCommand lists connected adb devices.
func devicesCommand() *cli.Command {
	return &cli.Command{
		Name:  "devices",
		Usage: "list connected Android devices",
		Action: func(c *cli.Context) error {
			devices, err := device.ListDevices()
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				fmt.Println("no devices connected")
				return nil
			}
			for _, d := range devices {
				fmt.Printf("%-24s %-12s %s\n", d.Serial, d.State, d.Type)
			}
			return nil
		},
	}
}
