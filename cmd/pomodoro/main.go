// Command pomodoro runs a Pomodoro timer on a Raspberry Pi: three presses on
// the start button begin a 25 minute work phase shown on the storey LEDs,
// followed by a 5 minute break.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sweeney/pomodoro/internal/button"
	"github.com/sweeney/pomodoro/internal/config"
	"github.com/sweeney/pomodoro/internal/leds"
	"github.com/sweeney/pomodoro/internal/logic"
	"github.com/sweeney/pomodoro/internal/mqtt"
	"github.com/sweeney/pomodoro/internal/notify"
	"github.com/sweeney/pomodoro/internal/pomodoro"
	"github.com/sweeney/pomodoro/internal/status"
)

// idleInterval is how often the main loop wakes while the timer runs.
const idleInterval = 3 * time.Second

var log = logrus.StandardLogger()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		broker     string
		logLevel   string
		printState bool
	)

	cmd := &cobra.Command{
		Use:           "pomodoro",
		Short:         "Pomodoro timer on GPIO buttons and LEDs",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, configPath, broker, logLevel)
			if err != nil {
				return err
			}
			lvl, _ := cfg.Level()
			log.SetLevel(lvl)
			return run(cfg, printState)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "YAML config file")
	f.StringVar(&broker, "broker", "", "MQTT broker address (overrides config)")
	f.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	f.BoolVar(&printState, "print-state", false, "Print button levels and exit")
	return cmd
}

// loadConfig applies flags that were set on the command line over the file
// and environment, then validates.
func loadConfig(cmd *cobra.Command, path, broker, logLevel string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("broker") {
		cfg.MQTT.Broker = broker
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cfg *config.Config, printState bool) error {
	hw, err := openHardware(cfg)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer hw.Close()

	if printState {
		for _, b := range hw.buttons {
			fmt.Printf("%s: %s\n", b.name, levelString(b.line.Level()))
		}
		return nil
	}

	publisher, mqttStatus, err := newPublisher(cfg)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		Driver:        cfg.Driver,
		Buttons:       len(cfg.Buttons),
		Storeys:       len(cfg.Storeys),
		HeartbeatMs:   cfg.Heartbeat.Milliseconds(),
		Broker:        cfg.MQTT.Broker,
		Repeat:        cfg.Repeat,
		SkipStartGate: cfg.SkipStartGate,
	})

	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		log.WithError(err).Warn("failed to publish startup event")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clk := clockwork.NewRealClock()
	start := notify.New()

	pool := button.NewPool(ctx, button.PoolConfig{
		Size:     config.MaxButtons,
		Presses:  pomodoro.PressesToStart,
		Clock:    clk,
		Logger:   log,
		OnSignal: tracker.AddSignal,
	})
	for _, b := range hw.buttons {
		if err := pool.Spawn(b.name, b.line, start); err != nil {
			return fmt.Errorf("spawn button worker: %w", err)
		}
	}

	orch, err := pomodoro.New(pomodoro.Options{
		Clock:         clk,
		Start:         start,
		Animation:     leds.NewStoreys(hw.storeys, clk),
		Indicator:     hw.indicator,
		Publisher:     publisher,
		Tracker:       tracker,
		Logger:        log,
		SkipStartGate: cfg.SkipStartGate,
		Repeat:        cfg.Repeat,
	})
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	cycleDone := make(chan error, 1)
	workersDone := make(chan error, 1)
	wg.Add(2)
	go func() {
		defer wg.Done()
		cycleDone <- orch.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		workersDone <- pool.Wait()
	}()

	log.WithFields(logrus.Fields{
		"driver":    cfg.Driver,
		"buttons":   len(hw.buttons),
		"storeys":   len(hw.storeys),
		"broker":    cfg.MQTT.Broker,
		"heartbeat": cfg.Heartbeat,
	}).Info("started")

	ticker := time.NewTicker(idleInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	err = runLoop(publisher, mqttStatus, tracker, cfg.Heartbeat, time.Now, ticker.C, sigCh, cycleDone, workersDone)

	// Stop the workers and orchestrator before the deferred hardware release.
	cancel()
	wg.Wait()
	return err
}

func runLoop(publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal, cycleDone, workersDone <-chan error) error {
	hb := logic.NewHeartbeat(now())

	shutdown := func(reason string) {
		event := mqtt.SystemEvent{
			Timestamp: now(),
			Event:     "SHUTDOWN",
			Reason:    reason,
			Retained:  true,
		}
		if tracker != nil {
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", reason)
		}
		if err := publisher.PublishSystem(event); err != nil {
			log.WithError(err).Warn("failed to publish shutdown event")
		} else {
			log.Info("published shutdown event")
		}
	}

	for {
		select {
		case s := <-sig:
			log.WithField("signal", s).Info("shutting down")
			shutdown(signalName(s))
			return nil

		case err := <-cycleDone:
			if err != nil {
				log.WithError(err).Error("timer stopped")
				shutdown("TIMER_ERROR")
				return fmt.Errorf("timer: %w", err)
			}
			// Keep idling; a fresh cycle needs a restart.
			log.Info("timer finished, idling")
			cycleDone = nil

		case err := <-workersDone:
			if err == nil {
				err = fmt.Errorf("button workers exited")
			}
			log.WithError(err).Error("button workers stopped")
			shutdown("BUTTON_ERROR")
			return err

		case <-tick:
			t := now()
			if tracker != nil && mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			if !hb.Check(t, heartbeat) {
				continue
			}

			hbEvent := mqtt.SystemEvent{Timestamp: t, Event: "HEARTBEAT"}
			if tracker != nil {
				snap := tracker.Snapshot()
				log.WithFields(logrus.Fields{
					"uptime":      snap.Uptime().Truncate(time.Second),
					"phase":       snap.Phase,
					"cycles_done": snap.Counts.CyclesDone,
				}).Info("heartbeat")
				hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
			}
			if err := publisher.PublishSystem(hbEvent); err != nil {
				log.WithError(err).Warn("heartbeat publish error")
			}
		}
	}
}

func newPublisher(cfg *config.Config) (mqtt.Publisher, mqtt.ConnectionStatus, error) {
	if cfg.MQTT.Broker == "" {
		log.Info("no mqtt broker configured, events are logged only")
		return mqtt.NopPublisher{}, mqtt.NopPublisher{}, nil
	}
	p, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID, log)
	if err != nil {
		return nil, nil, err
	}
	return p, p, nil
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}

func levelString(high bool) string {
	if high {
		return "HIGH"
	}
	return "LOW"
}
