package main

import (
	"errors"
	"fmt"

	"github.com/sweeney/pomodoro/internal/config"
	"github.com/sweeney/pomodoro/internal/gpio"
)

type namedLine struct {
	name string
	line gpio.Line
}

// hardware holds every GPIO line the daemon owns.
type hardware struct {
	buttons   []namedLine
	storeys   []gpio.Output
	indicator gpio.Output
}

// backend opens lines for one driver.
type backend struct {
	input  func(line int, activeLow bool) (gpio.Line, error)
	output func(line int, activeLow bool) (gpio.Output, error)
}

func backendFor(cfg *config.Config) (backend, error) {
	switch cfg.Driver {
	case config.DriverCdev:
		return backend{
			input: func(line int, activeLow bool) (gpio.Line, error) {
				return gpio.NewCdevLine(cfg.Chip, line, activeLow)
			},
			output: func(line int, activeLow bool) (gpio.Output, error) {
				return gpio.NewCdevOutput(cfg.Chip, line, activeLow)
			},
		}, nil
	case config.DriverPeriph:
		return backend{
			input: func(line int, activeLow bool) (gpio.Line, error) {
				return gpio.NewPeriphLine(gpio.PinName(line), activeLow)
			},
			output: func(line int, activeLow bool) (gpio.Output, error) {
				return gpio.NewPeriphOutput(gpio.PinName(line), activeLow)
			},
		}, nil
	}
	return backend{}, fmt.Errorf("unknown driver %q", cfg.Driver)
}

func openHardware(cfg *config.Config) (*hardware, error) {
	be, err := backendFor(cfg)
	if err != nil {
		return nil, err
	}
	return openWith(be, cfg)
}

// openWith opens every configured line, releasing any already opened on failure.
func openWith(be backend, cfg *config.Config) (*hardware, error) {
	hw := &hardware{}
	fail := func(err error) (*hardware, error) {
		hw.Close()
		return nil, err
	}

	for _, b := range cfg.Buttons {
		l, err := be.input(b.Line, b.ActiveLow)
		if err != nil {
			return fail(fmt.Errorf("button %s: %w", b.Name, err))
		}
		hw.buttons = append(hw.buttons, namedLine{name: b.Name, line: l})
	}
	for i, line := range cfg.Storeys {
		o, err := be.output(line, false)
		if err != nil {
			return fail(fmt.Errorf("storey %d: %w", i, err))
		}
		hw.storeys = append(hw.storeys, o)
	}
	ind, err := be.output(cfg.Indicator.Line, cfg.Indicator.ActiveLow)
	if err != nil {
		return fail(fmt.Errorf("indicator: %w", err))
	}
	hw.indicator = ind
	return hw, nil
}

// Close releases all lines.
func (h *hardware) Close() error {
	var errs []error
	for _, b := range h.buttons {
		if err := b.line.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, o := range h.storeys {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if h.indicator != nil {
		if err := h.indicator.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
