// Package config loads daemon configuration.
// Precedence: built-in defaults → YAML file → POMODORO_* env vars → CLI flags
// (flags are applied by the caller).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/pomodoro/internal/gpio"
)

// MaxButtons is the number of physical start buttons supported.
const MaxButtons = 2

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Drivers.
const (
	DriverCdev   = "cdev"
	DriverPeriph = "periph"
)

// Env var names.
const (
	EnvBroker   = "POMODORO_BROKER"
	EnvLogLevel = "POMODORO_LOG_LEVEL"
	EnvRepeat   = "POMODORO_REPEAT"
)

// Button is one start button input.
type Button struct {
	Name      string `yaml:"name"`
	Line      int    `yaml:"line"`
	ActiveLow bool   `yaml:"active_low"`
}

// Indicator is the LED that is lit while a cycle runs.
type Indicator struct {
	Line      int  `yaml:"line"`
	ActiveLow bool `yaml:"active_low"`
}

// MQTT holds broker settings. An empty Broker disables publishing.
type MQTT struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
}

// Config holds all daemon settings.
type Config struct {
	Driver    string        `yaml:"driver"`
	Chip      string        `yaml:"chip"`
	Buttons   []Button      `yaml:"buttons"`
	Storeys   []int         `yaml:"storeys"`
	Indicator Indicator     `yaml:"indicator"`
	MQTT      MQTT          `yaml:"mqtt"`
	Heartbeat time.Duration `yaml:"heartbeat"`
	LogLevel  string        `yaml:"log_level"`

	Repeat        bool `yaml:"repeat"`
	SkipStartGate bool `yaml:"skip_start_gate"`
}

// Default returns the configuration for the reference board.
func Default() *Config {
	return &Config{
		Driver:    DriverCdev,
		Chip:      gpio.DefaultChip,
		Buttons:   []Button{{Name: "sw1", Line: gpio.DefaultButtonLine, ActiveLow: true}},
		Storeys:   append([]int(nil), gpio.DefaultStoreyLines...),
		Indicator: Indicator{Line: gpio.DefaultIndicatorLine},
		MQTT:      MQTT{ClientID: "pomodoro"},
		Heartbeat: 15 * time.Minute,
		LogLevel:  "info",
	}
}

// Load reads the YAML file at path over the defaults, then applies env
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if cfg, err = Parse(data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv(EnvBroker); v != "" {
		c.MQTT.Broker = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := getenv(EnvRepeat); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvRepeat, v, err)
		}
		c.Repeat = b
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() (logrus.Level, error) {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return lvl, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverCdev, DriverPeriph:
	default:
		return fmt.Errorf("%w: unknown driver %q", ErrInvalid, c.Driver)
	}
	if c.Driver == DriverCdev && c.Chip == "" {
		return fmt.Errorf("%w: chip required for cdev driver", ErrInvalid)
	}
	if len(c.Buttons) == 0 {
		return fmt.Errorf("%w: at least one button required", ErrInvalid)
	}
	if len(c.Buttons) > MaxButtons {
		return fmt.Errorf("%w: %d buttons configured, at most %d supported", ErrInvalid, len(c.Buttons), MaxButtons)
	}
	if len(c.Storeys) == 0 {
		return fmt.Errorf("%w: at least one storey required", ErrInvalid)
	}
	if c.Heartbeat < 0 {
		return fmt.Errorf("%w: negative heartbeat", ErrInvalid)
	}
	if c.MQTT.Broker != "" && c.MQTT.ClientID == "" {
		return fmt.Errorf("%w: mqtt client_id required with broker", ErrInvalid)
	}
	if _, err := c.Level(); err != nil {
		return err
	}

	names := make(map[string]bool)
	lines := make(map[int]string)
	claim := func(line int, owner string) error {
		if line < 0 {
			return fmt.Errorf("%w: %s: negative line %d", ErrInvalid, owner, line)
		}
		if prev, ok := lines[line]; ok {
			return fmt.Errorf("%w: line %d used by both %s and %s", ErrInvalid, line, prev, owner)
		}
		lines[line] = owner
		return nil
	}

	for _, b := range c.Buttons {
		if b.Name == "" {
			return fmt.Errorf("%w: button without name", ErrInvalid)
		}
		if names[b.Name] {
			return fmt.Errorf("%w: duplicate button %q", ErrInvalid, b.Name)
		}
		names[b.Name] = true
		if err := claim(b.Line, "button "+b.Name); err != nil {
			return err
		}
	}
	for i, l := range c.Storeys {
		if err := claim(l, fmt.Sprintf("storey %d", i)); err != nil {
			return err
		}
	}
	return claim(c.Indicator.Line, "indicator")
}
