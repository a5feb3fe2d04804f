package command

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pixil98/go-dream/internal/tuning"
	"github.com/pixil98/go-errors"
)

type Config struct {
	TickInterval string `json:"tick_interval" env:"DREAM_TICK_INTERVAL"`
	LogLevel     string `json:"log_level" env:"DREAM_LOG_LEVEL"`

	// TuningPath points at a YAML tuning file. Built-in tuning is used when
	// empty.
	TuningPath string `json:"tuning_path" env:"DREAM_TUNING_PATH"`

	// Headless acknowledges fades itself so sessions cycle without a
	// presentation layer attached.
	Headless bool `json:"headless" env:"DREAM_HEADLESS"`

	Scenes    ScenesConfig     `json:"scenes"`
	Storage   StorageConfig    `json:"storage"`
	Journal   JournalConfig    `json:"journal"`
	Nats      NatsConfig       `json:"nats"`
	Websocket WebsocketConfig  `json:"websocket"`
	Listeners []ListenerConfig `json:"listeners"`

	// MaxConsoles caps concurrent console operators. Zero means unlimited.
	MaxConsoles int `json:"max_consoles"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.TickInterval != "" {
		d, err := time.ParseDuration(c.TickInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing tick_interval: %w", err))
		} else if d < time.Millisecond || d > time.Second {
			el.Add(fmt.Errorf("tick_interval must be between 1ms and 1s"))
		}
	}

	if c.LogLevel != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
			el.Add(fmt.Errorf("parsing log_level: %w", err))
		}
	}

	if c.MaxConsoles < 0 {
		el.Add(fmt.Errorf("max_consoles must not be negative"))
	}

	for i, l := range c.Listeners {
		err := l.validate()
		if err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
	}

	el.Add(c.Scenes.validate())
	el.Add(c.Storage.validate())
	el.Add(c.Journal.validate())
	el.Add(c.Nats.validate())
	el.Add(c.Websocket.validate())

	return el.Err()
}

// applyEnv overlays environment variables onto the loaded config. Unset
// variables leave the file's values alone.
func (c *Config) applyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
}

func (c *Config) tickInterval() time.Duration {
	if c.TickInterval == "" {
		return 0
	}
	d, _ := time.ParseDuration(c.TickInterval)
	return d
}

func (c *Config) logLevel() slog.Level {
	var lvl slog.Level
	if c.LogLevel != "" {
		_ = lvl.UnmarshalText([]byte(c.LogLevel))
	}
	return lvl
}

func (c *Config) loadTuning() (tuning.Tuning, error) {
	if c.TuningPath == "" {
		return tuning.Default(), nil
	}
	return tuning.Load(c.TuningPath)
}
