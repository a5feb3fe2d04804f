// Package driver runs simulations on a fixed wall-clock cadence.
package driver

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	DefaultTickLength = 50 * time.Millisecond
)

// Ticker is advanced once per driver tick.
type Ticker interface {
	Tick(context.Context) error
}

type Driver struct {
	tickLength time.Duration
	tickers    []Ticker
	onStart    []func()
}

func NewDriver(tickers []Ticker, opts ...DriverOpt) *Driver {
	d := &Driver{
		tickLength: DefaultTickLength,
		tickers:    tickers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Driver) Start(ctx context.Context) error {
	for _, fn := range d.onStart {
		fn()
	}

	slog.InfoContext(ctx, "driver started", "tick", d.tickLength)
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "driver stopped")
			return nil
		case <-ticker.C:
			err := d.Tick(ctx)
			if err != nil {
				return fmt.Errorf("ticking: %w", err)
			}
		}
	}
}

func (d *Driver) Tick(ctx context.Context) error {
	for _, t := range d.tickers {
		if err := t.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}
