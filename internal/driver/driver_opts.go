package driver

import "time"

type DriverOpt func(*Driver)

func WithTickLength(tickLength time.Duration) DriverOpt {
	return func(d *Driver) {
		d.tickLength = tickLength
	}
}

// WithOnStart runs fn once when the driver starts, before the first tick.
func WithOnStart(fn func()) DriverOpt {
	return func(d *Driver) {
		d.onStart = append(d.onStart, fn)
	}
}
