package events

import "time"

// Fade directions carried by FadeCommand and fade acknowledgments.
const (
	FadeDirectionOut = "out"
	FadeDirectionIn  = "in"
)

// FadeCommand asks the presentation layer to fade the screen. Speed is the
// opacity change per 100ms the renderer applies.
type FadeCommand struct {
	Speed      float64 `json:"speed"`
	DurationMs int64   `json:"duration_ms"`
	Reason     string  `json:"reason,omitempty"`
}

// NewFadeCommand builds a FadeCommand lasting d.
func NewFadeCommand(speed float64, d time.Duration, reason string) FadeCommand {
	return FadeCommand{Speed: speed, DurationMs: d.Milliseconds(), Reason: reason}
}
