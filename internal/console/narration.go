package console

import (
	"log/slog"
	"strings"

	"github.com/pixil98/go-dream/internal/display"
	"github.com/pixil98/go-dream/internal/events"
)

var narrationTemplates = map[events.Topic]string{
	events.MoodChanged:    `Your mood slides {{ printf "%s" .Quadrant | lower }} ({{ printf "%.1f" .Magnitude }}).`,
	events.MoodClassified: `You wake feeling {{ .Primary }} and {{ .Secondary }}.`,
	events.SceneChanged:   "{{ .Name | upper }}\n{{ .Description }}",
	events.DreamEvent:     `{{ if .Distortion }}Reality {{ if eq .Phase "start" }}bends{{ else }}settles{{ end }}: {{ printf "%s" .Distortion | replace "_" " " }}.{{ else }}A {{ .Type | replace "_" " " }} ripples through the dream.{{ end }}`,
	events.SessionEnd:     `The dream ends. {{ .Reason }}.`,
	events.SessionNew:     `A new dream begins. It will last {{ .MaxDuration }} seconds.`,
	events.PlayerHealth:   `Health {{ .Health }}/{{ .Max }}.`,
}

func (c *Console) narrate(e events.Event) (string, bool) {
	tmpl, ok := narrationTemplates[e.Topic]
	if !ok {
		return "", false
	}

	text, err := display.ExpandTemplate(tmpl, e.Data)
	if err != nil {
		slog.Debug("narrating event", "topic", e.Topic, "error", err)
		return "", false
	}
	return c.wrap(display.Capitalize(strings.TrimSpace(text))), true
}

func (c *Console) wrap(text string) string {
	return display.WrapTo(text, c.width)
}
