package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pixil98/go-dream/internal/dream"
	"github.com/pixil98/go-dream/internal/events"
)

const DefaultSubjectPrefix = "dream"

// EventSource is where outbound events come from.
type EventSource interface {
	SubscribeAll(events.Handler) func()
}

// Submitter accepts decoded inbound messages.
type Submitter interface {
	Submit(dream.Input)
}

// Bridge mirrors every outbound event onto <prefix>.out.<topic> and feeds
// messages published on <prefix>.in.<topic> back into the dream.
type Bridge struct {
	server *NatsServer
	source EventSource
	sink   Submitter
	prefix string
}

type BridgeOpt func(*Bridge)

func WithSubjectPrefix(prefix string) BridgeOpt {
	return func(b *Bridge) {
		b.prefix = prefix
	}
}

func NewBridge(server *NatsServer, source EventSource, sink Submitter, opts ...BridgeOpt) *Bridge {
	b := &Bridge{
		server: server,
		source: source,
		sink:   sink,
		prefix: DefaultSubjectPrefix,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bridge) Start(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case <-b.server.Ready():
	}

	unsubIn, err := b.server.Subscribe(b.inbound()+">", b.receive)
	if err != nil {
		return fmt.Errorf("starting event bridge: %w", err)
	}
	defer unsubIn()

	unsubOut := b.source.SubscribeAll(b.forward)
	defer unsubOut()

	slog.InfoContext(ctx, "event bridge running", "in", b.inbound()+">", "out", b.outbound()+">")
	<-ctx.Done()
	return nil
}

func (b *Bridge) inbound() string {
	return b.prefix + ".in."
}

func (b *Bridge) outbound() string {
	return b.prefix + ".out."
}

func (b *Bridge) forward(e events.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Warn("encoding event", "topic", e.Topic, "error", err)
		return
	}
	if err := b.server.Publish(b.outbound()+string(e.Topic), data); err != nil {
		slog.Warn("publishing event", "topic", e.Topic, "error", err)
	}
}

func (b *Bridge) receive(subject string, data []byte) {
	topic := events.Topic(strings.TrimPrefix(subject, b.inbound()))
	in, err := dream.DecodeInput(topic, data)
	if err != nil {
		slog.Warn("rejecting inbound message", "subject", subject, "error", err)
		return
	}
	b.sink.Submit(in)
}
