package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-dream/internal/messaging"
	"github.com/pixil98/go-errors"
)

type NatsConfig struct {
	Enabled       bool   `json:"enabled" env:"DREAM_NATS_ENABLED"`
	Host          string `json:"host" env:"DREAM_NATS_HOST"`
	Port          int    `json:"port" env:"DREAM_NATS_PORT"`
	StartTimeout  string `json:"start_timeout"`
	SubjectPrefix string `json:"subject_prefix"`
	ClientName    string `json:"client_name"`
	MaxPayload    int32  `json:"max_payload"`
}

func (n *NatsConfig) validate() error {
	el := errors.NewErrorList()

	if n.StartTimeout != "" {
		_, err := time.ParseDuration(n.StartTimeout)
		if err != nil {
			el.Add(fmt.Errorf("nats: parsing start_timeout: %w", err))
		}
	}
	if n.Port < -1 || n.Port > 65535 {
		el.Add(fmt.Errorf("nats: port %d out of range", n.Port))
	}
	if n.MaxPayload < 0 {
		el.Add(fmt.Errorf("nats: max_payload must not be negative"))
	}

	return el.Err()
}

func (c *NatsConfig) buildNatsServer() (*messaging.NatsServer, error) {
	var opts []messaging.NatsServerOpt
	if c.StartTimeout != "" {
		d, err := time.ParseDuration(c.StartTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing start_timeout: %w", err)
		}
		opts = append(opts, messaging.WithStartTimeout(d))
	}
	opts = append(opts, messaging.WithListen(c.Host, c.Port))
	if c.ClientName != "" {
		opts = append(opts, messaging.WithClientName(c.ClientName))
	}
	if c.MaxPayload > 0 {
		opts = append(opts, messaging.WithMaxPayload(c.MaxPayload))
	}

	s, err := messaging.NewNatsServer(opts...)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (c *NatsConfig) bridgeOpts() []messaging.BridgeOpt {
	if c.SubjectPrefix == "" {
		return nil
	}
	return []messaging.BridgeOpt{messaging.WithSubjectPrefix(c.SubjectPrefix)}
}
