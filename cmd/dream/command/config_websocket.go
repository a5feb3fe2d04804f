package command

import (
	"fmt"
	"strings"

	"github.com/pixil98/go-dream/internal/transport/ws"
	"github.com/pixil98/go-errors"
)

type WebsocketConfig struct {
	Addr string `json:"addr" env:"DREAM_WS_ADDR"`
	Path string `json:"path"`
}

func (c *WebsocketConfig) validate() error {
	el := errors.NewErrorList()

	if c.Path != "" && !strings.HasPrefix(c.Path, "/") {
		el.Add(fmt.Errorf("websocket: path must start with /"))
	}

	return el.Err()
}

func (c *WebsocketConfig) enabled() bool {
	return c.Addr != ""
}

func (c *WebsocketConfig) buildGateway(source ws.EventSource, ctrl ws.Controller) *ws.Gateway {
	var opts []ws.GatewayOpt
	if c.Path != "" {
		opts = append(opts, ws.WithPath(c.Path))
	}
	return ws.NewGateway(c.Addr, source, ctrl, opts...)
}
