// Package ws exposes the dream to a presentation layer over WebSocket.
// Every outbound event is pushed as a JSON frame; inbound frames carry
// {"topic": ..., "data": ...} envelopes.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pixil98/go-dream/internal/dream"
	"github.com/pixil98/go-dream/internal/events"
)

const (
	DefaultPath = "/ws"

	TopicStatus = "status"

	clientQueue  = 64
	writeTimeout = 5 * time.Second
	readTimeout  = 60 * time.Second
)

type EventSource interface {
	SubscribeAll(events.Handler) func()
}

// Controller accepts inputs and reports the current state.
type Controller interface {
	Submit(dream.Input)
	Snapshot() dream.Snapshot
}

type client struct {
	id  string
	out chan []byte
}

type Gateway struct {
	addr   string
	path   string
	source EventSource
	ctrl   Controller

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client
}

type GatewayOpt func(*Gateway)

func WithPath(path string) GatewayOpt {
	return func(g *Gateway) {
		g.path = path
	}
}

// WithOriginCheck restricts which browser origins may connect.
func WithOriginCheck(fn func(r *http.Request) bool) GatewayOpt {
	return func(g *Gateway) {
		g.upgrader.CheckOrigin = fn
	}
}

func NewGateway(addr string, source EventSource, ctrl Controller, opts ...GatewayOpt) *Gateway {
	g := &Gateway{
		addr:   addr,
		path:   DefaultPath,
		source: source,
		ctrl:   ctrl,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: map[string]*client{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) Start(ctx context.Context) error {
	unsub := g.source.SubscribeAll(g.broadcast)
	defer unsub()

	mux := http.NewServeMux()
	mux.Handle(g.path, g.Handler())

	srv := &http.Server{
		Addr:              g.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	slog.InfoContext(ctx, "websocket gateway listening", "addr", g.addr, "path", g.path)

	select {
	case err := <-errCh:
		return fmt.Errorf("serving websocket gateway: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("shutting down websocket gateway", "error", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving websocket gateway: %w", err)
	}
	return nil
}

// Clients is the number of connected collaborators.
func (g *Gateway) Clients() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.clients)
}

// Handler upgrades a request and serves the connection until it closes.
func (g *Gateway) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := g.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			slog.Debug("websocket upgrade", "remote", r.RemoteAddr, "error", err)
			return
		}
		defer conn.Close()

		c := &client{id: uuid.NewString(), out: make(chan []byte, clientQueue)}
		if err := g.greet(conn); err != nil {
			slog.Debug("greeting websocket client", "error", err)
			return
		}
		g.add(c)
		defer g.remove(c)

		slog.Info("websocket client connected", "client", c.id, "remote", r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-c.out:
					_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			in, err := dream.DecodeEnvelope(msg)
			if err != nil {
				slog.Debug("rejecting websocket frame", "client", c.id, "error", err)
				continue
			}
			g.ctrl.Submit(in)
		}

		slog.Info("websocket client disconnected", "client", c.id)
	}
}

func (g *Gateway) greet(conn *websocket.Conn) error {
	b, err := json.Marshal(map[string]any{
		"topic": TopicStatus,
		"data":  g.ctrl.Snapshot(),
	})
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, b)
}

func (g *Gateway) add(c *client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[c.id] = c
}

func (g *Gateway) remove(c *client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.clients, c.id)
}

// broadcast runs on the simulation goroutine, so slow clients lose frames
// rather than stall it.
func (g *Gateway) broadcast(e events.Event) {
	b, err := json.Marshal(e)
	if err != nil {
		slog.Warn("encoding event", "topic", e.Topic, "error", err)
		return
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, c := range g.clients {
		select {
		case c.out <- b:
		default:
			slog.Debug("dropping frame for slow client", "client", c.id, "topic", e.Topic)
		}
	}
}
