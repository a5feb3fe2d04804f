package listener

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// SessionRunner serves one connected operator until they leave.
type SessionRunner interface {
	RunSession(ctx context.Context, conn io.ReadWriter) error
}

// ConnectionManager hands accepted connections to the console and keeps
// count of who is watching.
type ConnectionManager struct {
	runner SessionRunner
	active atomic.Int32
	limit  int32
}

type ConnectionManagerOpt func(*ConnectionManager)

// WithConnectionLimit caps concurrent operators. Zero means unlimited.
func WithConnectionLimit(n int) ConnectionManagerOpt {
	return func(m *ConnectionManager) {
		m.limit = int32(n)
	}
}

func NewConnectionManager(runner SessionRunner, opts ...ConnectionManagerOpt) *ConnectionManager {
	m := &ConnectionManager{
		runner: runner,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *ConnectionManager) Active() int {
	return int(m.active.Load())
}

func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter) {
	n := m.active.Add(1)
	defer m.active.Add(-1)

	if m.limit > 0 && n > m.limit {
		slog.WarnContext(ctx, "rejecting console connection", "active", n-1, "limit", m.limit)
		if _, err := io.WriteString(conn, "The dream is crowded. Try again later.\n"); err != nil {
			slog.Debug("writing rejection", "error", err)
		}
		return
	}

	id := uuid.NewString()
	start := time.Now()
	slog.InfoContext(ctx, "console session opened", "conn", id, "active", n)

	if err := m.runner.RunSession(ctx, conn); err != nil {
		slog.WarnContext(ctx, "console session", "conn", id, "error", err)
	}

	slog.InfoContext(ctx, "console session closed", "conn", id, "duration", time.Since(start))
}
