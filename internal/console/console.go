// Package console is a line-oriented operator interface to a running
// dream. Operators watch narrated events and inject inputs by hand.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/pixil98/go-dream/internal/display"
	"github.com/pixil98/go-dream/internal/dream"
	"github.com/pixil98/go-dream/internal/events"
	"github.com/pixil98/go-dream/internal/game"
	"github.com/pixil98/go-dream/internal/mood"
	"github.com/pixil98/go-dream/internal/scene"
	"github.com/pixil98/go-dream/internal/session"
)

const (
	DefaultWidth     = display.DefaultWidth
	narrationBacklog = 64
	prompt           = "> "
)

// Controller is the part of the dream the console drives.
type Controller interface {
	Submit(dream.Input)
	SetMood(mood.Vector)
	Snapshot() dream.Snapshot
	Objects(game.ObjectKind) []game.Object
	MoodHistory() []mood.HistoryEntry
	SceneHistory() []scene.HistoryEntry
	SessionHistory() []session.Summary
}

// EventSource delivers outbound events for narration.
type EventSource interface {
	SubscribeAll(events.Handler) func()
}

type Console struct {
	ctrl     Controller
	source   EventSource
	width    int
	commands map[string]*command
}

type ConsoleOpt func(*Console)

func WithWidth(w int) ConsoleOpt {
	return func(c *Console) {
		c.width = w
	}
}

func NewConsole(ctrl Controller, source EventSource, opts ...ConsoleOpt) *Console {
	c := &Console{
		ctrl:   ctrl,
		source: source,
		width:  DefaultWidth,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.commands = c.builtinCommands()
	return c
}

// operator is one connected console user.
type operator struct {
	mu   sync.Mutex
	w    io.Writer
	quit bool
}

func (s *operator) write(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := io.WriteString(s.w, text); err != nil {
		slog.Debug("writing to console", "error", err)
	}
}

// RunSession serves one operator until they quit, the connection closes or
// ctx is cancelled.
func (c *Console) RunSession(ctx context.Context, rw io.ReadWriter) error {
	s := &operator{w: rw}

	narration := make(chan string, narrationBacklog)
	unsub := func() {}
	if c.source != nil {
		unsub = c.source.SubscribeAll(func(e events.Event) {
			text, ok := c.narrate(e)
			if !ok {
				return
			}
			select {
			case narration <- text:
			default:
			}
		})
	}
	defer unsub()

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case text := <-narration:
				s.write("\n" + text + "\n")
			}
		}
	}()
	defer func() {
		close(done)
		wg.Wait()
	}()

	s.write(c.wrap("You drift at the edge of someone else's dream. Type 'help' for commands.") + "\n" + prompt)

	scanner := bufio.NewScanner(rw)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			out, err := c.exec(line, s)
			var ue *UserError
			switch {
			case errors.As(err, &ue):
				s.write(ue.Message + "\n")
			case err != nil:
				slog.WarnContext(ctx, "console command", "line", line, "error", err)
				s.write("Something went wrong.\n")
			case out != "":
				s.write(out + "\n")
			}
		}

		if s.quit {
			s.write("You let go of the dream.\n")
			return nil
		}
		s.write(prompt)
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("reading console input: %w", err)
	}
	return nil
}

// exec runs one command line and returns its output.
func (c *Console) exec(line string, s *operator) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}

	cmd, ok := c.commands[strings.ToLower(fields[0])]
	if !ok {
		return "", NewUserError(fmt.Sprintf("Unknown command %q. Type 'help' for a list.", fields[0]))
	}
	return cmd.run(s, fields[1:])
}
