// Package journal archives every event of a dream session to a
// zstd-compressed JSON lines file.
package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pixil98/go-dream/internal/events"
)

const (
	fileSuffix     = ".jsonl.zst"
	pendingBatches = 16
	writeBuffer    = 64 * 1024
)

// EventSource is where journalled events come from.
type EventSource interface {
	SubscribeAll(events.Handler) func()
}

type batch struct {
	session string
	events  []events.Event
}

// Journal buffers a session's events in memory and writes them out once
// the next session begins or the journal stops.
type Journal struct {
	dir    string
	source EventSource

	mu      sync.Mutex
	session string
	buf     []events.Event

	batches chan batch
}

func NewJournal(dir string, source EventSource) *Journal {
	return &Journal{
		dir:     dir,
		source:  source,
		batches: make(chan batch, pendingBatches),
	}
}

func (j *Journal) Start(ctx context.Context) error {
	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return fmt.Errorf("creating journal directory: %w", err)
	}

	unsub := j.source.SubscribeAll(j.record)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for b := range j.batches {
			j.write(b)
		}
	}()

	slog.InfoContext(ctx, "journal running", "dir", j.dir)
	<-ctx.Done()

	unsub()
	j.mu.Lock()
	last := j.takeLocked()
	j.mu.Unlock()
	if last != nil {
		j.batches <- *last
	}
	close(j.batches)
	wg.Wait()

	return nil
}

func (j *Journal) record(e events.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if e.Topic == events.SessionNew && e.Session != j.session {
		if b := j.takeLocked(); b != nil {
			select {
			case j.batches <- *b:
			default:
				slog.Warn("journal backlog full, dropping session", "session", b.session, "events", len(b.events))
			}
		}
		j.session = e.Session
	}
	j.buf = append(j.buf, e)
}

func (j *Journal) takeLocked() *batch {
	if len(j.buf) == 0 {
		return nil
	}
	b := &batch{session: j.session, events: j.buf}
	j.buf = nil
	return b
}

func (j *Journal) write(b batch) {
	name := b.session
	if name == "" {
		name = "unknown"
	}
	path := Path(j.dir, name)
	if err := WriteFile(path, b.events); err != nil {
		slog.Error("writing journal", "session", b.session, "error", err)
		return
	}
	slog.Info("journal written", "session", b.session, "events", len(b.events), "path", path)
}

// WriteFile writes evs to path as compressed JSON lines, replacing any
// existing file.
func WriteFile(path string, evs []events.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		f.Close()
		return fmt.Errorf("creating encoder: %w", err)
	}

	w := bufio.NewWriterSize(enc, writeBuffer)
	jw := json.NewEncoder(w)
	for _, e := range evs {
		if err := jw.Encode(e); err != nil {
			enc.Close()
			f.Close()
			return fmt.Errorf("encoding %s event: %w", e.Topic, err)
		}
	}

	if err := w.Flush(); err != nil {
		enc.Close()
		f.Close()
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("closing encoder: %w", err)
	}
	return f.Close()
}
