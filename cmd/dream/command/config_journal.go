package command

import (
	"github.com/pixil98/go-dream/internal/events"
	"github.com/pixil98/go-dream/internal/journal"
)

// JournalConfig enables the compressed per-session event archive.
type JournalConfig struct {
	Dir string `json:"dir" env:"DREAM_JOURNAL_DIR"`
}

func (c *JournalConfig) validate() error {
	return nil
}

func (c *JournalConfig) enabled() bool {
	return c.Dir != ""
}

func (c *JournalConfig) buildJournal(bus *events.Bus) *journal.Journal {
	return journal.NewJournal(c.Dir, bus)
}
