package command

import (
	"fmt"

	"github.com/pixil98/go-dream/internal/storage"
	"github.com/pixil98/go-errors"
)

type StorageBackend string

const (
	StorageMemory StorageBackend = "memory"
	StorageFile   StorageBackend = "file"
	StorageSQLite StorageBackend = "sqlite"
)

// StorageConfig selects where session records persist between runs.
type StorageConfig struct {
	Backend StorageBackend `json:"backend" env:"DREAM_STORAGE_BACKEND"`
	Path    string         `json:"path" env:"DREAM_STORAGE_PATH"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()

	switch c.Backend {
	case "", StorageMemory:
	case StorageFile, StorageSQLite:
		if c.Path == "" {
			el.Add(fmt.Errorf("storage: path is required for the %s backend", c.Backend))
		}
	default:
		el.Add(fmt.Errorf("storage: unknown backend %q", c.Backend))
	}

	return el.Err()
}

func (c *StorageConfig) buildKeyValue() (storage.KeyValue, error) {
	switch c.Backend {
	case "", StorageMemory:
		return storage.NewMemoryKV(), nil
	case StorageFile:
		return storage.OpenFileKV(c.Path)
	case StorageSQLite:
		return storage.OpenSQLiteKV(c.Path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.Backend)
	}
}
