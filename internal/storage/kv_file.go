package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileKV keeps every key in one JSON document, rewritten atomically on each
// Set.
type FileKV struct {
	path string

	mu  sync.RWMutex
	doc Document
}

// OpenFileKV loads path if it exists. A missing file starts an empty store;
// an unreadable document is logged and replaced on the next write.
func OpenFileKV(path string) (*FileKV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating directory for %s: %w", path, err)
	}

	kv := &FileKV{path: path, doc: Document{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return kv, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &kv.doc); err != nil {
		slog.Warn("discarding unreadable key/value document", "path", path, "error", err)
		kv.doc = Document{}
	}
	return kv, nil
}

func (f *FileKV) Get(key string) ([]byte, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	raw, ok := f.doc[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), raw...), true, nil
}

func (f *FileKV) Set(key string, value []byte) error {
	if err := requireJSON(key, value); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.doc[key]
	f.doc[key] = append(json.RawMessage(nil), value...)

	data, err := json.MarshalIndent(f.doc, "", "  ")
	if err == nil {
		err = atomicWrite(f.path, data, 0o644)
	}
	if err != nil {
		if had {
			f.doc[key] = prev
		} else {
			f.doc.Delete(key)
		}
		return fmt.Errorf("saving %q: %w", key, err)
	}
	return nil
}

func (f *FileKV) Close() error {
	return nil
}
