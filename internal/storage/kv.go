package storage

import (
	"encoding/json"
	"fmt"
	"sync"
)

// KeyValue is a flat store of JSON values. It backs cross-session
// persistence, so implementations must survive a process restart unless
// noted otherwise.
type KeyValue interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Close() error
}

// MemoryKV is a KeyValue that lives only as long as the process.
type MemoryKV struct {
	mu  sync.RWMutex
	doc Document
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{doc: Document{}}
}

func (m *MemoryKV) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, ok := m.doc[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), raw...), true, nil
}

// Set stores value as-is. Unlike the durable stores it accepts malformed
// JSON, which lets callers exercise their recovery paths.
func (m *MemoryKV) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.doc[key] = append(json.RawMessage(nil), value...)
	return nil
}

func (m *MemoryKV) Close() error {
	return nil
}

func requireJSON(key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for %q is not valid json", key)
	}
	return nil
}
