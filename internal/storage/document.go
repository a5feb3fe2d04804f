package storage

import (
	"encoding/json"
	"fmt"
)

// Document is a set of JSON values keyed by name.
type Document map[string]json.RawMessage

// Set stores v under key after marshalling it to JSON.
func (d *Document) Set(key string, v any) error {
	if *d == nil {
		*d = Document{}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshalling %q: %w", key, err)
	}

	(*d)[key] = json.RawMessage(b)
	return nil
}

// Get unmarshals the value at key into out. It reports found=false when the
// key is absent.
func (d Document) Get(key string, out any) (bool, error) {
	raw, ok := d[key]
	if !ok || len(raw) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("unmarshalling %q: %w", key, err)
	}
	return true, nil
}

func (d Document) Delete(key string) {
	delete(d, key)
}
