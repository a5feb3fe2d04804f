package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pixil98/go-dream/internal/events"
)

// Entry is a journalled event with its payload left undecoded.
type Entry struct {
	Topic   events.Topic    `json:"topic"`
	Session string          `json:"session"`
	Time    time.Time       `json:"time"`
	Data    json.RawMessage `json:"data"`
}

// ReadFile decodes every entry in a journal file.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("creating decoder: %w", err)
	}
	defer dec.Close()

	var out []Entry
	scanner := bufio.NewScanner(dec)
	scanner.Buffer(make([]byte, 0, writeBuffer), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return out, fmt.Errorf("decoding entry %d: %w", len(out)+1, err)
		}
		out = append(out, e)
	}
	if err := scanner.Err(); err != nil {
		return out, fmt.Errorf("reading %s: %w", path, err)
	}
	return out, nil
}

// Sessions lists the session ids journalled in dir.
func Sessions(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+fileSuffix))
	if err != nil {
		return nil, fmt.Errorf("listing journals: %w", err)
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, strings.TrimSuffix(filepath.Base(m), fileSuffix))
	}
	sort.Strings(ids)
	return ids, nil
}

// Path is where the journal for session lives in dir.
func Path(dir, session string) string {
	return filepath.Join(dir, session+fileSuffix)
}
