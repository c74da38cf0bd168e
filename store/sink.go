package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Sink receives the whole dataset after every successful mutation. Flush is
// called with the store's write lock held and must not retain data.
type Sink interface {
	Flush(data map[string][]Record) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(data map[string][]Record) error

func (f SinkFunc) Flush(data map[string][]Record) error { return f(data) }

type nopSink struct{}

func (nopSink) Flush(map[string][]Record) error { return nil }

// Marshal renders data in the persisted form: pretty-printed JSON with sorted
// keys and a trailing newline.
func Marshal(data map[string][]Record) ([]byte, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// FileSink writes the dataset to a JSON file. Each flush goes to a temporary
// file in the same directory that is then renamed over the target.
type FileSink struct {
	path string
	perm os.FileMode

	mu sync.Mutex
	// Digests of the last two documents written. The older one still matches
	// the file when the newest flush failed before its rename.
	digests [2]uint64
	known   int
}

// NewFileSink returns a sink writing to path.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path, perm: 0o644}
}

// Path returns the target file.
func (s *FileSink) Path() string { return s.path }

func (s *FileSink) Flush(data map[string][]Record) error {
	b, err := Marshal(data)
	if err != nil {
		return err
	}
	dir, base := filepath.Split(s.path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, s.perm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	// Record the digest first so a watcher never sees our own file as foreign.
	s.remember(b)
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// Remember marks content as already known, e.g. the document the store was
// loaded from.
func (s *FileSink) Remember(content []byte) { s.remember(content) }

func (s *FileSink) remember(content []byte) {
	d := xxhash.Sum64(content)
	s.mu.Lock()
	s.digests[1] = s.digests[0]
	s.digests[0] = d
	if s.known < len(s.digests) {
		s.known++
	}
	s.mu.Unlock()
}

// Owns reports whether content is one of the last two flushed or remembered
// documents.
func (s *FileSink) Owns(content []byte) bool {
	d := xxhash.Sum64(content)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, known := range s.digests[:s.known] {
		if known == d {
			return true
		}
	}
	return false
}
