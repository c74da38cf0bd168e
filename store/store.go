// Package store holds the in-memory dataset served by the mock API.
//
// A Store maps collection names to ordered slices of records. All access goes
// through one sync.RWMutex: reads share it, every mutation takes it exclusively
// and flushes the whole dataset to a Sink before releasing it. A write to any
// collection therefore blocks reads of every other collection.
package store

import (
	"bytes"
	"log/slog"
	"os"
	"sort"
	"sync"
)

// Store is safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]Record

	sink    Sink
	onFlush func(error)
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithSink sets where the dataset is persisted after mutations.
func WithSink(sink Sink) Option {
	return func(s *Store) { s.sink = sink }
}

// WithFlushErrorHandler replaces the default handler, which logs the error.
// Flush errors never reach the caller of a CRUD operation.
func WithFlushErrorHandler(fn func(error)) Option {
	return func(s *Store) { s.onFlush = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New returns a Store owning data. With no sink configured mutations are kept
// in memory only.
func New(data map[string][]Record, opts ...Option) *Store {
	if data == nil {
		data = make(map[string][]Record)
	}
	s := &Store{
		collections: data,
		sink:        nopSink{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.onFlush == nil {
		s.onFlush = func(err error) {
			s.logger.Warn("flush failed", "err", err)
		}
	}
	return s
}

// ReadFile loads a data file. Failures are returned as *StartupError.
func ReadFile(path string) (map[string][]Record, []byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &StartupError{Path: path, Err: err}
	}
	data, err := Decode(bytes.NewReader(content))
	if err != nil {
		return nil, nil, &StartupError{Path: path, Err: err}
	}
	return data, content, nil
}

// Open loads path and returns a Store persisting back to it. A FileSink for
// path is used unless WithSink is given.
func Open(path string, opts ...Option) (*Store, error) {
	data, content, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := New(data, append([]Option{WithSink(NewFileSink(path))}, opts...)...)
	if fs, ok := s.sink.(*FileSink); ok && fs.Path() == path {
		fs.Remember(content)
	}
	return s, nil
}

// Collections returns the collection names in sorted order.
func (s *Store) Collections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Counts returns the number of records per collection.
func (s *Store) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.collections))
	for name, recs := range s.collections {
		out[name] = len(recs)
	}
	return out
}

// Snapshot returns a deep copy of the whole dataset.
func (s *Store) Snapshot() map[string][]Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]Record, len(s.collections))
	for name, recs := range s.collections {
		out[name] = cloneAll(recs)
	}
	return out
}

// Reset replaces the dataset without flushing it.
func (s *Store) Reset(data map[string][]Record) {
	s.Reload(func() (map[string][]Record, bool) { return data, true })
}

// Reload calls load with the write lock held and, if it returns true, replaces
// the dataset with its result without flushing. Flushes also run under the
// write lock, so load sees the backing file exactly as the last flush left it.
func (s *Store) Reload(load func() (map[string][]Record, bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := load()
	if !ok {
		return false
	}
	if data == nil {
		data = make(map[string][]Record)
	}
	s.collections = data
	return true
}

// flush must be called with the write lock held.
func (s *Store) flush() {
	if err := s.sink.Flush(s.collections); err != nil {
		s.onFlush(err)
	}
}

func cloneAll(recs []Record) []Record {
	out := make([]Record, len(recs))
	for i, rec := range recs {
		out[i] = rec.Clone()
	}
	return out
}
