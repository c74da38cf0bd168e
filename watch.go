package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"apimocker/store"
)

// watchFile reloads st whenever the data file is changed by someone else. The
// parent directory is watched because flushes replace the file by rename.
// It returns when ctx is done.
func watchFile(ctx context.Context, path string, st *store.Store, sink *store.FileSink, l *slog.Logger) error {
	l = l.With("component", componentWatcher)
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	l.Info("watching data file", "path", abs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				reload(abs, st, sink, l)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.Warn("watch error", "err", err)
		}
	}
}

// reload swaps the dataset for the file content unless the content is what
// the server itself last wrote. An unparsable file keeps the current data. The
// whole check runs under the store's write lock so no flush can land between
// reading the file and replacing the dataset.
func reload(path string, st *store.Store, sink *store.FileSink, l *slog.Logger) {
	var collections int
	loaded := st.Reload(func() (map[string][]store.Record, bool) {
		content, err := os.ReadFile(path)
		if err != nil {
			l.Warn("reload skipped", "err", err)
			return nil, false
		}
		if len(bytes.TrimSpace(content)) == 0 {
			// Editors often truncate before writing; wait for the next event.
			return nil, false
		}
		if sink.Owns(content) {
			return nil, false
		}
		data, err := store.Decode(bytes.NewReader(content))
		if err != nil {
			l.Warn("reload skipped: invalid data file", "err", err)
			return nil, false
		}
		sink.Remember(content)
		collections = len(data)
		return data, true
	})
	if loaded {
		l.Info("data file reloaded", "collections", collections)
	}
}
