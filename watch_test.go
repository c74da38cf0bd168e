package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apimocker/store"
)

func startWatcher(t *testing.T, seed string) (*store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	sink := store.NewFileSink(path)
	logger := newLogger(io.Discard, 0, "text")
	st, err := store.Open(path, store.WithSink(sink), store.WithLogger(logger))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watchFile(ctx, path, st, sink, logger) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	// Give the watcher time to register before the test edits the file.
	time.Sleep(100 * time.Millisecond)
	return st, path
}

func TestWatchFile_ReloadsExternalEdits(t *testing.T) {
	st, path := startWatcher(t, `{"users":[{"id":1,"name":"Alice"}]}`)

	require.NoError(t, os.WriteFile(path, []byte(`{"users":[{"id":1,"name":"Edited"}],"posts":[]}`), 0o644))

	require.Eventually(t, func() bool {
		rec, err := st.Get("users", "1")
		return err == nil && rec["name"] == "Edited"
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, []string{"posts", "users"}, st.Collections())
}

func TestWatchFile_IgnoresOwnFlushes(t *testing.T) {
	st, path := startWatcher(t, `{"users":[]}`)

	for i := 0; i < 5; i++ {
		st.Create("users", store.Record{"id": json.Number("1")})
	}
	// Own writes must never roll the dataset back.
	time.Sleep(300 * time.Millisecond)
	assert.Len(t, st.List("users"), 5)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk map[string][]map[string]any
	require.NoError(t, json.Unmarshal(content, &onDisk))
	assert.Len(t, onDisk["users"], 5)
}

func TestWatchFile_ConcurrentCreatesAreNotRolledBack(t *testing.T) {
	st, path := startWatcher(t, `{"users":[]}`)

	const workers = 8
	const perWorker = 300
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				st.Create("users", store.Record{"id": json.Number(strconv.Itoa(w*perWorker + i))})
			}
		}(w)
	}
	wg.Wait()
	// Let the watcher drain the events of every flush.
	time.Sleep(500 * time.Millisecond)

	assert.Len(t, st.List("users"), workers*perWorker)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk map[string][]map[string]any
	require.NoError(t, json.Unmarshal(content, &onDisk))
	assert.Len(t, onDisk["users"], workers*perWorker)
}

func TestWatchFile_KeepsDataOnInvalidEdit(t *testing.T) {
	st, path := startWatcher(t, `{"users":[{"id":1}]}`)

	require.NoError(t, os.WriteFile(path, []byte(`{"users": [`), 0o644))
	time.Sleep(300 * time.Millisecond)
	assert.Len(t, st.List("users"), 1)

	require.NoError(t, os.WriteFile(path, []byte(`{"users":[{"id":1},{"id":2}]}`), 0o644))
	require.Eventually(t, func() bool {
		return len(st.List("users")) == 2
	}, 5*time.Second, 20*time.Millisecond)
}
