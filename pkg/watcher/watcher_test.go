package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/grovetools/extender/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReloader struct {
	mu    sync.Mutex
	calls []string
}

func (r *countingReloader) ReloadProfiles(ctx context.Context, profileType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, profileType)
	return nil
}

func (r *countingReloader) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func startWatcher(t *testing.T, r Reloader, files []string, opts ...Option) chan string {
	t.Helper()
	reloaded := make(chan string, 10)
	opts = append(opts,
		WithLogger(testutil.DiscardLogger()),
		WithOnReload(func(file string, err error) {
			assert.NoError(t, err)
			reloaded <- file
		}),
	)
	w, err := New(r, files, opts...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return reloaded
}

func TestBurstOfWritesReloadsOnce(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "extender.yml", "profiles: []\n")
	r := &countingReloader{}

	reloaded := startWatcher(t, r, []string{path}, WithDebounce(100*time.Millisecond))

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("profiles: []\n"), 0644))
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case file := <-reloaded:
		assert.Equal(t, path, file)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a reload after config write")
	}

	// No further reload once the burst settled.
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, []string{""}, r.snapshot(), "one untyped reload per burst")
}

func TestNonConfigFilesAreIgnored(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "extender.yml", "profiles: []\n")
	r := &countingReloader{}

	reloaded := startWatcher(t, r, []string{path}, WithDebounce(20*time.Millisecond))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644))

	select {
	case file := <-reloaded:
		t.Fatalf("unexpected reload for %s", file)
	case <-time.After(200 * time.Millisecond):
	}
	assert.Empty(t, r.snapshot())
}

func TestNewFailsForMissingDirectory(t *testing.T) {
	_, err := New(&countingReloader{}, []string{filepath.Join(t.TempDir(), "missing", "extender.yml")},
		WithLogger(testutil.DiscardLogger()))
	assert.Error(t, err)
}

func TestIsConfigFile(t *testing.T) {
	assert.True(t, isConfigFile("/a/extender.yml"))
	assert.True(t, isConfigFile("/a/extender.override.YAML"))
	assert.True(t, isConfigFile("/a/extender.toml"))
	assert.False(t, isConfigFile("/a/extender.yml.swp"))
}
