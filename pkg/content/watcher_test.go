package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func writeDoc(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestWatcherReloads(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeDoc(t, dir, "blog/first.md", "---\ntitle: First\n---\nhello\n")

	ix, err := Load(os.DirFS(dir))
	require.NoError(t, err)
	require.Equal(t, []string{"first"}, ix.Slugs(TypePost))

	reloaded := make(chan struct{}, 4)
	w := NewWatcher(dir, ix, WatcherConfig{
		Debounce: 20 * time.Millisecond,
		OnReload: func(*Index) { reloaded <- struct{}{} },
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// The watch is registered asynchronously; keep touching the file
	// until a reload is observed.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
wait:
	for {
		select {
		case <-reloaded:
			break wait
		case <-tick.C:
			writeDoc(t, dir, "blog/second.md", "---\ntitle: Second\ndate: 2030-01-01\n---\nworld\n")
		case <-deadline:
			cancel()
			<-done
			t.Fatal("timed out waiting for reload")
		}
	}

	assert.Equal(t, []string{"second", "first"}, ix.Slugs(TypePost))

	cancel()
	require.NoError(t, <-done)
}

func TestWatcherKeepsIndexOnFailedReload(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "projects/a.md", "---\ntitle: A\n---\n")

	ix, err := Load(os.DirFS(dir))
	require.NoError(t, err)

	// Two files resolving to one slug make the next load fail.
	writeDoc(t, dir, "projects/b.md", "---\nslug: a\n---\n")
	w := NewWatcher(dir, ix, WatcherConfig{})
	w.reload()

	assert.Equal(t, []string{"a"}, ix.Slugs(TypeProject))
}
