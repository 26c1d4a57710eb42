package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, root string, opts Options) <-chan []string {
	t.Helper()
	changes := make(chan []string, 16)
	w, err := New(root, opts, func(paths []string) { changes <- paths })
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
		_ = w.Close()
	})
	return changes
}

func waitFor(t *testing.T, changes <-chan []string, want string) {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case paths := <-changes:
			for _, p := range paths {
				if p == want {
					return
				}
			}
		case <-timeout:
			t.Fatalf("timed out waiting for change to %s", want)
		}
	}
}

func TestNew_RejectsNilCallback(t *testing.T) {
	w, err := New(t.TempDir(), Options{}, nil)
	assert.ErrorIs(t, err, ErrNilCallback)
	assert.Nil(t, w)
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"), Options{}, func([]string) {})
	assert.Error(t, err)
}

func TestWatcher_ReportsRelativePaths(t *testing.T) {
	root := t.TempDir()
	changes := startWatcher(t, root, Options{Debounce: 50 * time.Millisecond, Extensions: []string{"ts"}})

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.ts"), []byte("export {}"), 0o644))
	waitFor(t, changes, "a.ts")
}

func TestWatcher_NewDirectoryIsWatched(t *testing.T) {
	root := t.TempDir()
	changes := startWatcher(t, root, Options{Debounce: 50 * time.Millisecond})

	sub := filepath.Join(root, "src", "lib")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "util.go"), []byte("package lib"), 0o644))

	timeout := time.After(3 * time.Second)
	for {
		select {
		case paths := <-changes:
			for _, p := range paths {
				if strings.HasSuffix(p, "util.go") {
					assert.Equal(t, "src/lib/util.go", p)
					return
				}
			}
		case <-timeout:
			t.Fatal("timed out waiting for nested file event")
		}
	}
}

func TestWatcher_RenameTriggersChange(t *testing.T) {
	root := t.TempDir()
	oldPath := filepath.Join(root, "old.py")
	require.NoError(t, os.WriteFile(oldPath, []byte("x = 1"), 0o644))
	changes := startWatcher(t, root, Options{Debounce: 50 * time.Millisecond})

	require.NoError(t, os.Rename(oldPath, filepath.Join(root, "new.py")))
	waitFor(t, changes, "new.py")
}

func TestWatcher_Filters(t *testing.T) {
	w, err := New(t.TempDir(), Options{
		Extensions: []string{".ts", "PY"},
		Excluded:   func(rel string) bool { return strings.HasPrefix(rel, "node_modules/") },
	}, func([]string) {})
	require.NoError(t, err)
	defer w.Close()

	assert.True(t, w.relevant("src/a.ts"))
	assert.True(t, w.relevant("tool/main.py"))
	assert.False(t, w.relevant("README.md"))
	assert.False(t, w.relevant("node_modules/pkg/index.ts"))
}

func TestWatcher_DebounceBatchesChanges(t *testing.T) {
	var got [][]string
	w, err := New(t.TempDir(), Options{Debounce: time.Hour}, func(paths []string) { got = append(got, paths) })
	require.NoError(t, err)
	defer w.Close()

	w.schedule("b.ts")
	w.schedule("a.ts")
	w.schedule("b.ts")
	w.flush()
	w.flush()

	assert.Equal(t, [][]string{{"a.ts", "b.ts"}}, got)
}
