package watcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"repograph/internal/shared/observability"
	"repograph/internal/shared/util"

	"github.com/fsnotify/fsnotify"
)

// ErrNilCallback is returned when a watcher is created without a change handler.
var ErrNilCallback = errors.New("watcher: change callback is required")

// Options controls which paths count as changes.
type Options struct {
	Debounce time.Duration
	// Extensions lists dotted, lower-case extensions that trigger a change.
	// Empty means every file.
	Extensions []string
	// Excluded receives slash-separated paths relative to the root;
	// directories end in "/".
	Excluded func(rel string) bool
}

// Watcher watches a directory tree and reports batches of changed relative
// paths once the tree has been quiet for the debounce interval. The tree is
// registered in New; Run only dispatches.
type Watcher struct {
	root     string
	fs       *fsnotify.Watcher
	debounce time.Duration
	exts     map[string]bool
	excluded func(string) bool
	onChange func([]string)

	callbackMu sync.Mutex
	pendingMu  sync.Mutex
	pending    map[string]struct{}
	timer      *time.Timer
}

func New(root string, opts Options, onChange func([]string)) (*Watcher, error) {
	if onChange == nil {
		return nil, ErrNilCallback
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	exts := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = true
	}
	excluded := opts.Excluded
	if excluded == nil {
		excluded = func(string) bool { return false }
	}

	w := &Watcher{
		root:     abs,
		fs:       fsw,
		debounce: debounce,
		exts:     exts,
		excluded: excluded,
		onChange: onChange,
		pending:  make(map[string]struct{}),
	}
	if err := w.watchRecursive(abs); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run dispatches events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	slog.Info("watching for changes", "root", w.root, "debounce", w.debounce)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			observability.WatcherEventsTotal.Inc()
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			rel, ok := w.relative(event.Name)
			if !ok || w.excluded(rel+"/") {
				return
			}
			if err := w.watchRecursive(event.Name); err != nil {
				slog.Warn("failed to watch new directory", "path", rel, "error", err)
				return
			}
			w.enqueueExisting(event.Name)
			return
		}
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if rel, ok := w.relative(event.Name); ok && w.relevant(rel) {
		w.schedule(rel)
	}
}

func (w *Watcher) watchRecursive(dir string) error {
	return filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root {
			if rel, ok := w.relative(p); ok && w.excluded(rel+"/") {
				return filepath.SkipDir
			}
		}
		return w.fs.Add(p)
	})
}

func (w *Watcher) enqueueExisting(dir string) {
	_ = filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if rel, ok := w.relative(p); ok && w.relevant(rel) {
			w.schedule(rel)
		}
		return nil
	})
}

func (w *Watcher) relative(p string) (string, bool) {
	rel, err := filepath.Rel(w.root, p)
	if err != nil {
		return "", false
	}
	rel = util.NormalizePatternPath(filepath.ToSlash(rel))
	if rel == "" || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

func (w *Watcher) relevant(rel string) bool {
	if w.excluded(rel) {
		return false
	}
	if len(w.exts) == 0 {
		return true
	}
	return w.exts[strings.ToLower(filepath.Ext(rel))]
}

func (w *Watcher) schedule(rel string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[rel] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)

	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	w.onChange(paths)
}

func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fs.Close()
}
