// Package fs implements the data source and sync status ports on top of
// JSON files written by an external sync engine, watched with fsnotify.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/feedview/internal/ports"
)

// DefaultDebounce coalesces the burst of events produced by one atomic write.
const DefaultDebounce = 100 * time.Millisecond

// fileWatcher calls onChange, debounced, whenever path is written, created,
// renamed into place or removed. It watches the parent directory so atomic
// tmp+rename writes are seen.
type fileWatcher struct {
	path     string
	debounce time.Duration
	logger   ports.Logger
	onChange func()

	mu    sync.Mutex
	timer *time.Timer

	cancel context.CancelFunc
	done   chan struct{}
}

func startWatcher(path string, debounce time.Duration, logger ports.Logger, onChange func()) (*fileWatcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &fileWatcher{
		path:     path,
		debounce: debounce,
		logger:   logger,
		onChange: onChange,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go w.run(ctx, watcher)
	return w, nil
}

func (w *fileWatcher) run(ctx context.Context, watcher *fsnotify.Watcher) {
	defer close(w.done)
	defer watcher.Close()

	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.schedule()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", ports.String("path", w.path), ports.Err(err))
		}
	}
}

func (w *fileWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.onChange)
}

func (w *fileWatcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// Close stops the watcher and waits for its goroutine.
func (w *fileWatcher) Close() {
	w.cancel()
	<-w.done
}

// writeJSONAtomic marshals v and replaces path via a temp file and rename.
func writeJSONAtomic(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
