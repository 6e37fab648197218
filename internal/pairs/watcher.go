package pairs

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 300 * time.Millisecond

// Watcher calls a function whenever the pairs file changes on disk.
//
// The containing directory is watched rather than the file itself, so saves
// that replace the file through a rename are still seen.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()
	logger   *zap.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewWatcher creates a stopped watcher for path.
func NewWatcher(path string, debounce time.Duration, onChange func(), logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
		logger:   logger.Named("pairs-watcher"),
	}
}

// Start begins watching. It is a no-op while running.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}

	w.watcher = fw
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true
	go w.run(ctx, fw, w.stopCh, w.doneCh)

	w.logger.Info("Watching pairs file", zap.String("path", w.path))
	return nil
}

// Stop ends watching and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	done, fw := w.doneCh, w.watcher
	w.mu.Unlock()

	<-done
	if err := fw.Close(); err != nil {
		w.logger.Error("Error closing file watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("Pairs file event", zap.Stringer("op", event.Op))
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("File watcher error", zap.Error(err))
		case <-timer.C:
			if w.onChange != nil {
				w.onChange()
			}
		}
	}
}
