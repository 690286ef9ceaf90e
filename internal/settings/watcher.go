package settings

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period before a change is reported
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports settings file changes through a debounced callback
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()
	logger   *zap.Logger

	mu       sync.Mutex
	timer    *time.Timer
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher for the settings file at path.
// onChange runs on its own goroutine once per burst of file events.
func NewWatcher(path string, debounce time.Duration, onChange func(), logger *zap.Logger) *Watcher {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start begins watching the directory holding the settings file
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.watcher != nil {
		w.mu.Unlock()
		return nil
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	w.watcher = fsWatcher
	w.mu.Unlock()

	if err := fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		_ = fsWatcher.Close()
		w.mu.Lock()
		w.watcher = nil
		w.mu.Unlock()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	go w.loop(fsWatcher)
	w.logger.Info("Watching settings file", zap.String("path", w.path))
	return nil
}

// Stop cancels a pending callback and closes the file watch
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.timer != nil {
			w.timer.Stop()
			w.timer = nil
		}
		if w.watcher != nil {
			_ = w.watcher.Close()
			w.watcher = nil
		}
	})
}

// Trigger schedules the callback, restarting the debounce window
func (w *Watcher) Trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.stopCh:
		return
	default:
	}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.stopCh:
			return
		default:
		}
		w.onChange()
	})
}

func (w *Watcher) loop(fsWatcher *fsnotify.Watcher) {
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Settings watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if filepath.Clean(event.Name) != w.path {
		return
	}
	w.Trigger()
}
