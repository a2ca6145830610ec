package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"painel/internal/log"
)

// Invalidator drops cached state for a path.
type Invalidator interface {
	Invalidate(path string)
}

// Watcher invalidates a cached extract when its file changes on disk.
// It watches the parent directory so editors that replace the file by
// rename are still noticed.
type Watcher struct {
	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	target   Invalidator
	logger   *log.Logger
	path     string
	dir      string
	debounce time.Duration
	pending  time.Time
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher for path. Changes settle for debounce before
// target is invalidated.
func NewWatcher(path string, target Invalidator, debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	return &Watcher{
		fsw:      fsw,
		target:   target,
		logger:   logger.WithComponent(log.ComponentWatcher),
		path:     abs,
		dir:      filepath.Dir(abs),
		debounce: debounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It does not block; the loop ends when ctx is
// cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	if err := w.fsw.Add(w.dir); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("Watching extract", log.FieldDataPath, w.path)
	go w.run(ctx)
	return nil
}

// Stop ends the loop and releases the underlying watcher. It is safe to call
// more than once and when Start was never called.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)

		w.mu.Lock()
		running := w.running
		w.mu.Unlock()
		if running {
			<-w.doneCh
		}

		if err := w.fsw.Close(); err != nil {
			w.logger.Error("Failed to close file watcher", log.FieldError, err)
		}
		w.logger.Info("Watcher stopped")
	})
}

// Done is closed when the event loop has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", log.FieldError, err)
		case now := <-ticker.C:
			w.flush(now)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return
	}
	w.logger.Debug("Extract changed", log.FieldDataPath, w.path, "op", event.Op.String())

	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flush(now time.Time) {
	w.mu.Lock()
	if w.pending.IsZero() || now.Sub(w.pending) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	w.target.Invalidate(w.path)
	w.logger.Info("Extract invalidated after change", log.FieldOperation, log.OpInvalidate, log.FieldDataPath, w.path)
}
