package declarative

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
)

// Reloader rebuilds and publishes a declarative snapshot.
type Reloader interface {
	Reload(ctx context.Context) (*Snapshot, error)
}

// Watcher triggers a reload when files under the watched directories settle
// after a change. Bursts of events within the debounce window produce one
// reload.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	reloader Reloader
	dirs     []string
	debounce time.Duration
	logger   logr.Logger

	pendingSince time.Time
	running      bool
	stopped      bool
	stopCh       chan struct{}
	doneCh       chan struct{}
}

func NewWatcher(reloader Reloader, dirs []string, debounce time.Duration, logger logr.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, internalError("failed to create declarative file watcher", err)
	}
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &Watcher{
		watcher:  fsWatcher,
		reloader: reloader,
		dirs:     append([]string(nil), dirs...),
		debounce: debounce,
		logger:   logger.WithName("declarative-watcher"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start registers the directories and runs the event loop in a goroutine.
// A directory that cannot be watched is logged and skipped.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return internalError("declarative file watcher is stopped", nil)
	}
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	for _, dir := range w.dirs {
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Error(err, "cannot watch declarative directory", "dir", dir)
			continue
		}
		w.logger.V(1).Info("watching declarative directory", "dir", dir)
	}

	go w.run(ctx)
	return nil
}

// Stop ends the event loop, if started, and releases the underlying watcher.
// It is safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}

	if err := w.watcher.Close(); err != nil {
		w.logger.Error(err, "failed to close declarative file watcher")
	}
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
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error(err, "declarative file watcher error")
		case now := <-ticker.C:
			w.reloadIfSettled(ctx, now)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	w.pendingSince = time.Now()
	w.mu.Unlock()
	w.logger.V(1).Info("declarative file changed", "file", event.Name, "op", event.Op.String())
}

func (w *Watcher) reloadIfSettled(ctx context.Context, now time.Time) {
	w.mu.Lock()
	if w.pendingSince.IsZero() || now.Sub(w.pendingSince) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pendingSince = time.Time{}
	w.mu.Unlock()

	snapshot, err := w.reloader.Reload(ctx)
	if err != nil {
		// Reload already logged the failure and kept the previous snapshot.
		return
	}
	w.logger.Info("declarative resources reloaded", "digest", snapshot.Digest().String())
}
