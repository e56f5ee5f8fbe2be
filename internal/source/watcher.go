package source

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"gridwatch/internal/logging"
)

// DefaultSettle is how long a path must stay quiet before its change
// is acted on. Editors and atomic-save tools fire bursts of events per
// save; the debounce collapses each burst into one reload.
const DefaultSettle = 500 * time.Millisecond

// WatcherHooks receive settled filesystem changes.
type WatcherHooks struct {
	// OnChanged fires once per settled create/write burst.
	OnChanged func(path string)
	// OnRemoved fires when a watched file is removed or renamed away.
	OnRemoved func(path string)
	// OnError receives watcher-level errors.
	OnError func(err error)
}

// Watcher watches the data directory and reports settled changes to
// files the registry can decode.
type Watcher struct {
	mu       sync.Mutex
	fw       *fsnotify.Watcher
	dir      string
	registry *Registry
	hooks    WatcherHooks
	settle   time.Duration
	pending  map[string]time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewWatcher creates a watcher over the data directory. Start must be
// called before events flow.
func NewWatcher(dir string, registry *Registry, hooks WatcherHooks) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:       fw,
		dir:      dir,
		registry: registry,
		hooks:    hooks,
		settle:   DefaultSettle,
		pending:  make(map[string]time.Time),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// SetSettle overrides the debounce window.
func (w *Watcher) SetSettle(d time.Duration) {
	if d > 0 {
		w.settle = d
	}
}

// Start begins watching. It is non-blocking; the event loop runs in a
// goroutine until Stop or ctx cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		logging.Warn("failed to create data dir", "dir", w.dir, "error", err)
	}
	if err := w.fw.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.fw.Close(); err != nil {
		logging.Error("failed to close watcher", "error", err)
	}
}

// IsWatching reports whether the event loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// run is the watcher event loop.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := w.settle / 4
	if tick <= 0 {
		tick = time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
			if w.hooks.OnError != nil {
				w.hooks.OnError(err)
			}

		case <-ticker.C:
			w.flushSettled()
		}
	}
}

// handleEvent records create/write events for debouncing and reports
// removals immediately.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if _, ok := w.registry.ForPath(event.Name); !ok {
		return
	}

	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		w.mu.Lock()
		w.pending[event.Name] = time.Now()
		w.mu.Unlock()

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.mu.Lock()
		delete(w.pending, event.Name)
		w.mu.Unlock()
		logging.Debug("watched file removed", "path", event.Name)
		if w.hooks.OnRemoved != nil {
			w.hooks.OnRemoved(event.Name)
		}
	}
}

// flushSettled reports paths whose last event is older than the
// debounce window.
func (w *Watcher) flushSettled() {
	now := time.Now()

	w.mu.Lock()
	var settled []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.settle {
			settled = append(settled, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range settled {
		logging.Debug("watched file settled", "path", path)
		if w.hooks.OnChanged != nil {
			w.hooks.OnChanged(path)
		}
	}
}
