package refresh

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"gridwatch/internal/dataset"
	"gridwatch/internal/history"
	"gridwatch/internal/hooks"
	"gridwatch/internal/logging"
	"gridwatch/internal/source"
)

// Options configures the scheduler.
type Options struct {
	// Interval reloads every file on a timer. Zero disables timed reloads.
	Interval time.Duration
	// Watch reloads files as they change on disk.
	Watch bool
	// Settle overrides the watcher settle window (optional).
	Settle time.Duration
	// AutoSnapshot records a snapshot of every frame on a timer.
	// Zero disables automatic snapshots.
	AutoSnapshot time.Duration
	// WorkspaceDir is exported to shell hooks.
	WorkspaceDir string
	// LogWriter receives per-file load reports (optional).
	LogWriter io.Writer
	// OnEvent is called for each refresh event (optional).
	OnEvent EventHandler
}

// DefaultOptions returns default scheduler options.
func DefaultOptions() *Options {
	return &Options{
		Watch: true,
	}
}

// Stats counts what the scheduler has done since Run started.
type Stats struct {
	StartedAt     time.Time
	Passes        int
	FilesLoaded   int
	FilesFailed   int
	FramesDropped int
	Snapshots     int
}

// Scheduler drives reloads into the frame store. It runs an initial
// load, then reacts to filesystem changes and interval ticks until the
// context ends or an abort-mode hook fails.
type Scheduler struct {
	loader      *source.Loader
	store       *dataset.Store
	historyDB   *history.Store
	hookManager *hooks.Manager

	opts    *Options
	watcher *source.Watcher

	// fatal carries errors raised on the watcher goroutine into Run.
	fatal chan error

	mu      sync.Mutex
	running bool
	stats   Stats

	// opMu serializes reload and snapshot passes so events stay in
	// operation order even when watch and interval triggers overlap.
	opMu sync.Mutex
}

// NewScheduler creates a scheduler over the given loader and store.
// The history store and hook manager may be nil; snapshots and hooks
// are skipped when they are.
func NewScheduler(loader *source.Loader, store *dataset.Store, historyDB *history.Store, hookManager *hooks.Manager) *Scheduler {
	return &Scheduler{
		loader:      loader,
		store:       store,
		historyDB:   historyDB,
		hookManager: hookManager,
		opts:        DefaultOptions(),
		fatal:       make(chan error, 1),
	}
}

// SetOptions sets the scheduler options.
func (s *Scheduler) SetOptions(opts *Options) {
	if opts != nil {
		s.opts = opts
	}
}

// IsRunning reports whether Run is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Stats returns a copy of the current counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// emit sends an event to the event handler if configured.
func (s *Scheduler) emit(e Event) {
	if s.opts.OnEvent == nil {
		return
	}
	e.Timestamp = time.Now()
	s.opts.OnEvent(e)
}

// Run executes the refresh loop until ctx is done, the watcher cannot
// start, or an abort-mode hook fails. The flow is:
//  1. Initial load of every eligible file
//  2. Start the filesystem watcher (if enabled)
//  3. React to interval and snapshot ticks
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}
	s.running = true
	s.stats = Stats{StartedAt: time.Now()}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	logging.Info("scheduler starting",
		"dir", s.loader.Dir(),
		"watch", s.opts.Watch,
		"interval", s.opts.Interval.String())

	// Step 1: initial load
	if err := s.reloadAll(ctx); err != nil {
		return err
	}

	// Step 2: filesystem watcher
	if s.opts.Watch {
		if err := s.startWatcher(ctx); err != nil {
			return err
		}
		defer s.stopWatcher()
	}

	// Step 3: timers
	var reloadTick <-chan time.Time
	if s.opts.Interval > 0 {
		ticker := time.NewTicker(s.opts.Interval)
		defer ticker.Stop()
		reloadTick = ticker.C
	}

	var snapshotTick <-chan time.Time
	if s.historyDB != nil && s.opts.AutoSnapshot > 0 {
		ticker := time.NewTicker(s.opts.AutoSnapshot)
		defer ticker.Stop()
		snapshotTick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-s.fatal:
			return err
		case <-reloadTick:
			if err := s.reloadAll(ctx); err != nil {
				return err
			}
		case <-snapshotTick:
			if err := s.snapshotAll(ctx); err != nil {
				return err
			}
		}
	}
}

// ReloadNow runs a full reload pass. Safe to call while Run is active;
// the TUI uses this for its manual refresh binding.
func (s *Scheduler) ReloadNow(ctx context.Context) error {
	return s.reloadAll(ctx)
}

// SnapshotNow records a snapshot of every loaded frame.
func (s *Scheduler) SnapshotNow(ctx context.Context) error {
	return s.snapshotAll(ctx)
}

// reloadAll loads every eligible file and runs reload hooks once for
// the pass. Per-file failures are reported and skipped; only ctx or an
// abort-mode hook stops the pass.
func (s *Scheduler) reloadAll(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	s.stats.Passes++
	s.mu.Unlock()

	s.emit(Event{Type: EventReloadStarted, Path: s.loader.Dir()})

	reports, err := s.loader.LoadAll(ctx)
	if err != nil {
		s.emit(Event{Type: EventError, Message: "reload pass failed", Error: err})
		return err
	}

	loaded := 0
	rows := 0
	for _, report := range reports {
		s.recordReport(report)
		if report.Err == nil {
			loaded++
			rows += report.Rows
		}
	}

	s.emit(Event{
		Type:    EventReloadCompleted,
		Rows:    rows,
		Message: fmt.Sprintf("%d of %d files loaded", loaded, len(reports)),
	})

	return s.runReloadHooks(ctx, "", "", rows)
}

// recordReport emits the event for one file load and updates counters.
func (s *Scheduler) recordReport(report source.Report) {
	s.writeReport(report)

	if report.Err != nil {
		s.mu.Lock()
		s.stats.FilesFailed++
		s.mu.Unlock()

		logging.Warn("file reload failed", "path", report.Path, "error", report.Err)
		s.emit(Event{
			Type:  EventReloadFailed,
			Frame: report.Frame,
			Path:  report.Path,
			Error: report.Err,
		})
		return
	}

	s.mu.Lock()
	s.stats.FilesLoaded++
	s.mu.Unlock()

	s.emit(Event{
		Type:     EventFrameLoaded,
		Frame:    report.Frame,
		Path:     report.Path,
		Rows:     report.Rows,
		Bytes:    report.Bytes,
		Duration: report.Duration,
	})
}

// writeReport writes one per-file line to the log writer if configured.
func (s *Scheduler) writeReport(report source.Report) {
	w := s.opts.LogWriter
	if w == nil {
		return
	}

	if report.Err != nil {
		fmt.Fprintf(w, "failed %s: %v\n", report.Path, report.Err)
		return
	}

	fmt.Fprintf(w, "loaded %s -> %s (%d rows, %s) in %s\n",
		filepath.Base(report.Path),
		report.Frame,
		report.Rows,
		humanize.Bytes(uint64(report.Bytes)),
		report.Duration.Round(time.Millisecond))
}

// snapshotAll records one snapshot per loaded frame and runs snapshot
// hooks for each. A frame whose snapshot fails is reported and skipped.
func (s *Scheduler) snapshotAll(ctx context.Context) error {
	if s.historyDB == nil {
		return nil
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	for _, name := range s.store.Names() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		frame, ok := s.store.Frame(name)
		if !ok {
			continue
		}

		snap, err := s.historyDB.Record(ctx, frame, "auto")
		if err != nil {
			logging.Warn("snapshot failed", "frame", name, "error", err)
			s.emit(Event{Type: EventError, Frame: name, Message: "snapshot failed", Error: err})
			continue
		}

		s.mu.Lock()
		s.stats.Snapshots++
		s.mu.Unlock()

		s.emit(Event{
			Type:    EventSnapshotSaved,
			Frame:   name,
			Rows:    snap.Rows,
			Bytes:   snap.Bytes,
			Message: fmt.Sprintf("snapshot #%d", snap.ID),
		})

		if err := s.runSnapshotHooks(ctx, name, snap.Rows, snap.ID); err != nil {
			return err
		}
	}

	return nil
}

// runReloadHooks executes post-reload hooks and returns an error when
// an abort-mode hook fails.
func (s *Scheduler) runReloadHooks(ctx context.Context, frame, path string, rows int) error {
	if s.hookManager == nil || !s.hookManager.HasReloadHooks() {
		return nil
	}

	s.emit(Event{Type: EventHooksStarted, Frame: frame, Message: "running reload hooks"})
	hookCtx := hooks.BuildHookContextForReload(frame, path, rows, s.opts.WorkspaceDir)
	result := s.hookManager.ExecuteReloadHooks(ctx, hookCtx)
	return s.finishHooks(result, frame)
}

// runSnapshotHooks executes post-snapshot hooks for one frame.
func (s *Scheduler) runSnapshotHooks(ctx context.Context, frame string, rows int, snapshotID int64) error {
	if s.hookManager == nil || !s.hookManager.HasSnapshotHooks() {
		return nil
	}

	s.emit(Event{Type: EventHooksStarted, Frame: frame, Message: "running snapshot hooks"})
	hookCtx := hooks.BuildHookContextForSnapshot(frame, rows, snapshotID, s.opts.WorkspaceDir)
	result := s.hookManager.ExecuteSnapshotHooks(ctx, hookCtx)
	return s.finishHooks(result, frame)
}

// finishHooks turns a hook manager result into events and decides
// whether the scheduler stops.
func (s *Scheduler) finishHooks(result *hooks.ManagerResult, frame string) error {
	if result.Action == hooks.ManagerActionAbort {
		info := s.hookManager.FailedHookInfo(result)
		if info == "" {
			info = "hook execution aborted"
		}
		err := fmt.Errorf("hook aborted scheduler: %s", info)
		logging.Error("hook aborted scheduler", "frame", frame, "detail", info)
		s.emit(Event{Type: EventHookFailed, Frame: frame, Message: info, Error: err})
		return err
	}

	if !result.AllSuccess {
		for _, hookResult := range result.Results {
			if hookResult.IsSuccess() {
				continue
			}
			logging.Warn("hook failed", "frame", frame, "error", hookResult.Error)
			s.emit(Event{Type: EventHookFailed, Frame: frame, Message: hookResult.Error})
		}
	}

	s.emit(Event{Type: EventHooksCompleted, Frame: frame})
	return nil
}

// fail pushes a fatal error toward Run without blocking the caller.
func (s *Scheduler) fail(err error) {
	select {
	case s.fatal <- err:
	default:
	}
}

// startWatcher wires the filesystem watcher into the scheduler.
func (s *Scheduler) startWatcher(ctx context.Context) error {
	w, err := source.NewWatcher(s.loader.Dir(), s.loader.Registry(), source.WatcherHooks{
		OnChanged: func(path string) {
			s.handleChanged(ctx, path)
		},
		OnRemoved: func(path string) {
			s.handleRemoved(path)
		},
		OnError: func(err error) {
			logging.Warn("watcher error", "error", err)
			s.emit(Event{Type: EventError, Message: "watcher error", Error: err})
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if s.opts.Settle > 0 {
		w.SetSettle(s.opts.Settle)
	}

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	s.watcher = w
	s.emit(Event{Type: EventWatchStarted, Path: s.loader.Dir()})
	return nil
}

// stopWatcher shuts the watcher down if one is running.
func (s *Scheduler) stopWatcher() {
	if s.watcher == nil {
		return
	}
	s.watcher.Stop()
	s.watcher = nil
	s.emit(Event{Type: EventWatchStopped})
}

// handleChanged reloads one file after a settled filesystem change.
// Runs on the watcher goroutine; hook aborts are forwarded to Run.
func (s *Scheduler) handleChanged(ctx context.Context, path string) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	report := s.loader.LoadFile(ctx, path)
	s.recordReport(report)
	if report.Err != nil {
		return
	}

	if err := s.runReloadHooks(ctx, report.Frame, report.Path, report.Rows); err != nil {
		s.fail(err)
	}
}

// handleRemoved drops the frame backed by a removed file.
func (s *Scheduler) handleRemoved(path string) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	frame, ok := s.loader.Drop(path)
	if !ok {
		return
	}

	s.mu.Lock()
	s.stats.FramesDropped++
	s.mu.Unlock()

	logging.Info("frame dropped", "frame", frame, "path", path)
	s.emit(Event{Type: EventFrameDropped, Frame: frame, Path: path})
}
