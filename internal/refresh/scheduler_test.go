package refresh

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"gridwatch/internal/config"
	"gridwatch/internal/dataset"
	"gridwatch/internal/history"
	"gridwatch/internal/hooks"
	"gridwatch/internal/source"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", name, err)
	}
	return path
}

// newTestScheduler builds a scheduler over dir with events buffered
// into the returned channel.
func newTestScheduler(t *testing.T, dir string, opts *Options) (*Scheduler, *dataset.Store, chan Event) {
	t.Helper()

	store := dataset.NewStore()
	loader := source.NewLoader(dir, store, source.DefaultRegistry(), source.Options{})

	events := make(chan Event, 1024)
	if opts == nil {
		opts = &Options{}
	}
	opts.OnEvent = func(e Event) { events <- e }

	s := NewScheduler(loader, store, nil, nil)
	s.SetOptions(opts)
	return s, store, events
}

func startScheduler(t *testing.T, s *Scheduler) (context.CancelFunc, chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	return cancel, done
}

func stopScheduler(t *testing.T, cancel context.CancelFunc, done chan error) error {
	t.Helper()
	cancel()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
		return nil
	}
}

// waitFor consumes events until one matches or the wait times out.
func waitFor(t *testing.T, events <-chan Event, desc string, match func(Event) bool) Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case e := <-events:
			if match(e) {
				return e
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", desc)
		}
	}
}

func waitForType(t *testing.T, events <-chan Event, et EventType) Event {
	t.Helper()
	return waitFor(t, events, string(et), func(e Event) bool { return e.Type == et })
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if !opts.Watch {
		t.Error("Watch = false, want true by default")
	}
	if opts.Interval != 0 {
		t.Errorf("Interval = %v, want 0 by default", opts.Interval)
	}
}

func TestScheduler_InitialLoad(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFile(t, dir, "orders.csv", "id,amount\nA,10\nB,20\n")
	writeFile(t, dir, "signups.csv", "id,plan\nS-1,pro\n")

	s, store, events := newTestScheduler(t, dir, &Options{Watch: false})
	cancel, done := startScheduler(t, s)

	waitForType(t, events, EventReloadStarted)
	completed := waitForType(t, events, EventReloadCompleted)

	if !strings.Contains(completed.Message, "2 of 2") {
		t.Errorf("Message = %q, want to contain '2 of 2'", completed.Message)
	}
	if completed.Rows != 3 {
		t.Errorf("Rows = %d, want 3", completed.Rows)
	}
	if store.Len() != 2 {
		t.Errorf("store.Len() = %d, want 2", store.Len())
	}

	err := stopScheduler(t, cancel, done)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}

	stats := s.Stats()
	if stats.Passes != 1 {
		t.Errorf("Passes = %d, want 1", stats.Passes)
	}
	if stats.FilesLoaded != 2 {
		t.Errorf("FilesLoaded = %d, want 2", stats.FilesLoaded)
	}
}

func TestScheduler_FailedFileKeepsRunning(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFile(t, dir, "bad.csv", "a,b\n1,2,3\n")
	writeFile(t, dir, "good.csv", "id,v\nA,1\n")

	s, store, events := newTestScheduler(t, dir, &Options{Watch: false})
	cancel, done := startScheduler(t, s)

	failed := waitForType(t, events, EventReloadFailed)
	if !strings.HasSuffix(failed.Path, "bad.csv") {
		t.Errorf("failed path = %q, want bad.csv", failed.Path)
	}
	waitForType(t, events, EventReloadCompleted)

	// The failure must not stop the scheduler
	select {
	case err := <-done:
		t.Fatalf("Run() returned early: %v", err)
	default:
	}

	if got := store.Names(); len(got) != 1 || got[0] != "good" {
		t.Errorf("store.Names() = %v, want [good]", got)
	}

	stopScheduler(t, cancel, done)

	stats := s.Stats()
	if stats.FilesLoaded != 1 || stats.FilesFailed != 1 {
		t.Errorf("FilesLoaded = %d, FilesFailed = %d, want 1 and 1", stats.FilesLoaded, stats.FilesFailed)
	}
}

func TestScheduler_ReloadNow(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFile(t, dir, "orders.csv", "id,amount\nA,10\n")

	s, store, events := newTestScheduler(t, dir, &Options{Watch: false})

	// ReloadNow works without Run
	if err := s.ReloadNow(context.Background()); err != nil {
		t.Fatalf("ReloadNow() error = %v", err)
	}

	loaded := waitForType(t, events, EventFrameLoaded)
	if loaded.Frame != "orders" {
		t.Errorf("Frame = %q, want orders", loaded.Frame)
	}
	if store.Len() != 1 {
		t.Errorf("store.Len() = %d, want 1", store.Len())
	}
}

func TestScheduler_WatchReloadsChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFile(t, dir, "orders.csv", "id,amount\nA,10\nB,20\n")

	s, store, events := newTestScheduler(t, dir, &Options{
		Watch:  true,
		Settle: 50 * time.Millisecond,
	})
	cancel, done := startScheduler(t, s)

	waitForType(t, events, EventReloadCompleted)
	waitForType(t, events, EventWatchStarted)

	// A new file becomes a new frame
	signupsPath := writeFile(t, dir, "signups.csv", "id,plan\nS-1,pro\n")
	waitFor(t, events, "signups frame_loaded", func(e Event) bool {
		return e.Type == EventFrameLoaded && e.Frame == "signups"
	})

	// A changed file reloads its frame
	writeFile(t, dir, "orders.csv", "id,amount\nA,10\nB,20\nC,30\n")
	waitFor(t, events, "orders reload with 3 rows", func(e Event) bool {
		return e.Type == EventFrameLoaded && e.Frame == "orders" && e.Rows == 3
	})

	// A removed file drops its frame
	if err := os.Remove(signupsPath); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	dropped := waitForType(t, events, EventFrameDropped)
	if dropped.Frame != "signups" {
		t.Errorf("dropped frame = %q, want signups", dropped.Frame)
	}

	if got := store.Names(); len(got) != 1 || got[0] != "orders" {
		t.Errorf("store.Names() = %v, want [orders]", got)
	}

	stopScheduler(t, cancel, done)

	stats := s.Stats()
	if stats.FramesDropped != 1 {
		t.Errorf("FramesDropped = %d, want 1", stats.FramesDropped)
	}
}

func TestScheduler_IntervalReload(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFile(t, dir, "orders.csv", "id,amount\nA,10\n")

	s, _, events := newTestScheduler(t, dir, &Options{
		Watch:    false,
		Interval: 100 * time.Millisecond,
	})
	cancel, done := startScheduler(t, s)

	// Initial pass plus at least one timed pass
	waitForType(t, events, EventReloadCompleted)
	waitForType(t, events, EventReloadCompleted)

	stopScheduler(t, cancel, done)

	if stats := s.Stats(); stats.Passes < 2 {
		t.Errorf("Passes = %d, want at least 2", stats.Passes)
	}
}

func TestScheduler_AutoSnapshot(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFile(t, dir, "orders.csv", "id,amount\nA,10\nB,20\n")

	historyDB, err := history.OpenInDir(t.TempDir())
	if err != nil {
		t.Fatalf("OpenInDir() error = %v", err)
	}
	defer historyDB.Close()

	store := dataset.NewStore()
	loader := source.NewLoader(dir, store, source.DefaultRegistry(), source.Options{})
	events := make(chan Event, 1024)

	s := NewScheduler(loader, store, historyDB, nil)
	s.SetOptions(&Options{
		Watch:        false,
		AutoSnapshot: 100 * time.Millisecond,
		OnEvent:      func(e Event) { events <- e },
	})

	cancel, done := startScheduler(t, s)

	saved := waitForType(t, events, EventSnapshotSaved)
	if saved.Frame != "orders" {
		t.Errorf("snapshot frame = %q, want orders", saved.Frame)
	}
	if saved.Rows != 2 {
		t.Errorf("snapshot rows = %d, want 2", saved.Rows)
	}

	stopScheduler(t, cancel, done)

	count, err := historyDB.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count < 1 {
		t.Errorf("history count = %d, want at least 1", count)
	}
	if stats := s.Stats(); stats.Snapshots < 1 {
		t.Errorf("Snapshots = %d, want at least 1", stats.Snapshots)
	}
}

func TestScheduler_ReloadHookAbortStopsRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFile(t, dir, "orders.csv", "id,amount\nA,10\n")

	store := dataset.NewStore()
	loader := source.NewLoader(dir, store, source.DefaultRegistry(), source.Options{})
	hookMgr := hooks.NewManagerFromConfig(&config.HooksConfig{
		PostReload: []config.HookDefinition{
			{Command: "exit 1", OnFailure: config.FailureModeAbort},
		},
	})

	s := NewScheduler(loader, store, nil, hookMgr)
	s.SetOptions(&Options{Watch: false})

	err := s.Run(context.Background())
	if err == nil {
		t.Fatal("Run() = nil, want abort error")
	}
	if !strings.Contains(err.Error(), "hook aborted") {
		t.Errorf("Run() = %v, want hook abort error", err)
	}
}

func TestScheduler_ReloadHookWarnContinues(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFile(t, dir, "orders.csv", "id,amount\nA,10\n")

	store := dataset.NewStore()
	loader := source.NewLoader(dir, store, source.DefaultRegistry(), source.Options{})
	hookMgr := hooks.NewManagerFromConfig(&config.HooksConfig{
		PostReload: []config.HookDefinition{
			{Command: "exit 1", OnFailure: config.FailureModeWarnContinue},
		},
	})

	events := make(chan Event, 1024)
	s := NewScheduler(loader, store, nil, hookMgr)
	s.SetOptions(&Options{
		Watch:   false,
		OnEvent: func(e Event) { events <- e },
	})

	cancel, done := startScheduler(t, s)

	waitForType(t, events, EventHookFailed)
	waitForType(t, events, EventHooksCompleted)

	// warn_continue must not stop the scheduler
	select {
	case err := <-done:
		t.Fatalf("Run() returned early: %v", err)
	default:
	}

	err := stopScheduler(t, cancel, done)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

func TestScheduler_SnapshotHooksSeeEvent(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFile(t, dir, "orders.csv", "id,amount\nA,10\nB,20\n")
	workDir := t.TempDir()

	historyDB, err := history.OpenInDir(t.TempDir())
	if err != nil {
		t.Fatalf("OpenInDir() error = %v", err)
	}
	defer historyDB.Close()

	store := dataset.NewStore()
	loader := source.NewLoader(dir, store, source.DefaultRegistry(), source.Options{})
	hookMgr := hooks.NewManagerFromConfig(&config.HooksConfig{
		PostSnapshot: []config.HookDefinition{
			{Command: `echo "$GRIDWATCH_FRAME:$GRIDWATCH_ROWS" > "$GRIDWATCH_WORKSPACE/snap.txt"`},
		},
	})

	events := make(chan Event, 1024)
	s := NewScheduler(loader, store, historyDB, hookMgr)
	s.SetOptions(&Options{
		Watch:        false,
		AutoSnapshot: 100 * time.Millisecond,
		WorkspaceDir: workDir,
		OnEvent:      func(e Event) { events <- e },
	})

	cancel, done := startScheduler(t, s)

	waitForType(t, events, EventSnapshotSaved)
	waitForType(t, events, EventHooksCompleted)

	stopScheduler(t, cancel, done)

	data, err := os.ReadFile(filepath.Join(workDir, "snap.txt"))
	if err != nil {
		t.Fatalf("hook output not written: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "orders:2" {
		t.Errorf("hook output = %q, want orders:2", got)
	}
}

func TestScheduler_AlreadyRunning(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFile(t, dir, "orders.csv", "id,amount\nA,10\n")

	s, _, events := newTestScheduler(t, dir, &Options{Watch: false})
	cancel, done := startScheduler(t, s)

	waitForType(t, events, EventReloadCompleted)

	if err := s.Run(context.Background()); err == nil {
		t.Error("second Run() = nil, want already-running error")
	}

	stopScheduler(t, cancel, done)
}

func TestScheduler_SnapshotNow(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFile(t, dir, "orders.csv", "id,amount\nA,10\n")

	historyDB, err := history.OpenInDir(t.TempDir())
	if err != nil {
		t.Fatalf("OpenInDir() error = %v", err)
	}
	defer historyDB.Close()

	store := dataset.NewStore()
	loader := source.NewLoader(dir, store, source.DefaultRegistry(), source.Options{})
	events := make(chan Event, 1024)

	s := NewScheduler(loader, store, historyDB, nil)
	s.SetOptions(&Options{
		Watch:   false,
		OnEvent: func(e Event) { events <- e },
	})

	if err := s.ReloadNow(context.Background()); err != nil {
		t.Fatalf("ReloadNow() error = %v", err)
	}
	if err := s.SnapshotNow(context.Background()); err != nil {
		t.Fatalf("SnapshotNow() error = %v", err)
	}

	saved := waitForType(t, events, EventSnapshotSaved)
	if saved.Frame != "orders" {
		t.Errorf("snapshot frame = %q, want orders", saved.Frame)
	}
}
