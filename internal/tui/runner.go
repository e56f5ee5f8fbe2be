package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gridwatch/internal/dataset"
	"gridwatch/internal/refresh"
)

// sender delivers messages into a running program. *tea.Program
// satisfies it; tests substitute a recorder.
type sender interface {
	Send(msg tea.Msg)
}

// EventBridge converts refresh events into dashboard messages. The
// scheduler calls HandleEvent from its own goroutines; tea.Program.Send
// is safe for that.
type EventBridge struct {
	target sender
	store  *dataset.Store
}

// NewEventBridge creates a bridge sending to target. The store is
// consulted for totals when a reload pass completes.
func NewEventBridge(target sender, store *dataset.Store) *EventBridge {
	return &EventBridge{target: target, store: store}
}

// HandleEvent implements refresh.EventHandler.
func (b *EventBridge) HandleEvent(event refresh.Event) {
	if b.target == nil {
		return
	}

	switch event.Type {
	case refresh.EventReloadStarted:
		b.target.Send(ReloadStartedMsg{})

	case refresh.EventFrameLoaded:
		b.target.Send(FrameLoadedMsg{
			Frame:    event.Frame,
			Path:     event.Path,
			Rows:     event.Rows,
			Bytes:    event.Bytes,
			Duration: event.Duration,
		})

	case refresh.EventFrameDropped:
		b.target.Send(FrameDroppedMsg{Frame: event.Frame})

	case refresh.EventReloadFailed:
		b.target.Send(ReloadFailedMsg{Path: event.Path, Error: errorText(event)})

	case refresh.EventReloadCompleted:
		b.target.Send(b.framesUpdated())

	case refresh.EventWatchStarted:
		b.target.Send(WatchStatusMsg{Active: true})

	case refresh.EventWatchStopped:
		b.target.Send(WatchStatusMsg{Active: false})

	case refresh.EventSnapshotSaved:
		b.target.Send(SnapshotSavedMsg{Frame: event.Frame, Rows: event.Rows})

	case refresh.EventHookFailed:
		b.target.Send(ErrorMsg{Error: "hook failed: " + errorText(event)})

	case refresh.EventError:
		b.target.Send(ErrorMsg{Error: errorText(event)})
	}
}

func errorText(event refresh.Event) string {
	if event.Error != nil {
		return event.Error.Error()
	}
	if event.Message != "" {
		return event.Message
	}
	return "unknown error"
}

func (b *EventBridge) framesUpdated() FramesUpdatedMsg {
	if b.store == nil {
		return FramesUpdatedMsg{}
	}
	return FramesUpdatedMsg{
		Names:      b.store.Names(),
		TotalRows:  b.store.TotalRows(),
		TotalBytes: b.store.TotalBytes(),
	}
}

// Runner ties the program and the refresh scheduler together: the
// scheduler runs in a goroutine for the program's lifetime and feeds
// it through the bridge.
type Runner struct {
	model     *Model
	program   *tea.Program
	scheduler *refresh.Scheduler
	bridge    *EventBridge
}

// NewRunner builds the program over the model. A nil scheduler leaves
// the dashboard on whatever the store already holds.
func NewRunner(model *Model, scheduler *refresh.Scheduler, altScreen bool) *Runner {
	var progOpts []tea.ProgramOption
	if altScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	program := tea.NewProgram(model, progOpts...)

	if scheduler != nil {
		model.SetController(scheduler)
	}

	return &Runner{
		model:     model,
		program:   program,
		scheduler: scheduler,
		bridge:    NewEventBridge(program, model.store),
	}
}

// Bridge returns the event bridge to set as refresh.Options.OnEvent.
func (r *Runner) Bridge() *EventBridge {
	return r.bridge
}

// Run blocks until the user quits, ctx ends, or the scheduler fails
// fatally.
func (r *Runner) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Deferred cancel releases this goroutine on every return path.
	go func() {
		<-ctx.Done()
		r.program.Quit()
	}()

	schedErr := make(chan error, 1)
	if r.scheduler != nil {
		go func() {
			err := r.scheduler.Run(ctx)
			schedErr <- err
			// A scheduler failure while the dashboard is up takes
			// the whole program down.
			if err != nil && ctx.Err() == nil {
				r.program.Send(ErrorMsg{Error: err.Error()})
				r.program.Send(QuitMsg{Reason: "refresh loop stopped"})
			}
		}()
	}

	_, tuiErr := r.program.Run()
	cancel()

	if r.scheduler != nil {
		select {
		case err := <-schedErr:
			if err != nil && !errors.Is(err, context.Canceled) && tuiErr == nil {
				tuiErr = fmt.Errorf("refresh loop: %w", err)
			}
		case <-time.After(3 * time.Second):
			if tuiErr == nil {
				tuiErr = fmt.Errorf("refresh loop did not stop in time")
			}
		}
	}
	return tuiErr
}
