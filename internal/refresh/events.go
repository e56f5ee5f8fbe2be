// Package refresh orchestrates data reloads for gridwatch.
// The Scheduler owns the loader, the filesystem watcher, and the
// periodic reload and snapshot timers; observers attach through a
// single event callback.
package refresh

import (
	"time"
)

// EventType identifies the type of refresh event.
type EventType string

const (
	EventReloadStarted   EventType = "reload_started"
	EventReloadCompleted EventType = "reload_completed"
	EventFrameLoaded     EventType = "frame_loaded"
	EventFrameDropped    EventType = "frame_dropped"
	EventReloadFailed    EventType = "reload_failed"
	EventWatchStarted    EventType = "watch_started"
	EventWatchStopped    EventType = "watch_stopped"
	EventSnapshotSaved   EventType = "snapshot_saved"
	EventHooksStarted    EventType = "hooks_started"
	EventHooksCompleted  EventType = "hooks_completed"
	EventHookFailed      EventType = "hook_failed"
	EventError           EventType = "error"
)

// Event represents a refresh event for observers (TUI, console, logging).
type Event struct {
	Type      EventType
	Frame     string
	Path      string
	Rows      int
	Bytes     int64
	Duration  time.Duration
	Message   string
	Error     error
	Timestamp time.Time
}

// EventHandler is a callback for refresh events.
type EventHandler func(event Event)
