package tui

import (
	"time"
)

// TickMsg drives the clock and staleness refresh.
type TickMsg struct {
	Time time.Time
}

// ReloadStartedMsg reports that a reload pass began.
type ReloadStartedMsg struct{}

// FrameLoadedMsg reports one source file landing in the store.
type FrameLoadedMsg struct {
	Frame    string
	Path     string
	Rows     int
	Bytes    int64
	Duration time.Duration
}

// ReloadFailedMsg reports one source file failing to load.
type ReloadFailedMsg struct {
	Path  string
	Error string
}

// FrameDroppedMsg reports a frame leaving the store because its
// source file disappeared.
type FrameDroppedMsg struct {
	Frame string
}

// FramesUpdatedMsg reports the store totals after a reload pass.
type FramesUpdatedMsg struct {
	Names      []string
	TotalRows  int
	TotalBytes int64
}

// WatchStatusMsg reports the file watcher starting or stopping.
type WatchStatusMsg struct {
	Active bool
}

// SnapshotSavedMsg reports a frame snapshot landing in history.
type SnapshotSavedMsg struct {
	Frame string
	Rows  int
}

// ExportDoneMsg reports a finished CSV export.
type ExportDoneMsg struct {
	Path string
	Rows int
}

// ErrorMsg carries a background error into the status bar.
type ErrorMsg struct {
	Error string
}

// QuitMsg asks the program to exit.
type QuitMsg struct {
	Reason string
}
