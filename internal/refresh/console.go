package refresh

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"gridwatch/internal/dataset"
)

// OutputFormat defines the output format for the console sink.
type OutputFormat string

const (
	// OutputFormatText is the default human-readable text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON produces structured JSON output.
	OutputFormatJSON OutputFormat = "json"
)

// ConsoleConfig configures the console sink.
type ConsoleConfig struct {
	// OutputFormat is the format for output (text or json).
	OutputFormat OutputFormat
	// Writer is the output writer (defaults to stdout).
	Writer io.Writer
	// Verbose enables detailed per-event output.
	Verbose bool
}

// DefaultConsoleConfig returns a default configuration.
func DefaultConsoleConfig() *ConsoleConfig {
	return &ConsoleConfig{
		OutputFormat: OutputFormatText,
		Verbose:      false,
	}
}

// Console renders refresh events as plain lines for headless use.
// It is designed to be used as the Options.OnEvent callback.
type Console struct {
	config     *ConsoleConfig
	startTime  time.Time
	jsonEvents []jsonEvent
}

// NewConsole creates a console sink with the given configuration.
func NewConsole(config *ConsoleConfig) *Console {
	if config == nil {
		config = DefaultConsoleConfig()
	}
	return &Console{
		config:     config,
		startTime:  time.Now(),
		jsonEvents: []jsonEvent{},
	}
}

// jsonEvent represents a single event in JSON output format.
type jsonEvent struct {
	Timestamp string    `json:"timestamp"`
	Type      EventType `json:"type"`
	Frame     string    `json:"frame,omitempty"`
	Path      string    `json:"path,omitempty"`
	Rows      int       `json:"rows,omitempty"`
	Bytes     int64     `json:"bytes,omitempty"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// jsonOutput is the complete JSON output for a headless session.
type jsonOutput struct {
	StartTime     string      `json:"start_time"`
	EndTime       string      `json:"end_time"`
	Duration      string      `json:"duration"`
	Passes        int         `json:"passes"`
	FilesLoaded   int         `json:"files_loaded"`
	FilesFailed   int         `json:"files_failed"`
	FramesDropped int         `json:"frames_dropped"`
	Snapshots     int         `json:"snapshots"`
	Frames        int         `json:"frames"`
	Rows          int         `json:"rows"`
	Events        []jsonEvent `json:"events"`
}

// HandleEvent processes a refresh event for console output.
func (c *Console) HandleEvent(event Event) {
	switch c.config.OutputFormat {
	case OutputFormatJSON:
		c.handleEventJSON(event)
	default:
		c.handleEventText(event)
	}
}

// handleEventText outputs an event in human-readable text format.
func (c *Console) handleEventText(event Event) {
	w := c.config.Writer
	if w == nil {
		return
	}

	elapsed := time.Since(c.startTime).Round(time.Second)
	prefix := fmt.Sprintf("[%s]", formatElapsed(elapsed))

	var message string
	switch event.Type {
	case EventReloadStarted:
		if c.config.Verbose {
			message = fmt.Sprintf("🔄 %s Reloading %s", prefix, event.Path)
		}
	case EventReloadCompleted:
		message = fmt.Sprintf("✅ %s Reload complete: %s", prefix, event.Message)
	case EventFrameLoaded:
		message = fmt.Sprintf("✓  %s Loaded %s (%d rows, %s)",
			prefix, event.Frame, event.Rows, humanize.Bytes(uint64(event.Bytes)))
	case EventFrameDropped:
		message = fmt.Sprintf("🗑  %s Dropped %s (%s removed)", prefix, event.Frame, event.Path)
	case EventReloadFailed:
		message = fmt.Sprintf("❌ %s Failed %s: %s", prefix, event.Path, c.errorStr(event.Error))

	case EventWatchStarted:
		message = fmt.Sprintf("🔍 %s Watching %s for changes", prefix, event.Path)
	case EventWatchStopped:
		message = fmt.Sprintf("⏸️  %s Watch stopped", prefix)

	case EventSnapshotSaved:
		message = fmt.Sprintf("📸 %s Snapshot of %s (%d rows) - %s",
			prefix, event.Frame, event.Rows, event.Message)

	case EventHooksStarted:
		if c.config.Verbose {
			message = fmt.Sprintf("   %s %s", prefix, event.Message)
		}
	case EventHooksCompleted:
		if c.config.Verbose {
			message = fmt.Sprintf("   %s Hooks completed", prefix)
		}
	case EventHookFailed:
		message = fmt.Sprintf("⚠️  %s Hook failed: %s", prefix, event.Message)

	case EventError:
		message = fmt.Sprintf("⚠️  %s %s: %s", prefix, event.Message, c.errorStr(event.Error))

	default:
		if c.config.Verbose {
			message = fmt.Sprintf("   %s %s: %s", prefix, event.Type, event.Message)
		}
	}

	if message != "" {
		fmt.Fprintln(w, message)
	}
}

// handleEventJSON collects events for JSON output.
func (c *Console) handleEventJSON(event Event) {
	je := jsonEvent{
		Timestamp: event.Timestamp.Format(time.RFC3339),
		Type:      event.Type,
		Frame:     event.Frame,
		Path:      event.Path,
		Rows:      event.Rows,
		Bytes:     event.Bytes,
		Message:   event.Message,
	}
	if event.Error != nil {
		je.Error = event.Error.Error()
	}
	c.jsonEvents = append(c.jsonEvents, je)
}

// WriteJSONOutput writes the complete JSON output. Call after the
// scheduler has stopped.
func (c *Console) WriteJSONOutput(stats Stats, store *dataset.Store) error {
	if c.config.OutputFormat != OutputFormatJSON {
		return nil
	}

	w := c.config.Writer
	if w == nil {
		return nil
	}

	endTime := time.Now()
	output := jsonOutput{
		StartTime:     c.startTime.Format(time.RFC3339),
		EndTime:       endTime.Format(time.RFC3339),
		Duration:      endTime.Sub(c.startTime).Round(time.Second).String(),
		Passes:        stats.Passes,
		FilesLoaded:   stats.FilesLoaded,
		FilesFailed:   stats.FilesFailed,
		FramesDropped: stats.FramesDropped,
		Snapshots:     stats.Snapshots,
		Events:        c.jsonEvents,
	}
	if store != nil {
		output.Frames = store.Len()
		output.Rows = store.TotalRows()
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// PrintSummary prints a summary at the end of a text session.
func (c *Console) PrintSummary(stats Stats, store *dataset.Store) {
	if c.config.OutputFormat == OutputFormatJSON {
		return // JSON output carries its own summary
	}

	w := c.config.Writer
	if w == nil {
		return
	}

	elapsed := time.Since(c.startTime).Round(time.Second)

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "Duration: %s\n", elapsed)
	fmt.Fprintf(w, "Reloads: %d passes, %d files loaded, %d failed\n",
		stats.Passes, stats.FilesLoaded, stats.FilesFailed)
	if store != nil {
		fmt.Fprintf(w, "Frames: %d (%s rows, %s)\n",
			store.Len(),
			humanize.Comma(int64(store.TotalRows())),
			humanize.Bytes(uint64(store.TotalBytes())))
	}
	if stats.Snapshots > 0 {
		fmt.Fprintf(w, "Snapshots: %d\n", stats.Snapshots)
	}
	fmt.Fprintln(w, strings.Repeat("─", 60))
}

// errorStr safely converts an error to string.
func (c *Console) errorStr(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// formatElapsed formats duration as MM:SS or HH:MM:SS.
func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
