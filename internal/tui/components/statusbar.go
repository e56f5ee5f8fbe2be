package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"gridwatch/internal/cache"
	"gridwatch/internal/tui/styles"
)

// MessageLevel selects the color of a transient status message.
type MessageLevel int

const (
	MessageInfo MessageLevel = iota
	MessageSuccess
	MessageWarning
	MessageError
)

// StatusBar renders the bottom line: query state on the left, refresh
// and cache state on the right. A transient message temporarily
// replaces the left side.
type StatusBar struct {
	rangeLabel string
	filter     string
	shown      int
	matched    int

	watching   bool
	reloading  bool
	lastReload time.Time
	cacheStats cache.Stats

	message      string
	messageLevel MessageLevel
	messageUntil time.Time

	width int
}

// NewStatusBar creates an empty status bar.
func NewStatusBar() *StatusBar {
	return &StatusBar{rangeLabel: "All time"}
}

// SetQueryState updates the left-hand query summary.
func (s *StatusBar) SetQueryState(rangeLabel, filter string, shown, matched int) {
	s.rangeLabel = rangeLabel
	s.filter = filter
	s.shown = shown
	s.matched = matched
}

// SetWatching sets the watch indicator.
func (s *StatusBar) SetWatching(on bool) {
	s.watching = on
}

// SetReloading sets the reload-in-progress indicator.
func (s *StatusBar) SetReloading(on bool) {
	s.reloading = on
}

// SetLastReload records when the last reload pass finished.
func (s *StatusBar) SetLastReload(t time.Time) {
	s.lastReload = t
}

// SetCacheStats updates the displayed cache counters.
func (s *StatusBar) SetCacheStats(stats cache.Stats) {
	s.cacheStats = stats
}

// SetWidth sets the render width.
func (s *StatusBar) SetWidth(width int) {
	s.width = width
}

// ShowMessage displays a transient message for the given duration.
func (s *StatusBar) ShowMessage(msg string, level MessageLevel, d time.Duration) {
	s.message = msg
	s.messageLevel = level
	s.messageUntil = time.Now().Add(d)
}

// ClearExpired drops the transient message once its deadline passes.
func (s *StatusBar) ClearExpired(now time.Time) {
	if s.message != "" && now.After(s.messageUntil) {
		s.message = ""
	}
}

func (s *StatusBar) left() string {
	if s.message != "" {
		style := styles.MutedTextStyle
		switch s.messageLevel {
		case MessageSuccess:
			style = styles.SuccessTextStyle
		case MessageWarning:
			style = styles.WarningTextStyle
		case MessageError:
			style = styles.ErrorTextStyle
		}
		return style.Render(s.message)
	}

	out := styles.MutedTextStyle.Render(s.rangeLabel)
	if s.filter != "" {
		out += styles.MutedTextStyle.Render(" · filter ") +
			styles.TitleStyle.Render(s.filter)
	}
	out += styles.MutedTextStyle.Render(fmt.Sprintf(
		" · %s of %s rows",
		humanize.Comma(int64(s.shown)),
		humanize.Comma(int64(s.matched)),
	))
	return out
}

func (s *StatusBar) right() string {
	parts := ""

	total := s.cacheStats.Hits + s.cacheStats.Misses
	if total > 0 {
		pct := float64(s.cacheStats.Hits) / float64(total) * 100
		parts += styles.MutedTextStyle.Render(fmt.Sprintf("cache %.0f%% · ", pct))
	}

	switch {
	case s.reloading:
		parts += styles.WarningTextStyle.Render("reloading")
	case !s.lastReload.IsZero():
		parts += styles.MutedTextStyle.Render("reloaded " + humanize.Time(s.lastReload))
	default:
		parts += styles.MutedTextStyle.Render("no reload yet")
	}

	if s.watching {
		parts += styles.SuccessTextStyle.Render(" · ⟳ watch")
	} else {
		parts += styles.MutedTextStyle.Render(" · watch off")
	}
	return parts
}

// View renders the status bar.
func (s *StatusBar) View() string {
	left := s.left()
	right := s.right()

	gap := s.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		return styles.StatusBarStyle.Render(left)
	}
	return styles.StatusBarStyle.Render(
		left + lipgloss.NewStyle().Width(gap).Render("") + right,
	)
}
