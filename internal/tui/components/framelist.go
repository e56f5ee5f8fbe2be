package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"gridwatch/internal/tui/styles"
)

// FrameItem is one frame entry in the sidebar.
type FrameItem struct {
	Name    string
	Rows    int
	Bytes   int64
	Stale   bool
	Loading bool
	Failed  bool
}

// FrameList is the frame sidebar with a scrolling selection.
type FrameList struct {
	items    []FrameItem
	selected int
	offset   int
	width    int
	height   int
	focused  bool
}

// NewFrameList creates an empty frame list.
func NewFrameList() *FrameList {
	return &FrameList{width: 28, height: 10}
}

// SetFrames replaces the items, keeping the selection on the same
// frame name when it survives.
func (l *FrameList) SetFrames(items []FrameItem) {
	current := l.SelectedName()
	l.items = items
	l.selected = 0
	for i, item := range items {
		if item.Name == current {
			l.selected = i
			break
		}
	}
	l.clampScroll()
}

// SetSize sets the render size.
func (l *FrameList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.clampScroll()
}

// Focus marks the list as the active pane.
func (l *FrameList) Focus() { l.focused = true }

// Blur marks the list as inactive.
func (l *FrameList) Blur() { l.focused = false }

// Focused reports whether the list is the active pane.
func (l *FrameList) Focused() bool { return l.focused }

// Len returns the number of items.
func (l *FrameList) Len() int { return len(l.items) }

// SelectedName returns the selected frame name, or "" when empty.
func (l *FrameList) SelectedName() string {
	if l.selected < 0 || l.selected >= len(l.items) {
		return ""
	}
	return l.items[l.selected].Name
}

// Select moves the selection to the named frame if present.
func (l *FrameList) Select(name string) {
	for i, item := range l.items {
		if item.Name == name {
			l.selected = i
			l.clampScroll()
			return
		}
	}
}

// MoveUp moves the selection up one item.
func (l *FrameList) MoveUp() {
	if l.selected > 0 {
		l.selected--
		l.clampScroll()
	}
}

// MoveDown moves the selection down one item.
func (l *FrameList) MoveDown() {
	if l.selected < len(l.items)-1 {
		l.selected++
		l.clampScroll()
	}
}

func (l *FrameList) visibleRows() int {
	// Two lines go to the box border, one to the title.
	rows := l.height - 3
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (l *FrameList) clampScroll() {
	rows := l.visibleRows()
	if l.selected < l.offset {
		l.offset = l.selected
	}
	if l.selected >= l.offset+rows {
		l.offset = l.selected - rows + 1
	}
	if l.offset < 0 {
		l.offset = 0
	}
}

func frameIcon(item FrameItem) string {
	switch {
	case item.Loading:
		return styles.IconLoading
	case item.Failed:
		return styles.IconFailed
	case item.Stale:
		return styles.IconStale
	default:
		return styles.IconFresh
	}
}

// View renders the sidebar box.
func (l *FrameList) View() string {
	title := styles.TitleStyle.Render("Frames")

	inner := l.width - 4
	if inner < 10 {
		inner = 10
	}

	content := title + "\n"
	if len(l.items) == 0 {
		content += styles.MutedTextStyle.Render("no frames loaded") + "\n" +
			styles.MutedTextStyle.Render("try: gridwatch demo")
	} else {
		rows := l.visibleRows()
		end := l.offset + rows
		if end > len(l.items) {
			end = len(l.items)
		}
		for i := l.offset; i < end; i++ {
			item := l.items[i]
			count := humanize.Comma(int64(item.Rows))
			name := truncateString(item.Name, inner-len(count)-4)

			line := frameIcon(item) + " " + name
			gap := inner - lipgloss.Width(line) - len(count)
			if gap < 1 {
				gap = 1
			}
			line += lipgloss.NewStyle().Width(gap).Render("") +
				styles.MutedTextStyle.Render(count)

			if i == l.selected {
				marker := "  "
				if l.focused {
					marker = styles.KeyStyle.Render("▶ ")
				}
				line = marker + line
			} else {
				line = "  " + line
			}
			content += line + "\n"
		}
		if l.offset > 0 {
			content += styles.MutedTextStyle.Render("↑ more above")
		} else if end < len(l.items) {
			content += styles.MutedTextStyle.Render(
				fmt.Sprintf("↓ %d more", len(l.items)-end))
		}
	}

	box := styles.BoxStyle
	if l.focused {
		box = styles.FocusedBoxStyle
	}
	return box.Width(l.width - 2).Height(l.height - 2).Render(content)
}

// truncateString shortens s to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	if maxLen < 1 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
