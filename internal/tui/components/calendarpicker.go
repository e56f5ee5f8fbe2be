package components

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gridwatch/internal/calendar"
	"gridwatch/internal/tui/styles"
)

// RangePickedMsg carries the chosen date range. A zero range means
// all time.
type RangePickedMsg struct {
	Range calendar.Range
}

// CalendarPicker is a month-grid overlay for picking a date range.
// The first Enter anchors the start day, the second picks the end.
type CalendarPicker struct {
	visible bool
	month   calendar.Month
	cursor  time.Time
	anchor  time.Time
	active  calendar.Range
	now     func() time.Time
}

// NewCalendarPicker creates a hidden picker.
func NewCalendarPicker() *CalendarPicker {
	return &CalendarPicker{now: time.Now}
}

// Show opens the picker positioned on the active range, or on today
// when no range is set.
func (c *CalendarPicker) Show(active calendar.Range) {
	c.visible = true
	c.active = active
	c.anchor = time.Time{}

	cursor := c.now()
	if !active.From.IsZero() {
		cursor = active.From
	}
	c.cursor = midnight(cursor)
	c.month = calendar.MonthOf(c.cursor)
}

// Hide closes the picker.
func (c *CalendarPicker) Hide() {
	c.visible = false
}

// IsVisible reports whether the picker is shown.
func (c *CalendarPicker) IsVisible() bool {
	return c.visible
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (c *CalendarPicker) moveCursor(days int) {
	c.cursor = c.cursor.AddDate(0, 0, days)
	if !c.month.Contains(c.cursor) {
		c.month = calendar.MonthOf(c.cursor)
	}
}

// moveMonth flips the grid one month and carries the cursor along,
// clamping the day so a Jan 31 cursor lands on Feb 28 rather than
// overflowing into March.
func (c *CalendarPicker) moveMonth(step int) {
	if step > 0 {
		c.month = c.month.Next()
	} else {
		c.month = c.month.Prev()
	}
	day := c.cursor.Day()
	if last := c.month.Days(); day > last {
		day = last
	}
	c.cursor = time.Date(c.month.Year, c.month.Month, day,
		0, 0, 0, 0, c.cursor.Location())
}

// Update handles key input while the picker is open.
func (c *CalendarPicker) Update(msg tea.Msg) tea.Cmd {
	if !c.visible {
		return nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch keyMsg.String() {
	case "h", "left":
		c.moveCursor(-1)
	case "l", "right":
		c.moveCursor(1)
	case "j", "down":
		c.moveCursor(7)
	case "k", "up":
		c.moveCursor(-7)
	case "[":
		c.moveMonth(-1)
	case "]":
		c.moveMonth(1)
	case "enter":
		if c.anchor.IsZero() {
			c.anchor = c.cursor
			return nil
		}
		from, to := c.anchor, c.cursor
		if from.After(to) {
			from, to = to, from
		}
		picked := calendar.NewRange(from, to.AddDate(0, 0, 1))
		c.visible = false
		return func() tea.Msg {
			return RangePickedMsg{Range: picked}
		}
	case "a":
		c.visible = false
		return func() tea.Msg {
			return RangePickedMsg{}
		}
	case "esc":
		c.visible = false
	}
	return nil
}

// highlight is the range painted on the grid: the pending selection
// while an anchor is set, otherwise the active range.
func (c *CalendarPicker) highlight() calendar.Range {
	if c.anchor.IsZero() {
		return c.active
	}
	from, to := c.anchor, c.cursor
	if from.After(to) {
		from, to = to, from
	}
	return calendar.NewRange(from, to.AddDate(0, 0, 1))
}

// View renders the picker box.
func (c *CalendarPicker) View() string {
	if !c.visible {
		return ""
	}

	content := styles.TitleStyle.Render(c.month.Title()) + "\n"

	header := ""
	for _, wd := range calendar.WeekdayHeader() {
		header += styles.MutedTextStyle.Bold(true).Width(4).Align(lipgloss.Right).Render(wd)
	}
	content += header + "\n"

	today := midnight(c.now())
	for _, week := range c.month.Grid(today, c.highlight()) {
		line := ""
		for _, day := range week {
			cell := fmt.Sprintf("%d", day.Date.Day())
			style := styles.CalendarDayStyle
			switch {
			case sameDate(day.Date, c.cursor):
				style = styles.CalendarCursorStyle
			case day.InRange:
				style = styles.CalendarInRangeStyle
			case day.Today:
				style = styles.CalendarTodayStyle
			case !day.InMonth:
				style = styles.CalendarOutsideStyle
			}
			line += style.Render(cell)
		}
		content += line + "\n"
	}

	if c.anchor.IsZero() {
		content += "\n" + styles.MutedTextStyle.Render("Enter: pick start day")
	} else {
		content += "\n" + styles.MutedTextStyle.Render(
			"start "+c.anchor.Format("Jan 2")+" · Enter: pick end day")
	}
	content += "\n" + styles.HelpStyle.Render("h/j/k/l: move  [/]: month  a: all time  Esc: close")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary).
		Padding(1, 2)

	return box.Render(content)
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
