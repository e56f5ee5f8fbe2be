package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gridwatch/internal/tui/styles"
)

// helpEntry is one key binding line in the overlay.
type helpEntry struct {
	key  string
	desc string
}

// helpGroup is a titled section of bindings.
type helpGroup struct {
	title   string
	entries []helpEntry
}

// HelpOverlay renders the full key binding reference as a modal.
type HelpOverlay struct {
	visible bool
	groups  []helpGroup
}

// NewHelpOverlay creates the overlay with the dashboard bindings.
func NewHelpOverlay() *HelpOverlay {
	return &HelpOverlay{
		groups: []helpGroup{
			{
				title: "Navigate",
				entries: []helpEntry{
					{"tab", "switch between frame list and table"},
					{"j/k, ↑/↓", "move selection"},
					{"pgup/pgdn", "page through rows"},
				},
			},
			{
				title: "Query",
				entries: []helpEntry{
					{"/", "edit filter (col:text restricts to a column)"},
					{"s", "cycle sort column and direction"},
					{"d", "pick a date range from the calendar"},
					{"p", "cycle date presets"},
				},
			},
			{
				title: "Views",
				entries: []helpEntry{
					{"v", "save the current query as a view"},
					{"V", "open saved views"},
				},
			},
			{
				title: "Data",
				entries: []helpEntry{
					{"r", "reload all sources now"},
					{"S", "snapshot all frames to history"},
					{"x", "export the current rows to CSV"},
					{"D", "drop the selected frame"},
					{"c", "toggle the column stats panel"},
				},
			},
			{
				title: "General",
				entries: []helpEntry{
					{"?", "toggle this help"},
					{"q", "quit"},
					{"ctrl+c", "force quit"},
				},
			},
		},
	}
}

// Show displays the overlay.
func (h *HelpOverlay) Show() {
	h.visible = true
}

// Hide closes the overlay.
func (h *HelpOverlay) Hide() {
	h.visible = false
}

// IsVisible reports whether the overlay is shown.
func (h *HelpOverlay) IsVisible() bool {
	return h.visible
}

// Update closes the overlay on any key.
func (h *HelpOverlay) Update(msg tea.Msg) tea.Cmd {
	if !h.visible {
		return nil
	}
	if _, ok := msg.(tea.KeyMsg); ok {
		h.visible = false
	}
	return nil
}

// View renders the overlay box.
func (h *HelpOverlay) View() string {
	if !h.visible {
		return ""
	}

	content := styles.TitleStyle.Render("Keyboard Shortcuts") + "\n"
	for _, group := range h.groups {
		content += "\n" + styles.SuccessTextStyle.Bold(true).Render(group.title) + "\n"
		for _, e := range group.entries {
			content += "  " + styles.KeyStyle.Render(padRight(e.key, 11)) +
				styles.HelpStyle.Render(e.desc) + "\n"
		}
	}
	content += "\n" + styles.MutedTextStyle.Render("Press any key to close")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary).
		Padding(1, 2)

	return box.Render(content)
}

func padRight(s string, width int) string {
	for len(s) < width {
		s += " "
	}
	return s
}
