package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gridwatch/internal/tui/styles"
)

// ConfirmAction identifies what a confirmation applies to.
type ConfirmAction int

const (
	// ActionQuit confirms leaving while the watcher is active.
	ActionQuit ConfirmAction = iota
	// ActionDrop confirms dropping a frame from the store.
	ActionDrop
	// ActionDeleteView confirms deleting a saved view.
	ActionDeleteView
)

// ConfirmYesMsg is emitted when the user confirms.
type ConfirmYesMsg struct {
	Action ConfirmAction
	// Target carries the frame or view the action applies to.
	Target string
}

// ConfirmNoMsg is emitted when the user declines.
type ConfirmNoMsg struct{}

// ConfirmDialog asks a yes/no question as a modal overlay.
type ConfirmDialog struct {
	visible     bool
	title       string
	message     string
	action      ConfirmAction
	target      string
	destructive bool
	width       int
}

// NewConfirmDialog creates a hidden dialog.
func NewConfirmDialog() *ConfirmDialog {
	return &ConfirmDialog{width: 50}
}

// Show displays the dialog with the given question.
func (c *ConfirmDialog) Show(title, message string, action ConfirmAction, target string, destructive bool) {
	c.visible = true
	c.title = title
	c.message = message
	c.action = action
	c.target = target
	c.destructive = destructive
}

// Hide closes the dialog.
func (c *ConfirmDialog) Hide() {
	c.visible = false
}

// IsVisible reports whether the dialog is shown.
func (c *ConfirmDialog) IsVisible() bool {
	return c.visible
}

// Update handles key input while the dialog is visible.
func (c *ConfirmDialog) Update(msg tea.Msg) tea.Cmd {
	if !c.visible {
		return nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch keyMsg.String() {
	case "y", "Y", "enter":
		c.visible = false
		action := c.action
		target := c.target
		return func() tea.Msg {
			return ConfirmYesMsg{Action: action, Target: target}
		}
	case "n", "N", "esc":
		c.visible = false
		return func() tea.Msg {
			return ConfirmNoMsg{}
		}
	}
	return nil
}

// View renders the dialog box.
func (c *ConfirmDialog) View() string {
	if !c.visible {
		return ""
	}

	titleStyle := styles.WarningTextStyle
	borderColor := styles.Warning
	yesStyle := styles.ButtonActiveStyle
	if c.destructive {
		titleStyle = styles.ErrorTextStyle
		borderColor = styles.Error
		yesStyle = styles.ButtonDangerStyle
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(borderColor).
		Padding(1, 2).
		Width(c.width)

	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		yesStyle.Render("[y] Yes"),
		"  ",
		styles.ButtonStyle.Render("[n] No"),
	)

	content := titleStyle.Bold(true).Render(c.title) + "\n\n" +
		c.message + "\n\n" +
		buttons

	return box.Render(content)
}
