package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"gridwatch/internal/tui/styles"
)

// FilterSubmitMsg carries the submitted filter text.
type FilterSubmitMsg struct {
	Value string
}

// FilterCancelMsg reports that filter editing was abandoned.
type FilterCancelMsg struct{}

// FilterInput is a one-line filter editor shown above the status bar.
// Text of the form "column:text" restricts the match to one column.
type FilterInput struct {
	input   textinput.Model
	visible bool
}

// NewFilterInput creates a hidden filter editor.
func NewFilterInput() *FilterInput {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.PromptStyle = styles.KeyStyle
	ti.Placeholder = "filter rows, col:text for one column"
	ti.CharLimit = 120
	return &FilterInput{input: ti}
}

// Show opens the editor pre-filled with the current filter.
func (f *FilterInput) Show(current string) tea.Cmd {
	f.visible = true
	f.input.SetValue(current)
	f.input.CursorEnd()
	return f.input.Focus()
}

// Hide closes the editor.
func (f *FilterInput) Hide() {
	f.visible = false
	f.input.Blur()
}

// IsVisible reports whether the editor is open.
func (f *FilterInput) IsVisible() bool {
	return f.visible
}

// Value returns the current text.
func (f *FilterInput) Value() string {
	return f.input.Value()
}

// SetWidth sets the editor width.
func (f *FilterInput) SetWidth(width int) {
	f.input.Width = width - 4
}

// Update handles key input while the editor is open.
func (f *FilterInput) Update(msg tea.Msg) tea.Cmd {
	if !f.visible {
		return nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			value := f.input.Value()
			f.Hide()
			return func() tea.Msg {
				return FilterSubmitMsg{Value: value}
			}
		case "esc":
			f.Hide()
			return func() tea.Msg {
				return FilterCancelMsg{}
			}
		}
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}

// View renders the editor line.
func (f *FilterInput) View() string {
	if !f.visible {
		return ""
	}
	return f.input.View()
}
