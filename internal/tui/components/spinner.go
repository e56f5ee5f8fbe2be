package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gridwatch/internal/tui/styles"
)

// Spinner wraps the bubbles spinner with a label.
type Spinner struct {
	spinner spinner.Model
	label   string
	active  bool
}

// NewSpinner creates a spinner with the given label.
func NewSpinner(label string) *Spinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Secondary)
	return &Spinner{spinner: s, label: label}
}

// SetLabel sets the displayed label.
func (s *Spinner) SetLabel(label string) {
	s.label = label
}

// Start activates the spinner and returns its tick command.
func (s *Spinner) Start() tea.Cmd {
	s.active = true
	return s.spinner.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() {
	s.active = false
}

// Active reports whether the spinner is animating.
func (s *Spinner) Active() bool {
	return s.active
}

// Update advances the animation.
func (s *Spinner) Update(msg tea.Msg) tea.Cmd {
	if !s.active {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

// View renders the spinner and label.
func (s *Spinner) View() string {
	if !s.active {
		return ""
	}
	return s.spinner.View() + " " + styles.MutedTextStyle.Render(s.label)
}
