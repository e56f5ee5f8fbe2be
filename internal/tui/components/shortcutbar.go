package components

import (
	"strings"

	"gridwatch/internal/tui/styles"
)

// ShortcutDef defines a single shortcut hint.
type ShortcutDef struct {
	Key  string
	Desc string
}

// ShortcutBar renders a single line of key hints.
type ShortcutBar struct {
	shortcuts []ShortcutDef
	width     int
}

// NewShortcutBar creates a shortcut bar with the given hints.
func NewShortcutBar(shortcuts []ShortcutDef) *ShortcutBar {
	return &ShortcutBar{shortcuts: shortcuts}
}

// SetShortcuts replaces the displayed hints.
func (s *ShortcutBar) SetShortcuts(shortcuts []ShortcutDef) {
	s.shortcuts = shortcuts
}

// SetWidth sets the render width.
func (s *ShortcutBar) SetWidth(width int) {
	s.width = width
}

// View renders the shortcut bar.
func (s *ShortcutBar) View() string {
	if len(s.shortcuts) == 0 {
		return ""
	}

	parts := make([]string, 0, len(s.shortcuts))
	for _, sc := range s.shortcuts {
		parts = append(parts, styles.KeyStyle.Render(sc.Key)+" "+styles.HelpStyle.Render(sc.Desc))
	}

	line := strings.Join(parts, styles.HelpStyle.Render(" │ "))
	return styles.StatusBarStyle.Render(line)
}
