package components

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"gridwatch/internal/tui/styles"
	"gridwatch/internal/view"
)

// ViewSelectedMsg carries the chosen saved view.
type ViewSelectedMsg struct {
	View *view.View
}

// ViewDeleteRequestMsg asks the app to delete a saved view.
type ViewDeleteRequestMsg struct {
	ID string
}

// ViewPicker is a modal list of saved views.
type ViewPicker struct {
	visible  bool
	views    []*view.View
	selected int
	offset   int
	height   int
}

// NewViewPicker creates a hidden picker.
func NewViewPicker() *ViewPicker {
	return &ViewPicker{height: 8}
}

// Show opens the picker over the given views.
func (p *ViewPicker) Show(views []*view.View) {
	p.visible = true
	p.views = views
	if p.selected >= len(views) {
		p.selected = 0
		p.offset = 0
	}
}

// SetViews replaces the listed views, clamping the selection.
func (p *ViewPicker) SetViews(views []*view.View) {
	p.views = views
	if p.selected >= len(views) {
		p.selected = len(views) - 1
	}
	if p.selected < 0 {
		p.selected = 0
	}
	if p.offset > p.selected {
		p.offset = p.selected
	}
}

// Hide closes the picker.
func (p *ViewPicker) Hide() {
	p.visible = false
}

// IsVisible reports whether the picker is shown.
func (p *ViewPicker) IsVisible() bool {
	return p.visible
}

// Selected returns the highlighted view, or nil when empty.
func (p *ViewPicker) Selected() *view.View {
	if p.selected < 0 || p.selected >= len(p.views) {
		return nil
	}
	return p.views[p.selected]
}

func (p *ViewPicker) clampScroll() {
	if p.selected < p.offset {
		p.offset = p.selected
	}
	if p.selected >= p.offset+p.height {
		p.offset = p.selected - p.height + 1
	}
	if p.offset < 0 {
		p.offset = 0
	}
}

// Update handles key input while the picker is open.
func (p *ViewPicker) Update(msg tea.Msg) tea.Cmd {
	if !p.visible {
		return nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch keyMsg.String() {
	case "j", "down":
		if p.selected < len(p.views)-1 {
			p.selected++
			p.clampScroll()
		}
	case "k", "up":
		if p.selected > 0 {
			p.selected--
			p.clampScroll()
		}
	case "enter":
		selected := p.Selected()
		if selected == nil {
			return nil
		}
		p.visible = false
		return func() tea.Msg {
			return ViewSelectedMsg{View: selected}
		}
	case "x":
		selected := p.Selected()
		if selected == nil {
			return nil
		}
		id := selected.ID
		return func() tea.Msg {
			return ViewDeleteRequestMsg{ID: id}
		}
	case "esc", "V":
		p.visible = false
	}
	return nil
}

func (p *ViewPicker) line(i int, v *view.View) string {
	marker := "  "
	if i == p.selected {
		marker = styles.KeyStyle.Render("▶ ")
	}

	line := marker + styles.TitleStyle.Render(padRight(truncateString(v.Name, 28), 29))
	line += styles.MutedTextStyle.Render(padRight(v.Frame, 12))
	line += styles.MutedTextStyle.Render(humanize.Time(v.UpdatedAt))
	return line
}

// View renders the picker box.
func (p *ViewPicker) View() string {
	if !p.visible {
		return ""
	}

	content := styles.TitleStyle.Render("Saved Views") + "\n\n"
	if len(p.views) == 0 {
		content += styles.MutedTextStyle.Render("no saved views yet · press v to save one")
	} else {
		end := p.offset + p.height
		if end > len(p.views) {
			end = len(p.views)
		}
		for i := p.offset; i < end; i++ {
			content += p.line(i, p.views[i]) + "\n"
		}
		if end < len(p.views) {
			content += styles.MutedTextStyle.Render(
				fmt.Sprintf("↓ %d more", len(p.views)-end)) + "\n"
		}
	}
	content += "\n" + styles.HelpStyle.Render("j/k: navigate  Enter: apply  x: delete  Esc: close")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary).
		Padding(1, 2)

	return box.Render(content)
}
