package components

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"gridwatch/internal/dataset"
	"gridwatch/internal/tui/styles"
)

// StatsPanel shows per-column summary statistics as a modal overlay.
type StatsPanel struct {
	visible bool
	summary *dataset.Summary
	offset  int
	height  int
}

// NewStatsPanel creates a hidden stats panel.
func NewStatsPanel() *StatsPanel {
	return &StatsPanel{height: 12}
}

// Show displays the panel for the given summary.
func (p *StatsPanel) Show(summary *dataset.Summary) {
	p.visible = true
	p.summary = summary
	p.offset = 0
}

// Hide closes the panel.
func (p *StatsPanel) Hide() {
	p.visible = false
}

// IsVisible reports whether the panel is shown.
func (p *StatsPanel) IsVisible() bool {
	return p.visible
}

// SetHeight caps how many column lines are shown at once.
func (p *StatsPanel) SetHeight(h int) {
	if h > 3 {
		p.height = h
	}
}

// Update handles scrolling and closing.
func (p *StatsPanel) Update(msg tea.Msg) tea.Cmd {
	if !p.visible {
		return nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch keyMsg.String() {
	case "j", "down":
		if p.summary != nil && p.offset < len(p.summary.Columns)-1 {
			p.offset++
		}
	case "k", "up":
		if p.offset > 0 {
			p.offset--
		}
	case "c", "esc", "q":
		p.visible = false
	}
	return nil
}

func statLine(col dataset.ColumnSummary) string {
	name := styles.TitleStyle.Render(padRight(truncateString(col.Name, 18), 19))
	kind := styles.MutedTextStyle.Render(padRight(col.Kind.String(), 7))

	detail := fmt.Sprintf("%s rows", humanize.Comma(int64(col.Count)))
	if col.Nulls > 0 {
		detail += fmt.Sprintf(", %d null", col.Nulls)
	}
	detail += fmt.Sprintf(", %d distinct", col.Distinct)

	if col.Kind.Numeric() && col.Count > 0 {
		detail += fmt.Sprintf("  mean %.2f  p50 %.2f  p90 %.2f  p99 %.2f",
			col.Mean, col.P50, col.P90, col.P99)
	} else if col.Min != "" || col.Max != "" {
		detail += fmt.Sprintf("  %s … %s",
			truncateString(col.Min, 16), truncateString(col.Max, 16))
	}

	return name + kind + styles.MutedTextStyle.Render(detail)
}

// View renders the panel box.
func (p *StatsPanel) View() string {
	if !p.visible {
		return ""
	}

	content := styles.TitleStyle.Render("Column Stats")
	if p.summary == nil || len(p.summary.Columns) == 0 {
		content += "\n\n" + styles.MutedTextStyle.Render("no frame selected")
	} else {
		content += styles.MutedTextStyle.Render(fmt.Sprintf(
			"  %s · %s rows · v%d",
			p.summary.Frame,
			humanize.Comma(int64(p.summary.Rows)),
			p.summary.Version,
		)) + "\n\n"

		end := p.offset + p.height
		if end > len(p.summary.Columns) {
			end = len(p.summary.Columns)
		}
		for _, col := range p.summary.Columns[p.offset:end] {
			content += statLine(col) + "\n"
		}
		if end < len(p.summary.Columns) {
			content += styles.MutedTextStyle.Render(
				fmt.Sprintf("↓ %d more", len(p.summary.Columns)-end)) + "\n"
		}
	}
	content += "\n" + styles.HelpStyle.Render("j/k: scroll  c/Esc: close")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Secondary).
		Padding(1, 2)

	return box.Render(content)
}
