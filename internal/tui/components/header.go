package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"gridwatch/internal/tui/styles"
)

// Header renders the top bar: app name, workspace, and dataset totals.
type Header struct {
	workspace  string
	frameCount int
	totalRows  int
	totalBytes int64
	width      int
}

// NewHeader creates a header for the given workspace name.
func NewHeader(workspace string) *Header {
	return &Header{workspace: workspace}
}

// SetWorkspace sets the displayed workspace name.
func (h *Header) SetWorkspace(name string) {
	h.workspace = name
}

// SetTotals updates the dataset counters.
func (h *Header) SetTotals(frames, rows int, bytes int64) {
	h.frameCount = frames
	h.totalRows = rows
	h.totalBytes = bytes
}

// SetWidth sets the render width.
func (h *Header) SetWidth(width int) {
	h.width = width
}

// View renders the header line.
func (h *Header) View() string {
	left := styles.HeaderStyle.Render("⊞ gridwatch")
	if h.workspace != "" {
		left += styles.MutedTextStyle.Render(" · ") + styles.TitleStyle.Render(h.workspace)
	}

	right := styles.MutedTextStyle.Render(fmt.Sprintf(
		"%d frames · %s rows · %s",
		h.frameCount,
		humanize.Comma(int64(h.totalRows)),
		humanize.Bytes(uint64(h.totalBytes)),
	))

	gap := h.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + lipgloss.NewStyle().Width(gap).Render("") + right
}
