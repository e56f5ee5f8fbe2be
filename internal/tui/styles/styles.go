// Package styles centralizes lipgloss styles for the dashboard.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	// Primary colors
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#06B6D4") // Cyan
	Success   = lipgloss.Color("#10B981") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#EF4444") // Red

	// Neutral colors
	Muted      = lipgloss.Color("#6B7280") // Gray
	MutedLight = lipgloss.Color("#9CA3AF") // Light gray
	Foreground = lipgloss.Color("#F9FAFB") // Near white

	// Border colors
	BorderColor = lipgloss.Color("#374151") // Dark gray
)

// Header styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			PaddingLeft(1).
			PaddingRight(1)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Foreground)
)

// Frame state indicators. Pre-rendered with their color.
var (
	IconFresh   = lipgloss.NewStyle().Foreground(Success).Render("●")
	IconStale   = lipgloss.NewStyle().Foreground(Warning).Render("◌")
	IconLoading = lipgloss.NewStyle().Foreground(Secondary).Render("◐")
	IconFailed  = lipgloss.NewStyle().Foreground(Error).Render("✗")
)

// Box styles
var (
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	FocusedBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)
)

// Text styles
var (
	MutedTextStyle = lipgloss.NewStyle().
			Foreground(Muted)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(Error)

	SuccessTextStyle = lipgloss.NewStyle().
				Foreground(Success)

	WarningTextStyle = lipgloss.NewStyle().
				Foreground(Warning)
)

// Status bar styles
var (
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(MutedLight).
			PaddingLeft(1).
			PaddingRight(1)

	KeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Secondary)

	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted)
)

// Table styles
var (
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Secondary).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(BorderColor).
				BorderBottom(true)

	TableSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Foreground).
				Background(Primary)

	TableCellStyle = lipgloss.NewStyle().
			Foreground(MutedLight)
)

// Calendar styles
var (
	CalendarDayStyle = lipgloss.NewStyle().
				Width(4).
				Align(lipgloss.Right)

	CalendarOutsideStyle = CalendarDayStyle.
				Foreground(Muted)

	CalendarTodayStyle = CalendarDayStyle.
				Bold(true).
				Foreground(Secondary)

	CalendarInRangeStyle = CalendarDayStyle.
				Foreground(Foreground).
				Background(BorderColor)

	CalendarCursorStyle = CalendarDayStyle.
				Bold(true).
				Foreground(Foreground).
				Background(Primary)
)

// Button styles
var (
	ButtonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(MutedLight)

	ButtonActiveStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Bold(true).
				Foreground(Foreground).
				Background(Primary)

	ButtonDangerStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Bold(true).
				Foreground(Foreground).
				Background(Error)
)
