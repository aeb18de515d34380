package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TableStatus is the state of a model's tables during init.
type TableStatus string

const (
	StatusPending TableStatus = "pending"
	StatusRunning TableStatus = "recreating"
	StatusCreated TableStatus = "created"
	StatusFailed  TableStatus = "failed"
)

var (
	colorAccent = lipgloss.Color("#00758F")
	colorOrange = lipgloss.Color("#F29111")
	colorGreen  = lipgloss.Color("#4CAF50")
	colorRed    = lipgloss.Color("#E53935")
	colorDim    = lipgloss.Color("#78909C")
	colorLight  = lipgloss.Color("#ECEFF1")
	colorPanel  = lipgloss.Color("#263238")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)

	successStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	dangerStyle  = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorAccent)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorDim)

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorOrange).
				Bold(true).
				PaddingLeft(2)

	unselectedItemStyle = lipgloss.NewStyle().
				Foreground(colorLight).
				PaddingLeft(4)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)

	// The confirm dialog defaults to "No"; the destructive choice is red.
	activeButtonStyle = lipgloss.NewStyle().
				Foreground(colorLight).
				Background(colorRed).
				Padding(0, 3).
				Bold(true)

	inactiveButtonStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Background(colorPanel).
				Padding(0, 3)

	helpStyle    = lipgloss.NewStyle().Foreground(colorDim).MarginTop(1)
	helpKeyStyle = lipgloss.NewStyle().Foreground(colorOrange)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorRed).
			Padding(1, 2)

	// DDL preview
	codeStyle = lipgloss.NewStyle().
			Foreground(colorOrange).
			Background(colorPanel).
			Padding(1, 2).
			MarginTop(1)

	statusGlyphs = map[TableStatus]lipgloss.Style{
		StatusPending: lipgloss.NewStyle().Foreground(colorDim).SetString("○"),
		StatusRunning: lipgloss.NewStyle().Foreground(colorOrange).SetString("◉"),
		StatusCreated: lipgloss.NewStyle().Foreground(colorGreen).SetString("✓"),
		StatusFailed:  lipgloss.NewStyle().Foreground(colorRed).SetString("✗"),
	}
)

// FormatStatus renders the glyph and label of a table status.
func FormatStatus(status TableStatus) string {
	glyph, ok := statusGlyphs[status]
	if !ok {
		return mutedStyle.Render(string(status))
	}
	label := mutedStyle
	switch status {
	case StatusCreated:
		label = successStyle
	case StatusFailed:
		label = dangerStyle
	case StatusRunning:
		label = infoStyle
	}
	return glyph.Render() + " " + label.Render(string(status))
}

// FormatProgressBar renders a bar of width cells followed by "current/total".
func FormatProgressBar(current, total, width int) string {
	filled := 0
	if total > 0 {
		filled = min(width, width*current/total)
	}
	return infoStyle.Render(strings.Repeat("━", filled)) +
		mutedStyle.Render(strings.Repeat("━", width-filled)) +
		" " + helpKeyStyle.Render(fmt.Sprintf("%d/%d", current, total))
}

// FormatKey formats a help key
func FormatKey(key, description string) string {
	return helpKeyStyle.Render(key) + " " + mutedStyle.Render(description)
}
