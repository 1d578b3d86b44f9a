package render

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	successColor = lipgloss.Color("#10B981") // Green
	warningColor = lipgloss.Color("#F59E0B") // Amber
	errorColor   = lipgloss.Color("#EF4444") // Red
	mutedColor   = lipgloss.Color("#6B7280") // Gray
)

// styles holds the table styles bound to one output's color profile.
type styles struct {
	label   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	plain   bool
}

func newStyles(r *lipgloss.Renderer, noColor bool) styles {
	if noColor {
		return styles{plain: true}
	}
	return styles{
		label:   r.NewStyle().Foreground(mutedColor).Bold(true),
		success: r.NewStyle().Foreground(successColor),
		warning: r.NewStyle().Foreground(warningColor),
		failure: r.NewStyle().Foreground(errorColor),
	}
}

func (s styles) render(style lipgloss.Style, text string) string {
	if s.plain {
		return text
	}
	return style.Render(text)
}
