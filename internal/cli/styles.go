package cli

import "github.com/charmbracelet/lipgloss"

// Shared palette for terminal output.
const (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorMuted     = lipgloss.Color("#6B7280")
	colorSuccess   = lipgloss.Color("#10B981")
	colorError     = lipgloss.Color("#EF4444")
	colorWarning   = lipgloss.Color("#F59E0B")
	colorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle is for headers.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	// SubtitleStyle is for secondary text.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// SuccessStyle is for completion messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	// ErrorStyle is for the error prefix.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorError)

	// WarningStyle is for warnings.
	WarningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	// CmdStyle is for paths and commands the user may copy.
	CmdStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)
)
