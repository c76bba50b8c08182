package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorPurple = lipgloss.AdaptiveColor{Dark: "#9D8DF1", Light: "#6A5ACD"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the application title bar.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorPurple).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps the conversation area.
var PanelStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// CardStyle frames a rich reply inside the conversation.
var CardStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorPurple)

// CardTitleStyle is the heading line of a card.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorPurple)

// OptionStyle renders a numbered choice.
var OptionStyle = lipgloss.NewStyle().
	Foreground(ColorBlue)

// HelpStyle is used for hints and placeholder text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// SpeakerStyle returns the label style for a transcript speaker.
func SpeakerStyle(user bool) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	if user {
		return base.Foreground(ColorBlue)
	}
	return base.Foreground(ColorGreen)
}

// TaskStatusStyle returns a color-coded style for a homework task status.
func TaskStatusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle()

	switch status {
	case "pending":
		return base.Foreground(ColorYellow)
	case "completed":
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// ConfidenceStyle highlights a recognition confidence line; strong matches
// are green, guesses are red.
func ConfidenceStyle(strong bool) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	if strong {
		return base.Foreground(ColorGreen)
	}
	return base.Foreground(ColorRed)
}
