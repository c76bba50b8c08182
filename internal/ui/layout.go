package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mood-assistant/internal/theme"
)

// Layout splits the terminal into header, transcript, input box and
// status bar.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	InputHeight     int
	StatusBarHeight int
}

// NewLayout creates a Layout for the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		InputHeight:     3,
		StatusBarHeight: 1,
	}
}

// TranscriptHeight returns the rows left for the conversation panel,
// never less than three.
func (l Layout) TranscriptHeight() int {
	// Two rows for the panel border.
	h := l.Height - l.HeaderHeight - l.InputHeight - l.StatusBarHeight - 2
	if h < 3 {
		h = 3
	}
	return h
}

// InnerWidth returns the usable width inside a bordered panel.
func (l Layout) InnerWidth() int {
	w := l.Width - 4
	if w < 10 {
		w = 10
	}
	return w
}

// RenderHeader renders the title bar with right-aligned status text.
func (l Layout) RenderHeader(title, status string) string {
	return fill(theme.HeaderStyle, l.Width, title, status)
}

// RenderStatusBar renders the bottom bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	return fill(theme.StatusBarStyle, l.Width, hints, "")
}

// RenderWithFrame stacks the header, body and status bar.
func (l Layout) RenderWithFrame(header string, body ...string) string {
	parts := append([]string{header}, body...)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// fill renders left and right in style, padding the gap between them so
// the bar spans width.
func fill(style lipgloss.Style, width int, left, right string) string {
	l := style.Render(left)
	r := ""
	if right != "" {
		r = style.Render(right)
	}

	gap := width - lipgloss.Width(l) - lipgloss.Width(r)
	if gap < 0 {
		gap = 0
	}
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, l, filler, r)
}
