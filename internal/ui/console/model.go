// Package console is a terminal chat client for the assistant. It feeds
// typed lines to the dialogue router as if they came from the messaging
// platform, so every flow can be tried without a LINE channel.
//
// Plain lines are sent as messages. "/n" presses the n-th option of the
// latest reply and "/follow" replays the greeting a new follower sees.
package console

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mood-assistant/internal/dialogue"
	"github.com/nhle/mood-assistant/internal/keys"
	"github.com/nhle/mood-assistant/internal/theme"
	"github.com/nhle/mood-assistant/internal/ui"
)

const title = "🧠 情緒小助手"

var errNoSuchOption = errors.New("no such option")

// Handler produces the reply for one event.
type Handler interface {
	Handle(ctx context.Context, ev dialogue.Event) []dialogue.Block
}

// replyMsg carries the router's answer back into the update loop.
type replyMsg struct {
	blocks []dialogue.Block
}

// Model is the root Bubble Tea model of the console.
type Model struct {
	handler    Handler
	userID     string
	transcript *Transcript

	layout   ui.Layout
	keys     *keys.KeyMap
	help     help.Model
	showHelp bool
	input    textarea.Model
	viewport viewport.Model
	waiting  bool
}

// New creates a console talking to h as userID.
func New(h Handler, userID string, k *keys.KeyMap) Model {
	if k == nil {
		k = keys.DefaultKeyMap()
	}

	layout := ui.NewLayout(80, 24)

	ta := textarea.New()
	ta.Placeholder = "輸入訊息，或 /1 選擇選項..."
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.CharLimit = 500
	ta.SetWidth(layout.InnerWidth())
	ta.SetHeight(layout.InputHeight)
	ta.Focus()

	vp := viewport.New(layout.InnerWidth(), layout.TranscriptHeight())

	return Model{
		handler:    h,
		userID:     userID,
		transcript: NewTranscript(0),
		layout:     layout,
		keys:       k,
		help:       help.New(),
		input:      ta,
		viewport:   vp,
	}
}

// Transcript exposes the conversation so far.
func (m Model) Transcript() *Transcript {
	return m.transcript
}

// Init greets the user the way a new follower is greeted.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.send(dialogue.Follow{UserID: m.userID}))
}

// Update handles messages for the console.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case replyMsg:
		m.waiting = false
		for _, b := range msg.blocks {
			text, opts := Describe(b)
			if text == "" {
				continue
			}
			m.transcript.Add(Entry{Speaker: SpeakerAssistant, Content: text, Options: opts})
		}
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.transcript.Reset()
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		// Only paging keys reach the viewport; letters belong to the input.
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.Send):
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.waiting {
		return m, nil
	}
	m.input.Reset()

	ev, shown, err := resolveInput(m.userID, text, m.transcript.LastOptions())
	if err != nil {
		m.transcript.Add(Entry{Speaker: SpeakerAssistant, Content: theme.HelpStyle.Render(err.Error())})
		m.refreshViewport()
		return m, nil
	}

	m.transcript.Add(Entry{Speaker: SpeakerUser, Content: shown})
	m.waiting = true
	m.refreshViewport()
	return m, m.send(ev)
}

// resolveInput turns a typed line into an event plus the text to echo.
func resolveInput(userID, text string, opts []dialogue.Option) (dialogue.Event, string, error) {
	if text == "/follow" {
		return dialogue.Follow{UserID: userID}, text, nil
	}

	if n, ok := strings.CutPrefix(text, "/"); ok {
		if i, err := strconv.Atoi(n); err == nil {
			if i < 1 || i > len(opts) {
				return nil, "", fmt.Errorf("%w: /%d (目前有 %d 個選項)", errNoSuchOption, i, len(opts))
			}
			o := opts[i-1]
			return dialogue.Postback{UserID: userID, Data: o.Data}, o.Label, nil
		}
	}

	return dialogue.Message{UserID: userID, Text: text}, text, nil
}

func (m Model) send(ev dialogue.Event) tea.Cmd {
	h := m.handler
	return func() tea.Msg {
		return replyMsg{blocks: h.Handle(context.Background(), ev)}
	}
}

func (m *Model) setSize(width, height int) {
	m.layout = ui.NewLayout(width, height)
	m.help.Width = width
	m.input.SetWidth(m.layout.InnerWidth())
	m.viewport.Width = m.layout.InnerWidth()
	m.viewport.Height = m.layout.TranscriptHeight()
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	entries := m.transcript.Entries()
	if len(entries) == 0 {
		return theme.HelpStyle.Render("輸入「你好」開始對話。")
	}

	var sections []string
	for _, e := range entries {
		label := theme.SpeakerStyle(false).Render("小助手:")
		if e.Speaker == SpeakerUser {
			label = theme.SpeakerStyle(true).Render("你:")
		}
		sections = append(sections, label, e.Content, "")
	}
	if m.waiting {
		sections = append(sections, theme.HelpStyle.Render("..."))
	}
	return strings.Join(sections, "\n")
}

// View renders the console.
func (m Model) View() string {
	header := m.layout.RenderHeader(title, m.userID)

	panel := theme.PanelStyle.
		Width(m.layout.Width - 2).
		Render(m.viewport.View())

	m.help.ShowAll = m.showHelp
	status := m.layout.RenderStatusBar(m.help.View(m.keys))

	return m.layout.RenderWithFrame(
		header,
		panel,
		lipgloss.NewStyle().PaddingLeft(1).Render(m.input.View()),
		status,
	)
}

// Run starts the console and blocks until the user quits.
func Run(h Handler, userID string) error {
	p := tea.NewProgram(New(h, userID, nil), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running console: %w", err)
	}
	return nil
}
