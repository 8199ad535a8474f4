// Package tui is the terminal surface for tutor sessions: a full-screen
// bubbletea chat and a plain line-oriented REPL for non-interactive input.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/papercomputeco/tutor/pkg/completion"
	"github.com/papercomputeco/tutor/pkg/llm"
	"github.com/papercomputeco/tutor/pkg/session"
)

const sidebarWidth = 34

// Options configures the terminal UI.
type Options struct {
	// Style is a glamour standard style ("dark", "light", "notty"). Empty
	// picks dark or light from the terminal background.
	Style string

	// APIKeyEnv is named in the hint shown when a completion fails.
	APIKeyEnv string
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("78"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	hintStyle      = lipgloss.NewStyle().Faint(true)
	sidebarStyle   = lipgloss.NewStyle().
			Width(sidebarWidth).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), false, false, false, true)
)

// replyMsg carries the outcome of one Submit back into the update loop.
type replyMsg struct {
	reply string
	err   error
}

// Model is the bubbletea model of a chat session.
type Model struct {
	ctx     context.Context
	session *session.Session
	opts    Options

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	width   int
	height  int
	waiting bool
	pending string
	err     error

	// What the scrollback was last built from.
	drawn        bool
	drawnHead    string
	drawnPending string
}

// New creates a Model for sess. Completions run with ctx.
func New(ctx context.Context, sess *session.Session, opts Options) Model {
	if opts.Style == "" {
		opts.Style = "light"
		if termenv.HasDarkBackground() {
			opts.Style = "dark"
		}
	}
	if opts.APIKeyEnv == "" {
		opts.APIKeyEnv = "CEREBRAS_API_KEY"
	}

	input := textinput.New()
	input.Placeholder = "Type your message here..."
	input.Prompt = "> "
	input.Focus()

	return Model{
		ctx:      ctx,
		session:  sess,
		opts:     opts,
		input:    input,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		viewport: viewport.New(80, 20),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refresh()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "ctrl+r":
			if !m.waiting {
				m.session.Reset()
				m.err = nil
				m.refresh()
			}
			return m, nil

		case "enter":
			text := m.input.Value()
			if strings.TrimSpace(text) == "" || m.waiting {
				return m, nil
			}
			m.input.Reset()
			m.waiting = true
			m.pending = text
			m.err = nil
			m.refresh()
			return m, tea.Batch(m.spinner.Tick, m.submit(text))
		}

	case replyMsg:
		m.waiting = false
		m.pending = ""
		m.err = msg.err
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	var main strings.Builder
	main.WriteString(titleStyle.Render(m.title()))
	main.WriteString("\n")
	main.WriteString(m.viewport.View())
	main.WriteString("\n")
	main.WriteString(m.status())
	main.WriteString("\n")
	main.WriteString(m.input.View())

	if m.session.Variant() != session.VariantTutor {
		return main.String()
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, main.String(), m.sidebar())
}

// submit runs the exchange off the update loop.
func (m Model) submit(text string) tea.Cmd {
	ctx, sess := m.ctx, m.session
	return func() tea.Msg {
		reply, err := sess.Submit(ctx, text)
		return replyMsg{reply: reply, err: err}
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height

	chatWidth := width
	if m.session.Variant() == session.VariantTutor {
		chatWidth -= sidebarWidth + 1
	}
	chatWidth = max(chatWidth, 20)

	m.viewport.Width = chatWidth
	m.viewport.Height = max(height-4, 3)
	m.input.Width = chatWidth - 4
	m.renderer = nil
	m.drawn = false
}

// refresh re-renders the scrollback and keeps it pinned to the latest turn.
// Nothing is rebuilt while the history head and the pending text are the
// ones last drawn, so the user's scroll position survives.
func (m *Model) refresh() {
	head := m.session.Head()
	if m.drawn && head == m.drawnHead && m.pending == m.drawnPending {
		return
	}
	m.drawn, m.drawnHead, m.drawnPending = true, head, m.pending

	var b strings.Builder

	for _, turn := range m.session.Turns() {
		b.WriteString(m.renderTurn(turn))
		b.WriteString("\n")
	}
	if m.pending != "" && !m.hasPendingTurn() {
		b.WriteString(m.renderTurn(llm.UserTurn(m.pending)))
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// hasPendingTurn reports whether Submit already recorded the pending text.
func (m *Model) hasPendingTurn() bool {
	turns := m.session.Turns()
	if len(turns) == 0 {
		return false
	}
	last := turns[len(turns)-1]
	return last.Role == llm.RoleUser && last.Content == m.pending
}

func (m *Model) renderTurn(turn llm.Turn) string {
	switch turn.Role {
	case llm.RoleAssistant:
		return assistantStyle.Render("Tutor") + "\n" + m.markdown(turn.Content)
	default:
		return userStyle.Render("You") + "\n" + turn.Content + "\n"
	}
}

func (m *Model) markdown(content string) string {
	if m.renderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.opts.Style),
			glamour.WithWordWrap(max(m.viewport.Width-4, 20)),
		)
		if err != nil {
			return content + "\n"
		}
		m.renderer = r
	}

	out, err := m.renderer.Render(content)
	if err != nil {
		return content + "\n"
	}
	return out
}

func (m Model) title() string {
	if m.session.Variant() == session.VariantTutor {
		return "Active Learning Tutor"
	}
	return "Chat"
}

func (m Model) status() string {
	switch {
	case m.waiting:
		return m.spinner.View() + " thinking..."
	case m.err != nil:
		line := errorStyle.Render("An error occurred: " + m.err.Error())
		var completionErr *completion.CompletionError
		if errors.As(m.err, &completionErr) {
			line += " " + hintStyle.Render("Please make sure your "+m.opts.APIKeyEnv+" is set in the environment variables.")
		}
		return ansi.Truncate(line, max(m.width, 40), "…")
	default:
		return hintStyle.Render("enter: send  ctrl+r: reset  esc: quit")
	}
}

func (m Model) sidebar() string {
	state, err := json.MarshalIndent(m.session.LearningState(), "", "  ")
	if err != nil {
		state = []byte(err.Error())
	}

	content := titleStyle.Render("Current Learning State") + "\n" + string(state)
	return sidebarStyle.Height(max(m.height-1, 1)).Render(content)
}
