package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"readtrack/internal/modules/session/domain"
	sessiondto "readtrack/internal/modules/session/dto"
	apperrors "readtrack/internal/platform/errors"
	"readtrack/internal/ui/components"
	"readtrack/internal/ui/theme"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type sessionPort interface {
	Start(ctx context.Context, userID int64, category string, sink sessiondto.DisplaySink, target string) (sessiondto.StartOutput, error)
	Stop(ctx context.Context, userID int64) (sessiondto.StopOutput, error)
	Note(ctx context.Context, userID int64, text, category string) (sessiondto.AddNoteOutput, error)
}

// ─── async messages ──────────────────────────────────────────────────────────

type startedMsg struct {
	out sessiondto.StartOutput
	err error
}

type stoppedMsg struct {
	out sessiondto.StopOutput
	err error
}

type noteSavedMsg struct {
	out sessiondto.AddNoteOutput
	err error
}

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Note key.Binding
	Stop key.Binding
	Help key.Binding
	Quit key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Note: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "add note")),
		Stop: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop timer")),
		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit: key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "stop and quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Note, k.Stop, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Note, k.Stop}, {k.Help, k.Quit}}
}

// ─── model ───────────────────────────────────────────────────────────────────

type phase int

const (
	phaseStarting phase = iota
	phaseRunning
	phaseStopping
	phaseStopped
	phaseFailed
)

// Model is the live timer screen. The session runs in the registry; this
// model only starts it, renders what the sink delivers and forwards keys.
type Model struct {
	session  sessionPort
	sink     sessiondto.DisplaySink
	userID   int64
	category string
	target   string

	started  sessiondto.StartOutput
	summary  sessiondto.StopOutput
	clock    string
	notes    int
	phase    phase
	quitting bool

	keys     keyMap
	help     help.Model
	showHelp bool
	note     components.NoteInput
	status   string
	width    int
	height   int
}

func NewModel(session sessionPort, sink sessiondto.DisplaySink, userID int64, category, target string) Model {
	return Model{
		session:  session,
		sink:     sink,
		userID:   userID,
		category: category,
		target:   target,
		clock:    domain.FormatClock(0),
		keys:     defaultKeys(),
		help:     help.New(),
		note:     components.NewNoteInput(),
		status:   "starting",
	}
}

func (m Model) Init() tea.Cmd {
	return m.startCmd()
}

// Summary is the stop result once the session ended through this screen.
func (m Model) Summary() (sessiondto.StopOutput, bool) {
	return m.summary, m.phase == phaseStopped && m.summary.Stopped
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The note editor intercepts all input while open.
	if m.note.Visible() {
		if _, ok := msg.(tea.KeyMsg); ok {
			var cmd tea.Cmd
			m.note, cmd = m.note.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.note.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width

	case DisplayMsg:
		if msg.Target == m.target && msg.Text != "" {
			m.clock = msg.Text
		}

	case startedMsg:
		if msg.err != nil {
			m.phase = phaseFailed
			m.status = startError(msg.err)
			return m, nil
		}
		m.phase = phaseRunning
		m.started = msg.out
		m.status = "reading"

	case stoppedMsg:
		m.phase = phaseStopped
		switch {
		case msg.err != nil:
			m.status = "stop failed: " + msg.err.Error()
		case !msg.out.Stopped:
			m.status = "no running session"
		case !msg.out.Persisted:
			m.summary = msg.out
			m.status = "stopped, but the session could not be saved"
		default:
			m.summary = msg.out
			m.status = fmt.Sprintf("saved %s with %d notes", domain.FormatShort(msg.out.DurationSeconds), msg.out.NoteCount+msg.out.MediaNoteCount)
		}
		if m.quitting {
			return m, tea.Quit
		}

	case noteSavedMsg:
		switch {
		case msg.err != nil:
			m.status = "note failed: " + msg.err.Error()
		case msg.out.Counted:
			m.notes++
			m.status = "note saved"
		default:
			m.status = "note saved outside the session"
		}

	case components.NoteSubmitMsg:
		return m, m.noteCmd(msg.Text)

	case components.NoteCancelMsg:
		m.status = "reading"

	case tea.KeyMsg:
		if m.showHelp {
			if key.Matches(msg, m.keys.Help) || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.phase == phaseRunning {
				m.quitting = true
				return m.stop()
			}
			if m.phase == phaseStopping {
				m.quitting = true
				return m, nil
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Stop):
			if m.phase == phaseRunning {
				return m.stop()
			}
		case key.Matches(msg, m.keys.Note):
			if m.phase == phaseRunning {
				cmd := m.note.Open()
				return m, cmd
			}
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
		}
	}
	return m, nil
}

func (m Model) stop() (tea.Model, tea.Cmd) {
	m.phase = phaseStopping
	m.status = "stopping"
	return m, m.stopCmd()
}

func startError(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrAlreadyRunning):
		return "a session is already running for this user"
	case errors.Is(err, apperrors.ErrShuttingDown):
		return "shutting down"
	default:
		return "start failed: " + err.Error()
	}
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := m.renderHeader()
	statusBar := m.renderStatusBar()

	var content string
	switch {
	case m.showHelp:
		content = m.help.View(m.keys)
	case m.note.Visible():
		content = m.note.View()
	default:
		content = m.renderTimer()
	}
	return theme.App.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", content, "", statusBar))
}

func (m Model) renderHeader() string {
	name := m.started.CategoryName
	if name == "" {
		name = m.category
	}
	if name == "" {
		name = "uncategorised"
	}
	return theme.Title.Render("readtrack") + "  " + theme.Hot.Render("● "+name)
}

func (m Model) renderTimer() string {
	style := theme.Clock
	if m.phase == phaseRunning {
		style = style.BorderForeground(theme.Lavender)
	}
	clock := style.Render(m.clock)
	counters := theme.Muted.Render(fmt.Sprintf("notes this session: %d", m.notes))
	return lipgloss.JoinVertical(lipgloss.Center, clock, counters)
}

func (m Model) renderStatusBar() string {
	status := m.status
	switch m.phase {
	case phaseFailed:
		status = theme.Bad.Render(status)
	case phaseStopped:
		status = theme.Good.Render(status)
	}
	right := theme.Muted.Render(strings.Join([]string{"n:note", "s:stop", "?:help", "q:quit"}, "  "))
	gap := m.width - lipgloss.Width(status) - lipgloss.Width(right) - 4
	if gap < 2 {
		gap = 2
	}
	return status + strings.Repeat(" ", gap) + right
}

// ─── async commands ──────────────────────────────────────────────────────────

func (m Model) startCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Start(context.Background(), m.userID, m.category, m.sink, m.target)
		return startedMsg{out: out, err: err}
	}
}

func (m Model) stopCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Stop(context.Background(), m.userID)
		return stoppedMsg{out: out, err: err}
	}
}

func (m Model) noteCmd(text string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Note(context.Background(), m.userID, text, m.started.CategoryName)
		return noteSavedMsg{out: out, err: err}
	}
}
