package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"readtrack/internal/ui/theme"
)

// NoteSubmitMsg is emitted when the user confirms a non-empty note.
type NoteSubmitMsg struct{ Text string }

// NoteCancelMsg is emitted when the user presses esc.
type NoteCancelMsg struct{}

var (
	noteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

// NoteInput is a one-line note editor backed by bubbles/textinput.
type NoteInput struct {
	input   textinput.Model
	visible bool
	width   int
}

func NewNoteInput() NoteInput {
	ti := textinput.New()
	ti.Placeholder = "what did you just read?"
	ti.CharLimit = 1024
	return NoteInput{input: ti}
}

func (n NoteInput) Visible() bool { return n.visible }

// Open shows the editor, clears it and returns the focus command.
func (n *NoteInput) Open() tea.Cmd {
	n.visible = true
	n.input.SetValue("")
	return n.input.Focus()
}

func (n *NoteInput) SetWidth(w int) { n.width = w }

func (n NoteInput) Update(msg tea.Msg) (NoteInput, tea.Cmd) {
	if !n.visible {
		return n, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			n.visible = false
			n.input.Blur()
			return n, func() tea.Msg { return NoteCancelMsg{} }
		case "enter":
			text := strings.TrimSpace(n.input.Value())
			n.visible = false
			n.input.Blur()
			if text == "" {
				return n, func() tea.Msg { return NoteCancelMsg{} }
			}
			return n, func() tea.Msg { return NoteSubmitMsg{Text: text} }
		}
	}
	var cmd tea.Cmd
	n.input, cmd = n.input.Update(msg)
	return n, cmd
}

func (n NoteInput) View() string {
	if !n.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("New note") + "\n")
	sb.WriteString("> " + n.input.View() + "\n")
	sb.WriteString(hintStyle.Render("enter save  esc cancel"))

	w := n.width
	if w < 20 {
		w = 64
	}
	return noteStyle.Width(w - 2).Render(sb.String())
}
