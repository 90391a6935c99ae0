// Package tui implements the interactive chat interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/veridoc-labs/veridoc/internal/core/domain"
	"github.com/veridoc-labs/veridoc/internal/core/ports/driving"
)

var (
	chatBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	sourceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	emptyNoteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// exchange is one question/answer pair in the transcript.
type exchange struct {
	question string
	answer   *domain.Answer
	err      error
}

// answerMsg carries a completed Ask call back into the update loop.
type answerMsg struct {
	question string
	answer   *domain.Answer
	err      error
}

// Model is the Bubble Tea model for the chat session.
type Model struct {
	ask      driving.AskService
	ctx      context.Context
	input    textinput.Model
	viewport viewport.Model
	history  []exchange
	status   string
	waiting  bool
	ready    bool
}

// New creates a chat model over the given ask service.
func New(ask driving.AskService) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		ask:      ask,
		ctx:      context.Background(),
		input:    ti,
		viewport: viewport.New(0, 0),
		status:   "Ready. Esc or Ctrl+C to quit.",
	}
}

// WithContext sets the context used for Ask calls.
func (m Model) WithContext(ctx context.Context) Model {
	m.ctx = ctx
	return m
}

// Init starts the text input cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		vh := msg.Height - ih - ch - 4 // header, input line, status, spacer
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width-2)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			question := strings.TrimSpace(m.input.Value())
			if question == "" || m.waiting {
				return m, nil
			}
			m.input.SetValue("")
			m.waiting = true
			m.status = "Thinking..."
			return m, m.askCmd(question)
		}

	case answerMsg:
		m.waiting = false
		m.status = "Ready. Esc or Ctrl+C to quit."
		m.history = append(m.history, exchange{
			question: msg.question,
			answer:   msg.answer,
			err:      msg.err,
		})
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := lipgloss.NewStyle().Bold(true).Render("Veridoc Chat")
	transcript := chatBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)

	return header + "\n" + transcript + "\n" + input + "\n" + status
}

// askCmd runs the question off the update loop.
func (m Model) askCmd(question string) tea.Cmd {
	ask := m.ask
	ctx := m.ctx
	return func() tea.Msg {
		answer, err := ask.Ask(ctx, question, domain.RetrieveOptions{})
		return answerMsg{question: question, answer: answer, err: err}
	}
}

// renderHistory builds the transcript text.
func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return "Ask a question about your documents."
	}

	var b strings.Builder
	for i, ex := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(questionStyle.Render("You: " + ex.question))
		b.WriteString("\n\n")

		if ex.err != nil {
			b.WriteString("Error: " + ex.err.Error())
			continue
		}

		b.WriteString(ex.answer.Text)

		if len(ex.answer.Citations) > 0 {
			b.WriteString("\n")
			for j, c := range ex.answer.Citations {
				b.WriteString(sourceStyle.Render(fmt.Sprintf("\n  [%d] %s (relevance: %.2f)", j+1, c.DocumentTitle, c.Relevance)))
			}
		}

		if ex.answer.EmptyContext != nil {
			b.WriteString("\n\n")
			b.WriteString(emptyNoteStyle.Render(emptyContextNote(ex.answer.EmptyContext.Type)))
		}
	}
	return b.String()
}

func emptyContextNote(t domain.EmptyContextType) string {
	switch t {
	case domain.EmptyNoDocuments:
		return "(the library is empty - upload documents first)"
	case domain.EmptyNoRecentDocuments:
		return "(no documents in the requested time window)"
	default:
		return "(no relevant passages found)"
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
