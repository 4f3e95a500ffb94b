// Package tui is the terminal front end of the note reader.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/book-expert/note-reader/internal/analysis"
	"github.com/book-expert/note-reader/internal/reader"
)

// ReaderPort is the TUI-facing subset of reader.Service.
type ReaderPort interface {
	Read(ctx context.Context, doc reader.Document) (string, error)
	Summarize(ctx context.Context, doc reader.Document) string
	Ask(ctx context.Context, doc reader.Document, question string) string
	Stop() error
	SpeechErr() error
}

// Model is the Bubble Tea model for one open document.
type Model struct {
	ctx      context.Context
	service  ReaderPort
	doc      reader.Document
	input    textinput.Model
	viewport viewport.Model
	title    string
	heading  string
	body     string
	status   string
	ready    bool
}

// New creates a new TUI model showing the clean text of doc.
func New(ctx context.Context, service ReaderPort, doc reader.Document, title string) Model {
	ti := textinput.New()
	ti.Prompt = "? "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	m := Model{
		ctx:      ctx,
		service:  service,
		doc:      doc,
		input:    ti,
		viewport: viewport.New(0, 0),
		title:    title,
		status:   "Ctrl+R read · Ctrl+S summary · Ctrl+X stop · Ctrl+O full text · Ctrl+C quit",
	}
	m.showFullText()

	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, bodyFrame := bodyBoxStyle.GetFrameSize()
		_, inputFrame := inputBoxStyle.GetFrameSize()
		// title + heading + status + spacer
		reserved := 4 + inputFrame + 1
		m.viewport.Width = max(20, msg.Width-4)
		m.viewport.Height = max(3, msg.Height-reserved-bodyFrame)
		m.viewport.SetContent(m.wrappedBody())

		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			_ = m.service.Stop()

			return m, tea.Quit
		case tea.KeyEnter:
			m.ask()

			return m, nil
		case tea.KeyCtrlS:
			m.summarize()

			return m, nil
		case tea.KeyCtrlR:
			m.read()

			return m, nil
		case tea.KeyCtrlX:
			m.stop()

			return m, nil
		case tea.KeyCtrlO:
			m.showFullText()
			m.status = "Showing full text."

			return m, nil
		case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)

			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := titleStyle.Render(m.title)
	heading := headingStyle.Render(m.heading)
	body := bodyBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)

	return header + "\n" + heading + "\n" + body + "\n" + input + "\n" + status
}

// Heading is the label of the text currently shown.
func (m Model) Heading() string { return m.heading }

// Body is the text currently shown.
func (m Model) Body() string { return m.body }

// Status is the status line.
func (m Model) Status() string { return m.status }

func (m *Model) ask() {
	question := strings.TrimSpace(m.input.Value())
	answer := m.service.Ask(m.ctx, m.doc, question)

	m.setBody("Answer", answer)

	if analysis.IsSentinel(answer) {
		m.status = answer
	} else {
		m.status = fmt.Sprintf("Answered %q", question)
		m.input.SetValue("")
	}

	m.reportSpeech()
}

func (m *Model) summarize() {
	m.setBody("Summary", m.service.Summarize(m.ctx, m.doc))
	m.status = "Summary ready."
	m.reportSpeech()
}

func (m *Model) read() {
	if m.doc.Blank() {
		m.status = "Nothing to read."

		return
	}

	_, err := m.service.Read(m.ctx, m.doc)
	if err != nil {
		m.status = "Speech error: " + err.Error()

		return
	}

	m.status = "Reading aloud..."
}

func (m *Model) stop() {
	err := m.service.Stop()
	if err != nil {
		m.status = "Speech error: " + err.Error()

		return
	}

	m.status = "Stopped."
}

func (m *Model) reportSpeech() {
	if err := m.service.SpeechErr(); err != nil {
		m.status += " (speech error: " + err.Error() + ")"
	}
}

func (m *Model) showFullText() {
	text := m.doc.Clean
	if text == "" {
		text = "No text was recognized."
	}

	m.setBody("Full text", text)
}

func (m *Model) setBody(heading, body string) {
	m.heading = heading
	m.body = body
	m.viewport.SetContent(m.wrappedBody())
	m.viewport.GotoTop()
}

func (m Model) wrappedBody() string {
	if m.viewport.Width <= 0 {
		return m.body
	}

	return lipgloss.NewStyle().Width(m.viewport.Width).Render(m.body)
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	headingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	bodyBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
