package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	interview "github.com/koscakluka/ema-interview/core"
	"github.com/koscakluka/ema-interview/core/interviews"
	"github.com/muesli/reflow/wordwrap"
)

const (
	keySubmit     = "enter"
	keyMute       = "alt+m"
	keyCamera     = "alt+c"
	keyMicrophone = "alt+i"
	keyQuit       = "ctrl+c"

	refreshInterval   = 200 * time.Millisecond
	maxScreenWidth    = 100
	visibleTurnsCount = 6
)

// sessionController is the part of [interview.Session] the screen drives.
type sessionController interface {
	SubmitManualResponse(text string)
	ToggleMute()
	ToggleCamera()
	ToggleMicrophone()
	Teardown()
	Snapshot() interview.Snapshot
	Done() <-chan struct{}
}

type refreshMsg struct{}

type sessionDoneMsg struct{}

type model struct {
	session  sessionController
	snapshot interview.Snapshot
	input    textinput.Model

	width    int
	finished bool
}

func newModel(session sessionController) model {
	input := textinput.New()
	input.Placeholder = "Type your answer, or press enter to submit what you said"
	input.CharLimit = 2000
	input.Width = maxScreenWidth - 4
	input.Focus()

	return model{
		session:  session,
		snapshot: session.Snapshot(),
		input:    input,
		width:    maxScreenWidth,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, refresh(), waitForDone(m.session.Done()))
}

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

func waitForDone(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return sessionDoneMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = min(msg.Width, maxScreenWidth)
		m.input.Width = max(m.width-4, 10)
		return m, nil

	case refreshMsg:
		m.snapshot = m.session.Snapshot()
		return m, refresh()

	case sessionDoneMsg:
		m.snapshot = m.session.Snapshot()
		m.finished = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case keyQuit:
			m.session.Teardown()
			return m, nil
		case keySubmit:
			if m.snapshot.State != interview.StateAwaitingResponse {
				return m, nil
			}
			m.session.SubmitManualResponse(m.input.Value())
			m.input.Reset()
			return m, nil
		case keyMute:
			m.session.ToggleMute()
			return m, nil
		case keyCamera:
			m.session.ToggleCamera()
			return m, nil
		case keyMicrophone:
			m.session.ToggleMicrophone()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	questionStyle = lipgloss.NewStyle().Bold(true)
	codeStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Foreground(lipgloss.Color("#A3E635"))
	engineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA"))
	youStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9FAFB"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
)

func (m model) View() string {
	if m.finished {
		return ""
	}

	snapshot := m.snapshot
	var b strings.Builder

	b.WriteString(titleStyle.Render("Interview"))
	if snapshot.QuestionCount > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  question %d of %d", min(snapshot.QuestionIndex+1, snapshot.QuestionCount), snapshot.QuestionCount)))
	}
	b.WriteString(dimStyle.Render("  " + snapshot.State.String()))
	b.WriteString("\n")
	b.WriteString(statusLine(snapshot))
	b.WriteString("\n\n")

	if snapshot.IsDegraded {
		b.WriteString(warnStyle.Render("Speech capture is unavailable. Type your answers and press enter."))
		b.WriteString("\n\n")
	}

	switch {
	case snapshot.IsTyping:
		b.WriteString(dimStyle.Render("The interviewer is typing..."))
		b.WriteString("\n\n")
	case snapshot.CurrentQuestion.Text != "":
		b.WriteString(questionStyle.Render(wordwrap.String(snapshot.CurrentQuestion.Text, m.width)))
		b.WriteString("\n")
		if snapshot.CurrentQuestion.CodeSnippet != "" {
			b.WriteString(codeStyle.Render(snapshot.CurrentQuestion.CodeSnippet))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	for _, turn := range lastTurns(snapshot.Transcript, visibleTurnsCount) {
		b.WriteString(renderTurn(turn, m.width))
		b.WriteString("\n")
	}

	if snapshot.PendingTranscript != "" {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(wordwrap.String("You: "+snapshot.PendingTranscript, m.width)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("enter submit · alt+m mute · alt+c camera · alt+i microphone · ctrl+c quit"))
	return b.String()
}

func statusLine(snapshot interview.Snapshot) string {
	flags := []string{
		indicator("listening", snapshot.IsListening),
		indicator("speaking", snapshot.IsSpeaking),
		indicator("muted", snapshot.IsMuted),
		indicator("mic", snapshot.IsMicrophoneOn),
		indicator("camera", snapshot.IsCameraOn),
	}
	return dimStyle.Render(strings.Join(flags, "  "))
}

func indicator(label string, on bool) string {
	if on {
		return "● " + label
	}
	return "○ " + label
}

func renderTurn(turn interviews.Turn, width int) string {
	if turn.Speaker == interviews.SpeakerParticipant {
		return youStyle.Render(wordwrap.String("You: "+turn.Text, width))
	}
	return engineStyle.Render(wordwrap.String("Interviewer: "+turn.Text, width))
}

func lastTurns(turns []interviews.Turn, count int) []interviews.Turn {
	if len(turns) <= count {
		return turns
	}
	return turns[len(turns)-count:]
}
