package main

import (
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	interview "github.com/koscakluka/ema-interview/core"
	"github.com/koscakluka/ema-interview/core/interviews"
)

type sessionControllerStub struct {
	mu         sync.Mutex
	snapshot   interview.Snapshot
	submitted  []string
	mutes      int
	cameras    int
	microphone int
	teardowns  int
	done       chan struct{}
}

func newSessionControllerStub(snapshot interview.Snapshot) *sessionControllerStub {
	return &sessionControllerStub{snapshot: snapshot, done: make(chan struct{})}
}

func (s *sessionControllerStub) SubmitManualResponse(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted = append(s.submitted, text)
}

func (s *sessionControllerStub) ToggleMute()       { s.mu.Lock(); s.mutes++; s.mu.Unlock() }
func (s *sessionControllerStub) ToggleCamera()     { s.mu.Lock(); s.cameras++; s.mu.Unlock() }
func (s *sessionControllerStub) ToggleMicrophone() { s.mu.Lock(); s.microphone++; s.mu.Unlock() }
func (s *sessionControllerStub) Teardown()         { s.mu.Lock(); s.teardowns++; s.mu.Unlock() }
func (s *sessionControllerStub) Done() <-chan struct{} {
	return s.done
}

func (s *sessionControllerStub) Snapshot() interview.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

func typeText(m model, text string) model {
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return updated.(model)
}

func press(m model, key tea.KeyType) (model, tea.Cmd) {
	updated, cmd := m.Update(tea.KeyMsg{Type: key})
	return updated.(model), cmd
}

func TestModelSubmitsTypedAnswer(t *testing.T) {
	stub := newSessionControllerStub(interview.Snapshot{State: interview.StateAwaitingResponse})
	m := newModel(stub)

	m = typeText(m, "I like Go")
	m, _ = press(m, tea.KeyEnter)

	if len(stub.submitted) != 1 || stub.submitted[0] != "I like Go" {
		t.Fatalf("expected typed answer to be submitted, got %v", stub.submitted)
	}
	if m.input.Value() != "" {
		t.Fatalf("expected input to be cleared, got %q", m.input.Value())
	}
}

func TestModelIgnoresSubmitOutsideAwaitingResponse(t *testing.T) {
	stub := newSessionControllerStub(interview.Snapshot{State: interview.StateGreeting})
	m := newModel(stub)

	m = typeText(m, "too early")
	m, _ = press(m, tea.KeyEnter)

	if len(stub.submitted) != 0 {
		t.Fatalf("expected no submission, got %v", stub.submitted)
	}
	if m.input.Value() != "too early" {
		t.Fatalf("expected input to be kept, got %q", m.input.Value())
	}
}

func TestModelToggles(t *testing.T) {
	stub := newSessionControllerStub(interview.Snapshot{State: interview.StateAwaitingResponse})
	m := newModel(stub)

	for _, key := range []string{"m", "c", "i"} {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key), Alt: true})
		m = updated.(model)
	}

	if stub.mutes != 1 || stub.cameras != 1 || stub.microphone != 1 {
		t.Fatalf("expected one toggle each, got mute=%d camera=%d microphone=%d", stub.mutes, stub.cameras, stub.microphone)
	}
	if m.input.Value() != "" {
		t.Fatalf("expected toggles not to reach the input, got %q", m.input.Value())
	}
}

func TestModelQuitTearsDown(t *testing.T) {
	stub := newSessionControllerStub(interview.Snapshot{})
	m := newModel(stub)

	_, _ = press(m, tea.KeyCtrlC)
	if stub.teardowns != 1 {
		t.Fatalf("expected teardown, got %d", stub.teardowns)
	}
}

func TestModelQuitsWhenSessionEnds(t *testing.T) {
	stub := newSessionControllerStub(interview.Snapshot{})
	m := newModel(stub)

	updated, cmd := m.Update(sessionDoneMsg{})
	if !updated.(model).finished {
		t.Fatalf("expected model to be finished")
	}
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
}

func TestModelViewShowsQuestionAndTranscript(t *testing.T) {
	stub := newSessionControllerStub(interview.Snapshot{
		State:         interview.StateAwaitingResponse,
		QuestionIndex: 1,
		QuestionCount: 3,
		CurrentQuestion: interviews.Question{
			ID:          "b",
			Text:        "Reverse a string.",
			CodeSnippet: "func reverse(s string) string",
		},
		PendingTranscript: "I would use runes",
		IsDegraded:        true,
		Transcript: []interviews.Turn{
			{Speaker: interviews.SpeakerEngine, Text: "Hello and welcome."},
			{Speaker: interviews.SpeakerParticipant, Text: "Hi there."},
		},
	})
	m := newModel(stub)
	updated, _ := m.Update(refreshMsg{})
	view := updated.(model).View()

	for _, expected := range []string{"question 2 of 3", "Reverse a string.", "func reverse", "I would use runes", "Interviewer: Hello and welcome.", "You: Hi there.", "Type your answers"} {
		if !strings.Contains(view, expected) {
			t.Fatalf("expected view to contain %q, got:\n%s", expected, view)
		}
	}
}

func TestLastTurns(t *testing.T) {
	turns := make([]interviews.Turn, 10)
	for i := range turns {
		turns[i].Text = string(rune('a' + i))
	}

	got := lastTurns(turns, 3)
	if len(got) != 3 || got[0].Text != "h" || got[2].Text != "j" {
		t.Fatalf("unexpected turns %+v", got)
	}
	if got := lastTurns(turns[:2], 3); len(got) != 2 {
		t.Fatalf("expected all turns when fewer than count, got %d", len(got))
	}
}
