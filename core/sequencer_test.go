package interview

import (
	"testing"

	"github.com/koscakluka/ema-interview/core/interviews"
)

func TestQuestionSequencerWalksQuestionsInOrder(t *testing.T) {
	questions := testQuestions(3)
	sequencer := NewQuestionSequencer(questions)

	for i, expected := range questions {
		current, ok := sequencer.Current()
		if !ok || current.ID != expected.ID {
			t.Fatalf("expected question %q at index %d, got %q (ok=%v)", expected.ID, i, current.ID, ok)
		}
		if hasNext := sequencer.HasNext(); hasNext != (i < len(questions)-1) {
			t.Fatalf("expected HasNext at index %d to be %v, got %v", i, i < len(questions)-1, hasNext)
		}
		sequencer.Advance()
	}

	if _, ok := sequencer.Current(); ok {
		t.Fatalf("expected sequencer to be exhausted")
	}
	sequencer.Advance()
	if index := sequencer.Index(); index != len(questions) {
		t.Fatalf("expected index to stop at %d, got %d", len(questions), index)
	}
}

func TestQuestionSequencerIsIsolatedFromInput(t *testing.T) {
	questions := testQuestions(1)
	sequencer := NewQuestionSequencer(questions)
	questions[0].Text = "changed"

	if current, _ := sequencer.Current(); current.Text == "changed" {
		t.Fatalf("expected sequencer to keep its own copy of the questions")
	}
}

func TestResolveQuestionsPrefersCustomQuestions(t *testing.T) {
	custom := testQuestions(2)
	if got := ResolveQuestions(custom, FallbackQuestions()); len(got) != 2 || got[0].ID != custom[0].ID {
		t.Fatalf("expected custom questions, got %v", got)
	}

	if got := ResolveQuestions(nil, FallbackQuestions()); len(got) != len(FallbackQuestions()) {
		t.Fatalf("expected fallback questions, got %d", len(got))
	}
}

func TestNormalizeQuestionIDs(t *testing.T) {
	questions := normalizeQuestionIDs([]interviews.Question{
		{ID: "intro"},
		{ID: ""},
		{ID: "intro"},
		{ID: "question-3"},
	})

	seen := map[string]bool{}
	for _, question := range questions {
		if question.ID == "" || seen[question.ID] {
			t.Fatalf("expected unique non-empty IDs, got %v", questions)
		}
		seen[question.ID] = true
	}
	if questions[0].ID != "intro" {
		t.Fatalf("expected first ID to be kept, got %q", questions[0].ID)
	}
}
