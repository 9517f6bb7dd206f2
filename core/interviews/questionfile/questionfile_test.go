package questionfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/koscakluka/ema-interview/core/interviews"
)

const sampleDocument = `
questions:
  - id: intro
    text: Tell me about yourself.
    type: Introduction
    duration: 2m
  - text: Write a function that reverses a string.
    type: coding
    code_snippet: |
      func reverse(s string) string {
      }
  - id: why
    text: "  Why this role?  "
`

func TestDecode(t *testing.T) {
	questions, err := Decode(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("expected questions, got error %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}

	if questions[0].ID != "intro" || questions[0].Type != interviews.QuestionTypeIntroduction || questions[0].ExpectedDuration != 2*time.Minute {
		t.Fatalf("unexpected first question %+v", questions[0])
	}
	if questions[1].ID != "" || questions[1].Type != interviews.QuestionTypeCoding {
		t.Fatalf("unexpected second question %+v", questions[1])
	}
	if questions[1].CodeSnippet != "func reverse(s string) string {\n}" {
		t.Fatalf("unexpected code snippet %q", questions[1].CodeSnippet)
	}
	if questions[2].Text != "Why this role?" || questions[2].Type != interviews.QuestionTypeGeneral {
		t.Fatalf("unexpected third question %+v", questions[2])
	}
}

func TestDecodeRejectsMissingText(t *testing.T) {
	_, err := Decode(strings.NewReader("questions:\n  - id: empty\n"))
	if err == nil {
		t.Fatalf("expected error for question without text")
	}
}

func TestDecodeEmptyDocument(t *testing.T) {
	questions, err := Decode(strings.NewReader(""))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(questions) != 0 {
		t.Fatalf("expected no questions, got %d", len(questions))
	}
}

func TestSourceQuestions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yaml")
	if err := os.WriteFile(path, []byte(sampleDocument), 0o600); err != nil {
		t.Fatalf("failed to write question file: %v", err)
	}

	questions, err := New(path).Questions(context.Background())
	if err != nil {
		t.Fatalf("expected questions, got error %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}

	if _, err := New(filepath.Join(t.TempDir(), "missing.yaml")).Questions(context.Background()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
