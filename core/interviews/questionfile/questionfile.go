// Package questionfile loads interview questions from a YAML file.
//
//	questions:
//	  - id: intro
//	    text: Tell me about yourself.
//	    type: introduction
//	    duration: 2m
package questionfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/koscakluka/ema-interview/core/interviews"
	"gopkg.in/yaml.v3"
)

type document struct {
	Questions []question `yaml:"questions"`
}

type question struct {
	ID             string        `yaml:"id"`
	Text           string        `yaml:"text"`
	Type           string        `yaml:"type"`
	Duration       time.Duration `yaml:"duration"`
	CodeSnippet    string        `yaml:"code_snippet"`
	ExpectedAnswer string        `yaml:"expected_answer"`
}

// Source reads questions from a file every time they are requested.
type Source struct {
	path string
}

func New(path string) *Source {
	return &Source{path: path}
}

func (s *Source) Questions(ctx context.Context) ([]interviews.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open question file: %w", err)
	}
	defer file.Close()

	questions, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read question file %s: %w", s.path, err)
	}
	return questions, nil
}

// Decode parses a question document. Entries without text are rejected.
func Decode(r io.Reader) ([]interviews.Question, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	questions := make([]interviews.Question, 0, len(doc.Questions))
	for i, q := range doc.Questions {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			return nil, fmt.Errorf("question %d has no text", i+1)
		}

		questionType := interviews.QuestionType(strings.ToLower(strings.TrimSpace(q.Type)))
		if questionType == "" {
			questionType = interviews.QuestionTypeGeneral
		}

		questions = append(questions, interviews.Question{
			ID:               strings.TrimSpace(q.ID),
			Text:             text,
			Type:             questionType,
			ExpectedDuration: q.Duration,
			CodeSnippet:      strings.TrimRight(q.CodeSnippet, "\n"),
			ExpectedAnswer:   strings.TrimSpace(q.ExpectedAnswer),
		})
	}
	return questions, nil
}
