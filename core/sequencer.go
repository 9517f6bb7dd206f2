package interview

import (
	"fmt"
	"slices"
	"time"

	"github.com/koscakluka/ema-interview/core/interviews"
)

var fallbackQuestions = []interviews.Question{
	{
		ID:               "fallback-1",
		Text:             "Hello! Welcome to your interview. Could you please introduce yourself and tell me about your background?",
		Type:             interviews.QuestionTypeIntroduction,
		ExpectedDuration: 120 * time.Second,
	},
	{
		ID:               "fallback-2",
		Text:             "That's great! What interests you most about this position and our company?",
		Type:             interviews.QuestionTypeGeneral,
		ExpectedDuration: 90 * time.Second,
	},
	{
		ID:               "fallback-3",
		Text:             "Can you walk me through a challenging project you've worked on recently?",
		Type:             interviews.QuestionTypeBehavioral,
		ExpectedDuration: 180 * time.Second,
	},
	{
		ID:               "fallback-4",
		Text:             "What are your greatest strengths and how do they relate to this role?",
		Type:             interviews.QuestionTypeBehavioral,
		ExpectedDuration: 120 * time.Second,
	},
	{
		ID:               "fallback-5",
		Text:             "Do you have any questions for us about the role or company?",
		Type:             interviews.QuestionTypeGeneral,
		ExpectedDuration: 90 * time.Second,
	},
}

// FallbackQuestions returns the role-agnostic questions asked when no custom
// questions are supplied.
func FallbackQuestions() []interviews.Question {
	return slices.Clone(fallbackQuestions)
}

// ResolveQuestions picks custom when it has at least one question and
// fallback otherwise.
func ResolveQuestions(custom, fallback []interviews.Question) []interviews.Question {
	if len(custom) > 0 {
		return slices.Clone(custom)
	}
	return slices.Clone(fallback)
}

// QuestionSequencer walks an ordered question list. It is not safe for
// concurrent use.
type QuestionSequencer struct {
	questions []interviews.Question
	index     int
}

func NewQuestionSequencer(questions []interviews.Question) *QuestionSequencer {
	return &QuestionSequencer{questions: slices.Clone(questions)}
}

// Current returns the active question, or false once the list is exhausted.
func (q *QuestionSequencer) Current() (interviews.Question, bool) {
	if q == nil || q.index >= len(q.questions) {
		return interviews.Question{}, false
	}
	return q.questions[q.index], true
}

// HasNext reports whether a question follows the current one.
func (q *QuestionSequencer) HasNext() bool {
	return q != nil && q.index+1 < len(q.questions)
}

func (q *QuestionSequencer) Advance() {
	if q != nil && q.index < len(q.questions) {
		q.index++
	}
}

func (q *QuestionSequencer) Index() int {
	if q == nil {
		return 0
	}
	return q.index
}

func (q *QuestionSequencer) Len() int {
	if q == nil {
		return 0
	}
	return len(q.questions)
}

// normalizeQuestionIDs gives every question a unique, non-empty ID so each
// can be answered exactly once.
func normalizeQuestionIDs(questions []interviews.Question) []interviews.Question {
	seen := make(map[string]struct{}, len(questions))
	for i := range questions {
		for suffix := i + 1; ; suffix++ {
			if _, ok := seen[questions[i].ID]; questions[i].ID != "" && !ok {
				break
			}
			questions[i].ID = fmt.Sprintf("question-%d", suffix)
		}
		seen[questions[i].ID] = struct{}{}
	}
	return questions
}
