package portal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/koscakluka/ema-interview/core/interviews"
)

type interviewResponse struct {
	Success bool `json:"success"`
	Data    struct {
		InterviewStatus string        `json:"interview_status"`
		CustomQuestions []questionDTO `json:"custom_questions"`
	} `json:"data"`
}

type questionsResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Questions []questionDTO `json:"questions"`
	} `json:"data"`
}

// questionDTO accepts the field spellings used by the different portal
// question endpoints.
type questionDTO struct {
	ID             flexibleString `json:"id"`
	QuestionText   string         `json:"question_text"`
	Text           string         `json:"text"`
	Question       string         `json:"question"`
	QuestionType   string         `json:"question_type"`
	Type           string         `json:"type"`
	Duration       flexibleString `json:"duration"`
	CodeSnippet    *string        `json:"code_snippet"`
	ExpectedAnswer *string        `json:"expected_answer"`
}

func (q questionDTO) toQuestion() (interviews.Question, bool) {
	text := firstNonEmpty(q.QuestionText, q.Text, q.Question)
	if text == "" {
		return interviews.Question{}, false
	}

	question := interviews.Question{
		ID:             string(q.ID),
		Text:           text,
		Type:           interviews.QuestionType(strings.ToLower(firstNonEmpty(q.QuestionType, q.Type, string(interviews.QuestionTypeGeneral)))),
		CodeSnippet:    optionalText(q.CodeSnippet),
		ExpectedAnswer: optionalText(q.ExpectedAnswer),
	}
	if seconds, err := strconv.ParseFloat(string(q.Duration), 64); err == nil && seconds > 0 {
		question.ExpectedDuration = time.Duration(seconds * float64(time.Second))
	}
	return question, true
}

func toQuestions(dtos []questionDTO) []interviews.Question {
	questions := make([]interviews.Question, 0, len(dtos))
	for _, dto := range dtos {
		if question, ok := dto.toQuestion(); ok {
			questions = append(questions, question)
		}
	}
	return questions
}

// CompletionRequest is the body posted to the portal when an interview ends.
type CompletionRequest struct {
	Answers     []AnswerPayload `json:"answers" jsonschema:"required"`
	CompletedAt time.Time       `json:"completed_at" jsonschema:"required,format=date-time"`
}

type AnswerPayload struct {
	QuestionID string    `json:"question_id" jsonschema:"required"`
	Answer     string    `json:"answer" jsonschema:"required"`
	Timestamp  time.Time `json:"timestamp" jsonschema:"required,format=date-time,description=When the answer was committed"`
}

func NewCompletionRequest(completion interviews.Completion) CompletionRequest {
	answers := make([]AnswerPayload, 0, len(completion.Answers))
	for _, answer := range completion.Answers {
		answers = append(answers, AnswerPayload{
			QuestionID: answer.QuestionID,
			Answer:     answer.Text,
			Timestamp:  answer.AnsweredAt.UTC(),
		})
	}
	return CompletionRequest{Answers: answers, CompletedAt: completion.CompletedAt.UTC()}
}

type completionResponse struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// flexibleString decodes JSON strings and numbers alike.
type flexibleString string

func (s *flexibleString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*s = flexibleString(value)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = flexibleString(number.String())
	return nil
}

func optionalText(value *string) string {
	if value == nil {
		return ""
	}
	text := strings.TrimSpace(*value)
	if text == "None" {
		return ""
	}
	return text
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
