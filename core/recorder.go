package interview

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/koscakluka/ema-interview/core/interviews"
)

// ResponseRecorder is the append-only ledger of answers and transcript
// turns. It is not safe for concurrent use.
type ResponseRecorder struct {
	answers  []interviews.Answer
	answered map[string]struct{}

	turns []interviews.Turn
	// lastTimestamp is the timestamp of the newest turn; new turns are
	// stamped strictly after it.
	lastTimestamp time.Time

	newID func() string
}

func NewResponseRecorder() *ResponseRecorder {
	return &ResponseRecorder{
		answered: map[string]struct{}{},
		newID:    uuid.NewString,
	}
}

// Record appends the answer to questionID. answeredAt is moved after askedAt
// when the clock did not advance between them. Each question may be answered
// once.
func (r *ResponseRecorder) Record(questionID, answerText string, askedAt, answeredAt time.Time) (interviews.Answer, error) {
	if _, ok := r.answered[questionID]; ok {
		return interviews.Answer{}, fmt.Errorf("question %q already answered", questionID)
	}

	if !answeredAt.After(askedAt) {
		answeredAt = askedAt.Add(time.Nanosecond)
	}

	answer := interviews.Answer{
		QuestionID: questionID,
		Text:       answerText,
		AskedAt:    askedAt,
		AnsweredAt: answeredAt,
	}
	r.answers = append(r.answers, answer)
	r.answered[questionID] = struct{}{}
	return answer, nil
}

// AppendTurn adds a turn stamped at or, if needed, just after at so that
// transcript timestamps strictly increase.
func (r *ResponseRecorder) AppendTurn(speaker interviews.Speaker, text string, at time.Time, questionID string) interviews.Turn {
	if !at.After(r.lastTimestamp) {
		at = r.lastTimestamp.Add(time.Nanosecond)
	}
	r.lastTimestamp = at

	turn := interviews.Turn{
		ID:         r.newID(),
		Speaker:    speaker,
		Text:       text,
		Timestamp:  at,
		QuestionID: questionID,
	}
	r.turns = append(r.turns, turn)
	return turn
}

func (r *ResponseRecorder) All() []interviews.Answer { return slices.Clone(r.answers) }

func (r *ResponseRecorder) Transcript() []interviews.Turn { return slices.Clone(r.turns) }

func (r *ResponseRecorder) HasAnswered(questionID string) bool {
	_, ok := r.answered[questionID]
	return ok
}
