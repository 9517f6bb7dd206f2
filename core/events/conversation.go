package events

import "github.com/koscakluka/ema-interview/core/interviews"

const (
	// KindTurnAppended identifies a turn appended to the transcript.
	KindTurnAppended Kind = "conversation.turn_appended"
	// KindAnswerRecorded identifies a committed answer.
	KindAnswerRecorded Kind = "conversation.answer_recorded"
)

// TurnAppended carries the appended turn; the event is stamped with the
// turn's own timestamp.
type TurnAppended struct {
	Base
	Turn interviews.Turn
}

// NewTurnAppended creates a turn appended event.
func NewTurnAppended(turn interviews.Turn) TurnAppended {
	return TurnAppended{Base: NewBaseAt(KindTurnAppended, turn.Timestamp), Turn: turn}
}

// AnswerRecorded carries the committed answer.
type AnswerRecorded struct {
	Base
	Answer interviews.Answer
}

// NewAnswerRecorded creates an answer recorded event.
func NewAnswerRecorded(answer interviews.Answer) AnswerRecorded {
	return AnswerRecorded{Base: NewBaseAt(KindAnswerRecorded, answer.AnsweredAt), Answer: answer}
}
