// Package interviews holds the values exchanged between the interview engine
// and its collaborators: the questions it asks, the turns it records and the
// answers it hands off once the session is complete.
package interviews

import "time"

type QuestionType string

const (
	QuestionTypeIntroduction QuestionType = "introduction"
	QuestionTypeGeneral      QuestionType = "general"
	QuestionTypeBehavioral   QuestionType = "behavioral"
	QuestionTypeTechnical    QuestionType = "technical"
	QuestionTypeCoding       QuestionType = "coding"
)

// Question is a single interview question. Questions are immutable once a
// session has loaded them.
type Question struct {
	ID   string
	Text string
	Type QuestionType
	// ExpectedDuration is a hint of how long an answer is expected to take.
	ExpectedDuration time.Duration

	// CodeSnippet is optional code shown alongside the question.
	CodeSnippet string
	// ExpectedAnswer is an optional reference answer used by downstream
	// scoring. The engine never reads it.
	ExpectedAnswer string
}

type Speaker string

const (
	SpeakerEngine      Speaker = "engine"
	SpeakerParticipant Speaker = "participant"
)

// Turn is one utterance attributed to the engine or the participant.
type Turn struct {
	ID        string
	Speaker   Speaker
	Text      string
	Timestamp time.Time

	// QuestionID is set on the engine turn that asked a question and on the
	// participant turn that answered it.
	QuestionID string
}

// Answer is the committed response to a single question.
type Answer struct {
	QuestionID string
	Text       string
	AskedAt    time.Time
	AnsweredAt time.Time
}

// Completion is handed to the completion sink and to the caller once the
// session reaches its terminal state.
type Completion struct {
	Answers     []Answer
	Transcript  []Turn
	CompletedAt time.Time

	// Err is set when the completion sink failed. The session is complete
	// regardless.
	Err error
}
