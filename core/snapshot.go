package interview

import "github.com/koscakluka/ema-interview/core/interviews"

// Snapshot is a point-in-time copy of the session, safe to read from any
// goroutine.
type Snapshot struct {
	State State

	QuestionIndex int
	QuestionCount int
	// CurrentQuestion is the question being asked or answered. It is the zero
	// value outside of the question cycle.
	CurrentQuestion interviews.Question
	// IsTyping is true while the engine is about to ask the next question.
	IsTyping bool

	PendingTranscript string
	IsMuted           bool
	IsListening       bool
	IsSpeaking        bool
	IsCameraOn        bool
	IsMicrophoneOn    bool
	// IsDegraded is true when answers can only be submitted manually.
	IsDegraded bool
	IsClosed   bool

	Transcript []interviews.Turn
	Answers    []interviews.Answer
}
