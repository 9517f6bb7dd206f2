package events

import "github.com/koscakluka/ema-interview/core/interviews"

const (
	// KindSessionStateChanged identifies a state machine transition.
	KindSessionStateChanged Kind = "session.state_changed"
	// KindSessionDegraded identifies a switch to degraded, capture-less mode.
	KindSessionDegraded Kind = "session.degraded"
	// KindSessionFailed identifies an unrecoverable initialization failure.
	KindSessionFailed Kind = "session.failed"
	// KindSessionCompleted identifies terminal completion.
	KindSessionCompleted Kind = "session.completed"
)

// SessionStateChanged carries the names of the previous and the new state.
type SessionStateChanged struct {
	Base
	From string
	To   string
}

// NewSessionStateChanged creates a state changed event.
func NewSessionStateChanged(from, to string) SessionStateChanged {
	return SessionStateChanged{Base: NewBase(KindSessionStateChanged), From: from, To: to}
}

// SessionDegraded carries the reason capture is unavailable.
type SessionDegraded struct {
	Base
	Reason error
}

// NewSessionDegraded creates a degraded mode event.
func NewSessionDegraded(reason error) SessionDegraded {
	return SessionDegraded{Base: NewBase(KindSessionDegraded), Reason: reason}
}

// SessionFailed carries the initialization error.
type SessionFailed struct {
	Base
	Err error
}

// NewSessionFailed creates a session failed event.
func NewSessionFailed(err error) SessionFailed {
	return SessionFailed{Base: NewBase(KindSessionFailed), Err: err}
}

// SessionCompleted carries the completion handed to the sink.
type SessionCompleted struct {
	Base
	Completion interviews.Completion
}

// NewSessionCompleted creates a session completed event.
func NewSessionCompleted(completion interviews.Completion) SessionCompleted {
	return SessionCompleted{Base: NewBaseAt(KindSessionCompleted, completion.CompletedAt), Completion: completion}
}
