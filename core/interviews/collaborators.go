package interviews

import (
	"context"
	"errors"
	"slices"
)

// ErrInterviewUnavailable is wrapped by question sources that refuse the
// interview outright, for example because it does not exist or was already
// completed. Sessions fail on it instead of asking the fallback list.
var ErrInterviewUnavailable = errors.New("interview unavailable")

// QuestionSource supplies the custom question list for a session. Returning
// an empty list (with or without an error) makes the engine use its fallback
// list, unless the error wraps [ErrInterviewUnavailable].
type QuestionSource interface {
	Questions(ctx context.Context) ([]Question, error)
}

// CompletionSink accepts the final answers of a session.
type CompletionSink interface {
	Complete(ctx context.Context, completion Completion) error
}

// QuestionSourceFunc adapts a function to [QuestionSource].
type QuestionSourceFunc func(ctx context.Context) ([]Question, error)

func (f QuestionSourceFunc) Questions(ctx context.Context) ([]Question, error) { return f(ctx) }

// CompletionSinkFunc adapts a function to [CompletionSink].
type CompletionSinkFunc func(ctx context.Context, completion Completion) error

func (f CompletionSinkFunc) Complete(ctx context.Context, completion Completion) error {
	return f(ctx, completion)
}

// StaticQuestions is a [QuestionSource] that always returns the same list.
type StaticQuestions []Question

func (q StaticQuestions) Questions(context.Context) ([]Question, error) {
	return slices.Clone(q), nil
}
