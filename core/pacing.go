package interview

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidPacing = errors.New("invalid pacing")

// Pacing holds every delay and threshold that shapes the rhythm of an
// interview. The zero value is not usable; start from [DefaultPacing].
type Pacing struct {
	// GreetingLeadIn is the wait between initialization and the greeting.
	GreetingLeadIn time.Duration
	// GreetingPause is the wait between the greeting and the first
	// question. It does not depend on playback finishing.
	GreetingPause time.Duration
	// QuestionLeadIn is how long the engine appears to be typing before the
	// question turn is emitted.
	QuestionLeadIn time.Duration
	// ListenDelay is the wait between asking and listening.
	ListenDelay          time.Duration
	AcknowledgmentLeadIn time.Duration
	AcknowledgmentPause  time.Duration
	// CompletionDelay is the wait between the closing statement and the
	// completion handoff.
	CompletionDelay time.Duration

	// SilencePeriod is the quiet period after a qualifying final transcript
	// before the answer is committed.
	SilencePeriod time.Duration
	// RestartBackoff is the wait before restarting a recognition stream that
	// ended on its own.
	RestartBackoff time.Duration
	// InitTimeout bounds device acquisition and question loading.
	InitTimeout time.Duration

	// MinTranscriptLength is the number of characters a trimmed transcript
	// must exceed to arm auto-submission.
	MinTranscriptLength int
}

func DefaultPacing() Pacing {
	return Pacing{
		GreetingLeadIn:       time.Second,
		GreetingPause:        4 * time.Second,
		QuestionLeadIn:       1500 * time.Millisecond,
		ListenDelay:          2 * time.Second,
		AcknowledgmentLeadIn: 1500 * time.Millisecond,
		AcknowledgmentPause:  3 * time.Second,
		CompletionDelay:      3 * time.Second,
		SilencePeriod:        3 * time.Second,
		RestartBackoff:       100 * time.Millisecond,
		InitTimeout:          10 * time.Second,
		MinTranscriptLength:  10,
	}
}

func (p Pacing) Validate() error {
	var errs error
	for name, d := range map[string]time.Duration{
		"greeting lead-in":       p.GreetingLeadIn,
		"greeting pause":         p.GreetingPause,
		"question lead-in":       p.QuestionLeadIn,
		"listen delay":           p.ListenDelay,
		"acknowledgment lead-in": p.AcknowledgmentLeadIn,
		"acknowledgment pause":   p.AcknowledgmentPause,
		"completion delay":       p.CompletionDelay,
		"silence period":         p.SilencePeriod,
		"restart backoff":        p.RestartBackoff,
	} {
		if d < 0 {
			errs = errors.Join(errs, fmt.Errorf("%w: %s must not be negative, got %s", ErrInvalidPacing, name, d))
		}
	}

	if p.InitTimeout <= 0 {
		errs = errors.Join(errs, fmt.Errorf("%w: init timeout must be positive, got %s", ErrInvalidPacing, p.InitTimeout))
	}
	if p.MinTranscriptLength < 0 {
		errs = errors.Join(errs, fmt.Errorf("%w: minimum transcript length must not be negative, got %d", ErrInvalidPacing, p.MinTranscriptLength))
	}

	return errs
}
