package portal

import (
	"errors"
	"fmt"

	"github.com/koscakluka/ema-interview/core/interviews"
)

var (
	// ErrInterviewNotFound is returned when the portal does not know the
	// interview token. It wraps [interviews.ErrInterviewUnavailable].
	ErrInterviewNotFound = fmt.Errorf("%w: interview not found", interviews.ErrInterviewUnavailable)
	// ErrInterviewCompleted is returned when the interview was already
	// completed and cannot be taken again. It wraps
	// [interviews.ErrInterviewUnavailable].
	ErrInterviewCompleted = fmt.Errorf("%w: interview already completed", interviews.ErrInterviewUnavailable)
	// ErrCompletionRejected is returned when the portal accepted the request
	// but reported that it did not store the answers.
	ErrCompletionRejected = errors.New("portal rejected completion")
)

// HTTPError is returned for portal responses with an unexpected status.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("portal responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("portal responded with status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether retrying the request may succeed.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}
