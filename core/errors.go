package interview

import "errors"

var (
	ErrSessionStarted = errors.New("session already started")
	ErrSessionClosed  = errors.New("session closed")

	// ErrDeviceAccess wraps camera or microphone acquisition failures. The
	// session continues in degraded mode.
	ErrDeviceAccess = errors.New("media device access failed")
	// ErrRecognition wraps transient speech recognition failures.
	ErrRecognition = errors.New("speech recognition failed")
	// ErrSynthesisUnavailable wraps speech synthesis failures. Pacing
	// continues on timers alone.
	ErrSynthesisUnavailable = errors.New("speech synthesis unavailable")
	// ErrCompletionSink wraps completion handoff failures. The session still
	// completes.
	ErrCompletionSink = errors.New("completion sink failed")
	// ErrInitialization is reported when neither media devices nor questions
	// could be obtained.
	ErrInitialization = errors.New("session initialization failed")
)
