package events

const (
	// KindTranscriptUpdated identifies a raw recognizer callback.
	KindTranscriptUpdated Kind = "participant_input.transcript_updated"
	// KindPendingTranscriptUpdated identifies a change of the displayed transcript.
	KindPendingTranscriptUpdated Kind = "participant_input.pending_transcript_updated"
	// KindListeningChanged identifies capture start or stop.
	KindListeningChanged Kind = "participant_input.listening_changed"
	// KindCaptureFailed identifies a recognizer error.
	KindCaptureFailed Kind = "participant_input.capture_failed"
)

// TranscriptUpdated carries a recognizer result.
type TranscriptUpdated struct {
	Base
	Transcript string
	IsFinal    bool
}

// NewTranscriptUpdated creates a transcript updated event.
func NewTranscriptUpdated(transcript string, isFinal bool) TranscriptUpdated {
	return TranscriptUpdated{Base: NewBase(KindTranscriptUpdated), Transcript: transcript, IsFinal: isFinal}
}

// PendingTranscriptUpdated carries the transcript displayed for the active
// question.
type PendingTranscriptUpdated struct {
	Base
	Transcript string
}

// NewPendingTranscriptUpdated creates a pending transcript updated event.
func NewPendingTranscriptUpdated(transcript string) PendingTranscriptUpdated {
	return PendingTranscriptUpdated{Base: NewBase(KindPendingTranscriptUpdated), Transcript: transcript}
}

// ListeningChanged reports whether capture is running.
type ListeningChanged struct {
	Base
	IsListening bool
}

// NewListeningChanged creates a listening changed event.
func NewListeningChanged(isListening bool) ListeningChanged {
	return ListeningChanged{Base: NewBase(KindListeningChanged), IsListening: isListening}
}

// CaptureFailed carries a recognizer error.
type CaptureFailed struct {
	Base
	Err error
}

// NewCaptureFailed creates a capture failed event.
func NewCaptureFailed(err error) CaptureFailed {
	return CaptureFailed{Base: NewBase(KindCaptureFailed), Err: err}
}
