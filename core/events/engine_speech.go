package events

const (
	// KindSpeakingStarted identifies the start of an engine utterance.
	KindSpeakingStarted Kind = "engine_speech.started"
	// KindSpeakingEnded identifies the end of an engine utterance.
	KindSpeakingEnded Kind = "engine_speech.ended"
)

// SpeakingStarted carries the text that began playing.
type SpeakingStarted struct {
	Base
	Text string
}

// NewSpeakingStarted creates a speaking started event.
func NewSpeakingStarted(text string) SpeakingStarted {
	return SpeakingStarted{Base: NewBase(KindSpeakingStarted), Text: text}
}

// SpeakingEnded carries the text that stopped playing. Cancelled is true when
// playback was cut short by cancellation.
type SpeakingEnded struct {
	Base
	Text      string
	Cancelled bool
}

// NewSpeakingEnded creates a speaking ended event.
func NewSpeakingEnded(text string, cancelled bool) SpeakingEnded {
	return SpeakingEnded{Base: NewBase(KindSpeakingEnded), Text: text, Cancelled: cancelled}
}
