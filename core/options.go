package interview

import (
	"context"
	"slices"

	"github.com/koscakluka/ema-interview/core/audio"
	"github.com/koscakluka/ema-interview/core/events"
	"github.com/koscakluka/ema-interview/core/interviews"
	"github.com/koscakluka/ema-interview/core/media"
	"github.com/koscakluka/ema-interview/core/speechtotext"
	"github.com/koscakluka/ema-interview/core/texttospeech"
)

const (
	DefaultGreeting         = "Hello! I'm your AI interviewer today. I'm excited to learn more about you and your experience. Shall we begin?"
	DefaultClosingStatement = "Thank you for your time today! That concludes our interview. Your responses have been recorded and will be reviewed by our team. Have a great day!"
)

type SessionOption func(*Session)

type SpeechToText interface {
	Transcribe(ctx context.Context, opts ...speechtotext.TranscriptionOption) error
	SendAudio(audio []byte) error
}

// WithSpeechToTextClient sets the recognizer. Without one the session runs in
// manual-submit-only mode.
func WithSpeechToTextClient(client SpeechToText) SessionOption {
	return func(s *Session) { s.speechToText = client }
}

type TextToSpeech interface {
	NewSpeechGeneratorV0(ctx context.Context, opts ...texttospeech.TextToSpeechOption) (texttospeech.SpeechGeneratorV0, error)
}

// WithTextToSpeechClient sets the synthesizer. Without one nothing is played
// and pacing runs on timers alone.
func WithTextToSpeechClient(client TextToSpeech) SessionOption {
	return func(s *Session) { s.textToSpeech = client }
}

type AudioOutput interface {
	EncodingInfo() audio.EncodingInfo
	SendAudio(audio []byte) error
	ClearBuffer()
	// AwaitMark blocks until the audio sent so far has been played.
	AwaitMark() error
}

func WithAudioOutput(client AudioOutput) SessionOption {
	return func(s *Session) { s.audioOutput = client }
}

// WithMediaDevices sets where the camera and microphone are acquired from.
func WithMediaDevices(devices media.Devices) SessionOption {
	return func(s *Session) { s.devices = devices }
}

// WithCompletionSink sets the collaborator that receives the answers once the
// interview is over. Sink failures never prevent completion.
func WithCompletionSink(sink interviews.CompletionSink) SessionOption {
	return func(s *Session) { s.completionSink = sink }
}

func WithAcknowledgmentPicker(picker AcknowledgmentPicker) SessionOption {
	return func(s *Session) {
		if picker != nil {
			s.acknowledgments = picker
		}
	}
}

// WithPacing replaces the default delays and thresholds. Invalid pacing is
// reported by [NewSession].
func WithPacing(pacing Pacing) SessionOption {
	return func(s *Session) { s.pacing = pacing }
}

func WithFallbackQuestions(questions []interviews.Question) SessionOption {
	return func(s *Session) {
		if len(questions) > 0 {
			s.fallbackQuestions = slices.Clone(questions)
		}
	}
}

func WithGreeting(greeting string) SessionOption {
	return func(s *Session) {
		if greeting != "" {
			s.greeting = greeting
		}
	}
}

func WithClosingStatement(statement string) SessionOption {
	return func(s *Session) {
		if statement != "" {
			s.closingStatement = statement
		}
	}
}

// WithClock replaces the wall clock. Used by tests to drive pacing manually.
func WithClock(clock Clock) SessionOption {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// StartOptions holds the observer callbacks of a single session run. Every
// callback is invoked on the session loop and must not block.
type StartOptions struct {
	onComplete              func(interviews.Completion)
	onStateChanged          func(from, to State)
	onTurn                  func(interviews.Turn)
	onPendingTranscript     func(transcript string)
	onSpeakingStateChanged  func(isSpeaking bool)
	onListeningStateChanged func(isListening bool)
	onEvent                 func(events.Event)
}

type StartOption func(*StartOptions)

// WithCompleteCallback registers a callback invoked once the session reaches
// Completed.
func WithCompleteCallback(callback func(interviews.Completion)) StartOption {
	return func(o *StartOptions) { o.onComplete = callback }
}

func WithStateChangedCallback(callback func(from, to State)) StartOption {
	return func(o *StartOptions) { o.onStateChanged = callback }
}

// WithTurnCallback registers a callback for every turn appended to the
// transcript, engine and participant alike.
func WithTurnCallback(callback func(interviews.Turn)) StartOption {
	return func(o *StartOptions) { o.onTurn = callback }
}

// WithPendingTranscriptCallback registers a callback for the transcript shown
// while the participant is answering.
func WithPendingTranscriptCallback(callback func(transcript string)) StartOption {
	return func(o *StartOptions) { o.onPendingTranscript = callback }
}

// WithSpeakingStateChangedCallback reports engine speech playback starting
// and ending.
func WithSpeakingStateChangedCallback(callback func(isSpeaking bool)) StartOption {
	return func(o *StartOptions) { o.onSpeakingStateChanged = callback }
}

func WithListeningStateChangedCallback(callback func(isListening bool)) StartOption {
	return func(o *StartOptions) { o.onListeningStateChanged = callback }
}

// WithEventCallback registers a callback receiving every emitted event.
func WithEventCallback(callback func(events.Event)) StartOption {
	return func(o *StartOptions) { o.onEvent = callback }
}
