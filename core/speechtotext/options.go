package speechtotext

import "github.com/koscakluka/ema-interview/core/audio"

type TranscriptionOptions struct {
	// InterimTranscriptionCallback receives the utterance recognized so far,
	// including words that may still change.
	InterimTranscriptionCallback func(transcript string)
	// TranscriptionCallback receives the finished utterance once the
	// recognizer has detected the end of speech.
	TranscriptionCallback func(transcript string)

	SpeechStartedCallback func()
	SpeechEndedCallback   func()

	// StreamEndedCallback is called exactly once when the recognition stream
	// terminates, either because its context was cancelled or because the
	// provider closed it. err is nil for a clean close.
	StreamEndedCallback func(err error)
	// ErrorCallback is called for recoverable recognizer errors that do not
	// terminate the stream.
	ErrorCallback func(err error)

	EncodingInfo audio.EncodingInfo
	Language     string
}

type TranscriptionOption func(*TranscriptionOptions)

func WithInterimTranscriptionCallback(callback func(transcript string)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.InterimTranscriptionCallback = callback
	}
}

func WithTranscriptionCallback(callback func(transcript string)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.TranscriptionCallback = callback
	}
}

func WithSpeechStartedCallback(callback func()) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.SpeechStartedCallback = callback
	}
}

func WithSpeechEndedCallback(callback func()) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.SpeechEndedCallback = callback
	}
}

func WithStreamEndedCallback(callback func(err error)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.StreamEndedCallback = callback
	}
}

func WithErrorCallback(callback func(err error)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.ErrorCallback = callback
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.EncodingInfo = encodingInfo
	}
}

func WithLanguage(language string) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.Language = language
	}
}
