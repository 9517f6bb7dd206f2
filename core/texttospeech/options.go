package texttospeech

import "github.com/koscakluka/ema-interview/core/audio"

type TextToSpeechOptions struct {
	// SpeechAudioCallback is called when the TTS client produces audio
	SpeechAudioCallback func(audio []byte)
	// SpeechMarkCallback is called when the TTS client produces speech until the
	// marked text. Each mark is called once.
	SpeechMarkCallback func(string)
	// SpeechEndedCallbackV0 is called when the TTS client has finished producing speech
	// and provides a report of the speech generation
	SpeechEndedCallbackV0 func(SpeechEndedReport)
	// ErrorCallback is called when the TTS client encounters an error, this usually
	// means the TTS client has been cancelled
	ErrorCallback func(error)

	EncodingInfo audio.EncodingInfo
	// SpeechRate scales the speaking rate; 1 is the voice's natural pace.
	// Zero means the client default.
	SpeechRate float64
}

type TextToSpeechOption func(*TextToSpeechOptions)

func WithSpeechAudioCallback(callback func([]byte)) TextToSpeechOption {
	return func(o *TextToSpeechOptions) { o.SpeechAudioCallback = callback }
}

func WithSpeechMarkCallback(callback func(string)) TextToSpeechOption {
	return func(o *TextToSpeechOptions) { o.SpeechMarkCallback = callback }
}

// WithSpeechEndedCallbackV0 sets the callback for when the TTS client has
// finished producing all required speech
func WithSpeechEndedCallbackV0(callback func(SpeechEndedReport)) TextToSpeechOption {
	return func(o *TextToSpeechOptions) { o.SpeechEndedCallbackV0 = callback }
}

func WithErrorCallback(callback func(error)) TextToSpeechOption {
	return func(o *TextToSpeechOptions) { o.ErrorCallback = callback }
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		if encodingInfo.IsZero() {
			return
		}

		o.EncodingInfo = encodingInfo
	}
}

// WithSpeechRate requests a speaking rate. Not supported by all TTS clients.
func WithSpeechRate(rate float64) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		if rate > 0 {
			o.SpeechRate = rate
		}
	}
}

type SpeechGeneratorV0 interface {
	// SendText sends text to [SpeechGenerator]. It is guaranteed that the
	// speech will be generated in the order text is sent.
	//
	// SendText will error if EndOfText, Cancel or Close has been called.
	SendText(string) error
	// Mark marks the current point in the text. The mark is returned after
	// the text sent up to it has been generated.
	//
	// Mark will error if EndOfText, Cancel or Close has been called.
	Mark() error
	// EndOfText signals that no more text will be sent. The generator closes
	// itself after all the speech has been generated.
	//
	// Repeated calls to EndOfText are ignored.
	EndOfText() error
	// Cancel immediately cancels further speech generation and closes the
	// generator.
	//
	// Repeated calls to Cancel are ignored.
	Cancel() error
	// Close immediately closes the generator. No more speech is generated
	// after this call.
	//
	// Repeated calls to Close are ignored.
	Close() error
}

type SpeechEndedReport struct {
	// Cancelled is set when generation stopped before all text was spoken.
	Cancelled bool
}
