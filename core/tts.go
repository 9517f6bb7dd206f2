package interview

import (
	"context"
	"fmt"
	"sync"

	"github.com/koscakluka/ema-interview/core/texttospeech"
)

// speechRate is the pace engine utterances are rendered at.
const speechRate = 0.9

// utteranceSynthesizer plays engine utterances one at a time, in the order
// they were requested.
type utteranceSynthesizer struct {
	client TextToSpeech
	output AudioOutput

	onStarted func(text string)
	onEnded   func(text string, cancelled bool)

	mu      sync.Mutex
	queue   []queuedUtterance
	current *utterance
	closed  bool
}

type queuedUtterance struct {
	ctx  context.Context
	text string
}

type utterance struct {
	text      string
	generator texttospeech.SpeechGeneratorV0
	cancelled bool

	stopOnce sync.Once
	stopped  chan struct{}
}

func (u *utterance) stop() { u.stopOnce.Do(func() { close(u.stopped) }) }

func newUtteranceSynthesizer(client TextToSpeech, output AudioOutput) *utteranceSynthesizer {
	return &utteranceSynthesizer{
		client:    client,
		output:    output,
		onStarted: func(string) {},
		onEnded:   func(string, bool) {},
	}
}

func (s *utteranceSynthesizer) isConfigured() bool { return s != nil && s.client != nil }

func (s *utteranceSynthesizer) setCallbacks(onStarted func(text string), onEnded func(text string, cancelled bool)) {
	if s == nil {
		return
	}

	if onStarted != nil {
		s.onStarted = onStarted
	}
	if onEnded != nil {
		s.onEnded = onEnded
	}
}

// speak queues text behind whatever is already playing.
func (s *utteranceSynthesizer) speak(ctx context.Context, text string) {
	if !s.isConfigured() || text == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.queue = append(s.queue, queuedUtterance{ctx: ctx, text: text})
	if s.current == nil {
		s.playNextLocked()
	}
}

// cancelAll drops queued utterances and cuts the current one short.
func (s *utteranceSynthesizer) cancelAll() {
	if !s.isConfigured() {
		return
	}

	s.mu.Lock()
	s.queue = nil
	current := s.current
	var generator texttospeech.SpeechGeneratorV0
	if current != nil {
		current.cancelled = true
		generator = current.generator
	}
	s.mu.Unlock()

	if current == nil {
		return
	}

	if generator != nil {
		if err := generator.Cancel(); err != nil {
			logger.Debug("failed to cancel speech generator", "error", err)
		}
	}
	current.stop()
	if s.output != nil {
		s.output.ClearBuffer()
	}
}

// close cancels playback and rejects further utterances.
func (s *utteranceSynthesizer) close() {
	if !s.isConfigured() {
		return
	}

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancelAll()
}

func (s *utteranceSynthesizer) isSpeaking() bool {
	if !s.isConfigured() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

func (s *utteranceSynthesizer) playNextLocked() {
	if len(s.queue) == 0 {
		s.current = nil
		return
	}

	next := s.queue[0]
	s.queue = s.queue[1:]

	current := &utterance{text: next.text, stopped: make(chan struct{})}
	s.current = current
	go s.play(next.ctx, current)
}

func (s *utteranceSynthesizer) play(ctx context.Context, current *utterance) {
	started := false
	cancelled := false
	defer func() { s.finish(current, started, cancelled) }()

	ended := make(chan texttospeech.SpeechEndedReport, 1)
	opts := []texttospeech.TextToSpeechOption{
		texttospeech.WithSpeechAudioCallback(func(audio []byte) {
			if s.output == nil {
				return
			}
			if err := s.output.SendAudio(audio); err != nil {
				logger.Debug("failed to play speech audio", "error", err)
			}
		}),
		texttospeech.WithSpeechEndedCallbackV0(func(report texttospeech.SpeechEndedReport) {
			select {
			case ended <- report:
			default:
			}
		}),
		texttospeech.WithErrorCallback(func(err error) {
			logger.Warn("speech generation failed", "error", err)
			current.stop()
		}),
		texttospeech.WithSpeechRate(speechRate),
	}
	if s.output != nil {
		opts = append(opts, texttospeech.WithEncodingInfo(s.output.EncodingInfo()))
	}

	generator, err := s.client.NewSpeechGeneratorV0(ctx, opts...)
	if err != nil {
		logger.Warn("skipping utterance", "error", fmt.Errorf("%w: %w", ErrSynthesisUnavailable, err))
		return
	}
	defer generator.Close()

	s.mu.Lock()
	current.generator = generator
	cancelled = current.cancelled
	s.mu.Unlock()
	if cancelled {
		_ = generator.Cancel()
		return
	}

	started = true
	s.onStarted(current.text)

	if err := generator.SendText(current.text); err != nil {
		logger.Warn("failed to send utterance", "error", fmt.Errorf("%w: %w", ErrSynthesisUnavailable, err))
		return
	}
	if err := generator.EndOfText(); err != nil {
		logger.Warn("failed to end utterance", "error", fmt.Errorf("%w: %w", ErrSynthesisUnavailable, err))
		return
	}

	select {
	case report := <-ended:
		if report.Cancelled {
			cancelled = true
			return
		}
	case <-current.stopped:
	case <-ctx.Done():
		cancelled = true
		return
	}

	s.mu.Lock()
	cancelled = current.cancelled
	s.mu.Unlock()
	if cancelled || s.output == nil {
		return
	}

	if err := s.output.AwaitMark(); err != nil {
		logger.Debug("failed to await end of playback", "error", err)
	}

	s.mu.Lock()
	cancelled = current.cancelled
	s.mu.Unlock()
}

// finish reports the end of current before the next utterance can start.
func (s *utteranceSynthesizer) finish(current *utterance, started, cancelled bool) {
	if started {
		s.onEnded(current.text, cancelled)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == current {
		s.playNextLocked()
	}
}
