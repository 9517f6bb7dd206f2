package interview

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/koscakluka/ema-interview/core/events"
	"github.com/koscakluka/ema-interview/core/interviews"
	"github.com/koscakluka/ema-interview/core/media"
)

const sessionQueueCapacity = 64

// Session runs a single interview: it greets the participant, asks each
// question, listens for the answer and hands the answers off once the
// questions are exhausted.
//
// All session state is owned by one loop goroutine. Public methods post work
// to that loop and never block on it, except for [Session.Start] which waits
// for the start to be accepted or rejected.
type Session struct {
	speechToText      SpeechToText
	textToSpeech      TextToSpeech
	audioOutput       AudioOutput
	devices           media.Devices
	completionSink    interviews.CompletionSink
	acknowledgments   AcknowledgmentPicker
	pacing            Pacing
	fallbackQuestions []interviews.Question
	greeting          string
	closingStatement  string
	clock             Clock

	queue     chan func()
	closeCh   chan struct{}
	done      chan struct{}
	startOnce sync.Once
	endOnce   sync.Once

	state atomic.Int32

	// parkedMu guards media streams acquired by initialization that the loop
	// has not taken over yet.
	parkedMu      sync.Mutex
	parkedStreams map[uint64]media.Stream

	// Fields below are owned by the loop goroutine.

	ctx            context.Context
	cancel         context.CancelFunc
	stopTeardownOn func() bool
	// attempt identifies the current Start call so late initialization
	// results from an earlier attempt are dropped.
	attempt uint64
	opts    StartOptions
	emit    eventEmitter

	input     *mediaInput
	capture   *speechCapture
	synth     *utteranceSynthesizer
	silence   *SilenceTimer
	sequencer *QuestionSequencer
	recorder  *ResponseRecorder

	timers      map[uint64]Timer
	nextTimerID uint64

	askedAt           time.Time
	segments          []string
	pendingTranscript string
	captureGeneration uint64

	isTyping    bool
	isMuted     bool
	isListening bool
	isSpeaking  bool
	isDegraded  bool

	snapshotMu sync.RWMutex
	snapshot   Snapshot
}

// NewSession creates an idle session. It fails only when the configured
// pacing is invalid.
func NewSession(opts ...SessionOption) (*Session, error) {
	s := &Session{
		acknowledgments:   NewRandomAcknowledgments(),
		pacing:            DefaultPacing(),
		fallbackQuestions: FallbackQuestions(),
		greeting:          DefaultGreeting,
		closingStatement:  DefaultClosingStatement,
		clock:             systemClock{},

		queue:   make(chan func(), sessionQueueCapacity),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),

		ctx:      context.Background(),
		emit:     noopEventEmitter,
		recorder: NewResponseRecorder(),
		timers:   map[uint64]Timer{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.pacing.Validate(); err != nil {
		return nil, err
	}

	onLoop := loopClock{Clock: s.clock, enqueue: s.enqueue}

	s.input = newMediaInput(s.devices)
	s.capture = newSpeechCapture(s.speechToText, onLoop, s.pacing.RestartBackoff, func() bool {
		return s.State() == StateAwaitingResponse
	})
	s.capture.setCallbacks(
		func(generation uint64, transcript string, isFinal bool) {
			s.enqueue(func() { s.onTranscript(generation, transcript, isFinal) })
		},
		func(err error) {
			s.enqueue(func() { s.onCaptureError(err) })
		},
	)

	s.synth = newUtteranceSynthesizer(s.textToSpeech, s.audioOutput)
	s.synth.setCallbacks(
		func(text string) {
			s.enqueue(func() { s.setSpeaking(true, events.NewSpeakingStarted(text)) })
		},
		func(text string, cancelled bool) {
			s.enqueue(func() { s.setSpeaking(false, events.NewSpeakingEnded(text, cancelled)) })
		},
	)

	s.silence = NewSilenceTimer(s.pacing.SilencePeriod, s.pacing.MinTranscriptLength, func(string) {
		// Short finals that arrived after the countdown started are part
		// of the answer too.
		s.commit(strings.Join(s.segments, " "), commitTriggerAuto)
	}, WithSilenceTimerClock(onLoop))

	s.publish()
	return s, nil
}

// Start begins the interview with questions from source. A nil source, or
// one that returns no questions, makes the session ask its fallback
// questions.
//
// Start returns [ErrSessionStarted] unless the session is idle or has
// failed, and [ErrSessionClosed] after [Session.Teardown]. Cancelling ctx
// tears the session down.
func (s *Session) Start(ctx context.Context, source interviews.QuestionSource, opts ...StartOption) error {
	if ctx == nil {
		ctx = context.Background()
	}

	result := make(chan error, 1)
	if !s.post(func() { result <- s.begin(ctx, source, opts) }) {
		return ErrSessionClosed
	}

	select {
	case err := <-result:
		return err
	case <-s.done:
		return ErrSessionClosed
	}
}

// SubmitManualResponse commits text as the answer to the current question.
// Blank text submits the pending transcript instead. Nothing happens unless
// the session is waiting for an answer.
func (s *Session) SubmitManualResponse(text string) {
	s.post(func() {
		if s.State() != StateAwaitingResponse {
			return
		}

		answer := strings.TrimSpace(text)
		if answer == "" {
			answer = strings.TrimSpace(s.pendingTranscript)
		}
		if answer == "" {
			return
		}

		s.commit(answer, commitTriggerManual)
	})
}

// ToggleMute flips whether engine speech is played. Muting cuts off the
// current utterance.
func (s *Session) ToggleMute() {
	s.post(func() {
		s.isMuted = !s.isMuted
		if s.isMuted {
			s.synth.cancelAll()
		}
		s.emit(events.NewMuteChanged(s.isMuted))
	})
}

func (s *Session) ToggleCamera() {
	s.post(func() {
		if isOn, ok := s.input.toggleCamera(); ok {
			s.emit(events.NewCameraChanged(isOn))
		}
	})
}

// ToggleMicrophone flips the microphone track. While it is off no audio
// reaches the recognizer.
func (s *Session) ToggleMicrophone() {
	s.post(func() {
		if isOn, ok := s.input.toggleMicrophone(); ok {
			s.emit(events.NewMicrophoneChanged(isOn))
		}
	})
}

// Teardown stops the session from any state and releases every resource.
// It does not wait for the release to finish; use [Session.Done] for that.
// A session torn down before completing never reports completion.
func (s *Session) Teardown() { s.end() }

// Done is closed once the session has ended and released its resources.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) Snapshot() Snapshot {
	s.snapshotMu.RLock()
	defer s.snapshotMu.RUnlock()

	snapshot := s.snapshot
	snapshot.Transcript = slices.Clone(snapshot.Transcript)
	snapshot.Answers = slices.Clone(snapshot.Answers)
	return snapshot
}

// publish refreshes the snapshot from loop-owned state.
func (s *Session) publish() {
	snapshot := Snapshot{
		State:             s.State(),
		QuestionIndex:     s.sequencer.Index(),
		QuestionCount:     s.sequencer.Len(),
		IsTyping:          s.isTyping,
		PendingTranscript: s.pendingTranscript,
		IsMuted:           s.isMuted,
		IsListening:       s.isListening,
		IsSpeaking:        s.isSpeaking,
		IsCameraOn:        s.input.isCameraOn(),
		IsMicrophoneOn:    s.input.isMicrophoneOn(),
		IsDegraded:        s.isDegraded,
		IsClosed:          s.isClosed(),
		Transcript:        s.recorder.Transcript(),
		Answers:           s.recorder.All(),
	}
	if snapshot.State == StateAskingQuestion || snapshot.State == StateAwaitingResponse {
		snapshot.CurrentQuestion, _ = s.sequencer.Current()
	}

	s.snapshotMu.Lock()
	s.snapshot = snapshot
	s.snapshotMu.Unlock()
}
