package interview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/koscakluka/ema-interview/core/events"
	"github.com/koscakluka/ema-interview/core/interviews"
	"github.com/koscakluka/ema-interview/core/media"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var errSpeechCaptureUnavailable = errors.New("speech capture unavailable")

func (s *Session) run() {
	defer close(s.done)

	for {
		select {
		case <-s.closeCh:
			s.cleanup()
			return
		case task := <-s.queue:
			if s.isClosed() {
				s.cleanup()
				return
			}
			task()
			s.publish()
		}
	}
}

// post starts the loop if needed and queues task on it.
func (s *Session) post(task func()) bool {
	if s.isClosed() {
		return false
	}

	s.startOnce.Do(func() { go s.run() })
	return s.enqueue(task)
}

// enqueue queues task on a running loop. It must not be called from the
// loop goroutine.
func (s *Session) enqueue(task func()) bool {
	if s.isClosed() {
		return false
	}

	select {
	case <-s.closeCh:
		return false
	case s.queue <- task:
		return true
	}
}

func (s *Session) isClosed() bool {
	select {
	case <-s.closeCh:
		return true
	default:
		return false
	}
}

func (s *Session) end() {
	s.endOnce.Do(func() {
		close(s.closeCh)
		// The loop never ran, so nothing is left to release.
		s.startOnce.Do(func() {
			s.publish()
			close(s.done)
		})
	})
}

// cleanup releases everything the session holds. It runs on the loop once
// the session has ended.
func (s *Session) cleanup() {
	s.silence.Cancel()
	s.capture.stop()
	s.isListening = false
	s.captureGeneration = 0
	s.stopTimers()
	s.synth.close()
	s.isSpeaking = false
	s.input.release()
	s.closeParkedStreams()

	if s.stopTeardownOn != nil {
		s.stopTeardownOn()
	}
	if s.cancel != nil {
		s.cancel()
	}

	if err := closeClient(context.Background(), s.speechToText); err != nil {
		logger.Warn("failed to close speech-to-text client", "error", err)
	}

	s.publish()
}

// after runs task on the loop once d has elapsed, unless the timer is
// stopped first.
func (s *Session) after(d time.Duration, task func()) {
	s.nextTimerID++
	id := s.nextTimerID
	s.timers[id] = s.clock.AfterFunc(d, func() {
		s.enqueue(func() {
			if _, ok := s.timers[id]; !ok {
				return
			}
			delete(s.timers, id)
			task()
		})
	})
}

func (s *Session) stopTimers() {
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

func (s *Session) begin(ctx context.Context, source interviews.QuestionSource, opts []StartOption) error {
	if state := s.State(); !state.canStart() {
		return fmt.Errorf("%w: session is %s", ErrSessionStarted, state)
	}

	ctx, span := tracer.Start(ctx, "start session")
	defer span.End()

	if s.stopTeardownOn != nil {
		s.stopTeardownOn()
	}
	if s.cancel != nil {
		s.cancel()
	}

	startOptions := StartOptions{}
	for _, opt := range opts {
		opt(&startOptions)
	}

	s.attempt++
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.stopTeardownOn = context.AfterFunc(ctx, s.Teardown)
	s.opts = startOptions
	s.emit = newCallbackEventEmitter(startOptions)
	s.recorder = NewResponseRecorder()
	s.sequencer = nil
	s.stopTimers()
	s.resetAnswer()
	s.isDegraded = false

	span.SetAttributes(attribute.Int64("interview.attempt", int64(s.attempt)))
	s.setState(StateInitializing)

	go s.initialize(s.ctx, s.attempt, source)
	return nil
}

type initializationResult struct {
	stream       media.Stream
	deviceErr    error
	questions    []interviews.Question
	questionsErr error
}

// initialize acquires media devices and loads questions off the loop and
// posts the outcome back to it.
func (s *Session) initialize(ctx context.Context, attempt uint64, source interviews.QuestionSource) {
	ctx, span := tracer.Start(ctx, "initialize session")
	defer span.End()

	initCtx, cancel := context.WithTimeout(ctx, s.pacing.InitTimeout)
	defer cancel()

	var result initializationResult
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		stream, err := s.input.acquire(initCtx)
		if err != nil {
			result.deviceErr = fmt.Errorf("%w: %w", ErrDeviceAccess, err)
			return
		}
		result.stream = stream
	}()
	go func() {
		defer wg.Done()
		result.questions, result.questionsErr = s.fetchQuestions(initCtx, source)
	}()
	wg.Wait()

	if result.deviceErr != nil {
		span.RecordError(result.deviceErr)
	}
	if result.questionsErr != nil {
		span.RecordError(result.questionsErr)
	}
	if result.deviceErr != nil && result.questionsErr != nil {
		span.SetStatus(codes.Error, "initialization failed")
	}
	span.SetAttributes(
		attribute.Bool("interview.media.acquired", result.stream != nil),
		attribute.Int("interview.questions.custom", len(result.questions)),
	)

	if result.stream != nil && !s.park(attempt, result.stream) {
		result.stream.Close()
		return
	}
	// A parked stream is closed by cleanup if the loop never gets to it.
	s.enqueue(func() { s.initialized(attempt, result) })
}

// park holds stream until the loop takes it with unpark. It refuses once the
// session has ended.
func (s *Session) park(attempt uint64, stream media.Stream) bool {
	s.parkedMu.Lock()
	defer s.parkedMu.Unlock()

	if s.isClosed() {
		return false
	}
	if s.parkedStreams == nil {
		s.parkedStreams = map[uint64]media.Stream{}
	}
	s.parkedStreams[attempt] = stream
	return true
}

func (s *Session) unpark(attempt uint64) {
	s.parkedMu.Lock()
	defer s.parkedMu.Unlock()
	delete(s.parkedStreams, attempt)
}

func (s *Session) closeParkedStreams() {
	s.parkedMu.Lock()
	parked := s.parkedStreams
	s.parkedStreams = nil
	s.parkedMu.Unlock()

	for _, stream := range parked {
		stream.Close()
	}
}

func (s *Session) fetchQuestions(ctx context.Context, source interviews.QuestionSource) ([]interviews.Question, error) {
	if source == nil {
		return nil, nil
	}

	ctx, span := tracer.Start(ctx, "fetch questions")
	defer span.End()

	var questions []interviews.Question
	err := panicSafeNamedWorker("fetch questions", func(ctx context.Context) error {
		var err error
		questions, err = source.Questions(ctx)
		return err
	})(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("interview.questions.count", len(questions)))
	return questions, nil
}

func (s *Session) initialized(attempt uint64, result initializationResult) {
	if result.stream != nil {
		s.unpark(attempt)
	}
	if attempt != s.attempt || s.State() != StateInitializing {
		if result.stream != nil {
			result.stream.Close()
		}
		return
	}

	var err error
	switch {
	case errors.Is(result.questionsErr, interviews.ErrInterviewUnavailable):
		err = errors.Join(ErrInitialization, result.questionsErr)
	case result.deviceErr != nil && result.questionsErr != nil:
		err = errors.Join(ErrInitialization, result.deviceErr, result.questionsErr)
	}
	if err != nil {
		if result.stream != nil {
			result.stream.Close()
		}
		logger.Error("failed to initialize interview", "error", err)
		s.setState(StateFailed)
		s.emit(events.NewSessionFailed(err))
		return
	}

	if result.deviceErr != nil {
		logger.Warn("continuing without media devices", "error", result.deviceErr)
	}
	if result.questionsErr != nil {
		logger.Warn("failed to load questions, using fallback questions", "error", result.questionsErr)
	}

	questions := normalizeQuestionIDs(ResolveQuestions(result.questions, s.fallbackQuestions))
	s.sequencer = NewQuestionSequencer(questions)

	if result.stream != nil {
		s.capture.setEncodingInfo(result.stream.EncodingInfo())
		s.input.attach(s.ctx, result.stream, s.capture.sendAudio)
	}

	s.isDegraded = result.stream == nil || !s.capture.isConfigured()
	if s.isDegraded {
		reason := result.deviceErr
		if reason == nil {
			reason = errSpeechCaptureUnavailable
		}
		logger.Warn("speech capture unavailable, answers must be submitted manually", "reason", reason)
		s.emit(events.NewSessionDegraded(reason))
	}

	logger.Info("interview initialized", "questions", len(questions), "degraded", s.isDegraded)
	s.after(s.pacing.GreetingLeadIn, s.greet)
}
