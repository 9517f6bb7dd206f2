package interview

import (
	"context"
	"fmt"
	"strings"

	"github.com/koscakluka/ema-interview/core/events"
	"github.com/koscakluka/ema-interview/core/interviews"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

const (
	commitTriggerAuto   = "auto"
	commitTriggerManual = "manual"
)

func (s *Session) setState(to State) {
	from := s.State()
	if from == to || from.IsTerminal() {
		return
	}

	if from == StateAwaitingResponse {
		s.silence.Cancel()
	}

	s.state.Store(int32(to))
	logger.Debug("session state changed", "from", from.String(), "to", to.String())

	s.emit(events.NewSessionStateChanged(from.String(), to.String()))
	if s.opts.onStateChanged != nil {
		s.opts.onStateChanged(from, to)
	}
}

func (s *Session) greet() {
	s.setState(StateGreeting)
	s.appendEngineTurn(s.greeting, "")
	s.speak(s.greeting)
	s.after(s.pacing.GreetingPause, s.askQuestion)
}

// askQuestion asks the current question or, once the questions are
// exhausted, closes the interview.
func (s *Session) askQuestion() {
	question, ok := s.sequencer.Current()
	if !ok {
		s.complete()
		return
	}

	s.setState(StateAskingQuestion)
	s.isTyping = true
	s.after(s.pacing.QuestionLeadIn, func() {
		s.isTyping = false
		turn := s.appendEngineTurn(question.Text, question.ID)
		s.askedAt = turn.Timestamp
		s.speak(question.Text)
		s.after(s.pacing.ListenDelay, s.awaitResponse)
	})
}

func (s *Session) awaitResponse() {
	s.setState(StateAwaitingResponse)
	s.resetAnswer()

	if s.isDegraded {
		return
	}

	s.captureGeneration = s.capture.start(s.ctx)
	s.setListening(s.capture.isActive())
}

func (s *Session) onTranscript(generation uint64, transcript string, isFinal bool) {
	if s.State() != StateAwaitingResponse || generation != s.captureGeneration {
		return
	}

	s.emit(events.NewTranscriptUpdated(transcript, isFinal))

	transcript = strings.TrimSpace(transcript)
	if !isFinal {
		if transcript == "" {
			return
		}
		s.setPendingTranscript(strings.Join(append(s.segments[:len(s.segments):len(s.segments)], transcript), " "))
		if s.silence.IsArmed() {
			// The participant is still talking; restart the quiet period.
			s.silence.Arm(strings.Join(s.segments, " "))
		}
		return
	}

	if transcript == "" {
		return
	}
	s.segments = append(s.segments, transcript)
	answer := strings.Join(s.segments, " ")
	s.setPendingTranscript(answer)
	// Only a segment that is long enough on its own starts the countdown.
	// Short fragments like "Yes." still count toward the answer.
	if IsQualifying(transcript, s.pacing.MinTranscriptLength) {
		s.silence.Arm(answer)
	}
}

func (s *Session) onCaptureError(err error) {
	logger.Warn("speech capture error", "error", err, "state", s.State().String())
	s.emit(events.NewCaptureFailed(err))
}

// commit records text as the answer to the current question and moves on to
// the acknowledgment.
func (s *Session) commit(text, trigger string) {
	if s.State() != StateAwaitingResponse {
		return
	}
	question, ok := s.sequencer.Current()
	if !ok {
		return
	}
	text = strings.TrimSpace(text)

	s.silence.Cancel()
	s.stopListening()

	answer, err := s.recorder.Record(question.ID, text, s.askedAt, s.clock.Now())
	if err != nil {
		logger.Error("failed to record answer", "error", err, "question_id", question.ID)
	} else {
		turn := s.recorder.AppendTurn(interviews.SpeakerParticipant, text, answer.AnsweredAt, question.ID)
		s.emit(events.NewTurnAppended(turn))
		s.emit(events.NewAnswerRecorded(answer))
		commitCounter.Add(s.ctx, 1, metric.WithAttributes(attribute.String("trigger", trigger)))
	}
	s.resetAnswer()

	s.setState(StateAcknowledging)
	s.after(s.pacing.AcknowledgmentLeadIn, s.acknowledge)
}

func (s *Session) acknowledge() {
	phrase := s.acknowledgments.Pick()
	s.appendEngineTurn(phrase, "")
	s.speak(phrase)
	s.sequencer.Advance()
	s.after(s.pacing.AcknowledgmentPause, s.askQuestion)
}

func (s *Session) complete() {
	s.setState(StateCompleting)
	s.stopListening()
	s.appendEngineTurn(s.closingStatement, "")
	s.speak(s.closingStatement)
	s.after(s.pacing.CompletionDelay, s.handOff)
}

// handOff delivers the answers to the completion sink off the loop.
func (s *Session) handOff() {
	completion := interviews.Completion{
		Answers:     s.recorder.All(),
		Transcript:  s.recorder.Transcript(),
		CompletedAt: s.clock.Now(),
	}

	go func(ctx context.Context) {
		err := s.deliver(ctx, completion)
		s.enqueue(func() { s.finishCompletion(completion, err) })
	}(s.ctx)
}

func (s *Session) deliver(ctx context.Context, completion interviews.Completion) error {
	if s.completionSink == nil {
		return nil
	}

	ctx, span := tracer.Start(ctx, "complete session")
	defer span.End()
	span.SetAttributes(attribute.Int("interview.answers.count", len(completion.Answers)))

	err := panicSafeNamedWorker("completion sink", func(ctx context.Context) error {
		return s.completionSink.Complete(ctx, completion)
	})(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (s *Session) finishCompletion(completion interviews.Completion, err error) {
	if s.State() != StateCompleting {
		return
	}

	if err != nil {
		completion.Err = fmt.Errorf("%w: %w", ErrCompletionSink, err)
		logger.Error("failed to hand off interview answers", "error", completion.Err, "answers", len(completion.Answers))
	}

	logger.Info("interview completed", "answers", len(completion.Answers))
	s.setState(StateCompleted)
	s.emit(events.NewSessionCompleted(completion))
	s.end()
}

func (s *Session) appendEngineTurn(text, questionID string) interviews.Turn {
	turn := s.recorder.AppendTurn(interviews.SpeakerEngine, text, s.clock.Now(), questionID)
	s.emit(events.NewTurnAppended(turn))
	return turn
}

func (s *Session) speak(text string) {
	if s.isMuted {
		return
	}
	s.synth.speak(s.ctx, text)
}

func (s *Session) stopListening() {
	s.capture.stop()
	s.captureGeneration = 0
	s.setListening(false)
}

func (s *Session) setListening(isListening bool) {
	if s.isListening == isListening {
		return
	}
	s.isListening = isListening
	s.emit(events.NewListeningChanged(isListening))
}

func (s *Session) setSpeaking(isSpeaking bool, event events.Event) {
	s.isSpeaking = isSpeaking
	s.emit(event)
}

func (s *Session) setPendingTranscript(transcript string) {
	if s.pendingTranscript == transcript {
		return
	}
	s.pendingTranscript = transcript
	s.emit(events.NewPendingTranscriptUpdated(transcript))
}

func (s *Session) resetAnswer() {
	s.segments = nil
	s.setPendingTranscript("")
}
