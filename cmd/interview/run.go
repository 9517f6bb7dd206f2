package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	interview "github.com/koscakluka/ema-interview/core"
	"github.com/koscakluka/ema-interview/core/events"
	"github.com/koscakluka/ema-interview/core/interviews"
	"github.com/koscakluka/ema-interview/core/interviews/portal"
	"github.com/koscakluka/ema-interview/core/interviews/questionfile"
	speechtotext "github.com/koscakluka/ema-interview/core/speechtotext/deepgram"
	texttospeech "github.com/koscakluka/ema-interview/core/texttospeech/deepgram"
	"go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap"
)

func run(ctx context.Context, cfg config, debug bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := newLogger(cfg.LogFile, cfg.LogLevel, debug)
	if err != nil {
		return err
	}
	defer log.Sync()
	global.SetLoggerProvider(newZapLoggerProvider(log))

	pacing, err := cfg.pacing()
	if err != nil {
		return err
	}

	source, sink, err := collaborators(cfg)
	if err != nil {
		return err
	}

	opts := []interview.SessionOption{interview.WithPacing(pacing)}
	if sink != nil {
		opts = append(opts, interview.WithCompletionSink(sink))
	}

	sttClient, err := speechtotext.NewTranscriptionClient(
		speechtotext.WithAPIKey(cfg.DeepgramAPIKey),
		speechtotext.WithModel(cfg.STTModel),
		speechtotext.WithLanguage(cfg.Language),
	)
	if err != nil {
		log.Warn("speech recognition disabled", zap.Error(err))
	} else {
		opts = append(opts, interview.WithSpeechToTextClient(sttClient))
	}

	ttsClient, err := texttospeech.NewTextToSpeechClient(texttospeech.Voice(cfg.Voice), texttospeech.WithAPIKey(cfg.DeepgramAPIKey))
	if err != nil {
		log.Warn("speech synthesis disabled", zap.Error(err))
	} else {
		opts = append(opts, interview.WithTextToSpeechClient(ttsClient))
	}

	backend, err := newAudioBackend(cfg.AudioBackend, cfg.AudioBufferSize)
	if err != nil {
		log.Warn("audio disabled", zap.Error(err))
	}
	if backend != nil {
		defer backend.Close()
		opts = append(opts, interview.WithMediaDevices(backend), interview.WithAudioOutput(backend))
	}

	session, err := interview.NewSession(opts...)
	if err != nil {
		return fmt.Errorf("failed to create interview session: %w", err)
	}
	defer session.Teardown()

	completions := make(chan interviews.Completion, 1)
	err = session.Start(ctx, source,
		interview.WithCompleteCallback(func(completion interviews.Completion) {
			select {
			case completions <- completion:
			default:
			}
		}),
		interview.WithStateChangedCallback(func(from, to interview.State) {
			log.Info("session state changed", zap.String("from", from.String()), zap.String("to", to.String()))
		}),
		interview.WithEventCallback(func(event events.Event) {
			logEvent(log, event)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to start interview: %w", err)
	}

	program := tea.NewProgram(newModel(session), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("interview screen failed: %w", err)
	}

	session.Teardown()
	<-session.Done()

	select {
	case completion := <-completions:
		return report(completion, log)
	default:
		if session.State() == interview.StateFailed {
			return errors.New("interview could not be initialized, see the log for details")
		}
		fmt.Println("Interview ended before all questions were answered.")
		return nil
	}
}

// collaborators picks the question source and completion sink. The portal
// takes precedence over a question file.
func collaborators(cfg config) (interviews.QuestionSource, interviews.CompletionSink, error) {
	if cfg.PortalURL != "" {
		client, err := portal.NewClient(cfg.PortalURL, cfg.Token)
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil
	}
	if cfg.QuestionFile != "" {
		return questionfile.New(cfg.QuestionFile), nil, nil
	}
	return nil, nil, nil
}

func report(completion interviews.Completion, log *zap.Logger) error {
	log.Info("interview completed",
		zap.Int("answers", len(completion.Answers)),
		zap.Int("turns", len(completion.Transcript)),
		zap.Time("completed_at", completion.CompletedAt),
	)

	fmt.Printf("Interview complete: %d answers recorded.\n", len(completion.Answers))
	if completion.Err != nil {
		log.Error("failed to submit answers", zap.Error(completion.Err))
		return fmt.Errorf("answers were recorded but could not be submitted: %w", completion.Err)
	}
	return nil
}

func logEvent(log *zap.Logger, event events.Event) {
	fields := []zap.Field{zap.String("kind", string(event.Kind())), zap.Time("at", event.Timestamp())}

	switch event := event.(type) {
	case events.SessionDegraded:
		log.Warn("session degraded", append(fields, zap.Error(event.Reason))...)
	case events.SessionFailed:
		log.Error("session failed", append(fields, zap.Error(event.Err))...)
	case events.CaptureFailed:
		log.Warn("speech capture failed", append(fields, zap.Error(event.Err))...)
	case events.AnswerRecorded:
		log.Info("answer recorded", append(fields, zap.String("question_id", event.Answer.QuestionID))...)
	default:
		log.Debug("session event", fields...)
	}
}
