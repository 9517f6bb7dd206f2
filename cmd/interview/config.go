package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jinzhu/copier"
	"github.com/joho/godotenv"
	interview "github.com/koscakluka/ema-interview/core"
)

const (
	audioBackendMiniaudio = "miniaudio"
	audioBackendPortaudio = "portaudio"
	audioBackendNone      = "none"
)

type config struct {
	PortalURL    string `env:"INTERVIEW_PORTAL_URL"`
	Token        string `env:"INTERVIEW_TOKEN"`
	QuestionFile string `env:"INTERVIEW_QUESTION_FILE"`

	DeepgramAPIKey string `env:"DEEPGRAM_API_KEY"`
	STTModel       string `env:"INTERVIEW_STT_MODEL" envDefault:"nova-3"`
	Language       string `env:"INTERVIEW_LANGUAGE" envDefault:"en-US"`
	Voice          string `env:"INTERVIEW_VOICE"`

	AudioBackend    string `env:"INTERVIEW_AUDIO_BACKEND" envDefault:"miniaudio"`
	AudioBufferSize int    `env:"INTERVIEW_AUDIO_BUFFER_SIZE" envDefault:"1024"`

	LogFile  string `env:"INTERVIEW_LOG_FILE" envDefault:"interview.log"`
	LogLevel string `env:"INTERVIEW_LOG_LEVEL" envDefault:"info"`

	Pacing pacingConfig `envPrefix:"INTERVIEW_PACING_"`
}

// pacingConfig mirrors [interview.Pacing]. Fields are pointers so an explicit
// zero, such as MIN_TRANSCRIPT_LENGTH=0, is told apart from an unset variable.
// Unset fields keep their defaults.
type pacingConfig struct {
	GreetingLeadIn       *time.Duration `env:"GREETING_LEAD_IN"`
	GreetingPause        *time.Duration `env:"GREETING_PAUSE"`
	QuestionLeadIn       *time.Duration `env:"QUESTION_LEAD_IN"`
	ListenDelay          *time.Duration `env:"LISTEN_DELAY"`
	AcknowledgmentLeadIn *time.Duration `env:"ACKNOWLEDGMENT_LEAD_IN"`
	AcknowledgmentPause  *time.Duration `env:"ACKNOWLEDGMENT_PAUSE"`
	CompletionDelay      *time.Duration `env:"COMPLETION_DELAY"`
	SilencePeriod        *time.Duration `env:"SILENCE_PERIOD"`
	RestartBackoff       *time.Duration `env:"RESTART_BACKOFF"`
	InitTimeout          *time.Duration `env:"INIT_TIMEOUT"`
	MinTranscriptLength  *int           `env:"MIN_TRANSCRIPT_LENGTH"`
}

// loadConfig reads envFile, when present, and then the environment.
func loadConfig(envFile string) (config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

func (c config) validate() error {
	var errs []error

	if c.PortalURL != "" && c.Token == "" {
		errs = append(errs, errors.New("an interview token is required with a portal URL"))
	}
	if c.Token != "" && c.PortalURL == "" {
		errs = append(errs, errors.New("a portal URL is required with an interview token"))
	}

	switch strings.ToLower(c.AudioBackend) {
	case audioBackendMiniaudio, audioBackendPortaudio, audioBackendNone:
	default:
		errs = append(errs, fmt.Errorf("unknown audio backend %q", c.AudioBackend))
	}
	if c.AudioBufferSize <= 0 {
		errs = append(errs, fmt.Errorf("audio buffer size must be positive, got %d", c.AudioBufferSize))
	}

	if _, err := c.pacing(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// pacing layers the configured overrides over [interview.DefaultPacing]. Nil
// fields are skipped and set ones are copied through, zero values included.
func (c config) pacing() (interview.Pacing, error) {
	pacing := interview.DefaultPacing()
	if err := copier.CopyWithOption(&pacing, &c.Pacing, copier.Option{IgnoreEmpty: true}); err != nil {
		return interview.Pacing{}, fmt.Errorf("failed to apply pacing overrides: %w", err)
	}
	if err := pacing.Validate(); err != nil {
		return interview.Pacing{}, err
	}
	return pacing, nil
}
