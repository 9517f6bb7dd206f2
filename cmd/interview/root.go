package main

import (
	"github.com/spf13/cobra"
)

const app = "interview"

type flags struct {
	envFile      string
	portalURL    string
	token        string
	questionFile string
	audioBackend string
	logFile      string
	debug        bool
}

func newRootCommand() *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:   app,
		Short: "interview runs a spoken interview in the terminal",
		Long: "interview greets the participant, asks each question aloud, listens for the answer\n" +
			"and submits the answers once every question has been answered.\n\n" +
			"Questions come from the HR portal (--portal-url and --token), from a YAML file\n" +
			"(--questions) or, when neither is set, from a built-in general list.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(f.envFile)
			if err != nil {
				return err
			}
			f.apply(cmd, &cfg)
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, f.debug)
		},
	}

	root.Flags().StringVar(&f.envFile, "env-file", ".env", "file with environment variables to load")
	root.Flags().StringVar(&f.portalURL, "portal-url", "", "HR portal base URL (env INTERVIEW_PORTAL_URL)")
	root.Flags().StringVar(&f.token, "token", "", "interview token (env INTERVIEW_TOKEN)")
	root.Flags().StringVar(&f.questionFile, "questions", "", "YAML question file (env INTERVIEW_QUESTION_FILE)")
	root.Flags().StringVar(&f.audioBackend, "audio", "", "audio backend: miniaudio, portaudio or none (env INTERVIEW_AUDIO_BACKEND)")
	root.Flags().StringVar(&f.logFile, "log-file", "", "log file (env INTERVIEW_LOG_FILE)")
	root.Flags().BoolVarP(&f.debug, "debug", "d", false, "debug logging")

	root.AddCommand(newSchemaCommand())
	return root
}

// apply overrides cfg with the flags that were set explicitly.
func (f flags) apply(cmd *cobra.Command, cfg *config) {
	changed := cmd.Flags().Changed
	if changed("portal-url") {
		cfg.PortalURL = f.portalURL
	}
	if changed("token") {
		cfg.Token = f.token
	}
	if changed("questions") {
		cfg.QuestionFile = f.questionFile
	}
	if changed("audio") {
		cfg.AudioBackend = f.audioBackend
	}
	if changed("log-file") {
		cfg.LogFile = f.logFile
	}
}
