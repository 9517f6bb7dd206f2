package main

import (
	"fmt"
	"strings"

	interview "github.com/koscakluka/ema-interview/core"
	"github.com/koscakluka/ema-interview/core/audio/miniaudio"
	"github.com/koscakluka/ema-interview/core/audio/portaudio"
	"github.com/koscakluka/ema-interview/core/media"
)

// audioBackend captures the microphone and plays engine speech.
type audioBackend interface {
	media.Devices
	interview.AudioOutput
	Close()
}

// newAudioBackend opens the named backend. It returns nil for "none".
func newAudioBackend(name string, bufferSize int) (audioBackend, error) {
	switch strings.ToLower(name) {
	case audioBackendMiniaudio:
		client, err := miniaudio.NewClient()
		if err != nil {
			return nil, fmt.Errorf("failed to open miniaudio backend: %w", err)
		}
		return client, nil
	case audioBackendPortaudio:
		client, err := portaudio.NewClient(bufferSize)
		if err != nil {
			return nil, fmt.Errorf("failed to open portaudio backend: %w", err)
		}
		return client, nil
	case audioBackendNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown audio backend %q", name)
	}
}
