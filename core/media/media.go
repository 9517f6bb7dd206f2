// Package media describes the camera and microphone tracks a session holds
// while it is running.
package media

import (
	"context"

	"github.com/koscakluka/ema-interview/core/audio"
)

type Track string

const (
	TrackCamera     Track = "camera"
	TrackMicrophone Track = "microphone"
)

// Stream is an acquired set of participant media tracks.
type Stream interface {
	EncodingInfo() audio.EncodingInfo
	// Stream delivers microphone frames to onAudio until ctx is done.
	Stream(ctx context.Context, onAudio func(audio []byte)) error
	// SetTrackEnabled enables or disables a track without releasing it.
	SetTrackEnabled(track Track, enabled bool)
	Close()
}

// Devices grants access to the participant's camera and microphone.
type Devices interface {
	Acquire(ctx context.Context) (Stream, error)
}
