package interview

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/koscakluka/ema-interview/core/audio"
	"github.com/koscakluka/ema-interview/core/media"
)

// mediaInput holds the acquired camera and microphone stream and forwards
// microphone frames while the microphone track is on.
type mediaInput struct {
	devices media.Devices

	mu     sync.Mutex
	stream media.Stream
	cancel context.CancelFunc
	// streaming reports whether the stream goroutine is running.
	streaming atomic.Bool

	cameraOn     atomic.Bool
	microphoneOn atomic.Bool
}

func newMediaInput(devices media.Devices) *mediaInput {
	return &mediaInput{devices: devices}
}

func (m *mediaInput) isConfigured() bool { return m != nil && m.devices != nil }

// acquire requests device access. It blocks and must not run on the session
// loop.
func (m *mediaInput) acquire(ctx context.Context) (media.Stream, error) {
	if !m.isConfigured() {
		return nil, nil
	}

	return m.devices.Acquire(ctx)
}

// attach takes ownership of stream and starts forwarding its audio to onAudio
// until ctx is done or the stream is released. A previously attached stream
// is released first.
func (m *mediaInput) attach(ctx context.Context, stream media.Stream, onAudio func([]byte)) {
	if m == nil || stream == nil {
		return
	}
	if onAudio == nil {
		onAudio = func([]byte) {}
	}

	m.release()

	streamCtx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	m.stream = stream
	m.cancel = cancel
	m.mu.Unlock()

	m.cameraOn.Store(true)
	m.microphoneOn.Store(true)
	stream.SetTrackEnabled(media.TrackCamera, true)
	stream.SetTrackEnabled(media.TrackMicrophone, true)

	m.streaming.Store(true)
	go func() {
		defer m.streaming.Store(false)

		err := stream.Stream(streamCtx, func(audio []byte) {
			if m.microphoneOn.Load() {
				onAudio(audio)
			}
		})
		if err != nil && streamCtx.Err() == nil {
			logger.Warn("media stream stopped", "error", err)
		}
	}()
}

func (m *mediaInput) hasStream() bool {
	if m == nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stream != nil
}

func (m *mediaInput) encodingInfo() audio.EncodingInfo {
	if m == nil {
		return audio.EncodingInfo{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stream == nil {
		return audio.EncodingInfo{}
	}
	return m.stream.EncodingInfo()
}

func (m *mediaInput) isCameraOn() bool     { return m != nil && m.hasStream() && m.cameraOn.Load() }
func (m *mediaInput) isMicrophoneOn() bool { return m != nil && m.hasStream() && m.microphoneOn.Load() }

// toggleCamera flips the camera track and reports the new state. ok is false
// when no stream is held.
func (m *mediaInput) toggleCamera() (isOn bool, ok bool) {
	return m.toggle(media.TrackCamera, &m.cameraOn)
}

// toggleMicrophone flips the microphone track and reports the new state. ok
// is false when no stream is held.
func (m *mediaInput) toggleMicrophone() (isOn bool, ok bool) {
	return m.toggle(media.TrackMicrophone, &m.microphoneOn)
}

func (m *mediaInput) toggle(track media.Track, flag *atomic.Bool) (bool, bool) {
	if m == nil {
		return false, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stream == nil {
		return false, false
	}

	isOn := !flag.Load()
	flag.Store(isOn)
	m.stream.SetTrackEnabled(track, isOn)
	return isOn, true
}

// release stops forwarding and closes the held stream.
func (m *mediaInput) release() {
	if m == nil {
		return
	}

	m.mu.Lock()
	stream := m.stream
	cancel := m.cancel
	m.stream = nil
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if stream != nil {
		stream.Close()
	}
}
