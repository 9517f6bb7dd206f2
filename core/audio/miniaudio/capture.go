package miniaudio

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/ema-interview/core/audio"
	"github.com/koscakluka/ema-interview/core/media"
)

type captureClient struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig

	onAudio atomic.Pointer[func(audio []byte)]

	mu sync.Mutex
}

func (c *captureClient) Init(audioContext *malgo.AllocatedContext, sampleRate int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	channels := 1
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	c.config = malgo.DefaultDeviceConfig(malgo.Capture)
	c.config.SampleRate = uint32(sampleRate)
	c.config.Capture.Format = format
	c.config.Capture.Channels = uint32(channels)
	c.config.Alsa.NoMMap = 1
	c.config.PerformanceProfile = malgo.LowLatency
	c.config.PeriodSizeInFrames = 480
	c.config.Periods = 3

	c.audioContext = audioContext

	var err error
	c.device, err = malgo.InitDevice(c.audioContext.Context, c.config, malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			n := int(frameCount) * bytesPerFrame
			if len(pInput) < n || n == 0 {
				return
			}
			if onAudio := c.onAudio.Load(); onAudio != nil {
				frame := make([]byte, n)
				copy(frame, pInput[:n])
				(*onAudio)(frame)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize capture device: %w", err)
	}

	return nil
}

func (c *captureClient) Start(onAudio func(audio []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return fmt.Errorf("device not initialized")
	}

	c.onAudio.Store(&onAudio)
	if c.device.IsStarted() {
		return nil
	}

	if err := c.device.Start(); err != nil {
		c.onAudio.Store(nil)
		return fmt.Errorf("failed to start capture device: %w", err)
	}
	return nil
}

func (c *captureClient) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAudio.Store(nil)
	if c.device == nil || !c.device.IsStarted() {
		return nil
	}

	if err := c.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop device: %w", err)
	}
	return nil
}

func (c *captureClient) Uninit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}

	c.onAudio.Store(nil)
	return nil
}

// captureStream exposes the capture device as a participant media stream.
type captureStream struct {
	capture      *captureClient
	encodingInfo audio.EncodingInfo

	microphoneOn atomic.Bool
	cameraOn     atomic.Bool
	closed       atomic.Bool
}

func newCaptureStream(capture *captureClient, encodingInfo audio.EncodingInfo) *captureStream {
	stream := &captureStream{capture: capture, encodingInfo: encodingInfo}
	stream.microphoneOn.Store(true)
	stream.cameraOn.Store(true)
	return stream
}

func (s *captureStream) EncodingInfo() audio.EncodingInfo { return s.encodingInfo }

func (s *captureStream) Stream(ctx context.Context, onAudio func(audio []byte)) error {
	if s.closed.Load() {
		return fmt.Errorf("capture stream closed")
	}

	if err := s.capture.Start(func(frame []byte) {
		if s.microphoneOn.Load() {
			onAudio(frame)
		}
	}); err != nil {
		return err
	}

	<-ctx.Done()
	return s.capture.Stop()
}

func (s *captureStream) SetTrackEnabled(track media.Track, enabled bool) {
	switch track {
	case media.TrackMicrophone:
		s.microphoneOn.Store(enabled)
	case media.TrackCamera:
		s.cameraOn.Store(enabled)
	}
}

func (s *captureStream) Close() {
	if s.closed.CompareAndSwap(false, true) {
		_ = s.capture.Stop()
	}
}
