package miniaudio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

type playbackClient struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig

	leftoverAudio []byte
	drainWaiters  []drainWaiter

	mu      sync.Mutex
	audioMu sync.Mutex
}

func (c *playbackClient) Init(audioContext *malgo.AllocatedContext, sampleRate int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	channels := 1
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	c.config = malgo.DefaultDeviceConfig(malgo.Playback)
	c.config.SampleRate = uint32(sampleRate)
	c.config.Playback.Format = format
	c.config.Playback.Channels = uint32(channels)
	c.config.Alsa.NoMMap = 1
	c.config.PeriodSizeInFrames = uint32(sampleRate / 10) // ~100ms of audio
	c.config.Periods = 4

	c.audioContext = audioContext

	var err error
	if c.device, err = malgo.InitDevice(
		c.audioContext.Context,
		c.config,
		malgo.DeviceCallbacks{Data: c.processAudio(bytesPerFrame)},
	); err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	return nil
}

func (c *playbackClient) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return fmt.Errorf("device not initialized")
	}

	if err := c.device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	return nil
}

func (c *playbackClient) SendAudio(audio []byte) error {
	if c.device == nil {
		return fmt.Errorf("device not initialized")
	} else if !c.device.IsStarted() {
		return fmt.Errorf("device not started")
	}

	c.audioMu.Lock()
	defer c.audioMu.Unlock()
	c.leftoverAudio = append(c.leftoverAudio, audio...)
	return nil
}

// ClearBuffer drops queued audio and releases anyone waiting for playback
// to drain.
func (c *playbackClient) ClearBuffer() {
	c.audioMu.Lock()
	c.leftoverAudio = nil
	released := c.drainWaiters
	c.drainWaiters = nil
	c.audioMu.Unlock()

	for _, waiter := range released {
		close(waiter.drained)
	}
}

// AwaitMark blocks until everything queued so far has been played.
func (c *playbackClient) AwaitMark() error {
	<-c.drained()
	return nil
}

// drained returns a channel closed once the audio queued before the call has
// been handed to the device.
func (c *playbackClient) drained() <-chan struct{} {
	c.audioMu.Lock()
	defer c.audioMu.Unlock()

	drained := make(chan struct{})
	if len(c.leftoverAudio) == 0 {
		close(drained)
		return drained
	}

	c.drainWaiters = append(c.drainWaiters, drainWaiter{remaining: len(c.leftoverAudio), drained: drained})
	return drained
}

func (c *playbackClient) Uninit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return nil
	}

	c.device.Uninit()
	c.device = nil
	c.ClearBuffer()

	return nil
}

// drainWaiter is released once remaining more bytes have been played.
type drainWaiter struct {
	remaining int
	drained   chan struct{}
}

func (c *playbackClient) processAudio(bytesPerFrame int) malgo.DataProc {
	return func(pOutput, _ []byte, frameCount uint32) {
		need := int(frameCount) * bytesPerFrame

		c.audioMu.Lock()
		defer c.audioMu.Unlock()

		played := min(need, len(c.leftoverAudio))
		copied := copy(pOutput, c.leftoverAudio[:played])
		clear(pOutput[copied:])
		c.leftoverAudio = c.leftoverAudio[played:]
		c.releaseDrainedLocked(played)
	}
}

func (c *playbackClient) releaseDrainedLocked(played int) {
	kept := c.drainWaiters[:0]
	for _, waiter := range c.drainWaiters {
		waiter.remaining -= played
		if waiter.remaining <= 0 {
			close(waiter.drained)
			continue
		}
		kept = append(kept, waiter)
	}
	c.drainWaiters = kept
}
