package interview

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/koscakluka/ema-interview/core/audio"
	"github.com/koscakluka/ema-interview/core/speechtotext"
)

// speechCapture owns the single recognition stream of a session. A stream
// that ends on its own is reopened after a short backoff for as long as
// shouldListen reports true.
type speechCapture struct {
	client       SpeechToText
	clock        Clock
	backoff      time.Duration
	shouldListen func() bool

	// onTranscript receives recognizer results tagged with the listening
	// generation they belong to.
	onTranscript func(generation uint64, transcript string, isFinal bool)
	onError      func(err error)

	mu           sync.Mutex
	ctx          context.Context
	encodingInfo audio.EncodingInfo
	active       bool
	// generation increments every time listening starts or stops so results
	// from an earlier listening period can be told apart.
	generation   uint64
	attempt      *captureAttempt
	restartTimer Timer
}

type captureAttempt struct {
	cancel    context.CancelFunc
	streaming atomic.Bool
	ended     atomic.Bool
}

func newSpeechCapture(client SpeechToText, clock Clock, backoff time.Duration, shouldListen func() bool) *speechCapture {
	if shouldListen == nil {
		shouldListen = func() bool { return true }
	}

	return &speechCapture{
		client:       client,
		clock:        clock,
		backoff:      backoff,
		shouldListen: shouldListen,
		onTranscript: func(uint64, string, bool) {},
		onError:      func(error) {},
	}
}

func (c *speechCapture) isConfigured() bool { return c != nil && c.client != nil }

func (c *speechCapture) setCallbacks(onTranscript func(generation uint64, transcript string, isFinal bool), onError func(error)) {
	if c == nil {
		return
	}

	if onTranscript != nil {
		c.onTranscript = onTranscript
	}
	if onError != nil {
		c.onError = onError
	}
}

func (c *speechCapture) setEncodingInfo(encodingInfo audio.EncodingInfo) {
	if c == nil {
		return
	}

	c.mu.Lock()
	c.encodingInfo = encodingInfo
	c.mu.Unlock()
}

// start opens a recognition stream unless one is already active and returns
// the listening generation.
func (c *speechCapture) start(ctx context.Context) uint64 {
	if !c.isConfigured() {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return c.generation
	}

	c.active = true
	c.generation++
	c.ctx = ctx
	c.openLocked()
	return c.generation
}

// stop closes the active stream and cancels a pending restart. Results still
// in flight belong to the previous generation.
func (c *speechCapture) stop() {
	if !c.isConfigured() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return
	}

	c.active = false
	c.generation++
	if c.restartTimer != nil {
		c.restartTimer.Stop()
		c.restartTimer = nil
	}
	if c.attempt != nil {
		c.attempt.cancel()
		c.attempt = nil
	}
}

func (c *speechCapture) isActive() bool {
	if !c.isConfigured() {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *speechCapture) sendAudio(audio []byte) {
	if !c.isConfigured() {
		return
	}

	c.mu.Lock()
	attempt := c.attempt
	c.mu.Unlock()

	if attempt == nil || !attempt.streaming.Load() {
		return
	}

	if err := c.client.SendAudio(audio); err != nil {
		logger.Debug("dropped captured audio", "error", err)
	}
}

func (c *speechCapture) openLocked() {
	streamCtx, cancel := context.WithCancel(c.ctx)
	attempt := &captureAttempt{cancel: cancel}
	c.attempt = attempt
	c.restartTimer = nil

	generation := c.generation
	opts := []speechtotext.TranscriptionOption{
		speechtotext.WithInterimTranscriptionCallback(func(transcript string) {
			c.onTranscript(generation, transcript, false)
		}),
		speechtotext.WithTranscriptionCallback(func(transcript string) {
			c.onTranscript(generation, transcript, true)
		}),
		speechtotext.WithStreamEndedCallback(func(err error) {
			c.ended(attempt, err)
		}),
		speechtotext.WithErrorCallback(func(err error) {
			c.onError(fmt.Errorf("%w: %w", ErrRecognition, err))
		}),
	}
	if !c.encodingInfo.IsZero() {
		opts = append(opts, speechtotext.WithEncodingInfo(c.encodingInfo))
	}

	go func() {
		if err := c.client.Transcribe(streamCtx, opts...); err != nil {
			c.ended(attempt, err)
			return
		}

		if !attempt.ended.Load() {
			attempt.streaming.Store(true)
		}
	}()
}

func (c *speechCapture) ended(attempt *captureAttempt, err error) {
	if !attempt.ended.CompareAndSwap(false, true) {
		return
	}
	attempt.streaming.Store(false)
	attempt.cancel()

	c.mu.Lock()
	if c.attempt != attempt || !c.active {
		c.mu.Unlock()
		return
	}

	restart := c.shouldListen()
	if restart {
		// The delay stays fixed so a dropped stream never leaves the
		// participant unheard for longer than one backoff.
		c.restartTimer = c.clock.AfterFunc(c.backoff, func() { c.restart(attempt) })
	} else {
		c.active = false
		c.attempt = nil
	}
	c.mu.Unlock()

	if err != nil {
		c.onError(fmt.Errorf("%w: %w", ErrRecognition, err))
	}
	if restart {
		captureRestartCounter.Add(context.Background(), 1)
		logger.Debug("recognition stream ended, restarting", "error", err)
	}
}

func (c *speechCapture) restart(previous *captureAttempt) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attempt != previous || !c.active {
		return
	}

	if !c.shouldListen() {
		c.active = false
		c.attempt = nil
		c.restartTimer = nil
		return
	}

	c.openLocked()
}
