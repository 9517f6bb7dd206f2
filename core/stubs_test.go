package interview

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/koscakluka/ema-interview/core/audio"
	"github.com/koscakluka/ema-interview/core/interviews"
	"github.com/koscakluka/ema-interview/core/media"
	"github.com/koscakluka/ema-interview/core/speechtotext"
	"github.com/koscakluka/ema-interview/core/texttospeech"
)

func waitForCondition(t *testing.T, timeout time.Duration, description string, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Fatalf("timed out waiting for %s", description)
}

// fakeClock only moves when told to. Timer callbacks run on the goroutine
// that advances the clock.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	timer := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, timer)
	return timer
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// pending reports the number of timers that are neither stopped nor fired.
func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, timer := range c.timers {
		if !timer.stopped && !timer.fired {
			count++
		}
	}
	return count
}

// Advance moves the clock forward by d and fires every timer due by then.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.nextLocked()
		if next == nil || next.at.After(target) {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		next.fired = true
		c.mu.Unlock()

		next.f()
	}
}

// advanceToNext fires the earliest pending timer and reports whether there
// was one.
func (c *fakeClock) advanceToNext() bool {
	c.mu.Lock()
	next := c.nextLocked()
	if next == nil {
		c.mu.Unlock()
		return false
	}
	c.now = next.at
	next.fired = true
	c.mu.Unlock()

	next.f()
	return true
}

func (c *fakeClock) nextLocked() *fakeTimer {
	var next *fakeTimer
	for _, timer := range c.timers {
		if timer.stopped || timer.fired {
			continue
		}
		if next == nil || timer.at.Before(next.at) {
			next = timer
		}
	}
	return next
}

// settle waits until every task queued on the session loop so far has run.
func settle(session *Session) {
	done := make(chan struct{})
	if !session.post(func() { close(done) }) {
		return
	}

	select {
	case <-done:
	case <-session.Done():
	}
}

// advanceUntil fires pending timers one at a time, letting the session loop
// settle in between, until condition holds.
func advanceUntil(t *testing.T, clock *fakeClock, session *Session, description string, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		settle(session)
		if condition() {
			return
		}
		if !clock.advanceToNext() {
			time.Sleep(2 * time.Millisecond)
		}
	}

	t.Fatalf("timed out advancing clock until %s", description)
}

type speechToTextStub struct {
	mu            sync.Mutex
	streams       []*speechToTextStream
	transcribeErr error
	sentAudio     atomic.Int32
	closed        atomic.Bool
}

type speechToTextStream struct {
	ctx     context.Context
	options speechtotext.TranscriptionOptions

	endOnce sync.Once
}

func (stub *speechToTextStub) Transcribe(ctx context.Context, opts ...speechtotext.TranscriptionOption) error {
	options := speechtotext.TranscriptionOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	stub.mu.Lock()
	err := stub.transcribeErr
	stub.mu.Unlock()
	if err != nil {
		return err
	}

	stream := &speechToTextStream{ctx: ctx, options: options}
	stub.mu.Lock()
	stub.streams = append(stub.streams, stream)
	stub.mu.Unlock()

	context.AfterFunc(ctx, func() { stream.end(nil) })
	return nil
}

func (stub *speechToTextStub) SendAudio([]byte) error {
	stub.sentAudio.Add(1)
	return nil
}

func (stub *speechToTextStub) Close() error {
	stub.closed.Store(true)
	return nil
}

func (stub *speechToTextStub) streamCount() int {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return len(stub.streams)
}

func (stub *speechToTextStub) stream(index int) *speechToTextStream {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return stub.streams[index]
}

// activeStreams counts streams whose context is still live.
func (stub *speechToTextStub) activeStreams() int {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	count := 0
	for _, stream := range stub.streams {
		if stream.ctx.Err() == nil {
			count++
		}
	}
	return count
}

func (stream *speechToTextStream) final(transcript string) {
	if stream.options.TranscriptionCallback != nil {
		stream.options.TranscriptionCallback(transcript)
	}
}

func (stream *speechToTextStream) interim(transcript string) {
	if stream.options.InterimTranscriptionCallback != nil {
		stream.options.InterimTranscriptionCallback(transcript)
	}
}

func (stream *speechToTextStream) end(err error) {
	stream.endOnce.Do(func() {
		if stream.options.StreamEndedCallback != nil {
			stream.options.StreamEndedCallback(err)
		}
	})
}

type textToSpeechStub struct {
	mu        sync.Mutex
	spoken    []string
	err       error
	generated atomic.Int32
	// hold keeps generators from finishing until released.
	hold chan struct{}
}

func (stub *textToSpeechStub) NewSpeechGeneratorV0(_ context.Context, opts ...texttospeech.TextToSpeechOption) (texttospeech.SpeechGeneratorV0, error) {
	stub.mu.Lock()
	err := stub.err
	stub.mu.Unlock()
	if err != nil {
		return nil, err
	}

	options := texttospeech.TextToSpeechOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	stub.generated.Add(1)
	return &speechGeneratorStub{client: stub, options: options}, nil
}

func (stub *textToSpeechStub) spokenTexts() []string {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return slices.Clone(stub.spoken)
}

type speechGeneratorStub struct {
	client  *textToSpeechStub
	options texttospeech.TextToSpeechOptions

	mu        sync.Mutex
	text      string
	cancelled bool
}

func (g *speechGeneratorStub) SendText(text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancelled {
		return errors.New("generator cancelled")
	}
	g.text += text
	return nil
}

func (g *speechGeneratorStub) Mark() error { return nil }

func (g *speechGeneratorStub) EndOfText() error {
	g.mu.Lock()
	text := g.text
	g.mu.Unlock()

	g.client.mu.Lock()
	g.client.spoken = append(g.client.spoken, text)
	hold := g.client.hold
	g.client.mu.Unlock()

	go func() {
		if hold != nil {
			<-hold
		}
		g.mu.Lock()
		cancelled := g.cancelled
		g.mu.Unlock()
		if cancelled {
			return
		}
		if g.options.SpeechAudioCallback != nil {
			g.options.SpeechAudioCallback([]byte{1, 2})
		}
		if g.options.SpeechEndedCallbackV0 != nil {
			g.options.SpeechEndedCallbackV0(texttospeech.SpeechEndedReport{})
		}
	}()
	return nil
}

func (g *speechGeneratorStub) Cancel() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelled = true
	return nil
}

func (g *speechGeneratorStub) Close() error { return nil }

type recordingAudioOutput struct {
	sent    atomic.Int32
	cleared atomic.Int32
}

func (o *recordingAudioOutput) EncodingInfo() audio.EncodingInfo { return audio.GetDefaultEncodingInfo() }

func (o *recordingAudioOutput) SendAudio([]byte) error {
	o.sent.Add(1)
	return nil
}

func (o *recordingAudioOutput) ClearBuffer() { o.cleared.Add(1) }

func (o *recordingAudioOutput) AwaitMark() error { return nil }

type mediaDevicesStub struct {
	err    error
	stream *mediaStreamStub
}

func (d *mediaDevicesStub) Acquire(context.Context) (media.Stream, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.stream, nil
}

// blockingMediaDevices hands out stream only once release is closed.
type blockingMediaDevices struct {
	stream   *mediaStreamStub
	acquired chan struct{}
	release  chan struct{}
}

func newBlockingMediaDevices(stream *mediaStreamStub) *blockingMediaDevices {
	return &blockingMediaDevices{
		stream:   stream,
		acquired: make(chan struct{}),
		release:  make(chan struct{}),
	}
}

func (d *blockingMediaDevices) Acquire(context.Context) (media.Stream, error) {
	close(d.acquired)
	<-d.release
	return d.stream, nil
}

type mediaStreamStub struct {
	mu      sync.Mutex
	tracks  map[media.Track]bool
	closed  bool
	onAudio func([]byte)

	streaming atomic.Int32
}

func newMediaStreamStub() *mediaStreamStub {
	return &mediaStreamStub{tracks: map[media.Track]bool{}}
}

func (s *mediaStreamStub) EncodingInfo() audio.EncodingInfo { return audio.GetDefaultEncodingInfo() }

func (s *mediaStreamStub) Stream(ctx context.Context, onAudio func([]byte)) error {
	s.mu.Lock()
	s.onAudio = onAudio
	s.mu.Unlock()

	s.streaming.Add(1)
	defer s.streaming.Add(-1)
	<-ctx.Done()
	return nil
}

func (s *mediaStreamStub) SetTrackEnabled(track media.Track, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks[track] = enabled
}

func (s *mediaStreamStub) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *mediaStreamStub) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *mediaStreamStub) trackEnabled(track media.Track) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracks[track]
}

// sendFrame pushes a captured frame as if it came from the microphone.
func (s *mediaStreamStub) sendFrame(frame []byte) {
	s.mu.Lock()
	onAudio := s.onAudio
	s.mu.Unlock()

	if onAudio != nil {
		onAudio(frame)
	}
}

type fixedAcknowledgments string

func (a fixedAcknowledgments) Phrases() []string { return []string{string(a)} }
func (a fixedAcknowledgments) Pick() string      { return string(a) }

type recordingSink struct {
	mu          sync.Mutex
	completions []interviews.Completion
	err         error
}

func (s *recordingSink) Complete(_ context.Context, completion interviews.Completion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completions = append(s.completions, completion)
	return s.err
}

func (s *recordingSink) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.completions)
}

func testQuestions(count int) []interviews.Question {
	questions := make([]interviews.Question, 0, count)
	for i := range count {
		questions = append(questions, interviews.Question{
			ID:   string(rune('a' + i)),
			Text: "Question " + string(rune('A'+i)) + "?",
			Type: interviews.QuestionTypeGeneral,
		})
	}
	return questions
}
