// Package portaudio provides microphone capture and speaker playback backed
// by PortAudio blocking streams.
package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
	"github.com/koscakluka/ema-interview/core/audio"
	"github.com/koscakluka/ema-interview/core/media"
)

type Client struct {
	bufferSize int

	output   *portaudio.Stream
	out      []int16
	outputMu sync.Mutex

	leftoverAudio []byte

	acquireMu sync.Mutex
	input     *portaudio.Stream
	in        []int16
}

// NewClient initializes PortAudio and opens the default output stream.
// bufferSize is the number of frames per read or write.
func NewClient(bufferSize int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	out := make([]int16, bufferSize)
	output, err := portaudio.OpenDefaultStream(0, 1, audio.DefaultSampleRate, bufferSize, out)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to open portaudio output stream: %w", err)
	}
	if err := output.Start(); err != nil {
		_ = output.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to start portaudio output stream: %w", err)
	}

	return &Client{bufferSize: bufferSize, output: output, out: out}, nil
}

// Acquire opens the default input stream as the participant's microphone.
func (c *Client) Acquire(context.Context) (media.Stream, error) {
	c.acquireMu.Lock()
	defer c.acquireMu.Unlock()

	if c.input == nil {
		in := make([]int16, c.bufferSize)
		input, err := portaudio.OpenDefaultStream(1, 0, audio.DefaultSampleRate, c.bufferSize, in)
		if err != nil {
			return nil, fmt.Errorf("failed to open portaudio input stream: %w", err)
		}
		c.input, c.in = input, in
	}

	stream := &inputStream{client: c}
	stream.microphoneOn.Store(true)
	return stream, nil
}

func (c *Client) Close() {
	c.acquireMu.Lock()
	if c.input != nil {
		_ = c.input.Close()
		c.input = nil
	}
	c.acquireMu.Unlock()

	c.outputMu.Lock()
	_ = c.output.Close()
	c.outputMu.Unlock()
	_ = portaudio.Terminate()
}

// SendAudio plays whole buffers immediately and keeps the remainder for the
// next call.
func (c *Client) SendAudio(audio []byte) error {
	c.outputMu.Lock()
	defer c.outputMu.Unlock()

	bufferSize := c.bufferSize * 2
	pending := append(c.leftoverAudio, audio...)
	for len(pending) >= bufferSize {
		if err := c.writeLocked(pending[:bufferSize]); err != nil {
			c.leftoverAudio = nil
			return err
		}
		pending = pending[bufferSize:]
	}
	c.leftoverAudio = append([]byte(nil), pending...)

	return nil
}

func (c *Client) ClearBuffer() {
	c.outputMu.Lock()
	defer c.outputMu.Unlock()
	c.leftoverAudio = nil
}

// AwaitMark plays out the remainder padded with silence. Writes block until
// PortAudio accepts them, so once it returns the audio has been queued for
// the device.
func (c *Client) AwaitMark() error {
	c.outputMu.Lock()
	defer c.outputMu.Unlock()

	if len(c.leftoverAudio) == 0 {
		return nil
	}

	chunk := make([]byte, c.bufferSize*2)
	copy(chunk, c.leftoverAudio)
	c.leftoverAudio = nil
	return c.writeLocked(chunk)
}

func (c *Client) writeLocked(chunk []byte) error {
	if err := binary.Read(bytes.NewReader(chunk), binary.LittleEndian, c.out); err != nil {
		return fmt.Errorf("failed to decode audio chunk: %w", err)
	}
	if err := c.output.Write(); err != nil {
		return fmt.Errorf("failed to write to portaudio stream: %w", err)
	}
	return nil
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.EncodingInfo{
		SampleRate: audio.DefaultSampleRate,
		Format:     audio.EncodingLinear16,
		Channels:   1,
	}
}

type inputStream struct {
	client *Client

	microphoneOn atomic.Bool
	closed       atomic.Bool
}

func (s *inputStream) EncodingInfo() audio.EncodingInfo { return s.client.EncodingInfo() }

func (s *inputStream) Stream(ctx context.Context, onAudio func(audio []byte)) error {
	s.client.acquireMu.Lock()
	input, in := s.client.input, s.client.in
	s.client.acquireMu.Unlock()
	if input == nil || s.closed.Load() {
		return fmt.Errorf("input stream closed")
	}

	if err := input.Start(); err != nil {
		return fmt.Errorf("failed to start portaudio input stream: %w", err)
	}
	defer input.Stop()

	for ctx.Err() == nil && !s.closed.Load() {
		if err := input.Read(); err != nil {
			logger.Debug("portaudio input read failed", "error", err)
			continue
		}
		if !s.microphoneOn.Load() {
			continue
		}

		audioBuffer := bytes.Buffer{}
		_ = binary.Write(&audioBuffer, binary.LittleEndian, in)
		onAudio(audioBuffer.Bytes())
	}
	return nil
}

func (s *inputStream) SetTrackEnabled(track media.Track, enabled bool) {
	if track == media.TrackMicrophone {
		s.microphoneOn.Store(enabled)
	}
}

func (s *inputStream) Close() { s.closed.Store(true) }
