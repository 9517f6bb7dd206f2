package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"
	"github.com/koscakluka/ema-interview/core/audio"
	"github.com/koscakluka/ema-interview/core/speechtotext"
)

const closeGracePeriod = time.Second

var errNoActiveStream = errors.New("no active transcription stream")

// Transcribe opens a live transcription stream. It returns once the
// websocket is connected; results are delivered through the configured
// callbacks until ctx is done or Deepgram closes the stream.
func (c *TranscriptionClient) Transcribe(ctx context.Context, opts ...speechtotext.TranscriptionOption) error {
	options := speechtotext.TranscriptionOptions{
		EncodingInfo: audio.GetDefaultEncodingInfo(),
		Language:     c.language,
	}
	for _, opt := range opts {
		opt(&options)
	}
	options = withNoopCallbacks(options)

	encoding, err := convertEncoding(options.EncodingInfo)
	if err != nil {
		return fmt.Errorf("invalid encoding: %w", err)
	}

	conn, err := c.connectWebsocket(ctx, connectionOptions{
		sampleRate: encoding.SampleRate,
		encoding:   encoding.Format.Name(),
		channels:   encoding.Channels,
		language:   options.Language,
	})
	if err != nil {
		return fmt.Errorf("failed to open websocket: %w", err)
	}

	stream := newTranscriptionStream(conn, options)
	c.streamMu.Lock()
	previous := c.stream
	c.stream = stream
	c.streamMu.Unlock()
	if previous != nil {
		previous.close()
	}

	go func() {
		err := stream.readAndProcessMessages(ctx)
		c.streamMu.Lock()
		if c.stream == stream {
			c.stream = nil
		}
		c.streamMu.Unlock()
		stream.end(err)
	}()
	go stream.generateSilence(ctx)
	context.AfterFunc(ctx, stream.close)

	return nil
}

// SendAudio forwards captured audio to the active stream.
func (c *TranscriptionClient) SendAudio(audio []byte) error {
	c.streamMu.Lock()
	stream := c.stream
	c.streamMu.Unlock()

	if stream == nil {
		return errNoActiveStream
	}
	return stream.sendAudio(audio)
}

// Close ends the active stream, if any.
func (c *TranscriptionClient) Close() error {
	c.streamMu.Lock()
	stream := c.stream
	c.stream = nil
	c.streamMu.Unlock()

	if stream != nil {
		stream.close()
	}
	return nil
}

type connectionOptions struct {
	sampleRate int
	encoding   string
	channels   int
	language   string
}

func (c *TranscriptionClient) connectWebsocket(ctx context.Context, options connectionOptions) (*websocket.Conn, error) {
	listenURL, err := url.Parse(c.listenURL)
	if err != nil {
		return nil, fmt.Errorf("invalid listen url: %w", err)
	}

	queryParams := listenURL.Query()
	queryParams.Set("encoding", options.encoding)
	queryParams.Set("sample_rate", strconv.Itoa(options.sampleRate))
	queryParams.Set("channels", strconv.Itoa(options.channels))
	queryParams.Set("model", c.model)
	queryParams.Set("language", options.language)
	queryParams.Set("smart_format", "true")
	queryParams.Set("interim_results", "true")
	queryParams.Set("utterance_end_ms", "1000")
	queryParams.Set("endpointing", "300")
	queryParams.Set("vad_events", "true")
	listenURL.RawQuery = queryParams.Encode()

	conn, _, err := c.dialer.DialContext(ctx, listenURL.String(),
		http.Header{"Authorization": {"Token " + c.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

type transcriptionStream struct {
	conn    *websocket.Conn
	connMu  sync.Mutex
	options speechtotext.TranscriptionOptions

	lastAudioAt atomic.Int64

	// accumulatedTranscript holds the finalized segments of the current
	// utterance. Only the reader goroutine touches it.
	accumulatedTranscript string
	unendedSegment        bool

	closing atomic.Bool
	endOnce sync.Once
}

func newTranscriptionStream(conn *websocket.Conn, options speechtotext.TranscriptionOptions) *transcriptionStream {
	stream := &transcriptionStream{conn: conn, options: options}
	stream.lastAudioAt.Store(time.Now().UnixNano())
	return stream
}

func withNoopCallbacks(options speechtotext.TranscriptionOptions) speechtotext.TranscriptionOptions {
	if options.InterimTranscriptionCallback == nil {
		options.InterimTranscriptionCallback = func(string) {}
	}
	if options.TranscriptionCallback == nil {
		options.TranscriptionCallback = func(string) {}
	}
	if options.SpeechStartedCallback == nil {
		options.SpeechStartedCallback = func() {}
	}
	if options.SpeechEndedCallback == nil {
		options.SpeechEndedCallback = func() {}
	}
	if options.StreamEndedCallback == nil {
		options.StreamEndedCallback = func(error) {}
	}
	if options.ErrorCallback == nil {
		options.ErrorCallback = func(error) {}
	}
	return options
}

func (s *transcriptionStream) sendAudio(audio []byte) error {
	if s.closing.Load() {
		return errNoActiveStream
	}

	s.connMu.Lock()
	defer s.connMu.Unlock()

	s.lastAudioAt.Store(time.Now().UnixNano())
	if err := s.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return fmt.Errorf("failed to write to deepgram client: %w", err)
	}
	return nil
}

func (s *transcriptionStream) sendSilence(audio []byte) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if err := s.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return fmt.Errorf("failed to write silence to deepgram client: %w", err)
	}
	return nil
}

func (s *transcriptionStream) sendControl(messageType string) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if err := s.conn.WriteJSON(struct {
		Type string `json:"type"`
	}{Type: messageType}); err != nil {
		return fmt.Errorf("failed to send %s to deepgram: %w", messageType, err)
	}
	return nil
}

// close asks Deepgram to flush and close the stream and forces the socket
// shut if it does not comply within the grace period.
func (s *transcriptionStream) close() {
	if !s.closing.CompareAndSwap(false, true) {
		return
	}

	if err := s.sendControl(string(api.TypeCloseStreamResponse)); err != nil {
		_ = s.conn.Close()
		return
	}
	_ = s.conn.SetReadDeadline(time.Now().Add(closeGracePeriod))
}

func (s *transcriptionStream) end(err error) {
	s.endOnce.Do(func() {
		s.closing.Store(true)
		_ = s.conn.Close()
		s.options.StreamEndedCallback(err)
	})
}

func (s *transcriptionStream) readAndProcessMessages(ctx context.Context) error {
	for {
		msgType, msg, err := s.conn.ReadMessage()
		if err != nil {
			if s.closing.Load() || ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			logger.Warn("deepgram transcription stream ended unexpectedly", "error", err)
			return fmt.Errorf("failed to read deepgram websocket message: %w", err)
		}
		if msgType != websocket.BinaryMessage {
			s.processMessage(msg)
		}
	}
}

func (s *transcriptionStream) processMessage(msg []byte) {
	var parsedMsg struct {
		Type        string `json:"type"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		logger.Debug("failed to unmarshal deepgram message", "error", err)
		return
	}

	switch api.TypeResponse(parsedMsg.Type) {
	case api.TypeMessageResponse:
		var msgResp api.MessageResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			logger.Debug("failed to unmarshal deepgram results", "error", err)
			return
		}

		transcript := ""
		if len(msgResp.Channel.Alternatives) > 0 {
			transcript = strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript)
		}

		if msgResp.IsFinal {
			if transcript != "" {
				s.accumulatedTranscript = joinTranscript(s.accumulatedTranscript, transcript)
				s.options.InterimTranscriptionCallback(s.accumulatedTranscript)
			}
			if msgResp.SpeechFinal {
				s.onSpeechEnded()
			}
			return
		}

		if transcript != "" {
			s.options.InterimTranscriptionCallback(joinTranscript(s.accumulatedTranscript, transcript))
		}

	case api.TypeUtteranceEndResponse:
		var msgResp api.UtteranceEndResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			logger.Debug("failed to unmarshal deepgram utterance end", "error", err)
			return
		}

		if s.unendedSegment || s.accumulatedTranscript != "" {
			s.onSpeechEnded()
		}

	case api.TypeSpeechStartedResponse:
		var msgResp api.SpeechStartedResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			logger.Debug("failed to unmarshal deepgram speech started", "error", err)
			return
		}

		s.unendedSegment = true
		s.options.SpeechStartedCallback()

	case "Error":
		s.options.ErrorCallback(fmt.Errorf("deepgram error: %s", parsedMsg.Description))
	}
}

func (s *transcriptionStream) onSpeechEnded() {
	s.unendedSegment = false
	fullTranscript := strings.TrimSpace(s.accumulatedTranscript)
	s.accumulatedTranscript = ""
	if fullTranscript != "" {
		s.options.TranscriptionCallback(fullTranscript)
	}
	s.options.SpeechEndedCallback()
}

func joinTranscript(accumulated, segment string) string {
	if accumulated == "" {
		return segment
	}
	return accumulated + " " + segment
}

// generateSilence keeps the socket alive while no audio is flowing, first by
// padding with short silence and then with periodic KeepAlive messages.
func (s *transcriptionStream) generateSilence(ctx context.Context) {
	type silenceGeneratorState string
	const (
		silenceGeneratorStateWaiting   silenceGeneratorState = "waiting"
		silenceGeneratorStateSilence   silenceGeneratorState = "silence"
		silenceGeneratorStateKeepAlive silenceGeneratorState = "keepAlive"
	)

	const chunkDuration = 50 * time.Millisecond
	ticker := time.NewTicker(chunkDuration)
	defer ticker.Stop()

	chunk := make([]byte, s.options.EncodingInfo.ChunkSize(chunkDuration))
	for i := range chunk {
		chunk[i] = s.options.EncodingInfo.SilenceValue()
	}

	sinceAudio := func() time.Duration {
		return time.Since(time.Unix(0, s.lastAudioAt.Load()))
	}

	state := silenceGeneratorStateWaiting
	var firstSilenceTime, lastKeepAliveTime time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.closing.Load() {
				return
			}

			switch state {
			case silenceGeneratorStateWaiting:
				if sinceAudio() > chunkDuration {
					state = silenceGeneratorStateSilence
					firstSilenceTime = time.Now()
				}

			case silenceGeneratorStateSilence:
				if sinceAudio() < chunkDuration {
					state = silenceGeneratorStateWaiting
					continue
				}
				if time.Since(firstSilenceTime) >= time.Second {
					state = silenceGeneratorStateKeepAlive
					lastKeepAliveTime = time.Now()
					continue
				}

				if len(chunk) > 0 {
					if err := s.sendSilence(chunk); err != nil {
						logger.Debug("failed to send silence to deepgram", "error", err)
					}
				}

			case silenceGeneratorStateKeepAlive:
				if sinceAudio() < chunkDuration {
					state = silenceGeneratorStateWaiting
					continue
				}

				if time.Since(lastKeepAliveTime) >= 5*time.Second {
					lastKeepAliveTime = time.Now()
					if err := s.sendControl("KeepAlive"); err != nil {
						logger.Debug("failed to send keep alive to deepgram", "error", err)
					}
				}
			}
		}
	}
}
