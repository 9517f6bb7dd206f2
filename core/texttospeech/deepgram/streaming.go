package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/ema-interview/core/audio"
	"github.com/koscakluka/ema-interview/core/texttospeech"
)

var (
	errRequestClosed    = errors.New("streaming request closed")
	errRequestCancelled = errors.New("streaming request cancelled")
	errTextCompleted    = errors.New("streaming request text already completed")
)

type streamingRequest struct {
	ws   *websocket.Conn
	wsMu sync.Mutex

	// textBuffer holds the marked segments in order. The first segment is
	// the one Deepgram is currently generating; the rest are sent once the
	// previous flush is confirmed.
	textBuffer []string
	mu         sync.Mutex

	options texttospeech.TextToSpeechOptions

	textComplete bool
	cancelled    bool
	closed       bool
	ended        bool
}

// NewSpeechGeneratorV0 opens a dedicated speech stream for one utterance.
func (c *TextToSpeechClient) NewSpeechGeneratorV0(ctx context.Context, opts ...texttospeech.TextToSpeechOption) (texttospeech.SpeechGeneratorV0, error) {
	req := &streamingRequest{
		options: texttospeech.TextToSpeechOptions{
			SpeechAudioCallback:   func([]byte) {},
			SpeechMarkCallback:    func(string) {},
			SpeechEndedCallbackV0: func(texttospeech.SpeechEndedReport) {},
			ErrorCallback:         func(error) {},
			EncodingInfo:          audio.GetDefaultEncodingInfo(),
		},
	}
	for _, opt := range opts {
		opt(&req.options)
	}

	var err error
	if req.ws, err = c.connectWebsocket(ctx, req.options.EncodingInfo); err != nil {
		return nil, fmt.Errorf("failed to open websocket: %w", err)
	}

	go req.processIncomingMessages()

	return req, nil
}

func (c *TextToSpeechClient) connectWebsocket(ctx context.Context, encodingInfo audio.EncodingInfo) (*websocket.Conn, error) {
	speakURL, err := url.Parse(c.speakURL)
	if err != nil {
		return nil, fmt.Errorf("invalid speak url: %w", err)
	}

	urlValues := speakURL.Query()
	urlValues.Set("encoding", encodingInfo.Format.Name())
	urlValues.Set("sample_rate", strconv.Itoa(encodingInfo.SampleRate))
	urlValues.Set("model", string(c.voice))
	urlValues.Set("container", "none")
	speakURL.RawQuery = urlValues.Encode()

	conn, _, err := c.dialer.DialContext(ctx, speakURL.String(),
		http.Header{"Authorization": {"token " + c.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

// processIncomingMessages runs the stream callbacks. Callbacks are invoked
// while the request is locked and must not call back into the generator.
func (r *streamingRequest) processIncomingMessages() {
	for {
		msgType, msg, err := r.ws.ReadMessage()
		if err != nil {
			r.mu.Lock()
			closed := r.closed
			r.mu.Unlock()

			if !closed && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				logger.Warn("deepgram speech stream read failed", "error", err)
				r.options.ErrorCallback(fmt.Errorf("failed to read deepgram speech stream: %w", err))
			}
			_ = r.Close()
			_ = r.ws.Close()
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			if len(msg) > 0 {
				r.options.SpeechAudioCallback(msg)
			}
		case websocket.TextMessage:
			var parsedMsg struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(msg, &parsedMsg); err != nil {
				logger.Debug("failed to unmarshal deepgram message", "error", err)
				continue
			}

			switch parsedMsg.Type {
			case "Flushed":
				r.onFlushed()
			case "Warning", "Error":
				logger.Warn("deepgram speech stream reported a problem", "message", string(msg))
			}
		}
	}
}

func (r *streamingRequest) onFlushed() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.textBuffer) == 0 {
		return
	}

	r.options.SpeechMarkCallback(r.textBuffer[0])
	r.textBuffer = r.textBuffer[1:]

	if len(r.textBuffer) == 0 {
		if r.textComplete {
			r.endLocked(texttospeech.SpeechEndedReport{})
		}
		return
	}

	if r.textBuffer[0] != "" {
		if err := r.sendWebsocketMessage(sendTextMsg(r.textBuffer[0])); err != nil {
			logger.Warn("failed to send deepgram text", "error", err)
		}
	}
	if len(r.textBuffer) > 1 || r.textComplete {
		if err := r.sendWebsocketMessage(flushMsg); err != nil {
			logger.Warn("failed to flush deepgram buffer", "error", err)
		}
	}
}

func (r *streamingRequest) checkWritableLocked() error {
	switch {
	case r.closed:
		return errRequestClosed
	case r.cancelled:
		return errRequestCancelled
	case r.textComplete:
		return errTextCompleted
	}
	return nil
}

func (r *streamingRequest) SendText(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkWritableLocked(); err != nil {
		return err
	}

	if len(r.textBuffer) == 0 {
		r.textBuffer = append(r.textBuffer, "")
	}

	if len(r.textBuffer) == 1 {
		if err := r.sendWebsocketMessage(sendTextMsg(text)); err != nil {
			return fmt.Errorf("failed to send websocket send text message: %w", err)
		}
	}
	r.textBuffer[len(r.textBuffer)-1] += text
	return nil
}

func (r *streamingRequest) Mark() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkWritableLocked(); err != nil {
		return err
	}

	return r.markLocked()
}

func (r *streamingRequest) markLocked() error {
	if len(r.textBuffer) == 0 || r.textBuffer[len(r.textBuffer)-1] == "" {
		return nil
	}

	if len(r.textBuffer) == 1 {
		if err := r.sendWebsocketMessage(flushMsg); err != nil {
			return fmt.Errorf("failed to send websocket flush message: %w", err)
		}
	}

	// Deepgram sometimes drops text sent right after a flush, so the next
	// segment is held back until the flush is confirmed.
	r.textBuffer = append(r.textBuffer, "")
	return nil
}

func (r *streamingRequest) EndOfText() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errRequestClosed
	} else if r.cancelled {
		return errRequestCancelled
	} else if r.textComplete {
		return nil
	}

	if err := r.markLocked(); err != nil {
		return err
	}
	if n := len(r.textBuffer); n > 0 && r.textBuffer[n-1] == "" {
		r.textBuffer = r.textBuffer[:n-1]
	}
	r.textComplete = true

	if len(r.textBuffer) == 0 {
		r.endLocked(texttospeech.SpeechEndedReport{})
	}
	return nil
}

func (r *streamingRequest) Cancel() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}

	r.cancelled = true
	r.textBuffer = nil
	clearErr := r.sendWebsocketMessage(clearMsg)
	r.closeLocked()
	if clearErr != nil {
		return fmt.Errorf("failed to send websocket clear message: %w", clearErr)
	}
	return nil
}

func (r *streamingRequest) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeLocked()
}

func (r *streamingRequest) endLocked(report texttospeech.SpeechEndedReport) {
	if r.ended {
		return
	}
	r.ended = true
	r.options.SpeechEndedCallbackV0(report)
	r.closeLocked()
}

func (r *streamingRequest) closeLocked() error {
	if r.closed {
		return nil
	}
	r.closed = true

	if err := r.sendWebsocketMessage(closeMsg); err != nil {
		if aggressiveCloseErr := r.ws.Close(); aggressiveCloseErr != nil {
			return fmt.Errorf("failed to close websocket: %w", errors.Join(err, aggressiveCloseErr))
		}
	}
	return nil
}

type websocketMessage struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

func sendTextMsg(text string) websocketMessage {
	return websocketMessage{Type: "Speak", Text: text}
}

var (
	flushMsg = websocketMessage{Type: "Flush"}
	clearMsg = websocketMessage{Type: "Clear"}
	closeMsg = websocketMessage{Type: "Close"}
)

func (r *streamingRequest) sendWebsocketMessage(msg websocketMessage) error {
	r.wsMu.Lock()
	defer r.wsMu.Unlock()
	if r.ws == nil {
		return fmt.Errorf("websocket connection closed")
	}

	if err := r.ws.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write to websocket: %w", err)
	}
	return nil
}
