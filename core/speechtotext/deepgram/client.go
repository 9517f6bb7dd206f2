package deepgram

import (
	"fmt"
	"os"
	"sync"

	"github.com/gorilla/websocket"
)

const (
	defaultListenURL = "wss://api.deepgram.com/v1/listen"
	defaultModel     = "nova-3"
	defaultLanguage  = "en-US"
)

type TranscriptionClient struct {
	apiKey    string
	listenURL string
	model     string
	language  string

	dialer *websocket.Dialer

	streamMu sync.Mutex
	stream   *transcriptionStream
}

type TranscriptionClientOption func(*TranscriptionClient)

// WithAPIKey sets the key used to authenticate against Deepgram. When unset,
// DEEPGRAM_API_KEY is read from the environment.
func WithAPIKey(apiKey string) TranscriptionClientOption {
	return func(c *TranscriptionClient) { c.apiKey = apiKey }
}

func WithModel(model string) TranscriptionClientOption {
	return func(c *TranscriptionClient) { c.model = model }
}

func WithLanguage(language string) TranscriptionClientOption {
	return func(c *TranscriptionClient) { c.language = language }
}

// WithListenURL overrides the live transcription endpoint.
func WithListenURL(listenURL string) TranscriptionClientOption {
	return func(c *TranscriptionClient) { c.listenURL = listenURL }
}

func NewTranscriptionClient(opts ...TranscriptionClientOption) (*TranscriptionClient, error) {
	client := &TranscriptionClient{
		listenURL: defaultListenURL,
		model:     defaultModel,
		language:  defaultLanguage,
		dialer:    websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(client)
	}

	if client.apiKey == "" {
		apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
		if !ok || apiKey == "" {
			return nil, fmt.Errorf("deepgram api key not found")
		}
		client.apiKey = apiKey
	}

	return client, nil
}
