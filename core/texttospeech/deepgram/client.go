package deepgram

import (
	"fmt"
	"os"
	"slices"

	"github.com/gorilla/websocket"
)

const defaultSpeakURL = "wss://api.deepgram.com/v1/speak"

type TextToSpeechClient struct {
	apiKey   string
	speakURL string
	voice    Voice

	dialer *websocket.Dialer
}

type TextToSpeechClientOption func(*TextToSpeechClient)

// WithAPIKey sets the key used to authenticate against Deepgram. When unset,
// DEEPGRAM_API_KEY is read from the environment.
func WithAPIKey(apiKey string) TextToSpeechClientOption {
	return func(c *TextToSpeechClient) { c.apiKey = apiKey }
}

// WithSpeakURL overrides the streaming speech endpoint.
func WithSpeakURL(speakURL string) TextToSpeechClientOption {
	return func(c *TextToSpeechClient) { c.speakURL = speakURL }
}

func NewTextToSpeechClient(voice Voice, opts ...TextToSpeechClientOption) (*TextToSpeechClient, error) {
	if voice == "" {
		voice = DefaultVoice
	}
	if !slices.Contains(GetAvailableVoices(), voice) {
		return nil, fmt.Errorf("invalid voice %q", voice)
	}

	client := &TextToSpeechClient{
		speakURL: defaultSpeakURL,
		voice:    voice,
		dialer:   websocket.DefaultDialer,
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

func (c *TextToSpeechClient) Voice() Voice { return c.voice }
