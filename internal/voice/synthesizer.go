// Package voice turns text into spoken MP3 audio.
package voice

import (
	"context"
	"fmt"
)

// AudioMIMEType is the content type of every synthesized clip.
const AudioMIMEType = "audio/mpeg"

// Synthesizer converts text to MP3 bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Config selects and configures a Synthesizer.
type Config struct {
	Provider string // "openai" or "elevenlabs"

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	OpenAIVoice   string

	ElevenLabsAPIKey  string
	ElevenLabsBaseURL string
	ElevenLabsVoiceID string
	ElevenLabsModelID string
}

// New returns the Synthesizer named by cfg.Provider.
func New(cfg Config) (Synthesizer, error) {
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAISpeech(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.OpenAIVoice)
	case "elevenlabs":
		return NewElevenLabsClient(cfg.ElevenLabsAPIKey, cfg.ElevenLabsBaseURL, cfg.ElevenLabsVoiceID, cfg.ElevenLabsModelID)
	default:
		return nil, fmt.Errorf("unknown TTS provider %q", cfg.Provider)
	}
}
