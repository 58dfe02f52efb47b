package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io"
	elevenLabsTimeout = 2 * time.Minute
	// DefaultElevenLabsVoiceID is the "Rachel" stock voice.
	DefaultElevenLabsVoiceID = "21m00Tcm4TlvDq8N1wA8"
	defaultElevenLabsModelID = "eleven_multilingual_v2"
)

type ElevenLabsClient struct {
	APIKey     string
	BaseURL    string
	VoiceID    string
	ModelID    string
	HTTPClient *http.Client
}

func NewElevenLabsClient(apiKey, baseURL, voiceID, modelID string) (*ElevenLabsClient, error) {
	if apiKey == "" {
		return nil, errors.New("ELEVENLABS_API_KEY is required for elevenlabs speech")
	}
	if baseURL == "" {
		baseURL = elevenLabsBaseURL
	}
	if voiceID == "" {
		voiceID = DefaultElevenLabsVoiceID
	}
	if modelID == "" {
		modelID = defaultElevenLabsModelID
	}
	return &ElevenLabsClient{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		VoiceID:    voiceID,
		ModelID:    modelID,
		HTTPClient: &http.Client{Timeout: elevenLabsTimeout},
	}, nil
}

// Synthesize splits text longer than ElevenLabsMaxInput into several requests.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return synthesizeChunks(ctx, text, ElevenLabsMaxInput, c.synthesize)
}

func (c *ElevenLabsClient) synthesize(ctx context.Context, text string) ([]byte, error) {
	base, err := url.Parse(fmt.Sprintf("%s/v1/text-to-speech/%s", c.BaseURL, url.PathEscape(c.VoiceID)))
	if err != nil {
		return nil, fmt.Errorf("build elevenlabs url: %w", err)
	}
	q := base.Query()
	q.Set("output_format", "mp3_44100_128")
	base.RawQuery = q.Encode()

	payload := map[string]any{
		"text":     text,
		"model_id": c.ModelID,
		"voice_settings": map[string]float64{
			"stability":        0.75,
			"similarity_boost": 0.7,
		},
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal elevenlabs payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base.String(), bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build elevenlabs request: %w", err)
	}
	req.Header.Set("xi-api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", AudioMIMEType)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("elevenlabs: bad status %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read elevenlabs audio: %w", err)
	}
	return audio, nil
}
