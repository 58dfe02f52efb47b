package voice

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"
)

type OpenAISpeech struct {
	client *openai.Client
	model  openai.SpeechModel
	voice  openai.SpeechVoice
}

func NewOpenAISpeech(apiKey, baseURL, model, voice string) (*OpenAISpeech, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is required for openai speech")
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = string(openai.TTSModel1)
	}
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}
	return &OpenAISpeech{
		client: openai.NewClientWithConfig(config),
		model:  openai.SpeechModel(model),
		voice:  openai.SpeechVoice(voice),
	}, nil
}

// Synthesize splits text longer than OpenAIMaxInput into several requests.
func (s *OpenAISpeech) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return synthesizeChunks(ctx, text, OpenAIMaxInput, s.synthesize)
}

func (s *OpenAISpeech) synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          1.0,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read openai speech: %w", err)
	}
	return audio, nil
}
