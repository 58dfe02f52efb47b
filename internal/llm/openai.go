// Package llm talks to OpenAI-compatible chat models.
package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"

	"github.com/Lllllllleong/clarityassist/internal/extract"
)

var ErrNoChoices = errors.New("openai returned no choices")

type OpenAIClient struct {
	Client *openai.Client
	Model  string
}

// NewOpenAIClient builds a client for apiKey. baseURL overrides the API root
// when non-empty.
func NewOpenAIClient(apiKey, baseURL, model string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("NewOpenAIClient: apiKey cannot be empty")
	}
	if model == "" {
		return nil, errors.New("NewOpenAIClient: model cannot be empty")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIClient{
		Client: openai.NewClientWithConfig(config),
		Model:  model,
	}, nil
}

// GenerateText sends prompt as a single user message.
func (c *OpenAIClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})
}

// ReadImageText sends the image inline as a data URL together with the OCR prompt.
func (c *OpenAIClient) ReadImageText(ctx context.Context, mimeType string, data []byte) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
	return c.complete(ctx, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: extract.OCRPrompt},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
				URL:    dataURL,
				Detail: openai.ImageURLDetailHigh,
			}},
		},
	})
}

func (c *OpenAIClient) complete(ctx context.Context, msg openai.ChatCompletionMessage) (string, error) {
	resp, err := c.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.Model,
		Messages: []openai.ChatCompletionMessage{msg},
	})
	if err != nil {
		slog.Error("OpenAI chat completion failed.", "model", c.Model, "error", err)
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}
