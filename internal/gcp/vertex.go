package gcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/Lllllllleong/clarityassist/internal/extract"
)

// --- Text Model Prompts ---
const TextSystemPrompt = "You are a reading assistant that helps people understand documents. Follow the user's instruction exactly and respond only with the requested text."

// --- OCR Model Prompts ---
const OCRSystemPrompt = "You are an OCR engine. Transcribe the text visible in images faithfully, preserving reading order and line breaks."

// ErrEmptyCandidate is returned when the model answers without any text part.
var ErrEmptyCandidate = errors.New("gemini returned no text")

// VertexClient holds the pre-configured Gemini models used by the assistant.
type VertexClient struct {
	TextModel  *genai.GenerativeModel
	OCRModel   *genai.GenerativeModel
	baseClient *genai.Client
}

// NewVertexClient creates a client whose models both use modelName, which must
// accept image input.
func NewVertexClient(ctx context.Context, projectID, region, modelName string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}
	if modelName == "" {
		return nil, fmt.Errorf("NewVertexClient: modelName cannot be empty")
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	textModel := baseClient.GenerativeModel(modelName)
	textModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(TextSystemPrompt)},
	}

	ocrModel := baseClient.GenerativeModel(modelName)
	ocrModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(OCRSystemPrompt)},
	}
	ocrModel.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.0),
	}

	return &VertexClient{
		TextModel:  textModel,
		OCRModel:   ocrModel,
		baseClient: baseClient,
	}, nil
}

// GenerateText sends a single text prompt to the text model.
func (c *VertexClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.TextModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}
	return ResponseText(resp)
}

// ReadImageText asks the OCR model for the text in an image.
func (c *VertexClient) ReadImageText(ctx context.Context, mimeType string, data []byte) (string, error) {
	imagePart := genai.Blob{
		MIMEType: mimeType,
		Data:     data,
	}
	resp, err := c.OCRModel.GenerateContent(ctx, genai.Text(extract.OCRPrompt), imagePart)
	if err != nil {
		return "", fmt.Errorf("failed to read image with gemini: %w", err)
	}
	return ResponseText(resp)
}

// ResponseText concatenates the text parts of the first candidate.
func ResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyCandidate
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), nil
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}
