package services

import (
	"fmt"

	"github.com/Lllllllleong/clarityassist/internal/gcp"
	"github.com/Lllllllleong/clarityassist/internal/voice"
)

const (
	ProviderVertex = "vertex"
	ProviderOpenAI = "openai"
)

// AssistantConfig holds all configuration for the assistant service.
type AssistantConfig struct {
	AIProvider     string
	ProjectID      string
	VertexAIRegion string
	GeminiModel    string
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	OpenAIModel    string
	Voice          voice.Config

	UploadFolder        string
	ArtifactBucket      string
	FirestoreCollection string
}

// LoadConfig loads and validates all necessary environment variables for this service.
func LoadConfig() (*AssistantConfig, error) {
	openAIKey := gcp.GetEnv("OPENAI_API_KEY", "")
	openAIBaseURL := gcp.GetEnv("OPENAI_BASE_URL", "")

	config := &AssistantConfig{
		AIProvider:     gcp.GetEnv("AI_PROVIDER", ProviderVertex),
		ProjectID:      gcp.GetEnv("PROJECT_ID", gcp.GetEnv("GOOGLE_CLOUD_PROJECT", "")),
		VertexAIRegion: gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
		GeminiModel:    gcp.GetEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		OpenAIAPIKey:   openAIKey,
		OpenAIBaseURL:  openAIBaseURL,
		OpenAIModel:    gcp.GetEnv("OPENAI_MODEL", "gpt-4o-mini"),
		Voice: voice.Config{
			Provider:          gcp.GetEnv("TTS_PROVIDER", "openai"),
			OpenAIAPIKey:      openAIKey,
			OpenAIBaseURL:     openAIBaseURL,
			OpenAIModel:       gcp.GetEnv("OPENAI_TTS_MODEL", "tts-1"),
			OpenAIVoice:       gcp.GetEnv("OPENAI_TTS_VOICE", "alloy"),
			ElevenLabsAPIKey:  gcp.GetEnv("ELEVENLABS_API_KEY", ""),
			ElevenLabsVoiceID: gcp.GetEnv("ELEVENLABS_VOICE_ID", voice.DefaultElevenLabsVoiceID),
			ElevenLabsModelID: gcp.GetEnv("ELEVENLABS_MODEL_ID", ""),
		},
		UploadFolder:        gcp.GetEnv("UPLOAD_FOLDER", "uploads"),
		ArtifactBucket:      gcp.GetEnv("ARTIFACT_BUCKET", ""),
		FirestoreCollection: gcp.GetEnv("FIRESTORE_COLLECTION", ""),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate reports the first missing or inconsistent setting.
func (c *AssistantConfig) Validate() error {
	switch c.AIProvider {
	case ProviderVertex:
		if c.ProjectID == "" {
			return fmt.Errorf("PROJECT_ID environment variable must be set for the %s provider", ProviderVertex)
		}
		if c.GeminiModel == "" {
			return fmt.Errorf("GEMINI_MODEL must not be empty")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable must be set for the %s provider", ProviderOpenAI)
		}
	default:
		return fmt.Errorf("AI_PROVIDER must be %q or %q, got %q", ProviderVertex, ProviderOpenAI, c.AIProvider)
	}
	if c.FirestoreCollection != "" && c.ProjectID == "" {
		return fmt.Errorf("PROJECT_ID environment variable must be set when FIRESTORE_COLLECTION is set")
	}
	if c.UploadFolder == "" {
		return fmt.Errorf("UPLOAD_FOLDER must not be empty")
	}
	return nil
}
