package services

import (
	"testing"

	"github.com/Lllllllleong/clarityassist/internal/models"
)

func TestParseAction(t *testing.T) {
	tests := map[string]Action{
		"":                     ActionNone,
		"simplify":             ActionSimplify,
		"summarize":            ActionSummarize,
		"extract-instructions": ActionExtractInstructions,
		"analyze":              ActionAnalyze,
		"translate":            ActionNone,
		"SUMMARIZE":            ActionNone,
	}
	for in, want := range tests {
		if got := ParseAction(in); got != want {
			t.Errorf("ParseAction(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestActionPrompt(t *testing.T) {
	prompt, ok := ActionAnalyze.Prompt("body")
	if !ok {
		t.Fatal("Prompt() ok = false for analyze")
	}
	if prompt != AnalyzePrompt+"\n\nbody" {
		t.Errorf("Prompt() = %q", prompt)
	}
	if _, ok := ActionNone.Prompt("body"); ok {
		t.Error("Prompt() ok = true for no action")
	}
	if ActionNone.UsesAI() || !ActionSimplify.UsesAI() {
		t.Error("UsesAI() mismatch")
	}
}

func TestActionForObject(t *testing.T) {
	tests := []struct {
		name  string
		event models.GCSEvent
		want  Action
	}{
		{name: "metadata wins", event: models.GCSEvent{Name: "summarize/a.pdf", Metadata: map[string]string{"action": "analyze"}}, want: ActionAnalyze},
		{name: "path prefix", event: models.GCSEvent{Name: "summarize/a.pdf"}, want: ActionSummarize},
		{name: "unknown prefix", event: models.GCSEvent{Name: "inbox/a.pdf"}, want: ActionNone},
		{name: "no prefix", event: models.GCSEvent{Name: "a.pdf"}, want: ActionNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := actionForObject(tt.event); got != tt.want {
				t.Errorf("actionForObject() = %q, want %q", got, tt.want)
			}
		})
	}
	if got := outputName("summarize/a.pdf"); got != "summarize/a.pdf.txt" {
		t.Errorf("outputName() = %q", got)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  AssistantConfig
		wantErr bool
	}{
		{name: "vertex ok", config: AssistantConfig{AIProvider: ProviderVertex, ProjectID: "p", GeminiModel: "m", UploadFolder: "u"}},
		{name: "vertex no project", config: AssistantConfig{AIProvider: ProviderVertex, GeminiModel: "m", UploadFolder: "u"}, wantErr: true},
		{name: "openai ok", config: AssistantConfig{AIProvider: ProviderOpenAI, OpenAIAPIKey: "k", UploadFolder: "u"}},
		{name: "openai no key", config: AssistantConfig{AIProvider: ProviderOpenAI, UploadFolder: "u"}, wantErr: true},
		{name: "firestore needs project", config: AssistantConfig{AIProvider: ProviderOpenAI, OpenAIAPIKey: "k", UploadFolder: "u", FirestoreCollection: "c"}, wantErr: true},
		{name: "unknown provider", config: AssistantConfig{AIProvider: "bard", UploadFolder: "u"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("AI_PROVIDER", ProviderOpenAI)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TTS_PROVIDER", "elevenlabs")
	t.Setenv("ELEVENLABS_API_KEY", "el-test")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if config.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("OpenAIModel = %q", config.OpenAIModel)
	}
	if config.Voice.Provider != "elevenlabs" || config.Voice.ElevenLabsAPIKey != "el-test" {
		t.Errorf("Voice = %+v", config.Voice)
	}
	if config.Voice.OpenAIAPIKey != "sk-test" {
		t.Errorf("Voice.OpenAIAPIKey = %q", config.Voice.OpenAIAPIKey)
	}
}
