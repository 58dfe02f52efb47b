package gcp

import (
	"errors"
	"testing"

	"cloud.google.com/go/vertexai/genai"
)

func TestResponseText(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    string
		wantErr error
	}{
		{
			name:    "nil response",
			resp:    nil,
			wantErr: ErrEmptyCandidate,
		},
		{
			name:    "no candidates",
			resp:    &genai.GenerateContentResponse{},
			wantErr: ErrEmptyCandidate,
		},
		{
			name: "candidate without content",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{}},
			},
			wantErr: ErrEmptyCandidate,
		},
		{
			name: "text parts are concatenated",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{
						Parts: []genai.Part{genai.Text("Hello, "), genai.Text("world")},
					},
				}},
			},
			want: "Hello, world",
		},
		{
			name: "non-text parts are skipped",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{
						Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}, genai.Text("only text")},
					},
				}},
			},
			want: "only text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResponseText(tt.resp)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ResponseText() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResponseText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("CLARITY_TEST_SET", "value")

	if got := GetEnv("CLARITY_TEST_SET", "fallback"); got != "value" {
		t.Errorf("GetEnv(set) = %q, want %q", got, "value")
	}
	if got := GetEnv("CLARITY_TEST_UNSET_VARIABLE", "fallback"); got != "fallback" {
		t.Errorf("GetEnv(unset) = %q, want %q", got, "fallback")
	}
}
