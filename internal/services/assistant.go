package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/clarityassist/internal/extract"
	"github.com/Lllllllleong/clarityassist/internal/gcp"
	"github.com/Lllllllleong/clarityassist/internal/llm"
	"github.com/Lllllllleong/clarityassist/internal/models"
	"github.com/Lllllllleong/clarityassist/internal/voice"
)

// TextGenerator rewrites text with a language model.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Archiver stores generated artifacts and returns where they were put.
type Archiver interface {
	Archive(ctx context.Context, objectName, contentType string, data []byte) (string, error)
}

// Recorder keeps a log of processed requests.
type Recorder interface {
	Create(ctx context.Context, doc models.Document) (string, error)
	Update(ctx context.Context, id string, fields map[string]any) error
}

// Dependencies are the collaborators of an Assistant. Archiver and Recorder
// are optional; Speech may be nil when no TTS provider is configured.
type Dependencies struct {
	Generator TextGenerator
	Images    extract.ImageReader
	Speech    voice.Synthesizer
	Archiver  Archiver
	Recorder  Recorder
}

// Assistant extracts, rewrites, speaks and saves text.
type Assistant struct {
	config    AssistantConfig
	extractor *extract.Extractor
	generator TextGenerator
	speech    voice.Synthesizer
	archiver  Archiver
	recorder  Recorder
	closers   []io.Closer
	now       func() time.Time
}

// Upload is a file received from a client and stored locally.
type Upload struct {
	Path     string
	Filename string
}

// ProcessResult is the outcome of Assistant.Process.
type ProcessResult struct {
	Filename  string
	Action    Action
	Text      string
	Extracted *extract.Result
}

// Artifact is a generated file ready to be sent to the client.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
	URI         string
}

// NewAssistant creates an Assistant from the environment.
func NewAssistant(ctx context.Context) (*Assistant, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewAssistantFromConfig(ctx, *config)
}

// NewAssistantFromConfig creates the clients named by config.
func NewAssistantFromConfig(ctx context.Context, config AssistantConfig) (*Assistant, error) {
	var (
		deps    Dependencies
		closers []io.Closer
	)

	switch config.AIProvider {
	case ProviderVertex:
		vertexClient, err := gcp.NewVertexClient(ctx, config.ProjectID, config.VertexAIRegion, config.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create vertex client: %w", err)
		}
		deps.Generator, deps.Images = vertexClient, vertexClient
		closers = append(closers, vertexClient)
		slog.Info("Loaded Gemini model.", "model", config.GeminiModel, "region", config.VertexAIRegion)
	case ProviderOpenAI:
		openAIClient, err := llm.NewOpenAIClient(config.OpenAIAPIKey, config.OpenAIBaseURL, config.OpenAIModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai client: %w", err)
		}
		deps.Generator, deps.Images = openAIClient, openAIClient
		slog.Info("Loaded OpenAI model.", "model", config.OpenAIModel)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", config.AIProvider)
	}

	speech, err := voice.New(config.Voice)
	if err != nil {
		slog.Warn("Read aloud is disabled.", "ttsProvider", config.Voice.Provider, "error", err)
	} else {
		deps.Speech = speech
	}

	if config.ArtifactBucket != "" {
		storageClient, err := storage.NewClient(ctx)
		if err != nil {
			closeAll(closers)
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		deps.Archiver = gcp.NewGCSArchiver(storageClient, config.ArtifactBucket)
		closers = append(closers, storageClient)
	}

	if config.FirestoreCollection != "" {
		firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
		if err != nil {
			closeAll(closers)
			return nil, fmt.Errorf("failed to create firestore client: %w", err)
		}
		recorder := gcp.NewFirestoreRecorder(firestoreClient, config.FirestoreCollection)
		deps.Recorder = recorder
		closers = append(closers, recorder)
	}

	a, err := NewAssistantWith(config, deps)
	if err != nil {
		closeAll(closers)
		return nil, err
	}
	a.closers = closers
	return a, nil
}

// NewAssistantWith wires an Assistant from explicit dependencies.
func NewAssistantWith(config AssistantConfig, deps Dependencies) (*Assistant, error) {
	if deps.Generator == nil {
		return nil, errors.New("NewAssistantWith: a text generator is required")
	}
	if config.UploadFolder == "" {
		config.UploadFolder = "uploads"
	}
	if err := os.MkdirAll(config.UploadFolder, 0o755); err != nil {
		return nil, fmt.Errorf("create upload folder %s: %w", config.UploadFolder, err)
	}

	return &Assistant{
		config:    config,
		extractor: extract.NewExtractor(deps.Images),
		generator: deps.Generator,
		speech:    deps.Speech,
		archiver:  deps.Archiver,
		recorder:  deps.Recorder,
		now:       time.Now,
	}, nil
}

// ProcessUpload stores r under the upload folder, processes it and removes it.
func (a *Assistant) ProcessUpload(ctx context.Context, r io.Reader, filename string, action Action) (*ProcessResult, error) {
	upload, err := a.StoreUpload(r, filename)
	if err != nil {
		return nil, err
	}
	defer a.Discard(upload)

	return a.Process(ctx, upload, action)
}

// Process extracts the upload's text and, for AI actions, rewrites it.
func (a *Assistant) Process(ctx context.Context, upload Upload, action Action) (*ProcessResult, error) {
	logCtx := slog.With("filename", upload.Filename, "action", string(action))
	logCtx.Info("Starting processing.")

	recordID := a.startRecord(ctx, logCtx, upload, action)
	res, err := a.process(ctx, logCtx, upload, action)
	a.finishRecord(ctx, logCtx, recordID, res, err)
	if err != nil {
		return nil, err
	}

	logCtx.Info("Processing complete.", "chars", len(res.Text))
	return res, nil
}

func (a *Assistant) process(ctx context.Context, logCtx *slog.Logger, upload Upload, action Action) (*ProcessResult, error) {
	extracted, err := a.extractor.ExtractAs(ctx, upload.Path, upload.Filename)
	if err != nil {
		return nil, err
	}

	res := &ProcessResult{
		Filename:  upload.Filename,
		Action:    action,
		Text:      extracted.Text,
		Extracted: extracted,
	}
	if strings.TrimSpace(extracted.Text) == "" {
		logCtx.Warn("Extracted text is empty, skipping AI processing.")
		return res, ErrNoReadableText
	}

	prompt, ok := action.Prompt(extracted.Text)
	if !ok {
		logCtx.Info("Non-AI action, returning extracted text.")
		return res, nil
	}

	logCtx.Info("Calling language model.")
	processed, err := a.generator.GenerateText(ctx, prompt)
	if err != nil {
		logCtx.Error("Language model call failed.", "error", err)
		return res, fmt.Errorf("%w for '%s': %w", ErrAIRequest, action, err)
	}
	if strings.TrimSpace(processed) == "" {
		return res, &EmptyResponseError{Action: action, ExtractedChars: len(extracted.Text)}
	}

	res.Text = processed
	return res, nil
}

// ReadAloud synthesizes text as an MP3 named audio_<unix-ms>.mp3.
func (a *Assistant) ReadAloud(ctx context.Context, text string) (*Artifact, error) {
	if err := validateText(text); err != nil {
		return nil, err
	}
	if a.speech == nil {
		return nil, ErrSpeechUnavailable
	}

	logCtx := slog.With("preview", preview(text, 50))
	logCtx.Info("Synthesizing speech.")

	audio, err := a.speech.Synthesize(ctx, text)
	if err != nil {
		logCtx.Error("Speech synthesis failed.", "error", err)
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}

	art := &Artifact{
		Name:        fmt.Sprintf("audio_%d.mp3", a.now().UnixMilli()),
		ContentType: voice.AudioMIMEType,
		Data:        audio,
	}
	a.persist(ctx, logCtx, art, "read_aloud", len(text))
	logCtx.Info("Audio generated.", "artifact", art.Name, "bytes", len(audio))
	return art, nil
}

// SaveText packages text as a downloadable clarityassist_output_<unix-ms>.txt.
func (a *Assistant) SaveText(ctx context.Context, text string) (*Artifact, error) {
	if err := validateText(text); err != nil {
		return nil, err
	}

	logCtx := slog.With("preview", preview(text, 50))
	art := &Artifact{
		Name:        fmt.Sprintf("clarityassist_output_%d.txt", a.now().UnixMilli()),
		ContentType: "text/plain; charset=utf-8",
		Data:        []byte(text),
	}
	a.persist(ctx, logCtx, art, "save_text", len(text))
	logCtx.Info("Text file prepared.", "artifact", art.Name)
	return art, nil
}

// Close releases the cloud clients created by NewAssistantFromConfig.
func (a *Assistant) Close() error {
	return closeAll(a.closers)
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "Error:") {
		return ErrInvalidText
	}
	return nil
}

// persist archives art and records it. Both run concurrently and failures are
// only logged.
func (a *Assistant) persist(ctx context.Context, logCtx *slog.Logger, art *Artifact, kind string, chars int) {
	var (
		eg       errgroup.Group
		recordID string
	)
	if a.archiver != nil {
		eg.Go(func() error {
			uri, err := a.archiver.Archive(ctx, art.Name, art.ContentType, art.Data)
			if err != nil {
				return fmt.Errorf("archive %s: %w", art.Name, err)
			}
			art.URI = uri
			return nil
		})
	}
	if a.recorder != nil {
		eg.Go(func() error {
			id, err := a.recorder.Create(ctx, models.Document{
				OriginalFilename: art.Name,
				Action:           kind,
				Status:           models.StatusCompleted,
				ProcessedChars:   chars,
				CreatedAt:        a.now(),
			})
			recordID = id
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		logCtx.Warn("Failed to persist artifact.", "artifact", art.Name, "error", err)
		return
	}

	if recordID != "" && art.URI != "" {
		if err := a.recorder.Update(ctx, recordID, map[string]any{"artifactUri": art.URI}); err != nil {
			logCtx.Warn("Failed to record artifact location.", "documentId", recordID, "error", err)
		}
	}
}

func (a *Assistant) startRecord(ctx context.Context, logCtx *slog.Logger, upload Upload, action Action) string {
	if a.recorder == nil {
		return ""
	}
	fileHash, err := calculateFileHash(upload.Path)
	if err != nil {
		logCtx.Warn("Failed to hash upload.", "error", err)
	}
	id, err := a.recorder.Create(ctx, models.Document{
		FileHash:         fileHash,
		OriginalFilename: upload.Filename,
		Action:           string(action),
		Status:           models.StatusProcessing,
		CreatedAt:        a.now(),
	})
	if err != nil {
		logCtx.Warn("Failed to record request.", "error", err)
		return ""
	}
	return id
}

func (a *Assistant) finishRecord(ctx context.Context, logCtx *slog.Logger, id string, res *ProcessResult, procErr error) {
	if a.recorder == nil || id == "" {
		return
	}
	fields := map[string]any{"status": models.StatusCompleted}
	if procErr != nil && !errors.Is(procErr, ErrNoReadableText) {
		fields["status"] = models.StatusFailed
		fields["errorDetails"] = procErr.Error()
	}
	if res != nil {
		fields["pageCount"] = res.Extracted.PageCount
		fields["extractedChars"] = len(res.Extracted.Text)
		fields["processedChars"] = len(res.Text)
	}
	if err := a.recorder.Update(ctx, id, fields); err != nil {
		logCtx.Warn("Failed to update request record.", "documentId", id, "error", err)
	}
}

func preview(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n])
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
