package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/Lllllllleong/clarityassist/internal/extract"
	"github.com/Lllllllleong/clarityassist/internal/gcp"
	"github.com/Lllllllleong/clarityassist/internal/models"
)

// NoReadableTextMessage is written in place of text for files that have none.
const NoReadableTextMessage = "No readable text found in the file."

// ObjectStore is the bucket access bucket mode needs.
type ObjectStore interface {
	Download(ctx context.Context, bucket, object, destPath string) error
	Save(ctx context.Context, bucket, object, contentType string, content []byte) error
}

// ProcessorConfig holds the buckets used in bucket mode.
type ProcessorConfig struct {
	InputBucket  string
	OutputBucket string
}

// Validate rejects configurations where outputs would trigger the processor
// again. Every output is a .txt object, which is itself a supported upload.
func (c ProcessorConfig) Validate() error {
	if c.InputBucket == "" {
		return fmt.Errorf("INPUT_BUCKET environment variable must be set")
	}
	if c.OutputBucket == "" {
		return fmt.Errorf("OUTPUT_BUCKET environment variable must be set")
	}
	if c.InputBucket == c.OutputBucket {
		return fmt.Errorf("INPUT_BUCKET and OUTPUT_BUCKET must differ, both are %q", c.InputBucket)
	}
	return nil
}

// Processor runs uploads dropped into a bucket through an Assistant and writes
// the result as <object>.txt to the output bucket.
type Processor struct {
	assistant    *Assistant
	objects      ObjectStore
	config       ProcessorConfig
	retryBackoff time.Duration
	closers      []func() error
}

// NewProcessor creates a Processor and the Assistant it drives.
func NewProcessor(ctx context.Context) (*Processor, error) {
	config := ProcessorConfig{
		InputBucket:  gcp.GetEnv("INPUT_BUCKET", ""),
		OutputBucket: gcp.GetEnv("OUTPUT_BUCKET", ""),
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	assistant, err := NewAssistant(ctx)
	if err != nil {
		return nil, err
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		_ = assistant.Close()
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	objects := gcp.NewGCSObjects(storageClient)

	p, err := NewProcessorWith(config, assistant, objects)
	if err != nil {
		_ = assistant.Close()
		_ = objects.Close()
		return nil, err
	}
	p.closers = []func() error{assistant.Close, objects.Close}

	slog.Info("Document processor initialized.", "inputBucket", config.InputBucket, "outputBucket", config.OutputBucket)
	return p, nil
}

// NewProcessorWith wires a Processor from explicit dependencies.
func NewProcessorWith(config ProcessorConfig, assistant *Assistant, objects ObjectStore) (*Processor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if assistant == nil || objects == nil {
		return nil, errors.New("NewProcessorWith: assistant and object store are required")
	}
	return &Processor{
		assistant:    assistant,
		objects:      objects,
		config:       config,
		retryBackoff: time.Second,
	}, nil
}

// Process handles one finalized object. Errors that a retry cannot fix are
// logged and swallowed so the event is not redelivered.
func (p *Processor) Process(ctx context.Context, e models.GCSEvent) error {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)
	if e.Bucket != p.config.InputBucket {
		logCtx.Info("Object is not in the input bucket. Skipping.")
		return nil
	}
	if strings.HasSuffix(e.Name, "/") || !extract.Supported(e.Name) {
		logCtx.Info("Object is not a supported document. Skipping.")
		return nil
	}

	action := actionForObject(e)
	logCtx = logCtx.With("action", string(action))
	logCtx.Info("Processing new GCS object.")

	tempDir, err := os.MkdirTemp("", "clarity-processor-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	localPath := filepath.Join(tempDir, "source"+strings.ToLower(path.Ext(e.Name)))
	if err := p.objects.Download(ctx, e.Bucket, e.Name, localPath); err != nil {
		logCtx.Error("Failed to download source object", "error", err)
		return err
	}

	res, err := p.assistant.Process(ctx, Upload{Path: localPath, Filename: path.Base(e.Name)}, action)
	text := ""
	switch {
	case err == nil:
		text = res.Text
	case errors.Is(err, ErrNoReadableText):
		text = NoReadableTextMessage
	case isPermanent(err):
		logCtx.Error("Document cannot be processed. Dropping event.", "error", err)
		return nil
	default:
		return fmt.Errorf("process gs://%s/%s: %w", e.Bucket, e.Name, err)
	}

	outputObject := outputName(e.Name)
	if err := p.writeOutput(ctx, outputObject, []byte(text)); err != nil {
		logCtx.Error("Failed to write output", "outputObject", outputObject, "error", err)
		return err
	}
	logCtx.Info("Output written.", "outputBucket", p.config.OutputBucket, "outputObject", outputObject)
	return nil
}

// Close releases the clients created by NewProcessor.
func (p *Processor) Close() error {
	var errs []error
	for _, c := range p.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// writeOutput retries transient write failures with exponential backoff.
func (p *Processor) writeOutput(ctx context.Context, objectName string, content []byte) error {
	const maxRetries = 4
	backoff := p.retryBackoff

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		writeCtx, cancel := context.WithTimeout(ctx, 50*time.Second)
		err := p.objects.Save(writeCtx, p.config.OutputBucket, objectName, "text/plain; charset=utf-8", content)
		cancel()
		if err == nil {
			return nil
		}

		lastErr = err
		slog.Warn("Output write failed, will retry.",
			"gcsObject", objectName,
			"attempt", i+1,
			"maxRetries", maxRetries,
			"backoff", backoff.String(),
			"error", err,
		)
		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("write %s failed after all retries: %w", objectName, lastErr)
}

// actionForObject reads the action from the "action" metadata, falling back to
// the first path segment (summarize/report.pdf).
func actionForObject(e models.GCSEvent) Action {
	if a, ok := e.Metadata["action"]; ok {
		return ParseAction(a)
	}
	if dir, _, found := strings.Cut(e.Name, "/"); found {
		return ParseAction(dir)
	}
	return ActionNone
}

func outputName(object string) string {
	return object + ".txt"
}

func isPermanent(err error) bool {
	return errors.Is(err, extract.ErrUnsupportedFormat) ||
		errors.Is(err, extract.ErrEncryptedPDF) ||
		errors.Is(err, extract.ErrInvalidEncoding) ||
		errors.Is(err, extract.ErrMalformedDocument) ||
		errors.Is(err, extract.ErrFileNotFound) ||
		errors.Is(err, extract.ErrNoImageReader) ||
		errors.Is(err, ErrEmptyAIResponse)
}
