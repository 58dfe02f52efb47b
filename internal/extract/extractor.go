// Package extract pulls plain text out of uploaded documents and images.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Format identifies how a file's text is obtained.
type Format string

const (
	FormatText  Format = "text"
	FormatPDF   Format = "pdf"
	FormatDOCX  Format = "docx"
	FormatImage Format = "image"
)

// OCRPrompt is sent alongside an image to the model that reads it.
const OCRPrompt = "Extract all text from this image. Respond only with the extracted text."

var (
	ErrUnsupportedFormat = errors.New("unsupported file type for text extraction")
	ErrEncryptedPDF      = errors.New("encrypted PDF requires a password")
	ErrInvalidEncoding   = errors.New("text file is not valid UTF-8")
	ErrFileNotFound      = errors.New("file not found")
	ErrNoImageReader     = errors.New("no image reader configured for OCR")
	ErrMalformedDocument = errors.New("document is corrupt or malformed")
)

// ImageReader returns the text visible in an image.
type ImageReader interface {
	ReadImageText(ctx context.Context, mimeType string, data []byte) (string, error)
}

// Result is the text extracted from one file.
type Result struct {
	Text      string
	Format    Format
	PageCount int
}

// Extractor dispatches on file extension to a format-specific reader.
type Extractor struct {
	images ImageReader
}

// NewExtractor returns an Extractor that uses images for OCR. images may be nil,
// in which case image files fail with ErrNoImageReader.
func NewExtractor(images ImageReader) *Extractor {
	return &Extractor{images: images}
}

var imageMIMETypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Supported reports whether filename has an extension Extract can handle.
func Supported(filename string) bool {
	_, err := formatFor(strings.ToLower(filepath.Ext(filename)))
	return err == nil
}

func formatFor(ext string) (Format, error) {
	switch ext {
	case ".txt":
		return FormatText, nil
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	}
	if _, ok := imageMIMETypes[ext]; ok {
		return FormatImage, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// Extract reads the file at path and returns its text.
func (e *Extractor) Extract(ctx context.Context, path string) (*Result, error) {
	return e.ExtractAs(ctx, path, path)
}

// ExtractAs is Extract for a file stored at path whose format is decided by the
// extension of name. Uploads are stored under generated names, so the original
// filename carries the extension.
func (e *Extractor) ExtractAs(ctx context.Context, path, name string) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(name))
	logCtx := slog.With("filename", filepath.Base(name), "extension", ext)

	format, err := formatFor(ext)
	if err != nil {
		logCtx.Warn("Unsupported file type for extraction.")
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, filepath.Base(path))
		}
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	var res *Result
	switch format {
	case FormatText:
		res, err = extractText(data)
	case FormatPDF:
		res, err = extractPDF(logCtx, data)
	case FormatDOCX:
		res, err = extractDOCX(data)
	case FormatImage:
		res, err = e.extractImage(ctx, imageMIMETypes[ext], data)
	}
	if err != nil {
		logCtx.Error("Text extraction failed.", "error", err)
		return nil, err
	}

	logCtx.Info("Extracted text.", "format", res.Format, "chars", len(res.Text), "pages", res.PageCount)
	return res, nil
}

func extractText(data []byte) (*Result, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}
	return &Result{Text: string(data), Format: FormatText}, nil
}

func (e *Extractor) extractImage(ctx context.Context, mimeType string, data []byte) (*Result, error) {
	if e.images == nil {
		return nil, ErrNoImageReader
	}
	text, err := e.images.ReadImageText(ctx, mimeType, data)
	if err != nil {
		return nil, fmt.Errorf("extract text from image using OCR: %w", err)
	}
	return &Result{Text: text, Format: FormatImage}, nil
}
