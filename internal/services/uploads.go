package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Lllllllleong/clarityassist/internal/extract"
)

// StoreUpload copies r into the upload folder under a generated name that keeps
// the original extension. The client-supplied filename never becomes a path.
func (a *Assistant) StoreUpload(r io.Reader, filename string) (Upload, error) {
	base := filepath.Base(filepath.Clean("/" + filename))
	if !extract.Supported(base) {
		return Upload{}, fmt.Errorf("%w: %s", extract.ErrUnsupportedFormat, base)
	}

	ext := strings.ToLower(filepath.Ext(base))
	path := filepath.Join(a.config.UploadFolder, uuid.NewString()+ext)

	f, err := os.Create(path)
	if err != nil {
		return Upload{}, fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return Upload{}, fmt.Errorf("save upload %s: %w", base, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return Upload{}, fmt.Errorf("save upload %s: %w", base, err)
	}

	slog.Info("File saved.", "filename", base, "path", path)
	return Upload{Path: path, Filename: base}, nil
}

// Discard removes a stored upload.
func (a *Assistant) Discard(upload Upload) {
	if err := os.Remove(upload.Path); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to remove upload.", "path", upload.Path, "error", err)
	}
}

func calculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
