package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// SaveToGCSAtomically writes content to a GCS object only if it doesn't already exist.
// An existing object is not an error.
func SaveToGCSAtomically(ctx context.Context, bucket *storage.BucketHandle, objectName, contentType string, content []byte) error {
	writer := bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, bytes.NewReader(content)); err != nil {
		_ = writer.Close()
		if isPreconditionFailed(err) {
			slog.Info("Object already exists, skipping.", "object", objectName)
			return nil
		}
		slog.Error("Failed to copy content to GCS object.", "object", objectName, "error", err)
		return fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		if isPreconditionFailed(err) {
			slog.Info("Object already exists, skipping.", "object", objectName)
			return nil
		}
		slog.Error("Failed to close GCS writer.", "object", objectName, "error", err)
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}

// StreamGCSObject copies an object to a local file.
func StreamGCSObject(ctx context.Context, client *storage.Client, bucket, object, destPath string) error {
	gcsReader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, object, err)
	}
	defer gcsReader.Close()

	localFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file at %s: %w", destPath, err)
	}
	defer localFile.Close()

	if _, err := io.Copy(localFile, gcsReader); err != nil {
		return fmt.Errorf("failed to copy GCS object to local file: %w", err)
	}
	return nil
}

// GCSArchiver stores generated artifacts in a bucket.
type GCSArchiver struct {
	bucket     *storage.BucketHandle
	bucketName string
}

func NewGCSArchiver(client *storage.Client, bucketName string) *GCSArchiver {
	return &GCSArchiver{bucket: client.Bucket(bucketName), bucketName: bucketName}
}

// Archive saves data under objectName and returns its gs:// URI.
func (a *GCSArchiver) Archive(ctx context.Context, objectName, contentType string, data []byte) (string, error) {
	if err := SaveToGCSAtomically(ctx, a.bucket, objectName, contentType, data); err != nil {
		return "", err
	}
	return fmt.Sprintf("gs://%s/%s", a.bucketName, objectName), nil
}

// GCSObjects moves whole objects between buckets and local files.
type GCSObjects struct {
	client *storage.Client
}

func NewGCSObjects(client *storage.Client) *GCSObjects {
	return &GCSObjects{client: client}
}

func (o *GCSObjects) Download(ctx context.Context, bucket, object, destPath string) error {
	return StreamGCSObject(ctx, o.client, bucket, object, destPath)
}

// Save writes content unless the object already exists.
func (o *GCSObjects) Save(ctx context.Context, bucket, object, contentType string, content []byte) error {
	return SaveToGCSAtomically(ctx, o.client.Bucket(bucket), object, contentType, content)
}

func (o *GCSObjects) Close() error {
	return o.client.Close()
}
