package models

import "time"

// Request statuses recorded in Firestore.
const (
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// Document records one processed upload or generated artifact in Firestore.
type Document struct {
	FileHash         string    `firestore:"fileHash,omitempty"`
	OriginalFilename string    `firestore:"originalFilename,omitempty"`
	Action           string    `firestore:"action,omitempty"`
	Status           string    `firestore:"status,omitempty"`
	ErrorDetails     string    `firestore:"errorDetails,omitempty"`
	PageCount        int       `firestore:"pageCount,omitempty"`
	ExtractedChars   int       `firestore:"extractedChars,omitempty"`
	ProcessedChars   int       `firestore:"processedChars,omitempty"`
	ArtifactURI      string    `firestore:"artifactUri,omitempty"`
	CreatedAt        time.Time `firestore:"createdAt,omitempty"`
}
