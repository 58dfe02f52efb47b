package models

// These structs define the JSON payloads exchanged with HTTP clients.

// UploadResponse is returned by POST /upload.
type UploadResponse struct {
	Success       bool   `json:"success"`
	Filename      string `json:"filename"`
	ExtractedText string `json:"extracted_text"`
}

// TextRequest is the body of POST /read_aloud and POST /save_text.
type TextRequest struct {
	Text string `json:"text"`
}

// ErrorResponse is returned by every endpoint on failure.
type ErrorResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename,omitempty"`
	Error    string `json:"error"`
}

// GCSEvent is the payload of a Cloud Storage object event.
type GCSEvent struct {
	Bucket   string            `json:"bucket"`
	Name     string            `json:"name"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
