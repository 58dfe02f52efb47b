package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Lllllllleong/clarityassist/internal/extract"
	"github.com/Lllllllleong/clarityassist/internal/models"
	"github.com/Lllllllleong/clarityassist/internal/services"
)

const indexNotFoundHTML = "<p>Error: index.html not found. Make sure it's in the same folder as the server.</p>"

// Assistant is the work behind the endpoints.
type Assistant interface {
	ProcessUpload(ctx context.Context, r io.Reader, filename string, action services.Action) (*services.ProcessResult, error)
	ReadAloud(ctx context.Context, text string) (*services.Artifact, error)
	SaveText(ctx context.Context, text string) (*services.Artifact, error)
}

type API struct {
	cfg       ServerConfig
	assistant Assistant
}

func NewAPI(cfg ServerConfig, assistant Assistant) *API {
	return &API{cfg: cfg, assistant: assistant}
}

func registerRoutes(r *gin.Engine, api *API) {
	r.GET("/", api.handleIndex)
	r.GET("/healthz", api.handleHealth)
	r.POST("/upload", api.handleUpload)
	r.POST("/read_aloud", api.handleReadAloud)
	r.POST("/save_text", api.handleSaveText)
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (a *API) handleIndex(c *gin.Context) {
	page, err := os.ReadFile(a.cfg.IndexHTMLPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		page = []byte(indexNotFoundHTML)
	case err != nil:
		page = []byte(fmt.Sprintf("<p>Error reading index.html: %v</p>", err))
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (a *API) handleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("document")
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			respondMessage(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("File exceeds the %d byte upload limit", maxErr.Limit))
		case c.Request.MultipartForm != nil && len(c.Request.MultipartForm.Value["document"]) > 0:
			// A file input submitted with nothing chosen arrives as a plain field.
			respondMessage(c, http.StatusBadRequest, "No selected file")
		default:
			respondMessage(c, http.StatusBadRequest, "No file part in the request")
		}
		return
	}
	if fileHeader.Filename == "" {
		respondMessage(c, http.StatusBadRequest, "No selected file")
		return
	}

	filename := fileHeader.Filename
	action := services.ParseAction(c.PostForm("action"))
	logCtx := slog.With("filename", filename, "action", string(action), "size", fileHeader.Size)
	logCtx.Info("Received upload.")

	upload, err := fileHeader.Open()
	if err != nil {
		logCtx.Error("Failed to open upload.", "error", err)
		respondFileError(c, filename, http.StatusInternalServerError, fmt.Sprintf("An unexpected error occurred during file processing: %v", err))
		return
	}
	defer upload.Close()

	res, err := a.assistant.ProcessUpload(c.Request.Context(), upload, filename, action)
	if errors.Is(err, services.ErrNoReadableText) {
		c.JSON(http.StatusOK, models.UploadResponse{Success: true, Filename: filename, ExtractedText: services.NoReadableTextMessage})
		return
	}
	if err != nil {
		status := uploadStatus(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			msg = fmt.Sprintf("An unexpected error occurred during file processing: %v", err)
		}
		logCtx.Error("Upload processing failed.", "status", status, "error", err)
		respondFileError(c, filename, status, msg)
		return
	}

	c.JSON(http.StatusOK, models.UploadResponse{
		Success:       true,
		Filename:      filename,
		ExtractedText: res.Text,
	})
}

func (a *API) handleReadAloud(c *gin.Context) {
	text, ok := bindText(c)
	if !ok {
		respondMessage(c, http.StatusBadRequest, "No valid text provided for read aloud")
		return
	}

	art, err := a.assistant.ReadAloud(c.Request.Context(), text)
	switch {
	case errors.Is(err, services.ErrInvalidText):
		respondMessage(c, http.StatusBadRequest, "No valid text provided for read aloud")
		return
	case errors.Is(err, services.ErrSpeechUnavailable):
		respondMessage(c, http.StatusServiceUnavailable, fmt.Sprintf("Error generating audio: %v", err))
		return
	case err != nil:
		respondMessage(c, http.StatusInternalServerError, fmt.Sprintf("Error generating audio: %v", err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", art.Name))
	c.Data(http.StatusOK, art.ContentType, art.Data)
}

func (a *API) handleSaveText(c *gin.Context) {
	text, ok := bindText(c)
	if !ok {
		respondMessage(c, http.StatusBadRequest, "No valid text provided for saving")
		return
	}

	art, err := a.assistant.SaveText(c.Request.Context(), text)
	switch {
	case errors.Is(err, services.ErrInvalidText):
		respondMessage(c, http.StatusBadRequest, "No valid text provided for saving")
		return
	case err != nil:
		respondMessage(c, http.StatusInternalServerError, fmt.Sprintf("Error saving text file: %v", err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Name))
	c.Data(http.StatusOK, art.ContentType, art.Data)
}

func bindText(c *gin.Context) (string, bool) {
	var payload models.TextRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		return "", false
	}
	if strings.TrimSpace(payload.Text) == "" {
		return "", false
	}
	return payload.Text, true
}

func uploadStatus(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, extract.ErrUnsupportedFormat),
		errors.Is(err, extract.ErrEncryptedPDF),
		errors.Is(err, extract.ErrInvalidEncoding),
		errors.Is(err, extract.ErrMalformedDocument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrAIRequest),
		errors.Is(err, services.ErrEmptyAIResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondMessage(c *gin.Context, status int, msg string) {
	c.JSON(status, models.ErrorResponse{Success: false, Error: msg})
}

func respondFileError(c *gin.Context, filename string, status int, msg string) {
	c.JSON(status, models.ErrorResponse{Success: false, Filename: filename, Error: msg})
}
