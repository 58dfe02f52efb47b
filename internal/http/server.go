// Package http serves the upload, read-aloud and save endpoints.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Lllllllleong/clarityassist/internal/gcp"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port           string
	IndexHTMLPath  string
	MaxUploadBytes int64
}

// LoadServerConfig reads the listener settings from the environment.
func LoadServerConfig() (ServerConfig, error) {
	maxMB, err := strconv.ParseInt(gcp.GetEnv("MAX_UPLOAD_MB", "25"), 10, 64)
	if err != nil || maxMB < 0 {
		return ServerConfig{}, fmt.Errorf("MAX_UPLOAD_MB must be a non-negative integer")
	}
	return ServerConfig{
		Port:           gcp.GetEnv("PORT", "5000"),
		IndexHTMLPath:  gcp.GetEnv("INDEX_HTML_PATH", "index.html"),
		MaxUploadBytes: maxMB << 20,
	}, nil
}

type Server struct {
	engine *gin.Engine
	cfg    ServerConfig
}

func NewServer(cfg ServerConfig, assistant Assistant) *Server {
	gin.SetMode(gin.ReleaseMode)
	return &Server{engine: newEngine(cfg, assistant), cfg: cfg}
}

func newEngine(cfg ServerConfig, assistant Assistant) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger())
	engine.Use(MaxBodySize(cfg.MaxUploadBytes))
	engine.Use(CORS())
	engine.MaxMultipartMemory = 8 << 20

	registerRoutes(engine, NewAPI(cfg, assistant))
	return engine
}

// Handler exposes the routes for embedding in another server or a function.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting.", "port", s.cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down gracefully.")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
