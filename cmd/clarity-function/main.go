package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	httpserver "github.com/Lllllllleong/clarityassist/internal/http"
	"github.com/Lllllllleong/clarityassist/internal/services"
)

var (
	handler http.Handler
	once    sync.Once
	initErr error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("HandleClarityAssist", handleClarityAssist)
}

// main is required by the Go Functions Framework.
func main() {}

func handleClarityAssist(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		var cfg httpserver.ServerConfig
		cfg, initErr = httpserver.LoadServerConfig()
		if initErr != nil {
			return
		}
		var assistant *services.Assistant
		assistant, initErr = services.NewAssistant(context.Background())
		if initErr != nil {
			return
		}
		handler = httpserver.NewServer(cfg, assistant).Handler()
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	handler.ServeHTTP(w, r)
}
