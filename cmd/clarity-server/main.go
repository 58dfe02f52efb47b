package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpserver "github.com/Lllllllleong/clarityassist/internal/http"
	"github.com/Lllllllleong/clarityassist/internal/services"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := httpserver.LoadServerConfig()
	if err != nil {
		slog.Error("Failed to load server config", "error", err)
		os.Exit(1)
	}

	assistant, err := services.NewAssistant(ctx)
	if err != nil {
		slog.Error("Failed to initialize assistant", "error", err)
		os.Exit(1)
	}
	defer assistant.Close()

	srv := httpserver.NewServer(cfg, assistant)
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped.")
}
