package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/contentforge/internal/api"
	"github.com/dgallion1/contentforge/internal/config"
	"github.com/dgallion1/contentforge/internal/editor"
	"github.com/dgallion1/contentforge/internal/genai"
	"github.com/dgallion1/contentforge/internal/scrape"
	"github.com/dgallion1/contentforge/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage.
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Error("open store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}

	// Initialize clients.
	text := genai.NewTextClient(cfg.TextAPIKey, cfg.TextBaseURL, cfg.TextModel)
	image := genai.NewImageClient(cfg.ImageAPIKey, cfg.ImageBaseURL, cfg.ImageModel)
	ai := genai.NewService(text, image)
	scraper := scrape.NewClient()

	// Editing sessions with background eviction.
	sessions := editor.NewSessionStore(cfg.SessionTTL)
	sessions.StartCleanup(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(st, ai, scraper, sessions, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		ai.Close()
		st.Close()
	}()

	log.Info("starting contentforge", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
