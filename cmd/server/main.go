package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cesargomez89/youaudio/internal/cleanup"
	"github.com/cesargomez89/youaudio/internal/config"
	"github.com/cesargomez89/youaudio/internal/constants"
	"github.com/cesargomez89/youaudio/internal/downloader"
	"github.com/cesargomez89/youaudio/internal/extractor"
	"github.com/cesargomez89/youaudio/internal/filelock"
	"github.com/cesargomez89/youaudio/internal/handlers"
	"github.com/cesargomez89/youaudio/internal/logger"
	"github.com/cesargomez89/youaudio/internal/progress"
	"github.com/cesargomez89/youaudio/internal/store"
	"github.com/cesargomez89/youaudio/internal/tracker"
	"github.com/cesargomez89/youaudio/internal/ws"
)

func main() {
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Initialize DB
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Rows stuck in downloading from a previous process are unclaimable
	// otherwise
	if err := db.ResetStuckVideos(); err != nil {
		appLogger.Error("Failed to reset stuck videos", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.TempAudioDir, 0o755); err != nil {
		appLogger.Error("Failed to create temp audio dir", "error", err)
		os.Exit(1)
	}

	// Make sure a yt-dlp binary is available before accepting requests
	installCtx, installCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := extractor.Install(installCtx); err != nil {
		installCancel()
		appLogger.Error("Failed to install yt-dlp", "error", err)
		os.Exit(1)
	}
	installCancel()

	ytdlp := extractor.NewYTDLP()
	registry := progress.NewRegistry()
	hub := ws.NewHub(appLogger)
	locks := filelock.NewCoordinator()

	// Downloader service owns the workers
	svc := downloader.NewService(db, ytdlp, registry, hub, cfg, appLogger)

	// Background cleanup of expired temp audio
	sweeper := cleanup.NewSweeper(cfg.TempAudioDir, cfg.Retention, constants.DefaultSweepInterval, locks, appLogger)
	sweeper.Start()
	defer sweeper.Stop()

	// Background channel tracking
	tr := tracker.New(db, ytdlp, svc, constants.DefaultTrackInterval, constants.DefaultTrackLimit, appLogger)
	tr.Start()
	defer tr.Stop()

	// Initialize Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Routes
	h := handlers.NewHandler(db, svc, registry, locks, ws.NewHandler(hub, appLogger), cfg, appLogger)
	h.RegisterRoutes(r)

	// Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
