// Package handlers exposes the HTTP API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/youaudio/internal/config"
	"github.com/cesargomez89/youaudio/internal/downloader"
	"github.com/cesargomez89/youaudio/internal/filelock"
	"github.com/cesargomez89/youaudio/internal/logger"
	"github.com/cesargomez89/youaudio/internal/progress"
	"github.com/cesargomez89/youaudio/internal/store"
	"github.com/cesargomez89/youaudio/internal/ws"
)

// Fetcher starts or reports on a download. Satisfied by *downloader.Service.
type Fetcher interface {
	Fetch(videoID string) (*downloader.FetchResult, error)
}

type Handler struct {
	Store    *store.DB
	Fetcher  Fetcher
	Registry *progress.Registry
	Locks    *filelock.Coordinator
	WS       *ws.Handler
	Config   *config.Config
	Logger   *logger.Logger
}

func NewHandler(db *store.DB, fetcher Fetcher, reg *progress.Registry, locks *filelock.Coordinator, wsHandler *ws.Handler, cfg *config.Config, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{
		Store:    db,
		Fetcher:  fetcher,
		Registry: reg,
		Locks:    locks,
		WS:       wsHandler,
		Config:   cfg,
		Logger:   log.WithComponent("http"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/ping", h.Ping)
	r.Get("/api/videos", h.ListVideos)
	r.Get("/api/video/{id}", h.GetVideo)
	r.Delete("/api/video/{id}", h.DeleteVideo)
	r.Get("/api/transcript/{id}", h.GetTranscript)
	r.Get("/api/prepare/{id}", h.Prepare)
	r.Get("/api/audio/{id}", h.ServeAudio)
	r.Get("/temp_audio/{filename}", h.ServeTempAudio)

	r.Get("/api/settings", h.GetSettings)
	r.Post("/api/settings", h.UpdateSettings)

	r.Get("/api/channels", h.ListChannels)
	r.Post("/api/channels", h.AddChannel)
	r.Delete("/api/channels/{id}", h.RemoveChannel)

	r.Get("/ws", h.WS.ServeWS)
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
