package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/youaudio/internal/constants"
	"github.com/cesargomez89/youaudio/internal/domain"
	"github.com/cesargomez89/youaudio/internal/store"
)

// videoIDPattern matches YouTube video and channel identifiers
var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// tempFilePattern restricts servable temp files to flat audio file names,
// which also blocks path traversal.
var tempFilePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+\.(mp3|m4a|aac|opus|ogg|flac|wav)$`)

// audioMimeTypes maps servable artifact extensions to their MIME type
var audioMimeTypes = map[string]string{
	".mp3":  constants.MimeTypeMP3,
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".opus": "audio/opus",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".wav":  "audio/wav",
}

func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListVideos(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := queryInt(r, "per_page", constants.DefaultPageSize)
	if perPage < 1 {
		perPage = constants.DefaultPageSize
	}
	if perPage > constants.MaxPageSize {
		perPage = constants.MaxPageSize
	}

	videos, total, err := h.Store.ListVideos(page, perPage)
	if err != nil {
		h.Logger.Error("Failed to list videos", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list videos")
		return
	}
	if videos == nil {
		videos = []*domain.Video{}
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"videos":   videos,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// videoDetail is a video row plus transient state only the running process
// knows about.
type videoDetail struct {
	*domain.Video
	AudioURL string           `json:"audio_url,omitempty"`
	Progress *domain.Snapshot `json:"progress,omitempty"`
}

func (h *Handler) GetVideo(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")
	if !videoIDPattern.MatchString(videoID) {
		h.respondError(w, http.StatusBadRequest, "invalid video id")
		return
	}

	video, err := h.Store.GetVideo(videoID)
	if err != nil {
		h.Logger.Error("Failed to load video", "video_id", videoID, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to load video")
		return
	}
	if video == nil {
		h.respondError(w, http.StatusNotFound, "video not found")
		return
	}

	detail := videoDetail{Video: video}
	if video.Status == domain.StatusCompleted && video.FilePath != "" {
		detail.AudioURL = "/temp_audio/" + filepath.Base(video.FilePath)
	}
	if snap, ok := h.Registry.Get(videoID); ok && video.Status.Active() {
		detail.Progress = &snap
	}

	h.respondJSON(w, http.StatusOK, detail)
}

func (h *Handler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")
	if !videoIDPattern.MatchString(videoID) {
		h.respondError(w, http.StatusBadRequest, "invalid video id")
		return
	}

	video, err := h.Store.GetVideo(videoID)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to load video")
		return
	}
	if video == nil {
		h.respondError(w, http.StatusNotFound, "video not found")
		return
	}

	filename := videoID + constants.ExtMP3
	if video.FilePath != "" {
		filename = filepath.Base(video.FilePath)
	}
	unlock := h.Locks.Acquire(filename)
	if err := os.Remove(filepath.Join(h.Config.TempAudioDir, filename)); err != nil && !os.IsNotExist(err) {
		unlock()
		h.Logger.Error("Failed to remove audio file", "video_id", videoID, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to remove audio file")
		return
	}
	// Forget while still holding the lock, so a concurrent Acquire cannot
	// end up holding a lock whose entry is already gone
	h.Locks.Forget(filename)
	unlock()

	if err := h.Store.DeleteVideo(videoID); err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to delete video")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")
	if !videoIDPattern.MatchString(videoID) {
		h.respondError(w, http.StatusBadRequest, "invalid video id")
		return
	}

	transcript, found, err := h.Store.GetTranscript(videoID)
	if err != nil {
		h.Logger.Error("Failed to load transcript", "video_id", videoID, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to load transcript")
		return
	}
	if !found {
		h.respondError(w, http.StatusNotFound, "video not found")
		return
	}
	if transcript == nil {
		h.respondError(w, http.StatusNotFound, "no transcript available")
		return
	}

	// Transcript is stored as ready-to-serve JSON
	w.Header().Set("Content-Type", constants.MimeTypeJSON)
	w.Write([]byte(*transcript))
}

func (h *Handler) Prepare(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")
	if !videoIDPattern.MatchString(videoID) {
		h.respondError(w, http.StatusBadRequest, "invalid video id")
		return
	}

	result, err := h.Fetcher.Fetch(videoID)
	if err != nil {
		h.Logger.Error("Fetch failed", "video_id", videoID, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to prepare audio")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

func (h *Handler) ServeAudio(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")
	if !videoIDPattern.MatchString(videoID) {
		h.respondError(w, http.StatusBadRequest, "invalid video id")
		return
	}

	video, err := h.Store.GetVideo(videoID)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to load video")
		return
	}
	if video == nil || video.Status != domain.StatusCompleted || video.FilePath == "" {
		h.respondError(w, http.StatusNotFound, "audio not available")
		return
	}

	h.serveLocked(w, r, filepath.Base(video.FilePath))
}

func (h *Handler) ServeTempAudio(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if !tempFilePattern.MatchString(filename) {
		h.respondError(w, http.StatusBadRequest, "invalid filename")
		return
	}

	h.serveLocked(w, r, filename)
}

// serveLocked streams a temp audio file while holding its lock, so the
// cleanup sweeper cannot delete the file mid-transfer.
func (h *Handler) serveLocked(w http.ResponseWriter, r *http.Request, filename string) {
	unlock := h.Locks.Acquire(filename)
	defer unlock()

	path := filepath.Join(h.Config.TempAudioDir, filename)
	if _, err := os.Stat(path); err != nil {
		h.respondError(w, http.StatusNotFound, "audio file not found")
		return
	}

	if mime, ok := audioMimeTypes[filepath.Ext(filename)]; ok {
		w.Header().Set("Content-Type", mime)
	}
	http.ServeFile(w, r, path)
}

// settingsPayload is the read and write shape of /api/settings. Nil fields
// in a POST are left unchanged; empty strings clear the stored override.
type settingsPayload struct {
	Proxy        *string `json:"proxy,omitempty"`
	SubtitleLang *string `json:"subtitle_language,omitempty"`
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	proxy, err := h.Store.GetSetting(store.SettingProxy, h.Config.Proxy)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	lang, err := h.Store.GetSetting(store.SettingSubtitleLang, h.Config.SubtitleLang)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{
		"proxy":             proxy,
		"subtitle_language": lang,
	})
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var payload settingsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.Proxy != nil {
		if err := h.saveOrClearSetting(store.SettingProxy, *payload.Proxy); err != nil {
			h.respondError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}
	}
	if payload.SubtitleLang != nil {
		if err := h.saveOrClearSetting(store.SettingSubtitleLang, *payload.SubtitleLang); err != nil {
			h.respondError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}
	}

	h.GetSettings(w, r)
}

func (h *Handler) saveOrClearSetting(key, value string) error {
	if value == "" {
		return h.Store.DeleteSetting(key)
	}
	return h.Store.SetSetting(key, value)
}

func (h *Handler) ListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.Store.ListChannels()
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to list channels")
		return
	}
	if channels == nil {
		channels = []*domain.TrackedChannel{}
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"channels": channels})
}

func (h *Handler) AddChannel(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ChannelID   string `json:"channel_id"`
		ChannelName string `json:"channel_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !videoIDPattern.MatchString(payload.ChannelID) {
		h.respondError(w, http.StatusBadRequest, "invalid channel id")
		return
	}

	if err := h.Store.UpsertChannel(payload.ChannelID, payload.ChannelName); err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to track channel")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]string{"status": "tracked"})
}

func (h *Handler) RemoveChannel(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "id")
	if !videoIDPattern.MatchString(channelID) {
		h.respondError(w, http.StatusBadRequest, "invalid channel id")
		return
	}

	if err := h.Store.DeleteChannel(channelID); err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to remove channel")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
