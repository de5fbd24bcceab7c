// Package downloader orchestrates audio extraction workers and fans their
// progress out to live subscribers.
package downloader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/google/uuid"

	"github.com/cesargomez89/youaudio/internal/captions"
	"github.com/cesargomez89/youaudio/internal/config"
	"github.com/cesargomez89/youaudio/internal/domain"
	"github.com/cesargomez89/youaudio/internal/extractor"
	"github.com/cesargomez89/youaudio/internal/logger"
	"github.com/cesargomez89/youaudio/internal/progress"
	"github.com/cesargomez89/youaudio/internal/store"
	"github.com/cesargomez89/youaudio/internal/tagging"
	"github.com/cesargomez89/youaudio/internal/ws"
)

// percentPattern matches the first numeric token in a raw percent string,
// which may carry ANSI color codes or padding from the backend.
var percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)

// FetchResult tells the caller what happened to their fetch request. Error
// carries the previous run's failure cause when a failed video is retried.
type FetchResult struct {
	Status   domain.DownloadStatus `json:"status"`
	Message  string                `json:"message,omitempty"`
	Error    string                `json:"error,omitempty"`
	AudioURL string                `json:"audio_url,omitempty"`
}

// Service owns the download lifecycle for every video. One worker per video
// at a time; the claim in the database is the exclusivity mechanism.
type Service struct {
	store     *store.DB
	extractor extractor.Extractor
	registry  *progress.Registry
	hub       *ws.Hub
	cfg       *config.Config
	logger    *logger.Logger

	// wg tracks in-flight workers so shutdown can wait for them
	wg sync.WaitGroup
}

func NewService(db *store.DB, ex extractor.Extractor, reg *progress.Registry, hub *ws.Hub, cfg *config.Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		store:     db,
		extractor: ex,
		registry:  reg,
		hub:       hub,
		cfg:       cfg,
		logger:    log.WithComponent("downloader"),
	}
}

// Fetch is the single entry point for download requests. It decides between
// serving an existing artifact, reporting an in-flight download, and
// spawning a new worker. The claim update in the store is what guarantees
// at most one worker per video even under concurrent fetches.
func (s *Service) Fetch(videoID string) (*FetchResult, error) {
	video, err := s.store.GetVideo(videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to load video: %w", err)
	}
	if video == nil {
		if err := s.store.EnsureVideo(videoID, ""); err != nil {
			return nil, err
		}
		video, err = s.store.GetVideo(videoID)
		if err != nil {
			return nil, err
		}
	}

	if video.Status == domain.StatusCompleted {
		audioPath := s.artifactPath(video)
		if _, err := os.Stat(audioPath); err == nil {
			return &FetchResult{
				Status:   domain.StatusCompleted,
				AudioURL: artifactURL(audioPath),
			}, nil
		}
		// Artifact evicted since completion; the row self-heals by
		// going through the download path again.
		return s.claimAndSpawn(videoID, "Restarting download")
	}

	if video.Status.Active() {
		return &FetchResult{
			Status:  domain.StatusDownloading,
			Message: "Audio download already in progress",
		}, nil
	}

	result, err := s.claimAndSpawn(videoID, "Audio download started")
	if err != nil {
		return nil, err
	}
	// A retried failure reports why the last run died
	if video.Status == domain.StatusFailed && video.Error != nil {
		result.Error = *video.Error
	}
	return result, nil
}

// claimAndSpawn attempts to take ownership of the video and start a worker.
// Losing the claim means another request got there first, which is reported
// as an in-progress download rather than an error.
func (s *Service) claimAndSpawn(videoID, message string) (*FetchResult, error) {
	claimed, err := s.store.ClaimVideo(videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim video: %w", err)
	}
	if !claimed {
		return &FetchResult{
			Status:  domain.StatusDownloading,
			Message: "Audio download already in progress",
		}, nil
	}

	s.wg.Add(1)
	go s.runWorker(videoID)

	return &FetchResult{
		Status:  domain.StatusDownloading,
		Message: message,
	}, nil
}

// Wait blocks until all in-flight workers have finished
func (s *Service) Wait() {
	s.wg.Wait()
}

// runWorker performs one complete download. Every exit path records a
// terminal status; a panic inside the worker must not take down the process
// or leave the row claimed forever.
func (s *Service) runWorker(videoID string) {
	defer s.wg.Done()

	runID := uuid.New().String()
	log := s.logger.WithVideo(videoID).WithRun(runID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Worker panicked", "panic", r)
			s.finishFailed(videoID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	log.Info("Starting download")

	opts, err := s.extractionOptions()
	if err != nil {
		log.Error("Failed to resolve extraction options", "error", err)
		s.finishFailed(videoID, err.Error())
		return
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		log.Error("Failed to create output directory", "error", err)
		s.finishFailed(videoID, err.Error())
		return
	}

	result, err := s.extractor.Download(context.Background(), videoID, opts, func(p extractor.Progress) {
		s.publishProgress(videoID, p)
	})
	if err != nil {
		log.Error("Download failed", "error", err)
		s.finishFailed(videoID, err.Error())
		return
	}

	// Conversion happens after the last backend progress event; make sure
	// subscribers see the phase change before completion.
	s.publish(domain.Snapshot{
		VideoID:  videoID,
		Filename: filepath.Base(result.AudioPath),
		Percent:  "100%",
		Stage:    domain.StageConverting,
	})

	transcript := s.normalizeTranscript(log, result.CaptionsPath)

	if err := tagging.TagMP3(result.AudioPath, tagging.Metadata{
		Title:      result.Title,
		Channel:    result.Uploader,
		UploadDate: result.UploadDate,
		VideoID:    videoID,
	}); err != nil {
		// Tags are cosmetic; the artifact is still served untagged
		log.Warn("Failed to tag audio file", "error", err)
	}

	err = s.store.MarkCompleted(videoID, result.Title, result.Uploader,
		result.UploadDate, result.Duration, result.AudioPath, transcript)
	if err != nil {
		log.Error("Failed to record completion", "error", err)
		s.finishFailed(videoID, err.Error())
		return
	}

	s.publish(domain.Snapshot{
		VideoID:  videoID,
		Filename: filepath.Base(result.AudioPath),
		Percent:  "100%",
		Stage:    domain.StageCompleted,
	})

	log.Info("Download completed", "title", result.Title, "path", result.AudioPath)
}

// normalizeTranscript converts the raw captions file into the stored JSON
// transcript. A missing or malformed captions file yields a nil transcript;
// the download itself still succeeds.
func (s *Service) normalizeTranscript(log *logger.Logger, captionsPath string) *string {
	if captionsPath == "" {
		return nil
	}

	records, err := captions.NormalizeFile(captionsPath)
	if err != nil {
		if errors.Is(err, captions.ErrMalformedCaptionData) {
			log.Warn("Malformed caption data, storing no transcript", "path", captionsPath)
		} else {
			log.Warn("Failed to read captions file", "path", captionsPath, "error", err)
		}
		return nil
	}

	encoded, err := json.Marshal(records)
	if err != nil {
		log.Warn("Failed to encode transcript", "error", err)
		return nil
	}
	transcript := string(encoded)
	return &transcript
}

// finishFailed records the failure and notifies subscribers
func (s *Service) finishFailed(videoID, cause string) {
	if err := s.store.MarkFailed(videoID, cause); err != nil {
		s.logger.WithVideo(videoID).Error("Failed to record failure", "error", err)
	}
	s.publish(domain.Snapshot{
		VideoID: videoID,
		Stage:   domain.StageFailed,
	})
}

// publishProgress translates a raw backend event into a snapshot. A
// finished backend event means post-processing is starting; subscribers
// see that as the converting phase at full percent.
func (s *Service) publishProgress(videoID string, p extractor.Progress) {
	snap := domain.Snapshot{
		VideoID:  videoID,
		Filename: p.Filename,
	}
	if p.Status == extractor.ProgressFinished {
		snap.Percent = "100%"
		snap.Stage = domain.StageConverting
	} else {
		snap.Percent = CleanPercent(p.PercentText)
		snap.Stage = domain.StageDownloading
	}
	s.publish(snap)
}

// publish stores the snapshot and broadcasts it in one step so the registry
// and live subscribers never disagree for long.
func (s *Service) publish(snap domain.Snapshot) {
	s.registry.Upsert(snap.VideoID, snap)
	s.hub.Broadcast(snap)
}

// extractionOptions resolves per-download options, letting stored settings
// override the process config.
func (s *Service) extractionOptions() (extractor.Options, error) {
	proxy, err := s.store.GetSetting(store.SettingProxy, s.cfg.Proxy)
	if err != nil {
		return extractor.Options{}, fmt.Errorf("failed to load proxy setting: %w", err)
	}
	lang, err := s.store.GetSetting(store.SettingSubtitleLang, s.cfg.SubtitleLang)
	if err != nil {
		return extractor.Options{}, fmt.Errorf("failed to load subtitle setting: %w", err)
	}

	return extractor.Options{
		Proxy:        config.FormatProxyURL(proxy),
		SubtitleLang: lang,
		AudioCodec:   s.cfg.AudioCodec,
		AudioQuality: s.cfg.AudioQuality,
		OutputDir:    s.cfg.TempAudioDir,
	}, nil
}

// artifactPath resolves where the completed audio lives on disk. The stored
// file path is authoritative; the codec-derived default only covers legacy
// rows written before the path was recorded.
func (s *Service) artifactPath(video *domain.Video) string {
	if video.FilePath != "" {
		return video.FilePath
	}
	return filepath.Join(s.cfg.TempAudioDir, video.VideoID+"."+s.cfg.AudioCodec)
}

func artifactURL(audioPath string) string {
	return "/temp_audio/" + filepath.Base(audioPath)
}

// CleanPercent extracts a bare "N%" or "N.N%" token from raw backend
// percent output, which may include ANSI escapes and whitespace. Anything
// unparseable collapses to "0%" so subscribers always get a usable value.
func CleanPercent(raw string) string {
	m := percentPattern.FindStringSubmatch(raw)
	if m == nil {
		return "0%"
	}
	return m[1] + "%"
}
