package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lrstanley/go-ytdlp"

	"github.com/cesargomez89/youaudio/internal/constants"
	"github.com/cesargomez89/youaudio/internal/logger"
)

// YTDLP runs downloads through the yt-dlp binary. The binary must be on
// PATH; Install makes sure of that at startup.
type YTDLP struct {
	logger *logger.Logger
}

func NewYTDLP() *YTDLP {
	return &YTDLP{
		logger: logger.Default().WithComponent("extractor"),
	}
}

// Install downloads a managed yt-dlp binary when none is on PATH
func Install(ctx context.Context) error {
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return fmt.Errorf("failed to install yt-dlp: %w", err)
	}
	return nil
}

// Download fetches the audio track and captions for videoID into
// opts.OutputDir. Output files are named by video ID so their paths are
// known before yt-dlp reports them.
func (y *YTDLP) Download(ctx context.Context, videoID string, opts Options, fn ProgressFunc) (*Result, error) {
	dl := ytdlp.New().
		NoPlaylist().
		ExtractAudio().
		AudioFormat(opts.AudioCodec).
		AudioQuality(opts.AudioQuality).
		WriteSubs().
		WriteAutoSubs().
		SubLangs(opts.SubtitleLang).
		SubFormat(constants.CaptionsFormat).
		Output(filepath.Join(opts.OutputDir, "%(id)s.%(ext)s"))

	if opts.Proxy != "" {
		dl = dl.Proxy(opts.Proxy)
	}

	dl.ProgressFunc(constants.ProgressFlushInterval, func(update ytdlp.ProgressUpdate) {
		if fn == nil {
			return
		}
		fn(Progress{
			Status:      progressStatus(update),
			PercentText: percentText(update),
			Filename:    audioFilename(videoID, opts),
		})
	})

	result, err := dl.Run(ctx, watchURL(videoID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	out := &Result{
		ID:        videoID,
		AudioPath: filepath.Join(opts.OutputDir, audioFilename(videoID, opts)),
	}

	info, infoErr := result.GetExtractedInfo()
	if infoErr != nil || len(info) == 0 {
		y.logger.Warn("no extracted metadata for video", "video_id", videoID, "error", infoErr)
	} else {
		out.Title = strValue(info[0].Title)
		out.Uploader = firstOf(strValue(info[0].Channel), strValue(info[0].Uploader))
		out.UploadDate = strValue(info[0].UploadDate)
		if info[0].Duration != nil {
			out.Duration = int(*info[0].Duration)
		}
	}

	// The audio file is the only hard requirement
	if _, err := os.Stat(out.AudioPath); err != nil {
		return nil, fmt.Errorf("%w: audio file missing after download: %v", ErrExtractionFailed, err)
	}

	captionsPath := filepath.Join(opts.OutputDir,
		fmt.Sprintf("%s.%s.%s", videoID, opts.SubtitleLang, constants.CaptionsFormat))
	if _, err := os.Stat(captionsPath); err == nil {
		out.CaptionsPath = captionsPath
	}

	return out, nil
}

// RecentUploads lists the newest entries on a channel's uploads page
// without downloading media.
func (y *YTDLP) RecentUploads(ctx context.Context, channelID string, limit int) ([]Upload, error) {
	dl := ytdlp.New().
		FlatPlaylist().
		SkipDownload().
		DumpJSON().
		PlaylistEnd(limit)

	result, err := dl.Run(ctx, channelURL(channelID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	info, err := result.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	uploads := make([]Upload, 0, len(info))
	for _, entry := range info {
		if entry.ID == "" {
			continue
		}
		uploads = append(uploads, Upload{
			VideoID: entry.ID,
			Title:   strValue(entry.Title),
		})
	}
	return uploads, nil
}

func progressStatus(update ytdlp.ProgressUpdate) string {
	if update.Status == ytdlp.ProgressStatusFinished ||
		update.Status == ytdlp.ProgressStatusPostProcessing {
		return ProgressFinished
	}
	return ProgressDownloading
}

// percentText renders progress the way yt-dlp prints it, so downstream
// parsing treats backend and hook output the same.
func percentText(update ytdlp.ProgressUpdate) string {
	if update.TotalBytes <= 0 {
		return ""
	}
	percent := float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100
	return fmt.Sprintf("%.1f%%", percent)
}

func audioFilename(videoID string, opts Options) string {
	return videoID + "." + opts.AudioCodec
}

func watchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func channelURL(channelID string) string {
	return "https://www.youtube.com/channel/" + channelID + "/videos"
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
