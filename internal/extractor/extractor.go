package extractor

import (
	"context"
	"errors"
)

// ErrExtractionFailed wraps any backend failure so callers can treat all
// extraction errors uniformly.
var ErrExtractionFailed = errors.New("extraction failed")

// Progress statuses reported to the hook. "finished" means the raw media is
// on disk and post-processing is about to begin.
const (
	ProgressDownloading = "downloading"
	ProgressFinished    = "finished"
)

// Progress is one raw progress event from the extraction backend.
// PercentText is unparsed and may carry terminal control junk.
type Progress struct {
	Status      string
	PercentText string
	Filename    string
}

// ProgressFunc receives progress events during a download. It must not block.
type ProgressFunc func(Progress)

// Options configures a single extraction
type Options struct {
	Proxy        string
	SubtitleLang string
	AudioCodec   string
	AudioQuality string
	OutputDir    string
}

// Result is the outcome of a successful extraction. CaptionsPath is empty
// when no caption track was available for the requested language.
type Result struct {
	ID           string
	Title        string
	Uploader     string
	UploadDate   string
	Duration     int
	AudioPath    string
	CaptionsPath string
}

// Upload is one entry from a channel's recent uploads listing
type Upload struct {
	VideoID string
	Title   string
}

// Extractor downloads a single video's audio track plus captions
type Extractor interface {
	Download(ctx context.Context, videoID string, opts Options, fn ProgressFunc) (*Result, error)
}

// Lister enumerates a channel's most recent uploads without downloading
type Lister interface {
	RecentUploads(ctx context.Context, channelID string, limit int) ([]Upload, error)
}
