package domain

import "time"

// DownloadStatus represents the persisted download state of a video
type DownloadStatus string

const (
	StatusPending     DownloadStatus = "pending"
	StatusDownloading DownloadStatus = "downloading"
	StatusCompleted   DownloadStatus = "completed"
	StatusFailed      DownloadStatus = "failed"
)

// Stage is the transient progress phase reported to subscribers. Fetching
// and converting are sub-phases of the downloading status and are never
// persisted.
type Stage string

const (
	StageDownloading Stage = "downloading"
	StageConverting  Stage = "converting"
	StageCompleted   Stage = "completed"
	StageFailed      Stage = "failed"
)

// Video represents one tracked media item
type Video struct {
	VideoID     string         `json:"video_id" db:"video_id"`
	Title       string         `json:"title" db:"title"`
	ChannelName string         `json:"channel_name" db:"channel_name"`
	UploadDate  string         `json:"upload_date" db:"upload_date"`
	Duration    int            `json:"duration" db:"duration"`
	FilePath    string         `json:"file_path,omitempty" db:"file_path"`
	Transcript  *string        `json:"-" db:"transcript"` // JSON-encoded []CaptionRecord
	Status      DownloadStatus `json:"download_status" db:"download_status"`
	Error       *string        `json:"download_error,omitempty" db:"download_error"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}

// CaptionRecord is one normalized, time-stamped transcript line. Start and
// Duration are seconds rounded to two decimal places.
type CaptionRecord struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Snapshot is the latest known in-flight state for one video, held only in
// memory and overwritten on every update.
type Snapshot struct {
	VideoID  string `json:"video_id"`
	Filename string `json:"filename"`
	Percent  string `json:"percent,omitempty"`
	Stage    Stage  `json:"status,omitempty"`
}

// TrackedChannel is a channel polled for new uploads
type TrackedChannel struct {
	ChannelID     string     `json:"channel_id" db:"channel_id"`
	ChannelName   string     `json:"channel_name" db:"channel_name"`
	LastCheckTime *time.Time `json:"last_check_time,omitempty" db:"last_check_time"`
}

// Active reports whether a worker currently owns the video
func (s DownloadStatus) Active() bool {
	return s == StatusDownloading
}

// Terminal reports whether the status is a final outcome
func (s DownloadStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}
