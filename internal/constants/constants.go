// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort          = "9527"
	DefaultDBPath        = "youaudio.db"
	DefaultDownloadsDir  = "downloads"
	DefaultTempAudioDir  = "temp_audio"
	DefaultSubtitleLang  = "en"
	DefaultAudioCodec    = "mp3"
	DefaultAudioQuality  = "192"
	DefaultRetention     = 1 * time.Hour
	DefaultSweepInterval = 1 * time.Hour
	DefaultTrackInterval = 30 * time.Minute
	DefaultTrackLimit    = 5
	DefaultPageSize      = 10
	MaxPageSize          = 100
)

// Progress reporting
const (
	ProgressFlushInterval = 500 * time.Millisecond
)

// MIME Types
const (
	MimeTypeMP3  = "audio/mpeg"
	MimeTypeJSON = "application/json"
)

// File Extensions
const (
	ExtMP3         = ".mp3"
	ExtRawCaptions = ".json3"

	// CaptionsFormat is the subtitle format requested from the backend
	CaptionsFormat = "json3"
)

// Database
const (
	VideosTable          = "videos"
	TrackedChannelsTable = "tracked_channels"
	SettingsTable        = "settings"
)
