package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/cesargomez89/youaudio/internal/domain"
)

// EnsureVideo inserts a pending row for videoID if none exists yet. Existing
// rows are left untouched.
func (db *DB) EnsureVideo(videoID, title string) error {
	query := `INSERT OR IGNORE INTO videos (video_id, title, download_status, created_at)
		VALUES (?, ?, ?, ?)`
	_, err := db.Exec(query, videoID, title, domain.StatusPending, time.Now())
	if err != nil {
		return fmt.Errorf("failed to ensure video row: %w", err)
	}
	return nil
}

// GetVideo returns the row for videoID, or nil when absent
func (db *DB) GetVideo(videoID string) (*domain.Video, error) {
	var video domain.Video
	err := db.Get(&video, `SELECT * FROM videos WHERE video_id = ?`, videoID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// ClaimVideo atomically moves a video into downloading unless a worker
// already owns it. The compare-and-set in a single UPDATE is what prevents
// two concurrent fetch requests from both spawning a worker.
func (db *DB) ClaimVideo(videoID string) (bool, error) {
	query := `UPDATE videos
		SET download_status = ?, download_error = NULL
		WHERE video_id = ? AND download_status != ?`
	res, err := db.Exec(query, domain.StatusDownloading, videoID, domain.StatusDownloading)
	if err != nil {
		return false, fmt.Errorf("failed to claim video: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkCompleted records the terminal success outcome along with the
// extraction metadata and optional transcript in one statement.
func (db *DB) MarkCompleted(videoID, title, channelName, uploadDate string, duration int, filePath string, transcript *string) error {
	query := `UPDATE videos
		SET download_status = ?, download_error = NULL,
			title = ?, channel_name = ?, upload_date = ?, duration = ?,
			file_path = ?, transcript = ?
		WHERE video_id = ?`
	_, err := db.Exec(query, domain.StatusCompleted, title, channelName, uploadDate, duration, filePath, transcript, videoID)
	if err != nil {
		return fmt.Errorf("failed to mark video completed: %w", err)
	}
	return nil
}

// MarkFailed records the terminal failure outcome with its cause
func (db *DB) MarkFailed(videoID, cause string) error {
	query := `UPDATE videos SET download_status = ?, download_error = ? WHERE video_id = ?`
	_, err := db.Exec(query, domain.StatusFailed, cause, videoID)
	if err != nil {
		return fmt.Errorf("failed to mark video failed: %w", err)
	}
	return nil
}

// ListVideos returns one page of videos, newest first, plus the total count
func (db *DB) ListVideos(page, perPage int) ([]*domain.Video, int, error) {
	var total int
	if err := db.Get(&total, `SELECT COUNT(*) FROM videos`); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	var videos []*domain.Video
	err := db.Select(&videos, `SELECT * FROM videos ORDER BY created_at DESC LIMIT ? OFFSET ?`, perPage, offset)
	if err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

// GetTranscript returns the stored transcript blob for videoID. The second
// return value distinguishes a missing row from a row without a transcript.
func (db *DB) GetTranscript(videoID string) (*string, bool, error) {
	var transcript sql.NullString
	err := db.Get(&transcript, `SELECT transcript FROM videos WHERE video_id = ?`, videoID)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !transcript.Valid {
		return nil, true, nil
	}
	return &transcript.String, true, nil
}

// DeleteVideo removes the row for videoID
func (db *DB) DeleteVideo(videoID string) error {
	_, err := db.Exec(`DELETE FROM videos WHERE video_id = ?`, videoID)
	return err
}

// HasVideo reports whether a row exists for videoID
func (db *DB) HasVideo(videoID string) (bool, error) {
	var count int
	err := db.Get(&count, `SELECT COUNT(*) FROM videos WHERE video_id = ?`, videoID)
	return count > 0, err
}

// ResetStuckVideos re-queues rows left in downloading by an earlier process
// (in-flight progress is not durable; only terminal status is).
func (db *DB) ResetStuckVideos() error {
	query := `UPDATE videos SET download_status = ? WHERE download_status = ?`
	_, err := db.Exec(query, domain.StatusPending, domain.StatusDownloading)
	return err
}
