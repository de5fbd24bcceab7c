package store

import (
	"fmt"
	"time"

	"github.com/cesargomez89/youaudio/internal/domain"
)

// UpsertChannel adds a channel to the tracked set or refreshes its name
func (db *DB) UpsertChannel(channelID, channelName string) error {
	query := `INSERT INTO tracked_channels (channel_id, channel_name) VALUES (?, ?)
		ON CONFLICT(channel_id) DO UPDATE SET channel_name = excluded.channel_name`
	_, err := db.Exec(query, channelID, channelName)
	if err != nil {
		return fmt.Errorf("failed to track channel %s: %w", channelID, err)
	}
	return nil
}

// ListChannels returns every tracked channel
func (db *DB) ListChannels() ([]*domain.TrackedChannel, error) {
	var channels []*domain.TrackedChannel
	err := db.Select(&channels, `SELECT * FROM tracked_channels ORDER BY channel_name`)
	if err != nil {
		return nil, err
	}
	return channels, nil
}

// TouchChannel records when the channel was last polled for uploads
func (db *DB) TouchChannel(channelID string) error {
	_, err := db.Exec(`UPDATE tracked_channels SET last_check_time = ? WHERE channel_id = ?`,
		time.Now(), channelID)
	return err
}

// DeleteChannel removes a channel from the tracked set
func (db *DB) DeleteChannel(channelID string) error {
	_, err := db.Exec(`DELETE FROM tracked_channels WHERE channel_id = ?`, channelID)
	return err
}
