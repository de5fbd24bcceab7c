package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Setting keys understood by the service. Values stored under these keys
// override the corresponding config defaults at request time.
const (
	SettingProxy        = "proxy"
	SettingSubtitleLang = "subtitle_language"
)

// GetSetting returns the value stored under key, or fallback when absent
func (db *DB) GetSetting(key, fallback string) (string, error) {
	var value string
	err := db.Get(&value, `SELECT value FROM settings WHERE key = ?`, key)
	if err == sql.ErrNoRows {
		return fallback, nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSetting upserts the value stored under key
func (db *DB) SetSetting(key, value string) error {
	query := `INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err := db.Exec(query, key, value, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

// DeleteSetting removes the value stored under key, reverting callers to
// the config default.
func (db *DB) DeleteSetting(key string) error {
	_, err := db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	return err
}

// AllSettings returns every stored key/value pair
func (db *DB) AllSettings() (map[string]string, error) {
	rows, err := db.Queryx(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}
	return settings, rows.Err()
}
