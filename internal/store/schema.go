package store

const Schema = `
CREATE TABLE IF NOT EXISTS videos (
	video_id TEXT PRIMARY KEY,
	title TEXT NOT NULL DEFAULT '',
	channel_name TEXT NOT NULL DEFAULT '',
	upload_date TEXT NOT NULL DEFAULT '',
	duration INTEGER NOT NULL DEFAULT 0,
	file_path TEXT NOT NULL DEFAULT '',
	transcript TEXT,
	download_status TEXT NOT NULL DEFAULT 'pending',
	download_error TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_videos_status ON videos(download_status);
CREATE INDEX IF NOT EXISTS idx_videos_created ON videos(created_at);

CREATE TABLE IF NOT EXISTS tracked_channels (
	channel_id TEXT PRIMARY KEY,
	channel_name TEXT NOT NULL DEFAULT '',
	last_check_time DATETIME
);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`
