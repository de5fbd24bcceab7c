package tagging

import "testing"

func TestUploadYear(t *testing.T) {
	tests := []struct {
		name       string
		uploadDate string
		expected   string
	}{
		{"full date", "20240115", "2024"},
		{"empty", "", ""},
		{"too short", "202", ""},
		{"year only", "2024", "2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := uploadYear(tt.uploadDate); got != tt.expected {
				t.Errorf("uploadYear(%q) = %q, want %q", tt.uploadDate, got, tt.expected)
			}
		})
	}
}

func TestTagMP3MissingFile(t *testing.T) {
	err := TagMP3("/nonexistent/audio.mp3", Metadata{Title: "x"})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
