package domain

import "testing"

func TestDownloadStatusActive(t *testing.T) {
	tests := []struct {
		status DownloadStatus
		want   bool
	}{
		{StatusPending, false},
		{StatusDownloading, true},
		{StatusCompleted, false},
		{StatusFailed, false},
	}

	for _, tt := range tests {
		if got := tt.status.Active(); got != tt.want {
			t.Errorf("%s.Active() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestDownloadStatusTerminal(t *testing.T) {
	tests := []struct {
		status DownloadStatus
		want   bool
	}{
		{StatusPending, false},
		{StatusDownloading, false},
		{StatusCompleted, true},
		{StatusFailed, true},
	}

	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}
