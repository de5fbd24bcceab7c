package extractor

import "testing"

func TestWatchURL(t *testing.T) {
	if got := watchURL("abc123"); got != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("unexpected url: %s", got)
	}
}

func TestChannelURL(t *testing.T) {
	if got := channelURL("UC123"); got != "https://www.youtube.com/channel/UC123/videos" {
		t.Errorf("unexpected url: %s", got)
	}
}

func TestAudioFilename(t *testing.T) {
	got := audioFilename("abc123", Options{AudioCodec: "mp3"})
	if got != "abc123.mp3" {
		t.Errorf("unexpected filename: %s", got)
	}
}

func TestStrValue(t *testing.T) {
	if strValue(nil) != "" {
		t.Error("expected empty string for nil")
	}
	s := "hello"
	if strValue(&s) != "hello" {
		t.Error("expected dereferenced value")
	}
}

func TestFirstOf(t *testing.T) {
	if got := firstOf("", "second", "third"); got != "second" {
		t.Errorf("expected first non-empty value, got %q", got)
	}
	if got := firstOf("", ""); got != "" {
		t.Errorf("expected empty for all-empty input, got %q", got)
	}
}
