package captions

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestNormalize(t *testing.T) {
	payload := []byte(`{
		"events": [
			{"tStartMs": 1500, "dDurationMs": 2340, "segs": [{"utf8": "hello"}, {"utf8": "world"}]},
			{"tStartMs": 0, "dDurationMs": 1000, "segs": [{"utf8": " first "}]},
			{"tStartMs": 4000, "dDurationMs": 500, "segs": [{"utf8": "   "}, {"utf8": "\n"}]},
			{"tStartMs": 5000, "dDurationMs": 500, "segs": []}
		]
	}`)

	records, err := Normalize(payload)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	// Sorted by start
	if !sort.SliceIsSorted(records, func(i, j int) bool { return records[i].Start < records[j].Start }) {
		t.Error("Expected records sorted by start")
	}

	if records[0].Text != "first" {
		t.Errorf("Expected trimmed text 'first', got %q", records[0].Text)
	}
	if records[0].Start != 0 || records[0].Duration != 1.0 {
		t.Errorf("Unexpected timing: start=%v duration=%v", records[0].Start, records[0].Duration)
	}

	if records[1].Text != "hello world" {
		t.Errorf("Expected joined text 'hello world', got %q", records[1].Text)
	}
	if records[1].Start != 1.5 {
		t.Errorf("Expected start 1.5, got %v", records[1].Start)
	}
	if records[1].Duration != 2.34 {
		t.Errorf("Expected duration rounded to 2.34, got %v", records[1].Duration)
	}

	for _, r := range records {
		if r.Text == "" {
			t.Error("Expected no empty-text records")
		}
		if r.Start < 0 || r.Duration < 0 {
			t.Errorf("Expected non-negative timings, got start=%v duration=%v", r.Start, r.Duration)
		}
	}
}

func TestNormalizeWhitespaceOnlyEventDropped(t *testing.T) {
	payload := []byte(`{
		"events": [
			{"tStartMs": 0, "dDurationMs": 100, "segs": [{"utf8": "kept"}]},
			{"tStartMs": 200, "dDurationMs": 100, "segs": [{"utf8": " "}, {"utf8": "\t"}]}
		]
	}`)

	records, err := Normalize(payload)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected whitespace-only event to be dropped, got %d records", len(records))
	}
	if records[0].Text != "kept" {
		t.Errorf("Expected 'kept', got %q", records[0].Text)
	}
}

func TestNormalizeClampsNegativeTimings(t *testing.T) {
	payload := []byte(`{
		"events": [
			{"tStartMs": -500, "dDurationMs": -200, "segs": [{"utf8": "early"}]},
			{"tStartMs": 1000, "dDurationMs": -1, "segs": [{"utf8": "later"}]}
		]
	}`)

	records, err := Normalize(payload)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	if records[0].Start != 0 || records[0].Duration != 0 {
		t.Errorf("Expected negative timings clamped to 0, got start=%v duration=%v",
			records[0].Start, records[0].Duration)
	}
	if records[1].Start != 1.0 || records[1].Duration != 0 {
		t.Errorf("Unexpected timings: start=%v duration=%v",
			records[1].Start, records[1].Duration)
	}
}

func TestNormalizeEmptyEvents(t *testing.T) {
	records, err := Normalize([]byte(`{"events": []}`))
	if err != nil {
		t.Fatalf("Expected no error for zero events, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected empty result, got %d records", len(records))
	}
}

func TestNormalizeMalformed(t *testing.T) {
	for _, raw := range []string{`not json`, `[1,2,3]`, `"events"`} {
		_, err := Normalize([]byte(raw))
		if !errors.Is(err, ErrMalformedCaptionData) {
			t.Errorf("Normalize(%q) expected ErrMalformedCaptionData, got %v", raw, err)
		}
	}
}

func TestNormalizeFileRemovesRaw(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "abc123.en.json3")
	payload := `{"events": [{"tStartMs": 0, "dDurationMs": 1000, "segs": [{"utf8": "hi"}]}]}`
	if err := os.WriteFile(path, []byte(payload), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	records, err := NormalizeFile(path)
	if err != nil {
		t.Fatalf("NormalizeFile failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected raw caption file to be removed after normalization")
	}
}

func TestNormalizeFileKeepsRawOnParseError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json3")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	if _, err := NormalizeFile(path); !errors.Is(err, ErrMalformedCaptionData) {
		t.Fatalf("Expected ErrMalformedCaptionData, got %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Error("Expected raw caption file to survive a failed parse")
	}
}
