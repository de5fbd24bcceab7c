// Package captions converts raw timed-caption payloads (yt-dlp json3) into
// normalized transcript records.
package captions

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/cesargomez89/youaudio/internal/domain"
)

// ErrMalformedCaptionData is returned when a payload cannot be parsed as the
// expected json3 structure.
var ErrMalformedCaptionData = errors.New("malformed caption data")

// rawPayload mirrors the json3 subtitle format: a sequence of timed events,
// each carrying text segments.
type rawPayload struct {
	Events []rawEvent `json:"events"`
}

type rawEvent struct {
	StartMs    float64      `json:"tStartMs"`
	DurationMs float64      `json:"dDurationMs"`
	Segments   []rawSegment `json:"segs"`
}

type rawSegment struct {
	Text string `json:"utf8"`
}

// Normalize parses a raw json3 payload into ordered caption records. Events
// whose concatenated, trimmed text is empty contribute no record; negative
// start or duration values are clamped to zero. A payload with zero
// qualifying events yields an empty slice, not an error.
func Normalize(data []byte) ([]domain.CaptionRecord, error) {
	var payload rawPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCaptionData, err)
	}

	records := make([]domain.CaptionRecord, 0, len(payload.Events))
	for _, event := range payload.Events {
		parts := make([]string, 0, len(event.Segments))
		for _, seg := range event.Segments {
			if seg.Text != "" {
				parts = append(parts, seg.Text)
			}
		}

		text := strings.TrimSpace(strings.Join(parts, " "))
		if text == "" {
			continue
		}

		records = append(records, domain.CaptionRecord{
			Text:     text,
			Start:    round2(math.Max(event.StartMs, 0) / 1000),
			Duration: round2(math.Max(event.DurationMs, 0) / 1000),
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Start < records[j].Start
	})

	return records, nil
}

// NormalizeFile reads and normalizes a raw subtitle file, then removes it.
// The raw file is gone after a successful call, so this must not be invoked
// twice for the same path.
func NormalizeFile(path string) ([]domain.CaptionRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read caption file: %w", err)
	}

	records, err := Normalize(data)
	if err != nil {
		return nil, err
	}

	if err := os.Remove(path); err != nil {
		return nil, fmt.Errorf("failed to remove raw caption file: %w", err)
	}

	return records, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
