package tracker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cesargomez89/youaudio/internal/domain"
	"github.com/cesargomez89/youaudio/internal/downloader"
	"github.com/cesargomez89/youaudio/internal/extractor"
	"github.com/cesargomez89/youaudio/internal/logger"
	"github.com/cesargomez89/youaudio/internal/store"
)

type fakeLister struct {
	uploads  map[string][]extractor.Upload
	failWith error
}

func (f *fakeLister) RecentUploads(ctx context.Context, channelID string, limit int) ([]extractor.Upload, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.uploads[channelID], nil
}

type fakeFetcher struct {
	fetched []string
}

func (f *fakeFetcher) Fetch(videoID string) (*downloader.FetchResult, error) {
	f.fetched = append(f.fetched, videoID)
	return &downloader.FetchResult{Status: domain.StatusDownloading}, nil
}

func setupTracker(t *testing.T, lister extractor.Lister) (*Tracker, *store.DB, *fakeFetcher) {
	t.Helper()
	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	fetcher := &fakeFetcher{}
	tr := New(db, lister, fetcher, time.Hour, 5, logger.Default())
	return tr, db, fetcher
}

func TestSweepQueuesNewUploads(t *testing.T) {
	lister := &fakeLister{uploads: map[string][]extractor.Upload{
		"UC123": {
			{VideoID: "v1", Title: "First"},
			{VideoID: "v2", Title: "Second"},
		},
	}}
	tr, db, fetcher := setupTracker(t, lister)

	if err := db.UpsertChannel("UC123", "Some Channel"); err != nil {
		t.Fatal(err)
	}

	tr.Sweep()

	if len(fetcher.fetched) != 2 {
		t.Fatalf("expected 2 fetches, got %d", len(fetcher.fetched))
	}

	video, err := db.GetVideo("v1")
	if err != nil || video == nil {
		t.Fatalf("expected v1 recorded: %v", err)
	}
	if video.Title != "First" {
		t.Errorf("expected upload title stored, got %q", video.Title)
	}

	channels, _ := db.ListChannels()
	if channels[0].LastCheckTime == nil {
		t.Error("expected last check time recorded")
	}
}

func TestSweepSkipsKnownVideos(t *testing.T) {
	lister := &fakeLister{uploads: map[string][]extractor.Upload{
		"UC123": {{VideoID: "v1", Title: "First"}},
	}}
	tr, db, fetcher := setupTracker(t, lister)

	if err := db.UpsertChannel("UC123", "Some Channel"); err != nil {
		t.Fatal(err)
	}
	if err := db.EnsureVideo("v1", "First"); err != nil {
		t.Fatal(err)
	}

	tr.Sweep()

	if len(fetcher.fetched) != 0 {
		t.Errorf("expected no fetches for known video, got %v", fetcher.fetched)
	}
}

func TestSweepListerFailureTouchesNothing(t *testing.T) {
	lister := &fakeLister{failWith: errors.New("network down")}
	tr, db, fetcher := setupTracker(t, lister)

	if err := db.UpsertChannel("UC123", "Some Channel"); err != nil {
		t.Fatal(err)
	}

	tr.Sweep()

	if len(fetcher.fetched) != 0 {
		t.Error("expected no fetches on lister failure")
	}
	channels, _ := db.ListChannels()
	if channels[0].LastCheckTime != nil {
		t.Error("expected check time untouched on failure")
	}
}

func TestSweepNoChannels(t *testing.T) {
	lister := &fakeLister{}
	tr, _, fetcher := setupTracker(t, lister)

	tr.Sweep()

	if len(fetcher.fetched) != 0 {
		t.Error("expected no fetches with no tracked channels")
	}
}

func TestStartStop(t *testing.T) {
	lister := &fakeLister{}
	tr, _, _ := setupTracker(t, lister)

	tr.Start()
	tr.Stop()
}
