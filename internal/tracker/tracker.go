// Package tracker polls subscribed channels for new uploads and queues
// them for download.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/cesargomez89/youaudio/internal/downloader"
	"github.com/cesargomez89/youaudio/internal/extractor"
	"github.com/cesargomez89/youaudio/internal/logger"
	"github.com/cesargomez89/youaudio/internal/store"
)

// Fetcher starts a download for a video. Satisfied by *downloader.Service.
type Fetcher interface {
	Fetch(videoID string) (*downloader.FetchResult, error)
}

// Tracker periodically sweeps every tracked channel's recent uploads and
// kicks off downloads for videos not seen before.
type Tracker struct {
	store    *store.DB
	lister   extractor.Lister
	fetcher  Fetcher
	interval time.Duration
	limit    int
	logger   *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(db *store.DB, lister extractor.Lister, fetcher Fetcher, interval time.Duration, limit int, log *logger.Logger) *Tracker {
	if log == nil {
		log = logger.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		store:    db,
		lister:   lister,
		fetcher:  fetcher,
		interval: interval,
		limit:    limit,
		logger:   log.WithComponent("tracker"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the periodic sweep loop
func (t *Tracker) Start() {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-t.ctx.Done():
				return
			case <-ticker.C:
				t.Sweep()
			}
		}
	}()
}

// Stop cancels the loop and waits for an in-flight sweep to finish
func (t *Tracker) Stop() {
	t.cancel()
	t.wg.Wait()
}

// Sweep checks every tracked channel once. A failing channel is logged and
// skipped; it does not abort the rest of the sweep.
func (t *Tracker) Sweep() {
	channels, err := t.store.ListChannels()
	if err != nil {
		t.logger.Error("Failed to list tracked channels", "error", err)
		return
	}

	for _, channel := range channels {
		if t.ctx.Err() != nil {
			return
		}
		t.sweepChannel(channel.ChannelID, channel.ChannelName)
	}
}

func (t *Tracker) sweepChannel(channelID, channelName string) {
	log := t.logger.With("channel_id", channelID, "channel_name", channelName)

	uploads, err := t.lister.RecentUploads(t.ctx, channelID, t.limit)
	if err != nil {
		log.Warn("Failed to list channel uploads", "error", err)
		return
	}

	queued := 0
	for _, upload := range uploads {
		known, err := t.store.HasVideo(upload.VideoID)
		if err != nil {
			log.Error("Failed to check video", "video_id", upload.VideoID, "error", err)
			continue
		}
		if known {
			continue
		}

		if err := t.store.EnsureVideo(upload.VideoID, upload.Title); err != nil {
			log.Error("Failed to record new upload", "video_id", upload.VideoID, "error", err)
			continue
		}
		if _, err := t.fetcher.Fetch(upload.VideoID); err != nil {
			log.Error("Failed to start download", "video_id", upload.VideoID, "error", err)
			continue
		}
		queued++
	}

	if err := t.store.TouchChannel(channelID); err != nil {
		log.Error("Failed to record channel check time", "error", err)
	}

	log.Info("Channel sweep done", "uploads", len(uploads), "queued", queued)
}
