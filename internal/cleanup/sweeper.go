// Package cleanup removes aged temporary audio files without disturbing
// files that are actively being served.
package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cesargomez89/youaudio/internal/filelock"
	"github.com/cesargomez89/youaudio/internal/logger"
)

// Sweeper periodically deletes files in Dir whose last-modified time is
// older than Retention. Files whose lock is held are skipped for the round;
// the sweep never blocks on a busy file.
type Sweeper struct {
	Dir       string
	Retention time.Duration
	Interval  time.Duration
	Locks     *filelock.Coordinator
	Logger    *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweeper creates a sweeper over dir with the given retention window
func NewSweeper(dir string, retention, interval time.Duration, locks *filelock.Coordinator, log *logger.Logger) *Sweeper {
	if log == nil {
		log = logger.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		Dir:       dir,
		Retention: retention,
		Interval:  interval,
		Locks:     locks,
		Logger:    log.WithComponent("cleanup"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the periodic sweep loop
func (s *Sweeper) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

// Stop terminates the sweep loop and waits for it to exit
func (s *Sweeper) Stop() {
	s.cancel()
	s.wg.Wait()
}

// Sweep runs one cleanup round over the directory
func (s *Sweeper) Sweep() {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.Logger.Error("Failed to read temp dir", "dir", s.Dir, "error", err)
		}
		return
	}

	now := time.Now()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		s.sweepFile(entry.Name(), now)
	}
}

func (s *Sweeper) sweepFile(filename string, now time.Time) {
	unlock, ok := s.Locks.TryAcquire(filename)
	if !ok {
		s.Logger.Debug("Skipping file in use", "filename", filename)
		return
	}
	defer unlock()

	path := filepath.Join(s.Dir, filename)
	info, err := os.Stat(path)
	if err != nil {
		s.Logger.Warn("Failed to stat temp file", "filename", filename, "error", err)
		return
	}

	age := now.Sub(info.ModTime())
	if age <= s.Retention {
		return
	}

	if err := os.Remove(path); err != nil {
		s.Logger.Warn("Failed to remove temp file", "filename", filename, "error", err)
		return
	}

	s.Locks.Forget(filename)
	s.Logger.Info("Removed old temporary file", "filename", filename, "age", age)
}
