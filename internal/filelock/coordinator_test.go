package filelock

import (
	"sync"
	"testing"
)

func TestAcquireRelease(t *testing.T) {
	c := NewCoordinator()

	unlock := c.Acquire("abc123.mp3")
	if c.Len() != 1 {
		t.Errorf("Expected 1 lock entry, got %d", c.Len())
	}
	unlock()

	// Re-acquire after release works
	unlock = c.Acquire("abc123.mp3")
	unlock()
}

func TestTryAcquireHeldFile(t *testing.T) {
	c := NewCoordinator()

	unlock := c.Acquire("busy.mp3")

	if _, ok := c.TryAcquire("busy.mp3"); ok {
		t.Error("Expected TryAcquire to fail while lock is held")
	}

	unlock()

	tryUnlock, ok := c.TryAcquire("busy.mp3")
	if !ok {
		t.Fatal("Expected TryAcquire to succeed after release")
	}
	tryUnlock()
}

func TestSeparateFilesDoNotContend(t *testing.T) {
	c := NewCoordinator()

	unlockA := c.Acquire("a.mp3")
	defer unlockA()

	unlockB, ok := c.TryAcquire("b.mp3")
	if !ok {
		t.Fatal("Expected independent files to have independent locks")
	}
	unlockB()
}

func TestForget(t *testing.T) {
	c := NewCoordinator()

	unlock := c.Acquire("stale.mp3")
	c.Forget("stale.mp3")
	unlock()

	if c.Len() != 0 {
		t.Errorf("Expected 0 lock entries after Forget, got %d", c.Len())
	}
}

func TestConcurrentLazyCreation(t *testing.T) {
	c := NewCoordinator()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := c.Acquire("same.mp3")
			unlock()
		}()
	}
	wg.Wait()

	if c.Len() != 1 {
		t.Errorf("Expected a single lock entry, got %d", c.Len())
	}
}
