package progress

import (
	"fmt"
	"sync"
	"testing"

	"github.com/cesargomez89/youaudio/internal/domain"
)

func TestRegistryUpsertAndGet(t *testing.T) {
	r := NewRegistry()

	if _, ok := r.Get("abc123"); ok {
		t.Error("Expected absent snapshot for unknown video")
	}

	first := domain.Snapshot{VideoID: "abc123", Filename: "abc123.mp3", Percent: "10%", Stage: domain.StageDownloading}
	r.Upsert("abc123", first)

	got, ok := r.Get("abc123")
	if !ok {
		t.Fatal("Expected snapshot after upsert")
	}
	if got != first {
		t.Errorf("Expected %+v, got %+v", first, got)
	}

	// Last write wins, no merge
	second := domain.Snapshot{VideoID: "abc123", Stage: domain.StageCompleted}
	r.Upsert("abc123", second)

	got, _ = r.Get("abc123")
	if got != second {
		t.Errorf("Expected overwrite with %+v, got %+v", second, got)
	}
	if got.Percent != "" {
		t.Error("Expected no merge of previous percent")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("video-%d", n%5)
			r.Upsert(id, domain.Snapshot{VideoID: id, Percent: fmt.Sprintf("%d%%", n)})
		}(i)
		go func(n int) {
			defer wg.Done()
			r.Get(fmt.Sprintf("video-%d", n%5))
		}(i)
	}
	wg.Wait()

	if r.Len() != 5 {
		t.Errorf("Expected 5 tracked videos, got %d", r.Len())
	}
}
