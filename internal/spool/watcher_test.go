package spool

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestIsPlanFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/spool/plan.yaml", true},
		{"/spool/plan.yml", true},
		{"/spool/PLAN.YAML", true},
		{"/spool/plan.json", false},
		{"/spool/plan.yaml.result", false},
		{"/spool/.yaml.swp", false},
	}
	for _, tt := range tests {
		if got := isPlanFile(tt.path); got != tt.want {
			t.Errorf("isPlanFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func collectPaths(t *testing.T, dir string, stopAfter int) (map[string]int, func()) {
	t.Helper()

	var mu sync.Mutex
	got := make(map[string]int)
	done := make(chan struct{})

	w := NewWatcher(dir, func(path string) {
		mu.Lock()
		got[filepath.Base(path)]++
		n := 0
		for _, c := range got {
			n += c
		}
		mu.Unlock()
		if n == stopAfter {
			close(done)
		}
	})
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	wait := func() {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("timed out waiting for watcher")
		}
		cancel()
		if err := <-errc; err != nil {
			t.Errorf("Run: %v", err)
		}
	}
	return got, wait
}

func TestWatcherProcessesDroppedPlan(t *testing.T) {
	dir := t.TempDir()
	got, wait := collectPaths(t, dir, 1)

	// Give the watcher a moment to register before dropping the file.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "new.yaml"), []byte("entries: []"), 0600); err != nil {
		t.Fatal(err)
	}

	wait()
	if got["new.yaml"] != 1 {
		t.Errorf("handler calls = %v, want new.yaml once", got)
	}
}

func TestWatcherCancelDiscardsBacklog(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yaml", "c.yaml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("entries: []"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []string
	w := NewWatcher(dir, func(path string) {
		mu.Lock()
		got = append(got, filepath.Base(path))
		mu.Unlock()
		// Cancel mid-plan: the in-flight plan completes, the two queued
		// behind it must be discarded, not drained.
		cancel()
	})
	w.debounce = 20 * time.Millisecond

	if err := w.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Errorf("handler ran %d plans (%v), want 1 (the in-flight plan only)", len(got), got)
	}
}

func TestWatcherDedupesSweptAndEventedPlan(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dup.yaml")
	if err := os.WriteFile(path, []byte("entries: []"), 0600); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	calls := 0
	w := NewWatcher(dir, func(string) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	// Rewrite the swept file right away: the write event and the startup
	// sweep refer to the same plan and must collapse into one call.
	if err := os.WriteFile(path, []byte("entries: []\n"), 0600); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	cancel()
	if err := <-errc; err != nil {
		t.Errorf("Run: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
}

func TestWatcherSweepsExistingPlans(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "old.yaml"), []byte("entries: []"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	got, wait := collectPaths(t, dir, 1)
	wait()

	if got["old.yaml"] != 1 {
		t.Errorf("handler calls = %v, want old.yaml once", got)
	}
	if got["ignore.txt"] != 0 {
		t.Errorf("non-plan file processed: %v", got)
	}
}
