// Package spool runs review plans dropped into a watched directory.
// Plans are processed strictly one at a time — the sequential submission
// model applies across plans, not just within one.
package spool

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDefault is the default debounce interval for file events.
// Editors and scp produce several writes per file; one timer resets on
// each event and flushes the accumulated paths when writes settle.
const debounceDefault = 200 * time.Millisecond

// maxQueueSize bounds the work queue so a burst of dropped plans cannot
// grow memory without bound.
const maxQueueSize = 200

// Watcher watches a spool directory for new plan files.
type Watcher struct {
	dir      string
	handler  func(path string)
	debounce time.Duration
}

// NewWatcher creates a watcher for the spool directory. handler is called
// once per settled plan file, never concurrently.
func NewWatcher(dir string, handler func(path string)) *Watcher {
	return &Watcher{
		dir:      dir,
		handler:  handler,
		debounce: debounceDefault,
	}
}

// isPlanFile reports whether a spool file should be processed.
func isPlanFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Run watches the spool directory until ctx is cancelled. Plan files
// already present at startup are queued first, so a stopped watcher picks
// up where it left off.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.dir); err != nil {
		return err
	}

	// ready collects paths that passed debounce; a single timer resets on
	// each event and flushes everything when it fires.
	var mu sync.Mutex
	ready := make(map[string]bool)

	queue := make(chan string, maxQueueSize)

	// Exactly one worker: plans must not overlap. After cancellation the
	// worker drains the queue without running anything — a queued backlog
	// must never submit past the operator's Ctrl-C.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for path := range queue {
			if ctx.Err() != nil {
				continue
			}
			w.handler(path)
		}
	}()

	flush := func() {
		if ctx.Err() != nil {
			return
		}
		mu.Lock()
		batch := make([]string, 0, len(ready))
		for p := range ready {
			batch = append(batch, p)
		}
		ready = make(map[string]bool)
		mu.Unlock()

		for _, p := range batch {
			select {
			case queue <- p:
			case <-ctx.Done():
				return
			}
		}
	}

	debounceTimer := time.NewTimer(w.debounce)
	debounceTimer.Stop()

	defer func() {
		debounceTimer.Stop()
		flush()
		close(queue)
		wg.Wait()
	}()

	// Sweep plans that arrived while the watcher was down. Swept paths go
	// through the ready map like live events, so a plan that is both swept
	// and evented during startup is still processed once.
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	swept := false
	for _, e := range entries {
		if !e.IsDir() && isPlanFile(e.Name()) {
			mu.Lock()
			ready[filepath.Join(w.dir, e.Name())] = true
			mu.Unlock()
			swept = true
		}
	}
	if swept {
		debounceTimer.Reset(w.debounce)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-debounceTimer.C:
			flush()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isPlanFile(event.Name) {
				continue
			}
			mu.Lock()
			ready[event.Name] = true
			mu.Unlock()
			debounceTimer.Reset(w.debounce)

		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
		}
	}
}
