// Package watch triggers a callback when one of a few files changes.
//
// Directories are watched rather than the files themselves so that editors
// which save by rename are still seen. Bursts of events are coalesced.
package watch

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
)

// DefaultDebounce coalesces the write+chmod+rename bursts editors produce.
const DefaultDebounce = 250 * time.Millisecond

type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	onChange func(ctx context.Context, path string)

	mu      sync.Mutex
	pending *time.Timer
}

// New watches files and calls onChange after each settled change.
func New(files []string, debounce time.Duration, onChange func(ctx context.Context, path string)) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("watch: no files")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fw,
		files:    make(map[string]bool),
		debounce: debounce,
		onChange: onChange,
	}
	for _, f := range files {
		w.files[normalizePath(f)] = true
	}
	dirs := lo.Uniq(lo.Map(files, func(f string, _ int) string { return filepath.Dir(normalizePath(f)) }))
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	return w, nil
}

// Run processes events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.stopPending()
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[watch] error: %v", err)
		}
	}
}

func (w *Watcher) Close() error {
	w.stopPending()
	return w.watcher.Close()
}

func (w *Watcher) handleEvent(ctx context.Context, ev fsnotify.Event) {
	path := normalizePath(ev.Name)
	if !w.files[path] {
		return
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return
	}
	log.Printf("[watch] %s %s", ev.Op, path)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		w.onChange(ctx, path)
	})
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
}

func normalizePath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return filepath.Clean(p)
}
