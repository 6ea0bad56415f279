// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/lorebook-tui/internal/notebook"
)

// tickInterval is how often pending files are checked against the
// debounce window.
const tickInterval = 200 * time.Millisecond

// Uploader is the slice of the notebook store the watcher needs.
type Uploader interface {
	ActiveNotebookID() string
	UploadFiles(ctx context.Context, notebookID string, paths []string, onResult func(notebook.UploadResult)) (*notebook.UploadSummary, error)
}

// Watcher watches one folder and uploads new files to the active
// notebook once they settle.
type Watcher struct {
	dir      string
	debounce time.Duration
	uploader Uploader
	watcher  *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]time.Time // path -> last change time
	sizes   map[string]int64     // path -> size at last check

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// OnSummary, when set, receives the outcome of each upload batch.
	// Called from the watcher goroutine.
	OnSummary func(*notebook.UploadSummary)
}

// New creates a watcher for dir. The directory must exist.
func New(dir string, debounce time.Duration, uploader Uploader) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch path %s is not a directory", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		uploader: uploader,
		watcher:  fsw,
		pending:  make(map[string]time.Time),
		sizes:    make(map[string]int64),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. Events process on a background goroutine until
// Close.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	go w.run()
	log.Printf("watch: watching %s", w.dir)
	return nil
}

// Close stops the watcher and waits for the event goroutine to exit.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	<-w.done
	return err
}

// run processes filesystem events and flushes settled files.
func (w *Watcher) run() {
	defer close(w.done)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.markPending(event.Name)
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.forget(event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watch: %v", err)

		case <-ticker.C:
			w.flushSettled()
		}
	}
}

// markPending records a changed file. Hidden files and anything that
// fails validation up-front is ignored quietly; the folder may hold
// partial downloads and editor droppings.
func (w *Watcher) markPending(path string) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	w.mu.Lock()
	w.pending[path] = time.Now()
	w.sizes[path] = info.Size()
	w.mu.Unlock()
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	delete(w.pending, path)
	delete(w.sizes, path)
	w.mu.Unlock()
}

// flushSettled uploads files that stopped changing for at least the
// debounce window. A file whose size moved since the last tick resets
// its clock.
func (w *Watcher) flushSettled() {
	now := time.Now()

	w.mu.Lock()
	var settled []string
	for path, changed := range w.pending {
		info, err := os.Stat(path)
		if err != nil {
			delete(w.pending, path)
			delete(w.sizes, path)
			continue
		}
		if info.Size() != w.sizes[path] {
			w.pending[path] = now
			w.sizes[path] = info.Size()
			continue
		}
		if now.Sub(changed) >= w.debounce {
			settled = append(settled, path)
			delete(w.pending, path)
			delete(w.sizes, path)
		}
	}
	w.mu.Unlock()

	if len(settled) == 0 {
		return
	}

	notebookID := w.uploader.ActiveNotebookID()
	if notebookID == "" {
		log.Printf("watch: %d file(s) ready but no notebook selected; skipping", len(settled))
		return
	}

	summary, err := w.uploader.UploadFiles(w.ctx, notebookID, settled, nil)
	if err != nil {
		log.Printf("watch: upload failed: %v", err)
		return
	}
	log.Printf("watch: %s", summary)
	if w.OnSummary != nil {
		w.OnSummary(summary)
	}
}
