// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jeranaias/lorebook-tui/internal/notebook"
)

// fakeUploader records upload batches.
type fakeUploader struct {
	mu       sync.Mutex
	activeID string
	batches  [][]string
}

func (f *fakeUploader) ActiveNotebookID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activeID
}

func (f *fakeUploader) UploadFiles(ctx context.Context, notebookID string, paths []string, onResult func(notebook.UploadResult)) (*notebook.UploadSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, paths)
	return &notebook.UploadSummary{Succeeded: len(paths)}, nil
}

func (f *fakeUploader) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func startWatcher(t *testing.T, dir string, uploader Uploader) *Watcher {
	t.Helper()
	w, err := New(dir, 100*time.Millisecond, uploader)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w
}

// waitFor polls until cond returns true or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(25 * time.Millisecond)
	}
	return cond()
}

func TestNew_RequiresExistingDirectory(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing"), time.Second, &fakeUploader{}); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestWatcher_UploadsSettledFile(t *testing.T) {
	dir := t.TempDir()
	uploader := &fakeUploader{activeID: "nb-1"}
	startWatcher(t, dir, uploader)

	path := filepath.Join(dir, "notes.md")
	if err := os.WriteFile(path, []byte("# notes"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if !waitFor(t, 3*time.Second, func() bool { return uploader.batchCount() > 0 }) {
		t.Fatal("file was never uploaded")
	}

	uploader.mu.Lock()
	defer uploader.mu.Unlock()
	if len(uploader.batches[0]) != 1 || filepath.Base(uploader.batches[0][0]) != "notes.md" {
		t.Errorf("unexpected batch: %v", uploader.batches[0])
	}
}

func TestWatcher_SkipsWithoutSelection(t *testing.T) {
	dir := t.TempDir()
	uploader := &fakeUploader{activeID: ""}
	startWatcher(t, dir, uploader)

	if err := os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	time.Sleep(500 * time.Millisecond)
	if uploader.batchCount() != 0 {
		t.Error("upload attempted with no notebook selected")
	}
}

func TestWatcher_IgnoresHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	uploader := &fakeUploader{activeID: "nb-1"}
	startWatcher(t, dir, uploader)

	if err := os.WriteFile(filepath.Join(dir, ".partial"), []byte("x"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	time.Sleep(500 * time.Millisecond)
	if uploader.batchCount() != 0 {
		t.Error("hidden file was uploaded")
	}
}

func TestWatcher_RemovedFileNotUploaded(t *testing.T) {
	dir := t.TempDir()
	uploader := &fakeUploader{activeID: "nb-1"}
	startWatcher(t, dir, uploader)

	path := filepath.Join(dir, "gone.md")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	os.Remove(path)

	time.Sleep(500 * time.Millisecond)
	if uploader.batchCount() != 0 {
		t.Error("deleted file was uploaded")
	}
}

func TestWatcher_OnSummaryCallback(t *testing.T) {
	dir := t.TempDir()
	uploader := &fakeUploader{activeID: "nb-1"}
	w := startWatcher(t, dir, uploader)

	var mu sync.Mutex
	var got *notebook.UploadSummary
	w.OnSummary = func(s *notebook.UploadSummary) {
		mu.Lock()
		got = s
		mu.Unlock()
	}

	if err := os.WriteFile(filepath.Join(dir, "a.md"), []byte("x"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	ok := waitFor(t, 3*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != nil
	})
	if !ok {
		t.Fatal("summary callback never fired")
	}
	mu.Lock()
	defer mu.Unlock()
	if got.Succeeded != 1 {
		t.Errorf("summary = %+v", got)
	}
}
