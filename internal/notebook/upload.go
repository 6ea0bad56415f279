// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package notebook

import (
	"context"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// maxConcurrentUploads bounds the in-flight uploads in one batch.
// PERFORMANCE: Uploads overlap network latency without letting a large
// batch open dozens of connections at once.
const maxConcurrentUploads = 4

// UploadStatus describes one file's outcome within a batch.
type UploadStatus int

const (
	// UploadRejected means the file failed local validation and was
	// never sent.
	UploadRejected UploadStatus = iota
	// UploadSucceeded means the backend accepted the file.
	UploadSucceeded
	// UploadFailed means the upload was attempted and failed.
	UploadFailed
)

// UploadResult is the outcome for one file in a batch.
type UploadResult struct {
	FileName string
	Status   UploadStatus
	Err      error
}

// UploadSummary aggregates a batch of uploads. A batch with both
// successes and failures is a partial failure, not an error: the caller
// reports the counts and the per-file reasons.
type UploadSummary struct {
	Succeeded int
	Failed    int
	Rejected  int
	Results   []UploadResult
}

// AllFailed reports whether nothing in the batch made it to the server.
func (s *UploadSummary) AllFailed() bool {
	return s.Succeeded == 0 && (s.Failed > 0 || s.Rejected > 0)
}

// Partial reports whether the batch had both successes and failures.
func (s *UploadSummary) Partial() bool {
	return s.Succeeded > 0 && (s.Failed > 0 || s.Rejected > 0)
}

// String renders a one-line summary for toasts and logs.
func (s *UploadSummary) String() string {
	plural := ""
	if s.Succeeded != 1 {
		plural = "s"
	}
	failures := s.Failed + s.Rejected
	switch {
	case failures == 0:
		return fmt.Sprintf("%d document%s uploaded", s.Succeeded, plural)
	case s.Succeeded == 0:
		return "all uploads failed"
	default:
		return fmt.Sprintf("%d document%s uploaded (%d failed)", s.Succeeded, plural, failures)
	}
}

// UploadFiles uploads a batch of local files to a notebook.
//
// Every file is validated before any upload starts; rejected files never
// consume bandwidth. Valid files upload concurrently. After the batch,
// one document re-fetch reconciles local state with whatever the server
// actually ingested, so a half-failed batch still leaves an accurate
// document list.
//
// onResult, when non-nil, is called from upload goroutines as each file
// settles; callers feeding a UI should forward into their own event loop.
func (s *Store) UploadFiles(ctx context.Context, notebookID string, paths []string, onResult func(UploadResult)) (*UploadSummary, error) {
	if len(paths) == 0 {
		return &UploadSummary{}, nil
	}
	if notebookID == "" {
		return nil, fmt.Errorf("no notebook selected")
	}

	summary := &UploadSummary{}
	report := func(r UploadResult) {
		summary.Results = append(summary.Results, r)
		if onResult != nil {
			onResult(r)
		}
	}

	type pending struct {
		path     string
		name     string
		mimeType string
	}
	var valid []pending
	for _, path := range paths {
		name := filepath.Base(path)
		info, err := os.Stat(path)
		if err != nil {
			report(UploadResult{FileName: name, Status: UploadRejected, Err: err})
			summary.Rejected++
			continue
		}
		mimeType := mimeTypeForFile(name)
		if err := ValidateUpload(name, info.Size(), mimeType); err != nil {
			report(UploadResult{FileName: name, Status: UploadRejected, Err: err})
			summary.Rejected++
			continue
		}
		valid = append(valid, pending{path: path, name: name, mimeType: mimeType})
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, maxConcurrentUploads)
	)
	for _, p := range valid {
		wg.Add(1)
		go func(p pending) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result := s.uploadOne(ctx, notebookID, p.path, p.name, p.mimeType)

			mu.Lock()
			summary.Results = append(summary.Results, result)
			if result.Status == UploadSucceeded {
				summary.Succeeded++
			} else {
				summary.Failed++
			}
			mu.Unlock()
			if onResult != nil {
				onResult(result)
			}
		}(p)
	}
	wg.Wait()

	if summary.Succeeded > 0 {
		if err := s.RefreshDocuments(ctx, notebookID); err != nil {
			log.Printf("notebook: post-upload refresh failed: %v", err)
		}
	}

	log.Printf("notebook: upload batch for %s: %d ok, %d failed, %d rejected",
		notebookID, summary.Succeeded, summary.Failed, summary.Rejected)
	return summary, nil
}

// uploadOne reads and uploads a single file.
func (s *Store) uploadOne(ctx context.Context, notebookID, path, name, mimeType string) UploadResult {
	content, err := os.ReadFile(path)
	if err != nil {
		return UploadResult{FileName: name, Status: UploadFailed, Err: fmt.Errorf("failed to read file: %w", err)}
	}
	// Re-check size against what was actually read; the file may have
	// grown since Stat.
	if err := ValidateUpload(name, int64(len(content)), mimeType); err != nil {
		return UploadResult{FileName: name, Status: UploadFailed, Err: err}
	}

	if _, err := s.gateway.UploadDocument(ctx, notebookID, content, name, mimeType); err != nil {
		return UploadResult{FileName: name, Status: UploadFailed, Err: err}
	}
	return UploadResult{FileName: name, Status: UploadSucceeded}
}

// mimeTypeForFile derives a MIME type from a file name. Markdown gets a
// fixed type because mime.TypeByExtension varies across platforms.
func mimeTypeForFile(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".md":
		return "text/markdown"
	case ".txt":
		return "text/plain"
	case ".csv":
		return "text/csv"
	}
	mimeType := mime.TypeByExtension(ext)
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return mimeType
}
