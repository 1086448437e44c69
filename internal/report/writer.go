// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report maintains the weekly Markdown digests: one file per
// Monday-to-Sunday week, one "## YYYY-MM-DD" section per day, entries for the
// papers the model marked as interesting.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// lockRetry is how often a blocked Update retries the file lock.
var lockRetry = 50 * time.Millisecond

// Writer updates weekly report files under Dir.
type Writer struct {
	Dir    string
	Logger *slog.Logger
}

// NewWriter returns a Writer for dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{Dir: dir, Logger: logger}
}

// UpdateResult describes what Update did.
type UpdateResult struct {
	// Path is the weekly file, empty when nothing was written.
	Path string

	// Entries is the number of papers written to the section.
	Entries int

	// Created reports whether the weekly file was new.
	Created bool
}

// Update rewrites the section for day in its weekly file with the
// interested papers among papers. It does nothing when none are interested.
// The read-merge-write cycle runs under an exclusive lock on a hidden
// sibling lock file and the new content replaces the old through a rename.
func (w *Writer) Update(ctx context.Context, day time.Time, papers []types.EnrichedPaper) (UpdateResult, error) {
	interested := types.Interested(papers)
	if len(interested) == 0 {
		w.Logger.Info("no interested papers, report unchanged", "date", day.Format(time.DateOnly))
		return UpdateResult{}, nil
	}

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return UpdateResult{}, fmt.Errorf("creating report directory %s: %w", w.Dir, err)
	}

	path := WeekFile(w.Dir, day)
	lock := flock.New(filepath.Join(w.Dir, "."+filepath.Base(path)+".lock"))
	locked, err := lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("locking %s: %w", path, err)
	}
	if !locked {
		return UpdateResult{}, fmt.Errorf("locking %s: lock not acquired", path)
	}
	defer lock.Unlock()

	existing, created, err := readOrHeader(path, day)
	if err != nil {
		return UpdateResult{}, err
	}

	date := day.Format(time.DateOnly)
	merged := Merge(existing, date, SectionBody(day, interested))
	if err := writeAtomic(path, []byte(merged)); err != nil {
		return UpdateResult{}, err
	}

	w.Logger.Info("report updated", "path", path, "date", date, "entries", len(interested), "created", created)
	return UpdateResult{Path: path, Entries: len(interested), Created: created}, nil
}

// readOrHeader returns the file content with CRLF line endings converted to
// LF, or the weekly header when the file does not exist yet. Reports are
// always written with LF endings.
func readOrHeader(path string, day time.Time) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return strings.ReplaceAll(string(data), "\r\n", "\n"), false, nil
	}
	if os.IsNotExist(err) {
		return weekHeader(day), true, nil
	}
	return "", false, fmt.Errorf("reading report %s: %w", path, err)
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
