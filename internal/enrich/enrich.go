// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich classifies one paper at a time: it downloads the PDF, reads
// the first page, asks a model for tags, institution, interest and a short
// summary, and removes the PDF again.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/pdiddy/arxiv-digest/internal/pdftext"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// Enricher holds everything a worker needs to enrich one paper. It has no
// mutable state, so one value serves every worker.
type Enricher struct {
	Classifier Classifier
	Extractor  pdftext.Extractor

	// HTTP downloads PDFs. Its Timeout bounds a single download.
	HTTP   *http.Client
	Config types.EnrichConfig

	// UserAgent is sent with PDF downloads.
	UserAgent string
	Logger    *slog.Logger
}

// NewEnricher wires an Enricher from cfg. The download client uses
// cfg.DownloadTimeout (default 30s).
func NewEnricher(classifier Classifier, extractor pdftext.Extractor, cfg types.EnrichConfig, userAgent string, logger *slog.Logger) *Enricher {
	timeout := cfg.DownloadTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{
		Classifier: classifier,
		Extractor:  extractor,
		HTTP:       &http.Client{Timeout: timeout},
		Config:     cfg,
		UserAgent:  userAgent,
		Logger:     logger,
	}
}

// Enrich runs download, extraction and classification for p. It never
// returns an error: problems are reported through the Status and Err fields
// of the result, and a failed paper is never marked interested.
func (e *Enricher) Enrich(ctx context.Context, p types.Paper) types.EnrichedPaper {
	out := types.EnrichedPaper{Paper: p}
	log := e.Logger.With("id", p.ShortID())

	if p.PDFLink == "" || p.PDFLink == "N/A" {
		log.Info("skipping paper without PDF link", "title", p.Title)
		out.Status = types.EnrichSkipped
		out.Err = "no PDF link"
		return out
	}

	pdfPath, err := pdftext.Download(ctx, e.HTTP, p.PDFLink, e.tempDir(), p.ShortID()+".pdf", e.UserAgent)
	if err != nil {
		log.Warn("PDF download failed", "url", p.PDFLink, "error", err)
		out.Status = types.EnrichFailed
		out.Err = fmt.Sprintf("download: %v", err)
		return out
	}
	defer func() {
		if err := os.Remove(pdfPath); err != nil && !os.IsNotExist(err) {
			log.Warn("removing temporary PDF", "path", pdfPath, "error", err)
		}
	}()

	firstPage, err := e.Extractor.FirstPage(ctx, pdfPath)
	if err != nil {
		log.Warn("first-page extraction failed, classifying without it", "error", err)
		firstPage = ""
	}

	in := Input{
		Title:     p.Title,
		Abstract:  p.Summary,
		FirstPage: pdftext.Truncate(firstPage, e.firstPageLimit()),
	}

	text, err := callWithRetry(ctx, e.Classifier, in, e.maxRetries())
	if err != nil {
		log.Warn("classification failed", "error", err)
		out.Status = types.EnrichFailed
		out.Err = fmt.Sprintf("classify: %v", err)
		return out
	}

	out.Enrichment = ParseResponse(text)
	out.Status = types.EnrichDone
	if out.Enrichment.IsZero() {
		log.Warn("model reply matched no response keys", "reply", pdftext.Truncate(text, 200))
	}
	log.Debug("enriched", "tag1", out.Enrichment.Tag1, "interested", out.Enrichment.Interested)
	return out
}

func (e *Enricher) tempDir() string {
	if e.Config.TempDir == "" {
		return "temp_pdfs"
	}
	return e.Config.TempDir
}

func (e *Enricher) firstPageLimit() int {
	if e.Config.FirstPageLimit <= 0 {
		return pdftext.DefaultLimit
	}
	return e.Config.FirstPageLimit
}

func (e *Enricher) maxRetries() int {
	if e.Config.MaxRetries <= 0 {
		return 3
	}
	return e.Config.MaxRetries
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// callWithRetry calls the classifier with exponential backoff.
func callWithRetry(ctx context.Context, c Classifier, in Input, maxRetries int) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := c.Classify(ctx, in)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}
