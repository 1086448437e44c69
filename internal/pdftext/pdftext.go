// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext downloads paper PDFs and pulls the text of their first
// page, which carries the author affiliations the classifier needs.
package pdftext

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/arxiv-digest/internal/container"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// DefaultLimit is the number of characters of first-page text kept.
const DefaultLimit = 4096

// Extractor returns the plain text of the first page of a PDF.
type Extractor interface {
	FirstPage(ctx context.Context, pdfPath string) (string, error)
}

// NewExtractor builds the extractor selected by kind. The pdftotext kind
// needs a container runtime with the poppler image present.
func NewExtractor(ctx context.Context, kind types.ExtractorKind) (Extractor, error) {
	switch kind {
	case "", types.ExtractorNative:
		return NativeExtractor{}, nil
	case types.ExtractorPdftotext:
		rt, err := container.DetectRuntime(ctx)
		if err != nil {
			return nil, err
		}
		return NewContainerExtractor(ctx, rt, "")
	default:
		return nil, fmt.Errorf("unknown extractor %q: use %s or %s", kind, types.ExtractorNative, types.ExtractorPdftotext)
	}
}

// Truncate cuts text to at most limit characters (runes) after trimming
// surrounding whitespace. A limit of 0 or less keeps everything.
func Truncate(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 {
		return text
	}
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return string(r[:limit])
}
