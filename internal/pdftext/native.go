// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// ErrEmptyPDF is returned for documents without pages.
var ErrEmptyPDF = errors.New("PDF has no pages")

// NativeExtractor reads PDFs in-process with github.com/ledongthuc/pdf.
type NativeExtractor struct{}

// FirstPage returns the plain text of page 1.
func (NativeExtractor) FirstPage(_ context.Context, pdfPath string) (text string, err error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat PDF %s: %w", pdfPath, err)
	}

	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("parsing PDF %s: %v", pdfPath, r)
		}
	}()

	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("parsing PDF %s: %w", pdfPath, err)
	}
	if r.NumPage() < 1 {
		return "", ErrEmptyPDF
	}

	page := r.Page(1)
	if page.V.IsNull() {
		return "", ErrEmptyPDF
	}

	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", pdfPath, err)
	}
	return text, nil
}
