// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/pdiddy/arxiv-digest/internal/container"
)

// DefaultPopplerImage provides pdftotext as its entrypoint's PATH tool.
const DefaultPopplerImage = "minidocks/poppler:latest"

// ContainerExtractor pipes PDFs through pdftotext inside a container image.
type ContainerExtractor struct {
	runtime container.Runtime
	image   string
}

// NewContainerExtractor verifies the image exists in rt before returning.
// An empty image selects DefaultPopplerImage.
func NewContainerExtractor(ctx context.Context, rt container.Runtime, image string) (*ContainerExtractor, error) {
	if image == "" {
		image = DefaultPopplerImage
	}
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("pdftotext image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerExtractor{runtime: rt, image: image}, nil
}

// FirstPage runs `pdftotext -f 1 -l 1 - -` with the PDF on stdin.
func (c *ContainerExtractor) FirstPage(ctx context.Context, pdfPath string) (string, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	var out bytes.Buffer
	args := []string{"pdftotext", "-f", "1", "-l", "1", "-enc", "UTF-8", "-", "-"}
	if err := c.runtime.Run(ctx, c.image, args, f, &out); err != nil {
		return "", fmt.Errorf("extracting %s with pdftotext: %w", pdfPath, err)
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("pdftotext produced empty output for %s", pdfPath)
	}
	return out.String(), nil
}
