// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.yaml.in/yaml/v3"
)

// ExportEntry is the flat shape of one cached paper in YAML and JSON exports.
type ExportEntry struct {
	Day         string    `json:"day" yaml:"day"`
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Authors     []string  `json:"authors" yaml:"authors"`
	Updated     time.Time `json:"updated" yaml:"updated"`
	PDFLink     string    `json:"pdf_link,omitempty" yaml:"pdf_link,omitempty"`
	Tag1        string    `json:"tag1,omitempty" yaml:"tag1,omitempty"`
	Tag2        string    `json:"tag2,omitempty" yaml:"tag2,omitempty"`
	Tag3        []string  `json:"tag3,omitempty" yaml:"tag3,omitempty"`
	Institution string    `json:"institution,omitempty" yaml:"institution,omitempty"`
	Interested  bool      `json:"interested" yaml:"interested"`
	Summary     string    `json:"llm_summary,omitempty" yaml:"llm_summary,omitempty"`
}

// ExportYAML writes the records matching opts to w as a YAML list.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, opts QueryOptions) (int, error) {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return 0, err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return 0, fmt.Errorf("marshaling YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return 0, fmt.Errorf("marshaling YAML: %w", err)
	}
	return len(entries), nil
}

// ExportJSON writes the records matching opts to w as an indented JSON array.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, opts QueryOptions) (int, error) {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return 0, err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return 0, fmt.Errorf("marshaling JSON: %w", err)
	}
	return len(entries), nil
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	records, err := s.Query(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(records))
	for i, r := range records {
		entries[i] = ExportEntry{
			Day:         r.Day,
			ID:          r.Paper.ID,
			Title:       r.Paper.Title,
			Authors:     r.Paper.Authors,
			Updated:     r.Paper.Updated,
			PDFLink:     r.Paper.PDFLink,
			Tag1:        r.Enrichment.Tag1,
			Tag2:        r.Enrichment.Tag2,
			Tag3:        r.Enrichment.Tag3,
			Institution: r.Enrichment.Institution,
			Interested:  r.Enrichment.Interested,
			Summary:     r.Enrichment.Summary,
		}
	}
	return entries, nil
}
