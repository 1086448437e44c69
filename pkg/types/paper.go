// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the arxiv-digest pipeline:
// the fetched Paper record, the model-generated Enrichment, and the per-stage
// configuration structs.
package types

import (
	"path"
	"strings"
	"time"
)

// Paper holds the metadata of one arXiv entry as returned by the Atom API.
type Paper struct {
	// ID is the entry's <id> URL (e.g. "http://arxiv.org/abs/2510.01234v1").
	ID string `json:"id" yaml:"id"`

	// Title is the paper title with internal whitespace collapsed.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Summary is the abstract.
	Summary string `json:"summary" yaml:"summary"`

	// Published is the first submission time.
	Published time.Time `json:"published" yaml:"published"`

	// Updated is the time of the latest version. Date filtering keys on it.
	Updated time.Time `json:"updated" yaml:"updated"`

	// PDFLink is the href of the entry link titled "pdf", or empty.
	PDFLink string `json:"pdf_link,omitempty" yaml:"pdf_link,omitempty"`

	// Categories lists the category terms attached to the entry.
	Categories []string `json:"categories" yaml:"categories"`
}

// ShortID returns the last path segment of the entry URL
// (e.g. "2510.01234v1"). It names the temporary PDF file.
func (p Paper) ShortID() string {
	id := strings.TrimRight(p.ID, "/")
	if id == "" {
		return ""
	}
	return path.Base(id)
}

// UpdatedDay returns the UTC calendar day of the Updated timestamp as
// YYYY-MM-DD, or "" when the timestamp is unknown.
func (p Paper) UpdatedDay() string {
	if p.Updated.IsZero() {
		return ""
	}
	return p.Updated.UTC().Format(time.DateOnly)
}

// Enrichment is the classification a model produced for one paper.
type Enrichment struct {
	// Tag1 is the coarse class, "mlsys" or "sys".
	Tag1 string `json:"tag1" yaml:"tag1"`

	// Tag2 is the finer topic drawn from the vocabulary of Tag1.
	Tag2 string `json:"tag2" yaml:"tag2"`

	// Tag3 holds free-form keywords.
	Tag3 []string `json:"tag3" yaml:"tag3"`

	// Institution is the inferred main research institution(s).
	Institution string `json:"institution" yaml:"institution"`

	// Interested reports whether the paper matched the reader's interests.
	Interested bool `json:"interested" yaml:"interested"`

	// Summary is the short model summary (method + conclusion).
	Summary string `json:"llm_summary" yaml:"llm_summary"`
}

// IsZero reports whether no field was filled in.
func (e Enrichment) IsZero() bool {
	return e.Tag1 == "" && e.Tag2 == "" && len(e.Tag3) == 0 &&
		e.Institution == "" && !e.Interested && e.Summary == ""
}

// EnrichStatus records how a paper left the enrichment stage.
type EnrichStatus string

const (
	EnrichDone    EnrichStatus = "enriched"
	EnrichCached  EnrichStatus = "cached"
	EnrichSkipped EnrichStatus = "skipped"
	EnrichFailed  EnrichStatus = "failed"
)

// EnrichedPaper pairs a paper with its enrichment outcome.
type EnrichedPaper struct {
	Paper      Paper        `json:"paper" yaml:"paper"`
	Enrichment Enrichment   `json:"enrichment" yaml:"enrichment"`
	Status     EnrichStatus `json:"status" yaml:"status"`

	// Err describes why the paper was skipped or failed.
	Err string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Interested filters papers down to those the model marked as interesting,
// preserving order.
func Interested(papers []EnrichedPaper) []EnrichedPaper {
	var out []EnrichedPaper
	for _, p := range papers {
		if p.Enrichment.Interested {
			out = append(out, p)
		}
	}
	return out
}
