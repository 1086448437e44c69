// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// QueryOptions filters cached records.
type QueryOptions struct {
	// From and To bound the day (YYYY-MM-DD), inclusive. Empty means open.
	From string
	To   string

	// Tag keeps records whose tag1, tag2 or any tag3 keyword equals Tag.
	Tag string

	// InterestedOnly keeps records marked interested.
	InterestedOnly bool

	// Limit caps the result count. Zero means no cap.
	Limit int
}

// Record is a cached enrichment together with the day it was reported under.
type Record struct {
	Day string `json:"day" yaml:"day"`
	types.EnrichedPaper
}

// Query returns cached records ordered by day, then by their position in
// the day's fetch order.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]Record, error) {
	var (
		qb   strings.Builder
		args []any
	)

	qb.WriteString(
		`SELECT day, id, updated, title, authors, abstract, published, pdf_link, categories,
			tag1, tag2, tag3, institution, interested, llm_summary
		FROM enrichments e
		WHERE 1=1`)

	if opts.From != "" {
		qb.WriteString(` AND day >= ?`)
		args = append(args, opts.From)
	}
	if opts.To != "" {
		qb.WriteString(` AND day <= ?`)
		args = append(args, opts.To)
	}
	if opts.InterestedOnly {
		qb.WriteString(` AND interested = 1`)
	}
	if opts.Tag != "" {
		qb.WriteString(` AND (tag1 = ? OR tag2 = ? OR EXISTS (SELECT 1 FROM json_each(e.tag3) WHERE value = ?))`)
		args = append(args, opts.Tag, opts.Tag, opts.Tag)
	}

	qb.WriteString(` ORDER BY day, position, id`)
	if opts.Limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying store: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r                        Record
			updated, published       string
			title, abstract, pdfLink sql.NullString
			authorsJSON, catJSON     sql.NullString
			tag1, tag2, tag3JSON     sql.NullString
			institution, llmSummary  sql.NullString
			interested               int
		)
		if err := rows.Scan(
			&r.Day, &r.Paper.ID, &updated, &title, &authorsJSON, &abstract, &published, &pdfLink, &catJSON,
			&tag1, &tag2, &tag3JSON, &institution, &interested, &llmSummary,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		r.Paper.Updated = parseTime(updated)
		r.Paper.Published = parseTime(published)
		r.Paper.Title = title.String
		r.Paper.Summary = abstract.String
		r.Paper.PDFLink = pdfLink.String
		if authorsJSON.Valid {
			json.Unmarshal([]byte(authorsJSON.String), &r.Paper.Authors)
		}
		if catJSON.Valid {
			json.Unmarshal([]byte(catJSON.String), &r.Paper.Categories)
		}

		r.Enrichment.Tag1 = tag1.String
		r.Enrichment.Tag2 = tag2.String
		if tag3JSON.Valid {
			json.Unmarshal([]byte(tag3JSON.String), &r.Enrichment.Tag3)
		}
		r.Enrichment.Institution = institution.String
		r.Enrichment.Interested = interested != 0
		r.Enrichment.Summary = llmSummary.String
		r.Status = types.EnrichCached

		records = append(records, r)
	}
	return records, rows.Err()
}

// ListByDay returns the cached papers reported under day, in fetch order.
func (s *Store) ListByDay(ctx context.Context, day string) ([]types.EnrichedPaper, error) {
	records, err := s.Query(ctx, QueryOptions{From: day, To: day})
	if err != nil {
		return nil, err
	}
	papers := make([]types.EnrichedPaper, len(records))
	for i, r := range records {
		papers[i] = r.EnrichedPaper
	}
	return papers, nil
}

// Stats summarizes the cache contents.
type Stats struct {
	Papers     int    `json:"papers" yaml:"papers"`
	Interested int    `json:"interested" yaml:"interested"`
	Days       int    `json:"days" yaml:"days"`
	FirstDay   string `json:"first_day,omitempty" yaml:"first_day,omitempty"`
	LastDay    string `json:"last_day,omitempty" yaml:"last_day,omitempty"`
}

// Stats counts cached papers, interested papers and distinct days.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var (
		st          Stats
		first, last sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*), coalesce(sum(interested), 0), count(DISTINCT day), min(day), max(day)
		 FROM enrichments`,
	).Scan(&st.Papers, &st.Interested, &st.Days, &first, &last)
	if err != nil {
		return Stats{}, fmt.Errorf("reading stats: %w", err)
	}
	st.FirstDay = first.String
	st.LastDay = last.String
	return st, nil
}
