// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store caches enrichment results in SQLite so reruns over the same
// days skip the model, and so reports can be rebuilt and exported without
// network access.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// Store manages the enrichment cache database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates the cache database at cfg.Path and creates the
// schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = types.DefaultPipelineConfig().Store.Path
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS enrichments (
			id TEXT NOT NULL,
			updated TEXT NOT NULL,
			day TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0,
			title TEXT,
			authors TEXT,
			abstract TEXT,
			published TEXT,
			pdf_link TEXT,
			categories TEXT,
			tag1 TEXT,
			tag2 TEXT,
			tag3 TEXT,
			institution TEXT,
			interested INTEGER NOT NULL DEFAULT 0,
			llm_summary TEXT,
			enriched_at TEXT NOT NULL,
			PRIMARY KEY (id, updated)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_enrichments_day ON enrichments(day, position)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Lookup returns the cached enrichment for the paper version identified by
// id and updated. The bool is false when nothing is cached.
func (s *Store) Lookup(ctx context.Context, id string, updated time.Time) (types.Enrichment, bool, error) {
	var (
		e          types.Enrichment
		tag1, tag2 sql.NullString
		tag3JSON   sql.NullString
		inst, summ sql.NullString
		interested int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT tag1, tag2, tag3, institution, interested, llm_summary
		 FROM enrichments WHERE id = ? AND updated = ?`,
		id, formatTime(updated),
	).Scan(&tag1, &tag2, &tag3JSON, &inst, &interested, &summ)
	if err == sql.ErrNoRows {
		return types.Enrichment{}, false, nil
	}
	if err != nil {
		return types.Enrichment{}, false, fmt.Errorf("looking up %s: %w", id, err)
	}

	e.Tag1 = tag1.String
	e.Tag2 = tag2.String
	if tag3JSON.Valid && tag3JSON.String != "" {
		json.Unmarshal([]byte(tag3JSON.String), &e.Tag3)
	}
	e.Institution = inst.String
	e.Interested = interested != 0
	e.Summary = summ.String
	return e, true, nil
}

// storable reports whether a result belongs in the cache. Failed and
// skipped papers are left out so the next run tries them again.
func storable(p types.EnrichedPaper) bool {
	return p.Status == types.EnrichDone || p.Status == types.EnrichCached
}

// Save stores the enriched papers of one day in the given order and returns
// how many were written. Papers that were not enriched are ignored. An
// existing row for the same paper version is replaced.
func (s *Store) Save(ctx context.Context, day string, papers []types.EnrichedPaper) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO enrichments (id, updated, day, position, title, authors, abstract, published,
			pdf_link, categories, tag1, tag2, tag3, institution, interested, llm_summary, enriched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id, updated) DO UPDATE SET
			day=excluded.day, position=excluded.position, title=excluded.title,
			authors=excluded.authors, abstract=excluded.abstract, published=excluded.published,
			pdf_link=excluded.pdf_link, categories=excluded.categories, tag1=excluded.tag1,
			tag2=excluded.tag2, tag3=excluded.tag3, institution=excluded.institution,
			interested=excluded.interested, llm_summary=excluded.llm_summary,
			enriched_at=excluded.enriched_at`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := formatTime(time.Now())
	saved := 0
	for i, p := range papers {
		if !storable(p) {
			continue
		}
		authorsJSON, _ := json.Marshal(p.Paper.Authors)
		categoriesJSON, _ := json.Marshal(p.Paper.Categories)
		tag3JSON, _ := json.Marshal(p.Enrichment.Tag3)
		interested := 0
		if p.Enrichment.Interested {
			interested = 1
		}

		_, err := stmt.ExecContext(ctx,
			p.Paper.ID, formatTime(p.Paper.Updated), day, i,
			p.Paper.Title, string(authorsJSON), p.Paper.Summary, formatTime(p.Paper.Published),
			p.Paper.PDFLink, string(categoriesJSON),
			p.Enrichment.Tag1, p.Enrichment.Tag2, string(tag3JSON), p.Enrichment.Institution,
			interested, p.Enrichment.Summary, now,
		)
		if err != nil {
			return 0, fmt.Errorf("saving %s: %w", p.Paper.ID, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return saved, nil
}
