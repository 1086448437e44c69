// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv fetches recent submissions from the arXiv Atom API, applies
// per-category keyword rules, deduplicates across categories, and filters
// papers by the day of their latest update.
package arxiv

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pdiddy/arxiv-digest/internal/dates"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// Lister lists the entries of one category. *Client implements it; tests
// supply fakes.
type Lister interface {
	ListCategory(ctx context.Context, category string, cfg types.FetchConfig) ([]types.Paper, error)
}

// FetchResult holds the accepted papers and per-stage counts.
type FetchResult struct {
	Papers         []types.Paper
	Duplicates     int
	Rejected       int
	CategoryErrors []string
}

// Fetch lists every configured category in order, keeps entries that pass
// the category's keyword rule, and drops ids already accepted from an
// earlier category. A failing category is logged and skipped; Fetch only
// errors when every category failed. A nil logger uses slog.Default().
func Fetch(ctx context.Context, lister Lister, cfg types.FetchConfig, logger *slog.Logger) (FetchResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Categories) == 0 {
		return FetchResult{}, fmt.Errorf("no categories configured")
	}

	var res FetchResult
	seen := make(map[string]bool)

	for i, category := range cfg.Categories {
		if i > 0 && cfg.CategoryDelay > 0 {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-time.After(cfg.CategoryDelay):
			}
		}

		logger.Info("fetching category", "category", category)
		entries, err := lister.ListCategory(ctx, category, cfg)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			logger.Warn("category fetch failed", "category", category, "error", err)
			res.CategoryErrors = append(res.CategoryErrors, fmt.Sprintf("%s: %v", category, err))
			continue
		}

		keywords := cfg.KeywordRules[category]
		accepted := 0
		for _, p := range entries {
			if seen[p.ID] {
				logger.Debug("skipping duplicate paper", "id", p.ID, "title", p.Title)
				res.Duplicates++
				continue
			}
			if !MatchesKeywords(p.Summary, keywords) {
				res.Rejected++
				continue
			}
			seen[p.ID] = true
			res.Papers = append(res.Papers, p)
			accepted++
		}
		logger.Info("category fetched", "category", category, "entries", len(entries), "accepted", accepted)
	}

	if len(res.CategoryErrors) == len(cfg.Categories) {
		return res, fmt.Errorf("all categories failed: %s", strings.Join(res.CategoryErrors, "; "))
	}
	return res, nil
}

// MatchesKeywords reports whether text contains at least one keyword,
// case-insensitively. An empty keyword list matches everything.
func MatchesKeywords(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// FilterByTarget keeps papers whose Updated timestamp falls on a day of the
// target (UTC, inclusive). Papers with no Updated timestamp are dropped.
func FilterByTarget(papers []types.Paper, target dates.Target) []types.Paper {
	var out []types.Paper
	for _, p := range papers {
		if target.Contains(p.Updated) {
			out = append(out, p)
		}
	}
	return out
}

// GroupByDay partitions papers by the UTC day of their Updated timestamp.
// Order within a day follows the input.
func GroupByDay(papers []types.Paper) map[string][]types.Paper {
	groups := make(map[string][]types.Paper)
	for _, p := range papers {
		day := p.UpdatedDay()
		if day == "" {
			continue
		}
		groups[day] = append(groups[day], p)
	}
	return groups
}
