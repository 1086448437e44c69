// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the daily digest: fetch once, then for each day of
// the target consult the cache, enrich the rest through a bounded worker
// pool, persist, and update the weekly report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pdiddy/arxiv-digest/internal/arxiv"
	"github.com/pdiddy/arxiv-digest/internal/dates"
	"github.com/pdiddy/arxiv-digest/internal/report"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// Cache stores enrichments across runs. *store.Store implements it.
type Cache interface {
	Lookup(ctx context.Context, id string, updated time.Time) (types.Enrichment, bool, error)
	Save(ctx context.Context, day string, papers []types.EnrichedPaper) (int, error)
}

// Reporter writes a day's papers into the weekly report. *report.Writer
// implements it.
type Reporter interface {
	Update(ctx context.Context, day time.Time, papers []types.EnrichedPaper) (report.UpdateResult, error)
}

// Pipeline wires the stages together. Cache may be nil to disable caching.
type Pipeline struct {
	Lister   arxiv.Lister
	Enricher Enricher
	Cache    Cache
	Reporter Reporter
	Config   types.PipelineConfig
	Logger   *slog.Logger

	// Out receives one status line per paper and the final summary.
	Out io.Writer
}

// Summary holds counts from a pipeline run.
type Summary struct {
	Days       int
	Fetched    int
	Enriched   int
	Cached     int
	Skipped    int
	Failed     int
	Interested int

	// Reports lists the weekly files that were written.
	Reports []string
}

// Total returns the number of papers processed.
func (s Summary) Total() int {
	return s.Enriched + s.Cached + s.Skipped + s.Failed
}

// HasFailures reports whether any paper failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

func (s *Summary) count(p types.EnrichedPaper) {
	switch p.Status {
	case types.EnrichDone:
		s.Enriched++
	case types.EnrichCached:
		s.Cached++
	case types.EnrichSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
	if p.Enrichment.Interested {
		s.Interested++
	}
}

// Run processes every day of target. Per-paper failures are counted, not
// returned. The error is non-nil when fetching failed entirely, when the
// context was cancelled, or when a report could not be written.
func (p *Pipeline) Run(ctx context.Context, target dates.Target) (Summary, error) {
	log := p.logger()
	out := p.out()
	var summary Summary

	log.Info("fetching papers", "target", target.String(), "categories", p.Config.Fetch.Categories)
	fetched, err := arxiv.Fetch(ctx, p.Lister, p.Config.Fetch, log)
	if err != nil {
		return summary, fmt.Errorf("fetching papers: %w", err)
	}
	byDay := arxiv.GroupByDay(arxiv.FilterByTarget(fetched.Papers, target))

	var reportErrs []error
	for _, day := range target.Days() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		date := dates.Format(day)
		papers := byDay[date]
		summary.Days++
		if len(papers) == 0 {
			log.Info("no papers for day", "date", date)
			fmt.Fprintf(out, "%s: no papers\n", date)
			continue
		}
		if limit := p.Config.MaxPapers; limit > 0 && len(papers) > limit {
			log.Info("capping papers", "date", date, "found", len(papers), "max", limit)
			papers = papers[:limit]
		}
		summary.Fetched += len(papers)

		results := p.enrichDay(ctx, papers)
		for _, r := range results {
			summary.count(r)
			writeStatus(out, r)
		}

		if p.cacheEnabled() {
			if n, err := p.Cache.Save(context.WithoutCancel(ctx), date, results); err != nil {
				log.Warn("saving to cache failed", "date", date, "error", err)
			} else {
				log.Debug("cached results", "date", date, "saved", n)
			}
		}

		res, err := p.Reporter.Update(ctx, day, results)
		if err != nil {
			log.Error("report update failed", "date", date, "error", err)
			reportErrs = append(reportErrs, fmt.Errorf("report for %s: %w", date, err))
			continue
		}
		if res.Path != "" {
			summary.Reports = append(summary.Reports, res.Path)
			fmt.Fprintf(out, "%s: %d interested papers written to %s\n", date, res.Entries, res.Path)
		} else {
			fmt.Fprintf(out, "%s: no interested papers\n", date)
		}
	}

	fmt.Fprintf(out, "\ndays: %d, fetched: %d, enriched: %d, cached: %d, skipped: %d, failed: %d, interested: %d\n",
		summary.Days, summary.Fetched, summary.Enriched, summary.Cached, summary.Skipped, summary.Failed, summary.Interested)

	return summary, errors.Join(reportErrs...)
}

// enrichDay serves cache hits directly and sends the rest through the
// worker pool. The returned slice keeps the order of papers.
func (p *Pipeline) enrichDay(ctx context.Context, papers []types.Paper) []types.EnrichedPaper {
	results := make([]types.EnrichedPaper, len(papers))
	var (
		pending []types.Paper
		slots   []int
	)

	for i, paper := range papers {
		if e, ok := p.lookup(ctx, paper); ok {
			results[i] = types.EnrichedPaper{Paper: paper, Enrichment: e, Status: types.EnrichCached}
			continue
		}
		pending = append(pending, paper)
		slots = append(slots, i)
	}

	if len(pending) > 0 {
		p.logger().Info("enriching papers", "count", len(pending), "cached", len(papers)-len(pending), "workers", p.workers())
		for j, r := range EnrichAll(ctx, p.Enricher, pending, p.workers()) {
			results[slots[j]] = r
		}
	}
	return results
}

func (p *Pipeline) lookup(ctx context.Context, paper types.Paper) (types.Enrichment, bool) {
	if !p.cacheEnabled() {
		return types.Enrichment{}, false
	}
	e, ok, err := p.Cache.Lookup(ctx, paper.ID, paper.Updated)
	if err != nil {
		p.logger().Warn("cache lookup failed", "id", paper.ID, "error", err)
		return types.Enrichment{}, false
	}
	return e, ok
}

func (p *Pipeline) cacheEnabled() bool {
	return p.Cache != nil && !p.Config.Store.Disabled
}

func (p *Pipeline) workers() int {
	if p.Config.Enrich.Workers <= 0 {
		return DefaultWorkers
	}
	return p.Config.Enrich.Workers
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

func (p *Pipeline) out() io.Writer {
	if p.Out == nil {
		return io.Discard
	}
	return p.Out
}

func writeStatus(w io.Writer, r types.EnrichedPaper) {
	mark := ""
	if r.Enrichment.Interested {
		mark = " *"
	}
	switch r.Status {
	case types.EnrichFailed, types.EnrichSkipped:
		fmt.Fprintf(w, "%-8s %s: %s\n", r.Status, r.Paper.ShortID(), r.Err)
	default:
		fmt.Fprintf(w, "%-8s %s%s\n", r.Status, r.Paper.ShortID(), mark)
	}
}
