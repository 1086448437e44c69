// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/arxiv-digest/internal/dates"
	"github.com/pdiddy/arxiv-digest/internal/report"
	"github.com/pdiddy/arxiv-digest/internal/store"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// --- fakes ---

type fakeLister struct {
	papers map[string][]types.Paper
	err    error
}

func (f *fakeLister) ListCategory(_ context.Context, category string, _ types.FetchConfig) ([]types.Paper, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.papers[category], nil
}

// fakeEnricher marks papers whose title starts with "yes" as interested and
// tracks the peak number of concurrent calls.
type fakeEnricher struct {
	delay   time.Duration
	calls   atomic.Int32
	active  atomic.Int32
	peak    atomic.Int32
	failIDs map[string]bool
}

func (f *fakeEnricher) Enrich(_ context.Context, p types.Paper) types.EnrichedPaper {
	f.calls.Add(1)
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		old := f.peak.Load()
		if n <= old || f.peak.CompareAndSwap(old, n) {
			break
		}
	}
	time.Sleep(f.delay)

	if f.failIDs[p.ID] {
		return types.EnrichedPaper{Paper: p, Status: types.EnrichFailed, Err: "boom"}
	}
	interested := len(p.Title) >= 3 && p.Title[:3] == "yes"
	return types.EnrichedPaper{
		Paper:      p,
		Enrichment: types.Enrichment{Tag1: "mlsys", Interested: interested},
		Status:     types.EnrichDone,
	}
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]types.Enrichment
	saved   map[string][]types.EnrichedPaper
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]types.Enrichment{}, saved: map[string][]types.EnrichedPaper{}}
}

func (c *fakeCache) Lookup(_ context.Context, id string, updated time.Time) (types.Enrichment, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id+"@"+updated.UTC().Format(time.RFC3339)]
	return e, ok, nil
}

func (c *fakeCache) Save(_ context.Context, day string, papers []types.EnrichedPaper) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saved[day] = papers
	n := 0
	for _, p := range papers {
		if p.Status == types.EnrichDone || p.Status == types.EnrichCached {
			c.entries[p.Paper.ID+"@"+p.Paper.Updated.UTC().Format(time.RFC3339)] = p.Enrichment
			n++
		}
	}
	return n, nil
}

type fakeReporter struct {
	err   error
	calls map[string][]types.EnrichedPaper
}

func (r *fakeReporter) Update(_ context.Context, day time.Time, papers []types.EnrichedPaper) (report.UpdateResult, error) {
	if r.calls == nil {
		r.calls = map[string][]types.EnrichedPaper{}
	}
	date := day.Format(time.DateOnly)
	r.calls[date] = papers
	if r.err != nil {
		return report.UpdateResult{}, r.err
	}
	interested := types.Interested(papers)
	if len(interested) == 0 {
		return report.UpdateResult{}, nil
	}
	return report.UpdateResult{Path: "docs/daily/" + date + ".md", Entries: len(interested)}, nil
}

// --- helpers ---

func paper(id, title, updated string) types.Paper {
	ts, err := time.Parse(time.RFC3339, updated)
	if err != nil {
		panic(err)
	}
	return types.Paper{
		ID:      "http://arxiv.org/abs/" + id,
		Title:   title,
		Summary: "abstract",
		Updated: ts,
		PDFLink: "http://arxiv.org/pdf/" + id,
	}
}

func testConfig() types.PipelineConfig {
	cfg := types.DefaultPipelineConfig()
	cfg.Fetch.Categories = []string{"cs.DC"}
	cfg.Fetch.CategoryDelay = 0
	cfg.Fetch.KeywordRules = nil
	cfg.Enrich.Workers = 2
	return cfg
}

func newPipeline(lister *fakeLister, enricher Enricher, cache Cache, rep *fakeReporter, out io.Writer) *Pipeline {
	return &Pipeline{
		Lister:   lister,
		Enricher: enricher,
		Cache:    cache,
		Reporter: rep,
		Config:   testConfig(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Out:      out,
	}
}

func target(t *testing.T, s string) dates.Target {
	t.Helper()
	tg, err := dates.ParseTarget(s)
	require.NoError(t, err)
	return tg
}

// --- EnrichAll ---

func TestEnrichAll_PreservesOrderAndBoundsConcurrency(t *testing.T) {
	var papers []types.Paper
	for i := 0; i < 12; i++ {
		papers = append(papers, paper(string(rune('a'+i)), "yes", "2025-01-07T10:00:00Z"))
	}
	e := &fakeEnricher{delay: 5 * time.Millisecond}

	results := EnrichAll(context.Background(), e, papers, 3)

	require.Len(t, results, len(papers))
	for i, r := range results {
		assert.Equal(t, papers[i].ID, r.Paper.ID)
		assert.Equal(t, types.EnrichDone, r.Status)
	}
	assert.Equal(t, int32(12), e.calls.Load())
	assert.LessOrEqual(t, e.peak.Load(), int32(3))
}

func TestEnrichAll_DefaultWorkers(t *testing.T) {
	papers := []types.Paper{paper("a", "x", "2025-01-07T10:00:00Z")}
	results := EnrichAll(context.Background(), &fakeEnricher{}, papers, 0)
	require.Len(t, results, 1)
	assert.Equal(t, types.EnrichDone, results[0].Status)
}

func TestEnrichAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	papers := []types.Paper{paper("a", "x", "2025-01-07T10:00:00Z"), paper("b", "x", "2025-01-07T10:00:00Z")}
	e := &fakeEnricher{}
	results := EnrichAll(ctx, e, papers, 2)

	assert.Zero(t, e.calls.Load())
	for i, r := range results {
		assert.Equal(t, papers[i].ID, r.Paper.ID)
		assert.Equal(t, types.EnrichFailed, r.Status)
		assert.False(t, r.Enrichment.Interested)
	}
}

func TestEnrichAll_Empty(t *testing.T) {
	assert.Empty(t, EnrichAll(context.Background(), &fakeEnricher{}, nil, 4))
}

// --- Run ---

func TestRun_SingleDay(t *testing.T) {
	lister := &fakeLister{papers: map[string][]types.Paper{"cs.DC": {
		paper("1", "yes first", "2025-01-07T09:00:00Z"),
		paper("2", "no second", "2025-01-07T10:00:00Z"),
		paper("3", "yes other day", "2025-01-06T10:00:00Z"),
		paper("4", "yes third", "2025-01-07T23:59:59Z"),
	}}}
	e := &fakeEnricher{}
	cache := newFakeCache()
	rep := &fakeReporter{}
	var out bytes.Buffer

	summary, err := newPipeline(lister, e, cache, rep, &out).Run(context.Background(), target(t, "2025-01-07"))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Days)
	assert.Equal(t, 3, summary.Fetched)
	assert.Equal(t, 3, summary.Enriched)
	assert.Equal(t, 2, summary.Interested)
	assert.Equal(t, []string{"docs/daily/2025-01-07.md"}, summary.Reports)
	assert.False(t, summary.HasFailures())

	got := rep.calls["2025-01-07"]
	require.Len(t, got, 3)
	assert.Equal(t, "http://arxiv.org/abs/1", got[0].Paper.ID)
	assert.Equal(t, "http://arxiv.org/abs/2", got[1].Paper.ID)
	assert.Equal(t, "http://arxiv.org/abs/4", got[2].Paper.ID)

	assert.Len(t, cache.saved["2025-01-07"], 3)
	assert.Contains(t, out.String(), "2025-01-07: 2 interested papers written to")
	assert.Contains(t, out.String(), "enriched: 3")
}

func TestRun_UsesCacheOnRerun(t *testing.T) {
	lister := &fakeLister{papers: map[string][]types.Paper{"cs.DC": {
		paper("1", "yes first", "2025-01-07T09:00:00Z"),
		paper("2", "no second", "2025-01-07T10:00:00Z"),
	}}}
	cache := newFakeCache()
	rep := &fakeReporter{}

	first := &fakeEnricher{}
	_, err := newPipeline(lister, first, cache, rep, nil).Run(context.Background(), target(t, "2025-01-07"))
	require.NoError(t, err)
	assert.Equal(t, int32(2), first.calls.Load())
	firstReport := rep.calls["2025-01-07"]

	second := &fakeEnricher{}
	summary, err := newPipeline(lister, second, cache, rep, nil).Run(context.Background(), target(t, "2025-01-07"))
	require.NoError(t, err)
	assert.Zero(t, second.calls.Load())
	assert.Equal(t, 2, summary.Cached)
	assert.Equal(t, 1, summary.Interested)

	again := rep.calls["2025-01-07"]
	require.Len(t, again, len(firstReport))
	for i := range again {
		assert.Equal(t, firstReport[i].Paper.ID, again[i].Paper.ID)
		assert.Equal(t, firstReport[i].Enrichment, again[i].Enrichment)
	}
}

func TestRun_CacheDisabled(t *testing.T) {
	lister := &fakeLister{papers: map[string][]types.Paper{"cs.DC": {paper("1", "yes", "2025-01-07T09:00:00Z")}}}
	cache := newFakeCache()
	p := newPipeline(lister, &fakeEnricher{}, cache, &fakeReporter{}, nil)
	p.Config.Store.Disabled = true

	_, err := p.Run(context.Background(), target(t, "2025-01-07"))
	require.NoError(t, err)
	assert.Empty(t, cache.saved)
}

func TestRun_NilCache(t *testing.T) {
	lister := &fakeLister{papers: map[string][]types.Paper{"cs.DC": {paper("1", "yes", "2025-01-07T09:00:00Z")}}}
	summary, err := newPipeline(lister, &fakeEnricher{}, nil, &fakeReporter{}, nil).Run(context.Background(), target(t, "2025-01-07"))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Enriched)
}

func TestRun_RangeSkipsEmptyDays(t *testing.T) {
	lister := &fakeLister{papers: map[string][]types.Paper{"cs.DC": {
		paper("1", "yes a", "2025-01-06T09:00:00Z"),
		paper("2", "no b", "2025-01-08T09:00:00Z"),
	}}}
	rep := &fakeReporter{}
	var out bytes.Buffer

	summary, err := newPipeline(lister, &fakeEnricher{}, newFakeCache(), rep, &out).Run(context.Background(), target(t, "2025-01-06:2025-01-08"))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Days)
	assert.Equal(t, 2, summary.Fetched)
	assert.Equal(t, []string{"docs/daily/2025-01-06.md"}, summary.Reports)

	_, called := rep.calls["2025-01-07"]
	assert.False(t, called, "days without papers do not touch the report")
	assert.Contains(t, out.String(), "2025-01-07: no papers")
	assert.Contains(t, out.String(), "2025-01-08: no interested papers")
}

func TestRun_MaxPapers(t *testing.T) {
	lister := &fakeLister{papers: map[string][]types.Paper{"cs.DC": {
		paper("1", "yes", "2025-01-07T09:00:00Z"),
		paper("2", "yes", "2025-01-07T09:00:00Z"),
		paper("3", "yes", "2025-01-07T09:00:00Z"),
	}}}
	e := &fakeEnricher{}
	p := newPipeline(lister, e, nil, &fakeReporter{}, nil)
	p.Config.MaxPapers = 2

	summary, err := p.Run(context.Background(), target(t, "2025-01-07"))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Fetched)
	assert.Equal(t, int32(2), e.calls.Load())
}

func TestRun_FailuresAreCountedNotReturned(t *testing.T) {
	lister := &fakeLister{papers: map[string][]types.Paper{"cs.DC": {
		paper("1", "yes", "2025-01-07T09:00:00Z"),
		paper("2", "yes", "2025-01-07T09:00:00Z"),
	}}}
	e := &fakeEnricher{failIDs: map[string]bool{"http://arxiv.org/abs/2": true}}
	var out bytes.Buffer

	summary, err := newPipeline(lister, e, newFakeCache(), &fakeReporter{}, &out).Run(context.Background(), target(t, "2025-01-07"))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Enriched)
	assert.True(t, summary.HasFailures())
	assert.Equal(t, 2, summary.Total())
	assert.Contains(t, out.String(), "failed   2: boom")
}

func TestRun_FetchError(t *testing.T) {
	lister := &fakeLister{err: errors.New("connection refused")}
	_, err := newPipeline(lister, &fakeEnricher{}, nil, &fakeReporter{}, nil).Run(context.Background(), target(t, "2025-01-07"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching papers")
}

func TestRun_ReportErrorIsReturned(t *testing.T) {
	lister := &fakeLister{papers: map[string][]types.Paper{"cs.DC": {
		paper("1", "yes", "2025-01-06T09:00:00Z"),
		paper("2", "yes", "2025-01-07T09:00:00Z"),
	}}}
	rep := &fakeReporter{err: errors.New("disk full")}

	_, err := newPipeline(lister, &fakeEnricher{}, nil, rep, nil).Run(context.Background(), target(t, "2025-01-06:2025-01-07"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Len(t, rep.calls, 2, "a failed day does not stop later days")
}

func TestRun_CancelledContext(t *testing.T) {
	lister := &fakeLister{papers: map[string][]types.Paper{"cs.DC": {paper("1", "yes", "2025-01-07T09:00:00Z")}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep := &fakeReporter{}
	_, err := newPipeline(lister, &fakeEnricher{}, nil, rep, nil).Run(ctx, target(t, "2025-01-07"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rep.calls)
}

// cancellingEnricher enriches normally and cancels the run after the first
// paper, as an interrupt would.
type cancellingEnricher struct {
	fakeEnricher
	cancel context.CancelFunc
}

func (c *cancellingEnricher) Enrich(ctx context.Context, p types.Paper) types.EnrichedPaper {
	r := c.fakeEnricher.Enrich(ctx, p)
	c.cancel()
	return r
}

func TestRun_InterruptKeepsFinishedEnrichments(t *testing.T) {
	st, err := store.NewStore(types.StoreConfig{Path: filepath.Join(t.TempDir(), "digest.db")})
	require.NoError(t, err)
	defer st.Close()

	first := paper("1", "yes first", "2025-01-07T09:00:00Z")
	lister := &fakeLister{papers: map[string][]types.Paper{"cs.DC": {
		first,
		paper("2", "yes second", "2025-01-07T10:00:00Z"),
		paper("3", "yes third", "2025-01-07T11:00:00Z"),
	}}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := newPipeline(lister, &cancellingEnricher{cancel: cancel}, st, &fakeReporter{}, nil)
	p.Config.Enrich.Workers = 1

	summary, _ := p.Run(ctx, target(t, "2025-01-07"))
	assert.Equal(t, 1, summary.Enriched)
	assert.Equal(t, 2, summary.Failed)

	e, ok, err := st.Lookup(context.Background(), first.ID, first.Updated)
	require.NoError(t, err)
	require.True(t, ok, "finished enrichment is cached despite the interrupt")
	assert.Equal(t, "mlsys", e.Tag1)
	assert.True(t, e.Interested)
}
