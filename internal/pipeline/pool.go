// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// DefaultWorkers is the enrichment pool size when none is configured.
const DefaultWorkers = 10

// Enricher enriches a single paper. Implementations must be safe for
// concurrent use; problems are reported in the result, not as errors.
type Enricher interface {
	Enrich(ctx context.Context, p types.Paper) types.EnrichedPaper
}

// EnrichAll enriches papers with at most workers concurrent calls. Each
// worker writes only its own slot, so results line up with papers. Once ctx
// is cancelled no further papers are started; those are returned as failed.
func EnrichAll(ctx context.Context, e Enricher, papers []types.Paper, workers int) []types.EnrichedPaper {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]types.EnrichedPaper, len(papers))
	var g errgroup.Group
	g.SetLimit(workers)

	for i, p := range papers {
		i, p := i, p
		if ctx.Err() != nil {
			results[i] = notStarted(p, ctx.Err())
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = notStarted(p, ctx.Err())
				return nil
			}
			results[i] = e.Enrich(ctx, p)
			return nil
		})
	}
	g.Wait()

	return results
}

func notStarted(p types.Paper, err error) types.EnrichedPaper {
	return types.EnrichedPaper{
		Paper:  p,
		Status: types.EnrichFailed,
		Err:    fmt.Sprintf("not started: %v", err),
	}
}
