package reach

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/efebarandurmaz/reach/internal/graph"
	"github.com/efebarandurmaz/reach/internal/observability"
)

// cancelCheckInterval is how many companies a worker counts between context checks.
const cancelCheckInterval = 64

// BuildDistributionParallel returns the same histogram as BuildDistribution,
// splitting the companies across up to workers goroutines. The graph is only
// read, so no locking is needed; each worker fills its own histogram and the
// results are merged once all workers finish.
func BuildDistributionParallel(ctx context.Context, g *graph.Graph, hopLimit int, filter Filter, workers int) (hist Histogram, err error) {
	ctx, span := observability.StartDistributionSpan(ctx, hopLimit, filter.String(), g.Len())
	defer func() {
		observability.RecordDistributionResult(span, hist.Total(), hist.Max())
		observability.RecordError(span, err)
		span.End()
	}()

	companies := g.Companies()
	if workers <= 1 || len(companies) < 2*workers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return BuildDistribution(g, hopLimit, filter), nil
	}

	slog.Debug("building distribution in parallel",
		"hops", hopLimit, "companies", len(companies), "workers", workers)

	parts := make([]Histogram, workers)
	chunk := (len(companies) + workers - 1) / workers

	eg, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		if lo >= len(companies) {
			break
		}
		hi := min(lo+chunk, len(companies))
		eg.Go(func() error {
			local := Histogram{}
			for i, c := range companies[lo:hi] {
				if i%cancelCheckInterval == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				local.Add(CountNeighbors(g, hopLimit, c, filter))
			}
			parts[w] = local
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	hist = Histogram{}
	for _, p := range parts {
		hist.Merge(p)
	}
	return hist, nil
}
