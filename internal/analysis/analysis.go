// Package analysis runs a complete reachability analysis: read the dataset,
// compute one distribution per hop limit and write the results.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/efebarandurmaz/reach/internal/export"
	"github.com/efebarandurmaz/reach/internal/graph"
	"github.com/efebarandurmaz/reach/internal/ingest"
	"github.com/efebarandurmaz/reach/internal/metrics"
	"github.com/efebarandurmaz/reach/internal/observability"
	"github.com/efebarandurmaz/reach/internal/reach"
)

// ErrNoInput is returned when a job has no dataset path.
var ErrNoInput = errors.New("no input dataset")

// Job describes one analysis run.
type Job struct {
	Input string
	// OutputDir receives one histogram file per hop limit. Empty disables writing.
	OutputDir string
	Hops      []int
	// Kinds restricts traversal; empty follows every known kind.
	Kinds   []graph.Kind
	Workers int
}

// FilterFor returns the traversal filter for a configured kind list.
func FilterFor(kinds []graph.Kind) reach.Filter {
	if len(kinds) == 0 {
		return reach.AllKinds()
	}
	return reach.KindsOf(kinds...)
}

// Runner executes analysis jobs.
type Runner struct {
	reader *ingest.Reader
	logger *slog.Logger
}

// NewRunner returns a Runner logging to logger, or slog.Default() when nil.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{reader: ingest.NewReader(logger), logger: logger}
}

// Run reads job.Input and computes every requested distribution.
func (r *Runner) Run(ctx context.Context, job Job) (m *metrics.RunMetrics, err error) {
	if job.Input == "" {
		return nil, ErrNoInput
	}

	m = metrics.New()
	ctx, span := observability.StartRunSpan(ctx, m.RunID)
	defer func() {
		observability.RecordError(span, err)
		span.End()
	}()

	g, rep, err := r.reader.ReadFile(ctx, job.Input)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	m.CollectDataset(job.Input, rep, g)

	if err := r.Distributions(ctx, g, job, m); err != nil {
		return nil, err
	}

	m.Finish(nil)
	return m, nil
}

// Distributions computes the distributions of job over an already built graph
// and records them in m.
func (r *Runner) Distributions(ctx context.Context, g *graph.Graph, job Job, m *metrics.RunMetrics) error {
	filter := FilterFor(job.Kinds)
	for _, hops := range job.Hops {
		if hops < 0 {
			return fmt.Errorf("hop limit %d is negative", hops)
		}

		start := time.Now()
		hist, err := reach.BuildDistributionParallel(ctx, g, hops, filter, job.Workers)
		if err != nil {
			return fmt.Errorf("distribution hops=%d: %w", hops, err)
		}
		elapsed := time.Since(start)

		var out string
		if job.OutputDir != "" {
			out = filepath.Join(job.OutputDir, export.DistributionFileName(hops))
			if err := export.WriteHistogramFile(out, hist); err != nil {
				return err
			}
		}

		r.logger.Info("distribution computed",
			"hops", hops,
			"kinds", filter.String(),
			"companies", hist.Total(),
			"max", hist.Max(),
			"duration", elapsed,
		)
		m.AddDistribution(hops, filter, elapsed, hist, out)
	}
	return nil
}
