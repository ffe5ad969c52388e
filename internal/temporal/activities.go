package temporal

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/efebarandurmaz/reach/internal/analysis"
	"github.com/efebarandurmaz/reach/internal/export"
	"github.com/efebarandurmaz/reach/internal/graph"
	"github.com/efebarandurmaz/reach/internal/ingest"
	"github.com/efebarandurmaz/reach/internal/metrics"
	"github.com/efebarandurmaz/reach/internal/reach"
)

// nonRetryableInput is the application error type for bad job input.
const nonRetryableInput = "InvalidInput"

// IngestResult summarizes a dataset read. The graph itself stays on the
// worker; activities that need it read InputPath again.
type IngestResult struct {
	Rows      int
	Accepted  int
	Skipped   int
	Companies int
}

func IngestActivity(ctx context.Context, input DistributionInput) (IngestResult, error) {
	if input.InputPath == "" {
		return IngestResult{}, temporal.NewNonRetryableApplicationError("input path is empty", nonRetryableInput, analysis.ErrNoInput)
	}

	g, rep, err := ingest.NewReader(nil).ReadFile(ctx, input.InputPath)
	if err != nil {
		return IngestResult{}, err
	}

	metrics.ObserveDataset(metrics.DatasetMetrics{
		Source:        input.InputPath,
		Rows:          rep.Rows,
		Accepted:      rep.Accepted,
		Skipped:       rep.SkippedTotal(),
		Companies:     g.Len(),
		Relationships: g.EdgeCount(),
	})
	activity.GetLogger(ctx).Info("dataset ingested", "companies", g.Len(), "accepted", rep.Accepted)
	return IngestResult{
		Rows:      rep.Rows,
		Accepted:  rep.Accepted,
		Skipped:   rep.SkippedTotal(),
		Companies: g.Len(),
	}, nil
}

func DistributionActivity(ctx context.Context, input DistributionInput, hops int) ([]int, error) {
	if hops < 0 {
		return nil, temporal.NewNonRetryableApplicationError(fmt.Sprintf("hop limit %d is negative", hops), nonRetryableInput, nil)
	}
	kinds, err := graph.KindsFromStrings(input.Kinds)
	if err != nil {
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), nonRetryableInput, err)
	}

	if input.InputPath == "" {
		return nil, temporal.NewNonRetryableApplicationError("input path is empty", nonRetryableInput, analysis.ErrNoInput)
	}

	g, _, err := ingest.NewReader(nil).ReadFile(ctx, input.InputPath)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	hist, err := reach.BuildDistributionParallel(ctx, g, hops, analysis.FilterFor(kinds), input.Workers)
	if err != nil {
		return nil, err
	}
	metrics.ObserveDistribution(hops, time.Since(start))
	return hist, nil
}

func WriteActivity(ctx context.Context, outputDir string, hops int, hist []int) (string, error) {
	path := filepath.Join(outputDir, export.DistributionFileName(hops))
	if err := export.WriteHistogramFile(path, hist); err != nil {
		return "", err
	}
	activity.GetLogger(ctx).Info("distribution written", "path", path)
	return path, nil
}
