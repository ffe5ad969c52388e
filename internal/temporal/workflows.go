package temporal

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// DistributionInput holds the workflow parameters.
type DistributionInput struct {
	InputPath string
	OutputDir string
	Hops      []int
	Kinds     []string
	Workers   int
}

// DistributionResult is one hop limit's histogram.
type DistributionResult struct {
	Hops       int
	Histogram  []int
	OutputPath string
}

// DistributionOutput holds the workflow result.
type DistributionOutput struct {
	Rows          int
	Accepted      int
	Skipped       int
	Companies     int
	Distributions []DistributionResult
}

// DistributionWorkflow ingests a dataset and computes one distribution per
// requested hop limit, writing each when an output directory is set. Only
// the input path and histograms cross activity boundaries.
func DistributionWorkflow(ctx workflow.Context, input DistributionInput) (*DistributionOutput, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{nonRetryableInput},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var ingested IngestResult
	if err := workflow.ExecuteActivity(ctx, IngestActivity, input).Get(ctx, &ingested); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	output := &DistributionOutput{
		Rows:      ingested.Rows,
		Accepted:  ingested.Accepted,
		Skipped:   ingested.Skipped,
		Companies: ingested.Companies,
	}

	for _, hops := range input.Hops {
		var hist []int
		if err := workflow.ExecuteActivity(ctx, DistributionActivity, input, hops).Get(ctx, &hist); err != nil {
			return nil, fmt.Errorf("distribution hops=%d: %w", hops, err)
		}

		result := DistributionResult{Hops: hops, Histogram: hist}
		if input.OutputDir != "" {
			if err := workflow.ExecuteActivity(ctx, WriteActivity, input.OutputDir, hops, hist).Get(ctx, &result.OutputPath); err != nil {
				return nil, fmt.Errorf("write hops=%d: %w", hops, err)
			}
		}
		output.Distributions = append(output.Distributions, result)
	}

	return output, nil
}
