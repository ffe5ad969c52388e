package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/efebarandurmaz/reach/internal/graph"
	"github.com/efebarandurmaz/reach/internal/ingest"
	"github.com/efebarandurmaz/reach/internal/reach"
)

// RunMetrics collects statistics for one analysis run.
type RunMetrics struct {
	RunID         string                `json:"run_id"`
	StartedAt     time.Time             `json:"started_at"`
	FinishedAt    time.Time             `json:"finished_at,omitempty"`
	Duration      time.Duration         `json:"duration_ms,omitempty"`
	Dataset       DatasetMetrics        `json:"dataset"`
	Distributions []DistributionMetrics `json:"distributions"`
	Errors        []string              `json:"errors,omitempty"`
}

type DatasetMetrics struct {
	Source        string `json:"source"`
	Rows          int    `json:"rows"`
	Accepted      int    `json:"accepted"`
	Skipped       int    `json:"skipped"`
	Companies     int    `json:"companies"`
	Relationships int    `json:"relationships"`
}

type DistributionMetrics struct {
	Hops       int           `json:"hops"`
	Kinds      string        `json:"kinds"`
	Duration   time.Duration `json:"duration_ms"`
	Histogram  []int         `json:"histogram"`
	Summary    reach.Summary `json:"summary"`
	OutputPath string        `json:"output_path,omitempty"`
}

// New starts tracking a run.
func New() *RunMetrics {
	return &RunMetrics{RunID: uuid.NewString(), StartedAt: time.Now()}
}

// CollectDataset records ingestion results.
func (m *RunMetrics) CollectDataset(source string, rep ingest.Report, g *graph.Graph) {
	m.Dataset = DatasetMetrics{
		Source:        source,
		Rows:          rep.Rows,
		Accepted:      rep.Accepted,
		Skipped:       rep.SkippedTotal(),
		Companies:     g.Len(),
		Relationships: g.EdgeCount(),
	}
	ObserveDataset(m.Dataset)
}

// AddDistribution records one computed distribution.
func (m *RunMetrics) AddDistribution(hops int, filter reach.Filter, d time.Duration, h reach.Histogram, outputPath string) {
	m.Distributions = append(m.Distributions, DistributionMetrics{
		Hops:       hops,
		Kinds:      filter.String(),
		Duration:   d,
		Histogram:  h,
		Summary:    reach.Summarize(h),
		OutputPath: outputPath,
	})
	ObserveDistribution(hops, d)
}

// Finish marks the run as complete.
func (m *RunMetrics) Finish(errs []string) {
	m.FinishedAt = time.Now()
	m.Duration = m.FinishedAt.Sub(m.StartedAt)
	m.Errors = errs
}

// PrintSummary writes a human-readable summary.
func (m *RunMetrics) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "\n╔══════════════════════════════════════╗\n")
	fmt.Fprintf(w, "║          REACH ANALYSIS REPORT       ║\n")
	fmt.Fprintf(w, "╠══════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║ Run:         %-23s║\n", shortID(m.RunID))
	fmt.Fprintf(w, "║ Duration:    %-23s║\n", m.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "╠══════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║ DATASET (%s)\n", m.Dataset.Source)
	fmt.Fprintf(w, "║   Rows:          %d\n", m.Dataset.Rows)
	fmt.Fprintf(w, "║   Accepted:      %d\n", m.Dataset.Accepted)
	fmt.Fprintf(w, "║   Skipped:       %d\n", m.Dataset.Skipped)
	fmt.Fprintf(w, "║   Companies:     %d\n", m.Dataset.Companies)
	fmt.Fprintf(w, "║   Relationships: %d\n", m.Dataset.Relationships)
	fmt.Fprintf(w, "╠══════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║ DISTRIBUTIONS\n")
	for _, d := range m.Distributions {
		fmt.Fprintf(w, "║   hops=%-3d %8s  max=%-6d mean=%.2f [%s]\n",
			d.Hops, d.Duration.Round(time.Millisecond), len(d.Histogram)-1, d.Summary.Mean, d.Kinds)
		if d.OutputPath != "" {
			fmt.Fprintf(w, "║     -> %s\n", d.OutputPath)
		}
	}
	if len(m.Errors) > 0 {
		fmt.Fprintf(w, "╠══════════════════════════════════════╣\n")
		fmt.Fprintf(w, "║ ERRORS\n")
		for _, e := range m.Errors {
			fmt.Fprintf(w, "║   • %s\n", e)
		}
	}
	fmt.Fprintf(w, "╚══════════════════════════════════════╝\n")
}

// JSON returns the metrics as formatted JSON.
func (m *RunMetrics) JSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
