package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// datasetRows counts ingested rows by outcome: "accepted" or "skipped".
	datasetRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reach_dataset_rows_total",
		Help: "Dataset rows read, by outcome",
	}, []string{"outcome"})

	graphCompanies = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reach_graph_companies",
		Help: "Companies in the most recently built graph",
	})

	distributionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reach_distributions_total",
		Help: "Distributions computed, by hop limit",
	}, []string{"hops"})

	distributionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reach_distribution_duration_seconds",
		Help:    "Time to compute one distribution",
		Buckets: []float64{0.001, 0.01, 0.1, 1, 10, 60, 600},
	})
)

// ObserveDataset records an ingestion in the process-wide collectors.
func ObserveDataset(d DatasetMetrics) {
	datasetRows.WithLabelValues("accepted").Add(float64(d.Accepted))
	datasetRows.WithLabelValues("skipped").Add(float64(d.Skipped))
	graphCompanies.Set(float64(d.Companies))
}

// ObserveDistribution records one computed distribution.
func ObserveDistribution(hops int, d time.Duration) {
	distributionsTotal.WithLabelValues(strconv.Itoa(hops)).Inc()
	distributionDuration.Observe(d.Seconds())
}
