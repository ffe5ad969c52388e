package temporal

import (
	"fmt"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

// StartWorker creates and starts a Temporal worker.
func StartWorker(c client.Client, taskQueue string) (worker.Worker, error) {
	w := worker.New(c, taskQueue, worker.Options{})
	Register(w)

	if err := w.Start(); err != nil {
		return nil, fmt.Errorf("starting worker: %w", err)
	}
	return w, nil
}

// Register adds the distribution workflow and its activities to w.
func Register(w worker.Registry) {
	w.RegisterWorkflow(DistributionWorkflow)
	w.RegisterActivity(IngestActivity)
	w.RegisterActivity(DistributionActivity)
	w.RegisterActivity(WriteActivity)
}
