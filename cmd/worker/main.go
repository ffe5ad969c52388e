package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	temporalclient "go.temporal.io/sdk/client"
	temporallog "go.temporal.io/sdk/log"

	"github.com/efebarandurmaz/reach/internal/config"
	graphneo4j "github.com/efebarandurmaz/reach/internal/graph/neo4j"
	"github.com/efebarandurmaz/reach/internal/observability"
	"github.com/efebarandurmaz/reach/internal/secrets"
	"github.com/efebarandurmaz/reach/internal/server"
	temporalmod "github.com/efebarandurmaz/reach/internal/temporal"
)

var version = "dev"

func main() {
	configPath := "configs/reach.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := observability.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown := server.NewShutdown(cfg.Worker.ShutdownTimeout, logger)

	tp, err := observability.InitTracing(ctx, &observability.TracingConfig{
		ServiceName:  cfg.Tracing.ServiceName,
		Environment:  cfg.Tracing.Environment,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalf("tracing: %v", err)
	}
	shutdown.RegisterHook("tracing", server.PriorityTracing, tp.Shutdown)

	c, err := temporalclient.Dial(temporalclient.Options{
		HostPort:  cfg.Temporal.Host,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporallog.NewStructuredLogger(logger),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	shutdown.RegisterHook("temporal-client", server.PriorityDatabase, func(context.Context) error {
		c.Close()
		return nil
	})

	health := server.NewHealthServer(version)
	health.RegisterCheck("temporal", server.PingChecker("temporal", func(ctx context.Context) error {
		_, err := c.CheckHealth(ctx, &temporalclient.CheckHealthRequest{})
		return err
	}))
	health.RegisterCheck("task_queue", server.TaskQueueChecker(cfg.Temporal.TaskQueue))
	health.Mount("/metrics", promhttp.Handler())
	health.RegisterCheck("neo4j", server.PingChecker("neo4j", graphPing(ctx, cfg, shutdown)))

	w, err := temporalmod.StartWorker(c, cfg.Temporal.TaskQueue)
	if err != nil {
		log.Fatalf("worker: %v", err)
	}
	shutdown.RegisterHook("temporal-worker", server.PriorityWorker, func(context.Context) error {
		w.Stop()
		return nil
	})

	if cfg.Worker.HealthAddr != "" {
		go func() {
			if err := health.ListenAndServe(cfg.Worker.HealthAddr); err != nil {
				logger.Error("health server stopped", "error", err)
			}
		}()
		shutdown.RegisterHook("health-server", server.PriorityHealth, health.Shutdown)
	}
	health.SetReady(true)

	fmt.Printf("Worker started on task queue: %s\n", cfg.Temporal.TaskQueue)

	if failed := shutdown.Wait(ctx); len(failed) > 0 {
		logger.Warn("shutdown incomplete", "failed_hooks", failed)
	}
	fmt.Println("Worker stopped")
}

// graphPing connects to Neo4j for health reporting. Without a reachable store
// it returns nil, which the checker reports as degraded.
func graphPing(ctx context.Context, cfg *config.Config, shutdown *server.Shutdown) func(context.Context) error {
	if cfg.Graph.URI == "" {
		return nil
	}
	password, err := secrets.Resolve(ctx, secrets.Config{
		Provider: cfg.Secrets.Provider,
		File:     cfg.Secrets.File,
	}, secrets.GraphPassword, cfg.Graph.Password)
	if err != nil {
		slog.Warn("graph password unavailable", "error", err)
		return nil
	}
	repo, err := graphneo4j.NewNeo4j(ctx, cfg.Graph.URI, cfg.Graph.Username, password)
	if err != nil {
		slog.Warn("graph store unavailable", "uri", cfg.Graph.URI, "error", err)
		return nil
	}
	shutdown.RegisterHook("neo4j", server.PriorityDatabase, repo.Close)
	return repo.Ping
}
