package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/efebarandurmaz/reach/internal/analysis"
	"github.com/efebarandurmaz/reach/internal/config"
	"github.com/efebarandurmaz/reach/internal/export"
	"github.com/efebarandurmaz/reach/internal/graph"
	graphneo4j "github.com/efebarandurmaz/reach/internal/graph/neo4j"
	"github.com/efebarandurmaz/reach/internal/ingest"
	"github.com/efebarandurmaz/reach/internal/metrics"
	"github.com/efebarandurmaz/reach/internal/observability"
	"github.com/efebarandurmaz/reach/internal/reach"
	"github.com/efebarandurmaz/reach/internal/secrets"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	cfg        *config.Config
	tracer     *observability.TracerProvider
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "reach",
		Short:         "K-hop reachability distributions over a company relationship graph",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.tracer != nil {
				return opts.tracer.Shutdown(context.Background())
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "configs/reach.yaml", "Config file path")

	rootCmd.AddCommand(
		newAnalyzeCmd(opts),
		newCountCmd(opts),
		newDumpCmd(opts),
		newExportCmd(opts),
		newPushCmd(opts),
		newNeighborsCmd(opts),
		newKindsCmd(),
	)
	return rootCmd
}

// setup loads config, installs the default logger and starts tracing.
func (o *rootOptions) setup(ctx context.Context) error {
	cfg, err := config.Load(o.configPath)
	switch {
	case err == nil:
	case errors.Is(err, config.ErrInvalidConfig):
		return err
	case errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
	default:
		fmt.Fprintf(os.Stderr, "Warning: config load failed (%v), using defaults\n", err)
		cfg = config.Default()
	}
	o.cfg = cfg

	slog.SetDefault(observability.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format))

	if ctx == nil {
		ctx = context.Background()
	}
	tp, err := observability.InitTracing(ctx, &observability.TracingConfig{
		ServiceName:  cfg.Tracing.ServiceName,
		Environment:  cfg.Tracing.Environment,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	o.tracer = tp
	return nil
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		inputPath  string
		outputDir  string
		hops       []int
		kinds      []string
		workers    int
		source     string
		jsonReport bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute degree distributions for each hop limit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg.Analysis
			if cmd.Flags().Changed("output") {
				cfg.OutputDir = outputDir
			}
			if cmd.Flags().Changed("hops") {
				cfg.Hops = hops
			}
			if cmd.Flags().Changed("kinds") {
				cfg.Kinds = kinds
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			switch source {
			case "csv":
				if inputPath == "" {
					return fmt.Errorf("--input is required for the csv source")
				}
				return runAnalyze(signalContext(cmd), inputPath, cfg, jsonReport)
			case "neo4j":
				return runAnalyzeStore(signalContext(cmd), opts.cfg, cfg, jsonReport)
			default:
				return fmt.Errorf("unsupported source %q (want csv or neo4j)", source)
			}
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Input links CSV")
	cmd.Flags().StringVar(&outputDir, "output", ".", "Output directory for distribution files (empty disables writing)")
	cmd.Flags().IntSliceVar(&hops, "hops", []int{1, 2}, "Hop limits to compute")
	cmd.Flags().StringSliceVar(&kinds, "kinds", nil, "Relationship kinds to follow (default all)")
	cmd.Flags().IntVar(&workers, "workers", 1, "Parallel workers per distribution")
	cmd.Flags().StringVar(&source, "source", "csv", "Graph source: csv or neo4j")
	cmd.Flags().BoolVar(&jsonReport, "json", false, "Output report as JSON")
	return cmd
}

func runAnalyze(ctx context.Context, inputPath string, cfg config.AnalysisConfig, jsonReport bool) error {
	probe := &config.Config{Analysis: cfg}
	if err := probe.Check(); err != nil {
		return err
	}
	kinds, _ := cfg.KindList()

	fmt.Printf("Reading %s\n", inputPath)
	m, err := analysis.NewRunner(nil).Run(ctx, analysis.Job{
		Input:     inputPath,
		OutputDir: cfg.OutputDir,
		Hops:      cfg.Hops,
		Kinds:     kinds,
		Workers:   cfg.Workers,
	})
	if err != nil {
		return err
	}
	return printReport(m, jsonReport)
}

// runAnalyzeStore computes the distributions over the graph held in Neo4j.
func runAnalyzeStore(ctx context.Context, root *config.Config, cfg config.AnalysisConfig, jsonReport bool) error {
	probe := &config.Config{Analysis: cfg}
	if err := probe.Check(); err != nil {
		return err
	}
	kinds, _ := cfg.KindList()

	repo, err := openStore(ctx, root)
	if err != nil {
		return err
	}
	defer repo.Close(context.Background())

	g, err := repo.LoadGraph(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d companies from %s\n", g.Len(), root.Graph.URI)

	m := metrics.New()
	m.CollectDataset(root.Graph.URI, ingest.Report{Rows: len(g.Records()), Accepted: len(g.Records())}, g)
	job := analysis.Job{OutputDir: cfg.OutputDir, Hops: cfg.Hops, Kinds: kinds, Workers: cfg.Workers}
	if err := analysis.NewRunner(nil).Distributions(ctx, g, job, m); err != nil {
		return err
	}
	m.Finish(nil)
	return printReport(m, jsonReport)
}

func printReport(m *metrics.RunMetrics, jsonReport bool) error {
	if jsonReport {
		data, err := m.JSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	for _, d := range m.Distributions {
		fmt.Println()
		fmt.Print(export.FormatSummary(d.Hops, d.Summary))
	}
	m.PrintSummary(os.Stdout)
	return nil
}

func newCountCmd(opts *rootOptions) *cobra.Command {
	var (
		inputPath string
		name      string
		domain    string
		hops      int
		kinds     []string
	)

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count the companies reachable from one company",
		RunE: func(cmd *cobra.Command, args []string) error {
			if hops < 0 {
				return fmt.Errorf("%w: hop limit %d is negative", config.ErrInvalidConfig, hops)
			}
			if !cmd.Flags().Changed("kinds") {
				kinds = opts.cfg.Analysis.Kinds
			}
			parsed, err := graph.KindsFromStrings(kinds)
			if err != nil {
				return err
			}

			g, _, err := ingest.NewReader(nil).ReadFile(signalContext(cmd), inputPath)
			if err != nil {
				return err
			}
			start := graph.Company{Name: name, Domain: domain}
			if !g.Has(start) {
				fmt.Fprintf(os.Stderr, "Warning: %s is not in the graph\n", start)
			}
			n := reach.CountNeighbors(g, hops, start, analysis.FilterFor(parsed))
			fmt.Printf("%s: %d companies within %d hops\n", start, n, hops)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Input links CSV")
	cmd.Flags().StringVar(&name, "name", "", "Company name")
	cmd.Flags().StringVar(&domain, "domain", "", "Company domain")
	cmd.Flags().IntVar(&hops, "hops", 1, "Hop limit")
	cmd.Flags().StringSliceVar(&kinds, "kinds", nil, "Relationship kinds to follow (default all)")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newDumpCmd(opts *rootOptions) *cobra.Command {
	var inputPath, outputPath string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write a text dump of the graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := ingest.NewReader(nil).ReadFile(signalContext(cmd), inputPath)
			if err != nil {
				return err
			}
			if err := export.WriteGraphFile(outputPath, g); err != nil {
				return err
			}
			fmt.Printf("Graph has been written to %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Input links CSV")
	cmd.Flags().StringVar(&outputPath, "output", "graph_links.txt", "Output file")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var inputPath, outputPath, format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the graph as Graphviz DOT or JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := ingest.NewReader(nil).ReadFile(signalContext(cmd), inputPath)
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case "dot":
				data = []byte(export.ExportDOT(g))
			case "json":
				data, err = export.ExportJSON(g)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported format %q (want dot or json)", format)
			}

			if outputPath == "" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
				return err
			}
			return os.WriteFile(outputPath, data, 0o644)
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Input links CSV")
	cmd.Flags().StringVar(&outputPath, "output", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "dot", "Export format: dot or json")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newPushCmd(opts *rootOptions) *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Store the graph in Neo4j",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := signalContext(cmd)
			g, _, err := ingest.NewReader(nil).ReadFile(ctx, inputPath)
			if err != nil {
				return err
			}

			gc := opts.cfg.Graph
			repo, err := openStore(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer repo.Close(context.Background())

			if err := repo.StoreGraph(ctx, g); err != nil {
				return err
			}
			fmt.Printf("Stored %d relationships between %d companies in %s\n", len(g.Records()), g.Len(), gc.URI)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Input links CSV")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newNeighborsCmd(opts *rootOptions) *cobra.Command {
	var (
		name   string
		domain string
		kinds  []string
	)

	cmd := &cobra.Command{
		Use:   "neighbors",
		Short: "List the direct neighbors of a company stored in Neo4j",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := graph.KindsFromStrings(kinds)
			if err != nil {
				return err
			}
			ctx := signalContext(cmd)
			repo, err := openStore(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer repo.Close(context.Background())

			start := graph.Company{Name: name, Domain: domain}
			neighbors, err := repo.QueryNeighbors(ctx, start, parsed)
			if err != nil {
				return err
			}
			fmt.Printf("%s has %d direct neighbors\n", start, len(neighbors))
			for _, n := range neighbors {
				fmt.Printf("  %s\n", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Company name")
	cmd.Flags().StringVar(&domain, "domain", "", "Company domain")
	cmd.Flags().StringSliceVar(&kinds, "kinds", nil, "Relationship kinds to follow (default all)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// openStore connects to the configured Neo4j database, resolving the
// password through the secrets provider when the config leaves it empty.
func openStore(ctx context.Context, cfg *config.Config) (*graphneo4j.Neo4jRepository, error) {
	password, err := secrets.Resolve(ctx, secrets.Config{
		Provider: cfg.Secrets.Provider,
		File:     cfg.Secrets.File,
	}, secrets.GraphPassword, cfg.Graph.Password)
	if err != nil {
		return nil, fmt.Errorf("resolve graph password: %w", err)
	}
	return graphneo4j.NewNeo4j(ctx, cfg.Graph.URI, cfg.Graph.Username, password)
}

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List relationship kinds and their reciprocals",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Relationship kinds:")
			fmt.Println()
			for _, k := range graph.Known() {
				fmt.Printf("  %-12s <-> %s\n", k, k.Reciprocal())
			}
			fmt.Println()
			fmt.Println("Dataset labels 'investment' and 'partnership' map to investor and partner.")
		},
	}
}

func signalContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	cobra.OnFinalize(cancel)
	return ctx
}
