package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/chainwatch/cascade/pkg/analysis"
	"github.com/chainwatch/cascade/pkg/config"
	"github.com/chainwatch/cascade/pkg/loader"
	"github.com/chainwatch/cascade/pkg/logging"
	"github.com/chainwatch/cascade/pkg/mitigation"
	"github.com/chainwatch/cascade/pkg/output"
	"github.com/chainwatch/cascade/pkg/watcher"
	"github.com/chainwatch/cascade/pkg/web"
)

func main() {
	flags := pflag.NewFlagSet("cascade", pflag.ExitOnError)
	flags.String("graph", "graph.json", "Path to the graph JSON document")
	flags.String("source", "", "Failing node id to simulate from")
	flags.Int("max-depth", 3, "Propagation depth bound")
	flags.Int("max-paths", 10000, "Path enumeration safety cap")
	flags.Int("max-candidates", 50, "Mitigation candidate cap")
	flags.Int("workers", 0, "Parallel candidate evaluations (0 = GOMAXPROCS)")
	flags.Int("hub-threshold", 3, "Fan-out threshold for the structural hub scan")
	flags.Float64("path-weight", 0.6, "Risk weighting: path reduction share")
	flags.Float64("node-weight", 0.4, "Risk weighting: affected-node share")
	flags.Bool("web", false, "Start the web server instead of a one-shot analysis")
	flags.Int("port", 8080, "Web server port")
	flags.Bool("watch", false, "Re-run analysis when the graph document changes (web mode)")
	flags.Bool("json", false, "Print the raw report document instead of the console view")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Verbose {
		logging.SetLevel(slog.LevelDebug)
	}
	if cfg.JSONOutput {
		// Keep stdout clean for the report document.
		logging.SetJSONOutput(slog.LevelWarn)
	}

	opts := analysis.Options{
		SourceID:      cfg.Source,
		MaxDepth:      cfg.MaxDepth,
		MaxPaths:      cfg.MaxPaths,
		MaxCandidates: cfg.MaxCandidates,
		Workers:       cfg.Workers,
		HubThreshold:  cfg.HubThreshold,
		Policy: mitigation.Policy{
			PathWeight: cfg.PathWeight,
			NodeWeight: cfg.NodeWeight,
			Complexity: mitigation.DefaultPolicy().Complexity,
		},
	}

	if cfg.WebMode {
		runServer(cfg, opts)
		return
	}

	if cfg.Source == "" {
		fmt.Fprintln(os.Stderr, "Error: --source is required")
		os.Exit(1)
	}

	g, err := loader.LoadFile(cfg.Graph)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	report, err := analysis.NewRunner(nil).Run(context.Background(), g, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.JSONOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	output.PrintReport(report)
}

func runServer(cfg *config.Config, opts analysis.Options) {
	g, err := loader.LoadFile(cfg.Graph)
	if err != nil {
		// In web mode a missing document is not fatal: clients can post
		// graphs inline, and watch mode picks the file up on creation.
		logging.Warn("graph document not loaded", "path", cfg.Graph, "error", err)
	}

	server := web.NewServer(g, opts)

	if cfg.Watch {
		if err := startWatcher(cfg.Graph, server); err != nil {
			logging.Fatal("failed to start watcher", "error", err)
		}
	}

	if err := server.Start(cfg.Port); err != nil {
		logging.Fatal("web server failed", "error", err)
	}
}

func startWatcher(path string, server *web.Server) error {
	gw, err := watcher.NewGraphWatcher(path)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := gw.Start(ctx); err != nil {
		return err
	}

	debouncer := watcher.NewDebouncer(gw.Events(), 500*time.Millisecond, 5*time.Second)
	debouncer.Start(ctx)

	go func() {
		for range debouncer.Events() {
			g, err := loader.LoadFile(path)
			if err != nil {
				logging.Warn("graph reload failed", "path", path, "error", err)
				continue
			}
			server.SetGraph(g)
			logging.Info("graph reloaded", "nodes", g.NodeCount(), "edges", g.EdgeCount())
		}
	}()

	return nil
}
