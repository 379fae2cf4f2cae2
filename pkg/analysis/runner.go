// Package analysis orchestrates the full pipeline: baseline propagation
// simulation, structural scan, mitigation candidate generation and
// evaluation, ranking, and report assembly.
package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chainwatch/cascade/pkg/cycles"
	"github.com/chainwatch/cascade/pkg/logging"
	"github.com/chainwatch/cascade/pkg/mitigation"
	"github.com/chainwatch/cascade/pkg/model"
	"github.com/chainwatch/cascade/pkg/pubsub"
	"github.com/chainwatch/cascade/pkg/sim"
)

// Options configures one analysis run.
type Options struct {
	SourceID       string
	MaxDepth       int
	MaxPaths       int // 0 selects sim.DefaultMaxPaths
	MaxCandidates  int // 0 selects mitigation.DefaultMaxCandidates
	Workers        int // parallel candidate evaluations, 0 selects GOMAXPROCS
	HubThreshold   int // 0 selects cycles.DefaultHubThreshold
	SkipStructural bool
	Policy         mitigation.Policy
}

// Runner executes analyses. One Runner serializes its runs; the engine
// itself is pure, the lock only prevents interleaved status streams.
type Runner struct {
	publisher pubsub.Publisher // optional
	mu        sync.Mutex
}

// NewRunner creates a Runner. publisher may be nil for one-shot CLI use.
func NewRunner(publisher pubsub.Publisher) *Runner {
	return &Runner{publisher: publisher}
}

const totalSteps = 5

func (r *Runner) publishStatus(runID, state, message string, step int) {
	if r.publisher == nil {
		return
	}
	err := r.publisher.Publish(pubsub.TopicAnalysisStatus, state, pubsub.AnalysisStatus{
		RunID:   runID,
		State:   state,
		Message: message,
		Step:    step,
		Total:   totalSteps,
	})
	if err != nil {
		logging.Warn("status publish failed", "state", state, "error", err)
	}
}

// Run executes the pipeline on a loaded graph and returns the report.
// Load/argument failures abort; a per-candidate NotFound only shrinks
// the mitigations list (handled inside the evaluator).
func (r *Runner) Run(ctx context.Context, g *model.Graph, opts Options) (*Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runID := uuid.New().String()
	start := time.Now()
	logging.Info("analysis starting",
		"runID", runID,
		"source", opts.SourceID,
		"maxDepth", opts.MaxDepth,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
	)

	if opts.Policy.Complexity == nil {
		opts.Policy = mitigation.DefaultPolicy()
	}
	simulator := sim.New(opts.MaxPaths)

	r.publishStatus(runID, "simulating", "Enumerating propagation paths...", 1)
	baseline, err := simulator.Simulate(ctx, g, opts.SourceID, opts.MaxDepth)
	if err != nil {
		analysesTotal.WithLabelValues("error").Inc()
		r.publishStatus(runID, "error", err.Error(), 1)
		return nil, fmt.Errorf("baseline simulation: %w", err)
	}
	simulationPaths.Observe(float64(len(baseline.Paths)))

	var structural *cycles.Report
	if !opts.SkipStructural {
		r.publishStatus(runID, "scanning", "Scanning for cycles and hubs...", 2)
		structural = cycles.Scan(g, opts.HubThreshold)
		if len(structural.Cycles) > 0 {
			logging.Warn("dependency cycles present", "runID", runID, "cycles", len(structural.Cycles))
		}
	}

	r.publishStatus(runID, "generating", "Generating mitigation candidates...", 3)
	candidates := mitigation.NewGenerator(opts.MaxCandidates).Generate(g, baseline)

	r.publishStatus(runID, "evaluating",
		fmt.Sprintf("Evaluating %d candidates...", len(candidates)), 4)
	evaluator := mitigation.NewEvaluator(simulator, opts.Policy, opts.Workers)
	results, err := evaluator.EvaluateAll(ctx, g, baseline, candidates, opts.SourceID, opts.MaxDepth)
	if err != nil {
		analysesTotal.WithLabelValues("error").Inc()
		r.publishStatus(runID, "error", err.Error(), 4)
		return nil, fmt.Errorf("evaluating candidates: %w", err)
	}
	candidatesEvaluated.Add(float64(len(results)))

	r.publishStatus(runID, "ranking", "Ranking mitigations...", 5)
	ranked := mitigation.Rank(results)

	report := assembleReport(runID, baseline, ranked, structural)

	if r.publisher != nil {
		if err := r.publisher.Publish(pubsub.TopicReport, "done", report); err != nil {
			logging.Warn("report publish failed", "runID", runID, "error", err)
		}
	}
	r.publishStatus(runID, "done", "Analysis complete", totalSteps)

	analysesTotal.WithLabelValues("ok").Inc()
	analysisDuration.Observe(time.Since(start).Seconds())
	logging.Info("analysis complete",
		"runID", runID,
		"paths", len(report.PropagationPaths),
		"affected", len(report.AffectedNodeIDs),
		"mitigations", len(report.Mitigations),
		"duration", time.Since(start),
	)

	return report, nil
}
