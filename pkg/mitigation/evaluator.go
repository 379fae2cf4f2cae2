package mitigation

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/chainwatch/cascade/pkg/logging"
	"github.com/chainwatch/cascade/pkg/model"
	"github.com/chainwatch/cascade/pkg/sim"
)

// Result scores one evaluated candidate. Produced here, consumed
// read-only by the ranker and the report.
type Result struct {
	Candidate                Candidate  `json:"candidate"`
	BaselinePathCount        int        `json:"baseline_path_count"`
	ModifiedPathCount        int        `json:"modified_path_count"`
	BaselineAffectedCount    int        `json:"baseline_affected_count"`
	ModifiedAffectedCount    int        `json:"modified_affected_count"`
	RiskReduction            float64    `json:"risk_reduction"`
	PathsEliminated          int        `json:"paths_eliminated"`
	ImplementationComplexity Complexity `json:"implementation_complexity"`
}

// Evaluator scores candidates by re-simulating on modified graph
// copies. Evaluations share no mutable state, so candidates can be
// evaluated in parallel.
type Evaluator struct {
	simulator *sim.Simulator
	policy    Policy
	workers   int
}

// NewEvaluator creates an Evaluator. workers bounds parallel candidate
// evaluation in EvaluateAll; values <= 0 select GOMAXPROCS.
func NewEvaluator(simulator *sim.Simulator, policy Policy, workers int) *Evaluator {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Evaluator{
		simulator: simulator,
		policy:    policy,
		workers:   workers,
	}
}

// Evaluate builds a modified copy of g per the candidate, re-runs the
// simulation with the same source and depth, and scores the reduction.
// Fails with model.ErrNotFound when the candidate's target is absent.
func (e *Evaluator) Evaluate(ctx context.Context, g *model.Graph, baseline *sim.Result, candidate Candidate, sourceID string, maxDepth int) (*Result, error) {
	result := &Result{
		Candidate:                candidate,
		BaselinePathCount:        len(baseline.Paths),
		BaselineAffectedCount:    len(baseline.AffectedNodeIDs),
		ImplementationComplexity: e.policy.Complexity[candidate.ActionType],
	}

	// Isolating the source removes all propagation by definition; the
	// modified result is trivially empty and needs no simulation.
	if candidate.ActionType == ActionIsolateNode && candidate.NodeID == sourceID {
		e.score(result)
		return result, nil
	}

	modified, err := e.applyCandidate(g, candidate)
	if err != nil {
		return nil, err
	}

	modifiedRun, err := e.simulator.Simulate(ctx, modified, sourceID, maxDepth)
	if err != nil {
		return nil, fmt.Errorf("re-simulating after %s on %s: %w", candidate.ActionType, candidate.Target(), err)
	}

	result.ModifiedPathCount = len(modifiedRun.Paths)
	result.ModifiedAffectedCount = len(modifiedRun.AffectedNodeIDs)
	e.score(result)
	return result, nil
}

func (e *Evaluator) applyCandidate(g *model.Graph, candidate Candidate) (*model.Graph, error) {
	switch candidate.ActionType {
	case ActionIsolateNode:
		return g.WithNodeRemoved(candidate.NodeID)
	case ActionRemoveEdge:
		return g.WithEdgeRemoved(candidate.EdgeSource, candidate.EdgeTarget)
	default:
		return nil, fmt.Errorf("unknown action type %q: %w", candidate.ActionType, model.ErrInvalidArgument)
	}
}

// score fills the derived fields from the recorded counts.
func (e *Evaluator) score(r *Result) {
	r.PathsEliminated = r.BaselinePathCount - r.ModifiedPathCount

	pathRatio := 0.0
	if r.BaselinePathCount > 0 {
		pathRatio = float64(r.PathsEliminated) / float64(r.BaselinePathCount)
	}
	nodeRatio := 0.0
	if r.BaselineAffectedCount > 0 {
		nodeRatio = float64(r.BaselineAffectedCount-r.ModifiedAffectedCount) / float64(r.BaselineAffectedCount)
	}

	r.RiskReduction = clamp(e.policy.PathWeight*pathRatio+e.policy.NodeWeight*nodeRatio, 0.0, 1.0)
}

// EvaluateAll evaluates every candidate across a bounded worker pool.
// Each worker operates on its own graph copy; results are collected
// into per-candidate slots, so output order equals input order no
// matter how the workers interleave. A candidate that fails with
// ErrNotFound is dropped (logged) rather than aborting the batch; any
// other error aborts.
func (e *Evaluator) EvaluateAll(ctx context.Context, g *model.Graph, baseline *sim.Result, candidates []Candidate, sourceID string, maxDepth int) ([]*Result, error) {
	slots := make([]*Result, len(candidates))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.workers)

	for i, candidate := range candidates {
		group.Go(func() error {
			result, err := e.Evaluate(groupCtx, g, baseline, candidate, sourceID, maxDepth)
			if err != nil {
				if errors.Is(err, model.ErrNotFound) {
					logging.Warn("dropping mitigation candidate",
						"action", candidate.ActionType,
						"target", candidate.Target(),
						"error", err,
					)
					return nil
				}
				return err
			}
			slots[i] = result
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	results := make([]*Result, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			results = append(results, r)
		}
	}
	return results, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
