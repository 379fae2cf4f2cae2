// Package sim implements deterministic failure-propagation simulation:
// bounded-depth enumeration of all simple paths from a source node,
// plus derived structural metrics. No probabilities, no predictions,
// only structural analysis.
package sim

import (
	"context"
	"fmt"
	"sort"

	"github.com/chainwatch/cascade/pkg/logging"
	"github.com/chainwatch/cascade/pkg/model"
)

// DefaultMaxPaths is the safety cap on enumerated paths per run.
const DefaultMaxPaths = 10000

// Path is a simple propagation path: an ordered sequence of distinct
// node ids beginning at the source. Length counts hops (nodes - 1).
type Path struct {
	NodeIDs []string `json:"path"`
	Length  int      `json:"length"`
}

// Result is the output of one simulation run. It is never mutated after
// return and is safe to hand to concurrent readers.
type Result struct {
	SourceID        string   `json:"source_id"`
	MaxDepth        int      `json:"max_depth"`
	Paths           []Path   `json:"propagation_paths"`
	AffectedNodeIDs []string `json:"affected_node_ids"`
	Metrics         Metrics  `json:"metrics"`
	Truncated       bool     `json:"truncated"`
	Cancelled       bool     `json:"cancelled,omitempty"`
}

// Simulator enumerates propagation paths over a graph snapshot.
// The zero value is not usable; construct with New.
type Simulator struct {
	maxPaths int
}

// New creates a Simulator. maxPaths bounds enumeration per run; values
// <= 0 select DefaultMaxPaths.
func New(maxPaths int) *Simulator {
	if maxPaths <= 0 {
		maxPaths = DefaultMaxPaths
	}
	return &Simulator{maxPaths: maxPaths}
}

// frame is one unit of traversal work: a path ending at its last node.
// The visited set is the path itself, so re-convergent (diamond) routes
// are enumerated fully while cycles terminate.
type frame struct {
	path []string
}

// Simulate enumerates all simple paths from sourceID reachable within
// maxDepth hops, in a fixed depth-first order. Enumeration stops
// deterministically at the path cap (Truncated=true) and checks ctx
// between steps, returning a partial result marked Cancelled=true when
// the caller gave up. Single-node paths are not propagation paths, so
// maxDepth == 0 yields an empty path set.
func (s *Simulator) Simulate(ctx context.Context, g *model.Graph, sourceID string, maxDepth int) (*Result, error) {
	if sourceID == "" {
		return nil, fmt.Errorf("empty source id: %w", model.ErrInvalidArgument)
	}
	if maxDepth < 0 {
		return nil, fmt.Errorf("negative max depth %d: %w", maxDepth, model.ErrInvalidArgument)
	}
	if !g.HasNode(sourceID) {
		return nil, fmt.Errorf("source node %q: %w", sourceID, model.ErrNotFound)
	}

	result := &Result{
		SourceID: sourceID,
		MaxDepth: maxDepth,
	}

	stack := []frame{{path: []string{sourceID}}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			logging.Warn("simulation cancelled", "source", sourceID, "pathsFound", len(result.Paths))
			result.Cancelled = true
			break
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(f.path) > 1 {
			if len(result.Paths) >= s.maxPaths {
				result.Truncated = true
				break
			}
			result.Paths = append(result.Paths, Path{
				NodeIDs: f.path,
				Length:  len(f.path) - 1,
			})
		}

		if len(f.path)-1 >= maxDepth {
			continue
		}

		// Successors come back sorted by target id; push them in
		// reverse so they pop in ascending order.
		succ := g.Outgoing(f.path[len(f.path)-1])
		for i := len(succ) - 1; i >= 0; i-- {
			next := succ[i].Target
			if containsID(f.path, next) {
				continue
			}
			extended := make([]string, len(f.path), len(f.path)+1)
			copy(extended, f.path)
			stack = append(stack, frame{path: append(extended, next)})
		}
	}

	result.AffectedNodeIDs = affectedNodes(result.Paths)
	result.Metrics = ComputeMetrics(g, result.Paths)

	logging.Debug("simulation complete",
		"source", sourceID,
		"maxDepth", maxDepth,
		"paths", len(result.Paths),
		"affected", len(result.AffectedNodeIDs),
		"truncated", result.Truncated,
	)

	return result, nil
}

// affectedNodes returns the sorted set of non-source ids appearing in
// any path. The source is first in every path and is excluded.
func affectedNodes(paths []Path) []string {
	set := make(map[string]bool)
	for _, p := range paths {
		for _, id := range p.NodeIDs[1:] {
			set[id] = true
		}
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func containsID(path []string, id string) bool {
	for _, p := range path {
		if p == id {
			return true
		}
	}
	return false
}
