package mitigation

import (
	"fmt"

	"github.com/chainwatch/cascade/pkg/logging"
	"github.com/chainwatch/cascade/pkg/model"
	"github.com/chainwatch/cascade/pkg/sim"
)

// DefaultMaxCandidates caps how many candidates one baseline produces,
// bounding downstream evaluation cost.
const DefaultMaxCandidates = 50

// Candidate is a proposed structural intervention. For isolate_node the
// target is NodeID; for remove_edge it is the (EdgeSource, EdgeTarget)
// pair.
type Candidate struct {
	ActionType  ActionType `json:"action_type"`
	NodeID      string     `json:"node_id,omitempty"`
	EdgeSource  string     `json:"edge_source,omitempty"`
	EdgeTarget  string     `json:"edge_target,omitempty"`
	Description string     `json:"description"`
}

// Target renders the candidate's target as a single id: the node id, or
// "source->target" for an edge.
func (c Candidate) Target() string {
	if c.ActionType == ActionRemoveEdge {
		return c.EdgeSource + "->" + c.EdgeTarget
	}
	return c.NodeID
}

// Generator proposes candidates from a baseline simulation.
type Generator struct {
	maxCandidates int
}

// NewGenerator creates a Generator. maxCandidates <= 0 selects
// DefaultMaxCandidates.
func NewGenerator(maxCandidates int) *Generator {
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}
	return &Generator{maxCandidates: maxCandidates}
}

// Generate proposes one isolate_node candidate per affected node and
// one remove_edge candidate per edge touching the baseline's path set.
// Order is deterministic: affected nodes in their (sorted) baseline
// order, then edges in graph insertion order. The list is capped, so
// repeated runs on identical input produce an identical list.
func (gen *Generator) Generate(g *model.Graph, baseline *sim.Result) []Candidate {
	onPath := make(map[string]bool)
	for _, p := range baseline.Paths {
		for _, id := range p.NodeIDs {
			onPath[id] = true
		}
	}

	var candidates []Candidate
	for _, id := range baseline.AffectedNodeIDs {
		if id == baseline.SourceID {
			continue
		}
		candidates = append(candidates, Candidate{
			ActionType:  ActionIsolateNode,
			NodeID:      id,
			Description: describeIsolation(g, id),
		})
	}

	for _, e := range g.Edges() {
		if !onPath[e.Source] && !onPath[e.Target] {
			continue
		}
		candidates = append(candidates, Candidate{
			ActionType:  ActionRemoveEdge,
			EdgeSource:  e.Source,
			EdgeTarget:  e.Target,
			Description: fmt.Sprintf("Remove dependency %s->%s to cut a propagation route", e.Source, e.Target),
		})
	}

	if len(candidates) > gen.maxCandidates {
		logging.Debug("candidate list capped",
			"generated", len(candidates),
			"cap", gen.maxCandidates,
		)
		candidates = candidates[:gen.maxCandidates]
	}

	return candidates
}

// describeIsolation phrases the isolation candidate from structural
// facts only: hub, intermediate, or leaf.
func describeIsolation(g *model.Graph, id string) string {
	fanOut := g.OutDegree(id)
	switch {
	case fanOut > 1:
		return fmt.Sprintf("Isolate critical hub %s (fan-out: %d) to prevent cascade", id, fanOut)
	case fanOut == 1:
		return fmt.Sprintf("Isolate intermediate node %s to limit propagation", id)
	default:
		return fmt.Sprintf("Isolate leaf node %s to reduce exposure", id)
	}
}
