// Package mitigation proposes and scores structural interventions on a
// dependency graph: isolating a node or removing an edge, evaluated by
// re-running the propagation simulation on a modified graph copy and
// measuring the reduction in reachability.
package mitigation

// ActionType identifies the kind of structural intervention.
type ActionType string

const (
	ActionIsolateNode ActionType = "isolate_node"
	ActionRemoveEdge  ActionType = "remove_edge"
)

// Complexity is the implementation effort class of an action.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// complexityOrdinal fixes the ranking order low < medium < high.
var complexityOrdinal = map[Complexity]int{
	ComplexityLow:    0,
	ComplexityMedium: 1,
	ComplexityHigh:   2,
}

// Policy holds the scoring constants. The weights and the complexity
// mapping are asserted policy, not derived truths; they are fields so
// callers can calibrate them against real outcome data.
type Policy struct {
	// PathWeight and NodeWeight combine the two reduction ratios into
	// the risk_reduction score. They should sum to 1.
	PathWeight float64
	NodeWeight float64

	// Complexity maps each action type to its effort class.
	Complexity map[ActionType]Complexity
}

// DefaultPolicy returns the stock scoring policy: 60% path reduction,
// 40% affected-node reduction, node isolation high effort, edge
// removal medium effort.
func DefaultPolicy() Policy {
	return Policy{
		PathWeight: 0.6,
		NodeWeight: 0.4,
		Complexity: map[ActionType]Complexity{
			ActionIsolateNode: ComplexityHigh,
			ActionRemoveEdge:  ComplexityMedium,
		},
	}
}
