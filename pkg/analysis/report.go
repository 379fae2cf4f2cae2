package analysis

import (
	"github.com/chainwatch/cascade/pkg/cycles"
	"github.com/chainwatch/cascade/pkg/mitigation"
	"github.com/chainwatch/cascade/pkg/sim"
)

// Mitigation is one ranked entry in the report's mitigations list.
type Mitigation struct {
	ActionType               mitigation.ActionType `json:"action_type"`
	Target                   string                `json:"target"`
	Description              string                `json:"description"`
	RiskReduction            float64               `json:"risk_reduction"`
	PathsEliminated          int                   `json:"paths_eliminated"`
	ImplementationComplexity mitigation.Complexity `json:"implementation_complexity"`
}

// Report is the boundary document handed to result consumers. It is
// never mutated after assembly.
type Report struct {
	RunID            string         `json:"run_id"`
	SourceID         string         `json:"source_id"`
	MaxDepth         int            `json:"max_depth"`
	PropagationPaths []sim.Path     `json:"propagation_paths"`
	AffectedNodeIDs  []string       `json:"affected_node_ids"`
	Metrics          sim.Metrics    `json:"metrics"`
	Truncated        bool           `json:"truncated"`
	Cancelled        bool           `json:"cancelled,omitempty"`
	Mitigations      []Mitigation   `json:"mitigations"`
	Structural       *cycles.Report `json:"structural,omitempty"`
}

// assembleReport builds the boundary document from the pipeline's
// intermediate values. Slices are non-nil so empty lists serialize as
// [] rather than null.
func assembleReport(runID string, baseline *sim.Result, ranked []*mitigation.Result, structural *cycles.Report) *Report {
	report := &Report{
		RunID:            runID,
		SourceID:         baseline.SourceID,
		MaxDepth:         baseline.MaxDepth,
		PropagationPaths: baseline.Paths,
		AffectedNodeIDs:  baseline.AffectedNodeIDs,
		Metrics:          baseline.Metrics,
		Truncated:        baseline.Truncated,
		Cancelled:        baseline.Cancelled,
		Mitigations:      make([]Mitigation, 0, len(ranked)),
		Structural:       structural,
	}
	if report.PropagationPaths == nil {
		report.PropagationPaths = []sim.Path{}
	}
	if report.AffectedNodeIDs == nil {
		report.AffectedNodeIDs = []string{}
	}

	for _, r := range ranked {
		report.Mitigations = append(report.Mitigations, Mitigation{
			ActionType:               r.Candidate.ActionType,
			Target:                   r.Candidate.Target(),
			Description:              r.Candidate.Description,
			RiskReduction:            r.RiskReduction,
			PathsEliminated:          r.PathsEliminated,
			ImplementationComplexity: r.ImplementationComplexity,
		})
	}

	return report
}
