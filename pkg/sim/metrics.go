package sim

import (
	"github.com/chainwatch/cascade/pkg/model"
)

// Metrics are aggregate statistics derived from one run's path set.
type Metrics struct {
	TotalPaths        int     `json:"total_paths"`
	MaxFanOut         int     `json:"max_fan_out"`
	AveragePathLength float64 `json:"average_path_length"`
	MaxPathLength     int     `json:"max_path_length"`
}

// ComputeMetrics derives metrics from a path set. Fan-out is measured
// against the same graph snapshot the paths were enumerated on, over
// every node appearing in any path. Pure function; an empty path set
// yields zero metrics.
func ComputeMetrics(g *model.Graph, paths []Path) Metrics {
	m := Metrics{TotalPaths: len(paths)}
	if len(paths) == 0 {
		return m
	}

	totalLength := 0
	seen := make(map[string]bool)
	for _, p := range paths {
		totalLength += p.Length
		if p.Length > m.MaxPathLength {
			m.MaxPathLength = p.Length
		}
		for _, id := range p.NodeIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			if d := g.OutDegree(id); d > m.MaxFanOut {
				m.MaxFanOut = d
			}
		}
	}
	m.AveragePathLength = float64(totalLength) / float64(len(paths))

	return m
}
