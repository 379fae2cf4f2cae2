// Package cycles performs structural vulnerability scanning on a loaded
// dependency graph: circular dependency chains and single-point-of-failure
// hubs. The scan is advisory data alongside a propagation analysis; it
// assigns no probabilities or scores.
package cycles

import (
	"sort"

	"github.com/chainwatch/cascade/pkg/graph"
	"github.com/chainwatch/cascade/pkg/model"
)

// Cycle is a circular dependency chain between nodes.
type Cycle struct {
	NodeIDs []string `json:"node_ids"`
}

// Hub is a node whose fan-out exceeds the scan threshold, making it a
// structural single point of failure for everything downstream.
type Hub struct {
	NodeID string `json:"node_id"`
	FanOut int    `json:"fan_out"`
	FanIn  int    `json:"fan_in"`
}

// Report holds the result of a structural scan.
type Report struct {
	Cycles []Cycle `json:"cycles"`
	Hubs   []Hub   `json:"hubs"`
}

// DefaultHubThreshold is the minimum fan-out for a node to be reported
// as a hub.
const DefaultHubThreshold = 3

// Scan finds dependency cycles and high fan-out hubs in the graph.
// Output order is deterministic: cycles sorted by their smallest member
// id, hubs by fan-out descending then id.
func Scan(g *model.Graph, hubThreshold int) *Report {
	if hubThreshold <= 0 {
		hubThreshold = DefaultHubThreshold
	}

	view := graph.FromModel(g)
	report := &Report{}

	for _, scc := range newTarjanSCC(view.Graph()).findSCCs() {
		ids := make([]string, 0, len(scc))
		for _, gid := range scc {
			ids = append(ids, view.NodeID(gid))
		}
		sort.Strings(ids)
		report.Cycles = append(report.Cycles, Cycle{NodeIDs: ids})
	}
	sort.Slice(report.Cycles, func(i, j int) bool {
		return report.Cycles[i].NodeIDs[0] < report.Cycles[j].NodeIDs[0]
	})

	for _, n := range g.Nodes() {
		fanOut := g.OutDegree(n.ID)
		if fanOut >= hubThreshold {
			report.Hubs = append(report.Hubs, Hub{
				NodeID: n.ID,
				FanOut: fanOut,
				FanIn:  view.InDegree(n.ID),
			})
		}
	}
	sort.Slice(report.Hubs, func(i, j int) bool {
		if report.Hubs[i].FanOut != report.Hubs[j].FanOut {
			return report.Hubs[i].FanOut > report.Hubs[j].FanOut
		}
		return report.Hubs[i].NodeID < report.Hubs[j].NodeID
	})

	return report
}
