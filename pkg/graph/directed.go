package graph

import (
	"github.com/chainwatch/cascade/pkg/model"
	"gonum.org/v1/gonum/graph/simple"
)

// Directed is a gonum view of a model.Graph. It maps the engine's
// string node ids onto gonum's int64 ids so that gonum-based algorithms
// (Tarjan SCC, degree queries) can run over the dependency graph.
type Directed struct {
	graph  *simple.DirectedGraph
	ids    map[string]int64
	byID   map[int64]string
	nextID int64
}

// FromModel builds a gonum-backed view of the given graph.
func FromModel(g *model.Graph) *Directed {
	d := &Directed{
		graph: simple.NewDirectedGraph(),
		ids:   make(map[string]int64, g.NodeCount()),
		byID:  make(map[int64]string, g.NodeCount()),
	}

	for _, n := range g.Nodes() {
		d.addNode(n.ID)
	}
	for _, e := range g.Edges() {
		from := d.graph.Node(d.ids[e.Source])
		to := d.graph.Node(d.ids[e.Target])
		d.graph.SetEdge(d.graph.NewEdge(from, to))
	}

	return d
}

func (d *Directed) addNode(id string) {
	if _, exists := d.ids[id]; exists {
		return
	}
	d.ids[id] = d.nextID
	d.byID[d.nextID] = id
	d.graph.AddNode(simple.Node(d.nextID))
	d.nextID++
}

// Graph returns the underlying gonum directed graph.
func (d *Directed) Graph() *simple.DirectedGraph {
	return d.graph
}

// NodeID returns the string id for a gonum node id.
func (d *Directed) NodeID(id int64) string {
	return d.byID[id]
}

// OutDegree returns the fan-out of the node with the given string id,
// or 0 if the node is unknown.
func (d *Directed) OutDegree(id string) int {
	gid, ok := d.ids[id]
	if !ok {
		return 0
	}
	count := 0
	iter := d.graph.From(gid)
	for iter.Next() {
		count++
	}
	return count
}

// InDegree returns the number of incoming edges of the node with the
// given string id, or 0 if the node is unknown.
func (d *Directed) InDegree(id string) int {
	gid, ok := d.ids[id]
	if !ok {
		return 0
	}
	count := 0
	iter := d.graph.To(gid)
	for iter.Next() {
		count++
	}
	return count
}
