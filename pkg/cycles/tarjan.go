package cycles

import (
	"gonum.org/v1/gonum/graph"
)

// tarjanSCC finds strongly connected components with Tarjan's algorithm.
type tarjanSCC struct {
	graph   graph.Directed
	index   int
	stack   []int64
	onStack map[int64]bool
	indices map[int64]int
	lowLink map[int64]int
	sccs    [][]int64
}

func newTarjanSCC(g graph.Directed) *tarjanSCC {
	return &tarjanSCC{
		graph:   g,
		onStack: make(map[int64]bool),
		indices: make(map[int64]int),
		lowLink: make(map[int64]int),
	}
}

// findSCCs returns every strongly connected component with more than
// one node, i.e. every dependency cycle.
func (t *tarjanSCC) findSCCs() [][]int64 {
	nodes := t.graph.Nodes()
	for nodes.Next() {
		node := nodes.Node()
		if _, visited := t.indices[node.ID()]; !visited {
			t.strongConnect(node.ID())
		}
	}
	return t.sccs
}

func (t *tarjanSCC) strongConnect(nodeID int64) {
	t.indices[nodeID] = t.index
	t.lowLink[nodeID] = t.index
	t.index++

	t.stack = append(t.stack, nodeID)
	t.onStack[nodeID] = true

	successors := t.graph.From(nodeID)
	for successors.Next() {
		succID := successors.Node().ID()

		if _, visited := t.indices[succID]; !visited {
			t.strongConnect(succID)
			t.lowLink[nodeID] = min(t.lowLink[nodeID], t.lowLink[succID])
		} else if t.onStack[succID] {
			t.lowLink[nodeID] = min(t.lowLink[nodeID], t.indices[succID])
		}
	}

	// Root of an SCC: pop the component off the stack.
	if t.lowLink[nodeID] == t.indices[nodeID] {
		var scc []int64
		for {
			w := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == nodeID {
				break
			}
		}
		// Single-node components are not cycles (self-loops are
		// rejected at load time).
		if len(scc) > 1 {
			t.sccs = append(t.sccs, scc)
		}
	}
}
