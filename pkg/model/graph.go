package model

import (
	"fmt"
	"sort"
)

// Node represents a vendor, component, or service in the supply-chain
// dependency graph. Attributes is an opaque bag owned by the data
// provider (tier, category, externally computed risk score); the engine
// never interprets its contents.
type Node struct {
	ID         string         `json:"id"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Edge represents a directed dependency relation between two nodes.
// At most one edge may exist per ordered (Source, Target) pair.
type Edge struct {
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Graph is an immutable-by-convention directed dependency graph.
// All modification is modeled as building a new Graph value, so
// independent what-if evaluations can share a baseline without locks.
type Graph struct {
	nodes     map[string]*Node
	nodeOrder []string // insertion order, for deterministic iteration
	edges     []*Edge
	outgoing  map[string][]*Edge // adjacency index, successors sorted by target id
}

// Load builds a validated Graph from node and edge lists.
// It fails with ErrValidation on duplicate node ids, duplicate edges,
// self-loops, or edges referencing missing nodes.
func Load(nodes []*Node, edges []*Edge) (*Graph, error) {
	g := &Graph{
		nodes:    make(map[string]*Node, len(nodes)),
		outgoing: make(map[string][]*Edge),
	}

	for _, n := range nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node with empty id: %w", ErrValidation)
		}
		if _, exists := g.nodes[n.ID]; exists {
			return nil, fmt.Errorf("duplicate node %q: %w", n.ID, ErrValidation)
		}
		g.nodes[n.ID] = n
		g.nodeOrder = append(g.nodeOrder, n.ID)
	}

	seen := make(map[[2]string]bool, len(edges))
	for _, e := range edges {
		if e.Source == e.Target {
			return nil, fmt.Errorf("self-loop on %q: %w", e.Source, ErrValidation)
		}
		if _, ok := g.nodes[e.Source]; !ok {
			return nil, fmt.Errorf("edge %s->%s references missing source node: %w", e.Source, e.Target, ErrValidation)
		}
		if _, ok := g.nodes[e.Target]; !ok {
			return nil, fmt.Errorf("edge %s->%s references missing target node: %w", e.Source, e.Target, ErrValidation)
		}
		key := [2]string{e.Source, e.Target}
		if seen[key] {
			return nil, fmt.Errorf("duplicate edge %s->%s: %w", e.Source, e.Target, ErrValidation)
		}
		seen[key] = true
		g.edges = append(g.edges, e)
	}

	g.buildAdjacency()
	return g, nil
}

// buildAdjacency rebuilds the outgoing-edge index from the edge set.
// Successors are sorted by target id so traversal order is stable
// regardless of edge input order. The index is always rebuilt whole,
// never patched incrementally.
func (g *Graph) buildAdjacency() {
	g.outgoing = make(map[string][]*Edge, len(g.nodes))
	for _, e := range g.edges {
		g.outgoing[e.Source] = append(g.outgoing[e.Source], e)
	}
	for _, succ := range g.outgoing {
		sort.Slice(succ, func(i, j int) bool {
			return succ[i].Target < succ[j].Target
		})
	}
}

// HasNode reports whether a node with the given id exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*Edge {
	return g.edges
}

// Outgoing returns the outgoing edges of a node, sorted by target id.
func (g *Graph) Outgoing(id string) []*Edge {
	return g.outgoing[id]
}

// OutDegree returns the fan-out of a node.
func (g *Graph) OutDegree(id string) int {
	return len(g.outgoing[id])
}

// HasEdge reports whether the edge source->target exists.
func (g *Graph) HasEdge(source, target string) bool {
	for _, e := range g.outgoing[source] {
		if e.Target == target {
			return true
		}
	}
	return false
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// WithNodeRemoved returns a new Graph without the given node and
// without every edge touching it. The receiver is left untouched.
// Fails with ErrNotFound if the node does not exist.
func (g *Graph) WithNodeRemoved(id string) (*Graph, error) {
	if !g.HasNode(id) {
		return nil, fmt.Errorf("node %q: %w", id, ErrNotFound)
	}

	out := &Graph{
		nodes:     make(map[string]*Node, len(g.nodes)-1),
		nodeOrder: make([]string, 0, len(g.nodeOrder)-1),
	}
	for _, nid := range g.nodeOrder {
		if nid == id {
			continue
		}
		out.nodes[nid] = g.nodes[nid]
		out.nodeOrder = append(out.nodeOrder, nid)
	}
	for _, e := range g.edges {
		if e.Source == id || e.Target == id {
			continue
		}
		out.edges = append(out.edges, e)
	}

	out.buildAdjacency()
	return out, nil
}

// WithEdgeRemoved returns a new Graph without exactly the edge
// source->target. The receiver is left untouched. Fails with
// ErrNotFound if the edge does not exist.
func (g *Graph) WithEdgeRemoved(source, target string) (*Graph, error) {
	if !g.HasEdge(source, target) {
		return nil, fmt.Errorf("edge %s->%s: %w", source, target, ErrNotFound)
	}

	out := &Graph{
		nodes:     make(map[string]*Node, len(g.nodes)),
		nodeOrder: g.nodeOrder,
	}
	// Nodes are never mutated after load, so sharing them is safe.
	for id, n := range g.nodes {
		out.nodes[id] = n
	}
	out.edges = make([]*Edge, 0, len(g.edges)-1)
	for _, e := range g.edges {
		if e.Source == source && e.Target == target {
			continue
		}
		out.edges = append(out.edges, e)
	}

	out.buildAdjacency()
	return out, nil
}
