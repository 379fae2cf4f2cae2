// Package loader reads the graph data provider's JSON document (a node
// list and an edge list) and turns it into a validated graph.
package loader

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/chainwatch/cascade/pkg/logging"
	"github.com/chainwatch/cascade/pkg/model"
)

// Document is the input contract with the graph data provider.
type Document struct {
	Nodes []*model.Node `json:"nodes"`
	Edges []*model.Edge `json:"edges"`
}

// Parse decodes a graph document and validates it into a model.Graph.
func Parse(r io.Reader) (*model.Graph, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding graph document: %w", err)
	}
	return doc.Build()
}

// Build validates the document into a graph.
func (d *Document) Build() (*model.Graph, error) {
	g, err := model.Load(d.Nodes, d.Edges)
	if err != nil {
		return nil, err
	}
	logging.Debug("graph loaded", "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return g, nil
}

// LoadFile reads and parses a graph document from disk.
func LoadFile(path string) (*model.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening graph document: %w", err)
	}
	defer f.Close()

	g, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return g, nil
}
