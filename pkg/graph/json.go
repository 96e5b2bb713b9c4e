package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sunstflower/modelsee/pkg/shape"
)

type jsonGraph struct {
	Nodes []jsonNode `json:"nodes"`
	Edges []jsonEdge `json:"edges"`
}

type jsonNode struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Config    map[string]any `json:"config,omitempty"`
	Position  *Point         `json:"position,omitempty"`
	Output    shape.Shape    `json:"output_shape,omitempty"`
	Synthetic bool           `json:"synthetic,omitempty"`
}

type jsonEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ReadJSON decodes a JSON graph snapshot from r.
//
// The input must be a JSON object with "nodes" and "edges" arrays:
//
//	{
//	  "nodes": [
//	    {"id": "n1", "type": "conv2d", "config": {"filters": 32, "kernel_size": [3, 3]}},
//	    {"id": "n2", "type": "flatten"}
//	  ],
//	  "edges": [{"from": "n1", "to": "n2"}]
//	}
//
// Each node must have "id" and "type" fields. Optional fields:
//   - config: object with layer parameters
//   - position: {"x": ..., "y": ...} canvas coordinates
//   - output_shape: cached inferred shape (null entries are wildcards)
//
// ReadJSON returns an error if the JSON is malformed, a node ID is duplicated
// or empty, or an edge is a self-loop or references an unknown node. Errors
// are wrapped with context describing which node or edge caused the problem;
// use errors.Is to check for the graph sentinel errors.
//
// The returned graph is independent of r and can be modified safely after
// ReadJSON returns. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Graph, error) {
	var data jsonGraph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := New()
	for _, n := range data.Nodes {
		nd := Node{
			ID:        n.ID,
			Type:      n.Type,
			Config:    Config(n.Config),
			Output:    n.Output,
			Synthetic: n.Synthetic,
		}
		if n.Position != nil {
			nd.Position = *n.Position
		}
		if err := g.AddNode(nd); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
	}
	return g, nil
}

// ImportJSON reads a JSON file at path and returns the decoded graph.
// It returns the same validation errors as [ReadJSON], wrapped with the
// file path for context.
func ImportJSON(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// WriteJSON encodes the graph as indented JSON and writes it to w.
// Nodes are emitted in creation order and edges in insertion order, so the
// output is deterministic and can be re-imported with [ReadJSON] for full
// round-trip fidelity, including repair-inserted adapter nodes.
func WriteJSON(g *Graph, w io.Writer) error {
	out := jsonGraph{
		Nodes: make([]jsonNode, 0, g.NodeCount()),
		Edges: make([]jsonEdge, 0, g.EdgeCount()),
	}

	for _, n := range g.Nodes() {
		nd := jsonNode{
			ID:        n.ID,
			Type:      n.Type,
			Config:    n.Config,
			Output:    n.Output,
			Synthetic: n.Synthetic,
		}
		if n.Position != (Point{}) {
			pos := n.Position
			nd.Position = &pos
		}
		out.Nodes = append(out.Nodes, nd)
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, jsonEdge{From: e.From, To: e.To})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalJSON converts a graph to JSON bytes using the [WriteJSON] format.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportJSON writes the graph to a JSON file at path.
// The file is created with 0644 permissions.
func ExportJSON(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}
