package graph

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sunstflower/modelsee/pkg/shape"
)

const sampleJSON = `{
  "nodes": [
    {"id": "conv", "type": "conv2d", "config": {"filters": 32, "kernel_size": [3, 3]}, "position": {"x": 100, "y": 50}},
    {"id": "flat", "type": "flatten"},
    {"id": "out", "type": "dense", "config": {"units": 10}}
  ],
  "edges": [
    {"from": "conv", "to": "flat"},
    {"from": "flat", "to": "out"}
  ]
}`

func TestReadJSON(t *testing.T) {
	g, err := ReadJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	if g.NodeCount() != 3 || g.EdgeCount() != 2 {
		t.Fatalf("got %d nodes, %d edges, want 3, 2", g.NodeCount(), g.EdgeCount())
	}

	conv, ok := g.Node("conv")
	if !ok {
		t.Fatalf("node conv missing")
	}
	if conv.Type != "conv2d" {
		t.Errorf("Type = %q, want conv2d", conv.Type)
	}
	// JSON numbers decode as float64.
	if conv.Config["filters"] != float64(32) {
		t.Errorf("filters = %v (%T), want 32", conv.Config["filters"], conv.Config["filters"])
	}
	if conv.Position.X != 100 || conv.Position.Y != 50 {
		t.Errorf("Position = %+v, want {100 50}", conv.Position)
	}
}

func TestReadJSONRejectsBadGraphs(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"Malformed", `{"nodes": [`},
		{"DuplicateNode", `{"nodes": [{"id": "a", "type": "dense"}, {"id": "a", "type": "dense"}], "edges": []}`},
		{"EmptyID", `{"nodes": [{"id": "", "type": "dense"}], "edges": []}`},
		{"SelfLoop", `{"nodes": [{"id": "a", "type": "dense"}], "edges": [{"from": "a", "to": "a"}]}`},
		{"UnknownEndpoint", `{"nodes": [{"id": "a", "type": "dense"}], "edges": [{"from": "a", "to": "ghost"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadJSON(strings.NewReader(tt.in)); err == nil {
				t.Errorf("ReadJSON should reject %s input", tt.name)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	g := New()
	mustAdd(t, g,
		Node{ID: "b", Type: "conv2d", Config: Config{"filters": 32}},
		Node{ID: "a", Type: "flatten", Output: shape.Of(-1, 784), Synthetic: true})
	mustConnect(t, g, Edge{From: "b", To: "a"})

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}

	back, err := ReadJSON(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	// Creation order survives the round trip: "b" before "a".
	ids := back.NodeIDs()
	if ids[0] != "b" || ids[1] != "a" {
		t.Errorf("NodeIDs = %v, want [b a]", ids)
	}

	flat, _ := back.Node("a")
	if !flat.Synthetic {
		t.Errorf("Synthetic flag lost in round trip")
	}
	if !flat.Output.Equal(shape.Of(-1, 784)) {
		t.Errorf("Output = %v, want [?, 784]", flat.Output)
	}

	// Serialization is deterministic.
	again, err := MarshalGraph(back)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Errorf("round trip is not byte-stable")
	}
}

func TestImportExportJSON(t *testing.T) {
	g, err := ReadJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	path := filepath.Join(t.TempDir(), "graph.json")
	if err := ExportJSON(g, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	back, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if back.NodeCount() != g.NodeCount() || back.EdgeCount() != g.EdgeCount() {
		t.Errorf("file round trip lost structure")
	}

	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Errorf("ImportJSON should fail on a missing file")
	}
}
