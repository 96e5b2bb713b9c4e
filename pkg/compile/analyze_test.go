package compile

import (
	"testing"

	"github.com/sunstflower/modelsee/pkg/graph"
	"github.com/sunstflower/modelsee/pkg/shape"
)

func TestAnalyzeDenseChain(t *testing.T) {
	g := buildGraph(t,
		[]graph.Node{
			{ID: "flat", Type: "flatten"},
			{ID: "hidden", Type: "dense", Config: graph.Config{"units": 128}},
			{ID: "out", Type: "dense", Config: graph.Config{"units": 10}},
		},
		[]graph.Edge{{From: "flat", To: "hidden"}, {From: "hidden", To: "out"}})

	seq, _ := Sequence(g)
	if diags := Validate(g, seq, shape.Of(-1, 28, 28, 1)); diags.HasErrors() {
		t.Fatalf("unexpected diags: %v", diags)
	}

	a := Analyze(g, seq, shape.Of(-1, 28, 28, 1))
	if a.Partial {
		t.Errorf("all dimensions concrete, analysis should not be partial")
	}
	if len(a.Layers) != 3 {
		t.Fatalf("Layers = %v, want 3 entries", a.Layers)
	}

	// flatten: 0, hidden: 784*128+128, out: 128*10+10
	wantParams := []int64{0, 784*128 + 128, 128*10 + 10}
	for i, l := range a.Layers {
		if l.Params != wantParams[i] {
			t.Errorf("layer %s params = %d, want %d", l.NodeID, l.Params, wantParams[i])
		}
	}
	if want := wantParams[1] + wantParams[2]; a.TotalParams != want {
		t.Errorf("TotalParams = %d, want %d", a.TotalParams, want)
	}
}

func TestAnalyzeConvAndRecurrent(t *testing.T) {
	tests := []struct {
		name  string
		node  graph.Node
		input shape.Shape
		want  int64
	}{
		{
			name:  "Conv2D",
			node:  graph.Node{ID: "c", Type: "conv2d", Config: graph.Config{"filters": 32, "kernel_size": []int{3, 3}}},
			input: shape.Of(-1, 28, 28, 1),
			want:  3*3*1*32 + 32,
		},
		{
			name:  "Conv1D",
			node:  graph.Node{ID: "c", Type: "conv1d", Config: graph.Config{"filters": 64, "kernel_size": 5}},
			input: shape.Of(-1, 100, 16),
			want:  5*16*64 + 64,
		},
		{
			name:  "LSTM",
			node:  graph.Node{ID: "r", Type: "lstm", Config: graph.Config{"units": 32}},
			input: shape.Of(-1, 20, 16),
			want:  4 * (16*32 + 32*32 + 32),
		},
		{
			name:  "GRU",
			node:  graph.Node{ID: "r", Type: "gru", Config: graph.Config{"units": 32}},
			input: shape.Of(-1, 20, 16),
			want:  3 * (16*32 + 32*32 + 32),
		},
		{
			name:  "BatchNorm",
			node:  graph.Node{ID: "n", Type: "batch_normalization"},
			input: shape.Of(-1, 128),
			want:  2 * 128,
		},
		{
			name:  "Attention",
			node:  graph.Node{ID: "a", Type: "multi_head_attention", Config: graph.Config{"num_heads": 4, "key_dim": 16}},
			input: shape.Of(-1, 20, 64),
			want:  4 * (64*64 + 64),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildGraph(t, []graph.Node{tt.node}, nil)
			seq, _ := Sequence(g)
			if diags := Validate(g, seq, tt.input); diags.HasErrors() {
				t.Fatalf("unexpected diags: %v", diags)
			}

			a := Analyze(g, seq, tt.input)
			if len(a.Layers) != 1 {
				t.Fatalf("Layers = %v, want one entry", a.Layers)
			}
			if a.Layers[0].Params != tt.want {
				t.Errorf("params = %d, want %d", a.Layers[0].Params, tt.want)
			}
		})
	}
}

func TestAnalyzePartialOnWildFeatures(t *testing.T) {
	g := buildGraph(t,
		[]graph.Node{
			{ID: "flat", Type: "flatten"},
			{ID: "out", Type: "dense", Config: graph.Config{"units": 10}},
		},
		[]graph.Edge{{From: "flat", To: "out"}})

	// Wild spatial dims flatten to a wild feature count; the dense
	// parameter count is unknowable.
	input := shape.Of(-1, -1, -1, 3)
	seq, _ := Sequence(g)
	if diags := Validate(g, seq, input); diags.HasErrors() {
		t.Fatalf("unexpected diags: %v", diags)
	}

	a := Analyze(g, seq, input)
	if !a.Partial {
		t.Errorf("analysis with unknown feature dims should be partial")
	}
	if a.TotalParams != 0 {
		t.Errorf("TotalParams = %d, want 0 (nothing countable)", a.TotalParams)
	}
}
