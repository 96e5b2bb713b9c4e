package compile

import (
	"github.com/sunstflower/modelsee/pkg/graph"
	"github.com/sunstflower/modelsee/pkg/layers"
	"github.com/sunstflower/modelsee/pkg/shape"
)

// LayerCost is the estimated cost of one layer in the compiled model.
type LayerCost struct {
	NodeID string      `json:"node_id"`
	Type   string      `json:"type"`
	Params int64       `json:"params"`
	Output shape.Shape `json:"output,omitempty"`
}

// Analysis summarizes trainable parameter counts across the model.
// Counts match what the generated framework code will report, within the
// limits of wildcard dimensions: a parameter count that depends on an
// unknown dimension is reported as zero and flags the analysis as partial.
type Analysis struct {
	Layers      []LayerCost `json:"layers"`
	TotalParams int64       `json:"total_params"`
	Partial     bool        `json:"partial,omitempty"`
}

// Analyze estimates per-layer trainable parameter counts for a validated
// sequence. It must run after Validate, which populates the per-node output
// shape caches the estimates read. Marker nodes and nodes whose shapes did
// not resolve are skipped.
func Analyze(g *graph.Graph, seq []string, input shape.Shape) *Analysis {
	a := &Analysis{}
	current := input.Clone()

	for _, id := range seq {
		node, ok := g.Node(id)
		if !ok {
			continue
		}
		desc, err := layers.Lookup(node.Type)
		if err != nil || desc.Marker {
			continue
		}
		if node.Output == nil {
			// Shape never resolved for this node; downstream estimates
			// would compound the unknown, so just mark the gap.
			a.Partial = true
			continue
		}

		params, exact := layerParams(node, desc, current)
		if !exact {
			a.Partial = true
		}
		a.Layers = append(a.Layers, LayerCost{
			NodeID: id,
			Type:   node.Type,
			Params: params,
			Output: node.Output.Clone(),
		})
		a.TotalParams += params
		current = node.Output
	}
	return a
}

// layerParams estimates trainable parameters for a single layer given its
// input shape. Returns exact=false when a required dimension is unknown.
func layerParams(node *graph.Node, desc *layers.Descriptor, in shape.Shape) (int64, bool) {
	cfg := withDefaults(node.Config, desc.Defaults)

	switch node.Type {
	case "dense":
		units := cfgInt(cfg, "units", 0)
		if last, ok := lastDim(in); ok {
			n := int64(last)*int64(units) + int64(units)
			return n, true
		}
		return 0, false

	case "conv2d":
		filters := cfgInt(cfg, "filters", 0)
		k := cfgIntPair(cfg, "kernel_size", 3, 3)
		if in.Rank() == 4 && !in[3].IsWild() {
			n := int64(k[0])*int64(k[1])*int64(in[3])*int64(filters) + int64(filters)
			return n, true
		}
		return 0, false

	case "conv1d":
		filters := cfgInt(cfg, "filters", 0)
		k := cfgInt(cfg, "kernel_size", 3)
		if in.Rank() == 3 && !in[2].IsWild() {
			n := int64(k)*int64(in[2])*int64(filters) + int64(filters)
			return n, true
		}
		return 0, false

	case "lstm", "gru":
		// Per gate: input weights, recurrent weights, bias.
		gates := int64(4)
		if node.Type == "gru" {
			gates = 3
		}
		units := int64(cfgInt(cfg, "units", 0))
		if last, ok := lastDim(in); ok {
			n := gates * (int64(last)*units + units*units + units)
			return n, true
		}
		return 0, false

	case "batch_normalization", "layer_normalization":
		// Scale and shift per feature.
		if last, ok := lastDim(in); ok {
			return 2 * int64(last), true
		}
		return 0, false

	case "multi_head_attention":
		// Query, key, value, output projections.
		heads := int64(cfgInt(cfg, "num_heads", 1))
		keyDim := int64(cfgInt(cfg, "key_dim", 0))
		embed := heads * keyDim
		return 4 * (embed*embed + embed), true
	}

	// Parameter-free layers: flatten, dropout, activation, reshape, pools.
	return 0, true
}

func lastDim(s shape.Shape) (shape.Dim, bool) {
	if s.Rank() == 0 {
		return shape.Wild, false
	}
	d := s[s.Rank()-1]
	return d, !d.IsWild()
}

// withDefaults overlays node config on the descriptor defaults so estimates
// see the same effective values the shape functions and emitters do.
func withDefaults(cfg, defaults graph.Config) graph.Config {
	out := defaults.Clone()
	if out == nil {
		out = graph.Config{}
	}
	for k, v := range cfg {
		out[k] = v
	}
	return out
}

func cfgInt(cfg graph.Config, key string, def int) int {
	switch v := cfg[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

func cfgIntPair(cfg graph.Config, key string, defA, defB int) [2]int {
	out := [2]int{defA, defB}
	switch v := cfg[key].(type) {
	case []int:
		if len(v) == 2 {
			out[0], out[1] = v[0], v[1]
		}
	case []any:
		if len(v) == 2 {
			out[0] = cfgInt(graph.Config{"v": v[0]}, "v", defA)
			out[1] = cfgInt(graph.Config{"v": v[1]}, "v", defB)
		}
	}
	return out
}
