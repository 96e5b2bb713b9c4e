package layers

import (
	"fmt"
	"strings"

	"github.com/sunstflower/modelsee/pkg/graph"
	"github.com/sunstflower/modelsee/pkg/shape"
)

// Advanced layer set: conv1d and the recurrent layers.

func init() {
	Register(conv1dLayer())
	Register(recurrentLayer("lstm", "LSTM", "LSTM"))
	Register(recurrentLayer("gru", "GRU", "GRU"))
}

func conv1dLayer() *Descriptor {
	return &Descriptor{
		Type:     "conv1d",
		Category: CategoryAdvanced,
		Doc:      "1-D convolution over [batch, steps, channels] input",
		Defaults: graph.Config{
			"filters":     32,
			"kernel_size": 3,
			"strides":     1,
			"padding":     "valid",
			"activation":  "linear",
		},
		Params: []ParamSpec{
			intRange("filters", true, 1, 2048),
			intRange("kernel_size", true, 1, 1024),
			intRange("strides", false, 1, 1024),
			choice("padding", "valid", "same"),
			choice("activation", "linear", "relu", "sigmoid", "tanh"),
		},
		Rank: RankRequirement{Exact: 3},
		ShapeOf: func(in shape.Shape, cfg graph.Config) (shape.Shape, error) {
			if in.Rank() != 3 {
				return nil, rankError("conv1d", RankRequirement{Exact: 3}, in.Rank())
			}
			filters := configInt(cfg, "filters", 32)
			kernel := configInt(cfg, "kernel_size", 3)
			stride := configInt(cfg, "strides", 1)
			padding := shape.Padding(configString(cfg, "padding", "valid"))

			steps := shape.WindowOut(in[1], kernel, stride, padding)
			if steps == 0 {
				return nil, dimError("conv1d kernel %d exceeds input extent %s", kernel, in)
			}
			return shape.Shape{in[0], steps, shape.Dim(filters)}, nil
		},
		TensorFlow: func(c EmitContext) string {
			filters := configInt(c.Config, "filters", 32)
			kernel := configInt(c.Config, "kernel_size", 3)
			parts := []string{fmt.Sprintf("layers.Conv1D(%d, %d", filters, kernel)}
			if stride := configInt(c.Config, "strides", 1); stride != 1 {
				parts = append(parts, fmt.Sprintf("strides=%d", stride))
			}
			if pad := configString(c.Config, "padding", "valid"); pad != "valid" {
				parts = append(parts, fmt.Sprintf("padding='%s'", pad))
			}
			if act := configString(c.Config, "activation", "linear"); act != "linear" {
				parts = append(parts, fmt.Sprintf("activation='%s'", act))
			}
			if c.First {
				parts = append(parts, inputShapeArg(c.Input))
			}
			return strings.Join(parts, ", ") + ")"
		},
		PyTorch: func(c EmitContext) (string, string) {
			filters := configInt(c.Config, "filters", 32)
			kernel := configInt(c.Config, "kernel_size", 3)
			stride := configInt(c.Config, "strides", 1)
			def := fmt.Sprintf("self.conv1d_%d = nn.Conv1d(%s, %d, %d, stride=%d)",
				c.Index, lastDim(c.Input), filters, kernel, stride)
			fwd := fmt.Sprintf("x = self.conv1d_%d(x)", c.Index)
			if act := torchActivation(configString(c.Config, "activation", "linear")); act != "" {
				fwd += "\n        " + act
			}
			return def, fwd
		},
	}
}

// recurrentLayer builds an LSTM or GRU descriptor. The two types share shape
// semantics: [batch, steps, features] in, [batch, units] out, or
// [batch, steps, units] when return_sequences is set.
func recurrentLayer(tag, tfClass, torchClass string) *Descriptor {
	return &Descriptor{
		Type:     tag,
		Category: CategoryAdvanced,
		Doc:      tfClass + " recurrent layer",
		Defaults: graph.Config{
			"units":            128,
			"activation":       "tanh",
			"return_sequences": false,
			"dropout":          0.0,
		},
		Params: []ParamSpec{
			intRange("units", true, 1, 2048),
			choice("activation", "tanh", "sigmoid", "relu", "linear"),
			{Name: "return_sequences", Kind: ParamBool},
			{Name: "dropout", Kind: ParamFloat, Min: 0, Max: 1},
		},
		Rank: RankRequirement{Exact: 3},
		ShapeOf: func(in shape.Shape, cfg graph.Config) (shape.Shape, error) {
			if in.Rank() != 3 {
				return nil, rankError(tag, RankRequirement{Exact: 3}, in.Rank())
			}
			units := shape.Dim(configInt(cfg, "units", 128))
			if configBool(cfg, "return_sequences", false) {
				return shape.Shape{in[0], in[1], units}, nil
			}
			return shape.Shape{in[0], units}, nil
		},
		TensorFlow: func(c EmitContext) string {
			units := configInt(c.Config, "units", 128)
			parts := []string{fmt.Sprintf("layers.%s(%d", tfClass, units)}
			if act := configString(c.Config, "activation", "tanh"); act != "tanh" {
				parts = append(parts, fmt.Sprintf("activation='%s'", act))
			}
			if configBool(c.Config, "return_sequences", false) {
				parts = append(parts, "return_sequences=True")
			}
			if dropout := configFloat(c.Config, "dropout", 0); dropout > 0 {
				parts = append(parts, fmt.Sprintf("dropout=%g", dropout))
			}
			if c.First {
				parts = append(parts, inputShapeArg(c.Input))
			}
			return strings.Join(parts, ", ") + ")"
		},
		PyTorch: func(c EmitContext) (string, string) {
			units := configInt(c.Config, "units", 128)
			dropout := configFloat(c.Config, "dropout", 0)
			def := fmt.Sprintf("self.%s_%d = nn.%s(%s, %d, batch_first=True, dropout=%g)",
				tag, c.Index, torchClass, lastDim(c.Input), units, dropout)
			fwd := fmt.Sprintf("x, _ = self.%s_%d(x)", tag, c.Index)
			if !configBool(c.Config, "return_sequences", false) {
				fwd += "\n        x = x[:, -1, :]"
			}
			return def, fwd
		},
	}
}
