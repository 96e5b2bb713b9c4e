package layers

import (
	"fmt"
	"strings"

	"github.com/sunstflower/modelsee/pkg/graph"
	"github.com/sunstflower/modelsee/pkg/shape"
)

// Basic layer set: dense, conv2d, pooling, flatten.

func init() {
	Register(denseLayer())
	Register(conv2dLayer())
	Register(poolLayer("maxpool2d", "MaxPooling2D", "MaxPool2d", "maxpool"))
	Register(poolLayer("avgpool2d", "AveragePooling2D", "AvgPool2d", "avgpool"))
	Register(flattenLayer())
}

func denseLayer() *Descriptor {
	return &Descriptor{
		Type:     "dense",
		Category: CategoryBasic,
		Doc:      "Fully-connected layer",
		Defaults: graph.Config{
			"units":      128,
			"activation": "linear",
			"use_bias":   true,
		},
		Params: []ParamSpec{
			intRange("units", true, 1, 10000),
			choice("activation", "linear", "relu", "sigmoid", "tanh", "softmax", "leaky_relu", "elu", "selu"),
			{Name: "use_bias", Kind: ParamBool},
		},
		Rank: RankRequirement{Exact: 2},
		ShapeOf: func(in shape.Shape, cfg graph.Config) (shape.Shape, error) {
			if in.Rank() != 2 {
				return nil, rankError("dense", RankRequirement{Exact: 2}, in.Rank())
			}
			units := configInt(cfg, "units", 128)
			return shape.Shape{in[0], shape.Dim(units)}, nil
		},
		TensorFlow: func(c EmitContext) string {
			units := configInt(c.Config, "units", 128)
			parts := []string{fmt.Sprintf("layers.Dense(%d", units)}
			if act := configString(c.Config, "activation", "linear"); act != "linear" {
				parts = append(parts, fmt.Sprintf("activation='%s'", act))
			}
			if !configBool(c.Config, "use_bias", true) {
				parts = append(parts, "use_bias=False")
			}
			if c.First {
				parts = append(parts, inputShapeArg(c.Input))
			}
			return strings.Join(parts, ", ") + ")"
		},
		PyTorch: func(c EmitContext) (string, string) {
			units := configInt(c.Config, "units", 128)
			def := fmt.Sprintf("self.dense_%d = nn.Linear(%s, %d, bias=%s)",
				c.Index, lastDim(c.Input), units, pyBool(configBool(c.Config, "use_bias", true)))
			fwd := fmt.Sprintf("x = self.dense_%d(x)", c.Index)
			if act := torchActivation(configString(c.Config, "activation", "linear")); act != "" {
				fwd += "\n        " + act
			}
			return def, fwd
		},
	}
}

func conv2dLayer() *Descriptor {
	return &Descriptor{
		Type:     "conv2d",
		Category: CategoryBasic,
		Doc:      "2-D convolution over NHWC input",
		Defaults: graph.Config{
			"filters":     32,
			"kernel_size": []int{3, 3},
			"strides":     []int{1, 1},
			"padding":     "valid",
			"activation":  "linear",
			"use_bias":    true,
		},
		Params: []ParamSpec{
			intRange("filters", true, 1, 2048),
			intPair("kernel_size", true),
			intPair("strides", false),
			choice("padding", "valid", "same"),
			choice("activation", "linear", "relu", "sigmoid", "tanh", "leaky_relu", "elu"),
			{Name: "use_bias", Kind: ParamBool},
		},
		Rank: RankRequirement{Exact: 4},
		ShapeOf: func(in shape.Shape, cfg graph.Config) (shape.Shape, error) {
			if in.Rank() != 4 {
				return nil, rankError("conv2d", RankRequirement{Exact: 4}, in.Rank())
			}
			filters := configInt(cfg, "filters", 32)
			kernel := configIntList(cfg, "kernel_size", []int{3, 3})
			strides := configIntList(cfg, "strides", []int{1, 1})
			padding := shape.Padding(configString(cfg, "padding", "valid"))

			h := shape.WindowOut(in[1], kernel[0], strides[0], padding)
			w := shape.WindowOut(in[2], kernel[1], strides[1], padding)
			if h == 0 || w == 0 {
				return nil, dimError("conv2d kernel %v exceeds input extent %s", kernel, in)
			}
			return shape.Shape{in[0], h, w, shape.Dim(filters)}, nil
		},
		TensorFlow: func(c EmitContext) string {
			filters := configInt(c.Config, "filters", 32)
			kernel := configIntList(c.Config, "kernel_size", []int{3, 3})
			strides := configIntList(c.Config, "strides", []int{1, 1})
			parts := []string{fmt.Sprintf("layers.Conv2D(%d, %s", filters, pyList(kernel))}
			if strides[0] != 1 || strides[1] != 1 {
				parts = append(parts, fmt.Sprintf("strides=%s", pyList(strides)))
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
			kernel := configIntList(c.Config, "kernel_size", []int{3, 3})
			strides := configIntList(c.Config, "strides", []int{1, 1})
			padding := "0"
			if configString(c.Config, "padding", "valid") == "same" {
				padding = "'same'"
			}
			def := fmt.Sprintf("self.conv2d_%d = nn.Conv2d(%s, %d, %d, stride=%d, padding=%s)",
				c.Index, lastDim(c.Input), filters, kernel[0], strides[0], padding)
			fwd := fmt.Sprintf("x = self.conv2d_%d(x)", c.Index)
			if act := torchActivation(configString(c.Config, "activation", "linear")); act != "" {
				fwd += "\n        " + act
			}
			return def, fwd
		},
	}
}

// poolLayer builds a 2-D pooling descriptor. Max and average pooling share
// shape semantics and differ only in the emitted class names.
func poolLayer(tag, tfClass, torchClass, field string) *Descriptor {
	return &Descriptor{
		Type:     tag,
		Category: CategoryBasic,
		Doc:      "2-D pooling over NHWC input",
		Defaults: graph.Config{
			"pool_size": []int{2, 2},
			"padding":   "valid",
		},
		Params: []ParamSpec{
			intPair("pool_size", true),
			intPair("strides", false),
			choice("padding", "valid", "same"),
		},
		Rank: RankRequirement{Exact: 4},
		ShapeOf: func(in shape.Shape, cfg graph.Config) (shape.Shape, error) {
			if in.Rank() != 4 {
				return nil, rankError(tag, RankRequirement{Exact: 4}, in.Rank())
			}
			pool := configIntList(cfg, "pool_size", []int{2, 2})
			strides := configIntList(cfg, "strides", pool)
			padding := shape.Padding(configString(cfg, "padding", "valid"))

			h := shape.WindowOut(in[1], pool[0], strides[0], padding)
			w := shape.WindowOut(in[2], pool[1], strides[1], padding)
			if h == 0 || w == 0 {
				return nil, dimError("%s window %v exceeds input extent %s", tag, pool, in)
			}
			return shape.Shape{in[0], h, w, in[3]}, nil
		},
		TensorFlow: func(c EmitContext) string {
			pool := configIntList(c.Config, "pool_size", []int{2, 2})
			strides := configIntList(c.Config, "strides", pool)
			parts := []string{fmt.Sprintf("layers.%s(%s", tfClass, pyList(pool))}
			if strides[0] != pool[0] || strides[1] != pool[1] {
				parts = append(parts, fmt.Sprintf("strides=%s", pyList(strides)))
			}
			if pad := configString(c.Config, "padding", "valid"); pad != "valid" {
				parts = append(parts, fmt.Sprintf("padding='%s'", pad))
			}
			return strings.Join(parts, ", ") + ")"
		},
		PyTorch: func(c EmitContext) (string, string) {
			pool := configIntList(c.Config, "pool_size", []int{2, 2})
			strides := configIntList(c.Config, "strides", pool)
			def := fmt.Sprintf("self.%s_%d = nn.%s(%d, stride=%d)",
				field, c.Index, torchClass, pool[0], strides[0])
			fwd := fmt.Sprintf("x = self.%s_%d(x)", field, c.Index)
			return def, fwd
		},
	}
}

func flattenLayer() *Descriptor {
	return &Descriptor{
		Type:     "flatten",
		Category: CategoryBasic,
		Doc:      "Collapse all non-batch dimensions into one",
		Defaults: graph.Config{},
		Rank:     RankRequirement{Min: 2},
		ShapeOf: func(in shape.Shape, cfg graph.Config) (shape.Shape, error) {
			if in.Rank() < 2 {
				return nil, rankError("flatten", RankRequirement{Min: 2}, in.Rank())
			}
			flat := 1
			for _, d := range in[1:] {
				if d.IsWild() {
					return shape.Shape{in[0], shape.Wild}, nil
				}
				flat *= int(d)
			}
			return shape.Shape{in[0], shape.Dim(flat)}, nil
		},
		TensorFlow: func(c EmitContext) string {
			if c.First {
				return "layers.Flatten(" + inputShapeArg(c.Input) + ")"
			}
			return "layers.Flatten()"
		},
		PyTorch: func(c EmitContext) (string, string) {
			return "", "x = x.view(x.size(0), -1)"
		},
	}
}

// torchActivation maps an activation name to its functional forward
// statement. Unknown or linear activations emit nothing.
func torchActivation(act string) string {
	switch act {
	case "relu":
		return "x = F.relu(x)"
	case "sigmoid":
		return "x = torch.sigmoid(x)"
	case "tanh":
		return "x = torch.tanh(x)"
	case "softmax":
		return "x = F.softmax(x, dim=1)"
	case "leaky_relu":
		return "x = F.leaky_relu(x)"
	case "elu":
		return "x = F.elu(x)"
	case "selu":
		return "x = F.selu(x)"
	}
	return ""
}
