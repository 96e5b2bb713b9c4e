package layers

import (
	"fmt"

	"github.com/sunstflower/modelsee/pkg/graph"
	"github.com/sunstflower/modelsee/pkg/shape"
)

// Shape-preserving layers: dropout, normalization, standalone activations.

func init() {
	Register(dropoutLayer())
	Register(normLayer("batch_normalization", "BatchNormalization", "BatchNorm1d", "batchnorm"))
	Register(normLayer("layer_normalization", "LayerNormalization", "LayerNorm", "layernorm"))
	Register(activationLayer())
}

// identityShape passes the input through unchanged. Shared by every layer
// that only transforms values, not shape.
func identityShape(min int, tag string) ShapeFunc {
	return func(in shape.Shape, cfg graph.Config) (shape.Shape, error) {
		if in.Rank() < min {
			return nil, rankError(tag, RankRequirement{Min: min}, in.Rank())
		}
		return in.Clone(), nil
	}
}

func dropoutLayer() *Descriptor {
	return &Descriptor{
		Type:     "dropout",
		Category: CategoryRegularization,
		Doc:      "Randomly zero a fraction of inputs during training",
		Defaults: graph.Config{"rate": 0.5},
		Params: []ParamSpec{
			{Name: "rate", Kind: ParamFloat, Required: true, Min: 0, Max: 1},
		},
		Rank:    RankRequirement{Min: 1},
		ShapeOf: identityShape(1, "dropout"),
		TensorFlow: func(c EmitContext) string {
			return fmt.Sprintf("layers.Dropout(%g)", configFloat(c.Config, "rate", 0.5))
		},
		PyTorch: func(c EmitContext) (string, string) {
			def := fmt.Sprintf("self.dropout_%d = nn.Dropout(%g)", c.Index, configFloat(c.Config, "rate", 0.5))
			return def, fmt.Sprintf("x = self.dropout_%d(x)", c.Index)
		},
	}
}

func normLayer(tag, tfClass, torchClass, field string) *Descriptor {
	return &Descriptor{
		Type:     tag,
		Category: CategoryRegularization,
		Doc:      tfClass + " over the feature axis",
		Defaults: graph.Config{
			"epsilon":  0.001,
			"momentum": 0.99,
		},
		Params: []ParamSpec{
			{Name: "epsilon", Kind: ParamFloat, Min: 0, Max: 1},
			{Name: "momentum", Kind: ParamFloat, Min: 0, Max: 1},
		},
		Rank:    RankRequirement{Min: 2},
		ShapeOf: identityShape(2, tag),
		TensorFlow: func(c EmitContext) string {
			return fmt.Sprintf("layers.%s()", tfClass)
		},
		PyTorch: func(c EmitContext) (string, string) {
			def := fmt.Sprintf("self.%s_%d = nn.%s(%s)", field, c.Index, torchClass, lastDim(c.Input))
			return def, fmt.Sprintf("x = self.%s_%d(x)", field, c.Index)
		},
	}
}

func activationLayer() *Descriptor {
	return &Descriptor{
		Type:     "activation",
		Category: CategoryRegularization,
		Doc:      "Standalone activation function",
		Defaults: graph.Config{"activation_type": "relu"},
		Params: []ParamSpec{
			choice("activation_type", "relu", "sigmoid", "tanh", "softmax", "leaky_relu", "elu", "selu"),
		},
		Rank:    RankRequirement{Min: 1},
		ShapeOf: identityShape(1, "activation"),
		TensorFlow: func(c EmitContext) string {
			act := configString(c.Config, "activation_type", "relu")
			switch act {
			case "relu":
				return "layers.ReLU()"
			case "leaky_relu":
				return "layers.LeakyReLU()"
			case "elu":
				return "layers.ELU()"
			default:
				return fmt.Sprintf("layers.Activation('%s')", act)
			}
		},
		PyTorch: func(c EmitContext) (string, string) {
			act := torchActivation(configString(c.Config, "activation_type", "relu"))
			if act == "" {
				act = "x = F.relu(x)"
			}
			return "", act
		},
	}
}
