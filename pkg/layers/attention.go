package layers

import (
	"fmt"

	"github.com/sunstflower/modelsee/pkg/graph"
	"github.com/sunstflower/modelsee/pkg/shape"
)

func init() {
	Register(multiHeadAttentionLayer())
}

func multiHeadAttentionLayer() *Descriptor {
	return &Descriptor{
		Type:     "multi_head_attention",
		Category: CategoryAttention,
		Doc:      "Multi-head self-attention over [batch, steps, features]",
		Defaults: graph.Config{
			"num_heads": 8,
			"key_dim":   64,
			"dropout":   0.0,
		},
		Params: []ParamSpec{
			intRange("num_heads", true, 1, 32),
			intRange("key_dim", true, 8, 512),
			{Name: "dropout", Kind: ParamFloat, Min: 0, Max: 1},
		},
		Rank: RankRequirement{Exact: 3},
		ShapeOf: func(in shape.Shape, cfg graph.Config) (shape.Shape, error) {
			if in.Rank() != 3 {
				return nil, rankError("multi_head_attention", RankRequirement{Exact: 3}, in.Rank())
			}
			heads := configInt(cfg, "num_heads", 8)
			keyDim := configInt(cfg, "key_dim", 64)
			if heads > 0 && keyDim%heads != 0 {
				return nil, dimError("key_dim (%d) must be divisible by num_heads (%d)", keyDim, heads)
			}
			return in.Clone(), nil
		},
		TensorFlow: func(c EmitContext) string {
			heads := configInt(c.Config, "num_heads", 8)
			keyDim := configInt(c.Config, "key_dim", 64)
			if dropout := configFloat(c.Config, "dropout", 0); dropout > 0 {
				return fmt.Sprintf("layers.MultiHeadAttention(num_heads=%d, key_dim=%d, dropout=%g)", heads, keyDim, dropout)
			}
			return fmt.Sprintf("layers.MultiHeadAttention(num_heads=%d, key_dim=%d)", heads, keyDim)
		},
		PyTorch: func(c EmitContext) (string, string) {
			heads := configInt(c.Config, "num_heads", 8)
			keyDim := configInt(c.Config, "key_dim", 64)
			dropout := configFloat(c.Config, "dropout", 0)
			def := fmt.Sprintf("self.attention_%d = nn.MultiheadAttention(embed_dim=%d, num_heads=%d, dropout=%g, batch_first=True)",
				c.Index, keyDim*heads, heads, dropout)
			fwd := fmt.Sprintf("x, _ = self.attention_%d(x, x, x)", c.Index)
			return def, fwd
		},
	}
}
