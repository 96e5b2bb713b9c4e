package layers

import (
	"fmt"
	"strings"

	"github.com/sunstflower/modelsee/pkg/graph"
	"github.com/sunstflower/modelsee/pkg/shape"
)

func init() {
	Register(reshapeLayer())
}

func reshapeLayer() *Descriptor {
	return &Descriptor{
		Type:     "reshape",
		Category: CategoryCustom,
		Doc:      "Reshape non-batch dimensions to a target shape",
		Defaults: graph.Config{
			"target_shape": []int{1},
		},
		Params: []ParamSpec{
			{Name: "target_shape", Kind: ParamIntList, Required: true},
		},
		Rank: RankRequirement{Min: 2},
		ShapeOf: func(in shape.Shape, cfg graph.Config) (shape.Shape, error) {
			if in.Rank() < 2 {
				return nil, rankError("reshape", RankRequirement{Min: 2}, in.Rank())
			}
			target := configIntList(cfg, "target_shape", []int{1})

			// The target element count must divide the input's non-batch
			// element count. Wildcards on either side suspend the check.
			inElems, inOK := in.Elements(1)
			targetElems := 1
			for _, d := range target {
				if d > 0 {
					targetElems *= d
				}
			}
			allConcrete := true
			for _, d := range in[1:] {
				if d.IsWild() {
					allConcrete = false
				}
			}
			if inOK && allConcrete && targetElems > 0 && inElems%targetElems != 0 {
				return nil, dimError("cannot reshape %s into %v: %d elements do not divide %d",
					in, target, targetElems, inElems)
			}

			out := shape.Shape{in[0]}
			for _, d := range target {
				out = append(out, shape.Dim(d))
			}
			return out, nil
		},
		TensorFlow: func(c EmitContext) string {
			target := configIntList(c.Config, "target_shape", []int{1})
			return fmt.Sprintf("layers.Reshape(%s)", pyList(target))
		},
		PyTorch: func(c EmitContext) (string, string) {
			target := configIntList(c.Config, "target_shape", []int{1})
			dims := make([]string, 0, len(target)+1)
			dims = append(dims, "x.size(0)")
			for _, d := range target {
				dims = append(dims, fmt.Sprintf("%d", d))
			}
			return "", fmt.Sprintf("x = x.view(%s)", strings.Join(dims, ", "))
		},
	}
}
