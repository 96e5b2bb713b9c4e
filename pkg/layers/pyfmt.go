package layers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sunstflower/modelsee/pkg/shape"
)

// Helpers for rendering Go values as Python literals in emitted code.

func pyList(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// pyShapeTuple renders a shape as a Python tuple, mapping wildcards to None.
// A single-element tuple keeps its trailing comma: "(784,)".
func pyShapeTuple(s shape.Shape) string {
	parts := make([]string, len(s))
	for i, d := range s {
		if d.IsWild() {
			parts[i] = "None"
		} else {
			parts[i] = strconv.Itoa(int(d))
		}
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// inputShapeArg renders the Keras input_shape keyword for a first layer.
// The leading batch wildcard is stripped: [?, 28, 28, 1] → (28, 28, 1).
func inputShapeArg(in shape.Shape) string {
	dims := in
	if len(dims) > 1 && dims[0].IsWild() {
		dims = dims[1:]
	}
	return fmt.Sprintf("input_shape=%s", pyShapeTuple(dims))
}

// lastDim returns the final dimension of a shape rendered for PyTorch
// constructor arguments, or "None" when unknown.
func lastDim(in shape.Shape) string {
	if len(in) == 0 || in[len(in)-1].IsWild() {
		return "None"
	}
	return strconv.Itoa(int(in[len(in)-1]))
}
