package shape

import "fmt"

// Padding selects how convolution and pooling windows treat tensor borders.
type Padding string

const (
	// PaddingValid drops partial windows: out = floor((in - kernel)/stride) + 1.
	PaddingValid Padding = "valid"
	// PaddingSame pads so the output keeps the input extent divided by the
	// stride: out = floor(in/stride).
	PaddingSame Padding = "same"
)

// ParsePadding validates a padding mode string.
func ParsePadding(s string) (Padding, error) {
	switch Padding(s) {
	case PaddingValid, PaddingSame:
		return Padding(s), nil
	}
	return "", fmt.Errorf("invalid padding %q (must be one of: valid, same)", s)
}

// WindowOut computes the spatial output extent of a sliding-window operation
// (convolution or pooling) over a single dimension.
//
// Wildcard inputs stay wildcard: no constraint propagation is attempted
// through an unknown extent. A concrete input smaller than the kernel under
// valid padding yields 0, which callers must reject as a shape error.
func WindowOut(in Dim, kernel, stride int, padding Padding) Dim {
	if in.IsWild() {
		return Wild
	}
	if stride < 1 {
		stride = 1
	}
	if padding == PaddingSame {
		return Dim(int(in) / stride)
	}
	out := (int(in)-kernel)/stride + 1
	if out < 0 {
		out = 0
	}
	return Dim(out)
}
