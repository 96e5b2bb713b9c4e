package layers

import (
	"testing"

	"github.com/sunstflower/modelsee/pkg/errors"
	"github.com/sunstflower/modelsee/pkg/graph"
	"github.com/sunstflower/modelsee/pkg/shape"
)

// shapeOf resolves a layer and runs its shape function.
func shapeOf(t *testing.T, tag string, in shape.Shape, cfg graph.Config) (shape.Shape, error) {
	t.Helper()
	d, err := Lookup(tag)
	if err != nil {
		t.Fatalf("Lookup(%s): %v", tag, err)
	}
	return d.ShapeOf(in, cfg)
}

func TestShapeInference(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		in   shape.Shape
		cfg  graph.Config
		want shape.Shape
	}{
		{
			name: "DenseReplacesFeatures",
			tag:  "dense",
			in:   shape.Of(-1, 784),
			cfg:  graph.Config{"units": 128},
			want: shape.Of(-1, 128),
		},
		{
			name: "Conv2DValidPadding",
			tag:  "conv2d",
			in:   shape.Of(-1, 28, 28, 1),
			cfg:  graph.Config{"filters": 32, "kernel_size": []int{3, 3}},
			want: shape.Of(-1, 26, 26, 32),
		},
		{
			name: "Conv2DSamePadding",
			tag:  "conv2d",
			in:   shape.Of(-1, 28, 28, 1),
			cfg:  graph.Config{"filters": 16, "kernel_size": []int{5, 5}, "padding": "same"},
			want: shape.Of(-1, 28, 28, 16),
		},
		{
			name: "Conv2DWildSpatial",
			tag:  "conv2d",
			in:   shape.Of(-1, -1, -1, 3),
			cfg:  graph.Config{"filters": 8, "kernel_size": []int{3, 3}},
			want: shape.Of(-1, -1, -1, 8),
		},
		{
			name: "MaxPoolHalves",
			tag:  "maxpool2d",
			in:   shape.Of(-1, 26, 26, 32),
			cfg:  graph.Config{"pool_size": []int{2, 2}},
			want: shape.Of(-1, 13, 13, 32),
		},
		{
			name: "FlattenCollapses",
			tag:  "flatten",
			in:   shape.Of(-1, 13, 13, 32),
			cfg:  graph.Config{},
			want: shape.Of(-1, 13*13*32),
		},
		{
			name: "FlattenWildGoesWild",
			tag:  "flatten",
			in:   shape.Of(-1, -1, 32),
			cfg:  graph.Config{},
			want: shape.Of(-1, -1),
		},
		{
			name: "Conv1DSteps",
			tag:  "conv1d",
			in:   shape.Of(-1, 100, 16),
			cfg:  graph.Config{"filters": 64, "kernel_size": 5},
			want: shape.Of(-1, 96, 64),
		},
		{
			name: "LSTMLastOutput",
			tag:  "lstm",
			in:   shape.Of(-1, 20, 16),
			cfg:  graph.Config{"units": 32},
			want: shape.Of(-1, 32),
		},
		{
			name: "LSTMSequences",
			tag:  "lstm",
			in:   shape.Of(-1, 20, 16),
			cfg:  graph.Config{"units": 32, "return_sequences": true},
			want: shape.Of(-1, 20, 32),
		},
		{
			name: "GRULastOutput",
			tag:  "gru",
			in:   shape.Of(-1, 20, 16),
			cfg:  graph.Config{"units": 8},
			want: shape.Of(-1, 8),
		},
		{
			name: "DropoutIdentity",
			tag:  "dropout",
			in:   shape.Of(-1, 28, 28, 1),
			cfg:  graph.Config{"rate": 0.5},
			want: shape.Of(-1, 28, 28, 1),
		},
		{
			name: "BatchNormIdentity",
			tag:  "batch_normalization",
			in:   shape.Of(-1, 128),
			cfg:  graph.Config{},
			want: shape.Of(-1, 128),
		},
		{
			name: "AttentionIdentity",
			tag:  "multi_head_attention",
			in:   shape.Of(-1, 20, 64),
			cfg:  graph.Config{"num_heads": 8, "key_dim": 64},
			want: shape.Of(-1, 20, 64),
		},
		{
			name: "ReshapeTarget",
			tag:  "reshape",
			in:   shape.Of(-1, 784),
			cfg:  graph.Config{"target_shape": []int{28, 28, 1}},
			want: shape.Of(-1, 28, 28, 1),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := shapeOf(t, tt.tag, tt.in, tt.cfg)
			if err != nil {
				t.Fatalf("ShapeOf: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ShapeOf(%s, %v) = %v, want %v", tt.tag, tt.in, got, tt.want)
			}
		})
	}
}

func TestShapeErrors(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		in       shape.Shape
		cfg      graph.Config
		wantCode errors.Code
	}{
		{
			name:     "DenseRejectsRank4",
			tag:      "dense",
			in:       shape.Of(-1, 13, 13, 32),
			cfg:      graph.Config{"units": 10},
			wantCode: errors.ErrCodeRankMismatch,
		},
		{
			name:     "Conv2DRejectsRank2",
			tag:      "conv2d",
			in:       shape.Of(-1, 784),
			cfg:      graph.Config{"filters": 32, "kernel_size": []int{3, 3}},
			wantCode: errors.ErrCodeRankMismatch,
		},
		{
			name:     "Conv2DKernelTooLarge",
			tag:      "conv2d",
			in:       shape.Of(-1, 2, 2, 1),
			cfg:      graph.Config{"filters": 32, "kernel_size": []int{5, 5}},
			wantCode: errors.ErrCodeIncompatibleDimension,
		},
		{
			name:     "LSTMRejectsRank2",
			tag:      "lstm",
			in:       shape.Of(-1, 128),
			cfg:      graph.Config{"units": 32},
			wantCode: errors.ErrCodeRankMismatch,
		},
		{
			name:     "AttentionIndivisibleHeads",
			tag:      "multi_head_attention",
			in:       shape.Of(-1, 20, 64),
			cfg:      graph.Config{"num_heads": 7, "key_dim": 64},
			wantCode: errors.ErrCodeIncompatibleDimension,
		},
		{
			name:     "ReshapeIndivisible",
			tag:      "reshape",
			in:       shape.Of(-1, 784),
			cfg:      graph.Config{"target_shape": []int{27, 27}},
			wantCode: errors.ErrCodeIncompatibleDimension,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := shapeOf(t, tt.tag, tt.in, tt.cfg)
			if err == nil {
				t.Fatalf("ShapeOf(%s, %v) should fail", tt.tag, tt.in)
			}
			if code := errors.GetCode(err); code != tt.wantCode {
				t.Errorf("code = %s, want %s (err: %v)", code, tt.wantCode, err)
			}
		})
	}
}

func TestReshapeWildSuspendsDivisibility(t *testing.T) {
	got, err := shapeOf(t, "reshape", shape.Of(-1, -1, 3), graph.Config{"target_shape": []int{5, 5}})
	if err != nil {
		t.Fatalf("ShapeOf with wildcard input should not fail: %v", err)
	}
	if !got.Equal(shape.Of(-1, 5, 5)) {
		t.Errorf("ShapeOf = %v, want [?, 5, 5]", got)
	}
}

func TestCheckConfig(t *testing.T) {
	dense, _ := Lookup("dense")

	t.Run("Valid", func(t *testing.T) {
		errs := dense.CheckConfig(graph.Config{"units": 10, "activation": "softmax"})
		if len(errs) != 0 {
			t.Errorf("CheckConfig = %v, want no errors", errs)
		}
	})

	t.Run("JSONNumbersAccepted", func(t *testing.T) {
		errs := dense.CheckConfig(graph.Config{"units": float64(10)})
		if len(errs) != 0 {
			t.Errorf("CheckConfig rejected integral float64: %v", errs)
		}
	})

	t.Run("AllViolationsReported", func(t *testing.T) {
		errs := dense.CheckConfig(graph.Config{
			"units":      "ten",     // wrong type
			"activation": "quantum", // not a choice
			"warp":       1,         // unknown parameter
		})
		if len(errs) != 3 {
			t.Fatalf("CheckConfig returned %d errors, want 3: %v", len(errs), errs)
		}
		for _, err := range errs {
			if code := errors.GetCode(err); code != errors.ErrCodeConfigType {
				t.Errorf("code = %s, want %s", code, errors.ErrCodeConfigType)
			}
		}
	})

	t.Run("MissingRequired", func(t *testing.T) {
		conv, _ := Lookup("conv2d")
		errs := conv.CheckConfig(graph.Config{})
		if len(errs) == 0 {
			t.Errorf("CheckConfig should report missing required parameters")
		}
	})

	t.Run("RangeViolation", func(t *testing.T) {
		errs := dense.CheckConfig(graph.Config{"units": 0})
		if len(errs) != 1 {
			t.Errorf("CheckConfig = %v, want one range violation", errs)
		}
	})
}
