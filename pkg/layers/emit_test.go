package layers

import (
	"testing"

	"github.com/sunstflower/modelsee/pkg/graph"
	"github.com/sunstflower/modelsee/pkg/shape"
)

func TestTensorFlowEmit(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		ctx  EmitContext
		want string
	}{
		{
			name: "DenseDefaults",
			tag:  "dense",
			ctx:  EmitContext{Config: graph.Config{"units": 10}, Input: shape.Of(-1, 784)},
			want: "layers.Dense(10)",
		},
		{
			name: "DenseActivation",
			tag:  "dense",
			ctx:  EmitContext{Config: graph.Config{"units": 10, "activation": "softmax"}, Input: shape.Of(-1, 128)},
			want: "layers.Dense(10, activation='softmax')",
		},
		{
			name: "DenseFirstDeclaresInputShape",
			tag:  "dense",
			ctx:  EmitContext{Config: graph.Config{"units": 64}, Input: shape.Of(-1, 784), First: true},
			want: "layers.Dense(64, input_shape=(784,))",
		},
		{
			name: "Conv2DFirst",
			tag:  "conv2d",
			ctx: EmitContext{
				Config: graph.Config{"filters": 32, "kernel_size": []int{3, 3}, "activation": "relu"},
				Input:  shape.Of(-1, 28, 28, 1),
				First:  true,
			},
			want: "layers.Conv2D(32, [3, 3], activation='relu', input_shape=(28, 28, 1))",
		},
		{
			name: "Conv2DNotFirstOmitsInputShape",
			tag:  "conv2d",
			ctx: EmitContext{
				Config: graph.Config{"filters": 64, "kernel_size": []int{3, 3}},
				Input:  shape.Of(-1, 26, 26, 32),
			},
			want: "layers.Conv2D(64, [3, 3])",
		},
		{
			name: "MaxPool",
			tag:  "maxpool2d",
			ctx:  EmitContext{Config: graph.Config{"pool_size": []int{2, 2}}, Input: shape.Of(-1, 26, 26, 32)},
			want: "layers.MaxPooling2D([2, 2])",
		},
		{
			name: "Flatten",
			tag:  "flatten",
			ctx:  EmitContext{Config: graph.Config{}, Input: shape.Of(-1, 13, 13, 32)},
			want: "layers.Flatten()",
		},
		{
			name: "Dropout",
			tag:  "dropout",
			ctx:  EmitContext{Config: graph.Config{"rate": 0.25}, Input: shape.Of(-1, 128)},
			want: "layers.Dropout(0.25)",
		},
		{
			name: "LSTMSequences",
			tag:  "lstm",
			ctx:  EmitContext{Config: graph.Config{"units": 32, "return_sequences": true}, Input: shape.Of(-1, 20, 16)},
			want: "layers.LSTM(32, return_sequences=True)",
		},
		{
			name: "Attention",
			tag:  "multi_head_attention",
			ctx:  EmitContext{Config: graph.Config{"num_heads": 8, "key_dim": 64}, Input: shape.Of(-1, 20, 64)},
			want: "layers.MultiHeadAttention(num_heads=8, key_dim=64)",
		},
		{
			name: "ActivationReLU",
			tag:  "activation",
			ctx:  EmitContext{Config: graph.Config{"activation_type": "relu"}, Input: shape.Of(-1, 128)},
			want: "layers.ReLU()",
		},
		{
			name: "ActivationSoftmax",
			tag:  "activation",
			ctx:  EmitContext{Config: graph.Config{"activation_type": "softmax"}, Input: shape.Of(-1, 10)},
			want: "layers.Activation('softmax')",
		},
		{
			name: "Reshape",
			tag:  "reshape",
			ctx:  EmitContext{Config: graph.Config{"target_shape": []int{28, 28, 1}}, Input: shape.Of(-1, 784)},
			want: "layers.Reshape([28, 28, 1])",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Lookup(tt.tag)
			if err != nil {
				t.Fatalf("Lookup(%s): %v", tt.tag, err)
			}
			if got := d.TensorFlow(tt.ctx); got != tt.want {
				t.Errorf("TensorFlow = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPyTorchEmit(t *testing.T) {
	t.Run("Dense", func(t *testing.T) {
		d, _ := Lookup("dense")
		def, fwd := d.PyTorch(EmitContext{
			Config: graph.Config{"units": 10, "activation": "softmax"},
			Input:  shape.Of(-1, 128),
			Index:  3,
		})
		if def != "self.dense_3 = nn.Linear(128, 10, bias=True)" {
			t.Errorf("def = %q", def)
		}
		if fwd != "x = self.dense_3(x)\n        x = F.softmax(x, dim=1)" {
			t.Errorf("fwd = %q", fwd)
		}
	})

	t.Run("FlattenIsStateless", func(t *testing.T) {
		d, _ := Lookup("flatten")
		def, fwd := d.PyTorch(EmitContext{Config: graph.Config{}, Input: shape.Of(-1, 13, 13, 32)})
		if def != "" {
			t.Errorf("def = %q, want empty", def)
		}
		if fwd != "x = x.view(x.size(0), -1)" {
			t.Errorf("fwd = %q", fwd)
		}
	})

	t.Run("Conv2D", func(t *testing.T) {
		d, _ := Lookup("conv2d")
		def, _ := d.PyTorch(EmitContext{
			Config: graph.Config{"filters": 32, "kernel_size": []int{3, 3}},
			Input:  shape.Of(-1, 28, 28, 1),
			Index:  0,
		})
		if def != "self.conv2d_0 = nn.Conv2d(1, 32, 3, stride=1, padding=0)" {
			t.Errorf("def = %q", def)
		}
	})

	t.Run("Attention", func(t *testing.T) {
		d, _ := Lookup("multi_head_attention")
		def, fwd := d.PyTorch(EmitContext{
			Config: graph.Config{"num_heads": 4, "key_dim": 16},
			Input:  shape.Of(-1, 20, 64),
			Index:  1,
		})
		if def != "self.attention_1 = nn.MultiheadAttention(embed_dim=64, num_heads=4, dropout=0, batch_first=True)" {
			t.Errorf("def = %q", def)
		}
		if fwd != "x, _ = self.attention_1(x, x, x)" {
			t.Errorf("fwd = %q", fwd)
		}
	})
}
