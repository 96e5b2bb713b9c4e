package codegen

import (
	"fmt"
	"strings"
)

var tensorflowImports = []string{
	"import tensorflow as tf",
	"from tensorflow.keras import layers, models",
	"import numpy as np",
}

// renderTensorFlow emits a Keras Sequential build script: one model.add
// statement per layer, a factory function, and a compile/summary trailer.
func renderTensorFlow(steps []step, opts Options) *Output {
	var adds []string
	for _, s := range steps {
		adds = append(adds, fmt.Sprintf("    model.add(%s)", s.desc.TensorFlow(s.ctx)))
	}

	fnName := strings.ToLower(opts.ModelName)
	var b strings.Builder
	b.WriteString(joinImports(tensorflowImports))
	b.WriteString("\n\n\n")
	fmt.Fprintf(&b, "def create_%s():\n", fnName)
	fmt.Fprintf(&b, "    \"\"\"Build the %s model.\n\n    Input shape: %s\n    \"\"\"\n", opts.ModelName, opts.InputShape)
	b.WriteString("    model = models.Sequential()\n\n")
	b.WriteString(strings.Join(adds, "\n"))
	b.WriteString("\n\n    return model\n\n\n")
	fmt.Fprintf(&b, "model = create_%s()\n\n", fnName)
	b.WriteString("model.compile(\n")
	b.WriteString("    optimizer='adam',\n")
	b.WriteString("    loss='categorical_crossentropy',\n")
	b.WriteString("    metrics=['accuracy'],\n")
	b.WriteString(")\n\n")
	b.WriteString("model.summary()\n")

	return &Output{
		SourceText: b.String(),
		Imports:    tensorflowImports,
	}
}
