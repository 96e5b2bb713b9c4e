package codegen

import (
	"fmt"
	"strings"
)

var pytorchImports = []string{
	"import torch",
	"import torch.nn as nn",
	"import torch.nn.functional as F",
}

// renderPyTorch emits an nn.Module class: layer field definitions in
// __init__ and the matching forward statements, plus a parameter-count
// trailer. Stateless ops (flatten, standalone activations) contribute only
// forward statements.
func renderPyTorch(steps []step, opts Options) *Output {
	var defs, fwds []string
	for _, s := range steps {
		def, fwd := s.desc.PyTorch(s.ctx)
		if strings.TrimSpace(def) != "" {
			defs = append(defs, "        "+def)
		}
		if strings.TrimSpace(fwd) != "" {
			fwds = append(fwds, "        "+fwd)
		}
	}

	var b strings.Builder
	b.WriteString(joinImports(pytorchImports))
	b.WriteString("\n\n\n")
	fmt.Fprintf(&b, "class %s(nn.Module):\n", opts.ModelName)
	fmt.Fprintf(&b, "    \"\"\"%s model.\n\n    Input shape: %s\n    \"\"\"\n\n", opts.ModelName, opts.InputShape)
	b.WriteString("    def __init__(self):\n")
	b.WriteString("        super().__init__()\n")
	if len(defs) > 0 {
		b.WriteString(strings.Join(defs, "\n"))
		b.WriteString("\n")
	}
	b.WriteString("\n    def forward(self, x):\n")
	b.WriteString(strings.Join(fwds, "\n"))
	b.WriteString("\n        return x\n\n\n")
	fmt.Fprintf(&b, "model = %s()\n\n", opts.ModelName)
	b.WriteString("def count_parameters(model):\n")
	b.WriteString("    return sum(p.numel() for p in model.parameters() if p.requires_grad)\n\n")
	b.WriteString("print(f\"Parameters: {count_parameters(model):,}\")\n")

	return &Output{
		SourceText: b.String(),
		Imports:    pytorchImports,
	}
}
