// Package codegen renders a validated, ordered layer sequence into
// model-construction source text for a target framework.
//
// Generation is a pure rendering pass over the already-sequenced and
// already-validated nodes: it performs no graph traversal and no validation
// of its own beyond re-deriving shapes for emitter context. Two target
// profiles share the identical traversal and differ only in their template
// set, which is why each layer descriptor carries one emitter per framework
// rather than the generator special-casing layer types.
//
// Callers must not invoke Generate while error-severity diagnostics are
// outstanding; the compile pipeline enforces that gate and reports a
// "blocked" result instead.
package codegen

import (
	"strings"

	"github.com/sunstflower/modelsee/pkg/errors"
	"github.com/sunstflower/modelsee/pkg/graph"
	"github.com/sunstflower/modelsee/pkg/layers"
	"github.com/sunstflower/modelsee/pkg/shape"
)

// Framework identifies a code generation target profile.
type Framework string

const (
	// FrameworkTensorFlow emits a Keras Sequential build script.
	FrameworkTensorFlow Framework = "tensorflow"
	// FrameworkPyTorch emits an nn.Module class definition.
	FrameworkPyTorch Framework = "pytorch"
)

// ParseFramework validates a framework name.
func ParseFramework(s string) (Framework, error) {
	switch Framework(s) {
	case FrameworkTensorFlow, FrameworkPyTorch:
		return Framework(s), nil
	}
	return "", errors.New(errors.ErrCodeUnknownFramework,
		"unknown framework %q (must be one of: tensorflow, pytorch)", s)
}

// Options configures one generation run.
type Options struct {
	// ModelName is used for the generated function or class name.
	// Defaults to "Model".
	ModelName string
	// InputShape is the declared model input shape, threaded into the
	// first shape-transforming layer's construction statement.
	InputShape shape.Shape
}

// Output is the rendered result.
type Output struct {
	// SourceText is the complete generated script, imports included.
	SourceText string
	// Imports lists the import declarations separately for UIs that
	// display them apart from the model body.
	Imports []string
}

// step is one emitted layer with its resolved emitter context.
type step struct {
	desc *layers.Descriptor
	ctx  layers.EmitContext
}

// Generate renders the sequence for the given framework.
//
// The sequence must come from [compile.Sequence] over the same graph, and
// the graph must have validated cleanly. Marker nodes are skipped. A shape
// failure here means the caller skipped validation and is reported as an
// internal error.
func Generate(g *graph.Graph, seq []string, fw Framework, opts Options) (*Output, error) {
	if opts.ModelName == "" {
		opts.ModelName = "Model"
	}

	steps, err := resolveSteps(g, seq, opts.InputShape)
	if err != nil {
		return nil, err
	}

	switch fw {
	case FrameworkTensorFlow:
		return renderTensorFlow(steps, opts), nil
	case FrameworkPyTorch:
		return renderPyTorch(steps, opts), nil
	}
	return nil, errors.New(errors.ErrCodeUnknownFramework, "unknown framework %q", string(fw))
}

// resolveSteps re-derives the shape at each node and builds emitter
// contexts. The first non-marker node gets the First flag so it declares
// the overall model input shape; subsequent layers infer theirs from the
// prior layer, matching how both target frameworks build sequential models.
func resolveSteps(g *graph.Graph, seq []string, input shape.Shape) ([]step, error) {
	var steps []step
	current := input.Clone()

	for _, id := range seq {
		node, ok := g.Node(id)
		if !ok {
			return nil, errors.New(errors.ErrCodeInternal, "sequence references unknown node %q", id)
		}
		desc, err := layers.Lookup(node.Type)
		if err != nil {
			return nil, err
		}
		if desc.Marker {
			continue
		}

		ctx := layers.EmitContext{
			Config: node.Config,
			Input:  current.Clone(),
			First:  len(steps) == 0,
			Index:  len(steps),
		}
		out, err := desc.ShapeOf(current, node.Config)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err,
				"node %q failed shape inference during generation; validate before generating", id)
		}
		steps = append(steps, step{desc: desc, ctx: ctx})
		current = out
	}
	return steps, nil
}

func joinImports(imports []string) string {
	return strings.Join(imports, "\n")
}
