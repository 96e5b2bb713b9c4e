package compile

import (
	"github.com/sunstflower/modelsee/pkg/errors"
	"github.com/sunstflower/modelsee/pkg/graph"
	"github.com/sunstflower/modelsee/pkg/layers"
	"github.com/sunstflower/modelsee/pkg/shape"
)

// Validate walks the ordered node sequence, computing each node's output
// shape from the running shape and its configuration, and collects every
// incompatibility as a diagnostic.
//
// Validation is fail-soft: a failing node never stops the pass. On a shape
// failure the running shape is left unchanged so downstream nodes are
// checked against the best shape information available, and all errors
// surface in a single run.
//
// Marker node types (input/output pins) do not transform shape and are
// skipped. Successful nodes have their Output cache updated in place on the
// snapshot; failed nodes keep a nil cache.
//
// Diagnostic classes:
//   - unknown layer type: error, no repair
//   - malformed configuration: error per violated constraint, no repair
//   - rank mismatch: error with an insert-flatten repair hint
//   - incompatible dimension: error, reported only
func Validate(g *graph.Graph, seq []string, input shape.Shape) Diagnostics {
	var diags Diagnostics
	current := input.Clone()

	for _, id := range seq {
		node, ok := g.Node(id)
		if !ok {
			continue
		}
		desc, err := layers.Lookup(node.Type)
		if err != nil {
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				NodeID:   id,
				Code:     errors.ErrCodeUnknownLayerType,
				Message:  errors.UserMessage(err),
			})
			continue
		}
		if desc.Marker {
			continue
		}

		for _, cfgErr := range desc.CheckConfig(node.Config) {
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				NodeID:   id,
				Code:     errors.ErrCodeConfigType,
				Message:  errors.UserMessage(cfgErr),
			})
		}

		out, err := desc.ShapeOf(current, node.Config)
		if err != nil {
			diags = append(diags, shapeDiagnostic(id, err))
			node.Output = nil
			continue
		}
		node.Output = out
		current = out
	}
	return diags
}

func shapeDiagnostic(id string, err error) Diagnostic {
	d := Diagnostic{
		Severity: SeverityError,
		NodeID:   id,
		Code:     errors.GetCode(err),
		Message:  errors.UserMessage(err),
	}
	switch d.Code {
	case errors.ErrCodeRankMismatch:
		// The one repairable class: a rank-sensitive layer fed a
		// higher-rank tensor. Splicing a flatten in front collapses the
		// extra dimensions.
		d.Repair = &RepairHint{InsertBefore: id, AdapterType: "flatten"}
	case "":
		d.Code = errors.ErrCodeInvalidShape
	}
	return d
}
