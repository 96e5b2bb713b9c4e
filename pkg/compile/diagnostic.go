// Package compile implements the graph-to-model compilation pipeline.
//
// The pipeline turns an editor graph snapshot into a deterministic linear
// layer sequence, infers tensor shapes along it, collects diagnostics, and -
// when no error-severity diagnostics remain - renders model-construction
// code through pkg/codegen. Every run is a pure function of the snapshot,
// the declared input shape, and the layer registry: no state is carried
// between runs, and concurrent runs on distinct snapshots share nothing but
// the read-only registry.
package compile

import (
	"fmt"

	"github.com/sunstflower/modelsee/pkg/errors"
)

// Severity classifies a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// RepairHint describes the one-click fix a diagnostic supports. It carries
// everything the repair engine needs, so the UI can offer the fix without
// recomputation.
type RepairHint struct {
	// InsertBefore is the node whose input needs adaptation.
	InsertBefore string `json:"insert_before"`
	// AdapterType is the registry tag of the layer to splice in.
	AdapterType string `json:"adapter_type"`
}

// Diagnostic is a structured report of a validation problem, attributed to
// exactly one node so the editor can highlight it inline.
type Diagnostic struct {
	Severity Severity    `json:"severity"`
	NodeID   string      `json:"node_id"`
	Code     errors.Code `json:"code"`
	Message  string      `json:"message"`

	// Repair is non-nil only for repairable errors.
	Repair *RepairHint `json:"repair,omitempty"`
}

// String formats the diagnostic for logs and CLI output.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s [%s] %s: %s", d.Severity, d.Code, d.NodeID, d.Message)
}

// Diagnostics is a collection helper over []Diagnostic.
type Diagnostics []Diagnostic

// ErrorCount returns the number of error-severity entries.
func (ds Diagnostics) ErrorCount() int {
	n := 0
	for _, d := range ds {
		if d.Severity == SeverityError {
			n++
		}
	}
	return n
}

// HasErrors reports whether any error-severity diagnostic is present.
// Warnings alone never block code generation.
func (ds Diagnostics) HasErrors() bool { return ds.ErrorCount() > 0 }

// Repairable returns the diagnostics carrying a repair hint.
func (ds Diagnostics) Repairable() Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Repair != nil {
			out = append(out, d)
		}
	}
	return out
}

// ForNode returns the diagnostics attributed to the given node.
func (ds Diagnostics) ForNode(id string) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.NodeID == id {
			out = append(out, d)
		}
	}
	return out
}
