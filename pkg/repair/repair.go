// Package repair translates repairable diagnostics into concrete,
// user-confirmed graph mutations.
//
// The only repair the engine knows is the generic rank-mismatch rule: when a
// rank-sensitive layer is fed a higher-rank tensor, splice a rank-collapsing
// adapter (a flatten layer) into the offending edge. The rule is driven
// entirely by the repair hint the validator attaches, so adding a new layer
// type never requires touching this package.
//
// Repairs are opt-in. [Propose] computes proposals without touching the
// graph; [Apply] clones the snapshot and returns a new graph the editor must
// adopt wholesale, replacing the old one. The engine never mutates its
// input, so no observer can see a half-edited graph.
package repair

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/sunstflower/modelsee/pkg/compile"
	"github.com/sunstflower/modelsee/pkg/errors"
	"github.com/sunstflower/modelsee/pkg/graph"
)

// Proposal describes one proposed adapter insertion.
type Proposal struct {
	// Edge is the offending edge: its target is the mismatched node.
	Edge graph.Edge `json:"edge"`
	// AdapterType is the registry tag of the layer to insert.
	AdapterType string `json:"adapter_type"`
	// Message restates the diagnostic for the confirmation dialog.
	Message string `json:"message"`
}

// String formats the proposal for display.
func (p Proposal) String() string {
	return fmt.Sprintf("insert %s between %s and %s", p.AdapterType, p.Edge.From, p.Edge.To)
}

// Propose builds one proposal per repair-carrying diagnostic.
//
// The offending edge is the mismatched node's first incoming edge in
// insertion order. A mismatched node with no incoming edge yields no
// proposal: there is no edge to splice, and the mismatch is against the
// declared model input, which only the user can change.
func Propose(g *graph.Graph, diags compile.Diagnostics) []Proposal {
	var out []Proposal
	for _, d := range diags.Repairable() {
		parents := g.Parents(d.Repair.InsertBefore)
		if len(parents) == 0 {
			continue
		}
		out = append(out, Proposal{
			Edge:        graph.Edge{From: parents[0], To: d.Repair.InsertBefore},
			AdapterType: d.Repair.AdapterType,
			Message:     d.Message,
		})
	}
	return out
}

// Apply performs the proposed insertion on a clone of the graph and returns
// the new snapshot; the input graph is never modified. Atomically, the new
// snapshot has: a new synthetic node of the adapter type positioned at the
// midpoint of the two endpoints, the original edge removed, and two edges
// source → adapter → target added.
//
// Apply does not re-run validation: the caller must re-invoke the sequencer
// and validator on the returned graph to confirm the repair resolved the
// diagnostic, and re-enter the proposal flow if nested mismatches remain.
//
// Returns an error when the proposal is stale: either endpoint missing, or
// the named edge no longer present.
func Apply(g *graph.Graph, p Proposal) (*graph.Graph, error) {
	src, okSrc := g.Node(p.Edge.From)
	dst, okDst := g.Node(p.Edge.To)
	if !okSrc || !okDst {
		return nil, errors.New(errors.ErrCodeUnknownEndpoint,
			"repair references missing node (%s -> %s)", p.Edge.From, p.Edge.To)
	}
	if !hasEdge(g, p.Edge) {
		return nil, errors.New(errors.ErrCodeInvalidGraph,
			"repair references missing edge %s -> %s", p.Edge.From, p.Edge.To)
	}

	out := g.Clone()
	adapter := graph.Node{
		ID:        adapterID(p.AdapterType),
		Type:      p.AdapterType,
		Position:  src.Position.Midpoint(dst.Position),
		Synthetic: true,
	}
	if err := out.AddNode(adapter); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "insert adapter node")
	}
	out.RemoveEdge(p.Edge.From, p.Edge.To)
	if err := out.AddEdge(p.Edge.From, adapter.ID); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "rewire source edge")
	}
	if err := out.AddEdge(adapter.ID, p.Edge.To); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "rewire target edge")
	}
	return out, nil
}

func hasEdge(g *graph.Graph, e graph.Edge) bool {
	for _, have := range g.Edges() {
		if have == e {
			return true
		}
	}
	return false
}

// adapterID builds a collision-free node ID for an inserted adapter. The
// uuid suffix keeps IDs unique across repeated repairs without tracking
// previously issued names.
func adapterID(adapterType string) string {
	return fmt.Sprintf("%s_%s", adapterType, uuid.NewString()[:8])
}
