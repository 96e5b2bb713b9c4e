package compile

import (
	"github.com/sunstflower/modelsee/pkg/errors"
	"github.com/sunstflower/modelsee/pkg/graph"
)

// Sequence orders the graph's nodes into one deterministic linear sequence
// suitable for sequential-model construction.
//
// Traversal is breadth-first from the in-degree-zero nodes, seeded in
// ascending node-id order. When no source exists (a fully cyclic or
// edge-less graph), the first-created node seeds the queue instead so the
// compiler never stalls. Nodes are marked visited before their neighbors are
// enqueued, which makes the traversal cycle-tolerant: cycle members are
// emitted once in first-seen order, a best-effort result for inputs the
// editor should have rejected via [graph.Graph.Validate].
//
// Nodes never reached by the traversal are excluded from the returned
// sequence and reported as warning-severity diagnostics in creation order.
// Disconnected fragments are common mid-edit, so they do not block
// compilation.
func Sequence(g *graph.Graph) ([]string, Diagnostics) {
	if g.NodeCount() == 0 {
		return nil, nil
	}

	queue := g.Sources()
	if len(queue) == 0 {
		first, _ := g.FirstCreated()
		queue = []string{first}
	}

	visited := make(map[string]bool, g.NodeCount())
	var seq []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		seq = append(seq, id)
		for _, next := range g.Neighbors(id) {
			if !visited[next] {
				queue = append(queue, next)
			}
		}
	}

	var diags Diagnostics
	for _, id := range g.NodeIDs() {
		if !visited[id] {
			diags = append(diags, Diagnostic{
				Severity: SeverityWarning,
				NodeID:   id,
				Code:     errors.ErrCodeUnreachable,
				Message:  "unreachable node - excluded from generated model",
			})
		}
	}
	return seq, diags
}
