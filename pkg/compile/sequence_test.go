package compile

import (
	"slices"
	"testing"

	"github.com/sunstflower/modelsee/pkg/errors"
	"github.com/sunstflower/modelsee/pkg/graph"
)

func buildGraph(t *testing.T, nodes []graph.Node, edges []graph.Edge) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			t.Fatalf("AddEdge(%s, %s): %v", e.From, e.To, err)
		}
	}
	return g
}

func TestSequenceLinearChain(t *testing.T) {
	g := buildGraph(t,
		[]graph.Node{{ID: "A", Type: "flatten"}, {ID: "B", Type: "dense"}, {ID: "C", Type: "dense"}},
		[]graph.Edge{{From: "A", To: "B"}, {From: "B", To: "C"}})

	seq, diags := Sequence(g)
	if !slices.Equal(seq, []string{"A", "B", "C"}) {
		t.Errorf("Sequence = %v, want [A B C]", seq)
	}
	if len(diags) != 0 {
		t.Errorf("diags = %v, want none", diags)
	}
}

func TestSequenceVisitsOnce(t *testing.T) {
	// Diamond: a feeds b and c, both feed d. Every node appears exactly once.
	g := buildGraph(t,
		[]graph.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}},
		[]graph.Edge{
			{From: "a", To: "b"},
			{From: "a", To: "c"},
			{From: "b", To: "d"},
			{From: "c", To: "d"},
		})

	seq, _ := Sequence(g)
	seen := make(map[string]int)
	for _, id := range seq {
		seen[id]++
	}
	if len(seq) != 4 {
		t.Fatalf("Sequence = %v, want 4 entries", seq)
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("node %s visited %d times", id, n)
		}
	}
	if seq[0] != "a" || seq[3] != "d" {
		t.Errorf("Sequence = %v, want a first and d last", seq)
	}
}

func TestSequenceSeedsSourcesSorted(t *testing.T) {
	g := buildGraph(t,
		[]graph.Node{{ID: "z"}, {ID: "a"}, {ID: "sink"}},
		[]graph.Edge{{From: "z", To: "sink"}, {From: "a", To: "sink"}})

	seq, _ := Sequence(g)
	if !slices.Equal(seq, []string{"a", "z", "sink"}) {
		t.Errorf("Sequence = %v, want [a z sink]", seq)
	}
}

func TestSequenceUnreachableWarning(t *testing.T) {
	g := buildGraph(t,
		[]graph.Node{{ID: "main"}, {ID: "next"}, {ID: "island1"}, {ID: "island2"}},
		[]graph.Edge{
			{From: "main", To: "next"},
			// island1 → island2 → island1 forms a cycle nothing reaches.
			{From: "island1", To: "island2"},
			{From: "island2", To: "island1"},
		})

	seq, diags := Sequence(g)
	if !slices.Equal(seq, []string{"main", "next"}) {
		t.Errorf("Sequence = %v, want [main next]", seq)
	}
	if len(diags) != 2 {
		t.Fatalf("diags = %v, want 2 unreachable warnings", diags)
	}
	for _, d := range diags {
		if d.Severity != SeverityWarning {
			t.Errorf("severity = %s, want warning", d.Severity)
		}
		if d.Code != errors.ErrCodeUnreachable {
			t.Errorf("code = %s, want %s", d.Code, errors.ErrCodeUnreachable)
		}
	}
	// Reported in creation order.
	if diags[0].NodeID != "island1" || diags[1].NodeID != "island2" {
		t.Errorf("warning order = [%s %s], want [island1 island2]", diags[0].NodeID, diags[1].NodeID)
	}
}

func TestSequenceCycleFallsBackToFirstCreated(t *testing.T) {
	// Fully cyclic graph: no sources; the earliest-created node seeds.
	g := buildGraph(t,
		[]graph.Node{{ID: "x"}, {ID: "y"}},
		[]graph.Edge{{From: "x", To: "y"}, {From: "y", To: "x"}})

	seq, diags := Sequence(g)
	if !slices.Equal(seq, []string{"x", "y"}) {
		t.Errorf("Sequence = %v, want [x y]", seq)
	}
	if len(diags) != 0 {
		t.Errorf("diags = %v, want none (cycle members all reached)", diags)
	}
}

func TestSequenceEmptyGraph(t *testing.T) {
	seq, diags := Sequence(graph.New())
	if seq != nil || diags != nil {
		t.Errorf("Sequence(empty) = %v, %v, want nil, nil", seq, diags)
	}
}
