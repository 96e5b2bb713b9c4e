package graph

import (
	"errors"
	"slices"

	"github.com/sunstflower/modelsee/pkg/shape"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrSelfLoop is returned by [Graph.AddEdge] when source and target are
	// the same node. A layer cannot feed itself.
	ErrSelfLoop = errors.New("edge source and target must differ")

	// ErrUnknownEndpoint is returned by [Graph.AddEdge] when either endpoint
	// does not exist in the node set.
	ErrUnknownEndpoint = errors.New("unknown edge endpoint")

	// ErrInvalidEdgeEndpoint is returned by [Graph.Validate] when an edge
	// references a node that doesn't exist. This indicates graph corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrGraphHasCycle is returned by [Graph.Validate] when a cycle is
	// detected. The compiler tolerates cycles best-effort, but editors should
	// treat this as a precondition failure and reject the offending edge.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Config holds a node's layer configuration as parameter-name to value pairs.
// Values are the JSON scalar types plus []any for list parameters.
type Config map[string]any

// Clone returns a deep copy of the configuration. List values are copied;
// nested maps are copied recursively.
func (c Config) Clone() Config {
	if c == nil {
		return nil
	}
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []int:
		return slices.Clone(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Point is a 2-D canvas position. It is presentation-only state carried for
// the editor; the compiler never reads it except to place adapter nodes.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Midpoint returns the point halfway between p and q.
func (p Point) Midpoint(q Point) Point {
	return Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// Node represents one layer instance in the authored graph.
//
// The zero value is not usable - ID and Type must be set before adding to a
// Graph. OutputShape is a cache populated by the validator and is nil until
// a compile has run.
type Node struct {
	ID       string      // Unique identifier
	Type     string      // Layer-type tag, resolved against the registry
	Config   Config      // Layer parameters (never nil after AddNode)
	Position Point       // Canvas position, presentation-only
	Output   shape.Shape // Inferred output shape (validator cache, may be nil)

	// Synthetic marks nodes inserted by the auto-repair engine rather than
	// drawn by the user.
	Synthetic bool
}

// Edge represents a directed "feeds into" connection between two nodes.
type Edge struct {
	From string // Source node ID
	To   string // Target node ID
}

// Graph is the node/edge collection submitted by the editor.
//
// Nodes are tracked in creation order and adjacency lists preserve
// edge-insertion order, which makes traversal deterministic and testable.
// The zero value is not usable - use New. Graph is not safe for concurrent
// mutation without external synchronization; the compiler only ever reads a
// snapshot.
type Graph struct {
	nodes    map[string]*Node
	order    []string // node IDs in creation order
	edges    []Edge
	outgoing map[string][]string // nodeID -> target IDs, insertion order
	incoming map[string][]string // nodeID -> source IDs, insertion order
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode adds a node to the graph.
// Returns ErrInvalidNodeID if the node ID is empty, or ErrDuplicateNodeID if
// a node with the same ID already exists. The node's Config field is
// initialized to an empty map if nil so callers can mutate it safely.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Config == nil {
		n.Config = Config{}
	}
	node := &n
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
	return nil
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrSelfLoop when from == to, or ErrUnknownEndpoint when either
// node is absent. The graph is left unchanged on error.
//
// Multiple edges between the same ordered pair are allowed; the sequencer
// treats them as duplicates (visited-once semantics).
func (g *Graph) AddEdge(from, to string) error {
	if from == to {
		return ErrSelfLoop
	}
	if _, ok := g.nodes[from]; !ok {
		return ErrUnknownEndpoint
	}
	if _, ok := g.nodes[to]; !ok {
		return ErrUnknownEndpoint
	}
	g.edges = append(g.edges, Edge{From: from, To: to})
	g.outgoing[from] = append(g.outgoing[from], to)
	g.incoming[to] = append(g.incoming[to], from)
	return nil
}

// RemoveEdge removes the edge from→to if it exists.
// No error is returned if the edge does not exist. All duplicates of the
// edge are removed.
func (g *Graph) RemoveEdge(from, to string) {
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool { return e.From == from && e.To == to })
	g.outgoing[from] = slices.DeleteFunc(g.outgoing[from], func(s string) bool { return s == to })
	g.incoming[to] = slices.DeleteFunc(g.incoming[to], func(s string) bool { return s == from })
}

// RemoveNode deletes the node and every edge touching it, atomically.
// Removing an unknown ID is a no-op. After RemoveNode returns, no edge in
// the graph references the removed node.
func (g *Graph) RemoveNode(id string) {
	if _, ok := g.nodes[id]; !ok {
		return
	}
	delete(g.nodes, id)
	g.order = slices.DeleteFunc(g.order, func(s string) bool { return s == id })
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool { return e.From == id || e.To == id })

	delete(g.outgoing, id)
	delete(g.incoming, id)
	for k, targets := range g.outgoing {
		g.outgoing[k] = slices.DeleteFunc(targets, func(s string) bool { return s == id })
	}
	for k, sources := range g.incoming {
		g.incoming[k] = slices.DeleteFunc(sources, func(s string) bool { return s == id })
	}
}

// Node returns the node with the given ID and true, or nil and false if not
// found. The returned pointer refers to the actual node in the graph.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in creation order.
// The returned slice contains pointers to the actual node structs.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// NodeIDs returns all node IDs in creation order.
func (g *Graph) NodeIDs() []string { return slices.Clone(g.order) }

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Neighbors returns the ordered list of edge targets for a given source, in
// edge-insertion order. Returns nil if the node has no outgoing edges or
// doesn't exist. The returned slice should not be modified.
func (g *Graph) Neighbors(id string) []string { return g.outgoing[id] }

// Parents returns the IDs of nodes with edges into this node, in
// edge-insertion order. The returned slice should not be modified.
func (g *Graph) Parents(id string) []string { return g.incoming[id] }

// InDegree returns the number of incoming edges to the node.
// Returns 0 if the node doesn't exist.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// OutDegree returns the number of outgoing edges from the node.
// Returns 0 if the node doesn't exist.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// Sources returns all node IDs with in-degree zero, sorted ascending for
// deterministic traversal seeding. Returns nil for an empty graph.
func (g *Graph) Sources() []string {
	var sources []string
	for _, id := range g.order {
		if len(g.incoming[id]) == 0 {
			sources = append(sources, id)
		}
	}
	slices.Sort(sources)
	return sources
}

// FirstCreated returns the ID of the earliest-inserted node.
// ok is false for an empty graph. This is the sequencer's seed fallback when
// every node has an incoming edge.
func (g *Graph) FirstCreated() (id string, ok bool) {
	if len(g.order) == 0 {
		return "", false
	}
	return g.order[0], true
}

// Clone returns a deep copy of the graph. Node configs and shape caches are
// copied, so mutations of the clone never leak into the original. The
// auto-repair engine relies on this to produce replacement snapshots.
func (g *Graph) Clone() *Graph {
	out := New()
	for _, id := range g.order {
		n := g.nodes[id]
		out.nodes[id] = &Node{
			ID:        n.ID,
			Type:      n.Type,
			Config:    n.Config.Clone(),
			Position:  n.Position,
			Output:    n.Output.Clone(),
			Synthetic: n.Synthetic,
		}
		out.order = append(out.order, id)
	}
	out.edges = slices.Clone(g.edges)
	for k, v := range g.outgoing {
		out.outgoing[k] = slices.Clone(v)
	}
	for k, v := range g.incoming {
		out.incoming[k] = slices.Clone(v)
	}
	return out
}

// Validate checks graph integrity and returns nil if valid.
// It verifies that all edges connect existing nodes, and that the graph is
// acyclic. Returns ErrInvalidEdgeEndpoint or ErrGraphHasCycle.
//
// The compiler does not require acyclicity (the sequencer is cycle-tolerant);
// Validate exists so editors can enforce it as a precondition before an edge
// is committed. Cycle detection runs in O(N+E) time using depth-first search.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if _, ok := g.nodes[e.From]; !ok {
			return ErrInvalidEdgeEndpoint
		}
		if _, ok := g.nodes[e.To]; !ok {
			return ErrInvalidEdgeEndpoint
		}
	}
	return g.detectCycles()
}

func (g *Graph) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range g.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for _, id := range g.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}
