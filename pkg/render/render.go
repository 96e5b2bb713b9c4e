// Package render draws model graphs as node-link diagrams.
//
// [ToDOT] produces Graphviz DOT source from a graph snapshot; [RenderSVG]
// rasterizes it through the embedded Graphviz engine. Run the compile
// pipeline first when labels should carry inferred output shapes: the
// renderer reads the per-node shape caches the validator fills in.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/sunstflower/modelsee/pkg/graph"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Shapes includes inferred output shapes in node labels when the
	// graph carries them.
	Shapes bool
}

// ToDOT converts a model graph to Graphviz DOT format. Nodes are labeled
// with their layer type; synthetic nodes (adapters spliced in by repairs)
// are rendered with dashed outlines and grey fill to distinguish them from
// user-placed layers.
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		label := fmtLabel(n, opts.Shapes)
		attrs := fmtAttrs(n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *graph.Node, shapes bool) string {
	label := n.ID
	if n.Type != "" && n.Type != n.ID {
		label += "\n" + n.Type
	}
	if shapes && n.Output != nil {
		label += "\n" + n.Output.String()
	}
	return label
}

func fmtAttrs(n *graph.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Synthetic {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
