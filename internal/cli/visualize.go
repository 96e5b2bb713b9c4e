package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sunstflower/modelsee/pkg/compile"
	"github.com/sunstflower/modelsee/pkg/render"
)

// visualizeCommand creates the visualize command for rendering graph
// diagrams.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		inputStr string
		format   string
		output   string
		shapes   bool
	)

	cmd := &cobra.Command{
		Use:   "visualize [graph.json]",
		Short: "Render a graph as a DOT or SVG diagram",
		Long: `Render a graph as a DOT or SVG diagram.

The visualize command draws the layer graph as a node-link diagram. With
--shapes, the graph is validated first so node labels carry their inferred
output shapes; synthetic adapter nodes inserted by repairs are drawn
dashed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runVisualize(cmd, args[0], inputStr, format, output, shapes)
		},
	}

	cmd.Flags().StringVarP(&inputStr, "input", "i", "", `model input shape (required with --shapes)`)
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: svg (default), dot")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&shapes, "shapes", false, "label nodes with inferred output shapes")

	return cmd
}

func (c *CLI) runVisualize(cmd *cobra.Command, path, inputStr, format, output string, shapes bool) error {
	g, err := loadGraph(path)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", path, err)
	}

	work := g.Clone()
	if shapes {
		input, err := c.resolveInputShape(inputStr)
		if err != nil {
			return err
		}
		seq, _ := compile.Sequence(work)
		compile.Validate(work, seq, input)
	}

	dot := render.ToDOT(work, render.Options{Shapes: shapes})

	var data []byte
	switch strings.ToLower(format) {
	case "dot":
		data = []byte(dot)
	case "svg":
		prog := newProgress(c.Logger)
		data, err = render.RenderSVG(cmd.Context(), dot)
		if err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
		prog.done("Rendered diagram")
	default:
		return fmt.Errorf("invalid format: %q (must be one of: svg, dot)", format)
	}

	if err := writeOutput(output, data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if output != "" && output != "-" {
		printFile(output)
	}
	return nil
}
