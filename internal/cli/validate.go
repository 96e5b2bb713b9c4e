package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sunstflower/modelsee/pkg/compile"
)

// validateCommand creates the validate command for checking a graph without
// generating code.
func (c *CLI) validateCommand() *cobra.Command {
	var (
		inputStr string
		analyze  bool
	)

	cmd := &cobra.Command{
		Use:   "validate [graph.json]",
		Short: "Check a graph and report diagnostics",
		Long: `Check a graph and report diagnostics.

The validate command orders the graph and runs shape inference over every
layer, reporting all configuration and shape problems at once. It never
modifies the graph or generates code; use it as the fast feedback loop
while editing.

Exits nonzero when error-severity diagnostics are found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(args[0], inputStr, analyze)
		},
	}

	cmd.Flags().StringVarP(&inputStr, "input", "i", "", `model input shape, e.g. "[null, 28, 28, 1]"`)
	cmd.Flags().BoolVar(&analyze, "analyze", false, "print a parameter-count analysis")

	return cmd
}

func (c *CLI) runValidate(path, inputStr string, analyze bool) error {
	g, err := loadGraph(path)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", path, err)
	}

	input, err := c.resolveInputShape(inputStr)
	if err != nil {
		return err
	}

	work := g.Clone()
	seq, diags := compile.Sequence(work)
	diags = append(diags, compile.Validate(work, seq, input)...)

	printStats(work.NodeCount(), work.EdgeCount())
	if len(diags) == 0 {
		printSuccess("Graph is valid (%d layers)", len(seq))
	} else {
		printDiagnostics(diags)
	}

	if analyze {
		printAnalysis(compile.Analyze(work, seq, input))
	}

	if n := diags.ErrorCount(); n > 0 {
		return fmt.Errorf("%d validation error%s", n, pluralize(n))
	}
	return nil
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
