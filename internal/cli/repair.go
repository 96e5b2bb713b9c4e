package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sunstflower/modelsee/pkg/compile"
	"github.com/sunstflower/modelsee/pkg/graph"
	"github.com/sunstflower/modelsee/pkg/repair"
	"github.com/sunstflower/modelsee/pkg/shape"
)

// maxRepairRounds caps the propose/apply loop. Each round can only resolve
// mismatches the previous round's adapters exposed, so a handful of rounds
// always suffices for sane graphs.
const maxRepairRounds = 10

// repairCommand creates the repair command for fixing rank mismatches.
func (c *CLI) repairCommand() *cobra.Command {
	var (
		inputStr string
		output   string
		yes      bool
	)

	cmd := &cobra.Command{
		Use:   "repair [graph.json]",
		Short: "Propose and apply flatten adapters for rank mismatches",
		Long: `Propose and apply flatten adapters for rank mismatches.

The repair command validates the graph, proposes one flatten adapter per
repairable rank mismatch, and asks for confirmation before applying any of
them. Applied repairs produce a new graph; the input file is only
overwritten when it is also the output.

Repairs are re-proposed after each round until validation finds no more
repairable diagnostics, so nested mismatches are resolved one layer at a
time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRepair(args[0], inputStr, output, yes)
		},
	}

	cmd.Flags().StringVarP(&inputStr, "input", "i", "", `model input shape, e.g. "[null, 28, 28, 1]"`)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "apply all proposals without confirmation")

	return cmd
}

func (c *CLI) runRepair(path, inputStr, output string, yes bool) error {
	g, err := loadGraph(path)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", path, err)
	}

	input, err := c.resolveInputShape(inputStr)
	if err != nil {
		return err
	}

	repaired, applied, err := c.repairLoop(g, input, yes)
	if err != nil {
		return err
	}
	if applied == 0 {
		printInfo("nothing to repair")
		return nil
	}

	if output == "" {
		output = path
	}
	if err := graph.ExportJSON(repaired, output); err != nil {
		return fmt.Errorf("write graph: %w", err)
	}

	printSuccess("Applied %d repair%s", applied, pluralize(applied))
	printFile(output)
	return nil
}

// repairLoop alternates validation and repair until the graph has no
// repairable diagnostics or the user declines. Returns the final graph and
// the number of repairs applied.
func (c *CLI) repairLoop(g *graph.Graph, input shape.Shape, yes bool) (*graph.Graph, int, error) {
	applied := 0
	for round := 0; round < maxRepairRounds; round++ {
		work := g.Clone()
		seq, diags := compile.Sequence(work)
		diags = append(diags, compile.Validate(work, seq, input)...)

		proposals := repair.Propose(work, diags)
		if len(proposals) == 0 {
			if diags.HasErrors() {
				printWarning("%d error%s remain that repairs cannot fix",
					diags.ErrorCount(), pluralize(diags.ErrorCount()))
				printDiagnostics(diags)
			}
			return g, applied, nil
		}

		accepted := proposals
		if !yes {
			var err error
			accepted, err = confirmRepairs(proposals)
			if err != nil {
				return nil, 0, err
			}
			if len(accepted) == 0 {
				printInfo("aborted, no repairs applied")
				return g, applied, nil
			}
		}

		for _, p := range accepted {
			next, err := repair.Apply(g, p)
			if err != nil {
				return nil, 0, fmt.Errorf("apply repair: %w", err)
			}
			g = next
			applied++
			c.Logger.Info("applied repair", "adapter", p.AdapterType,
				"from", p.Edge.From, "to", p.Edge.To)
		}

		// User deselected some proposals; do not loop and re-ask about
		// the ones they declined.
		if len(accepted) < len(proposals) {
			return g, applied, nil
		}
	}
	return g, applied, nil
}
