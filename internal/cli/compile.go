package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sunstflower/modelsee/pkg/compile"
	"github.com/sunstflower/modelsee/pkg/shape"
)

// compileCommand creates the compile command for generating framework code.
func (c *CLI) compileCommand() *cobra.Command {
	var (
		inputStr  string
		framework string
		modelName string
		output    string
		analyze   bool
	)

	cmd := &cobra.Command{
		Use:   "compile [graph.json]",
		Short: "Validate a graph and generate framework code",
		Long: `Validate a graph and generate framework code.

The compile command reads a layer graph, orders it, validates every layer's
configuration and tensor shape, and generates model code for the selected
framework. Any error-severity diagnostic blocks generation; run 'repair' to
fix rank mismatches automatically.

The input shape is the model's input tensor including the batch dimension.
Use null or ? for unknown dimensions, e.g. "[null, 28, 28, 1]".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompile(args[0], compileFlags{
				inputStr:  inputStr,
				framework: framework,
				modelName: modelName,
				output:    output,
				analyze:   analyze,
			})
		},
	}

	cmd.Flags().StringVarP(&inputStr, "input", "i", "", `model input shape, e.g. "[null, 28, 28, 1]"`)
	cmd.Flags().StringVarP(&framework, "framework", "f", "", "target framework: tensorflow (default), pytorch")
	cmd.Flags().StringVarP(&modelName, "name", "n", "", "generated model name")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&analyze, "analyze", false, "print a parameter-count analysis")

	return cmd
}

type compileFlags struct {
	inputStr  string
	framework string
	modelName string
	output    string
	analyze   bool
}

func (c *CLI) runCompile(path string, flags compileFlags) error {
	g, err := loadGraph(path)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", path, err)
	}

	input, err := c.resolveInputShape(flags.inputStr)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	result, err := compile.Run(g, compile.Options{
		InputShape: input,
		Framework:  c.Config.framework(flags.framework),
		ModelName:  c.Config.modelName(flags.modelName),
		Analyze:    flags.analyze,
		Logger:     c.Logger,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Compiled %d layers", len(result.Sequence)))
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount)

	if len(result.Diagnostics) > 0 {
		printDiagnostics(result.Diagnostics)
	}
	if flags.analyze && result.Analysis != nil {
		printAnalysis(result.Analysis)
	}
	if result.Blocked != "" {
		printError("generation %s", result.Blocked)
		return fmt.Errorf("generation %s", result.Blocked)
	}

	if err := writeOutput(flags.output, []byte(result.Code.SourceText)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if flags.output != "" && flags.output != "-" {
		printSuccess("Generated %s model", c.Config.framework(flags.framework))
		printFile(flags.output)
	}
	return nil
}

// resolveInputShape parses the flag or config input shape. Required: there
// is no sensible built-in default for a model's input tensor.
func (c *CLI) resolveInputShape(flag string) (shape.Shape, error) {
	raw := c.Config.inputShape(flag)
	if raw == "" {
		return nil, fmt.Errorf(`input shape is required (--input "[null, 28, 28, 1]")`)
	}
	s, err := shape.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse input shape: %w", err)
	}
	return s, nil
}

// printAnalysis prints the per-layer parameter table.
func printAnalysis(a *compile.Analysis) {
	fmt.Println()
	fmt.Println(StyleTitle.Render("Parameter Analysis"))
	for _, l := range a.Layers {
		printKeyValue(l.NodeID, fmt.Sprintf("%-24s %12d params  %s", l.Type, l.Params, l.Output))
	}
	total := fmt.Sprintf("%d", a.TotalParams)
	if a.Partial {
		total += " (partial: some dimensions unknown)"
	}
	printKeyValue("total", total)
}
