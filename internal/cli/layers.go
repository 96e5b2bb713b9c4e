package cli

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sunstflower/modelsee/pkg/layers"
)

// layersCommand creates the layers command for inspecting the registry.
func (c *CLI) layersCommand() *cobra.Command {
	var showType string

	cmd := &cobra.Command{
		Use:   "layers",
		Short: "List the registered layer types",
		Long: `List the registered layer types.

Without flags, prints every registered layer type grouped by category.
Use --type to show one layer's documentation, rank requirement, defaults
and parameter constraints.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showType != "" {
				return printLayerDetail(showType)
			}
			printLayerIndex()
			return nil
		},
	}

	cmd.Flags().StringVarP(&showType, "type", "t", "", "show details for one layer type")

	return cmd
}

func printLayerIndex() {
	byCat := layers.ByCategory()
	cats := make([]string, 0, len(byCat))
	for cat := range byCat {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	for _, cat := range cats {
		fmt.Println(StyleTitle.Render(cat))
		for _, tag := range byCat[cat] {
			desc, err := layers.Lookup(tag)
			if err != nil {
				continue
			}
			line := "  " + StyleHighlight.Render(fmt.Sprintf("%-24s", tag))
			if desc.Doc != "" {
				line += StyleDim.Render(desc.Doc)
			}
			fmt.Println(line)
		}
		fmt.Println()
	}
}

func printLayerDetail(tag string) error {
	desc, err := layers.Lookup(tag)
	if err != nil {
		return err
	}

	fmt.Println(StyleTitle.Render(desc.Type))
	if desc.Doc != "" {
		printDetail("%s", desc.Doc)
	}
	printKeyValue("category", desc.Category)
	printKeyValue("rank", desc.Rank.String())

	if len(desc.Defaults) > 0 {
		data, err := json.MarshalIndent(desc.Defaults, "", "  ")
		if err == nil {
			fmt.Println(StyleDim.Render("defaults:"))
			fmt.Println(StyleValue.Render(string(data)))
		}
	}

	if len(desc.Params) > 0 {
		fmt.Println(StyleDim.Render("parameters:"))
		params := slices.Clone(desc.Params)
		sort.Slice(params, func(i, j int) bool { return params[i].Name < params[j].Name })
		for _, p := range params {
			printDetail("%s (%s)%s", p.Name, p.Kind, paramConstraints(p))
		}
	}
	return nil
}

func paramConstraints(p layers.ParamSpec) string {
	var out string
	if p.Required {
		out += ", required"
	}
	if p.Min != 0 || p.Max != 0 {
		out += fmt.Sprintf(", range %v..%v", p.Min, p.Max)
	}
	if len(p.Choices) > 0 {
		out += fmt.Sprintf(", one of %v", p.Choices)
	}
	return out
}
