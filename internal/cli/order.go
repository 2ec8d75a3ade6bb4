package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/discograph/pkg/hypergraph"
	"github.com/matzehuels/discograph/pkg/pipeline"
)

// orderCommand creates the order command.
func (c *CLI) orderCommand() *cobra.Command {
	var (
		flags       analyzeFlags
		asJSON      bool
		stdinFormat string
	)

	cmd := &cobra.Command{
		Use:   "order [document...]",
		Short: "List units in canonical reading order",
		Long: `List EDUs and non-empty CDUs in canonical reading order.

Units are ordered by where their text starts, then widest first, then
outermost first. A CDU therefore comes right before its first member.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd, &flags)
			results, err := c.runCorpus(cmd.Context(), args, stdinFormat, opts, flags.noCache, "Ordering")
			if err != nil {
				return err
			}
			if asJSON {
				out := make(map[string][]string, len(results))
				for _, res := range results {
					out[res.Key.String()] = res.Analysis.Order
				}
				return writeJSON(stdout, out)
			}
			for _, res := range results {
				printOrder(res)
			}
			return nil
		},
	}

	addAnalyzeFlags(cmd, &flags)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the order as JSON")
	cmd.Flags().StringVar(&stdinFormat, "input-format", "json", "format of a document read from stdin")

	return cmd
}

// printOrder prints one line per unit, indented by CDU depth.
func printOrder(res *pipeline.Result) {
	g := res.Graph
	fmt.Println(StyleTitle.Render(docLabel(res.Key)))
	for _, id := range res.Analysis.Order {
		depth := len(g.ContainingCDUChain(id))
		indent := strings.Repeat("  ", depth)
		if g.IsCDU(id) {
			fmt.Printf("%s%s %s %s\n", indent, StyleHighlight.Render("["+id+"]"), StyleDim.Render(unitSpan(g, id)), cduSummary(res, id))
			continue
		}
		fmt.Printf("%s%s %s %s\n", indent, StyleValue.Render(id), StyleDim.Render(unitSpan(g, id)), unitText(g, id, textWidth))
	}
	printNewline()
}

func cduSummary(res *pipeline.Result, id string) string {
	if head, ok := res.Analysis.Heads[id]; ok {
		return StyleDim.Render(iconArrow + " " + head)
	}
	return StyleWarning.Render("no head")
}

// kindLabel is used by browse to tag units.
func kindLabel(g *hypergraph.Graph, id string) string {
	k, err := g.KindOf(id)
	if err != nil {
		return "?"
	}
	return k.String()
}
