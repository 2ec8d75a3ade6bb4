package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/discograph/pkg/pipeline"
)

// headsCommand creates the heads command.
func (c *CLI) headsCommand() *cobra.Command {
	var (
		flags       analyzeFlags
		asJSON      bool
		stdinFormat string
	)

	cmd := &cobra.Command{
		Use:   "heads [document...]",
		Short: "Resolve the head EDU of every CDU",
		Long: `Resolve the head EDU of every CDU.

The head of a CDU is the member no relation inside the CDU points at. Nested
CDUs are resolved recursively down to an EDU. In strict mode a CDU with
several candidates is an error; --sloppy picks the first in reading order.

Arguments are document files (.json, .yaml, .toml), directories of them, or
"-" for standard input.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd, &flags)
			results, err := c.runCorpus(cmd.Context(), args, stdinFormat, opts, flags.noCache, "Resolving")
			if err != nil {
				return err
			}
			if asJSON {
				out := make(map[string]map[string]string, len(results))
				for _, res := range results {
					out[res.Key.String()] = res.Analysis.Heads
				}
				return writeJSON(stdout, out)
			}
			for _, res := range results {
				printHeads(res)
			}
			return nil
		},
	}

	addAnalyzeFlags(cmd, &flags)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print heads as JSON")
	cmd.Flags().StringVar(&stdinFormat, "input-format", "json", "format of a document read from stdin")

	return cmd
}

func printHeads(res *pipeline.Result) {
	g := res.Graph
	cdus := g.CanonicalOrder(g.CDUs())

	fmt.Println(StyleTitle.Render(docLabel(res.Key)))
	if len(cdus) == 0 {
		printDetail("no CDUs")
		printNewline()
		return
	}

	rows := make([][]string, 0, len(cdus))
	for _, cdu := range cdus {
		head, ok := res.Analysis.Heads[cdu]
		if !ok {
			rows = append(rows, []string{cdu, "-", ""})
			continue
		}
		rows = append(rows, []string{cdu, head, unitText(g, head, textWidth)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("CDU", "Head", "Text").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if rows[row][1] == "-" {
				return lipgloss.NewStyle().Foreground(colorYellow)
			}
			if col == 2 {
				return StyleDim
			}
			return StyleValue
		})
	fmt.Println(t.Render())

	resolved := len(res.Analysis.Heads)
	printDetail("%d of %d CDUs resolved", min(resolved, len(cdus)), len(cdus))
	if len(res.Analysis.Unresolved) > 0 {
		printWarning("no head: %s", strings.Join(res.Analysis.Unresolved, ", "))
	}
	printNewline()
}
