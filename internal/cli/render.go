package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/discograph/pkg/annotation"
	"github.com/matzehuels/discograph/pkg/errors"
	"github.com/matzehuels/discograph/pkg/pipeline"
	"github.com/matzehuels/discograph/pkg/render"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags       analyzeFlags
		formatsStr  string
		output      string
		stripped    bool
		detailed    bool
		stdinFormat string
	)

	cmd := &cobra.Command{
		Use:   "render [document...]",
		Short: "Draw documents as node-link diagrams",
		Long: `Draw documents as node-link diagrams with Graphviz.

EDUs are drawn as text, relations as labelled arrows and CDUs as boxes
around their members. --stripped draws the graph after CDU elimination.

With one document and one format, --output names the file. Otherwise it is
a directory (default: the current one) that receives <document>.<format>.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd, &flags)
			opts.Formats = parseFormats(formatsStr)
			opts.Stripped = stripped
			opts.Detailed = detailed
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}

			results, err := c.runCorpus(cmd.Context(), args, stdinFormat, opts, flags.noCache, "Rendering")
			if err != nil {
				return err
			}
			return writeArtifacts(results, opts, output)
		},
	}

	addAnalyzeFlags(cmd, &flags)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single document and format) or directory")
	cmd.Flags().BoolVar(&stripped, "stripped", false, "draw the graph after CDU elimination")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "add text spans to EDU labels")
	cmd.Flags().StringVar(&stdinFormat, "input-format", "json", "format of a document read from stdin")

	return cmd
}

// writeArtifacts saves every rendered artifact and prints a summary line per
// document.
func writeArtifacts(results []*pipeline.Result, opts pipeline.Options, output string) error {
	single := len(results) == 1 && len(opts.Formats) == 1
	dir := output
	if single && output != "" && filepath.Ext(output) != "" {
		dir = ""
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	for _, res := range results {
		printSuccess("Rendered %s", docLabel(res.Key))
		for _, format := range opts.Formats {
			path := output
			if dir != "" || output == "" {
				name := artifactName(res.Key, format, opts.Stripped)
				if err := errors.ValidatePath(name); err != nil {
					return fmt.Errorf("output name for %s: %w", docLabel(res.Key), err)
				}
				path = filepath.Join(dir, name)
			}
			if err := os.WriteFile(path, res.Artifacts[format], 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			printFile(path)
		}
		printStats(res.Stats, res.CacheInfo.RenderHit)
	}
	return nil
}

func artifactName(key annotation.DocKey, format string, stripped bool) string {
	name := strings.ReplaceAll(key.String(), "/", "_")
	if name == "" {
		name = "document"
	}
	if stripped {
		name += ".stripped"
	}
	f, err := render.ParseFormat(format)
	if err != nil {
		return name + "." + format
	}
	return name + "." + string(f)
}
