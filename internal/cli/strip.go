package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/discograph/pkg/annotation"
	"github.com/matzehuels/discograph/pkg/errors"
	"github.com/matzehuels/discograph/pkg/hypergraph"
	docio "github.com/matzehuels/discograph/pkg/io"
	"github.com/matzehuels/discograph/pkg/pipeline"
)

// stripCommand creates the strip command.
func (c *CLI) stripCommand() *cobra.Command {
	var (
		flags       analyzeFlags
		output      string
		format      string
		stdinFormat string
	)

	cmd := &cobra.Command{
		Use:   "strip [document...]",
		Short: "Replace CDUs by their heads and export the result",
		Long: `Replace CDUs by their heads and export the result.

Every relation attached to a CDU is rewired to the CDU's head, then the CDU
is deleted. Relations whose endpoints collapse onto one unit are dropped.
CDUs without a head are kept (--unresolved keep) or dropped together with
their relations (--unresolved drop).

With one document, --output names the file to write (standard output if
omitted). With several, --output is a directory that receives one
<document>.stripped.<format> file each.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := docio.ParseFormat(format)
			if err != nil {
				return err
			}
			docs, err := loadDocuments(args, stdinFormat)
			if err != nil {
				return err
			}
			if len(docs) > 1 && output == "" {
				return fmt.Errorf("--output directory is required for %d documents", len(docs))
			}
			return c.runStrip(cmd.Context(), docs, c.options(cmd, &flags), output, f)
		},
	}

	addAnalyzeFlags(cmd, &flags)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (one document) or directory (several)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format when not implied by --output: json, yaml, toml")
	cmd.Flags().StringVar(&stdinFormat, "input-format", "json", "format of a document read from stdin")

	return cmd
}

func (c *CLI) runStrip(ctx context.Context, docs []*annotation.Document, opts pipeline.Options, output string, format docio.Format) error {
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	defer runner.Close()

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		g, err := runner.Build(ctx, doc)
		if err != nil {
			return err
		}
		stripped, report, err := runner.Strip(ctx, g, opts)
		if err != nil {
			return err
		}

		if output == "" {
			if err := docio.WriteDocument(stripped.Doc, os.Stdout, format); err != nil {
				return fmt.Errorf("write %s: %w", docLabel(doc.Key), err)
			}
			continue
		}

		path := output
		if len(docs) > 1 {
			if err := os.MkdirAll(output, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			name := strippedName(doc.Key, format)
			if err := errors.ValidatePath(name); err != nil {
				return fmt.Errorf("output name for %s: %w", docLabel(doc.Key), err)
			}
			path = filepath.Join(output, name)
		} else if _, err := docio.FormatOf(path); err != nil {
			path += format.Ext()
		}
		if err := docio.ExportDocument(stripped.Doc, path); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printStripReport(doc.Key, report)
		printFile(path)
		if len(docs) == 1 {
			printNewline()
			printNextStep("Render", appName+" render "+path)
		}
	}
	return nil
}

func strippedName(key annotation.DocKey, f docio.Format) string {
	name := strings.ReplaceAll(key.String(), "/", "_")
	if name == "" {
		name = "document"
	}
	return name + ".stripped" + f.Ext()
}

func printStripReport(key annotation.DocKey, r *hypergraph.StripReport) {
	if !r.Changed() && len(r.Unresolved) == 0 {
		printInfo("%s: no CDUs", docLabel(key))
		return
	}
	printSuccess("%s: removed %d CDUs, rewired %d relations, dropped %d",
		docLabel(key), len(r.Removed), len(r.Rewired), len(r.Dropped))
	if len(r.Unresolved) > 0 {
		printWarning("no head: %s", strings.Join(r.Unresolved, ", "))
	}
}
