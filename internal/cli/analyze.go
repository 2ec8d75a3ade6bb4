package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/matzehuels/discograph/pkg/annotation"
	"github.com/matzehuels/discograph/pkg/hypergraph"
	"github.com/matzehuels/discograph/pkg/pipeline"
)

// textWidth bounds unit text in tables.
const textWidth = 48

// runCorpus loads docs and runs the pipeline over them behind a spinner.
func (c *CLI) runCorpus(ctx context.Context, args []string, stdinFormat string, opts pipeline.Options, noCache bool, verb string) ([]*pipeline.Result, error) {
	docs, err := loadDocuments(args, stdinFormat)
	if err != nil {
		return nil, err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("%s %d documents...", verb, len(docs)))
	spinner.Start()

	results, err := runner.RunCorpus(ctx, docs, opts, spinner.Progress(verb))
	if err != nil {
		spinner.StopWithError(verb + " failed")
		return nil, err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("%s %d documents", verb, len(results)))
	return results, nil
}

// unitText returns the text covered by id, flattened to one line and
// truncated to width cells.
func unitText(g *hypergraph.Graph, id string, width int) string {
	a, err := g.AnnotationOf(id)
	if err != nil || a == nil {
		return ""
	}
	span, ok := g.Doc.TextSpan(a)
	if !ok {
		return ""
	}
	text := strings.Join(strings.Fields(g.Doc.Slice(span)), " ")
	return ansi.Truncate(text, width, "…")
}

// unitSpan formats the text span of id, or "-" if it has none.
func unitSpan(g *hypergraph.Graph, id string) string {
	a, err := g.AnnotationOf(id)
	if err != nil || a == nil {
		return "-"
	}
	span, ok := g.Doc.TextSpan(a)
	if !ok {
		return "-"
	}
	return span.String()
}

// docLabel names a document in headings.
func docLabel(key annotation.DocKey) string {
	if s := key.String(); s != "" {
		return s
	}
	return "(unnamed)"
}

// writeJSON writes v as indented JSON to w.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var stdout io.Writer = os.Stdout
