package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/discograph/pkg/hypergraph"
	"github.com/matzehuels/discograph/pkg/observability"
	"github.com/matzehuels/discograph/pkg/render"
	"github.com/matzehuels/discograph/pkg/render/nodelink"
)

// Render draws g in every format listed in opts.
func Render(ctx context.Context, g *hypergraph.Graph, opts Options) (map[string][]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, err := renderFormats(g, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func renderFormats(g *hypergraph.Graph, opts Options) (map[string][]byte, error) {
	nlOpts := nodelink.Options{Detailed: opts.Detailed}
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		f, err := render.ParseFormat(format)
		if err != nil {
			return nil, err
		}
		data, err := render.Graph(g, f, nlOpts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
