package render

import (
	"strings"

	"github.com/matzehuels/discograph/pkg/errors"
	"github.com/matzehuels/discograph/pkg/hypergraph"
	"github.com/matzehuels/discograph/pkg/render/nodelink"
)

// Format is an artifact format.
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// Formats lists the supported artifact formats.
var Formats = []Format{FormatDOT, FormatSVG, FormatPNG}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	switch f {
	case FormatDOT, FormatSVG, FormatPNG:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported output format %q (want dot, svg or png)", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	}
	return "text/vnd.graphviz"
}

// Graph draws g in format f.
func Graph(g *hypergraph.Graph, f Format, opts nodelink.Options) ([]byte, error) {
	dot := nodelink.ToDOT(g, opts)
	switch f {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return nodelink.RenderSVG(dot)
	case FormatPNG:
		return nodelink.RenderPNG(dot)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported output format %q", f)
}
