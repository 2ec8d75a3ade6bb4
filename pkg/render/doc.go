// Package render turns discourse hypergraphs into viewable artifacts.
//
// # Overview
//
// The drawing itself lives in the [nodelink] subpackage, which produces
// Graphviz DOT source and renders it in-process. This package picks the
// output [Format] and runs the matching step:
//
//	out, err := render.Graph(g, render.FormatSVG, nodelink.Options{})
//
// [nodelink]: github.com/matzehuels/discograph/pkg/render/nodelink
package render
