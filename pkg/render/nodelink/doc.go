// Package nodelink renders discourse hypergraphs as node-link diagrams.
//
// # Overview
//
// This package produces Graphviz views of a [hypergraph.Graph] for
// annotation review: EDUs as text, relations as labelled arrows, CDUs as
// grey boxes around their members.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG or PNG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot)
//	png, err := nodelink.RenderPNG(dot)
//
// # Drawing Rules
//
// Graphviz has no hyperedges, so [ToDOT] picks a drawing per element:
//
//   - A relation that neither points at nor is pointed at by another
//     relation is an edge. Otherwise it becomes a dotted midpoint node with
//     an edge in and an edge out.
//   - A CDU over plain units that no other CDU shares is a cluster labelled
//     "N. CDU". Edges to or from it attach to a member and clip at the
//     cluster border (compound=true with lhead/ltail).
//   - Empty, nested and overlapping CDUs are rectangles with dashed edges to
//     each member.
//
// A "highlight" feature on an annotation overrides its color. EDUs without
// text are drawn in red.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering.
package nodelink
