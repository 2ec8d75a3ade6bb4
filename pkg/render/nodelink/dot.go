package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/discograph/pkg/annotation"
	"github.com/matzehuels/discograph/pkg/hypergraph"
)

// HighlightFeature names the annotation feature holding a graphviz color
// used to pick out a unit, relation or CDU.
const HighlightFeature = "highlight"

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed appends the text span to EDU labels.
	Detailed bool

	// WrapWidth is the column at which EDU labels are wrapped.
	// Zero means 30.
	WrapWidth int
}

// view holds the classification of relations and CDUs that decides how each
// one is drawn.
type view struct {
	g    *hypergraph.Graph
	opts Options

	complexRels map[string]bool
	complexCDUs map[string]bool
	position    map[string]int
	buf         bytes.Buffer
}

// ToDOT converts a hypergraph to Graphviz DOT format.
//
// EDUs become plaintext nodes labelled with their text. A relation is drawn
// as a labelled edge, unless another relation points at it or it points at a
// relation: then it gets a midpoint node so the other edge has something to
// attach to. A CDU whose members are all plain units that belong to no other
// CDU is drawn as a cluster; any other CDU becomes a box with dashed edges to
// its members. CDU labels carry the unit's position in
// [hypergraph.Graph.FirstOutermostUnits].
func ToDOT(g *hypergraph.Graph, opts Options) string {
	if opts.WrapWidth <= 0 {
		opts.WrapWidth = 30
	}
	v := &view{
		g:           g,
		opts:        opts,
		complexRels: complexRelations(g),
		complexCDUs: complexCDUs(g),
		position:    make(map[string]int),
	}
	for i, id := range g.FirstOutermostUnits() {
		v.position[id] = i
	}

	fmt.Fprintf(&v.buf, "digraph %q {\n", graphName(g.Doc))
	v.buf.WriteString("  compound=true;\n")
	v.buf.WriteString("  bgcolor=\"transparent\";\n")
	v.buf.WriteString("  node [fontsize=12];\n")
	v.buf.WriteString("\n")

	for _, id := range g.EDUs() {
		v.addEDU(id)
	}
	v.buf.WriteString("\n")
	for _, id := range g.Relations() {
		if v.complexRels[id] {
			v.addComplexRelation(id)
		} else {
			v.addSimpleRelation(id)
		}
	}
	v.buf.WriteString("\n")
	for _, id := range g.CDUs() {
		if v.complexCDUs[id] {
			v.addComplexCDU(id)
		} else {
			v.addSimpleCDU(id)
		}
	}

	v.buf.WriteString("}\n")
	return v.buf.String()
}

var nameRe = regexp.MustCompile(`[-\[\]\r\n.]`)

func graphName(doc *annotation.Document) string {
	if doc == nil {
		return "hypergraph"
	}
	k := doc.Key
	return nameRe.ReplaceAllString(strings.Join([]string{k.Doc, k.Subdoc, k.Stage, k.Annotator}, "_"), "_")
}

// complexRelations returns relations that point at or are pointed at by
// another relation.
func complexRelations(g *hypergraph.Graph) map[string]bool {
	out := make(map[string]bool)
	for _, r := range g.Relations() {
		members, _ := g.MembersOf(r)
		for _, m := range members {
			if g.IsRelation(m) {
				out[r] = true
				out[m] = true
			}
		}
	}
	return out
}

// complexCDUs returns CDUs that are empty, contain another CDU, or share a
// member with another CDU. Graphviz clusters cannot express those.
func complexCDUs(g *hypergraph.Graph) map[string]bool {
	out := make(map[string]bool)
	owners := make(map[string]int)
	for _, c := range g.CDUs() {
		members, _ := g.MembersOf(c)
		for _, m := range members {
			owners[m]++
		}
	}
	for _, c := range g.CDUs() {
		members, _ := g.MembersOf(c)
		if len(members) == 0 {
			out[c] = true
			continue
		}
		if slices.ContainsFunc(members, func(m string) bool { return g.IsCDU(m) || owners[m] > 1 }) {
			out[c] = true
		}
	}
	return out
}

func (v *view) dotID(id string) string {
	if v.g.IsCDU(id) && !v.complexCDUs[id] {
		return "cluster_" + id
	}
	return id
}

// point resolves one end of an edge. Graphviz cannot point at a cluster, so
// the edge goes to a node inside it and key (lhead or ltail) names the
// cluster.
func (v *view) point(id, key string) (string, []string) {
	dot := v.dotID(id)
	if dot == id {
		return id, nil
	}
	members, _ := v.g.MembersOf(id)
	proxy := members[0]
	for _, m := range members {
		if v.g.IsEDU(m) || v.complexRels[m] {
			proxy = m
			break
		}
	}
	return proxy, []string{fmt.Sprintf("%s=%q", key, dot)}
}

func (v *view) addEDU(id string) {
	anno, _ := v.g.AnnotationOf(id)
	attrs := []string{
		fmt.Sprintf("label=%q", v.eduLabel(anno)),
		"shape=plaintext",
	}
	if c := highlight(anno); c != "" {
		attrs = append(attrs, fmt.Sprintf("fontcolor=%q", c))
	} else if v.text(anno) == "" {
		attrs = append(attrs, "fontcolor=red")
	}
	fmt.Fprintf(&v.buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
}

func (v *view) text(anno annotation.Annotation) string {
	u, ok := anno.(*annotation.Unit)
	if !ok || v.g.Doc == nil {
		return ""
	}
	return strings.TrimSpace(v.g.Doc.Slice(u.Span))
}

func (v *view) eduLabel(anno annotation.Annotation) string {
	if anno == nil {
		return ""
	}
	label := v.text(anno)
	if label == "" {
		label = anno.LocalID()
	}
	label += " [" + anno.AnnoType() + "]"
	if u, ok := anno.(*annotation.Unit); ok && v.opts.Detailed {
		label += " " + u.Span.String()
	}
	return ansi.Wordwrap(label, v.opts.WrapWidth, "")
}

func (v *view) addSimpleRelation(id string) {
	anno, _ := v.g.AnnotationOf(id)
	src, tgt, _ := v.g.Endpoints(id)
	from, fromAttrs := v.point(src, "ltail")
	to, toAttrs := v.point(tgt, "lhead")

	attrs := []string{fmt.Sprintf("label=%q", " "+typeOf(anno))}
	if c := highlight(anno); c != "" {
		attrs = append(attrs, fmt.Sprintf("fontcolor=%q", c), fmt.Sprintf("color=%q", c))
	} else {
		attrs = append(attrs, "fontcolor=blue")
	}
	attrs = append(attrs, fromAttrs...)
	attrs = append(attrs, toAttrs...)
	fmt.Fprintf(&v.buf, "  %q -> %q [%s];\n", from, to, strings.Join(attrs, ", "))
}

func (v *view) addComplexRelation(id string) {
	anno, _ := v.g.AnnotationOf(id)
	src, tgt, _ := v.g.Endpoints(id)
	from, fromAttrs := v.point(src, "ltail")
	to, toAttrs := v.point(tgt, "lhead")

	fmt.Fprintf(&v.buf, "  %q [label=%q, style=dotted, fontcolor=blue];\n", id, typeOf(anno))
	first := append([]string{"arrowhead=tee", "arrowsize=0.5"}, fromAttrs...)
	fmt.Fprintf(&v.buf, "  %q -> %q [%s];\n", from, id, strings.Join(first, ", "))
	if len(toAttrs) > 0 {
		fmt.Fprintf(&v.buf, "  %q -> %q [%s];\n", id, to, strings.Join(toAttrs, ", "))
	} else {
		fmt.Fprintf(&v.buf, "  %q -> %q;\n", id, to)
	}
}

func (v *view) cduLabel(id string) string {
	if i, ok := v.position[id]; ok {
		return fmt.Sprintf("%d. CDU", i)
	}
	return "CDU"
}

func (v *view) addSimpleCDU(id string) {
	anno, _ := v.g.AnnotationOf(id)
	members, _ := v.g.MembersOf(id)

	fmt.Fprintf(&v.buf, "  subgraph %q {\n", v.dotID(id))
	color := "lightgrey"
	if c := highlight(anno); c != "" {
		color = c
	}
	fmt.Fprintf(&v.buf, "    color=%q;\n    label=%q;\n    rank=same;\n", color, v.cduLabel(id))

	var inside []string
	for _, m := range members {
		if v.g.IsEDU(m) || v.complexRels[m] {
			inside = append(inside, m)
		}
	}
	// Midpoints of relations running entirely within the cluster belong
	// to it too.
	for _, m := range members {
		links, _ := v.g.LinksOf(m)
		for _, l := range links {
			if l == id || !v.complexRels[l] || slices.Contains(inside, l) {
				continue
			}
			ends, _ := v.g.MembersOf(l)
			if !slices.ContainsFunc(ends, func(e string) bool { return !slices.Contains(members, e) }) {
				inside = append(inside, l)
			}
		}
	}
	for _, m := range inside {
		fmt.Fprintf(&v.buf, "    %q;\n", m)
	}
	v.buf.WriteString("  }\n")
}

func (v *view) addComplexCDU(id string) {
	anno, _ := v.g.AnnotationOf(id)
	members, _ := v.g.MembersOf(id)

	color := "grey"
	if c := highlight(anno); c != "" {
		color = c
	}
	fmt.Fprintf(&v.buf, "  %q [label=%q, shape=rectangle, color=%q];\n", id, v.cduLabel(id), color)
	for _, m := range members {
		to, attrs := v.point(m, "lhead")
		attrs = append([]string{"style=dashed", "color=grey"}, attrs...)
		fmt.Fprintf(&v.buf, "  %q -> %q [%s];\n", id, to, strings.Join(attrs, ", "))
	}
}

func typeOf(a annotation.Annotation) string {
	if a == nil {
		return ""
	}
	return a.AnnoType()
}

func highlight(a annotation.Annotation) string {
	var f annotation.Features
	switch v := a.(type) {
	case *annotation.Unit:
		f = v.Features
	case *annotation.Relation:
		f = v.Features
	case *annotation.Schema:
		f = v.Features
	}
	return f[HighlightFeature]
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	out, err := render(dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
