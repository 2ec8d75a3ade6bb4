package hypergraph

import (
	"cmp"
	"slices"

	"github.com/matzehuels/discograph/pkg/annotation"
)

// orderKey is the sort key of a unit in reading order.
type orderKey struct {
	id    string
	span  annotation.Span
	depth int
}

func (g *Graph) orderKey(id string) orderKey {
	span, _ := g.unitSpan(id, map[string]bool{})
	return orderKey{id: id, span: span, depth: len(g.ContainingCDUChain(id))}
}

// unitSpan is the document's text span for id. When the document cannot
// place the annotation, relations and CDUs fall back to the hull of their
// members in the graph. It reports false when neither source has a span.
func (g *Graph) unitSpan(id string, seen map[string]bool) (annotation.Span, bool) {
	if a, err := g.AnnotationOf(id); err == nil && a != nil && g.Doc != nil {
		if s, ok := g.Doc.TextSpan(a); ok {
			return s, true
		}
	}
	e, ok := g.edges[id]
	if !ok || seen[id] {
		return annotation.Span{}, false
	}
	seen[id] = true
	defer delete(seen, id)

	var (
		hull  annotation.Span
		found bool
	)
	for _, m := range e.Members {
		s, ok := g.unitSpan(m, seen)
		if !ok {
			continue
		}
		if !found {
			hull, found = s, true
		} else {
			hull = hull.Merge(s)
		}
	}
	return hull, found
}

func compareKeys(a, b orderKey) int {
	if c := cmp.Compare(a.span.Start, b.span.Start); c != 0 {
		return c
	}
	// Wider spans first: the enclosing unit precedes what it encloses.
	if c := cmp.Compare(b.span.End, a.span.End); c != 0 {
		return c
	}
	if c := cmp.Compare(a.depth, b.depth); c != 0 {
		return c
	}
	return cmp.Compare(a.id, b.id)
}

// Compare orders two units for reading: by span start, then by span end
// descending (widest first), then by the number of CDUs enclosing the unit
// (outermost first), then by id. A relation or CDU the document cannot place
// takes the hull of its graph members. Units with no span from either source,
// such as empty CDUs, sort as [0,0).
func (g *Graph) Compare(a, b string) int {
	return compareKeys(g.orderKey(a), g.orderKey(b))
}

// CanonicalOrder returns ids sorted by [Graph.Compare]. The input is not
// modified.
func (g *Graph) CanonicalOrder(ids []string) []string {
	keys := make([]orderKey, len(ids))
	for i, id := range ids {
		keys[i] = g.orderKey(id)
	}
	slices.SortFunc(keys, compareKeys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.id
	}
	return out
}

// FirstOutermostUnits returns every EDU and every CDU with at least one
// member in canonical order. Empty CDUs are left out, as they are from head
// resolution.
func (g *Graph) FirstOutermostUnits() []string {
	units := g.EDUs()
	for _, id := range g.CDUs() {
		if len(g.edges[id].Members) > 0 {
			units = append(units, id)
		}
	}
	return g.CanonicalOrder(units)
}

// ContainingCDU returns the first CDU that lists id as a member.
func (g *Graph) ContainingCDU(id string) (string, bool) {
	for _, e := range g.links[id] {
		if e != id && g.edges[e].Kind == KindCDU {
			return e, true
		}
	}
	return "", false
}

// ContainingCDUChain returns the CDU containing id, the CDU containing that
// one, and so on outwards. It is empty when no CDU contains id. The walk
// stops if it revisits a CDU.
func (g *Graph) ContainingCDUChain(id string) []string {
	var chain []string
	seen := map[string]bool{id: true}
	for {
		parent, ok := g.ContainingCDU(id)
		if !ok || seen[parent] {
			return chain
		}
		seen[parent] = true
		chain = append(chain, parent)
		id = parent
	}
}
