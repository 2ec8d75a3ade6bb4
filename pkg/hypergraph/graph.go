package hypergraph

import (
	"fmt"

	"github.com/matzehuels/discograph/pkg/annotation"
)

// Graph is a [Store] together with the document its annotations come from.
// Every rewrite applied through Graph keeps both in step.
type Graph struct {
	*Store
	Doc *annotation.Document
}

// IsEDU reports whether id is an EDU node. Unknown ids report false.
func (g *Graph) IsEDU(id string) bool { return g.is(id, KindEDU) }

// IsCDU reports whether id is a CDU (node or hyperedge form).
func (g *Graph) IsCDU(id string) bool { return g.is(id, KindCDU) }

// IsRelation reports whether id is a relation (node or hyperedge form).
func (g *Graph) IsRelation(id string) bool { return g.is(id, KindRelation) }

func (g *Graph) is(id string, k Kind) bool {
	kind, err := g.KindOf(id)
	return err == nil && kind == k
}

// EDUs returns the ids of EDU nodes in insertion order.
func (g *Graph) EDUs() []string {
	var out []string
	for _, id := range g.nodeOrder {
		if g.nodes[id].Kind == KindEDU {
			out = append(out, id)
		}
	}
	return out
}

// Relations returns the ids of relation hyperedges in insertion order. By
// convention the first member is the source and the second the target.
func (g *Graph) Relations() []string { return g.edgesOfKind(KindRelation) }

// CDUs returns the ids of CDU hyperedges in insertion order.
func (g *Graph) CDUs() []string { return g.edgesOfKind(KindCDU) }

func (g *Graph) edgesOfKind(k Kind) []string {
	var out []string
	for _, id := range g.edgeOrder {
		if g.edges[id].Kind == k {
			out = append(out, id)
		}
	}
	return out
}

// CDUMembers returns the members of a CDU given either of its forms.
func (g *Graph) CDUMembers(id string) ([]string, error) {
	if !g.IsCDU(id) {
		return nil, idErr("cdu members", id, ErrWrongKind)
	}
	edge, err := g.Mirror(id)
	if err != nil {
		return nil, err
	}
	return g.MembersOf(edge)
}

// Endpoints returns the source and target of a relation hyperedge.
func (g *Graph) Endpoints(rel string) (src, tgt string, err error) {
	e, ok := g.edges[rel]
	if !ok {
		return "", "", idErr("endpoints", rel, ErrNotFound)
	}
	if e.Kind != KindRelation || len(e.Members) != 2 {
		return "", "", idErr("endpoints", rel, ErrWrongKind)
	}
	return e.Members[0], e.Members[1], nil
}

// Clone returns an independent copy of the graph backed by a deep copy of
// the document.
func (g *Graph) Clone() *Graph {
	doc, copies := g.Doc.CloneMapped()
	store := g.Store.Clone()
	store.rebind(func(a annotation.Annotation) annotation.Annotation {
		if c, ok := copies[a]; ok {
			return c
		}
		return a
	})
	return &Graph{Store: store, Doc: doc}
}

// CheckConsistency verifies the store and verifies that every relation's
// endpoints in the store match the source and target recorded on its
// backing annotation.
func (g *Graph) CheckConsistency() error {
	if err := g.Validate(); err != nil {
		return err
	}
	for _, id := range g.Relations() {
		e := g.edges[id]
		rel, ok := e.Annotation.(*annotation.Relation)
		if !ok {
			return idErr("consistency", id, fmt.Errorf("annotation is %T, not a relation", e.Annotation))
		}
		if rel.Source == nil || rel.Target == nil {
			return idErr("consistency", id, fmt.Errorf("unresolved endpoints %s -> %s", rel.Span.T1, rel.Span.T2))
		}
		src, tgt := g.Doc.Identifier(rel.Source), g.Doc.Identifier(rel.Target)
		if src != e.Members[0] || tgt != e.Members[1] {
			return idErr("consistency", id, fmt.Errorf("document has %s -> %s, graph has %s -> %s",
				src, tgt, e.Members[0], e.Members[1]))
		}
		if rel.Span.T1 != rel.Source.LocalID() || rel.Span.T2 != rel.Target.LocalID() {
			return idErr("consistency", id, fmt.Errorf("span %s -> %s out of step with endpoints", rel.Span.T1, rel.Span.T2))
		}
	}
	return nil
}
