package hypergraph

import (
	"github.com/matzehuels/discograph/pkg/annotation"
)

// BuildOptions narrows what goes into a graph.
type BuildOptions struct {
	// IsEDU decides which pointed-to units may become EDU nodes.
	// Nil accepts every unit.
	IsEDU func(*annotation.Unit) bool

	// Keep filters relations and schemas before anything is built.
	// Nil keeps everything.
	Keep func(annotation.Annotation) bool
}

type pendingNode struct {
	id   string
	kind Kind
	anno annotation.Annotation
}

type pendingEdge struct {
	pendingNode
	members []string
}

// FromDocument builds a graph from every relation and CDU in doc.
func FromDocument(doc *annotation.Document) (*Graph, error) {
	return Build(doc, BuildOptions{})
}

// Build constructs the hypergraph for doc:
//
//   - one EDU node per unit that some relation or CDU points to
//   - one relation node and hyperedge (source, target) per relation
//   - one CDU node and hyperedge per non-default schema
//
// All nodes are inserted before any hyperedge so that relations pointing at
// relations or CDUs find their targets. Local ids must be unique across the
// whole document, including annotations that do not become nodes. Any
// collision aborts the build with ErrDuplicateID naming the id; no partial
// graph is returned.
func Build(doc *annotation.Document, opts BuildOptions) (*Graph, error) {
	if err := checkLocalIDs(doc); err != nil {
		return nil, err
	}
	doc.Resolve()
	keep := opts.Keep
	if keep == nil {
		keep = func(annotation.Annotation) bool { return true }
	}
	isEDU := opts.IsEDU
	if isEDU == nil {
		isEDU = func(*annotation.Unit) bool { return true }
	}

	var (
		rels []*annotation.Relation
		cdus []*annotation.Schema
	)
	for _, r := range doc.Relations {
		if keep(r) {
			rels = append(rels, r)
		}
	}
	for _, s := range doc.Schemas {
		if s.IsCDU() && keep(s) {
			cdus = append(cdus, s)
		}
	}

	pointedTo := make(map[string]bool)
	for _, r := range rels {
		pointedTo[r.Span.T1] = true
		pointedTo[r.Span.T2] = true
	}
	for _, s := range cdus {
		for _, m := range s.Members() {
			pointedTo[m] = true
		}
	}

	var (
		nodes []pendingNode
		edges []pendingEdge
	)
	for _, u := range doc.Units {
		if pointedTo[u.LocalID()] && isEDU(u) {
			nodes = append(nodes, pendingNode{doc.Identifier(u), KindEDU, u})
		}
	}
	for _, r := range rels {
		nodes = append(nodes, pendingNode{doc.Identifier(r), KindRelation, r})
	}
	for _, s := range cdus {
		nodes = append(nodes, pendingNode{doc.Identifier(s), KindCDU, s})
	}
	for _, r := range rels {
		members := []string{doc.Key.GlobalID(r.Span.T1), doc.Key.GlobalID(r.Span.T2)}
		edges = append(edges, pendingEdge{pendingNode{doc.Identifier(r), KindRelation, r}, members})
	}
	for _, s := range cdus {
		members := make([]string, 0, len(s.Members()))
		for _, m := range s.Members() {
			members = append(members, doc.Key.GlobalID(m))
		}
		edges = append(edges, pendingEdge{pendingNode{doc.Identifier(s), KindCDU, s}, members})
	}

	store := NewStore()
	for _, n := range nodes {
		if err := store.AddNode(n.id, n.kind, n.anno); err != nil {
			return nil, err
		}
	}
	for _, e := range edges {
		if err := store.AddHyperedge(e.id, e.kind, e.members, e.anno); err != nil {
			return nil, err
		}
	}
	return &Graph{Store: store, Doc: doc}, nil
}

// checkLocalIDs fails on the first local id shared by two annotations.
// Document.Resolve keeps only the first of them, so later lookups would
// silently bind to the wrong annotation.
func checkLocalIDs(doc *annotation.Document) error {
	seen := make(map[string]bool)
	for _, a := range doc.Annotations() {
		id := a.LocalID()
		if seen[id] {
			return idErr("build", doc.Identifier(a), ErrDuplicateID)
		}
		seen[id] = true
	}
	return nil
}
