package hypergraph

import (
	"testing"

	"github.com/matzehuels/discograph/pkg/annotation"
)

// docBuilder assembles small documents for tests. Every annotation is
// authored by "t", so the unit named "e1" has local id "t_e1" and global id
// "d_t_e1".
type docBuilder struct {
	doc *annotation.Document
}

func newDoc() *docBuilder {
	return &docBuilder{doc: &annotation.Document{Key: annotation.DocKey{Doc: "d"}}}
}

func origin(name string) annotation.Origin { return annotation.Origin{Author: "t", Date: name} }

func local(name string) string { return "t_" + name }

func gid(name string) string { return "d_t_" + name }

func gids(names ...string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = gid(n)
	}
	return out
}

func (b *docBuilder) edu(name string, start, end int) *docBuilder {
	b.doc.Units = append(b.doc.Units, &annotation.Unit{
		Origin: origin(name),
		Type:   "Segment",
		Span:   annotation.Span{Start: start, End: end},
	})
	return b
}

func (b *docBuilder) rel(name, src, tgt string) *docBuilder {
	b.doc.Relations = append(b.doc.Relations, &annotation.Relation{
		Origin: origin(name),
		Type:   "Elaboration",
		Span:   annotation.RelSpan{T1: local(src), T2: local(tgt)},
	})
	return b
}

// cdu adds a composite unit. Member names are sorted into units, relations
// and schemas by looking them up in what has been added so far, so members
// must be added before the CDU that groups them; unknown names are treated
// as schemas.
func (b *docBuilder) cdu(name string, members ...string) *docBuilder {
	s := &annotation.Schema{Origin: origin(name), Type: "Complex_discourse_unit"}
	b.doc.Resolve()
	for _, m := range members {
		a, _ := b.doc.Lookup(local(m))
		switch a.(type) {
		case *annotation.Unit:
			s.Units = append(s.Units, local(m))
		case *annotation.Relation:
			s.Relations = append(s.Relations, local(m))
		default:
			s.Schemas = append(s.Schemas, local(m))
		}
	}
	b.doc.Schemas = append(b.doc.Schemas, s)
	return b
}

func (b *docBuilder) build(t *testing.T) *Graph {
	t.Helper()
	g, err := FromDocument(b.doc)
	if err != nil {
		t.Fatalf("FromDocument() error: %v", err)
	}
	return g
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
