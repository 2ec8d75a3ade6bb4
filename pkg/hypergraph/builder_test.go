package hypergraph

import (
	"errors"
	"testing"

	"github.com/matzehuels/discograph/pkg/annotation"
)

func TestBuild(t *testing.T) {
	b := newDoc().
		edu("e1", 0, 5).
		edu("e2", 5, 10).
		edu("e3", 10, 15).
		edu("lonely", 15, 20).
		rel("r1", "e1", "e2").
		rel("r2", "r1", "e3").
		cdu("c1", "e1", "e2", "r1")
	g := b.build(t)

	if got, want := g.EDUs(), gids("e1", "e2", "e3"); !equalIDs(got, want) {
		t.Errorf("EDUs() = %v, want %v", got, want)
	}
	if got, want := g.Relations(), gids("r1", "r2"); !equalIDs(got, want) {
		t.Errorf("Relations() = %v, want %v", got, want)
	}
	if got, want := g.CDUs(), gids("c1"); !equalIDs(got, want) {
		t.Errorf("CDUs() = %v, want %v", got, want)
	}

	src, tgt, err := g.Endpoints(gid("r2"))
	if err != nil || src != gid("r1") || tgt != gid("e3") {
		t.Errorf("Endpoints(r2) = %s, %s, %v", src, tgt, err)
	}
	members, err := g.CDUMembers(gid("c1"))
	if err != nil {
		t.Fatal(err)
	}
	if want := gids("e1", "e2", "r1"); !equalIDs(members, want) {
		t.Errorf("CDUMembers(c1) = %v, want %v", members, want)
	}

	for _, id := range gids("r1", "r2", "c1") {
		if !g.HasNode(id) || !g.HasHyperedge(id) {
			t.Errorf("%s missing a form", id)
		}
	}
	if g.HasNode(gid("lonely")) {
		t.Error("unreferenced unit became a node")
	}
	if err := g.CheckConsistency(); err != nil {
		t.Errorf("CheckConsistency: %v", err)
	}
}

func TestBuildDuplicateID(t *testing.T) {
	b := newDoc().
		edu("e1", 0, 5).
		edu("e2", 5, 10).
		rel("e1", "e1", "e2") // relation reuses the unit's id
	_, err := FromDocument(b.doc)
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("error = %v, want ErrDuplicateID", err)
	}
	var idErr *IDError
	if !errors.As(err, &idErr) || idErr.ID != gid("e1") {
		t.Errorf("error %v should name %s", err, gid("e1"))
	}
}

func TestBuildDuplicateLocalIDOutsideGraph(t *testing.T) {
	tests := []struct {
		name string
		doc  *docBuilder
	}{
		{
			name: "unreferenced unit shares a CDU id",
			doc: newDoc().
				edu("e1", 0, 5).edu("e2", 5, 10).
				rel("r", "e1", "e2").
				cdu("c", "e1", "e2", "r").
				edu("c", 20, 25),
		},
		{
			name: "default schema shares a unit id",
			doc: func() *docBuilder {
				b := newDoc().edu("e1", 0, 5).edu("e2", 5, 10).rel("r", "e1", "e2")
				b.doc.Schemas = append(b.doc.Schemas, &annotation.Schema{
					Origin: origin("e2"),
					Type:   annotation.DefaultSchemaType,
				})
				return b
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromDocument(tt.doc.doc); !errors.Is(err, ErrDuplicateID) {
				t.Errorf("error = %v, want ErrDuplicateID", err)
			}
		})
	}
}

func TestBuildUnknownEndpoint(t *testing.T) {
	b := newDoc().
		edu("e1", 0, 5).
		rel("r1", "e1", "ghost")
	if _, err := FromDocument(b.doc); !errors.Is(err, ErrUnknownMember) {
		t.Fatalf("error = %v, want ErrUnknownMember", err)
	}
}

func TestBuildSkipsDefaultSchemas(t *testing.T) {
	b := newDoc().
		edu("e1", 0, 5).
		edu("e2", 5, 10).
		rel("r1", "e1", "e2")
	b.doc.Schemas = append(b.doc.Schemas, &annotation.Schema{
		Origin: origin("s1"),
		Type:   annotation.DefaultSchemaType,
		Units:  []string{local("e1")},
	})
	g := b.build(t)

	if n := len(g.CDUs()); n != 0 {
		t.Errorf("CDUs() has %d entries, want 0", n)
	}
	if g.HasNode(gid("s1")) {
		t.Error("default schema became a node")
	}
}

func TestBuildOptions(t *testing.T) {
	b := newDoc().
		edu("e1", 0, 5).
		edu("e2", 5, 10).
		edu("e3", 10, 15).
		rel("r1", "e1", "e2").
		rel("r2", "e2", "e3")

	g, err := Build(b.doc, BuildOptions{
		Keep: func(a annotation.Annotation) bool { return a.LocalID() != local("r2") },
	})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := g.Relations(), gids("r1"); !equalIDs(got, want) {
		t.Errorf("Relations() = %v, want %v", got, want)
	}
	if got, want := g.EDUs(), gids("e1", "e2"); !equalIDs(got, want) {
		t.Errorf("EDUs() = %v, want %v", got, want)
	}

	// Rejecting a unit that a relation needs leaves the relation dangling.
	_, err = Build(b.doc, BuildOptions{
		IsEDU: func(u *annotation.Unit) bool { return u.LocalID() != local("e3") },
	})
	if !errors.Is(err, ErrUnknownMember) {
		t.Errorf("error = %v, want ErrUnknownMember", err)
	}
}

func TestGraphClone(t *testing.T) {
	g := newDoc().
		edu("e1", 0, 5).
		edu("e2", 5, 10).
		rel("r1", "e1", "e2").
		build(t)

	c := g.Clone()
	if c.Doc == g.Doc {
		t.Fatal("clone shares the document")
	}
	a, _ := c.AnnotationOf(gid("r1"))
	orig, _ := g.AnnotationOf(gid("r1"))
	if a == orig {
		t.Error("clone shares relation annotations")
	}
	if err := c.CheckConsistency(); err != nil {
		t.Errorf("clone CheckConsistency: %v", err)
	}
}

func TestGraphCloneBindsCopiesNotNamesakes(t *testing.T) {
	g := newDoc().
		edu("e1", 0, 5).edu("e2", 5, 10).
		rel("r", "e1", "e2").
		cdu("c", "e1", "e2", "r").
		build(t)
	// A unit added after the build shares the CDU's local id and comes first
	// in the document's lookup index.
	g.Doc.Units = append(g.Doc.Units, &annotation.Unit{Origin: origin("c"), Span: annotation.Span{Start: 20, End: 25}})
	g.Doc.Resolve()

	c := g.Clone()
	a, err := c.AnnotationOf(gid("c"))
	if err != nil {
		t.Fatal(err)
	}
	s, ok := a.(*annotation.Schema)
	if !ok {
		t.Fatalf("cloned CDU bound to %T, want *annotation.Schema", a)
	}
	if s != c.Doc.Schemas[0] {
		t.Error("cloned CDU not bound to the cloned schema")
	}

	stripped, _, err := g.WithoutCDUs(StripOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if n := len(stripped.Doc.Schemas); n != 0 {
		t.Errorf("WithoutCDUs left %d schemas", n)
	}
	if n := len(g.Doc.Schemas); n != 1 {
		t.Errorf("original lost its schema: %d left", n)
	}

	if _, err := g.StripCDUs(StripOptions{}); err != nil {
		t.Fatal(err)
	}
	if n := len(g.Doc.Schemas); n != 0 {
		t.Errorf("StripCDUs left %d schemas", n)
	}
}
