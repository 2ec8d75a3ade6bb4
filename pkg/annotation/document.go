package annotation

import (
	"maps"
	"slices"
)

// Document is the backing store of annotations for one text.
//
// The zero value is usable; call [Document.Resolve] after populating the
// collections by hand.
type Document struct {
	Key       DocKey
	Text      string
	Units     []*Unit
	Relations []*Relation
	Schemas   []*Schema

	index map[string]Annotation
}

// Resolve rebuilds the local id index and binds every relation's Source and
// Target from its Span. The first annotation wins when local ids collide;
// collisions are reported by the hypergraph builder, not here.
func (d *Document) Resolve() {
	d.index = make(map[string]Annotation, len(d.Units)+len(d.Relations)+len(d.Schemas))
	add := func(a Annotation) {
		if _, ok := d.index[a.LocalID()]; !ok {
			d.index[a.LocalID()] = a
		}
	}
	for _, u := range d.Units {
		add(u)
	}
	for _, r := range d.Relations {
		add(r)
	}
	for _, s := range d.Schemas {
		add(s)
	}
	for _, r := range d.Relations {
		r.Source = d.index[r.Span.T1]
		r.Target = d.index[r.Span.T2]
	}
}

// Lookup returns the annotation with the given local id.
func (d *Document) Lookup(localID string) (Annotation, bool) {
	if d.index == nil {
		d.Resolve()
	}
	a, ok := d.index[localID]
	return a, ok
}

// Identifier returns the global identifier of a, qualified by the document key.
func (d *Document) Identifier(a Annotation) string {
	return d.Key.GlobalID(a.LocalID())
}

// SetEndpoints points r at src and tgt, keeping Span in step.
func (d *Document) SetEndpoints(r *Relation, src, tgt Annotation) {
	r.Source = src
	r.Target = tgt
	r.Span = RelSpan{T1: src.LocalID(), T2: tgt.LocalID()}
}

// TextSpan returns the span of text an annotation covers. Units report their
// own span; relations and schemas report the hull of what they point to.
// It returns false for empty schemas and for annotations whose members cannot
// be located.
func (d *Document) TextSpan(a Annotation) (Span, bool) {
	return d.textSpan(a, map[string]bool{})
}

func (d *Document) textSpan(a Annotation, seen map[string]bool) (Span, bool) {
	if a == nil {
		return Span{}, false
	}
	if u, ok := a.(*Unit); ok {
		return u.Span, true
	}
	if seen[a.LocalID()] {
		return Span{}, false
	}
	seen[a.LocalID()] = true
	defer delete(seen, a.LocalID())

	var ids []string
	switch v := a.(type) {
	case *Relation:
		ids = []string{v.Span.T1, v.Span.T2}
	case *Schema:
		ids = v.Members()
	}

	var (
		hull  Span
		found bool
	)
	for _, id := range ids {
		m, ok := d.Lookup(id)
		if !ok {
			continue
		}
		s, ok := d.textSpan(m, seen)
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

// Slice returns the document text covered by s, clamped to the text bounds.
// Offsets count characters, not bytes.
func (d *Document) Slice(s Span) string {
	runes := []rune(d.Text)
	start := min(max(s.Start, 0), len(runes))
	end := min(max(s.End, start), len(runes))
	return string(runes[start:end])
}

// Annotations returns every annotation in document order: units, relations,
// then schemas.
func (d *Document) Annotations() []Annotation {
	out := make([]Annotation, 0, len(d.Units)+len(d.Relations)+len(d.Schemas))
	for _, u := range d.Units {
		out = append(out, u)
	}
	for _, r := range d.Relations {
		out = append(out, r)
	}
	for _, s := range d.Schemas {
		out = append(out, s)
	}
	return out
}

// CDUs returns the schemas that are composite discourse units.
func (d *Document) CDUs() []*Schema {
	var out []*Schema
	for _, s := range d.Schemas {
		if s.IsCDU() {
			out = append(out, s)
		}
	}
	return out
}

// Clone returns a deep copy with freshly resolved endpoints.
func (d *Document) Clone() *Document {
	out, _ := d.CloneMapped()
	return out
}

// CloneMapped is like Clone but also returns, for every annotation of d, its
// copy in the clone. The mapping is by position, so it holds even when local
// ids collide.
func (d *Document) CloneMapped() (*Document, map[Annotation]Annotation) {
	copies := make(map[Annotation]Annotation, len(d.Units)+len(d.Relations)+len(d.Schemas))
	out := &Document{
		Key:       d.Key,
		Text:      d.Text,
		Units:     make([]*Unit, len(d.Units)),
		Relations: make([]*Relation, len(d.Relations)),
		Schemas:   make([]*Schema, len(d.Schemas)),
	}
	for i, u := range d.Units {
		c := *u
		c.Features = maps.Clone(u.Features)
		out.Units[i] = &c
		copies[u] = &c
	}
	for i, r := range d.Relations {
		c := *r
		c.Source, c.Target = nil, nil
		c.Features = maps.Clone(r.Features)
		out.Relations[i] = &c
		copies[r] = &c
	}
	for i, s := range d.Schemas {
		c := *s
		c.Units = slices.Clone(s.Units)
		c.Relations = slices.Clone(s.Relations)
		c.Schemas = slices.Clone(s.Schemas)
		c.Features = maps.Clone(s.Features)
		out.Schemas[i] = &c
		copies[s] = &c
	}
	out.Resolve()
	return out, copies
}
