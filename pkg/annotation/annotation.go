package annotation

import (
	"fmt"
	"strings"
)

// DefaultSchemaType marks placeholder schemas that are not composite
// discourse units. Schemas of this type are never turned into CDUs.
const DefaultSchemaType = "default"

// Span is a half-open range [Start, End) of character offsets into the
// document text.
type Span struct {
	Start int `json:"start" toml:"start" yaml:"start" bson:"start"`
	End   int `json:"end" toml:"end" yaml:"end" bson:"end"`
}

// Len returns the number of characters covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Encloses reports whether o lies entirely within s.
func (s Span) Encloses(o Span) bool { return s.Start <= o.Start && o.End <= s.End }

// Merge returns the smallest span covering both s and o.
func (s Span) Merge(o Span) Span {
	return Span{Start: min(s.Start, o.Start), End: max(s.End, o.End)}
}

func (s Span) String() string { return fmt.Sprintf("(%d,%d)", s.Start, s.End) }

// RelSpan records the local ids of a relation's source (T1) and target (T2).
type RelSpan struct {
	T1 string `json:"t1" toml:"t1" yaml:"t1" bson:"t1"`
	T2 string `json:"t2" toml:"t2" yaml:"t2" bson:"t2"`
}

// Origin is the provenance of an annotation.
type Origin struct {
	Author string `json:"author" toml:"author" yaml:"author" bson:"author"`
	Date   string `json:"date" toml:"date" yaml:"date" bson:"date"`
}

// LocalID joins author and date into the document-local identifier.
func (o Origin) LocalID() string { return o.Author + "_" + o.Date }

// ParseLocalID splits a local id at its last underscore. Authors may contain
// underscores, creation stamps never do.
func ParseLocalID(id string) (Origin, error) {
	i := strings.LastIndex(id, "_")
	if i <= 0 || i == len(id)-1 {
		return Origin{}, fmt.Errorf("malformed annotation id %q", id)
	}
	return Origin{Author: id[:i], Date: id[i+1:]}, nil
}

// DocKey locates a document within a corpus.
type DocKey struct {
	Doc       string `json:"doc" toml:"doc" yaml:"doc" bson:"doc"`
	Subdoc    string `json:"subdoc,omitempty" toml:"subdoc" yaml:"subdoc,omitempty" bson:"subdoc,omitempty"`
	Stage     string `json:"stage,omitempty" toml:"stage" yaml:"stage,omitempty" bson:"stage,omitempty"`
	Annotator string `json:"annotator,omitempty" toml:"annotator" yaml:"annotator,omitempty" bson:"annotator,omitempty"`
}

// GlobalID qualifies a local id with the non-empty parts of the key.
func (k DocKey) GlobalID(local string) string {
	parts := make([]string, 0, 5)
	for _, p := range []string{k.Doc, k.Subdoc, k.Stage, k.Annotator} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(append(parts, local), "_")
}

func (k DocKey) String() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{k.Doc, k.Subdoc, k.Stage, k.Annotator} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "/")
}

// Features holds free-form annotation attributes.
type Features map[string]string

// Annotation is implemented by [*Unit], [*Relation] and [*Schema].
type Annotation interface {
	// LocalID returns the document-local identifier.
	LocalID() string
	// AnnoType returns the annotation type tag (e.g. "Segment", "Elaboration").
	AnnoType() string
}

// Unit is an annotation over a span of text.
type Unit struct {
	Origin   Origin
	Type     string
	Span     Span
	Features Features
}

func (u *Unit) LocalID() string  { return u.Origin.LocalID() }
func (u *Unit) AnnoType() string { return u.Type }

// Relation is a directed link between two annotations.
//
// Source and Target are bound from Span by [Document.Resolve]; they are nil
// until then, or when the span refers to an id the document does not hold.
type Relation struct {
	Origin   Origin
	Type     string
	Span     RelSpan
	Source   Annotation
	Target   Annotation
	Features Features
}

func (r *Relation) LocalID() string  { return r.Origin.LocalID() }
func (r *Relation) AnnoType() string { return r.Type }

// Schema groups other annotations. Schemas whose type is not
// [DefaultSchemaType] are composite discourse units.
type Schema struct {
	Origin    Origin
	Type      string
	Units     []string
	Relations []string
	Schemas   []string
	Features  Features
}

func (s *Schema) LocalID() string  { return s.Origin.LocalID() }
func (s *Schema) AnnoType() string { return s.Type }

// Members returns the local ids of all members: units, then relations, then
// schemas.
func (s *Schema) Members() []string {
	out := make([]string, 0, len(s.Units)+len(s.Relations)+len(s.Schemas))
	out = append(out, s.Units...)
	out = append(out, s.Relations...)
	return append(out, s.Schemas...)
}

// IsCDU reports whether the schema is a real composite unit rather than a
// default placeholder.
func (s *Schema) IsCDU() bool { return s.Type != DefaultSchemaType }
