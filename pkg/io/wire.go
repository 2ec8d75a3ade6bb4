package io

import (
	"fmt"

	"github.com/matzehuels/discograph/pkg/annotation"
	"github.com/matzehuels/discograph/pkg/errors"
)

type document struct {
	Key       annotation.DocKey `json:"key" toml:"key" yaml:"key"`
	Text      string            `json:"text,omitempty" toml:"text,omitempty" yaml:"text,omitempty"`
	Units     []unit            `json:"units" toml:"units" yaml:"units"`
	Relations []relation        `json:"relations" toml:"relations" yaml:"relations"`
	Schemas   []schema          `json:"schemas,omitempty" toml:"schemas,omitempty" yaml:"schemas,omitempty"`
}

type unit struct {
	ID       string              `json:"id" toml:"id" yaml:"id"`
	Type     string              `json:"type" toml:"type" yaml:"type"`
	Start    int                 `json:"start" toml:"start" yaml:"start"`
	End      int                 `json:"end" toml:"end" yaml:"end"`
	Features annotation.Features `json:"features,omitempty" toml:"features,omitempty" yaml:"features,omitempty"`
}

type relation struct {
	ID       string              `json:"id" toml:"id" yaml:"id"`
	Type     string              `json:"type" toml:"type" yaml:"type"`
	Source   string              `json:"source" toml:"source" yaml:"source"`
	Target   string              `json:"target" toml:"target" yaml:"target"`
	Features annotation.Features `json:"features,omitempty" toml:"features,omitempty" yaml:"features,omitempty"`
}

type schema struct {
	ID        string              `json:"id" toml:"id" yaml:"id"`
	Type      string              `json:"type" toml:"type" yaml:"type"`
	Units     []string            `json:"units,omitempty" toml:"units,omitempty" yaml:"units,omitempty"`
	Relations []string            `json:"relations,omitempty" toml:"relations,omitempty" yaml:"relations,omitempty"`
	Schemas   []string            `json:"schemas,omitempty" toml:"schemas,omitempty" yaml:"schemas,omitempty"`
	Features  annotation.Features `json:"features,omitempty" toml:"features,omitempty" yaml:"features,omitempty"`
}

func toWire(d *annotation.Document) document {
	out := document{
		Key:       d.Key,
		Text:      d.Text,
		Units:     make([]unit, len(d.Units)),
		Relations: make([]relation, len(d.Relations)),
		Schemas:   make([]schema, len(d.Schemas)),
	}
	for i, u := range d.Units {
		out.Units[i] = unit{
			ID:       u.LocalID(),
			Type:     u.Type,
			Start:    u.Span.Start,
			End:      u.Span.End,
			Features: u.Features,
		}
	}
	for i, r := range d.Relations {
		out.Relations[i] = relation{
			ID:       r.LocalID(),
			Type:     r.Type,
			Source:   r.Span.T1,
			Target:   r.Span.T2,
			Features: r.Features,
		}
	}
	for i, s := range d.Schemas {
		out.Schemas[i] = schema{
			ID:        s.LocalID(),
			Type:      s.Type,
			Units:     s.Units,
			Relations: s.Relations,
			Schemas:   s.Schemas,
			Features:  s.Features,
		}
	}
	return out
}

func fromWire(w document) (*annotation.Document, error) {
	d := &annotation.Document{
		Key:       w.Key,
		Text:      w.Text,
		Units:     make([]*annotation.Unit, len(w.Units)),
		Relations: make([]*annotation.Relation, len(w.Relations)),
		Schemas:   make([]*annotation.Schema, len(w.Schemas)),
	}
	for i, u := range w.Units {
		o, err := parseLocalID(u.ID)
		if err != nil {
			return nil, fmt.Errorf("unit %d: %w", i, err)
		}
		if u.End < u.Start {
			return nil, fmt.Errorf("unit %s: span (%d,%d) ends before it starts", u.ID, u.Start, u.End)
		}
		d.Units[i] = &annotation.Unit{
			Origin:   o,
			Type:     u.Type,
			Span:     annotation.Span{Start: u.Start, End: u.End},
			Features: u.Features,
		}
	}
	for i, r := range w.Relations {
		o, err := parseLocalID(r.ID)
		if err != nil {
			return nil, fmt.Errorf("relation %d: %w", i, err)
		}
		if r.Source == "" || r.Target == "" {
			return nil, fmt.Errorf("relation %s: missing endpoint", r.ID)
		}
		d.Relations[i] = &annotation.Relation{
			Origin:   o,
			Type:     r.Type,
			Span:     annotation.RelSpan{T1: r.Source, T2: r.Target},
			Features: r.Features,
		}
	}
	for i, s := range w.Schemas {
		o, err := parseLocalID(s.ID)
		if err != nil {
			return nil, fmt.Errorf("schema %d: %w", i, err)
		}
		typ := s.Type
		if typ == "" {
			typ = annotation.DefaultSchemaType
		}
		d.Schemas[i] = &annotation.Schema{
			Origin:    o,
			Type:      typ,
			Units:     s.Units,
			Relations: s.Relations,
			Schemas:   s.Schemas,
			Features:  s.Features,
		}
	}
	d.Resolve()
	return d, nil
}

// parseLocalID rejects ids with blanks before splitting them.
func parseLocalID(id string) (annotation.Origin, error) {
	if err := errors.ValidateLocalID(id); err != nil {
		return annotation.Origin{}, err
	}
	return annotation.ParseLocalID(id)
}
