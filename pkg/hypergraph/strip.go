package hypergraph

import (
	"fmt"
	"slices"

	"github.com/matzehuels/discograph/pkg/annotation"
)

// UnresolvedPolicy decides what happens to CDUs without a head during
// [Graph.StripCDUs].
type UnresolvedPolicy int

const (
	// KeepUnresolved leaves headless CDUs and the relations touching them in
	// place. Resolved CDUs nested in them are replaced by their heads.
	KeepUnresolved UnresolvedPolicy = iota
	// DropUnresolved removes headless CDUs and every relation touching them.
	DropUnresolved
)

func (p UnresolvedPolicy) String() string {
	switch p {
	case KeepUnresolved:
		return "keep"
	case DropUnresolved:
		return "drop"
	}
	return fmt.Sprintf("UnresolvedPolicy(%d)", int(p))
}

// ParseUnresolvedPolicy parses "keep" or "drop".
func ParseUnresolvedPolicy(s string) (UnresolvedPolicy, error) {
	switch s {
	case "", "keep":
		return KeepUnresolved, nil
	case "drop":
		return DropUnresolved, nil
	}
	return 0, fmt.Errorf("unknown unresolved policy %q (want keep or drop)", s)
}

// StripOptions configures CDU elimination.
type StripOptions struct {
	// Sloppy resolves multiheaded CDUs by canonical order instead of failing.
	Sloppy bool
	// Unresolved handles CDUs without a head.
	Unresolved UnresolvedPolicy
}

// StripReport summarizes a call to [Graph.StripCDUs].
type StripReport struct {
	// Heads maps each removed CDU to the unit that replaced it.
	Heads map[string]string
	// Removed lists the CDUs deleted from graph and document.
	Removed []string
	// Rewired lists relations whose endpoints were redirected to heads.
	Rewired []string
	// Dropped lists relations deleted because substitution collapsed their
	// endpoints onto one unit, because they touched a dropped headless CDU,
	// or because they pointed at another dropped relation.
	Dropped []string
	// Unresolved lists headless CDUs, whether kept or dropped.
	Unresolved []string
}

// Changed reports whether the strip modified anything.
func (r *StripReport) Changed() bool {
	return len(r.Removed) > 0 || len(r.Rewired) > 0 || len(r.Dropped) > 0
}

// WithoutCDUs returns a stripped copy of the graph, leaving g untouched.
func (g *Graph) WithoutCDUs(opts StripOptions) (*Graph, *StripReport, error) {
	c := g.Clone()
	report, err := c.StripCDUs(opts)
	if err != nil {
		return nil, nil, err
	}
	return c, report, nil
}

// stripPlan is the full set of changes StripCDUs will make, computed before
// anything is touched.
type stripPlan struct {
	heads      map[string]string
	remove     []string            // CDUs to delete
	drop       []string            // relations to delete
	rewire     map[string][]string // relation -> new members
	rewireIDs  []string
	keepCDUs   map[string][]string // kept headless CDU -> new members
	keepIDs    []string
	unresolved []string

	// Annotations are captured at plan time; the store forgets removed ids.
	headAnno    map[annotation.Annotation]annotation.Annotation
	droppedAnno map[annotation.Annotation]bool
	removedAnno map[annotation.Annotation]bool
}

// StripCDUs removes every CDU from the graph and the document. Each relation
// endpoint that named a CDU is redirected to the CDU's recursive head (see
// [Graph.RecursiveCDUHeads]), in the store and on the backing relation
// annotation alike.
//
// A relation whose two endpoints collapse onto the same unit is dropped, as
// is any relation pointing at a dropped relation. CDUs without a head are
// handled per [StripOptions.Unresolved].
//
// The changes are planned in full before the first mutation: on error the
// graph and document are unchanged. On a graph without CDUs this is a no-op.
func (g *Graph) StripCDUs(opts StripOptions) (*StripReport, error) {
	plan, err := g.planStrip(opts)
	if err != nil {
		return nil, err
	}
	if err := g.applyStrip(plan); err != nil {
		return nil, fmt.Errorf("strip CDUs: %w", err)
	}
	g.stripDocument(plan)

	return &StripReport{
		Heads:      plan.heads,
		Removed:    plan.remove,
		Rewired:    plan.rewireIDs,
		Dropped:    plan.drop,
		Unresolved: plan.unresolved,
	}, nil
}

func (g *Graph) planStrip(opts StripOptions) (*stripPlan, error) {
	heads, err := g.RecursiveCDUHeads(opts.Sloppy)
	if err != nil {
		return nil, err
	}
	p := &stripPlan{
		heads:    heads,
		rewire:   make(map[string][]string),
		keepCDUs: make(map[string][]string),
	}

	removed := make(map[string]bool)
	unresolved := make(map[string]bool)
	for _, c := range g.CDUs() {
		if _, ok := heads[c]; ok {
			removed[c] = true
			p.remove = append(p.remove, c)
			continue
		}
		unresolved[c] = true
		p.unresolved = append(p.unresolved, c)
		if opts.Unresolved == DropUnresolved {
			removed[c] = true
			p.remove = append(p.remove, c)
		}
	}
	subst := func(id string) string {
		if hd, ok := heads[id]; ok {
			return hd
		}
		return id
	}

	// Seed the drop set, then close it over relations pointing at dropped
	// relations.
	dropped := make(map[string]bool)
	for _, r := range g.Relations() {
		members := g.edges[r].Members
		touchesCDU := slices.ContainsFunc(members, func(m string) bool { return removed[m] })
		if !touchesCDU {
			continue
		}
		if opts.Unresolved == DropUnresolved && slices.ContainsFunc(members, func(m string) bool { return unresolved[m] }) {
			dropped[r] = true
			continue
		}
		if subst(members[0]) == subst(members[1]) {
			dropped[r] = true
		}
	}
	for changed := true; changed; {
		changed = false
		for _, r := range g.Relations() {
			if dropped[r] {
				continue
			}
			if slices.ContainsFunc(g.edges[r].Members, func(m string) bool { return dropped[m] }) {
				dropped[r] = true
				changed = true
			}
		}
	}

	for _, r := range g.Relations() {
		if dropped[r] {
			p.drop = append(p.drop, r)
			continue
		}
		members := g.edges[r].Members
		if !slices.ContainsFunc(members, func(m string) bool { return removed[m] }) {
			continue
		}
		next := make([]string, len(members))
		for i, m := range members {
			next[i] = subst(m)
		}
		p.rewire[r] = next
		p.rewireIDs = append(p.rewireIDs, r)
	}

	for _, c := range g.CDUs() {
		if removed[c] {
			continue
		}
		members := g.edges[c].Members
		if !slices.ContainsFunc(members, func(m string) bool { return removed[m] || dropped[m] }) {
			continue
		}
		var next []string
		for _, m := range members {
			if dropped[m] {
				continue
			}
			if s := subst(m); !slices.Contains(next, s) {
				next = append(next, s)
			}
		}
		p.keepCDUs[c] = next
		p.keepIDs = append(p.keepIDs, c)
	}

	for id, members := range p.rewire {
		for _, m := range members {
			if !g.HasNode(m) {
				return nil, idErr("strip", id, fmt.Errorf("%w %s", ErrUnknownMember, m))
			}
		}
	}

	p.headAnno = make(map[annotation.Annotation]annotation.Annotation, len(heads))
	for c, hd := range heads {
		if ca, ha := g.nodes[c].Annotation, g.nodes[hd].Annotation; ca != nil && ha != nil {
			p.headAnno[ca] = ha
		}
	}
	p.droppedAnno = annotationSet(g, p.drop)
	p.removedAnno = annotationSet(g, p.remove)
	return p, nil
}

func annotationSet(g *Graph, ids []string) map[annotation.Annotation]bool {
	out := make(map[annotation.Annotation]bool, len(ids))
	for _, id := range ids {
		if a := g.nodes[id].Annotation; a != nil {
			out[a] = true
		}
	}
	return out
}

func (g *Graph) applyStrip(p *stripPlan) error {
	for _, r := range p.rewireIDs {
		if err := g.SetMembers(r, p.rewire[r]); err != nil {
			return err
		}
	}
	for _, c := range p.keepIDs {
		if err := g.SetMembers(c, p.keepCDUs[c]); err != nil {
			return err
		}
	}
	gone := slices.Concat(p.drop, p.remove)
	for _, id := range gone {
		if err := g.RemoveHyperedge(id); err != nil {
			return err
		}
	}
	for _, id := range gone {
		if err := g.RemoveNode(id); err != nil {
			return err
		}
	}
	return nil
}

// stripDocument mirrors an applied plan onto the backing document.
func (g *Graph) stripDocument(p *stripPlan) {
	doc := g.Doc
	if doc == nil {
		return
	}

	doc.Relations = slices.DeleteFunc(doc.Relations, func(r *annotation.Relation) bool { return p.droppedAnno[r] })
	for _, r := range doc.Relations {
		src, tgt := r.Source, r.Target
		if h, ok := p.headAnno[src]; ok {
			src = h
		}
		if h, ok := p.headAnno[tgt]; ok {
			tgt = h
		}
		if src != r.Source || tgt != r.Target {
			doc.SetEndpoints(r, src, tgt)
		}
	}

	doc.Schemas = slices.DeleteFunc(doc.Schemas, func(s *annotation.Schema) bool { return p.removedAnno[s] })
	for _, s := range doc.Schemas {
		rewriteSchemaMembers(doc, s, p.headAnno, p.droppedAnno)
	}
	doc.Resolve()
}

// rewriteSchemaMembers replaces removed CDU members of a kept schema with
// their heads and forgets dropped relations.
func rewriteSchemaMembers(doc *annotation.Document, s *annotation.Schema, heads map[annotation.Annotation]annotation.Annotation, dropped map[annotation.Annotation]bool) {
	var units, rels, schemas []string
	add := func(a annotation.Annotation) {
		id := a.LocalID()
		switch a.(type) {
		case *annotation.Unit:
			if !slices.Contains(units, id) {
				units = append(units, id)
			}
		case *annotation.Relation:
			if !slices.Contains(rels, id) {
				rels = append(rels, id)
			}
		case *annotation.Schema:
			if !slices.Contains(schemas, id) {
				schemas = append(schemas, id)
			}
		}
	}
	changed := false
	for _, id := range s.Members() {
		a, ok := doc.Lookup(id)
		if !ok {
			continue
		}
		if dropped[a] {
			changed = true
			continue
		}
		if h, ok := heads[a]; ok {
			a = h
			changed = true
		}
		add(a)
	}
	if changed {
		s.Units, s.Relations, s.Schemas = units, rels, schemas
	}
}
