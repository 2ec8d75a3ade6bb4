package hypergraph

import "slices"

// CDUHead returns the head of a CDU: the only member that is not a relation
// and is not the target of a relation whose source is also a member.
//
// The id may name either form of the CDU. ok is false when the CDU has no
// head (no members, or, in strict mode, members forming a relation cycle);
// that is an annotation problem, not an error.
//
// With several candidates, strict mode fails with [*MultiheadedCDUError].
// Sloppy mode picks the canonically first candidate (see [Graph.Compare]),
// and when every member is pointed to from inside the CDU it falls back to
// all non-relation members.
//
// A CDU head is returned in its node form.
func (g *Graph) CDUHead(cdu string, sloppy bool) (head string, ok bool, err error) {
	if !g.IsCDU(cdu) {
		if _, err := g.KindOf(cdu); err != nil {
			return "", false, err
		}
		return "", false, idErr("cdu head", cdu, ErrWrongKind)
	}
	edge, err := g.Mirror(cdu)
	if err != nil {
		return "", false, err
	}
	members := g.edges[edge].Members

	var candidates []string
	for _, m := range members {
		if g.IsRelation(m) || g.pointedToWithin(edge, m, members) || slices.Contains(candidates, m) {
			continue
		}
		candidates = append(candidates, m)
	}

	if sloppy && len(candidates) == 0 {
		for _, m := range members {
			if !g.IsRelation(m) && !slices.Contains(candidates, m) {
				candidates = append(candidates, m)
			}
		}
	}

	switch {
	case len(candidates) == 0:
		return "", false, nil
	case len(candidates) == 1 || sloppy:
		head = g.CanonicalOrder(candidates)[0]
		if g.IsCDU(head) {
			if head, err = g.Mirror(head); err != nil {
				return "", false, err
			}
		}
		return head, true, nil
	default:
		return "", false, &MultiheadedCDUError{CDU: cdu, Candidates: g.CanonicalOrder(candidates)}
	}
}

// pointedToWithin reports whether some relation other than the CDU edge
// itself targets m from a source that is also a member.
func (g *Graph) pointedToWithin(edge, m string, members []string) bool {
	for _, l := range g.links[m] {
		if l == edge {
			continue
		}
		e := g.edges[l]
		if e.Kind != KindRelation || len(e.Members) != 2 {
			continue
		}
		if e.Members[1] == m && slices.Contains(members, e.Members[0]) {
			return true
		}
	}
	return false
}

// RecursiveCDUHeads maps every CDU to its recursive head: the CDU's head, or
// if that is itself a CDU, that CDU's recursive head, and so on down to a
// unit that is not a CDU. CDUs without a head are absent from the map.
//
// Resolution is memoized for the duration of the call. A CDU that contains
// itself transitively fails with [*CyclicNestingError]; a multiheaded CDU in
// strict mode fails with [*MultiheadedCDUError].
func (g *Graph) RecursiveCDUHeads(sloppy bool) (map[string]string, error) {
	r := newHeadResolver(g, sloppy)
	for _, c := range g.CDUs() {
		if _, _, err := r.resolve(c); err != nil {
			return nil, err
		}
	}
	return r.cache, nil
}

// RecursiveCDUHead resolves a single CDU the way [Graph.RecursiveCDUHeads]
// does.
func (g *Graph) RecursiveCDUHead(cdu string, sloppy bool) (string, bool, error) {
	return newHeadResolver(g, sloppy).resolve(cdu)
}

type headResolver struct {
	g      *Graph
	sloppy bool
	cache  map[string]string
	active []string
}

func newHeadResolver(g *Graph, sloppy bool) *headResolver {
	return &headResolver{g: g, sloppy: sloppy, cache: make(map[string]string)}
}

func (r *headResolver) resolve(c string) (string, bool, error) {
	if hd, ok := r.cache[c]; ok {
		return hd, true, nil
	}
	if i := slices.Index(r.active, c); i >= 0 {
		return "", false, &CyclicNestingError{CDU: c, Path: slices.Clone(r.active[i:])}
	}
	r.active = append(r.active, c)
	defer func() { r.active = r.active[:len(r.active)-1] }()

	hd, ok, err := r.g.CDUHead(c, r.sloppy)
	if err != nil || !ok {
		return "", false, err
	}
	if r.g.IsCDU(hd) {
		if hd, ok, err = r.resolve(hd); err != nil || !ok {
			return "", false, err
		}
	}
	r.cache[c] = hd
	return hd, true, nil
}
