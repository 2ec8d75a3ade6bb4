package hypergraph

import (
	"fmt"
	"slices"

	"github.com/matzehuels/discograph/pkg/annotation"
)

// Kind classifies nodes and hyperedges.
type Kind int

const (
	// KindEDU is an elementary discourse unit. EDUs are nodes only.
	KindEDU Kind = iota
	// KindRelation is a relation instance: a node (so other relations can
	// point at it) and a two-member hyperedge (source, target).
	KindRelation
	// KindCDU is a composite discourse unit: a node (so it can be pointed
	// at or nested) and a hyperedge over its members.
	KindCDU
)

func (k Kind) String() string {
	switch k {
	case KindEDU:
		return "EDU"
	case KindRelation:
		return "rel"
	case KindCDU:
		return "CDU"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Node is a vertex of the hypergraph. The annotation is owned by the backing
// document and only borrowed here.
type Node struct {
	ID         string
	Kind       Kind
	Annotation annotation.Annotation
}

// Hyperedge connects any number of nodes. For relations Members is the
// ordered pair (source, target); for CDUs it is the member set in
// annotation order.
type Hyperedge struct {
	ID         string
	Kind       Kind
	Annotation annotation.Annotation
	Members    []string
}

// Store holds nodes, hyperedges, and the membership links between them.
//
// Relations and CDUs are stored twice under the same id, once as a node and
// once as a hyperedge. [Store.Mirror] maps between the two forms.
//
// The zero value is not usable; use [NewStore]. A Store is not safe for
// concurrent use.
type Store struct {
	nodes     map[string]*Node
	edges     map[string]*Hyperedge
	links     map[string][]string // node id -> ids of hyperedges listing it
	nodeOrder []string
	edgeOrder []string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		nodes: make(map[string]*Node),
		edges: make(map[string]*Hyperedge),
		links: make(map[string][]string),
	}
}

// AddNode inserts a node. It returns ErrDuplicateID if the id is taken by a
// node, or by a hyperedge of a different kind.
func (s *Store) AddNode(id string, kind Kind, anno annotation.Annotation) error {
	if _, ok := s.nodes[id]; ok {
		return idErr("add node", id, ErrDuplicateID)
	}
	if e, ok := s.edges[id]; ok && e.Kind != kind {
		return idErr("add node", id, ErrDuplicateID)
	}
	s.nodes[id] = &Node{ID: id, Kind: kind, Annotation: anno}
	s.nodeOrder = append(s.nodeOrder, id)
	return nil
}

// AddHyperedge inserts a hyperedge and links it to each member. Members must
// already be nodes. Only relations and CDUs have a hyperedge form.
func (s *Store) AddHyperedge(id string, kind Kind, members []string, anno annotation.Annotation) error {
	if kind == KindEDU {
		return idErr("add hyperedge", id, ErrWrongKind)
	}
	if _, ok := s.edges[id]; ok {
		return idErr("add hyperedge", id, ErrDuplicateID)
	}
	if n, ok := s.nodes[id]; ok && n.Kind != kind {
		return idErr("add hyperedge", id, ErrDuplicateID)
	}
	for _, m := range members {
		if _, ok := s.nodes[m]; !ok {
			return idErr("add hyperedge", id, fmt.Errorf("%w %s", ErrUnknownMember, m))
		}
	}
	s.edges[id] = &Hyperedge{ID: id, Kind: kind, Annotation: anno, Members: slices.Clone(members)}
	s.edgeOrder = append(s.edgeOrder, id)
	s.link(id, members)
	return nil
}

// SetMembers replaces the member list of a hyperedge in place, moving its
// links from the old members to the new ones.
func (s *Store) SetMembers(id string, members []string) error {
	e, ok := s.edges[id]
	if !ok {
		return idErr("set members", id, ErrNotFound)
	}
	for _, m := range members {
		if _, ok := s.nodes[m]; !ok {
			return idErr("set members", id, fmt.Errorf("%w %s", ErrUnknownMember, m))
		}
	}
	s.unlink(id, e.Members)
	e.Members = slices.Clone(members)
	s.link(id, members)
	return nil
}

// RemoveHyperedge deletes a hyperedge and prunes it from its members' links.
func (s *Store) RemoveHyperedge(id string) error {
	e, ok := s.edges[id]
	if !ok {
		return idErr("remove hyperedge", id, ErrNotFound)
	}
	s.unlink(id, e.Members)
	delete(s.edges, id)
	s.edgeOrder = slices.DeleteFunc(s.edgeOrder, func(x string) bool { return x == id })
	return nil
}

// RemoveNode deletes a node. It returns ErrStillLinked if a hyperedge still
// lists the node; callers must rewire or remove those hyperedges first.
func (s *Store) RemoveNode(id string) error {
	if _, ok := s.nodes[id]; !ok {
		return idErr("remove node", id, ErrNotFound)
	}
	if len(s.links[id]) > 0 {
		return idErr("remove node", id, ErrStillLinked)
	}
	delete(s.nodes, id)
	delete(s.links, id)
	s.nodeOrder = slices.DeleteFunc(s.nodeOrder, func(x string) bool { return x == id })
	return nil
}

func (s *Store) link(edge string, members []string) {
	for _, m := range members {
		if !slices.Contains(s.links[m], edge) {
			s.links[m] = append(s.links[m], edge)
		}
	}
}

func (s *Store) unlink(edge string, members []string) {
	for _, m := range members {
		s.links[m] = slices.DeleteFunc(s.links[m], func(x string) bool { return x == edge })
	}
}

// HasNode reports whether id is a node.
func (s *Store) HasNode(id string) bool {
	_, ok := s.nodes[id]
	return ok
}

// HasHyperedge reports whether id is a hyperedge.
func (s *Store) HasHyperedge(id string) bool {
	_, ok := s.edges[id]
	return ok
}

// KindOf returns the kind of a node or hyperedge.
func (s *Store) KindOf(id string) (Kind, error) {
	if n, ok := s.nodes[id]; ok {
		return n.Kind, nil
	}
	if e, ok := s.edges[id]; ok {
		return e.Kind, nil
	}
	return 0, idErr("kind", id, ErrNotFound)
}

// AnnotationOf returns the annotation behind a node or hyperedge.
func (s *Store) AnnotationOf(id string) (annotation.Annotation, error) {
	if n, ok := s.nodes[id]; ok {
		return n.Annotation, nil
	}
	if e, ok := s.edges[id]; ok {
		return e.Annotation, nil
	}
	return nil, idErr("annotation", id, ErrNotFound)
}

// MembersOf returns a copy of a hyperedge's member list.
func (s *Store) MembersOf(id string) ([]string, error) {
	e, ok := s.edges[id]
	if !ok {
		return nil, idErr("members", id, ErrNotFound)
	}
	return slices.Clone(e.Members), nil
}

// LinksOf returns the ids of the hyperedges that list a node as a member, in
// the order they were linked.
func (s *Store) LinksOf(id string) ([]string, error) {
	if _, ok := s.nodes[id]; !ok {
		return nil, idErr("links", id, ErrNotFound)
	}
	return slices.Clone(s.links[id]), nil
}

// Mirror maps a relation or CDU between its node and hyperedge forms. Both
// forms share an id, so the result equals the input when the pairing holds.
// EDUs have no mirror.
func (s *Store) Mirror(id string) (string, error) {
	kind, err := s.KindOf(id)
	if err != nil {
		return "", err
	}
	if kind == KindEDU {
		return "", idErr("mirror", id, ErrNoMirror)
	}
	if !s.HasNode(id) || !s.HasHyperedge(id) {
		return "", idErr("mirror", id, ErrNoMirror)
	}
	return id, nil
}

// Node returns the node with the given id.
func (s *Store) Node(id string) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Hyperedge returns the hyperedge with the given id.
func (s *Store) Hyperedge(id string) (*Hyperedge, bool) {
	e, ok := s.edges[id]
	return e, ok
}

// Nodes returns node ids in insertion order.
func (s *Store) Nodes() []string { return slices.Clone(s.nodeOrder) }

// Hyperedges returns hyperedge ids in insertion order.
func (s *Store) Hyperedges() []string { return slices.Clone(s.edgeOrder) }

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int { return len(s.nodes) }

// HyperedgeCount returns the number of hyperedges.
func (s *Store) HyperedgeCount() int { return len(s.edges) }

// Clone returns an independent copy. Annotations are shared with s.
func (s *Store) Clone() *Store {
	out := &Store{
		nodes:     make(map[string]*Node, len(s.nodes)),
		edges:     make(map[string]*Hyperedge, len(s.edges)),
		links:     make(map[string][]string, len(s.links)),
		nodeOrder: slices.Clone(s.nodeOrder),
		edgeOrder: slices.Clone(s.edgeOrder),
	}
	for id, n := range s.nodes {
		c := *n
		out.nodes[id] = &c
	}
	for id, e := range s.edges {
		c := *e
		c.Members = slices.Clone(e.Members)
		out.edges[id] = &c
	}
	for id, l := range s.links {
		out.links[id] = slices.Clone(l)
	}
	return out
}

// rebind replaces every annotation through fn.
func (s *Store) rebind(fn func(annotation.Annotation) annotation.Annotation) {
	for _, n := range s.nodes {
		n.Annotation = fn(n.Annotation)
	}
	for _, e := range s.edges {
		e.Annotation = fn(e.Annotation)
	}
}

// Validate checks the store's internal consistency: hyperedge members are
// nodes, the link index matches the member lists, and every relation or CDU
// hyperedge has a node of the same kind.
func (s *Store) Validate() error {
	for _, id := range s.edgeOrder {
		e := s.edges[id]
		if n, ok := s.nodes[id]; !ok || n.Kind != e.Kind {
			return idErr("validate", id, ErrNoMirror)
		}
		if e.Kind == KindRelation && len(e.Members) != 2 {
			return idErr("validate", id, fmt.Errorf("relation has %d members", len(e.Members)))
		}
		for _, m := range e.Members {
			if _, ok := s.nodes[m]; !ok {
				return idErr("validate", id, fmt.Errorf("%w %s", ErrUnknownMember, m))
			}
			if !slices.Contains(s.links[m], id) {
				return idErr("validate", id, fmt.Errorf("member %s not linked", m))
			}
		}
	}
	for node, edges := range s.links {
		for _, id := range edges {
			e, ok := s.edges[id]
			if !ok || !slices.Contains(e.Members, node) {
				return idErr("validate", node, fmt.Errorf("stale link to %s", id))
			}
		}
	}
	return nil
}
