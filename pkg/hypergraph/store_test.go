package hypergraph

import (
	"errors"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	for _, id := range []string{"e1", "e2", "e3"} {
		if err := s.AddNode(id, KindEDU, nil); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	if err := s.AddNode("r1", KindRelation, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.AddNode("c1", KindCDU, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.AddHyperedge("r1", KindRelation, []string{"e1", "e2"}, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.AddHyperedge("c1", KindCDU, []string{"e1", "e2", "r1"}, nil); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestStoreAddErrors(t *testing.T) {
	tests := []struct {
		name string
		add  func(*Store) error
		want error
	}{
		{
			name: "duplicate node",
			add:  func(s *Store) error { return s.AddNode("e1", KindEDU, nil) },
			want: ErrDuplicateID,
		},
		{
			name: "duplicate hyperedge",
			add:  func(s *Store) error { return s.AddHyperedge("r1", KindRelation, []string{"e2", "e3"}, nil) },
			want: ErrDuplicateID,
		},
		{
			name: "hyperedge kind clashes with node",
			add:  func(s *Store) error { return s.AddHyperedge("e3", KindCDU, []string{"e1"}, nil) },
			want: ErrDuplicateID,
		},
		{
			name: "unknown member",
			add: func(s *Store) error {
				if err := s.AddNode("r2", KindRelation, nil); err != nil {
					return err
				}
				return s.AddHyperedge("r2", KindRelation, []string{"e1", "missing"}, nil)
			},
			want: ErrUnknownMember,
		},
		{
			name: "EDU hyperedge",
			add:  func(s *Store) error { return s.AddHyperedge("x", KindEDU, nil, nil) },
			want: ErrWrongKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			err := tt.add(s)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			var idErr *IDError
			if !errors.As(err, &idErr) || idErr.ID == "" {
				t.Errorf("error %v does not name an id", err)
			}
		})
	}
}

func TestStoreMirror(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []string{"r1", "c1"} {
		got, err := s.Mirror(id)
		if err != nil || got != id {
			t.Errorf("Mirror(%s) = %q, %v; want %q", id, got, err, id)
		}
	}
	if _, err := s.Mirror("e1"); !errors.Is(err, ErrNoMirror) {
		t.Errorf("Mirror(e1) error = %v, want ErrNoMirror", err)
	}
	if _, err := s.Mirror("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Mirror(nope) error = %v, want ErrNotFound", err)
	}

	// A relation node whose hyperedge was removed has lost its mirror.
	if err := s.RemoveHyperedge("r1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Mirror("r1"); !errors.Is(err, ErrNoMirror) {
		t.Errorf("Mirror(r1) after removal error = %v, want ErrNoMirror", err)
	}
}

func TestStoreQueriesNotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.KindOf("x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("KindOf error = %v", err)
	}
	if _, err := s.AnnotationOf("x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("AnnotationOf error = %v", err)
	}
	if _, err := s.MembersOf("e1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("MembersOf(e1) error = %v", err)
	}
	if _, err := s.LinksOf("x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LinksOf error = %v", err)
	}
}

func TestStoreLinks(t *testing.T) {
	s := newTestStore(t)

	links, err := s.LinksOf("e1")
	if err != nil {
		t.Fatal(err)
	}
	if !equalIDs(links, []string{"r1", "c1"}) {
		t.Errorf("LinksOf(e1) = %v, want [r1 c1]", links)
	}
	links, _ = s.LinksOf("e3")
	if len(links) != 0 {
		t.Errorf("LinksOf(e3) = %v, want none", links)
	}
}

func TestStoreSetMembers(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetMembers("r1", []string{"e3", "e2"}); err != nil {
		t.Fatalf("SetMembers: %v", err)
	}
	members, _ := s.MembersOf("r1")
	if !equalIDs(members, []string{"e3", "e2"}) {
		t.Errorf("members = %v, want [e3 e2]", members)
	}
	links, _ := s.LinksOf("e1")
	if !equalIDs(links, []string{"c1"}) {
		t.Errorf("LinksOf(e1) = %v, want [c1]", links)
	}
	links, _ = s.LinksOf("e3")
	if !equalIDs(links, []string{"r1"}) {
		t.Errorf("LinksOf(e3) = %v, want [r1]", links)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	if err := s.SetMembers("r1", []string{"e1", "ghost"}); !errors.Is(err, ErrUnknownMember) {
		t.Errorf("SetMembers unknown error = %v", err)
	}
	members, _ = s.MembersOf("r1")
	if !equalIDs(members, []string{"e3", "e2"}) {
		t.Errorf("failed SetMembers changed members to %v", members)
	}
	if err := s.SetMembers("nope", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetMembers(nope) error = %v", err)
	}
}

func TestStoreRemove(t *testing.T) {
	s := newTestStore(t)

	if err := s.RemoveNode("e1"); !errors.Is(err, ErrStillLinked) {
		t.Fatalf("RemoveNode(e1) error = %v, want ErrStillLinked", err)
	}
	if err := s.RemoveHyperedge("c1"); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveNode("c1"); err != nil {
		t.Fatal(err)
	}
	if s.HasNode("c1") || s.HasHyperedge("c1") {
		t.Error("c1 still present")
	}
	if err := s.RemoveHyperedge("c1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second RemoveHyperedge error = %v", err)
	}
	links, _ := s.LinksOf("e1")
	if !equalIDs(links, []string{"r1"}) {
		t.Errorf("LinksOf(e1) = %v, want [r1]", links)
	}
	if got := s.Nodes(); !equalIDs(got, []string{"e1", "e2", "e3", "r1"}) {
		t.Errorf("Nodes() = %v", got)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestStoreClone(t *testing.T) {
	s := newTestStore(t)
	c := s.Clone()

	if err := c.SetMembers("c1", []string{"e3"}); err != nil {
		t.Fatal(err)
	}
	members, _ := s.MembersOf("c1")
	if !equalIDs(members, []string{"e1", "e2", "r1"}) {
		t.Errorf("original members = %v after clone mutation", members)
	}
	links, _ := s.LinksOf("e3")
	if len(links) != 0 {
		t.Errorf("original LinksOf(e3) = %v after clone mutation", links)
	}
	if c.NodeCount() != s.NodeCount() || c.HyperedgeCount() != s.HyperedgeCount() {
		t.Error("clone counts differ")
	}
}

func TestStoreValidateMissingMirror(t *testing.T) {
	s := NewStore()
	_ = s.AddNode("e1", KindEDU, nil)
	_ = s.AddNode("e2", KindEDU, nil)
	// A hyperedge inserted without its node form.
	if err := s.AddHyperedge("r1", KindRelation, []string{"e1", "e2"}, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Validate(); !errors.Is(err, ErrNoMirror) {
		t.Errorf("Validate error = %v, want ErrNoMirror", err)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindEDU, "EDU"},
		{KindRelation, "rel"},
		{KindCDU, "CDU"},
		{Kind(9), "Kind(9)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}
