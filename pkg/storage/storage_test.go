package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/discograph/pkg/annotation"
	"github.com/matzehuels/discograph/pkg/pipeline"
)

func testDocument(name string) *annotation.Document {
	o := func(d string) annotation.Origin { return annotation.Origin{Author: "t", Date: d} }
	return &annotation.Document{
		Key:  annotation.DocKey{Doc: name},
		Text: "hi there. bye",
		Units: []*annotation.Unit{
			{Origin: o("1"), Type: "Segment", Span: annotation.Span{Start: 0, End: 9}},
			{Origin: o("2"), Type: "Segment", Span: annotation.Span{Start: 10, End: 13}},
			{Origin: o("3"), Type: "Segment", Span: annotation.Span{Start: 13, End: 13}},
		},
		Relations: []*annotation.Relation{
			{Origin: o("4"), Type: "Result", Span: annotation.RelSpan{T1: "t_1", T2: "t_2"}},
			{Origin: o("5"), Type: "Result", Span: annotation.RelSpan{T1: "t_6", T2: "t_3"}},
		},
		Schemas: []*annotation.Schema{
			{Origin: o("6"), Type: "Complex_discourse_unit", Units: []string{"t_1", "t_2"}},
		},
	}
}

func testRecord(t *testing.T, name string) *Record {
	t.Helper()
	doc := testDocument(name)
	opts := pipeline.Options{}
	res, err := pipeline.NewRunner(nil, nil, nil).Execute(context.Background(), doc, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	r, err := NewRecord(doc, res, opts)
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	return r
}

func TestNewRecord(t *testing.T) {
	r := testRecord(t, "pilot")

	if err := uuid.Validate(r.ID); err != nil {
		t.Errorf("ID %q is not a uuid: %v", r.ID, err)
	}
	if r.Key.Doc != "pilot" || r.DocHash == "" || r.Policy != "keep" {
		t.Errorf("record = %+v", r)
	}
	if got := r.HeadMap()["pilot_t_6"]; got != "pilot_t_1" {
		t.Errorf("head of CDU = %q, want pilot_t_1", got)
	}
	if len(r.Rewired) != 1 || r.Rewired[0] != "pilot_t_5" {
		t.Errorf("Rewired = %v", r.Rewired)
	}

	doc, err := r.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(doc.Schemas) != 1 || doc.Key.Doc != "pilot" {
		t.Errorf("decoded document = %+v", doc)
	}
}

func TestNewRecordWithoutAnalysis(t *testing.T) {
	_, err := NewRecord(testDocument("x"), &pipeline.Result{}, pipeline.Options{})
	if !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("error = %v, want ErrInvalidRecord", err)
	}
}

func backends(t *testing.T) map[string]Store {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fs,
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close(ctx)

			a := testRecord(t, "a")
			b := testRecord(t, "b")
			b.CreatedAt = a.CreatedAt.Add(time.Second)
			for _, r := range []*Record{a, b} {
				if err := s.Save(ctx, r); err != nil {
					t.Fatalf("Save: %v", err)
				}
			}

			got, err := s.Get(ctx, a.ID)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Key != a.Key || got.DocHash != a.DocHash || len(got.Heads) != 1 {
				t.Errorf("Get = %+v", got)
			}

			all, err := s.List(ctx, Filter{})
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(all) != 2 || all[0].ID != b.ID {
				t.Errorf("List should return newest first, got %d records", len(all))
			}

			onlyA, err := s.List(ctx, Filter{Doc: "a"})
			if err != nil {
				t.Fatal(err)
			}
			if len(onlyA) != 1 || onlyA[0].ID != a.ID {
				t.Errorf("List(doc=a) = %v", onlyA)
			}

			limited, _ := s.List(ctx, Filter{Limit: 1})
			if len(limited) != 1 {
				t.Errorf("List(limit=1) returned %d", len(limited))
			}

			// Save replaces.
			a.Sloppy = true
			if err := s.Save(ctx, a); err != nil {
				t.Fatal(err)
			}
			if got, _ := s.Get(ctx, a.ID); !got.Sloppy {
				t.Error("Save did not replace the record")
			}

			if err := s.Delete(ctx, a.ID); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := s.Get(ctx, a.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get after Delete = %v, want ErrNotFound", err)
			}
			if err := s.Delete(ctx, a.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("second Delete = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStoreRejectsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			bad := []*Record{
				nil,
				{ID: "../etc/passwd", Key: annotation.DocKey{Doc: "d"}},
				{ID: uuid.NewString()},
			}
			for _, r := range bad {
				if err := s.Save(ctx, r); !errors.Is(err, ErrInvalidRecord) {
					t.Errorf("Save(%+v) = %v, want ErrInvalidRecord", r, err)
				}
			}
		})
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	r := testRecord(t, "a")
	if err := s.Save(ctx, r); err != nil {
		t.Fatal(err)
	}
	r.Order[0] = "mutated"

	got, _ := s.Get(ctx, r.ID)
	if got.Order[0] == "mutated" {
		t.Error("store shares slices with the caller")
	}
}

func TestFileStorePath(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if s.Path() != dir {
		t.Errorf("Path() = %q, want %q", s.Path(), dir)
	}
	if _, err := s.Get(context.Background(), "../x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(../x) = %v, want ErrNotFound", err)
	}
}
