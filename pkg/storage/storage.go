// Package storage archives analysis results for later retrieval.
//
// This package defines the [Store] interface for record storage, with
// implementations for different backends:
//   - memory: In-memory storage for development/testing
//   - mongo: MongoDB-backed storage for the API server
//   - file: File-based storage for single-user setups
//
// # Records
//
// A [Record] captures one pipeline run: the document it ran on (in its JSON
// wire form, so it can be re-imported), the options that changed the
// outcome, and the analysis (heads, canonical order, strip report).
//
// # Usage
//
//	store := storage.NewMemoryStore()
//	rec, err := storage.NewRecord(doc, result, opts)
//	if err != nil {
//	    return err
//	}
//	if err := store.Save(ctx, rec); err != nil {
//	    return err
//	}
//	recs, err := store.List(ctx, storage.Filter{Doc: "pilot14"})
package storage

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/discograph/pkg/annotation"
	docio "github.com/matzehuels/discograph/pkg/io"
	"github.com/matzehuels/discograph/pkg/pipeline"
)

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidRecord is returned when a record cannot be stored.
	ErrInvalidRecord = errors.New("invalid record")
)

// DefaultListLimit caps List results when Filter.Limit is zero.
const DefaultListLimit = 100

// Head pairs a CDU with its recursive head. Heads are stored as a list
// rather than a map because unit ids may contain dots.
type Head struct {
	CDU  string `json:"cdu" bson:"cdu"`
	Head string `json:"head" bson:"head"`
}

// Record is one archived pipeline run.
type Record struct {
	ID         string            `json:"id" bson:"_id"`
	Key        annotation.DocKey `json:"key" bson:"key"`
	DocHash    string            `json:"doc_hash" bson:"doc_hash"`
	Sloppy     bool              `json:"sloppy" bson:"sloppy"`
	Policy     string            `json:"policy" bson:"policy"`
	Heads      []Head            `json:"heads" bson:"heads"`
	Order      []string          `json:"order" bson:"order"`
	Removed    []string          `json:"removed" bson:"removed"`
	Rewired    []string          `json:"rewired" bson:"rewired"`
	Dropped    []string          `json:"dropped" bson:"dropped"`
	Unresolved []string          `json:"unresolved" bson:"unresolved"`
	Document   []byte            `json:"document" bson:"document"`
	CreatedAt  time.Time         `json:"created_at" bson:"created_at"`
}

// NewRecord builds a record for a run of the pipeline on doc. opts must be
// the options res was produced with.
func NewRecord(doc *annotation.Document, res *pipeline.Result, opts pipeline.Options) (*Record, error) {
	if res == nil || res.Analysis == nil {
		return nil, fmt.Errorf("%w: result has no analysis", ErrInvalidRecord)
	}
	data, err := docio.EncodeDocument(doc, docio.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	a := res.Analysis
	heads := make([]Head, 0, len(a.Heads))
	for cdu, hd := range a.Heads {
		heads = append(heads, Head{CDU: cdu, Head: hd})
	}
	slices.SortFunc(heads, func(x, y Head) int { return cmp.Compare(x.CDU, y.CDU) })

	policy := opts.Unresolved
	if policy == "" {
		policy = pipeline.DefaultUnresolved
	}
	return &Record{
		ID:         uuid.NewString(),
		Key:        res.Key,
		DocHash:    res.DocHash,
		Sloppy:     opts.Sloppy,
		Policy:     policy,
		Heads:      heads,
		Order:      a.Order,
		Removed:    a.Removed,
		Rewired:    a.Rewired,
		Dropped:    a.Dropped,
		Unresolved: a.Unresolved,
		Document:   data,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// Decode re-imports the archived document.
func (r *Record) Decode() (*annotation.Document, error) {
	return docio.DecodeDocument(r.Document, docio.FormatJSON)
}

// HeadMap returns the heads as a map from CDU to head.
func (r *Record) HeadMap() map[string]string {
	m := make(map[string]string, len(r.Heads))
	for _, h := range r.Heads {
		m[h.CDU] = h.Head
	}
	return m
}

func (r *Record) validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}
	if err := uuid.Validate(r.ID); err != nil {
		return fmt.Errorf("%w: id %q: %v", ErrInvalidRecord, r.ID, err)
	}
	if r.Key.Doc == "" {
		return fmt.Errorf("%w: %s has no document name", ErrInvalidRecord, r.ID)
	}
	return nil
}

// Filter narrows List results. Zero fields match everything.
type Filter struct {
	Doc     string // Document name (DocKey.Doc)
	DocHash string
	Limit   int // Zero means DefaultListLimit
}

func (f Filter) limit() int {
	if f.Limit <= 0 {
		return DefaultListLimit
	}
	return f.Limit
}

func (f Filter) match(r *Record) bool {
	return (f.Doc == "" || r.Key.Doc == f.Doc) && (f.DocHash == "" || r.DocHash == f.DocHash)
}

// Store is the interface for record storage backends.
type Store interface {
	// Save inserts or replaces the record with r.ID.
	Save(ctx context.Context, r *Record) error

	// Get retrieves a record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns matching records, newest first.
	List(ctx context.Context, f Filter) ([]*Record, error)

	// Delete removes a record.
	// Returns ErrNotFound if the record doesn't exist.
	Delete(ctx context.Context, id string) error

	// Close releases the backend's resources.
	Close(ctx context.Context) error
}

// newestFirst orders records by creation time, newest first, then by id.
func newestFirst(a, b *Record) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
