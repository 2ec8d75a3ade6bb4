package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/discograph/pkg/annotation"
	"github.com/matzehuels/discograph/pkg/errors"
)

func TestRunCorpus(t *testing.T) {
	var docs []*annotation.Document
	for i := range 5 {
		docs = append(docs, testDoc(fmt.Sprintf("doc%d", i)))
	}

	var calls atomic.Int32
	results, err := NewRunner(nil, nil, nil).RunCorpus(context.Background(), docs, Options{Workers: 2}, func(done, total int) {
		calls.Add(1)
		if total != 5 || done < 1 || done > 5 {
			t.Errorf("progress(%d, %d)", done, total)
		}
	})
	if err != nil {
		t.Fatalf("RunCorpus: %v", err)
	}
	if calls.Load() != 5 {
		t.Errorf("progress called %d times, want 5", calls.Load())
	}
	for i, res := range results {
		if res.Key.Doc != docs[i].Key.Doc {
			t.Errorf("results[%d] is %s, want %s", i, res.Key, docs[i].Key)
		}
	}
}

func TestRunCorpusStopsOnError(t *testing.T) {
	docs := []*annotation.Document{testDoc("a"), multiheadedDoc(), testDoc("b")}

	_, err := NewRunner(nil, nil, nil).RunCorpus(context.Background(), docs, Options{Workers: 1}, nil)
	if !errors.Is(err, errors.ErrCodeMultiheadedCDU) {
		t.Fatalf("error = %v, want MULTIHEADED_CDU", err)
	}
}

func TestCheck(t *testing.T) {
	dup := testDoc("dup")
	dup.Relations = append(dup.Relations, relation("e3", "e1", "e3")) // reuses a unit id

	empty := testDoc("empty")
	empty.Schemas = append(empty.Schemas, cdu("c2"))

	docs := []*annotation.Document{testDoc("clean"), dup, multiheadedDoc(), empty}
	issues, err := NewRunner(nil, nil, nil).Check(context.Background(), docs, Options{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	type want struct {
		doc  string
		unit string
		code errors.Code
		sev  Severity
	}
	wants := []want{
		{"dup", "", errors.ErrCodeDuplicateID, SeverityError},
		{"empty", "empty_t_c2", errors.ErrCodeInvalidDocument, SeverityWarning},
		{"multi", "multi_t_c1", errors.ErrCodeMultiheadedCDU, SeverityError},
	}
	if len(issues) != len(wants) {
		t.Fatalf("got %d issues, want %d: %v", len(issues), len(wants), issues)
	}
	for i, w := range wants {
		got := issues[i]
		if got.Doc.Doc != w.doc || got.Unit != w.unit || got.Code != w.code || got.Severity != w.sev {
			t.Errorf("issue %d = %+v, want %+v", i, got, w)
		}
	}
	if issues[0].Message == "" || issues[0].String() == "" {
		t.Error("issue should describe the problem")
	}
}

func TestCheckSloppyDowngradesMultiheaded(t *testing.T) {
	issues, err := NewRunner(nil, nil, nil).Check(context.Background(), []*annotation.Document{multiheadedDoc()}, Options{Sloppy: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(issues) != 1 || issues[0].Severity != SeverityWarning {
		t.Errorf("issues = %v, want one warning", issues)
	}
}
