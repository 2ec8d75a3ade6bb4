package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/discograph/pkg/annotation"
	"github.com/matzehuels/discograph/pkg/errors"
)

// memCache is an in-memory cache.Cache that counts hits.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	if ok {
		c.hits++
	}
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func origin(name string) annotation.Origin { return annotation.Origin{Author: "t", Date: name} }

func segment(name string, start, end int) *annotation.Unit {
	return &annotation.Unit{Origin: origin(name), Type: "Segment", Span: annotation.Span{Start: start, End: end}}
}

func relation(name, src, tgt string) *annotation.Relation {
	return &annotation.Relation{Origin: origin(name), Type: "Result", Span: annotation.RelSpan{T1: "t_" + src, T2: "t_" + tgt}}
}

func cdu(name string, units ...string) *annotation.Schema {
	s := &annotation.Schema{Origin: origin(name), Type: "Complex_discourse_unit"}
	for _, u := range units {
		s.Units = append(s.Units, "t_"+u)
	}
	return s
}

// testDoc has c1 = {e1, e2} with e1 → e2 inside and c1 → e3 outside, so c1
// strips to e1.
func testDoc(name string) *annotation.Document {
	return &annotation.Document{
		Key:       annotation.DocKey{Doc: name},
		Text:      "I have wood. Want some? No.",
		Units:     []*annotation.Unit{segment("e1", 0, 12), segment("e2", 13, 23), segment("e3", 24, 27)},
		Relations: []*annotation.Relation{relation("r1", "e1", "e2"), relation("r2", "c1", "e3")},
		Schemas:   []*annotation.Schema{cdu("c1", "e1", "e2")},
	}
}

// multiheadedDoc has a CDU whose two members are both heads.
func multiheadedDoc() *annotation.Document {
	return &annotation.Document{
		Key:       annotation.DocKey{Doc: "multi"},
		Units:     []*annotation.Unit{segment("e1", 0, 5), segment("e2", 6, 10), segment("e3", 11, 15)},
		Relations: []*annotation.Relation{relation("r1", "c1", "e3")},
		Schemas:   []*annotation.Schema{cdu("c1", "e1", "e2")},
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Empty options should pass: %v", err)
	}

	if opts.Unresolved != DefaultUnresolved {
		t.Errorf("Unresolved should be %q, got %q", DefaultUnresolved, opts.Unresolved)
	}
	if opts.Workers != DefaultWorkers {
		t.Errorf("Workers should be %d, got %d", DefaultWorkers, opts.Workers)
	}
	if opts.CacheTTL != DefaultCacheTTL {
		t.Errorf("CacheTTL should be %v, got %v", DefaultCacheTTL, opts.CacheTTL)
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"unknown policy", Options{Unresolved: "ignore"}},
		{"negative workers", Options{Workers: -1}},
		{"bad format", Options{Formats: []string{"gif"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if err == nil {
				t.Fatal("expected error")
			}
			if code := errors.GetCode(err); code != errors.ErrCodeInvalidInput && code != errors.ErrCodeInvalidFormat {
				t.Errorf("code = %q", code)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Unresolved: "drop"}

	// First call
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	first := opts.StripOptions()

	// Second call should be idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.StripOptions() != first {
		t.Error("StripOptions changed on second call")
	}
	if first.Unresolved.String() != "drop" {
		t.Errorf("policy = %v, want drop", first.Unresolved)
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	// Sloppiness only changes a drawing of the stripped graph.
	a := Options{Sloppy: true}
	b := Options{}
	if a.ArtifactKeyOpts("svg") != b.ArtifactKeyOpts("svg") {
		t.Error("unstripped artifacts should not depend on Sloppy")
	}
	a.Stripped, b.Stripped = true, true
	if a.ArtifactKeyOpts("svg") == b.ArtifactKeyOpts("svg") {
		t.Error("stripped artifacts should depend on Sloppy")
	}
}

func TestExecute(t *testing.T) {
	doc := testDoc("d")
	runner := NewRunner(nil, nil, nil)

	res, err := runner.Execute(context.Background(), doc, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if got := res.Analysis.Heads["d_t_c1"]; got != "d_t_e1" {
		t.Errorf("head of c1 = %q, want d_t_e1", got)
	}
	if want := []string{"d_t_c1", "d_t_e1", "d_t_e2", "d_t_e3"}; strings.Join(res.Analysis.Order, " ") != strings.Join(want, " ") {
		t.Errorf("Order = %v, want %v", res.Analysis.Order, want)
	}
	if len(res.Analysis.Rewired) != 1 || res.Analysis.Rewired[0] != "d_t_r2" {
		t.Errorf("Rewired = %v", res.Analysis.Rewired)
	}
	if res.Stats.CDUCount != 1 || res.Stats.NodeCount != 6 || res.Stats.EDUCount != 3 || res.Stats.RelationCount != 2 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if res.Stripped == nil || len(res.Stripped.CDUs()) != 0 {
		t.Error("Stripped graph should have no CDUs")
	}
	if len(res.Graph.CDUs()) != 1 {
		t.Error("Graph should keep its CDU")
	}
	if res.Artifacts != nil {
		t.Error("no formats requested, nothing should be rendered")
	}

	// The input document is left alone.
	if len(doc.Schemas) != 1 || doc.Relations[1].Span.T1 != "t_c1" {
		t.Error("Execute modified its input")
	}
}

func TestExecuteStrict(t *testing.T) {
	runner := NewRunner(nil, nil, nil)

	_, err := runner.Execute(context.Background(), multiheadedDoc(), Options{})
	if !errors.Is(err, errors.ErrCodeMultiheadedCDU) {
		t.Fatalf("error = %v, want MULTIHEADED_CDU", err)
	}

	res, err := runner.Execute(context.Background(), multiheadedDoc(), Options{Sloppy: true})
	if err != nil {
		t.Fatalf("sloppy Execute: %v", err)
	}
	if got := res.Analysis.Heads["multi_t_c1"]; got != "multi_t_e1" {
		t.Errorf("sloppy head = %q, want leftmost member", got)
	}
}

func TestExecuteBuildError(t *testing.T) {
	doc := testDoc("d")
	doc.Relations = append(doc.Relations, relation("r3", "e1", "ghost"))

	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), doc, Options{})
	if !errors.Is(err, errors.ErrCodeUnknownMember) {
		t.Fatalf("error = %v, want UNKNOWN_MEMBER", err)
	}
}

func TestExecuteCaching(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	runner := NewRunner(c, nil, nil)
	opts := Options{Formats: []string{"dot"}}

	first, err := runner.Execute(ctx, testDoc("d"), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.AnalyzeHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss: %+v", first.CacheInfo)
	}

	second, err := runner.Execute(ctx, testDoc("d"), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.AnalyzeHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit: %+v", second.CacheInfo)
	}
	if second.Stripped != nil {
		t.Error("cached analysis should not strip")
	}
	if second.Analysis.Heads["d_t_c1"] != "d_t_e1" {
		t.Errorf("cached heads = %v", second.Analysis.Heads)
	}
	if string(second.Artifacts["dot"]) != string(first.Artifacts["dot"]) {
		t.Error("cached artifact differs")
	}

	// A different option misses.
	third, err := runner.Execute(ctx, testDoc("d"), Options{Formats: []string{"dot"}, Unresolved: "drop"})
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.AnalyzeHit {
		t.Error("different unresolved policy should miss")
	}

	// Refresh ignores the cache.
	fourth, err := runner.Execute(ctx, testDoc("d"), Options{Formats: []string{"dot"}, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.AnalyzeHit || fourth.CacheInfo.RenderHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestExecuteRenderStripped(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(newMemCache(), nil, nil)

	// Warm the analysis cache so the stripped graph must be rebuilt for
	// rendering.
	if _, err := runner.Execute(ctx, testDoc("d"), Options{}); err != nil {
		t.Fatal(err)
	}
	res, err := runner.Execute(ctx, testDoc("d"), Options{Formats: []string{"dot"}, Stripped: true})
	if err != nil {
		t.Fatal(err)
	}
	if !res.CacheInfo.AnalyzeHit {
		t.Error("analysis should come from cache")
	}
	dot := string(res.Artifacts["dot"])
	if strings.Contains(dot, "cluster_") {
		t.Errorf("stripped drawing has a CDU cluster:\n%s", dot)
	}
	if !strings.Contains(dot, `"d_t_e1" -> "d_t_e3"`) {
		t.Errorf("rewired relation missing:\n%s", dot)
	}
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewRunner(nil, nil, nil).Execute(ctx, testDoc("d"), Options{}); err != context.Canceled {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestDocumentHash(t *testing.T) {
	h1, err := DocumentHash(testDoc("d"))
	if err != nil {
		t.Fatal(err)
	}
	h2, _ := DocumentHash(testDoc("d"))
	h3, _ := DocumentHash(testDoc("other"))
	if h1 != h2 {
		t.Error("hash should be deterministic")
	}
	if h1 == h3 {
		t.Error("different documents should hash differently")
	}
}
