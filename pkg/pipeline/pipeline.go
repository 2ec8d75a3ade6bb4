// Package pipeline provides the document processing pipeline for discograph.
//
// This package implements the complete build → analyze → render pipeline
// used by the CLI and the API server. By centralizing this logic, both entry
// points resolve heads, strip CDUs and cache results the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Turn an annotated document into a discourse hypergraph
//  2. Analyze: Resolve CDU heads, strip CDUs and compute the canonical order
//  3. Render: Draw the graph (or its stripped form) as DOT, SVG or PNG
//
// Analyze and Render results are cached by document hash, so re-running a
// corpus only recomputes documents that changed.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Sloppy:  true,
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, doc, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Process a whole corpus on a bounded worker pool:
//
//	results, err := runner.RunCorpus(ctx, docs, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/discograph/pkg/annotation"
	"github.com/matzehuels/discograph/pkg/cache"
	"github.com/matzehuels/discograph/pkg/errors"
	"github.com/matzehuels/discograph/pkg/hypergraph"
	"github.com/matzehuels/discograph/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWorkers is the number of documents processed concurrently by
	// RunCorpus.
	DefaultWorkers = 4

	// DefaultCacheTTL is how long analysis results and artifacts are kept.
	DefaultCacheTTL = 7 * 24 * time.Hour

	// DefaultUnresolved is the policy for CDUs without a head.
	DefaultUnresolved = "keep"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Analyze options
	Sloppy     bool   `json:"sloppy,omitempty"`     // Pick the leftmost head of multiheaded CDUs
	Unresolved string `json:"unresolved,omitempty"` // "keep" or "drop"

	// Render options
	Formats  []string `json:"formats,omitempty"`  // Empty skips rendering
	Stripped bool     `json:"stripped,omitempty"` // Draw the graph after CDU elimination
	Detailed bool     `json:"detailed,omitempty"` // Add spans to EDU labels

	Refresh bool `json:"refresh,omitempty"` // Ignore cached results

	// Runtime options (not serialized)
	Workers  int           `json:"-"`
	CacheTTL time.Duration `json:"-"`
	Logger   *log.Logger   `json:"-"`

	policy    hypergraph.UnresolvedPolicy
	validated bool
}

// Result contains the outputs of a pipeline run for one document.
type Result struct {
	// Key identifies the document.
	Key annotation.DocKey

	// DocHash is the content hash of the encoded document.
	DocHash string

	// Graph is the hypergraph built from the document.
	Graph *hypergraph.Graph

	// Stripped is Graph after CDU elimination. It is nil when the analysis
	// came from the cache and no stripped artifact had to be drawn.
	Stripped *hypergraph.Graph

	// Analysis holds heads, strip outcome and canonical order.
	Analysis *Analysis

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Analysis is the cacheable outcome of the analyze stage.
type Analysis struct {
	// Heads maps every resolved CDU to its recursive head.
	Heads map[string]string `json:"heads"`
	// Order lists EDUs and non-empty CDUs in canonical order.
	Order []string `json:"order"`
	// Removed, Rewired, Dropped and Unresolved mirror the strip report.
	Removed    []string `json:"removed"`
	Rewired    []string `json:"rewired"`
	Dropped    []string `json:"dropped"`
	Unresolved []string `json:"unresolved"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount     int
	EdgeCount     int
	EDUCount      int
	RelationCount int
	CDUCount      int
	BuildTime     time.Duration
	AnalyzeTime   time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	AnalyzeHit bool // Whether the analysis came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	f, err := render.ParseFormat(format)
	if err != nil {
		return err
	}
	if string(f) != format {
		return errors.New(errors.ErrCodeInvalidFormat, "format %q must be lower case", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// Validate checks option values without applying defaults.
func (o *Options) Validate() error {
	p, err := hypergraph.ParseUnresolvedPolicy(o.Unresolved)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid unresolved policy")
	}
	o.policy = p
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "workers must not be negative, got %d", o.Workers)
	}
	return ValidateFormats(o.Formats)
}

// SetDefaults fills unset fields with their defaults.
func (o *Options) SetDefaults() {
	if o.Unresolved == "" {
		o.Unresolved = DefaultUnresolved
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// StripOptions returns the hypergraph options for CDU elimination.
// Call after ValidateAndSetDefaults.
func (o *Options) StripOptions() hypergraph.StripOptions {
	return hypergraph.StripOptions{Sloppy: o.Sloppy, Unresolved: o.policy}
}

// ResultKeyOpts returns cache key options for the analyze stage.
func (o *Options) ResultKeyOpts() cache.ResultKeyOpts {
	return cache.ResultKeyOpts{Sloppy: o.Sloppy, Unresolved: o.Unresolved}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Stripped: o.Stripped,
		Sloppy:   o.Sloppy && o.Stripped,
		Detailed: o.Detailed,
	}
}

func (o *Options) String() string {
	return fmt.Sprintf("sloppy=%t unresolved=%s formats=%v", o.Sloppy, o.Unresolved, o.Formats)
}
