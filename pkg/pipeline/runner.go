package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/discograph/pkg/annotation"
	"github.com/matzehuels/discograph/pkg/cache"
	"github.com/matzehuels/discograph/pkg/errors"
	"github.com/matzehuels/discograph/pkg/hypergraph"
	docio "github.com/matzehuels/discograph/pkg/io"
	"github.com/matzehuels/discograph/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete build → analyze → render pipeline on doc.
// doc itself is never modified; the pipeline works on a copy.
func (r *Runner) Execute(ctx context.Context, doc *annotation.Document, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash, err := DocumentHash(doc)
	if err != nil {
		return nil, err
	}
	result := &Result{Key: doc.Key, DocHash: hash}

	// Stage 1: Build
	buildStart := time.Now()
	g, err := r.Build(ctx, doc)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.HyperedgeCount()
	result.Stats.EDUCount = len(g.EDUs())
	result.Stats.RelationCount = len(g.Relations())
	result.Stats.CDUCount = len(g.CDUs())

	opts.Logger.Debug("built hypergraph",
		"doc", doc.Key,
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.BuildTime)

	// Stage 2: Analyze
	analyzeStart := time.Now()
	analysis, stripped, hit, err := r.AnalyzeWithCacheInfo(ctx, g, hash, opts)
	if err != nil {
		return nil, err
	}
	result.Analysis = analysis
	result.Stripped = stripped
	result.Stats.AnalyzeTime = time.Since(analyzeStart)
	result.CacheInfo.AnalyzeHit = hit

	opts.Logger.Debug("analyzed document",
		"doc", doc.Key,
		"cdus", result.Stats.CDUCount,
		"unresolved", len(analysis.Unresolved),
		"cached", hit,
		"duration", result.Stats.AnalyzeTime)

	// Stage 3: Render
	if len(opts.Formats) == 0 {
		return result, nil
	}
	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, result, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	opts.Logger.Debug("rendered outputs",
		"doc", doc.Key,
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Build constructs the hypergraph of a copy of doc.
func (r *Runner) Build(ctx context.Context, doc *annotation.Document) (*hypergraph.Graph, error) {
	hooks := observability.Pipeline()
	name := doc.Key.String()
	hooks.OnBuildStart(ctx, name)
	start := time.Now()

	g, err := hypergraph.FromDocument(doc.Clone())
	if err != nil {
		hooks.OnBuildComplete(ctx, name, 0, 0, time.Since(start), err)
		return nil, fmt.Errorf("build %s: %w", name, errors.Classify(err))
	}
	hooks.OnBuildComplete(ctx, name, g.NodeCount(), g.HyperedgeCount(), time.Since(start), nil)
	return g, nil
}

// Strip removes the CDUs from a copy of g. It is never cached.
func (r *Runner) Strip(ctx context.Context, g *hypergraph.Graph, opts Options) (*hypergraph.Graph, *hypergraph.StripReport, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, fmt.Errorf("invalid options: %w", err)
	}
	hooks := observability.Pipeline()
	name := g.Doc.Key.String()
	hooks.OnStripStart(ctx, name, len(g.CDUs()))
	start := time.Now()

	stripped, report, err := g.WithoutCDUs(opts.StripOptions())
	if err != nil {
		hooks.OnStripComplete(ctx, name, 0, time.Since(start), err)
		return nil, nil, fmt.Errorf("strip %s: %w", name, errors.Classify(err))
	}
	hooks.OnStripComplete(ctx, name, len(report.Removed), time.Since(start), nil)
	return stripped, report, nil
}

// AnalyzeWithCacheInfo resolves heads and strips CDUs with caching and
// returns cache hit info. On a cache hit the stripped graph is nil.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, g *hypergraph.Graph, docHash string, opts Options) (*Analysis, *hypergraph.Graph, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, false, fmt.Errorf("invalid options: %w", err)
	}
	cacheKey := r.Keyer.ResultKey(docHash, opts.ResultKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, ok := r.cacheGet(ctx, cacheKey); ok {
			var cached Analysis
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
	}

	stripped, report, err := r.Strip(ctx, g, opts)
	if err != nil {
		return nil, nil, false, err
	}
	analysis := &Analysis{
		Heads:      report.Heads,
		Order:      g.FirstOutermostUnits(),
		Removed:    report.Removed,
		Rewired:    report.Rewired,
		Dropped:    report.Dropped,
		Unresolved: report.Unresolved,
	}

	if data, err := json.Marshal(analysis); err == nil {
		r.cacheSet(ctx, cacheKey, data, opts.CacheTTL)
	}
	return analysis, stripped, false, nil // Cache miss
}

// Analyze is a convenience wrapper that calls AnalyzeWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Analyze(ctx context.Context, g *hypergraph.Graph, docHash string, opts Options) (*Analysis, error) {
	analysis, _, _, err := r.AnalyzeWithCacheInfo(ctx, g, docHash, opts)
	return analysis, err
}

// RenderWithCacheInfo draws the requested formats with caching and returns
// cache hit info. It strips res.Graph on demand when a stripped drawing
// misses the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *Result, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, fmt.Errorf("invalid options: %w", err)
	}

	// Try to get all formats from cache
	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(res.DocHash, opts.ArtifactKeyOpts(format))
			data, ok := r.cacheGet(ctx, cacheKey)
			if !ok {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil // All artifacts from cache
		}
	}

	g := res.Graph
	if opts.Stripped {
		if res.Stripped == nil {
			stripped, _, err := r.Strip(ctx, res.Graph, opts)
			if err != nil {
				return nil, false, err
			}
			res.Stripped = stripped
		}
		g = res.Stripped
	}

	rendered, err := Render(ctx, g, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(res.DocHash, opts.ArtifactKeyOpts(format))
		r.cacheSet(ctx, cacheKey, data, opts.CacheTTL)
	}
	return rendered, false, nil // Cache miss
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// DocumentHash returns the content hash of doc's canonical JSON encoding.
func DocumentHash(doc *annotation.Document) (string, error) {
	data, err := docio.EncodeDocument(doc, docio.FormatJSON)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", doc.Key, err)
	}
	return cache.Hash(data), nil
}

func (r *Runner) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, key)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, key)
	return data, true
}

func (r *Runner) cacheSet(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, key, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
