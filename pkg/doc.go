// Package pkg provides the core libraries for Discograph discourse graph
// analysis.
//
// # Overview
//
// Discograph loads discourse-annotated documents, in which elementary
// discourse units (EDUs) are linked by typed relations and grouped into
// complex discourse units (CDUs), into a typed hypergraph. It finds the head
// EDU of every CDU, can eliminate CDUs by rewiring their relations to those
// heads, and puts units into a canonical reading order. The pkg directory is
// organized into these areas:
//
//  1. [annotation] and [io] - The document model and its JSON, YAML and TOML
//     encodings
//  2. [hypergraph] - The typed hypergraph: building, head resolution, CDU
//     elimination and canonical order
//  3. [render] - Graphviz node-link diagrams
//  4. [pipeline] - Orchestration (build → analyze → render) with caching and
//     corpus-wide worker pools
//  5. [cache], [storage] and [api] - Infrastructure for the CLI and the HTTP
//     service
//
// # Architecture
//
// The typical data flow through Discograph:
//
//	Annotated document (.json / .yaml / .toml)
//	         ↓
//	    [io] package (decode, bind relation endpoints)
//	         ↓
//	    [hypergraph] package (build, resolve heads, strip CDUs, order)
//	         ↓
//	    [render] package (DOT, SVG, PNG)
//
// # Quick Start
//
// Load a document, resolve heads and eliminate CDUs:
//
//	import (
//	    "github.com/matzehuels/discograph/pkg/hypergraph"
//	    docio "github.com/matzehuels/discograph/pkg/io"
//	)
//
//	doc, _ := docio.ImportDocument("pilot14.json")
//	g, _ := hypergraph.FromDocument(doc)
//
//	heads, _ := g.RecursiveCDUHeads(false)
//	stripped, report, _ := g.WithoutCDUs(hypergraph.StripOptions{})
//	order := stripped.FirstOutermostUnits()
//
// # Main Packages
//
// [annotation] - Units, relations and schemas with their origins, spans and
// features, grouped into a Document keyed by corpus location.
//
// [hypergraph] - Relations and CDUs exist twice, as a node (so they can be
// pointed at) and as a hyperedge over their members, under the same id.
// [hypergraph.Graph] keeps the store and its backing document in step.
//
// [pipeline] - The analysis pipeline shared by CLI and API. Results are
// cached by document hash in a [cache.Cache] (file or Redis).
//
// [storage] - Archive of analyzed documents with memory, file and MongoDB
// backends.
//
// [api] - chi-based HTTP service exposing heads, order, strip, render, check
// and the document archive.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test -run Example ./pkg/...       # Examples only
//	go test -tags integration ./pkg/...  # Include Redis and MongoDB tests
//
// [annotation]: https://pkg.go.dev/github.com/matzehuels/discograph/pkg/annotation
// [io]: https://pkg.go.dev/github.com/matzehuels/discograph/pkg/io
// [hypergraph]: https://pkg.go.dev/github.com/matzehuels/discograph/pkg/hypergraph
// [hypergraph.Graph]: https://pkg.go.dev/github.com/matzehuels/discograph/pkg/hypergraph#Graph
// [render]: https://pkg.go.dev/github.com/matzehuels/discograph/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/discograph/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/discograph/pkg/cache
// [cache.Cache]: https://pkg.go.dev/github.com/matzehuels/discograph/pkg/cache#Cache
// [storage]: https://pkg.go.dev/github.com/matzehuels/discograph/pkg/storage
// [api]: https://pkg.go.dev/github.com/matzehuels/discograph/pkg/api
package pkg
