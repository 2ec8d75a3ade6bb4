// Package annotation provides the document layer that discourse hypergraphs
// are built from.
//
// # Overview
//
// A [Document] holds three ordered collections of annotations over a single
// text:
//
//   - [Unit]: a text span (elementary discourse units, turns, dialogues, ...)
//   - [Relation]: a directed, typed link between two annotations
//   - [Schema]: a named grouping of units, relations and other schemas
//     (composite discourse units)
//
// Annotations are identified by their provenance: the author who created them
// and a creation stamp, joined as "author_date" (see [Origin.LocalID]). Within
// a corpus, a [DocKey] turns local ids into globally unique identifiers with
// [DocKey.GlobalID].
//
// # Endpoints
//
// Relations record their endpoints twice: by local id in [Relation.Span] and
// as resolved annotation values in [Relation.Source] and [Relation.Target].
// Decoders only fill the span; call [Document.Resolve] to bind the endpoint
// values. Use [Document.SetEndpoints] to rewrite both forms together so they
// never drift apart.
//
// # Spans
//
// Units carry their own [Span]. Relations and schemas do not: their text span
// is the hull of the spans of what they point to, computed on demand by
// [Document.TextSpan].
//
// # Concurrency
//
// Documents are plain values owned by one goroutine at a time. Use
// [Document.Clone] to hand an independent copy to another goroutine.
package annotation
