// Package io reads and writes annotated discourse documents.
//
// # Overview
//
// A document is a text plus three collections of annotations: units (text
// spans), relations (directed links between annotations) and schemas
// (groupings, of which non-default ones are composite discourse units).
// Every annotation is identified by its local id, "author_date".
//
// # Formats
//
// Three encodings of the same shape are supported, picked by [Format]:
//
//   - JSON (.json)
//   - TOML (.toml), via github.com/BurntSushi/toml
//   - YAML (.yaml, .yml), via gopkg.in/yaml.v3
//
// In JSON:
//
//	{
//	  "key": {"doc": "pilot14", "subdoc": "01"},
//	  "text": "I have wheat. I need sheep.",
//	  "units": [
//	    {"id": "ann_1", "type": "Segment", "start": 0, "end": 13},
//	    {"id": "ann_2", "type": "Segment", "start": 14, "end": 27}
//	  ],
//	  "relations": [
//	    {"id": "ann_10", "type": "Elaboration", "source": "ann_1", "target": "ann_2"}
//	  ],
//	  "schemas": [
//	    {"id": "ann_20", "type": "Complex_discourse_unit", "units": ["ann_1", "ann_2"]}
//	  ]
//	}
//
// # Import
//
// Use [ImportDocument] to read a file (the format follows the extension) or
// [ReadDocument] to read from any io.Reader. Both check that every id is a
// well-formed local id and return documents with endpoints resolved. They do
// not check cross-references; building the hypergraph does that.
//
// # Export
//
// [ExportDocument] and [WriteDocument] are the inverse. Relation endpoints
// are written from their current Span, so a document rewritten by CDU
// elimination exports its rewired form.
package io
