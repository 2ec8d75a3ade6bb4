// Package hypergraph models discourse structure as a typed hypergraph and
// provides the structural algorithms over it.
//
// # Overview
//
// A discourse annotation consists of elementary discourse units (EDUs),
// relations between them, and composite discourse units (CDUs) grouping
// EDUs, relations and other CDUs. The hypergraph has:
//
//   - a node for every EDU that some relation or CDU points to
//   - relations as two-member hyperedges (source, target)
//   - CDUs as hyperedges over their members
//
// Relations and CDUs are also nodes under the same id, because relations
// may point at relations and CDUs may nest. [Store.Mirror] maps an id
// between its node and hyperedge forms.
//
// # Building
//
// [Build] and [FromDocument] construct a [Graph] from an
// [annotation.Document]. Ids are the document's global identifiers; any
// collision aborts the build with [ErrDuplicateID].
//
// # Heads
//
// The head of a CDU is its only member that is not targeted by a relation
// from another member. [Graph.CDUHead] computes it; [Graph.RecursiveCDUHeads]
// follows heads through nested CDUs down to an EDU:
//
//	heads, err := g.RecursiveCDUHeads(false)
//	var multi *hypergraph.MultiheadedCDUError
//	if errors.As(err, &multi) {
//	    // annotation problem in multi.CDU; retry with sloppy=true to pick
//	    // the leftmost candidate instead
//	}
//
// # Eliminating CDUs
//
// [Graph.StripCDUs] deletes every CDU, redirecting relation endpoints that
// named a CDU to its recursive head. The backing document is rewritten in
// the same call. [Graph.WithoutCDUs] does the same on a copy.
//
// # Reading Order
//
// [Graph.CanonicalOrder] sorts units left to right, widest first, outermost
// first. [Graph.FirstOutermostUnits] returns all EDUs and non-empty CDUs in
// that order.
//
// # Concurrency
//
// A Graph is not safe for concurrent use. Distinct graphs share nothing and
// can be processed in parallel.
package hypergraph
