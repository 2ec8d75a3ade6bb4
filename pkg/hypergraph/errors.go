package hypergraph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateID is returned when a node or hyperedge id is already in
	// use, or when a hyperedge id collides with a node of a different kind.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrUnknownMember is returned by [Store.AddHyperedge] and
	// [Store.SetMembers] when a member id is not a node.
	ErrUnknownMember = errors.New("unknown member")

	// ErrNotFound is returned by queries against an id the store does not hold.
	ErrNotFound = errors.New("not found")

	// ErrNoMirror is returned by [Store.Mirror] for EDUs, which have no
	// hyperedge form.
	ErrNoMirror = errors.New("no mirror")

	// ErrWrongKind is returned when an operation expects a specific kind,
	// e.g. asking for the head of something that is not a CDU.
	ErrWrongKind = errors.New("wrong kind")

	// ErrStillLinked is returned by [Store.RemoveNode] when a hyperedge still
	// lists the node as a member.
	ErrStillLinked = errors.New("node still linked")

	// ErrMultiheadedCDU signals a CDU with more than one head candidate in
	// strict mode. See [MultiheadedCDUError].
	ErrMultiheadedCDU = errors.New("multiheaded CDU")

	// ErrCyclicNesting signals a CDU that contains itself transitively.
	// See [CyclicNestingError].
	ErrCyclicNesting = errors.New("cyclic CDU nesting")
)

// IDError records the operation and id that caused a store error.
type IDError struct {
	Op  string
	ID  string
	Err error
}

func (e *IDError) Error() string { return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err) }

func (e *IDError) Unwrap() error { return e.Err }

// MultiheadedCDUError is returned when a CDU has several head candidates and
// sloppy resolution was not requested. It is an annotation inconsistency.
type MultiheadedCDUError struct {
	CDU        string
	Candidates []string
}

func (e *MultiheadedCDUError) Error() string {
	return fmt.Sprintf("CDU %s has %d heads: %s", e.CDU, len(e.Candidates), strings.Join(e.Candidates, ", "))
}

func (e *MultiheadedCDUError) Unwrap() error { return ErrMultiheadedCDU }

// CyclicNestingError is returned when head resolution walks back into a CDU
// it is already resolving. Path lists the CDUs on the cycle in visit order.
type CyclicNestingError struct {
	CDU  string
	Path []string
}

func (e *CyclicNestingError) Error() string {
	return fmt.Sprintf("CDU %s contains itself: %s -> %s", e.CDU, strings.Join(e.Path, " -> "), e.CDU)
}

func (e *CyclicNestingError) Unwrap() error { return ErrCyclicNesting }

func idErr(op, id string, err error) error { return &IDError{Op: op, ID: id, Err: err} }
