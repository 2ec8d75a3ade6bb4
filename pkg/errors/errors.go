// Package errors provides structured error types for discograph.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Resource not found
//   - DUPLICATE_ID, UNKNOWN_MEMBER, MULTIHEADED_CDU, CYCLIC_NESTING:
//     annotation inconsistencies reported by the hypergraph
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidDocument, "document %s has no units", key)
//	if errors.Is(err, errors.ErrCodeInvalidDocument) {
//	    // Handle validation error
//	}
//
//	// Attach a code to an error from a lower layer
//	err := errors.Classify(g.StripCDUs(opts))
package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/matzehuels/discograph/pkg/hypergraph"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidDocument Code = "INVALID_DOCUMENT"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Annotation inconsistencies
	ErrCodeDuplicateID    Code = "DUPLICATE_ID"
	ErrCodeUnknownMember  Code = "UNKNOWN_MEMBER"
	ErrCodeMultiheadedCDU Code = "MULTIHEADED_CDU"
	ErrCodeCyclicNesting  Code = "CYCLIC_NESTING"

	// Resource not found errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"
	ErrCodeDocumentNotFound Code = "DOCUMENT_NOT_FOUND"

	// Backend errors
	ErrCodeStorage Code = "STORAGE_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Classify attaches a code to err based on what it wraps. Errors that
// already carry a code are returned unchanged; nil stays nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}

	var multi *hypergraph.MultiheadedCDUError
	if errors.As(err, &multi) {
		return Wrap(ErrCodeMultiheadedCDU, err, "CDU %s has several heads; retry in sloppy mode to pick the leftmost", multi.CDU)
	}
	var cyc *hypergraph.CyclicNestingError
	if errors.As(err, &cyc) {
		return Wrap(ErrCodeCyclicNesting, err, "CDU %s contains itself", cyc.CDU)
	}

	switch {
	case errors.Is(err, hypergraph.ErrDuplicateID):
		return Wrap(ErrCodeDuplicateID, err, "annotation id used twice")
	case errors.Is(err, hypergraph.ErrUnknownMember):
		return Wrap(ErrCodeUnknownMember, err, "annotation refers to a unit that is not in the document")
	case errors.Is(err, hypergraph.ErrNotFound):
		return Wrap(ErrCodeNotFound, err, "no such unit")
	case errors.Is(err, hypergraph.ErrNoMirror), errors.Is(err, hypergraph.ErrWrongKind):
		return Wrap(ErrCodeInvalidInput, err, "operation does not apply to this unit")
	case errors.Is(err, fs.ErrNotExist):
		return Wrap(ErrCodeFileNotFound, err, "file not found")
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(ErrCodeTimeout, err, "operation timed out")
	}
	return Wrap(ErrCodeInternal, err, "unexpected error")
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case "":
		return http.StatusInternalServerError
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidPath:
		return http.StatusBadRequest
	case ErrCodeInvalidDocument, ErrCodeDuplicateID, ErrCodeUnknownMember,
		ErrCodeMultiheadedCDU, ErrCodeCyclicNesting:
		return http.StatusUnprocessableEntity
	case ErrCodeNotFound, ErrCodeFileNotFound, ErrCodeDocumentNotFound:
		return http.StatusNotFound
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeStorage:
		return http.StatusBadGateway
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}
