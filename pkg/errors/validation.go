package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateDocumentName validates one part of a document key (document,
// subdocument, stage or annotator) for safety and correctness. Key parts end
// up in file names, cache keys and storage queries.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateDocumentName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidDocument, "document name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidDocument, "document name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDocument, "document name contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidDocument, "document name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// localIDRegex matches annotation local ids: author and creation date
// joined by an underscore.
var localIDRegex = regexp.MustCompile(`^[^_\s]+(_[^_\s]+)*_[^_\s]+$`)

// ValidateLocalID validates an annotation's local id.
func ValidateLocalID(id string) error {
	if !localIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid annotation id %q (want author_date)", id)
	}
	return nil
}

// ValidatePath validates a relative file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURI checks that raw starts with one of the given schemes, e.g.
// "mongodb://" for a storage connection string.
func ValidateURI(raw string, schemes ...string) error {
	if raw == "" {
		return New(ErrCodeInvalidInput, "URI cannot be empty")
	}
	for _, s := range schemes {
		if strings.HasPrefix(raw, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URI must use one of the schemes %s", strings.Join(schemes, ", "))
}
