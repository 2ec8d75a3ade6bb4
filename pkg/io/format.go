package io

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/discograph/pkg/errors"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Formats lists the supported encodings.
var Formats = []Format{FormatJSON, FormatTOML, FormatYAML}

// ParseFormat accepts a format name or file extension, with or without the
// leading dot.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported document format %q (want json, toml or yaml)", s)
}

// FormatOf picks the format from a file name's extension.
func FormatOf(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", errors.New(errors.ErrCodeInvalidFormat, "cannot tell format of %s: no extension", path)
	}
	return ParseFormat(ext)
}

// Ext returns the canonical file extension, including the dot.
func (f Format) Ext() string { return "." + string(f) }
