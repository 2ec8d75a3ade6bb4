package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/discograph/pkg/annotation"
	"github.com/matzehuels/discograph/pkg/errors"
)

// WriteDocument encodes doc in format f and writes it to w.
// The output can be re-read with [ReadDocument].
func WriteDocument(doc *annotation.Document, w io.Writer, f Format) error {
	out := toWire(doc)
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(out); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported document format %q", f)
	}
	return nil
}

// EncodeDocument is [WriteDocument] into a byte slice.
func EncodeDocument(doc *annotation.Document, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDocument(doc, &buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportDocument writes doc to path, picking the format from the extension.
func ExportDocument(doc *annotation.Document, path string) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteDocument(doc, file, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
