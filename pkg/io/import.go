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

// ReadDocument decodes a document in format f from r.
//
// ReadDocument returns an INVALID_FORMAT error if the input does not decode,
// and an INVALID_DOCUMENT error if an id is not of the form author_date, a
// unit's span is reversed, or a relation lacks an endpoint. Unknown keys are
// ignored. ReadDocument does not close r.
func ReadDocument(r io.Reader, f Format) (*annotation.Document, error) {
	var w document
	var err error
	switch f {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&w)
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&w)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&w)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported document format %q", f)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", f)
	}

	doc, err := fromWire(w)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "document %s", w.Key)
	}
	return doc, nil
}

// DecodeDocument is [ReadDocument] over a byte slice.
func DecodeDocument(data []byte, f Format) (*annotation.Document, error) {
	return ReadDocument(bytes.NewReader(data), f)
}

// ImportDocument reads the document file at path, picking the format from
// the extension.
func ImportDocument(path string) (*annotation.Document, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return ReadDocument(file, f)
}

// ImportDocuments reads several document files, stopping at the first
// failure.
func ImportDocuments(paths ...string) ([]*annotation.Document, error) {
	docs := make([]*annotation.Document, 0, len(paths))
	for _, p := range paths {
		d, err := ImportDocument(p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}
