// Package document defines the document model consumed by the index
// builder: loosely shaped JSON records decoded into tagged field values,
// and the index configuration naming which fields are indexed and stored.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	apperrors "github.com/Adithya-Monish-Kumar-K/index-builder/pkg/errors"
)

// DefaultIDField is the property holding the external id when the
// configuration does not name one.
const DefaultIDField = "id"

// Document is one input record. Fields absent from the source JSON are
// absent here; JSON null is present with KindNull.
type Document struct {
	fields map[string]Value
}

// New builds a document from already classified values.
func New(fields map[string]Value) Document {
	return Document{fields: fields}
}

// Get returns the value of the named field and whether it is present.
func (d Document) Get(name string) (Value, bool) {
	v, ok := d.fields[name]
	return v, ok
}

func (d Document) Len() int {
	return len(d.fields)
}

// ID resolves the external identifier stored under idField.
func (d Document) ID(idField string) (Value, error) {
	v, ok := d.fields[idField]
	if !ok || !v.IsIdentifier() {
		return Value{}, apperrors.ErrMissingIdentifier
	}
	return v, nil
}

// ParseObject decodes a single JSON object into a Document.
func ParseObject(raw []byte) (Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Document{}, fmt.Errorf("%w: expected a JSON object", apperrors.ErrMalformedDocument)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return Document{}, fmt.Errorf("%w: %v", apperrors.ErrMalformedDocument, err)
	}
	fields := make(map[string]Value, len(obj))
	for name, raw := range obj {
		v, err := ParseValue(raw)
		if err != nil {
			return Document{}, fmt.Errorf("%w: field %q: %v", apperrors.ErrMalformedDocument, name, err)
		}
		fields[name] = v
	}
	return Document{fields: fields}, nil
}

// Decode reads a JSON array of objects, preserving input order.
func Decode(r io.Reader) ([]Document, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: reading documents: %v", apperrors.ErrMalformedDocument, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("%w: documents must be a JSON array", apperrors.ErrMalformedDocument)
	}
	var docs []Document
	for dec.More() {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: document %d: %v", apperrors.ErrMalformedDocument, len(docs), err)
		}
		doc, err := ParseObject(raw)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", len(docs), err)
		}
		docs = append(docs, doc)
	}
	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: closing documents array: %v", apperrors.ErrMalformedDocument, err)
	}
	return docs, nil
}

// ReadFile decodes the documents stored at path.
func ReadFile(path string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening documents %s: %w", path, err)
	}
	defer f.Close()
	docs, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding documents %s: %w", path, err)
	}
	return docs, nil
}
