// Package registry assigns dense integer ids to configured field names and
// to documents. One Registry belongs to one build; ids never leak between
// builds.
package registry

import (
	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/document"
	apperrors "github.com/Adithya-Monish-Kumar-K/index-builder/pkg/errors"
)

type Registry struct {
	fieldIDs   map[string]int
	fieldNames []string
	docIDs     map[string]int
	externals  []document.Value
}

func New() *Registry {
	return &Registry{
		fieldIDs: make(map[string]int),
		docIDs:   make(map[string]int),
	}
}

// RegisterField returns the id of name, assigning the next one on first
// sight.
func (r *Registry) RegisterField(name string) int {
	if id, ok := r.fieldIDs[name]; ok {
		return id
	}
	id := len(r.fieldNames)
	r.fieldIDs[name] = id
	r.fieldNames = append(r.fieldNames, name)
	return id
}

// RegisterDocument assigns the next internal id to externalID. Registering
// the same external id twice fails with a DuplicateDocumentError.
func (r *Registry) RegisterDocument(externalID document.Value) (int, error) {
	key := externalID.Key()
	if first, ok := r.docIDs[key]; ok {
		return 0, &apperrors.DuplicateDocumentError{
			ID:            externalID.String(),
			FirstPosition: first,
			Position:      len(r.externals),
		}
	}
	id := len(r.externals)
	r.docIDs[key] = id
	r.externals = append(r.externals, externalID)
	return id, nil
}

// FieldID looks up a registered field.
func (r *Registry) FieldID(name string) (int, bool) {
	id, ok := r.fieldIDs[name]
	return id, ok
}

// FieldNames returns field names indexed by field id.
func (r *Registry) FieldNames() []string {
	return append([]string(nil), r.fieldNames...)
}

// DocumentIDs returns external ids indexed by internal id.
func (r *Registry) DocumentIDs() []document.Value {
	return append([]document.Value(nil), r.externals...)
}

// DocumentID returns the external id behind an internal id.
func (r *Registry) DocumentID(id int) (document.Value, bool) {
	if id < 0 || id >= len(r.externals) {
		return document.Value{}, false
	}
	return r.externals[id], true
}

func (r *Registry) NumFields() int {
	return len(r.fieldNames)
}

func (r *Registry) NumDocuments() int {
	return len(r.externals)
}
