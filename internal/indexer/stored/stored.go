// Package stored keeps verbatim copies of the configured stored fields of
// every document.
package stored

import (
	"encoding/json"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/document"
)

// Field is one stored value in its original JSON form.
type Field struct {
	Name  string
	Value json.RawMessage
}

// Record is the ordered list of stored fields of one document.
type Record []Field

// Get returns the raw value stored under name.
func (r Record) Get(name string) (json.RawMessage, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

type Store struct {
	fields  []string
	records map[int]Record
}

// NewStore keeps the given field names, in that order.
func NewStore(fields []string) *Store {
	return &Store{
		fields:  fields,
		records: make(map[int]Record),
	}
}

// Enabled reports whether any field is configured for storage.
func (s *Store) Enabled() bool {
	return len(s.fields) > 0
}

// StoreFields copies the configured fields present in doc. Absent fields are
// omitted; JSON null counts as present.
func (s *Store) StoreFields(docID int, doc document.Document) {
	if !s.Enabled() {
		return
	}
	record := make(Record, 0, len(s.fields))
	for _, name := range s.fields {
		if v, ok := doc.Get(name); ok {
			record = append(record, Field{Name: name, Value: v.Raw()})
		}
	}
	s.records[docID] = record
}

// Put installs a record as-is.
func (s *Store) Put(docID int, record Record) {
	s.records[docID] = record
}

// Records returns the stored records keyed by document id.
func (s *Store) Records() map[int]Record {
	return s.records
}

// Merge combines stores whose document ids are disjoint.
func Merge(fields []string, stores ...*Store) (*Store, error) {
	out := NewStore(fields)
	for i, s := range stores {
		for docID, record := range s.records {
			if _, dup := out.records[docID]; dup {
				return nil, fmt.Errorf("merging store %d: document %d stored twice", i, docID)
			}
			out.records[docID] = record
		}
	}
	return out, nil
}
