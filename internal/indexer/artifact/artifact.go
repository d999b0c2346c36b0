// Package artifact converts a built index to and from the MiniSearch JSON
// serialization format. Serialize is deterministic and Deserialize is its
// exact inverse: re-serializing a loaded artifact reproduces it byte for byte.
package artifact

import (
	"fmt"
	"hash/crc32"
	"maps"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/document"
	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/indexer/stored"
	apperrors "github.com/Adithya-Monish-Kumar-K/index-builder/pkg/errors"
)

// SerializationVersion is the version written by Serialize.
const SerializationVersion = 2

// Index is the complete state of one built index.
type Index struct {
	DocumentCount      int
	NextID             int
	DocumentIDs        map[int]document.Value
	FieldNames         []string
	FieldLength        map[int][]int
	AverageFieldLength []float64
	StoredFields       map[int]stored.Record
	DirtCount          int
	Inverted           *index.InvertedIndex
}

// Summary describes an index for logs and inspection output.
type Summary struct {
	Documents     int
	Fields        []string
	Terms         int
	Postings      int
	StoredRecords int
	Averages      []float64
}

func (idx *Index) Summary() Summary {
	s := Summary{
		Documents:     idx.DocumentCount,
		Fields:        slices.Clone(idx.FieldNames),
		StoredRecords: len(idx.StoredFields),
		Averages:      slices.Clone(idx.AverageFieldLength),
	}
	if idx.Inverted != nil {
		s.Terms = idx.Inverted.Len()
		s.Postings = idx.Inverted.NumPostings()
	}
	return s
}

// Checksum is the CRC-32 (IEEE) of the serialized artifact.
func (idx *Index) Checksum() (uint32, error) {
	data, err := Serialize(idx)
	if err != nil {
		return 0, err
	}
	return crc32.ChecksumIEEE(data), nil
}

// Validate checks the structural invariants shared by Serialize and
// Deserialize. Violations are reported as MalformedArtifactError.
func (idx *Index) Validate() error {
	numFields := len(idx.FieldNames)
	if numFields == 0 {
		return apperrors.Malformed("fieldIds", "no fields")
	}
	seen := make(map[string]struct{}, numFields)
	for _, name := range idx.FieldNames {
		if _, dup := seen[name]; dup {
			return apperrors.Malformed("fieldIds", "field %q listed twice", name)
		}
		seen[name] = struct{}{}
	}

	if idx.DocumentCount != len(idx.DocumentIDs) {
		return apperrors.Malformed("documentCount", "%d does not match %d document ids", idx.DocumentCount, len(idx.DocumentIDs))
	}
	if idx.NextID < idx.DocumentCount {
		return apperrors.Malformed("nextId", "%d is below document count %d", idx.NextID, idx.DocumentCount)
	}
	if idx.DirtCount < 0 {
		return apperrors.Malformed("dirtCount", "negative value %d", idx.DirtCount)
	}
	owners := make(map[string]int, len(idx.DocumentIDs))
	for _, docID := range sortedKeys(idx.DocumentIDs) {
		ext := idx.DocumentIDs[docID]
		if docID < 0 || docID >= idx.NextID {
			return apperrors.Malformed("documentIds", "document %d outside [0, %d)", docID, idx.NextID)
		}
		if !ext.IsIdentifier() {
			return apperrors.Malformed("documentIds", "document %d has %s id", docID, ext.Kind())
		}
		if first, dup := owners[ext.Key()]; dup {
			return apperrors.Malformed("documentIds", "document %d repeats id %s of document %d", docID, ext, first)
		}
		owners[ext.Key()] = docID
	}

	if len(idx.AverageFieldLength) != numFields {
		return apperrors.Malformed("averageFieldLength", "has %d entries for %d fields", len(idx.AverageFieldLength), numFields)
	}
	for docID, row := range idx.FieldLength {
		if _, ok := idx.DocumentIDs[docID]; !ok {
			return apperrors.Malformed("fieldLength", "unknown document %d", docID)
		}
		if len(row) != numFields {
			return apperrors.Malformed("fieldLength", "document %d has %d entries for %d fields", docID, len(row), numFields)
		}
		for fieldID, n := range row {
			if n < 0 {
				return apperrors.Malformed("fieldLength", "document %d field %d has negative length", docID, fieldID)
			}
		}
	}
	for docID := range idx.StoredFields {
		if _, ok := idx.DocumentIDs[docID]; !ok {
			return apperrors.Malformed("storedFields", "unknown document %d", docID)
		}
	}

	if idx.Inverted == nil {
		return nil
	}
	var err error
	idx.Inverted.Walk(func(term string, tp *index.TermPostings) bool {
		tp.Range(func(fieldID int, list []index.DocFrequency) bool {
			if fieldID >= numFields {
				err = apperrors.Malformed("index", "term %q references unknown field %d", term, fieldID)
				return false
			}
			for _, df := range list {
				if _, ok := idx.DocumentIDs[df.DocID]; !ok {
					err = apperrors.Malformed("index", "term %q references unknown document %d", term, df.DocID)
					return false
				}
			}
			return true
		})
		return err == nil
	})
	return err
}

func sortedKeys[V any](m map[int]V) []int {
	return slices.Sorted(maps.Keys(m))
}

func (s Summary) String() string {
	return fmt.Sprintf("%d documents, %d fields, %d terms, %d postings, %d stored records",
		s.Documents, len(s.Fields), s.Terms, s.Postings, s.StoredRecords)
}
