// Package stats collects per-document field lengths during the build pass
// and derives per-field average lengths once the corpus is complete.
package stats

import (
	"fmt"

	apperrors "github.com/Adithya-Monish-Kumar-K/index-builder/pkg/errors"
)

type Collector struct {
	numFields int
	lengths   [][]int
	averages  []float64
}

func NewCollector(numFields int) *Collector {
	return &Collector{numFields: numFields}
}

// RecordFieldLength sets the token count of one field of one document.
func (c *Collector) RecordFieldLength(docID, fieldID, tokenCount int) error {
	if c.averages != nil {
		return fmt.Errorf("recording length of document %d: %w", docID, apperrors.ErrAlreadyFinalized)
	}
	if docID < 0 || fieldID < 0 || fieldID >= c.numFields {
		return fmt.Errorf("recording length of document %d field %d: out of range", docID, fieldID)
	}
	if tokenCount < 0 {
		return fmt.Errorf("recording length of document %d field %d: negative count %d", docID, fieldID, tokenCount)
	}
	row := c.row(docID)
	row[fieldID] = tokenCount
	return nil
}

// EnsureDocument guarantees a row exists for docID, so documents without any
// indexed field still appear in the table.
func (c *Collector) EnsureDocument(docID int) {
	c.row(docID)
}

func (c *Collector) row(docID int) []int {
	for len(c.lengths) <= docID {
		c.lengths = append(c.lengths, nil)
	}
	if c.lengths[docID] == nil {
		c.lengths[docID] = make([]int, c.numFields)
	}
	return c.lengths[docID]
}

// ComputeAverages returns, per field, the mean length over documents where
// that field has a nonzero length. A field no document contains averages 0.
// The collector is frozen afterwards.
func (c *Collector) ComputeAverages() []float64 {
	if c.averages != nil {
		return c.averages
	}
	totals := make([]int, c.numFields)
	counts := make([]int, c.numFields)
	for _, row := range c.lengths {
		for fieldID, n := range row {
			if n > 0 {
				totals[fieldID] += n
				counts[fieldID]++
			}
		}
	}
	averages := make([]float64, c.numFields)
	for fieldID := range averages {
		if counts[fieldID] > 0 {
			averages[fieldID] = float64(totals[fieldID]) / float64(counts[fieldID])
		}
	}
	c.averages = averages
	return averages
}

// Table returns the field length rows indexed by document id. Rows for ids
// never recorded are nil.
func (c *Collector) Table() [][]int {
	return c.lengths
}

func (c *Collector) NumFields() int {
	return c.numFields
}

// Merge combines collectors whose document rows are disjoint. A row present
// in more than one collector is an error.
func Merge(numFields int, collectors ...*Collector) (*Collector, error) {
	out := NewCollector(numFields)
	for i, c := range collectors {
		if c.numFields != numFields {
			return nil, fmt.Errorf("merging collector %d: has %d fields, want %d", i, c.numFields, numFields)
		}
		for docID, row := range c.lengths {
			if row == nil {
				continue
			}
			for len(out.lengths) <= docID {
				out.lengths = append(out.lengths, nil)
			}
			if out.lengths[docID] != nil {
				return nil, fmt.Errorf("merging collector %d: document %d recorded twice", i, docID)
			}
			out.lengths[docID] = row
		}
	}
	return out, nil
}

// FromTable rebuilds a collector from serialized rows.
func FromTable(numFields int, table [][]int) (*Collector, error) {
	c := NewCollector(numFields)
	for docID, row := range table {
		if len(row) != numFields {
			return nil, fmt.Errorf("document %d has %d field lengths, want %d", docID, len(row), numFields)
		}
		for fieldID, n := range row {
			if err := c.RecordFieldLength(docID, fieldID, n); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}
