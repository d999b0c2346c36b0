// Package index implements the inverted index built during a single build
// pass. Terms live in a radix tree so the finished index supports both exact
// lookup in O(len(term)) and ordered prefix traversal.
package index

import (
	"fmt"
	"iter"

	apperrors "github.com/Adithya-Monish-Kumar-K/index-builder/pkg/errors"
)

// Builder accumulates postings until Finalize. It is not safe for
// concurrent use; parallel builds give each worker its own Builder and
// combine them with Merge.
type Builder struct {
	tree      *radixTree
	postings  int
	finalized *InvertedIndex
}

func NewBuilder() *Builder {
	return &Builder{tree: &radixTree{}}
}

// AddDocument folds the token stream of one field of one document into the
// index and returns the number of tokens consumed.
func (b *Builder) AddDocument(docID, fieldID int, tokens iter.Seq[string]) (int, error) {
	if b.finalized != nil {
		return 0, fmt.Errorf("adding document %d: %w", docID, apperrors.ErrAlreadyFinalized)
	}
	if docID < 0 || fieldID < 0 {
		return 0, fmt.Errorf("adding document %d field %d: negative id", docID, fieldID)
	}
	count := 0
	for term := range tokens {
		b.add(term, fieldID, docID, 1)
		count++
	}
	return count, nil
}

// AddPosting adds an already aggregated posting.
func (b *Builder) AddPosting(term string, p Posting) error {
	if b.finalized != nil {
		return fmt.Errorf("adding posting for %q: %w", term, apperrors.ErrAlreadyFinalized)
	}
	if p.DocID < 0 || p.FieldID < 0 || p.Frequency <= 0 {
		return fmt.Errorf("adding posting for %q: invalid posting %+v", term, p)
	}
	b.add(term, p.FieldID, p.DocID, p.Frequency)
	return nil
}

func (b *Builder) add(term string, fieldID, docID, freq int) {
	tp := b.tree.upsert(term)
	before := tp.Len()
	tp.add(fieldID, docID, freq)
	b.postings += tp.Len() - before
}

// Finalize freezes the builder. Later calls return the same index.
func (b *Builder) Finalize() *InvertedIndex {
	if b.finalized == nil {
		b.finalized = &InvertedIndex{tree: b.tree, postings: b.postings}
	}
	return b.finalized
}

// Finalized reports whether Finalize has been called.
func (b *Builder) Finalized() bool {
	return b.finalized != nil
}

// InvertedIndex is the immutable result of a build.
type InvertedIndex struct {
	tree     *radixTree
	postings int
}

// Get returns the postings of term.
func (ix *InvertedIndex) Get(term string) (*TermPostings, bool) {
	tp := ix.tree.get(term)
	return tp, tp != nil
}

// Walk visits every term in ascending order until fn returns false.
func (ix *InvertedIndex) Walk(fn func(term string, postings *TermPostings) bool) {
	ix.tree.walkPrefix("", fn)
}

// WalkPrefix visits every term starting with prefix in ascending order.
func (ix *InvertedIndex) WalkPrefix(prefix string, fn func(term string, postings *TermPostings) bool) {
	ix.tree.walkPrefix(prefix, fn)
}

// Terms returns an iterator over terms and postings in ascending order.
func (ix *InvertedIndex) Terms() iter.Seq2[string, *TermPostings] {
	return func(yield func(string, *TermPostings) bool) {
		ix.tree.walkPrefix("", yield)
	}
}

// Len returns the number of distinct terms.
func (ix *InvertedIndex) Len() int {
	return ix.tree.size
}

// NumPostings returns the number of (term, field, document) entries.
func (ix *InvertedIndex) NumPostings() int {
	return ix.postings
}

// Snapshot lists every term with its postings, sorted by term.
func (ix *InvertedIndex) Snapshot() []TermEntry {
	entries := make([]TermEntry, 0, ix.Len())
	ix.Walk(func(term string, tp *TermPostings) bool {
		entries = append(entries, TermEntry{Term: term, Postings: tp.Postings()})
		return true
	})
	return entries
}
