package index

import "sort"

// Posting links a term to one field of one document.
type Posting struct {
	DocID     int
	FieldID   int
	Frequency int
}

// DocFrequency is a posting inside a single field's list.
type DocFrequency struct {
	DocID     int
	Frequency int
}

// TermEntry is a term with its postings, ordered by field then document.
type TermEntry struct {
	Term     string
	Postings []Posting
}

// TermPostings holds the per-field posting lists of one term. Each list is
// sorted by DocID and holds at most one entry per document.
type TermPostings struct {
	fields [][]DocFrequency
}

func (p *TermPostings) add(fieldID, docID, freq int) {
	if fieldID >= len(p.fields) {
		grown := make([][]DocFrequency, fieldID+1)
		copy(grown, p.fields)
		p.fields = grown
	}
	list := p.fields[fieldID]
	n := len(list)
	switch {
	case n > 0 && list[n-1].DocID == docID:
		list[n-1].Frequency += freq
	case n == 0 || list[n-1].DocID < docID:
		list = append(list, DocFrequency{DocID: docID, Frequency: freq})
	default:
		i := sort.Search(n, func(i int) bool { return list[i].DocID >= docID })
		if list[i].DocID == docID {
			list[i].Frequency += freq
		} else {
			list = append(list, DocFrequency{})
			copy(list[i+1:], list[i:])
			list[i] = DocFrequency{DocID: docID, Frequency: freq}
		}
	}
	p.fields[fieldID] = list
}

// Range calls fn for every field with postings, in ascending field order.
// The list passed to fn must not be modified.
func (p *TermPostings) Range(fn func(fieldID int, list []DocFrequency) bool) {
	for fieldID, list := range p.fields {
		if len(list) == 0 {
			continue
		}
		if !fn(fieldID, list) {
			return
		}
	}
}

// Frequency returns the term frequency for (docID, fieldID), or 0.
func (p *TermPostings) Frequency(docID, fieldID int) int {
	if fieldID < 0 || fieldID >= len(p.fields) {
		return 0
	}
	list := p.fields[fieldID]
	i := sort.Search(len(list), func(i int) bool { return list[i].DocID >= docID })
	if i < len(list) && list[i].DocID == docID {
		return list[i].Frequency
	}
	return 0
}

// Postings flattens the lists into field-then-document order.
func (p *TermPostings) Postings() []Posting {
	var out []Posting
	p.Range(func(fieldID int, list []DocFrequency) bool {
		for _, df := range list {
			out = append(out, Posting{DocID: df.DocID, FieldID: fieldID, Frequency: df.Frequency})
		}
		return true
	})
	return out
}

// Len returns the number of postings across all fields.
func (p *TermPostings) Len() int {
	n := 0
	for _, list := range p.fields {
		n += len(list)
	}
	return n
}

func (p *TermPostings) merge(other *TermPostings) {
	other.Range(func(fieldID int, list []DocFrequency) bool {
		for _, df := range list {
			p.add(fieldID, df.DocID, df.Frequency)
		}
		return true
	})
}
