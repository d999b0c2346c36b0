// Package shard splits a document id space into contiguous ranges, one per
// build worker. Contiguous ranges keep every worker's posting lists sorted
// by document id, so shard merges never reorder postings.
package shard

import "fmt"

// Range is the half-open document id interval [Start, End).
type Range struct {
	ID    int
	Start int
	End   int
}

func (r Range) Len() int {
	return r.End - r.Start
}

func (r Range) String() string {
	return fmt.Sprintf("shard-%d[%d,%d)", r.ID, r.Start, r.End)
}

// Plan divides numDocs documents into at most workers ranges whose sizes
// differ by at most one. It returns no ranges for an empty corpus.
func Plan(numDocs, workers int) []Range {
	if numDocs <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > numDocs {
		workers = numDocs
	}
	size, extra := numDocs/workers, numDocs%workers
	ranges := make([]Range, 0, workers)
	start := 0
	for i := 0; i < workers; i++ {
		end := start + size
		if i < extra {
			end++
		}
		ranges = append(ranges, Range{ID: i, Start: start, End: end})
		start = end
	}
	return ranges
}
