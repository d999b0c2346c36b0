package index

import (
	"cmp"
	"iter"

	pq "github.com/emirpasic/gods/v2/queues/priorityqueue"
)

// Merge unions shard indexes into one. Terms are pulled from every shard in
// ascending order through a priority queue, and equal terms have their
// posting lists combined key-wise. Ties are broken by shard position, so
// the result does not depend on scheduling.
func Merge(shards ...*InvertedIndex) *InvertedIndex {
	switch len(shards) {
	case 0:
		return NewBuilder().Finalize()
	case 1:
		return shards[0]
	}

	type item struct {
		shard    int
		term     string
		postings *TermPostings
	}

	comparator := func(a, b item) int {
		if c := cmp.Compare(a.term, b.term); c != 0 {
			return c
		}
		return cmp.Compare(a.shard, b.shard)
	}

	nexts := make([]func() (string, *TermPostings, bool), len(shards))
	queue := pq.NewWith(comparator)
	for i, shard := range shards {
		next, stop := iter.Pull2(shard.Terms())
		defer stop()
		nexts[i] = next
		if term, tp, ok := next(); ok {
			queue.Enqueue(item{shard: i, term: term, postings: tp})
		}
	}

	out := NewBuilder()
	for !queue.Empty() {
		head, _ := queue.Dequeue()
		merged := out.tree.upsert(head.term)
		pending := []item{head}
		for {
			peek, ok := queue.Peek()
			if !ok || peek.term != head.term {
				break
			}
			queue.Dequeue()
			pending = append(pending, peek)
		}
		for _, it := range pending {
			before := merged.Len()
			merged.merge(it.postings)
			out.postings += merged.Len() - before
			if term, tp, ok := nexts[it.shard](); ok {
				queue.Enqueue(item{shard: it.shard, term: term, postings: tp})
			}
		}
	}
	return out.Finalize()
}
