package shard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name    string
		docs    int
		workers int
		want    []Range
	}{
		{"empty corpus", 0, 4, nil},
		{"single worker", 3, 1, []Range{{0, 0, 3}}},
		{"even split", 4, 2, []Range{{0, 0, 2}, {1, 2, 4}}},
		{"remainder goes first", 5, 3, []Range{{0, 0, 2}, {1, 2, 4}, {2, 4, 5}}},
		{"more workers than documents", 2, 8, []Range{{0, 0, 1}, {1, 1, 2}}},
		{"non-positive workers", 3, 0, []Range{{0, 0, 3}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Plan(tc.docs, tc.workers))
		})
	}
}

func TestPlanCoversEveryDocumentOnce(t *testing.T) {
	for docs := 1; docs < 40; docs++ {
		for workers := 1; workers < 10; workers++ {
			next := 0
			for _, r := range Plan(docs, workers) {
				assert.Equal(t, next, r.Start)
				assert.Positive(t, r.Len())
				next = r.End
			}
			assert.Equal(t, docs, next)
		}
	}
}
