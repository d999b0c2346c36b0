package index

import (
	"slices"
	"sort"
	"strings"
)

// radixTree is a byte-wise compressed trie. Children are kept sorted by
// their first label byte, so a depth-first walk visits keys in ascending
// lexicographic order.
type radixTree struct {
	root node
	size int
}

type node struct {
	label    string
	children []*node
	value    *TermPostings
}

func (n *node) childIndex(c byte) (int, bool) {
	i := sort.Search(len(n.children), func(i int) bool {
		return n.children[i].label[0] >= c
	})
	return i, i < len(n.children) && n.children[i].label[0] == c
}

func (t *radixTree) get(key string) *TermPostings {
	n := &t.root
	for key != "" {
		i, ok := n.childIndex(key[0])
		if !ok {
			return nil
		}
		child := n.children[i]
		if !strings.HasPrefix(key, child.label) {
			return nil
		}
		key = key[len(child.label):]
		n = child
	}
	return n.value
}

// upsert returns the postings stored under key, creating them if needed.
func (t *radixTree) upsert(key string) *TermPostings {
	n := &t.root
	for {
		if key == "" {
			if n.value == nil {
				n.value = &TermPostings{}
				t.size++
			}
			return n.value
		}
		i, ok := n.childIndex(key[0])
		if !ok {
			leaf := &node{label: key, value: &TermPostings{}}
			n.children = slices.Insert(n.children, i, leaf)
			t.size++
			return leaf.value
		}
		child := n.children[i]
		common := commonPrefixLen(key, child.label)
		if common < len(child.label) {
			split := &node{label: child.label[:common], children: []*node{child}}
			child.label = child.label[common:]
			n.children[i] = split
			child = split
		}
		key = key[common:]
		n = child
	}
}

// walkPrefix visits every key starting with prefix in ascending order until
// fn returns false.
func (t *radixTree) walkPrefix(prefix string, fn func(string, *TermPostings) bool) {
	n := &t.root
	path := ""
	key := prefix
	for key != "" {
		i, ok := n.childIndex(key[0])
		if !ok {
			return
		}
		child := n.children[i]
		switch {
		case strings.HasPrefix(key, child.label):
			key = key[len(child.label):]
		case strings.HasPrefix(child.label, key):
			key = ""
		default:
			return
		}
		path += child.label
		n = child
	}
	walk(n, path, fn)
}

func walk(n *node, path string, fn func(string, *TermPostings) bool) bool {
	if n.value != nil && !fn(path, n.value) {
		return false
	}
	for _, child := range n.children {
		if !walk(child, path+child.label, fn) {
			return false
		}
	}
	return true
}

func commonPrefixLen(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
