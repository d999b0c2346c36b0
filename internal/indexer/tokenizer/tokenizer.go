// Package tokenizer provides text tokenisation for the index builder.
// It splits on runs of characters that are not letters, digits or
// combining marks and lower-cases every token. There is no stemming and no
// stop-word removal.
package tokenizer

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/document"
)

// Tokenize returns a lazy sequence over the normalised terms of text.
// The sequence may be ranged over any number of times.
func Tokenize(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := -1
		for i, r := range text {
			if isWordRune(r) {
				if start < 0 {
					start = i
				}
				continue
			}
			if start >= 0 {
				if !yield(normalize(text[start:i])) {
					return
				}
				start = -1
			}
		}
		if start >= 0 {
			yield(normalize(text[start:]))
		}
	}
}

// TokenizeValue tokenises string values. Every other kind, including null,
// yields an empty sequence.
func TokenizeValue(v document.Value) iter.Seq[string] {
	text, ok := v.Text()
	if !ok {
		return empty
	}
	return Tokenize(text)
}

// Collect drains seq into a slice.
func Collect(seq iter.Seq[string]) []string {
	var terms []string
	for term := range seq {
		terms = append(terms, term)
	}
	return terms
}

// Count returns the number of terms in seq.
func Count(seq iter.Seq[string]) int {
	n := 0
	for range seq {
		n++
	}
	return n
}

func empty(func(string) bool) {}

func isWordRune(r rune) bool {
	if r < utf8.RuneSelf {
		return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9'
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

func normalize(word string) string {
	for i := 0; i < len(word); i++ {
		c := word[i]
		if c >= utf8.RuneSelf || 'A' <= c && c <= 'Z' {
			return strings.ToLower(word)
		}
	}
	return word
}
