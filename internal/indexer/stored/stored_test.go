package stored

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/document"
)

func mustDoc(t *testing.T, raw string) document.Document {
	t.Helper()
	doc, err := document.ParseObject([]byte(raw))
	require.NoError(t, err)
	return doc
}

func TestStoreFieldsKeepsValuesVerbatim(t *testing.T) {
	s := NewStore([]string{"title", "meta", "missing", "rating"})
	s.StoreFields(0, mustDoc(t, `{"id": 1, "title": "Hello World", "meta": {"tags": ["a", "b"]}, "rating": null, "body": "x"}`))

	record := s.Records()[0]
	require.Len(t, record, 3)
	assert.Equal(t, []string{"title", "meta", "rating"}, []string{record[0].Name, record[1].Name, record[2].Name})

	title, ok := record.Get("title")
	require.True(t, ok)
	assert.Equal(t, `"Hello World"`, string(title))

	meta, _ := record.Get("meta")
	assert.JSONEq(t, `{"tags":["a","b"]}`, string(meta))

	_, ok = record.Get("missing")
	assert.False(t, ok)
	_, ok = record.Get("body")
	assert.False(t, ok)
}

func TestDisabledStoreKeepsNothing(t *testing.T) {
	s := NewStore(nil)
	s.StoreFields(0, mustDoc(t, `{"title": "x"}`))
	assert.False(t, s.Enabled())
	assert.Empty(t, s.Records())
}

func TestEmptyRecordWhenNoStoredFieldPresent(t *testing.T) {
	s := NewStore([]string{"title"})
	s.StoreFields(3, mustDoc(t, `{"id": "a"}`))
	record, ok := s.Records()[3]
	require.True(t, ok)
	assert.Empty(t, record)
}

func TestMerge(t *testing.T) {
	a := NewStore([]string{"title"})
	a.StoreFields(0, mustDoc(t, `{"title": "a"}`))
	b := NewStore([]string{"title"})
	b.StoreFields(1, mustDoc(t, `{"title": "b"}`))

	merged, err := Merge([]string{"title"}, a, b)
	require.NoError(t, err)
	assert.Len(t, merged.Records(), 2)

	_, err = Merge([]string{"title"}, a, a)
	assert.Error(t, err)
}
