package indexer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/document"
	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/indexer/artifact"
	apperrors "github.com/Adithya-Monish-Kumar-K/index-builder/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/index-builder/pkg/metrics"
)

func decodeDocs(t *testing.T, raw string) []document.Document {
	t.Helper()
	docs, err := document.Decode(strings.NewReader(raw))
	require.NoError(t, err)
	return docs
}

func bodyConfig() document.IndexConfig {
	return document.IndexConfig{Fields: []string{"body"}, StoredFields: []string{}, IDField: "id"}
}

func TestBuildTermFrequencies(t *testing.T) {
	docs := decodeDocs(t, `[{"id": "a", "body": "the cat sat on the mat"}]`)
	idx, err := Build(context.Background(), bodyConfig(), docs, Options{})
	require.NoError(t, err)

	expected := map[string]int{"the": 2, "cat": 1, "sat": 1, "on": 1, "mat": 1}
	assert.Equal(t, len(expected), idx.Inverted.Len())
	for term, freq := range expected {
		tp, ok := idx.Inverted.Get(term)
		require.True(t, ok, term)
		assert.Equal(t, freq, tp.Frequency(0, 0), term)
	}
	assert.Equal(t, []int{6}, idx.FieldLength[0])
}

func TestBuildAverageFieldLength(t *testing.T) {
	docs := decodeDocs(t, `[
		{"id": 1, "body": "one two three four five six"},
		{"id": 2, "body": "one two three four"},
		{"id": 3, "title": "no body here"}
	]`)
	idx, err := Build(context.Background(), bodyConfig(), docs, Options{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{5.0}, idx.AverageFieldLength)
	assert.Equal(t, []int{0}, idx.FieldLength[2])
}

func corpus(n int) string {
	words := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta"}
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		var title, body []string
		for j := 0; j < 1+i%3; j++ {
			title = append(title, words[(i+j)%len(words)])
		}
		for j := 0; j < 2+i%7; j++ {
			body = append(body, words[(i*j+1)%len(words)])
		}
		fmt.Fprintf(&sb, `{"id": "doc-%d", "title": %q, "body": %q, "rank": %d}`,
			i, strings.Join(title, " "), strings.Join(body, " "), i%5)
	}
	sb.WriteString("]")
	return sb.String()
}

func TestParallelBuildIsDeterministic(t *testing.T) {
	docs := decodeDocs(t, corpus(257))
	cfg := document.IndexConfig{
		Fields:       []string{"title", "body"},
		StoredFields: []string{"title", "rank"},
		IDField:      "id",
	}

	var outputs [][]byte
	for _, workers := range []int{1, 2, 3, 8, 64} {
		idx, err := Build(context.Background(), cfg, docs, Options{Workers: workers})
		require.NoError(t, err)
		data, err := artifact.Serialize(idx)
		require.NoError(t, err)
		outputs = append(outputs, data)
	}
	for i := 1; i < len(outputs); i++ {
		assert.Equal(t, string(outputs[0]), string(outputs[i]))
	}
}

func TestDocumentIDsFollowInputOrder(t *testing.T) {
	docs := decodeDocs(t, `[{"id": "c", "body": "x"}, {"id": 7, "body": "y"}, {"id": "a", "body": "z"}]`)
	first, err := Build(context.Background(), bodyConfig(), docs, Options{Workers: 3})
	require.NoError(t, err)
	second, err := Build(context.Background(), bodyConfig(), docs, Options{Workers: 1})
	require.NoError(t, err)

	assert.Equal(t, first.DocumentIDs, second.DocumentIDs)
	assert.Equal(t, `"c"`, first.DocumentIDs[0].String())
	assert.Equal(t, `7`, first.DocumentIDs[1].String())
	assert.Equal(t, `"a"`, first.DocumentIDs[2].String())
}

func TestDuplicateDocumentFailsBuild(t *testing.T) {
	docs := decodeDocs(t, `[{"id": "x", "body": "a"}, {"id": "y", "body": "b"}, {"id": "x", "body": "c"}]`)
	idx, err := Build(context.Background(), bodyConfig(), docs, Options{})
	assert.Nil(t, idx)

	var dup *apperrors.DuplicateDocumentError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, `"x"`, dup.ID)
	assert.Equal(t, 0, dup.FirstPosition)
	assert.Equal(t, 2, dup.Position)
}

func TestStringAndNumberIDsAreDistinct(t *testing.T) {
	docs := decodeDocs(t, `[{"id": "1", "body": "a"}, {"id": 1, "body": "b"}]`)
	idx, err := Build(context.Background(), bodyConfig(), docs, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, idx.DocumentCount)
}

func TestMissingIdentifier(t *testing.T) {
	for _, raw := range []string{
		`[{"id": "a", "body": "x"}, {"body": "no id"}]`,
		`[{"id": true, "body": "x"}]`,
		`[{"id": null, "body": "x"}]`,
	} {
		_, err := Build(context.Background(), bodyConfig(), decodeDocs(t, raw), Options{})
		assert.True(t, errors.Is(err, apperrors.ErrMissingIdentifier), raw)
	}
}

func TestCustomIDField(t *testing.T) {
	cfg := bodyConfig()
	cfg.IDField = "slug"
	docs := decodeDocs(t, `[{"slug": "first", "id": 1, "body": "x"}]`)
	idx, err := Build(context.Background(), cfg, docs, Options{})
	require.NoError(t, err)
	assert.Equal(t, `"first"`, idx.DocumentIDs[0].String())
}

func TestEmptyIDFieldDefaultsToID(t *testing.T) {
	cfg := document.IndexConfig{Fields: []string{"body"}, StoredFields: []string{}}
	idx, err := Build(context.Background(), cfg, decodeDocs(t, `[{"id": "a", "body": "x"}]`), Options{})
	require.NoError(t, err)
	assert.Equal(t, `"a"`, idx.DocumentIDs[0].String())

	_, err = NewEngine(document.IndexConfig{Fields: []string{"body"}, IDField: "  "}, Options{})
	assert.True(t, errors.Is(err, apperrors.ErrConfiguration))
}

func TestEquivalentNumericIDsAreDuplicates(t *testing.T) {
	docs := decodeDocs(t, `[{"id": 1, "body": "a"}, {"id": 1.0, "body": "b"}, {"id": 1e0, "body": "c"}]`)
	idx, err := Build(context.Background(), bodyConfig(), docs, Options{Workers: 2})
	assert.Nil(t, idx)

	var dup *apperrors.DuplicateDocumentError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, `1.0`, dup.ID)
	assert.Equal(t, 0, dup.FirstPosition)
	assert.Equal(t, 1, dup.Position)
}

func TestUnknownFieldsAreNotIndexedButMayBeStored(t *testing.T) {
	cfg := document.IndexConfig{
		Fields:       []string{"title"},
		StoredFields: []string{"title", "extra"},
		IDField:      "id",
	}
	docs := decodeDocs(t, `[{"id": 1, "title": "Hello World", "extra": "unindexed words", "other": "ignored"}]`)
	idx, err := Build(context.Background(), cfg, docs, Options{})
	require.NoError(t, err)

	_, ok := idx.Inverted.Get("unindexed")
	assert.False(t, ok)
	_, ok = idx.Inverted.Get("ignored")
	assert.False(t, ok)
	_, ok = idx.Inverted.Get("hello")
	assert.True(t, ok)

	extra, ok := idx.StoredFields[0].Get("extra")
	require.True(t, ok)
	assert.Equal(t, `"unindexed words"`, string(extra))
	_, ok = idx.StoredFields[0].Get("other")
	assert.False(t, ok)
}

func TestStoredFieldSurvivesRoundTrip(t *testing.T) {
	cfg := document.IndexConfig{Fields: []string{"title"}, StoredFields: []string{"title"}, IDField: "id"}
	docs := decodeDocs(t, `[{"id": "h", "title": "Hello World"}]`)
	idx, err := Build(context.Background(), cfg, docs, Options{})
	require.NoError(t, err)

	data, err := artifact.Serialize(idx)
	require.NoError(t, err)
	loaded, err := artifact.Deserialize(data)
	require.NoError(t, err)
	title, ok := loaded.StoredFields[0].Get("title")
	require.True(t, ok)
	assert.Equal(t, `"Hello World"`, string(title))

	again, err := artifact.Serialize(loaded)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestNonStringValuesDegradeToEmpty(t *testing.T) {
	docs := decodeDocs(t, `[{"id": 1, "body": 42}, {"id": 2, "body": ["a", "b"]}, {"id": 3, "body": ""}]`)
	idx, err := Build(context.Background(), bodyConfig(), docs, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Inverted.Len())
	assert.Equal(t, []float64{0}, idx.AverageFieldLength)
	for docID := 0; docID < 3; docID++ {
		assert.Equal(t, []int{0}, idx.FieldLength[docID])
	}
}

func TestEmptyCorpus(t *testing.T) {
	cfg := document.IndexConfig{Fields: []string{"title"}, StoredFields: []string{}, IDField: "id"}
	idx, err := Build(context.Background(), cfg, nil, Options{})
	require.NoError(t, err)
	data, err := artifact.Serialize(idx)
	require.NoError(t, err)
	assert.Equal(t,
		`{"documentCount":0,"nextId":0,"documentIds":{},"fieldIds":{"title":0},"fieldLength":{},`+
			`"averageFieldLength":[0],"storedFields":{},"dirtCount":0,"index":[],"serializationVersion":2}`,
		string(data))
}

func TestInvalidConfigRejected(t *testing.T) {
	_, err := NewEngine(document.IndexConfig{StoredFields: []string{}}, Options{})
	assert.True(t, errors.Is(err, apperrors.ErrConfiguration))
}

func TestCancelledContextAbortsBuild(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	idx, err := Build(ctx, bodyConfig(), decodeDocs(t, corpus(10)), Options{Workers: 2})
	assert.Nil(t, idx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBuildReportsMetrics(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	docs := decodeDocs(t, corpus(10))
	_, err := Build(context.Background(), bodyConfig(), docs, Options{Workers: 2, Metrics: m})
	require.NoError(t, err)

	assert.Equal(t, 10.0, testutil.ToFloat64(m.DocumentsIndexedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BuildsTotal.WithLabelValues("success")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.ShardDocCount.WithLabelValues("1")))
	assert.Positive(t, testutil.ToFloat64(m.IndexTerms))

	assert.Equal(t, 2, testutil.CollectAndCount(m.ShardDocCount))

	_, err = Build(context.Background(), bodyConfig(), docs, Options{Workers: 1, Metrics: m})
	require.NoError(t, err)
	assert.Equal(t, 1, testutil.CollectAndCount(m.ShardDocCount))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.ShardDocCount.WithLabelValues("0")))

	_, err = Build(context.Background(), bodyConfig(), decodeDocs(t, `[{"body": "x"}]`), Options{Metrics: m})
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BuildsTotal.WithLabelValues("failure")))
}

func BenchmarkBuild(b *testing.B) {
	docs, err := document.Decode(strings.NewReader(corpus(2000)))
	if err != nil {
		b.Fatal(err)
	}
	cfg := document.IndexConfig{Fields: []string{"title", "body"}, StoredFields: []string{"title"}, IDField: "id"}
	for _, workers := range []int{1, 4} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				idx, err := Build(context.Background(), cfg, docs, Options{Workers: workers})
				if err != nil {
					b.Fatal(err)
				}
				if _, err := artifact.Serialize(idx); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
