package document

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/index-builder/pkg/errors"
)

func TestParseValueKinds(t *testing.T) {
	tests := []struct {
		raw  string
		kind Kind
		out  string
	}{
		{`null`, KindNull, `null`},
		{`"Hello World"`, KindString, `"Hello World"`},
		{`42`, KindNumber, `42`},
		{`-1.5e3`, KindNumber, `-1.5e3`},
		{`true`, KindBool, `true`},
		{`{ "a" : [1, 2] }`, KindObject, `{"a":[1,2]}`},
		{`[ "x" ]`, KindArray, `["x"]`},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, err := ParseValue([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.out, string(v.Raw()))
		})
	}
}

func TestValueKeyDistinguishesStringsFromNumbers(t *testing.T) {
	assert.NotEqual(t, String("1").Key(), Int(1).Key())
	assert.Equal(t, String("a").Key(), MustParseValue(`"a"`).Key())
}

func TestValueKeyComparesNumbersByValue(t *testing.T) {
	one := Int(1).Key()
	for _, literal := range []string{`1`, `1.0`, `1e0`, `10e-1`} {
		v := MustParseValue(literal)
		assert.Equal(t, one, v.Key(), literal)
		assert.Equal(t, literal, v.String(), literal)
	}
	assert.NotEqual(t, one, MustParseValue(`1.5`).Key())
	assert.Equal(t, MustParseValue(`-0`).Key(), MustParseValue(`0`).Key())
}

func TestDecodePreservesOrder(t *testing.T) {
	docs, err := Decode(strings.NewReader(`[
		{"id": "a", "body": "the cat"},
		{"id": 2, "body": null},
		{"id": "c"}
	]`))
	require.NoError(t, err)
	require.Len(t, docs, 3)

	id, err := docs[1].ID(DefaultIDField)
	require.NoError(t, err)
	assert.Equal(t, KindNumber, id.Kind())

	body, ok := docs[1].Get("body")
	require.True(t, ok)
	assert.Equal(t, KindNull, body.Kind())

	_, ok = docs[2].Get("body")
	assert.False(t, ok)
}

func TestDecodeRejectsNonObjects(t *testing.T) {
	_, err := Decode(strings.NewReader(`[{"id": "a"}, 3]`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrMalformedDocument))
	assert.Contains(t, err.Error(), "document 1")

	_, err = Decode(strings.NewReader(`{"id": "a"}`))
	assert.True(t, errors.Is(err, apperrors.ErrMalformedDocument))
}

func TestDocumentIDRequiresScalar(t *testing.T) {
	doc, err := ParseObject([]byte(`{"id": {"nested": 1}}`))
	require.NoError(t, err)
	_, err = doc.ID(DefaultIDField)
	assert.ErrorIs(t, err, apperrors.ErrMissingIdentifier)

	_, err = New(map[string]Value{}).ID("uid")
	assert.ErrorIs(t, err, apperrors.ErrMissingIdentifier)
}
