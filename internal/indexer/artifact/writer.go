package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/indexer/index"
)

// Serialize encodes idx as a version 2 artifact. Map keys are emitted in
// ascending numeric order and index entries in ascending term order, so the
// same index always yields the same bytes.
func Serialize(idx *Index) ([]byte, error) {
	if err := idx.Validate(); err != nil {
		return nil, err
	}
	w := newWriter()

	w.raw(`{"documentCount":`)
	w.int(idx.DocumentCount)
	w.raw(`,"nextId":`)
	w.int(idx.NextID)

	w.raw(`,"documentIds":{`)
	for i, docID := range sortedKeys(idx.DocumentIDs) {
		w.sep(i)
		w.key(docID)
		w.buf.Write(idx.DocumentIDs[docID].Raw())
	}

	w.raw(`},"fieldIds":{`)
	for fieldID, name := range idx.FieldNames {
		w.sep(fieldID)
		w.str(name)
		w.buf.WriteByte(':')
		w.int(fieldID)
	}

	w.raw(`},"fieldLength":{`)
	for i, docID := range sortedKeys(idx.FieldLength) {
		w.sep(i)
		w.key(docID)
		w.buf.WriteByte('[')
		for j, n := range idx.FieldLength[docID] {
			w.sep(j)
			w.int(n)
		}
		w.buf.WriteByte(']')
	}

	w.raw(`},"averageFieldLength":[`)
	for i, avg := range idx.AverageFieldLength {
		w.sep(i)
		if err := w.float(avg); err != nil {
			return nil, fmt.Errorf("encoding average length of field %d: %w", i, err)
		}
	}

	w.raw(`],"storedFields":{`)
	for i, docID := range sortedKeys(idx.StoredFields) {
		w.sep(i)
		w.key(docID)
		w.buf.WriteByte('{')
		for j, f := range idx.StoredFields[docID] {
			w.sep(j)
			w.str(f.Name)
			w.buf.WriteByte(':')
			if len(f.Value) == 0 {
				w.raw("null")
			} else {
				w.buf.Write(f.Value)
			}
		}
		w.buf.WriteByte('}')
	}

	w.raw(`},"dirtCount":`)
	w.int(idx.DirtCount)

	w.raw(`,"index":[`)
	if idx.Inverted != nil {
		n := 0
		idx.Inverted.Walk(func(term string, tp *index.TermPostings) bool {
			w.sep(n)
			n++
			w.buf.WriteByte('[')
			w.str(term)
			w.raw(",{")
			first := true
			tp.Range(func(fieldID int, list []index.DocFrequency) bool {
				if !first {
					w.buf.WriteByte(',')
				}
				first = false
				w.key(fieldID)
				w.buf.WriteByte('{')
				for j, df := range list {
					w.sep(j)
					w.key(df.DocID)
					w.int(df.Frequency)
				}
				w.buf.WriteByte('}')
				return true
			})
			w.raw("}]")
			return true
		})
	}

	w.raw(`],"serializationVersion":`)
	w.int(SerializationVersion)
	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}

// WriteTo serializes idx into out and returns the number of bytes written.
func WriteTo(out io.Writer, idx *Index) (int64, error) {
	data, err := Serialize(idx)
	if err != nil {
		return 0, err
	}
	n, err := out.Write(data)
	if err != nil {
		return int64(n), fmt.Errorf("writing artifact: %w", err)
	}
	return int64(n), nil
}

type writer struct {
	buf     bytes.Buffer
	enc     *json.Encoder
	scratch []byte
}

func newWriter() *writer {
	w := &writer{}
	w.enc = json.NewEncoder(&w.buf)
	w.enc.SetEscapeHTML(false)
	return w
}

func (w *writer) raw(s string) {
	w.buf.WriteString(s)
}

func (w *writer) sep(i int) {
	if i > 0 {
		w.buf.WriteByte(',')
	}
}

func (w *writer) int(n int) {
	w.scratch = strconv.AppendInt(w.scratch[:0], int64(n), 10)
	w.buf.Write(w.scratch)
}

// key writes a numeric object key such as "12":.
func (w *writer) key(n int) {
	w.buf.WriteByte('"')
	w.int(n)
	w.raw(`":`)
}

// str writes a JSON string. Encoding a string never fails; the encoder's
// trailing newline is dropped.
func (w *writer) str(s string) {
	_ = w.enc.Encode(s)
	w.buf.Truncate(w.buf.Len() - 1)
}

func (w *writer) float(f float64) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	w.buf.Write(b)
	return nil
}
