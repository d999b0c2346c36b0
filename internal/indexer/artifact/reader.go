package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/document"
	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/index-builder/internal/indexer/stored"
	apperrors "github.com/Adithya-Monish-Kumar-K/index-builder/pkg/errors"
)

type wireIndex struct {
	DocumentCount      *int                       `json:"documentCount"`
	NextID             *int                       `json:"nextId"`
	DocumentIDs        map[string]json.RawMessage `json:"documentIds"`
	FieldIDs           map[string]int             `json:"fieldIds"`
	FieldLength        map[string][]*int          `json:"fieldLength"`
	AverageFieldLength []*float64                 `json:"averageFieldLength"`
	StoredFields       map[string]json.RawMessage `json:"storedFields"`
	DirtCount          *int                       `json:"dirtCount"`
	Index              []json.RawMessage          `json:"index"`
}

// version 1 nests the per-document frequencies under "ds".
type legacyFieldEntry struct {
	DS map[string]int `json:"ds"`
}

// Read loads an artifact from r.
func Read(r io.Reader) (*Index, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading artifact: %w", err)
	}
	return Deserialize(data)
}

// Deserialize decodes a version 1 or version 2 artifact. Unknown versions
// fail with SchemaVersionError and structural violations with
// MalformedArtifactError.
func Deserialize(data []byte) (*Index, error) {
	version, err := readVersion(data)
	if err != nil {
		return nil, err
	}

	var wire wireIndex
	if err := json.Unmarshal(data, &wire); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, apperrors.Malformed(typeErr.Field, "expected %s, got %s", typeErr.Type, typeErr.Value)
		}
		return nil, apperrors.Malformed("artifact", "%v", err)
	}
	if err := wire.requireSections(); err != nil {
		return nil, err
	}

	idx := &Index{
		DocumentCount: *wire.DocumentCount,
		NextID:        *wire.NextID,
		DocumentIDs:   make(map[int]document.Value, len(wire.DocumentIDs)),
		FieldLength:   make(map[int][]int, len(wire.FieldLength)),
		StoredFields:  make(map[int]stored.Record, len(wire.StoredFields)),
	}
	if wire.DirtCount != nil {
		idx.DirtCount = *wire.DirtCount
	}

	if idx.FieldNames, err = decodeFieldIDs(wire.FieldIDs); err != nil {
		return nil, err
	}
	numFields := len(idx.FieldNames)

	for key, raw := range wire.DocumentIDs {
		docID, err := parseKey("documentIds", key)
		if err != nil {
			return nil, err
		}
		v, err := document.ParseValue(raw)
		if err != nil {
			return nil, apperrors.Malformed("documentIds", "document %d: %v", docID, err)
		}
		idx.DocumentIDs[docID] = v
	}

	for key, row := range wire.FieldLength {
		docID, err := parseKey("fieldLength", key)
		if err != nil {
			return nil, err
		}
		if len(row) > numFields {
			return nil, apperrors.Malformed("fieldLength", "document %d has %d entries for %d fields", docID, len(row), numFields)
		}
		// Absent fields may be encoded as null or left off the end.
		lengths := make([]int, numFields)
		for fieldID, n := range row {
			if n != nil {
				lengths[fieldID] = *n
			}
		}
		idx.FieldLength[docID] = lengths
	}

	if len(wire.AverageFieldLength) > numFields {
		return nil, apperrors.Malformed("averageFieldLength", "has %d entries for %d fields", len(wire.AverageFieldLength), numFields)
	}
	idx.AverageFieldLength = make([]float64, numFields)
	for fieldID, avg := range wire.AverageFieldLength {
		if avg != nil {
			idx.AverageFieldLength[fieldID] = *avg
		}
	}

	for key, raw := range wire.StoredFields {
		docID, err := parseKey("storedFields", key)
		if err != nil {
			return nil, err
		}
		record, err := decodeRecord(raw)
		if err != nil {
			return nil, apperrors.Malformed("storedFields", "document %d: %v", docID, err)
		}
		idx.StoredFields[docID] = record
	}

	if idx.Inverted, err = decodeIndex(wire.Index, version, numFields); err != nil {
		return nil, err
	}
	if err := idx.Validate(); err != nil {
		return nil, err
	}
	return idx, nil
}

func readVersion(data []byte) (int, error) {
	var probe struct {
		SerializationVersion json.RawMessage `json:"serializationVersion"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0, apperrors.Malformed("artifact", "not a JSON object: %v", err)
	}
	var version int
	if probe.SerializationVersion == nil || json.Unmarshal(probe.SerializationVersion, &version) != nil {
		return 0, &apperrors.SchemaVersionError{}
	}
	if version != 1 && version != 2 {
		return 0, &apperrors.SchemaVersionError{Version: version}
	}
	return version, nil
}

func (w *wireIndex) requireSections() error {
	missing := func(section string) error {
		return apperrors.Malformed(section, "missing")
	}
	switch {
	case w.DocumentCount == nil:
		return missing("documentCount")
	case w.NextID == nil:
		return missing("nextId")
	case w.DocumentIDs == nil:
		return missing("documentIds")
	case w.FieldIDs == nil:
		return missing("fieldIds")
	case w.FieldLength == nil:
		return missing("fieldLength")
	case w.AverageFieldLength == nil:
		return missing("averageFieldLength")
	case w.StoredFields == nil:
		return missing("storedFields")
	case w.Index == nil:
		return missing("index")
	}
	return nil
}

// decodeFieldIDs turns the name to id map into a slice indexed by id. Ids
// must be exactly 0..n-1.
func decodeFieldIDs(fieldIDs map[string]int) ([]string, error) {
	names := make([]string, len(fieldIDs))
	filled := make([]bool, len(fieldIDs))
	for name, id := range fieldIDs {
		if id < 0 || id >= len(names) || filled[id] {
			return nil, apperrors.Malformed("fieldIds", "field %q has non-contiguous id %d", name, id)
		}
		names[id] = name
		filled[id] = true
	}
	return names, nil
}

func parseKey(section, key string) (int, error) {
	n, err := strconv.Atoi(key)
	if err != nil || n < 0 || strconv.Itoa(n) != key {
		return 0, apperrors.Malformed(section, "invalid id key %q", key)
	}
	return n, nil
}

// decodeRecord reads a stored field object, keeping its key order.
func decodeRecord(raw json.RawMessage) (stored.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("record is not an object")
	}
	record := stored.Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		v, err := document.ParseValue(value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		record = append(record, stored.Field{Name: name, Value: v.Raw()})
	}
	return record, nil
}

func decodeIndex(entries []json.RawMessage, version, numFields int) (*index.InvertedIndex, error) {
	b := index.NewBuilder()
	seen := make(map[string]struct{}, len(entries))
	for i, raw := range entries {
		var entry []json.RawMessage
		if err := json.Unmarshal(raw, &entry); err != nil || len(entry) != 2 {
			return nil, apperrors.Malformed("index", "entry %d is not a [term, postings] pair", i)
		}
		var term string
		if err := json.Unmarshal(entry[0], &term); err != nil {
			return nil, apperrors.Malformed("index", "entry %d has a non-string term", i)
		}
		if _, dup := seen[term]; dup {
			return nil, apperrors.Malformed("index", "term %q listed twice", term)
		}
		seen[term] = struct{}{}

		postings, err := decodePostings(term, entry[1], version, numFields)
		if err != nil {
			return nil, err
		}
		for _, p := range postings {
			if err := b.AddPosting(term, p); err != nil {
				return nil, apperrors.Malformed("index", "%v", err)
			}
		}
	}
	return b.Finalize(), nil
}

func decodePostings(term string, raw json.RawMessage, version, numFields int) ([]index.Posting, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, apperrors.Malformed("index", "term %q: postings are not an object", term)
	}
	var postings []index.Posting
	for fieldKey, fieldRaw := range fields {
		fieldID, err := parseKey("index", fieldKey)
		if err != nil {
			return nil, err
		}
		if fieldID >= numFields {
			return nil, apperrors.Malformed("index", "term %q references unknown field %d", term, fieldID)
		}
		var freqs map[string]int
		if version == 1 {
			var legacy legacyFieldEntry
			err = json.Unmarshal(fieldRaw, &legacy)
			freqs = legacy.DS
		} else {
			err = json.Unmarshal(fieldRaw, &freqs)
		}
		if err != nil {
			return nil, apperrors.Malformed("index", "term %q field %d: %v", term, fieldID, err)
		}
		for docKey, freq := range freqs {
			docID, err := parseKey("index", docKey)
			if err != nil {
				return nil, err
			}
			if freq <= 0 {
				return nil, apperrors.Malformed("index", "term %q field %d document %d has frequency %d", term, fieldID, docID, freq)
			}
			postings = append(postings, index.Posting{DocID: docID, FieldID: fieldID, Frequency: freq})
		}
	}
	slices.SortFunc(postings, func(a, b index.Posting) int {
		if a.FieldID != b.FieldID {
			return a.FieldID - b.FieldID
		}
		return a.DocID - b.DocID
	})
	return postings, nil
}
