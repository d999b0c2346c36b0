package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind tags the JSON shape of a field value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a single field value. It keeps the compact JSON it was decoded
// from so stored fields can be emitted verbatim.
type Value struct {
	kind Kind
	raw  json.RawMessage
	text string
}

// ParseValue classifies and compacts one JSON value.
func ParseValue(raw []byte) (Value, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return Value{}, fmt.Errorf("compacting value: %w", err)
	}
	b := buf.Bytes()
	if len(b) == 0 {
		return Value{}, fmt.Errorf("empty value")
	}
	v := Value{raw: json.RawMessage(b)}
	switch b[0] {
	case 'n':
		v.kind = KindNull
	case '"':
		v.kind = KindString
		if err := json.Unmarshal(b, &v.text); err != nil {
			return Value{}, fmt.Errorf("decoding string value: %w", err)
		}
	case 't', 'f':
		v.kind = KindBool
	case '{':
		v.kind = KindObject
	case '[':
		v.kind = KindArray
	default:
		v.kind = KindNumber
	}
	return v, nil
}

// MustParseValue is ParseValue for literals known to be valid.
func MustParseValue(raw string) Value {
	v, err := ParseValue([]byte(raw))
	if err != nil {
		panic(err)
	}
	return v
}

// String builds a string value.
func String(s string) Value {
	raw, _ := json.Marshal(s)
	return Value{kind: KindString, raw: raw, text: s}
}

// Int builds a number value.
func Int(n int64) Value {
	return Value{kind: KindNumber, raw: json.RawMessage(strconv.FormatInt(n, 10))}
}

func (v Value) Kind() Kind {
	return v.kind
}

// Raw returns the compact JSON encoding of the value.
func (v Value) Raw() json.RawMessage {
	if v.raw == nil {
		return json.RawMessage("null")
	}
	return v.raw
}

// Text returns the decoded string for string values only.
func (v Value) Text() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.text, true
}

// IsIdentifier reports whether the value may serve as an external
// document id.
func (v Value) IsIdentifier() bool {
	return v.kind == KindString || v.kind == KindNumber
}

// Key is the identity used when comparing external ids. Strings compare by
// decoded text and numbers by numeric value, so 1, 1.0 and 1e0 are one id
// while "1" and 1 stay distinct. Raw keeps the literal as written.
func (v Value) Key() string {
	switch v.kind {
	case KindString:
		return "s:" + v.text
	case KindNumber:
		if f, err := strconv.ParseFloat(string(v.raw), 64); err == nil {
			if f == 0 {
				f = 0 // -0
			}
			return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
		}
		return "n:" + string(v.raw)
	default:
		return v.kind.String() + ":" + string(v.Raw())
	}
}

func (v Value) String() string {
	return string(v.Raw())
}
