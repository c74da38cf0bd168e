package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/mohae/deepcopy"
)

// IDField is the distinguished field holding a record's identifier.
const IDField = "id"

// Record is a schema-less JSON object. Values are the types produced by
// encoding/json with UseNumber: nil, bool, json.Number, string, []any and
// map[string]any.
type Record map[string]any

// ID returns the record's identifier. The returned Identifier has KindNone when
// the id field is missing or holds neither a number nor a string.
func (r Record) ID() Identifier {
	return IdentifierOf(r[IDField])
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return deepcopy.Copy(r).(Record)
}

// Kind is the kind of an identifier value.
type Kind uint8

const (
	KindNone Kind = iota
	KindNumeric
	KindTextual
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindTextual:
		return "textual"
	default:
		return "none"
	}
}

// Identifier is either a numeric or a textual id. Both kinds compare by their
// canonical text.
type Identifier struct {
	kind Kind
	text string
}

// NumericID returns a numeric identifier.
func NumericID(n int64) Identifier {
	return Identifier{kind: KindNumeric, text: strconv.FormatInt(n, 10)}
}

// TextualID returns a textual identifier.
func TextualID(s string) Identifier {
	return Identifier{kind: KindTextual, text: s}
}

// IdentifierOf classifies a raw JSON value as an identifier.
func IdentifierOf(v any) Identifier {
	switch x := v.(type) {
	case json.Number:
		return Identifier{kind: KindNumeric, text: x.String()}
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return Identifier{}
		}
		return Identifier{kind: KindNumeric, text: strconv.FormatFloat(x, 'f', -1, 64)}
	case int:
		return NumericID(int64(x))
	case int64:
		return NumericID(x)
	case string:
		return TextualID(x)
	default:
		return Identifier{}
	}
}

// Kind returns the identifier kind.
func (id Identifier) Kind() Kind { return id.kind }

// String returns the canonical text of the identifier.
func (id Identifier) String() string { return id.text }

// Value returns the JSON value to store in a record's id field.
func (id Identifier) Value() any {
	switch id.kind {
	case KindNumeric:
		return json.Number(id.text)
	case KindTextual:
		return id.text
	default:
		return nil
	}
}

var errNotInteger = errors.New("not a base-10 integer")

// Coerce builds an identifier of the same kind as id from the text of a request
// path. A numeric id only accepts an integer; KindNone never coerces.
func (id Identifier) Coerce(raw string) (Identifier, error) {
	switch id.kind {
	case KindTextual:
		return TextualID(raw), nil
	case KindNumeric:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Identifier{}, fmt.Errorf("coerce %q: %w", raw, errNotInteger)
		}
		return NumericID(n), nil
	default:
		return Identifier{}, fmt.Errorf("coerce %q: identifier kind %s", raw, id.kind)
	}
}

func newDecoder(r io.Reader) *json.Decoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec
}

// DecodeRecord parses a single JSON object. Numbers keep their literal text.
func DecodeRecord(data []byte) (Record, error) {
	var rec Record
	dec := newDecoder(bytes.NewReader(data))
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after JSON object")
	}
	if rec == nil {
		return nil, errors.New("expected a JSON object")
	}
	return rec, nil
}

// Decode parses a document mapping collection names to arrays of records.
func Decode(r io.Reader) (map[string][]Record, error) {
	var data map[string][]Record
	if err := newDecoder(r).Decode(&data); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, errors.New("expected a JSON object of collections")
	}
	for name, recs := range data {
		if recs == nil {
			return nil, fmt.Errorf("collection %q is not an array", name)
		}
		for i, rec := range recs {
			if rec == nil {
				return nil, fmt.Errorf("collection %q: element %d is not an object", name, i)
			}
		}
	}
	return data, nil
}
