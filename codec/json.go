package codec

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// MarshalJSON writes the object's entries in insertion order, which keeps the
// reserved tag entry first on the wire.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.Newf("expected an object, got %v", tok)
	}

	o.keys = nil
	o.values = make(map[string]any)

	return decodeEntries(dec, o)
}

func decodeEntries(dec *json.Decoder, o *Object) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		key, ok := tok.(string)
		if !ok {
			return errors.Newf("expected an entry name, got %v", tok)
		}

		value, err := decodeValue(dec)
		if err != nil {
			return err
		}

		o.set(key, value)
	}

	// Closing '}'.
	_, err := dec.Token()
	return err
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch tok := tok.(type) {
	case json.Delim:
		switch tok {
		case '{':
			obj := NewObject()
			if err := decodeEntries(dec, obj); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			list := make([]any, 0)
			for dec.More() {
				el, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, el)
			}
			// Closing ']'.
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		}
		return nil, errors.Newf("unexpected delimiter %v", tok)
	default:
		// string, bool, json.Number or nil.
		return tok, nil
	}
}
