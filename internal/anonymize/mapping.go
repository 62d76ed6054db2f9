package anonymize

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Mapping is the ordered placeholder → original-value table for one request.
// It marshals as a JSON object whose keys appear in registration order, and
// unmarshals from any JSON object preserving the document's key order.
type Mapping []Pair

// Get returns the value stored for a placeholder.
func (m Mapping) Get(placeholder string) (string, bool) {
	for _, p := range m {
		if p.Placeholder == placeholder {
			return p.Value, true
		}
	}
	return "", false
}

// Map returns a plain lookup map. Order is lost; use the slice when order
// matters.
func (m Mapping) Map() map[string]string {
	out := make(map[string]string, len(m))
	for _, p := range m {
		out[p.Placeholder] = p.Value
	}
	return out
}

// MarshalJSON emits a JSON object with keys in registration order.
func (m Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(p.Placeholder)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of string values, keeping key order.
func (m *Mapping) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("mapping must be a JSON object")
	}
	var pairs []Pair
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("mapping key must be a string")
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("mapping value for %q: %w", key, err)
		}
		pairs = append(pairs, Pair{Placeholder: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = pairs
	return nil
}
