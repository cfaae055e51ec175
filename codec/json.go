package codec

import (
	"encoding/json"
	"fmt"

	"ghostconf/schema"
)

// MarshalJSON encodes a state as a flat JSON object.
func (st State) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(st))
	for k, v := range st {
		m[k] = v
	}
	return json.Marshal(m)
}

// DecodeState reads a JSON object into a State, typing each value by its
// field kind. Keys the schema does not declare are dropped.
func DecodeState(s *schema.Schema, data []byte) (State, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	st := make(State, len(raw))
	for key, msg := range raw {
		f, ok := s.Lookup(key)
		if !ok {
			continue
		}
		v, err := decodeValue(f.Kind, msg)
		if err != nil {
			return nil, fmt.Errorf("decode state: %s: %w", key, err)
		}
		st[key] = v
	}
	return st, nil
}

func decodeValue(k schema.Kind, msg json.RawMessage) (schema.Value, error) {
	switch k {
	case schema.KindBoolean:
		var b bool
		if err := json.Unmarshal(msg, &b); err != nil {
			return nil, fmt.Errorf("want boolean: %w", err)
		}
		return schema.Bool(b), nil
	case schema.KindNumber:
		var n schema.Number
		if err := json.Unmarshal(msg, &n); err != nil {
			return nil, fmt.Errorf("want number: %w", err)
		}
		return n, nil
	case schema.KindColor, schema.KindEnum, schema.KindText, schema.KindFile, schema.KindKeybindingList:
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return nil, fmt.Errorf("want string: %w", err)
		}
		return schema.String(s), nil
	case schema.KindRepeatable:
		var s string
		if err := json.Unmarshal(msg, &s); err == nil {
			return schema.String(s), nil
		}
		var items []string
		if err := json.Unmarshal(msg, &items); err != nil {
			return nil, fmt.Errorf("want string or list of strings: %w", err)
		}
		list := make(schema.List, len(items))
		for i, it := range items {
			list[i] = schema.String(it)
		}
		return list, nil
	}
	return nil, fmt.Errorf("unhandled kind %s", k)
}
