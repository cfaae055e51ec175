// Package codec converts between the flat `key = value` config text and a
// typed State, driven by a schema.Schema.
//
// Parse and Serialize are pure: they do no I/O, keep no state between calls
// and never retain or mutate the maps they are given.
package codec

import (
	"strings"

	"ghostconf/schema"
)

// State maps field keys to runtime values. A state may be partial; missing
// keys read as the field default.
type State map[string]schema.Value

// Clone returns a shallow copy of st with list values copied.
func (st State) Clone() State {
	out := make(State, len(st))
	for k, v := range st {
		out[k] = schema.Clone(v)
	}
	return out
}

// Effective returns the state value for key, or the field default when the
// state has none. ok is false for keys the schema does not declare.
func Effective(s *schema.Schema, st State, key string) (v schema.Value, ok bool) {
	f, ok := s.Lookup(key)
	if !ok {
		return nil, false
	}
	if v, present := st[key]; present {
		return v, true
	}
	return f.Default, true
}

// Parse reads config text on top of previous and returns the new state.
// Comment lines, blank lines, lines without '=' and unknown keys are skipped.
// An empty right-hand side resets the key to its default.
func Parse(text string, s *schema.Schema, previous State) State {
	next := previous.Clone()
	// keys of multi-line kinds already started by this text
	started := make(map[string]bool)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		raw := strings.TrimSpace(line[eq+1:])

		f, ok := s.Lookup(key)
		if !ok {
			continue
		}

		if raw == "" {
			next[key] = schema.Clone(f.Default)
			started[key] = true
			continue
		}

		v := f.Kind.Decode(unquote(raw))
		if !f.Kind.Multi() {
			next[key] = v
			continue
		}
		var list schema.List
		if started[key] {
			list, _ = next[key].(schema.List)
		}
		next[key] = append(list[:len(list):len(list)], v)
		started[key] = true
	}
	return next
}

// Serialize renders st as config text in schema order, filling missing keys
// from defaults. List values produce one line per element. Values are written
// verbatim; nothing is quoted or escaped.
func Serialize(s *schema.Schema, st State) string {
	var lines []string
	for _, f := range s.Fields() {
		v, present := st[f.Key]
		if !present {
			v = f.Default
		}
		if v == nil {
			continue
		}
		if list, ok := v.(schema.List); ok {
			for _, e := range list {
				lines = append(lines, f.Key+" = "+schema.Format(e))
			}
			continue
		}
		lines = append(lines, f.Key+" = "+schema.Format(v))
	}
	return strings.Join(lines, "\n")
}

// Normalize parses text against defaults and serializes it back, producing the
// canonical, default-filled form.
func Normalize(s *schema.Schema, text string) string {
	return Serialize(s, Parse(text, s, nil))
}

// unquote strips one layer of matching single or double quotes.
func unquote(raw string) string {
	if len(raw) >= 2 {
		if q := raw[0]; (q == '"' || q == '\'') && raw[len(raw)-1] == q {
			return raw[1 : len(raw)-1]
		}
	}
	return raw
}
