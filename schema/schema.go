// Package schema describes every configurable field of the terminal config:
// how fields are grouped for presentation, their keys, kinds and defaults.
//
// A Schema is built once and never mutated. Groups, sections and fields keep
// their declaration order, which is also the order the serializer emits lines.
package schema

import (
	"errors"
	"fmt"
)

// Field is one configurable setting.
type Field struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Doc     string   `json:"doc,omitempty"`
	Kind    Kind     `json:"kind"`
	Default Value    `json:"default"`
	Options []string `json:"options,omitempty"`
}

// Section is an ordered run of fields inside a group.
type Section struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Group is the top level of the schema tree.
type Group struct {
	Name     string    `json:"name"`
	Sections []Section `json:"sections"`
}

// Schema is an immutable, ordered set of field definitions.
type Schema struct {
	groups []Group
	fields []Field
	index  map[string]int
}

var ErrDuplicateKey = errors.New("duplicate field key")

// New validates groups and builds a Schema. Keys must be unique and non-empty,
// defaults must match their field kind, and options are only allowed on enums.
func New(groups ...Group) (*Schema, error) {
	s := &Schema{index: make(map[string]int)}
	for _, g := range groups {
		for _, sec := range g.Sections {
			for _, f := range sec.Fields {
				if f.Key == "" {
					return nil, fmt.Errorf("%s/%s: field %q has no key", g.Name, sec.Name, f.Label)
				}
				if _, dup := s.index[f.Key]; dup {
					return nil, fmt.Errorf("%s/%s: %w: %s", g.Name, sec.Name, ErrDuplicateKey, f.Key)
				}
				if f.Default != nil && !f.Kind.Accepts(f.Default) {
					return nil, fmt.Errorf("%s: default %T does not fit kind %s", f.Key, f.Default, f.Kind)
				}
				if len(f.Options) > 0 && f.Kind != KindEnum {
					return nil, fmt.Errorf("%s: options on non-enum kind %s", f.Key, f.Kind)
				}
				s.index[f.Key] = len(s.fields)
				s.fields = append(s.fields, f)
			}
		}
	}
	s.groups = copyGroups(groups)
	return s, nil
}

// MustNew is New for statically declared schemas.
func MustNew(groups ...Group) *Schema {
	s, err := New(groups...)
	if err != nil {
		panic(err)
	}
	return s
}

// Lookup returns the field declared under key.
func (s *Schema) Lookup(key string) (Field, bool) {
	i, ok := s.index[key]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Fields returns every field in canonical group → section → field order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Groups returns a copy of the schema tree.
func (s *Schema) Groups() []Group {
	return copyGroups(s.groups)
}

// Len is the number of fields.
func (s *Schema) Len() int {
	return len(s.fields)
}

func copyGroups(groups []Group) []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		secs := make([]Section, len(g.Sections))
		for j, sec := range g.Sections {
			fields := make([]Field, len(sec.Fields))
			copy(fields, sec.Fields)
			secs[j] = Section{Name: sec.Name, Fields: fields}
		}
		out[i] = Group{Name: g.Name, Sections: secs}
	}
	return out
}
