// Package schema compiles Go struct shapes into structured-output schemas.
// Type tags use the upper-cased vocabulary expected by Gemini's responseSchema,
// and object properties keep their declaration order both in the
// propertyOrdering array and in the encoded properties object.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Type is an upper-cased primitive type tag.
type Type string

// Supported type tags.
const (
	TypeObject  Type = "OBJECT"
	TypeString  Type = "STRING"
	TypeNumber  Type = "NUMBER"
	TypeInteger Type = "INTEGER"
	TypeBoolean Type = "BOOLEAN"
	TypeArray   Type = "ARRAY"
)

// Schema describes the shape a structured-output producer must emit.
type Schema struct {
	Type             Type       `json:"type"`
	Title            string     `json:"title,omitempty"`
	Description      string     `json:"description,omitempty"`
	Properties       Properties `json:"properties,omitempty"`
	Required         []string   `json:"required,omitempty"`
	PropertyOrdering []string   `json:"propertyOrdering,omitempty"`
	Items            *Schema    `json:"items,omitempty"`
	Minimum          *float64   `json:"minimum,omitempty"`
	Maximum          *float64   `json:"maximum,omitempty"`
}

// Property is a single named field of an object schema.
type Property struct {
	Name   string
	Schema *Schema
}

// Properties is an ordered list of object fields. It encodes as a JSON
// object whose keys appear in slice order.
type Properties []Property

// Get returns the schema of the named property.
func (p Properties) Get(name string) (*Schema, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Schema, true
		}
	}
	return nil, false
}

// Names returns property names in declaration order.
func (p Properties) Names() []string {
	names := make([]string, len(p))
	for i, prop := range p {
		names[i] = prop.Name
	}
	return names
}

func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, prop := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(prop.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(prop.Schema)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", prop.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p *Properties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("properties must be a JSON object")
	}

	var props Properties
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected property key %v", tok)
		}

		var s Schema
		if err := dec.Decode(&s); err != nil {
			return fmt.Errorf("property %s: %w", name, err)
		}
		props = append(props, Property{Name: name, Schema: &s})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*p = props
	return nil
}
