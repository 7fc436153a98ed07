package schema

import (
	"fmt"
	"strings"
)

// Schema is the ordered list of fields making up one fixed-size record.
// Field order is byte order within the record.
type Schema struct {
	attributes []Descriptor
	byteSize   int
}

// NewSchema builds a schema from catalog keys, in order. An unknown key fails
// the whole construction.
func NewSchema(keys ...string) (*Schema, error) {
	s := &Schema{attributes: make([]Descriptor, 0, len(keys))}
	for _, key := range keys {
		d, err := LookupDescriptor(key)
		if err != nil {
			return nil, err
		}
		s.Add(d)
	}
	return s, nil
}

// MustNewSchema is NewSchema that panics on error. Intended for fixed layouts
// in tests and tools.
func MustNewSchema(keys ...string) *Schema {
	s, err := NewSchema(keys...)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseSchema splits a comma-separated key list and builds a schema.
func ParseSchema(list string) (*Schema, error) {
	var keys []string
	for _, k := range strings.Split(list, ",") {
		k = strings.ToUpper(strings.TrimSpace(k))
		if k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("empty attribute list")
	}
	return NewSchema(keys...)
}

// Add appends a field to the end of the record.
func (s *Schema) Add(d Descriptor) {
	s.attributes = append(s.attributes, d)
	s.byteSize += d.ByteSize()
}

// Attributes returns a copy of the fields in record order.
func (s *Schema) Attributes() []Descriptor {
	out := make([]Descriptor, len(s.attributes))
	copy(out, s.attributes)
	return out
}

// At returns the i-th field.
func (s *Schema) At(i int) Descriptor {
	return s.attributes[i]
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	return len(s.attributes)
}

// ByteSize returns the record size in bytes.
func (s *Schema) ByteSize() int {
	return s.byteSize
}

// Has reports whether any field carries the given name.
func (s *Schema) Has(name AttributeName) bool {
	for _, d := range s.attributes {
		if d.Name == name {
			return true
		}
	}
	return false
}

// HasColors reports whether the record carries packed colour.
func (s *Schema) HasColors() bool {
	return s.Has(ColorPacked)
}

// HasNormals reports whether the record carries a normal in any encoding.
func (s *Schema) HasNormals() bool {
	for _, d := range s.attributes {
		if d.Name.IsNormal() {
			return true
		}
	}
	return false
}

// OffsetOf returns the byte offset of the first field with the given name.
func (s *Schema) OffsetOf(name AttributeName) (int, bool) {
	offset := 0
	for _, d := range s.attributes {
		if d.Name == name {
			return offset, true
		}
		offset += d.ByteSize()
	}
	return 0, false
}

func (s *Schema) String() string {
	parts := make([]string, len(s.attributes))
	for i, d := range s.attributes {
		parts[i] = d.String()
	}
	return fmt.Sprintf("[%s] %dB", strings.Join(parts, " "), s.byteSize)
}
