package decode

import (
	"encoding/binary"
	"math"

	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/schema"
)

// Column holds one attribute's values for every point, stored contiguously.
// Exactly one of the typed slices is populated, chosen by Type; its length is
// NumPoints × Components.
type Column struct {
	Name       schema.AttributeName
	Type       schema.AttributeType
	Components int

	Float32 []float32
	Uint8   []uint8
	Uint32  []uint32
}

func newFloat32Column(name schema.AttributeName, components, numPoints int) *Column {
	return &Column{
		Name:       name,
		Type:       schema.TypeFloat,
		Components: components,
		Float32:    make([]float32, components*numPoints),
	}
}

func newUint8Column(name schema.AttributeName, components, numPoints int) *Column {
	return &Column{
		Name:       name,
		Type:       schema.TypeUint8,
		Components: components,
		Uint8:      make([]uint8, components*numPoints),
	}
}

func newUint32Column(name schema.AttributeName, components, numPoints int) *Column {
	return &Column{
		Name:       name,
		Type:       schema.TypeUint32,
		Components: components,
		Uint32:     make([]uint32, components*numPoints),
	}
}

// Descriptor describes the column's output element layout.
func (c *Column) Descriptor() schema.Descriptor {
	return schema.Descriptor{Name: c.Name, Type: c.Type, Elements: c.Components}
}

// Values returns the number of scalar values held.
func (c *Column) Values() int {
	switch c.Type {
	case schema.TypeFloat:
		return len(c.Float32)
	case schema.TypeUint8:
		return len(c.Uint8)
	case schema.TypeUint32:
		return len(c.Uint32)
	}
	return 0
}

// Len returns the number of points the column covers.
func (c *Column) Len() int {
	if c.Components == 0 {
		return 0
	}
	return c.Values() / c.Components
}

// Float64At returns value i widened to float64, whatever the storage type.
func (c *Column) Float64At(i int) float64 {
	switch c.Type {
	case schema.TypeFloat:
		return float64(c.Float32[i])
	case schema.TypeUint8:
		return float64(c.Uint8[i])
	case schema.TypeUint32:
		return float64(c.Uint32[i])
	}
	return math.NaN()
}

// Bytes returns the column as a little-endian byte buffer, the layout a
// rendering backend uploads.
func (c *Column) Bytes() []byte {
	switch c.Type {
	case schema.TypeFloat:
		out := make([]byte, 4*len(c.Float32))
		for i, v := range c.Float32 {
			binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
		}
		return out
	case schema.TypeUint32:
		out := make([]byte, 4*len(c.Uint32))
		for i, v := range c.Uint32 {
			binary.LittleEndian.PutUint32(out[4*i:], v)
		}
		return out
	case schema.TypeUint8:
		out := make([]byte, len(c.Uint8))
		copy(out, c.Uint8)
		return out
	}
	return nil
}

// Box is an axis-aligned bounding box. A box that has seen no points has
// Min = +Inf and Max = -Inf on every axis.
type Box struct {
	Min [3]float64
	Max [3]float64
}

// EmptyBox returns a box that contains nothing.
func EmptyBox() Box {
	inf := math.Inf(1)
	return Box{
		Min: [3]float64{inf, inf, inf},
		Max: [3]float64{-inf, -inf, -inf},
	}
}

// Extend grows the box to include p.
func (b *Box) Extend(p [3]float64) {
	for k := 0; k < 3; k++ {
		b.Min[k] = math.Min(b.Min[k], p[k])
		b.Max[k] = math.Max(b.Max[k], p[k])
	}
}

// IsEmpty reports whether the box has never been extended.
func (b Box) IsEmpty() bool {
	return b.Min[0] > b.Max[0]
}

// Contains reports whether p lies inside or on the box.
func (b Box) Contains(p [3]float64) bool {
	for k := 0; k < 3; k++ {
		if p[k] < b.Min[k] || p[k] > b.Max[k] {
			return false
		}
	}
	return true
}

// Size returns the edge lengths.
func (b Box) Size() [3]float64 {
	if b.IsEmpty() {
		return [3]float64{}
	}
	return [3]float64{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

// Bundle is the result of decoding one node.
//
// Every slice in Columns is freshly allocated and owned by the caller. Buffer
// is the untouched input, handed back so the caller can release or reuse it.
type Bundle struct {
	Name        string
	HasChildren bool
	NumPoints   int

	Columns  map[schema.AttributeName]*Column
	Mean     [3]float64
	TightBox Box

	Buffer []byte
}

// Column returns the decoded column for name.
func (b *Bundle) Column(name schema.AttributeName) (*Column, bool) {
	c, ok := b.Columns[name]
	return c, ok
}

// Positions returns the interleaved xyz position values, or nil if the
// schema had no position field.
func (b *Bundle) Positions() []float32 {
	if c, ok := b.Columns[schema.PositionCartesian]; ok {
		return c.Float32
	}
	return nil
}

// Position returns point i's position.
func (b *Bundle) Position(i int) [3]float32 {
	p := b.Positions()
	return [3]float32{p[3*i], p[3*i+1], p[3*i+2]}
}

// Normals returns the decoded normal column, whichever encoding the record
// used.
func (b *Bundle) Normals() (*Column, bool) {
	for _, name := range []schema.AttributeName{
		schema.Normal, schema.NormalOct16, schema.NormalSphereMapped, schema.NormalFloats,
	} {
		if c, ok := b.Columns[name]; ok {
			return c, true
		}
	}
	return nil, false
}
