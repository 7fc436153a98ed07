// Package layout describes interleaved vertex buffers for a rendering
// backend: which attributes a point carries, at which byte offset, with which
// storage type, and the per-point stride.
package layout

import (
	"fmt"

	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/schema"
)

// StorageType is the element type an attribute is uploaded as.
type StorageType int

const (
	Float32 StorageType = iota
	Uint8
)

func (s StorageType) String() string {
	switch s {
	case Float32:
		return "float32"
	case Uint8:
		return "uint8"
	}
	return fmt.Sprintf("StorageType(%d)", int(s))
}

// strideAlignment is the byte boundary every stride is rounded up to.
const strideAlignment = 4

// Attribute is one entry of an interleaved vertex layout.
type Attribute struct {
	Name       string
	Bytes      int
	Elements   int
	Type       StorageType
	Normalized bool

	// Source is the record field the attribute is filled from.
	Source schema.AttributeName
}

// Layout is an ordered attribute list plus the aligned per-point stride.
type Layout struct {
	Attributes []Attribute
	Stride     int
}

// NewLayout computes the stride for attrs, rounded up to a multiple of 4.
func NewLayout(attrs ...Attribute) *Layout {
	raw := 0
	for _, a := range attrs {
		raw += a.Bytes
	}
	stride := raw
	if rem := raw % strideAlignment; rem != 0 {
		stride += strideAlignment - rem
	}
	return &Layout{Attributes: attrs, Stride: stride}
}

// mapping returns the GPU attribute for a record field, if it has one.
func mapping(name schema.AttributeName) (Attribute, bool) {
	switch name {
	case schema.PositionCartesian:
		return Attribute{Name: "position", Bytes: 12, Elements: 3, Type: Float32}, true
	case schema.ColorPacked:
		return Attribute{Name: "color", Bytes: 4, Elements: 4, Type: Uint8, Normalized: true}, true
	case schema.Intensity:
		return Attribute{Name: "intensity", Bytes: 4, Elements: 1, Type: Float32}, true
	case schema.Classification:
		return Attribute{Name: "classification", Bytes: 4, Elements: 1, Type: Float32}, true
	case schema.ReturnNumber:
		return Attribute{Name: "returnNumber", Bytes: 4, Elements: 1, Type: Float32}, true
	case schema.NumberOfReturns:
		return Attribute{Name: "numberOfReturns", Bytes: 4, Elements: 1, Type: Float32}, true
	case schema.SourceID:
		return Attribute{Name: "pointSourceID", Bytes: 4, Elements: 1, Type: Float32}, true
	case schema.NormalFloats, schema.NormalSphereMapped, schema.NormalOct16, schema.Normal:
		return Attribute{Name: "normal", Bytes: 12, Elements: 3, Type: Float32}, true
	}
	return Attribute{}, false
}

// Build maps every schema field with a known GPU representation, in record
// order. Fields without one (filler, spacing, indices, float colours) are
// left out.
func Build(s *schema.Schema) *Layout {
	var attrs []Attribute
	for _, d := range s.Attributes() {
		a, ok := mapping(d.Name)
		if !ok {
			continue
		}
		a.Source = d.Name
		attrs = append(attrs, a)
	}
	return NewLayout(attrs...)
}

// OffsetOf returns the byte offset of the first attribute called name.
func (l *Layout) OffsetOf(name string) (int, bool) {
	offset := 0
	for _, a := range l.Attributes {
		if a.Name == name {
			return offset, true
		}
		offset += a.Bytes
	}
	return 0, false
}
