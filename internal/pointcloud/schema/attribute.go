package schema

import (
	"fmt"
	"sort"
)

// AttributeName is the semantic name of a record field. The set is closed.
type AttributeName uint8

const (
	PositionCartesian  AttributeName = iota // POSITION_CARTESIAN
	ColorPacked                             // COLOR_PACKED
	ColorFloats1                            // COLOR_FLOATS_1
	ColorFloats255                          // COLOR_FLOATS_255
	NormalFloats                            // NORMAL_FLOATS
	Filler                                  // FILLER
	Intensity                               // INTENSITY
	Classification                          // CLASSIFICATION
	NormalSphereMapped                      // NORMAL_SPHEREMAPPED
	NormalOct16                             // NORMAL_OCT16
	Normal                                  // NORMAL
	ReturnNumber                            // RETURN_NUMBER
	NumberOfReturns                         // NUMBER_OF_RETURNS
	SourceID                                // SOURCE_ID
	Indices                                 // INDICES
	Spacing                                 // SPACING

	numAttributeNames = iota
)

var attributeNameStrings = [numAttributeNames]string{
	PositionCartesian:  "POSITION_CARTESIAN",
	ColorPacked:        "COLOR_PACKED",
	ColorFloats1:       "COLOR_FLOATS_1",
	ColorFloats255:     "COLOR_FLOATS_255",
	NormalFloats:       "NORMAL_FLOATS",
	Filler:             "FILLER",
	Intensity:          "INTENSITY",
	Classification:     "CLASSIFICATION",
	NormalSphereMapped: "NORMAL_SPHEREMAPPED",
	NormalOct16:        "NORMAL_OCT16",
	Normal:             "NORMAL",
	ReturnNumber:       "RETURN_NUMBER",
	NumberOfReturns:    "NUMBER_OF_RETURNS",
	SourceID:           "SOURCE_ID",
	Indices:            "INDICES",
	Spacing:            "SPACING",
}

// Valid reports whether n is one of the sixteen defined names.
func (n AttributeName) Valid() bool {
	return int(n) < numAttributeNames
}

func (n AttributeName) String() string {
	if !n.Valid() {
		return fmt.Sprintf("AttributeName(%d)", uint8(n))
	}
	return attributeNameStrings[n]
}

// IsNormal reports whether n is any of the normal encodings.
func (n AttributeName) IsNormal() bool {
	switch n {
	case NormalFloats, NormalSphereMapped, NormalOct16, Normal:
		return true
	}
	return false
}

// ParseAttributeName maps the upper-case name string back to its constant.
func ParseAttributeName(s string) (AttributeName, error) {
	for i, name := range attributeNameStrings {
		if name == s {
			return AttributeName(i), nil
		}
	}
	return 0, fmt.Errorf("%w: name %q", ErrUnknownAttribute, s)
}

// Descriptor describes one field of a point record.
type Descriptor struct {
	Name     AttributeName
	Type     AttributeType
	Elements int
}

// NewDescriptor returns a descriptor for a custom field layout.
func NewDescriptor(name AttributeName, typ AttributeType, elements int) (Descriptor, error) {
	if !name.Valid() {
		return Descriptor{}, fmt.Errorf("%w: %v", ErrUnknownAttribute, name)
	}
	if !typ.Valid() {
		return Descriptor{}, fmt.Errorf("invalid attribute type %v for %v", typ, name)
	}
	if elements <= 0 {
		return Descriptor{}, fmt.Errorf("element count for %v must be positive, got %d", name, elements)
	}
	return Descriptor{Name: name, Type: typ, Elements: elements}, nil
}

// ByteSize is Elements times the width of Type.
func (d Descriptor) ByteSize() int {
	return d.Elements * d.Type.Size()
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%v(%v×%d)", d.Name, d.Type, d.Elements)
}

// Catalog of well-known descriptors. Lookup keys follow the converter's
// attribute naming; RGBA_PACKED and COLOR_PACKED are the same field.
var (
	DescPositionCartesian  = Descriptor{PositionCartesian, TypeFloat, 3}
	DescRGBAPacked         = Descriptor{ColorPacked, TypeInt8, 4}
	DescRGBPacked          = Descriptor{ColorPacked, TypeInt8, 3}
	DescNormalFloats       = Descriptor{NormalFloats, TypeFloat, 3}
	DescFiller1B           = Descriptor{Filler, TypeUint8, 1}
	DescIntensity          = Descriptor{Intensity, TypeUint16, 1}
	DescClassification     = Descriptor{Classification, TypeUint8, 1}
	DescNormalSphereMapped = Descriptor{NormalSphereMapped, TypeUint8, 2}
	DescNormalOct16        = Descriptor{NormalOct16, TypeUint8, 2}
	DescNormal             = Descriptor{Normal, TypeFloat, 3}
	DescReturnNumber       = Descriptor{ReturnNumber, TypeUint8, 1}
	DescNumberOfReturns    = Descriptor{NumberOfReturns, TypeUint8, 1}
	DescSourceID           = Descriptor{SourceID, TypeUint8, 1}
	DescIndices            = Descriptor{Indices, TypeUint32, 1}
	DescSpacing            = Descriptor{Spacing, TypeFloat, 1}
)

// catalog is built once at init and never mutated.
var catalog = map[string]Descriptor{
	"POSITION_CARTESIAN":  DescPositionCartesian,
	"RGBA_PACKED":         DescRGBAPacked,
	"COLOR_PACKED":        DescRGBAPacked,
	"RGB_PACKED":          DescRGBPacked,
	"NORMAL_FLOATS":       DescNormalFloats,
	"FILLER_1B":           DescFiller1B,
	"INTENSITY":           DescIntensity,
	"CLASSIFICATION":      DescClassification,
	"NORMAL_SPHEREMAPPED": DescNormalSphereMapped,
	"NORMAL_OCT16":        DescNormalOct16,
	"NORMAL":              DescNormal,
	"RETURN_NUMBER":       DescReturnNumber,
	"NUMBER_OF_RETURNS":   DescNumberOfReturns,
	"SOURCE_ID":           DescSourceID,
	"INDICES":             DescIndices,
	"SPACING":             DescSpacing,
}

// defaults maps each name to the descriptor used when only the name is
// known. Names without a catalog entry (the float colour variants) are absent.
var defaults = func() map[AttributeName]Descriptor {
	m := make(map[AttributeName]Descriptor, len(catalog))
	for key, d := range catalog {
		if key == "RGB_PACKED" {
			continue
		}
		m[d.Name] = d
	}
	return m
}()

// LookupDescriptor returns the catalog descriptor registered under key.
func LookupDescriptor(key string) (Descriptor, error) {
	d, ok := catalog[key]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownAttribute, key)
	}
	return d, nil
}

// DefaultDescriptor returns the catalog descriptor for a name.
func DefaultDescriptor(name AttributeName) (Descriptor, bool) {
	d, ok := defaults[name]
	return d, ok
}

// CatalogKeys lists every lookup key in sorted order.
func CatalogKeys() []string {
	keys := make([]string, 0, len(catalog))
	for k := range catalog {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
