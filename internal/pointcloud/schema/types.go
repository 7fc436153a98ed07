package schema

import "fmt"

// AttributeType is a scalar storage kind with a fixed byte width.
// The numeric value is the type's ordinal.
type AttributeType uint8

const (
	TypeDouble AttributeType = iota // 8 bytes, IEEE-754 double
	TypeFloat                       // 4 bytes, IEEE-754 single
	TypeInt8
	TypeUint8
	TypeInt16
	TypeUint16
	TypeInt32
	TypeUint32
	TypeInt64
	TypeUint64

	numAttributeTypes = iota
)

var attributeTypeSizes = [numAttributeTypes]int{
	TypeDouble: 8,
	TypeFloat:  4,
	TypeInt8:   1,
	TypeUint8:  1,
	TypeInt16:  2,
	TypeUint16: 2,
	TypeInt32:  4,
	TypeUint32: 4,
	TypeInt64:  8,
	TypeUint64: 8,
}

var attributeTypeNames = [numAttributeTypes]string{
	TypeDouble: "double",
	TypeFloat:  "float",
	TypeInt8:   "int8",
	TypeUint8:  "uint8",
	TypeInt16:  "int16",
	TypeUint16: "uint16",
	TypeInt32:  "int32",
	TypeUint32: "uint32",
	TypeInt64:  "int64",
	TypeUint64: "uint64",
}

// Valid reports whether t is one of the ten defined types.
func (t AttributeType) Valid() bool {
	return int(t) < numAttributeTypes
}

// Ordinal returns the type's position in the declaration order.
func (t AttributeType) Ordinal() int {
	return int(t)
}

// Size returns the byte width of one element of this type, or 0 for an
// undefined type.
func (t AttributeType) Size() int {
	if !t.Valid() {
		return 0
	}
	return attributeTypeSizes[t]
}

func (t AttributeType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("AttributeType(%d)", uint8(t))
	}
	return attributeTypeNames[t]
}
