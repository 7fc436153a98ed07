// Package cursor provides little-endian reads over a fixed byte buffer at
// arbitrary byte offsets.
//
// Reads are not bounds-checked beyond Go's own slice indexing: an offset past
// the end of the buffer panics. Callers are expected to validate the record
// layout up front (see decode.Decode), as the packet parser does with its
// fixed packet sizes.
package cursor

import (
	"encoding/binary"
	"math"
)

// Cursor wraps a byte buffer for random-access little-endian reads.
// It never mutates the buffer and holds no other state, so a Cursor may be
// shared between goroutines that only read.
type Cursor struct {
	buf []byte
}

// New returns a cursor over buf. The buffer is not copied.
func New(buf []byte) Cursor {
	return Cursor{buf: buf}
}

// Len returns the length of the underlying buffer in bytes.
func (c Cursor) Len() int {
	return len(c.buf)
}

// Uint8 reads one byte at offset.
func (c Cursor) Uint8(offset int) uint8 {
	return c.buf[offset]
}

// Uint16 reads a little-endian uint16 at offset.
func (c Cursor) Uint16(offset int) uint16 {
	return binary.LittleEndian.Uint16(c.buf[offset : offset+2])
}

// Uint32 reads a little-endian uint32 at offset.
func (c Cursor) Uint32(offset int) uint32 {
	return binary.LittleEndian.Uint32(c.buf[offset : offset+4])
}

// Float32 reads an IEEE-754 single-precision value stored little-endian at
// offset. The bit pattern is assembled byte by byte, so the result does not
// depend on host byte order.
func (c Cursor) Float32(offset int) float32 {
	return math.Float32frombits(c.Uint32(offset))
}
