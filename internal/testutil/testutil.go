// Package testutil provides shared test utilities and fixtures.
//
// The record builder writes little-endian point records field by field so
// decoder tests can describe inputs in terms of values instead of hex dumps.
package testutil

import (
	"encoding/binary"
	"math"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// RecordBuilder appends little-endian fields to a growing buffer.
type RecordBuilder struct {
	buf []byte
}

// NewRecordBuilder returns an empty builder.
func NewRecordBuilder() *RecordBuilder {
	return &RecordBuilder{}
}

// Float32 appends one float32 per value.
func (b *RecordBuilder) Float32(vs ...float32) *RecordBuilder {
	for _, v := range vs {
		b.buf = binary.LittleEndian.AppendUint32(b.buf, math.Float32bits(v))
	}
	return b
}

// Uint32 appends one uint32 per value.
func (b *RecordBuilder) Uint32(vs ...uint32) *RecordBuilder {
	for _, v := range vs {
		b.buf = binary.LittleEndian.AppendUint32(b.buf, v)
	}
	return b
}

// Uint16 appends one uint16 per value.
func (b *RecordBuilder) Uint16(vs ...uint16) *RecordBuilder {
	for _, v := range vs {
		b.buf = binary.LittleEndian.AppendUint16(b.buf, v)
	}
	return b
}

// Uint8 appends raw bytes.
func (b *RecordBuilder) Uint8(vs ...uint8) *RecordBuilder {
	b.buf = append(b.buf, vs...)
	return b
}

// Len returns the number of bytes written so far.
func (b *RecordBuilder) Len() int {
	return len(b.buf)
}

// Bytes returns a copy of the buffer.
func (b *RecordBuilder) Bytes() []byte {
	out := make([]byte, len(b.buf))
	copy(out, b.buf)
	return out
}

// LCG is a tiny deterministic generator for reproducible synthetic nodes.
type LCG struct {
	state uint64
}

// NewLCG seeds a generator.
func NewLCG(seed uint64) *LCG {
	return &LCG{state: seed}
}

// Next returns the next 32 pseudo-random bits.
func (g *LCG) Next() uint32 {
	g.state = g.state*6364136223846793005 + 1442695040888963407
	return uint32(g.state >> 32)
}

// Float32 returns a value in [lo, hi).
func (g *LCG) Float32(lo, hi float32) float32 {
	return lo + (hi-lo)*float32(g.Next()>>8)/float32(1<<24)
}
