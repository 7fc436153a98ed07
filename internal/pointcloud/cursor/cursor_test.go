package cursor

import (
	"math"
	"testing"
)

func TestCursor_IntegerReads(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	c := New(buf)

	if got := c.Len(); got != 6 {
		t.Errorf("Len() = %d, want 6", got)
	}
	if got := c.Uint8(3); got != 0x04 {
		t.Errorf("Uint8(3) = %#x, want 0x04", got)
	}
	if got := c.Uint16(0); got != 0x0201 {
		t.Errorf("Uint16(0) = %#x, want 0x0201", got)
	}
	if got := c.Uint16(1); got != 0x0302 {
		t.Errorf("Uint16(1) = %#x, want 0x0302 (unaligned)", got)
	}
	if got := c.Uint32(2); got != 0x06050403 {
		t.Errorf("Uint32(2) = %#x, want 0x06050403", got)
	}
}

func TestCursor_Float32(t *testing.T) {
	tests := []struct {
		name  string
		bytes []byte
		want  float32
	}{
		{"one", []byte{0x00, 0x00, 0x80, 0x3f}, 1.0},
		{"negative", []byte{0x00, 0x00, 0x00, 0xc0}, -2.0},
		{"zero", []byte{0, 0, 0, 0}, 0},
		{"pi", []byte{0xdb, 0x0f, 0x49, 0x40}, float32(math.Pi)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Prefix one byte so the read is unaligned.
			c := New(append([]byte{0xaa}, tt.bytes...))
			if got := c.Float32(1); got != tt.want {
				t.Errorf("Float32(1) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCursor_OutOfRangePanics(t *testing.T) {
	c := New([]byte{1, 2, 3})
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic reading past end of buffer")
		}
	}()
	_ = c.Uint32(0)
}
